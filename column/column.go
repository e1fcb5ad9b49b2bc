// Package column implements a typed, columnar relation store used by
// Denial Constraint verification: each column carries a fixed Type, and
// every value in it is hashed and compared through that type. Values are
// stored as boxed `any` cells produced by the type's Parse, and each Type
// asserts them back to its own Go type when comparing or hashing.
//
// NOTE ON NAMING & PREFIXING
// --------------------------
// Every message is prefixed with "column: ..." for consistency and to
// allow easy grepping across logs. Do not %w-wrap these sentinels when
// returning them directly; wrap with fmt.Errorf at the outer boundary if
// additional context is needed — callers still match with errors.Is.
package column

import (
	"errors"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Sentinel errors for column package operations.
var (
	// ErrDimensionMismatch indicates a row does not have one value per
	// declared column.
	ErrDimensionMismatch = errors.New("column: row width does not match column count")

	// ErrUnknownColumn indicates a referenced column name is not present
	// in the relation.
	ErrUnknownColumn = errors.New("column: unknown column")

	// ErrTypeMismatch indicates a value's runtime type does not match its
	// column's declared Type.
	ErrTypeMismatch = errors.New("column: value does not match column type")

	// ErrEmptyRelation indicates a relation was built with zero rows.
	ErrEmptyRelation = errors.New("column: relation has no rows")
)

// TypeID names the scalar kinds a Column may hold.
type TypeID int

const (
	Int64TypeID TypeID = iota
	Float64TypeID
	StringTypeID
)

// Type is a column's scalar type: it extracts a comparable, hashable
// representation from an opaque value produced during ingestion, and knows
// whether the value it holds is numeric, so the verifier can decide how to
// promote operands of differing numeric types before comparing them.
type Type interface {
	ID() TypeID
	// Compare returns -1, 0, or 1 comparing a and b, which must both have
	// been produced by this Type's Parse.
	Compare(a, b any) int
	// Hash returns a stable hash of v for composite-key construction.
	Hash(h *xxhash.Digest, v any)
	// Parse converts a raw string cell into this Type's value
	// representation. Returns ErrTypeMismatch if s cannot be parsed.
	Parse(s string) (any, error)
	// AsFloat64 extracts a numeric value as float64, for cross-type
	// numeric comparisons. ok is false for StringType.
	AsFloat64(v any) (f float64, ok bool)
}

// Column is a named, typed sequence of values, one per row of the owning
// Relation.
type Column struct {
	Name   string
	Type   Type
	Values []any
}

// Relation is an immutable, in-memory columnar table: every column has the
// same number of rows, indexed 0..NumRows()-1.
type Relation struct {
	columns    []Column
	index      map[string]int
	numRows    int
}

// NewRelation builds a Relation from column names, their types, and rows
// given in row-major order (each inner slice is one row's cells, in column
// order). Fails with ErrDimensionMismatch if any row's width differs from
// len(names), or ErrTypeMismatch if a cell cannot be parsed by its
// column's Type, or ErrEmptyRelation if rows is empty.
func NewRelation(names []string, types []Type, rows [][]string) (*Relation, error) {
	if len(names) != len(types) {
		return nil, fmt.Errorf("%w: %d names, %d types", ErrDimensionMismatch, len(names), len(types))
	}
	if len(rows) == 0 {
		return nil, ErrEmptyRelation
	}

	r := &Relation{
		columns: make([]Column, len(names)),
		index:   make(map[string]int, len(names)),
		numRows: len(rows),
	}
	for i, name := range names {
		r.columns[i] = Column{Name: name, Type: types[i], Values: make([]any, len(rows))}
		r.index[name] = i
	}

	for rowIdx, row := range rows {
		if len(row) != len(names) {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrDimensionMismatch, rowIdx, len(row), len(names))
		}
		for colIdx, cell := range row {
			v, err := r.columns[colIdx].Type.Parse(cell)
			if err != nil {
				return nil, fmt.Errorf("row %d, column %q: %w", rowIdx, names[colIdx], err)
			}
			r.columns[colIdx].Values[rowIdx] = v
		}
	}

	return r, nil
}

// NumRows returns the number of rows in the relation.
func (r *Relation) NumRows() int {
	return r.numRows
}

// NumColumns returns the number of columns in the relation.
func (r *Relation) NumColumns() int {
	return len(r.columns)
}

// ColumnIndex resolves a column name to its index. Returns
// ErrUnknownColumn if name was not declared.
func (r *Relation) ColumnIndex(name string) (int, error) {
	idx, ok := r.index[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	return idx, nil
}

// Column returns the column at idx. Panics if idx is out of range; callers
// resolve idx via ColumnIndex first.
func (r *Relation) Column(idx int) Column {
	return r.columns[idx]
}

// At returns the value of column col in row.
func (r *Relation) At(row, col int) any {
	return r.columns[col].Values[row]
}
