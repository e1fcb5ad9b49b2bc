// Package verify checks whether a parsed dc.DC holds against a
// column.Relation, dispatching to one of three strategies chosen by the
// shape of the DC's predicates:
//
//   - all-equality: every predicate is homogeneous '=='. The named columns
//     form a unique column combination; checked by composite-hash dedup.
//   - one-inequality: exactly one predicate is a strict order operator and
//     every other predicate is homogeneous equality. Checked by
//     partitioning on the equality key and tracking running extrema.
//   - general: anything else. Checked by a direct O(R²) pairwise scan.
//
// The verifier never inspects a column's stored values directly; every
// comparison and hash goes through the column's Type, so the strategy
// above is correct regardless of how a column's values are represented.
package verify

import (
	"context"
	"errors"
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/avldata/conslat/column"
	"github.com/avldata/conslat/dc"
)

// ErrUnsupportedTypes is returned when the one-inequality strategy's two
// inequality-operand columns cannot be compared (neither both numeric nor
// both string).
var ErrUnsupportedTypes = errors.New("verify: unsupported type combination for comparison")

// ErrEmptyRelation is returned when rel has zero rows; a DC's holds-ness
// is undefined over an empty relation.
var ErrEmptyRelation = errors.New("verify: relation has no rows")

// Shape classifies a DC's predicate list for strategy dispatch.
type Shape int

const (
	ShapeAllEquality Shape = iota
	ShapeOneInequality
	ShapeGeneral
)

// Classify inspects d's predicates in the order spec'd: all-equality if
// every predicate is homogeneous '=='; one-inequality if exactly one
// predicate is a strict order operator (<, <=, >, >=) and every other
// predicate is homogeneous equality; general otherwise. Operators '!='
// (even when homogeneous) are routed to general, since '!=' is neither an
// equality nor a strict-order predicate for this classifier's purposes.
func Classify(d dc.DC) Shape {
	allEquality := true
	strictInequalities := 0
	for _, p := range d.Predicates {
		switch {
		case p.Op == dc.Equal && p.Homogeneous():
			// contributes to both shapes
		case isStrictOrder(p.Op):
			allEquality = false
			strictInequalities++
		default:
			allEquality = false
			strictInequalities = -1 // disqualify one-inequality too
		}
	}

	switch {
	case allEquality:
		return ShapeAllEquality
	case strictInequalities == 1:
		return ShapeOneInequality
	default:
		return ShapeGeneral
	}
}

func isStrictOrder(op dc.Operator) bool {
	switch op {
	case dc.Less, dc.LessEqual, dc.Greater, dc.GreaterEqual:
		return true
	default:
		return false
	}
}

// Holds reports whether d holds over rel: true iff no ordered pair of
// distinct rows (t, s) satisfies d's conjunction. Fails with
// ErrEmptyRelation if rel has zero rows, or with ErrUnsupportedTypes if
// the one-inequality strategy's operand columns cannot be compared.
// Cancellation is checked once per row scanned, so a caller can abort a
// verification over a large relation by cancelling ctx.
func Holds(ctx context.Context, d dc.DC, rel *column.Relation) (bool, error) {
	if rel.NumRows() == 0 {
		return false, ErrEmptyRelation
	}

	switch Classify(d) {
	case ShapeAllEquality:
		return verifyAllEquality(ctx, d, rel)
	case ShapeOneInequality:
		return verifyOneInequality(ctx, d, rel)
	default:
		return verifyGeneral(ctx, d, rel)
	}
}

// verifyAllEquality implements the unique-column-combination check: the
// DC holds iff the projection onto the referenced columns has no
// duplicate rows.
//
// Complexity: O(R * K) with R rows and K referenced columns.
func verifyAllEquality(ctx context.Context, d dc.DC, rel *column.Relation) (bool, error) {
	indices := d.ColumnIndicesWithOperator(dc.Equal)
	seen := make(map[uint64]struct{}, rel.NumRows())

	for row := 0; row < rel.NumRows(); row++ {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		key := compositeHash(rel, indices, row)
		if _, ok := seen[key]; ok {
			return false, nil
		}
		seen[key] = struct{}{}
	}

	return true, nil
}

// compositeHash hashes the values at indices in row through each
// column's own Type.Hash, producing a single composite key.
func compositeHash(rel *column.Relation, indices []int, row int) uint64 {
	h := xxhash.New()
	for _, idx := range indices {
		col := rel.Column(idx)
		col.Type.Hash(h, col.Values[row])
	}
	return h.Sum64()
}

// extrema tracks the running min/max of two inequality-operand columns
// within one equality partition.
type extrema struct {
	minA, maxA any
	minB, maxB any
}

// verifyOneInequality partitions rows by their homogeneous-equality key
// and, within each partition, tracks the running extrema of the two
// inequality operand columns; a new row only needs to be checked against
// the extrema already seen for its partition, since any violation
// involving an earlier row in the partition would already have surfaced
// when that row's extrema were updated.
//
// Complexity: O(R) amortized, one partition lookup and a bounded number
// of comparisons per row.
func verifyOneInequality(ctx context.Context, d dc.DC, rel *column.Relation) (bool, error) {
	eqIndices := d.ColumnIndicesWithOperator(dc.Equal)

	var ineq dc.Predicate
	for _, p := range d.Predicates {
		if isStrictOrder(p.Op) {
			ineq = p
			break
		}
	}

	colA := rel.Column(ineq.Left.ColumnIndex)
	colB := rel.Column(ineq.Right.ColumnIndex)
	cmp, err := comparisonFor(colA.Type, colB.Type)
	if err != nil {
		return false, err
	}
	// cmpA/cmpB compare same-column values against each other when
	// updating that column's own extrema; cmp (above) is only valid
	// across the A/B pairing violatesOrder makes.
	cmpA, err := comparisonFor(colA.Type, colA.Type)
	if err != nil {
		return false, err
	}
	cmpB, err := comparisonFor(colB.Type, colB.Type)
	if err != nil {
		return false, err
	}

	partitions := make(map[uint64]*extrema)

	for row := 0; row < rel.NumRows(); row++ {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		key := compositeHash(rel, eqIndices, row)
		rowA := rel.At(row, ineq.Left.ColumnIndex)
		rowB := rel.At(row, ineq.Right.ColumnIndex)

		e, ok := partitions[key]
		if !ok {
			partitions[key] = &extrema{minA: rowA, maxA: rowA, minB: rowB, maxB: rowB}
			continue
		}

		if violatesOrder(ineq.Op, cmp, e, rowA, rowB) {
			return false, nil
		}

		if cmpA(rowA, e.minA) < 0 {
			e.minA = rowA
		}
		if cmpA(rowA, e.maxA) > 0 {
			e.maxA = rowA
		}
		if cmpB(rowB, e.minB) < 0 {
			e.minB = rowB
		}
		if cmpB(rowB, e.maxB) > 0 {
			e.maxB = rowB
		}
	}

	return true, nil
}

// violatesOrder reports whether the inequality predicate "A op B" can be
// satisfied by pairing the incoming row against the partition's stored
// extrema, per the table in dc verification §4.6(b).
func violatesOrder(op dc.Operator, cmp comparator, e *extrema, rowA, rowB any) bool {
	switch op {
	case dc.Less, dc.LessEqual:
		return evalOp(op, cmp, e.minA, rowB) || evalOp(op, cmp, rowA, e.maxB)
	case dc.Greater, dc.GreaterEqual:
		return evalOp(op, cmp, e.maxA, rowB) || evalOp(op, cmp, rowA, e.minB)
	default:
		return false
	}
}

func evalOp(op dc.Operator, cmp comparator, a, b any) bool {
	c := cmp(a, b)
	switch op {
	case dc.Less:
		return c < 0
	case dc.LessEqual:
		return c <= 0
	case dc.Greater:
		return c > 0
	case dc.GreaterEqual:
		return c >= 0
	case dc.Equal:
		return c == 0
	case dc.NotEqual:
		return c != 0
	default:
		return false
	}
}

// comparator compares two values already promoted to a common
// representation, returning -1, 0, or 1.
type comparator func(a, b any) int

// comparisonFor chooses how to compare values from typeA and typeB: same
// type compares directly; if either side is floating-point, both sides
// are promoted to float64; if both sides are integral, compared as
// int64. Any other combination (e.g. either side a string paired with a
// numeric type) fails with ErrUnsupportedTypes.
func comparisonFor(typeA, typeB column.Type) (comparator, error) {
	if typeA.ID() == typeB.ID() {
		return func(a, b any) int { return typeA.Compare(a, b) }, nil
	}

	if !isNumeric(typeA) || !isNumeric(typeB) {
		return nil, fmt.Errorf("%w: %v vs %v", ErrUnsupportedTypes, typeA.ID(), typeB.ID())
	}

	return func(a, b any) int {
		fa, _ := typeA.AsFloat64(a)
		fb, _ := typeB.AsFloat64(b)
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		default:
			return 0
		}
	}, nil
}

func isNumeric(ty column.Type) bool {
	return ty.ID() == column.Int64TypeID || ty.ID() == column.Float64TypeID
}

// verifyGeneral evaluates every ordered pair of distinct rows against the
// full conjunction, returning false on the first pair that satisfies it.
//
// Complexity: O(R² * len(d.Predicates)).
func verifyGeneral(ctx context.Context, d dc.DC, rel *column.Relation) (bool, error) {
	n := rel.NumRows()
	for t := 0; t < n; t++ {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		for s := 0; s < n; s++ {
			if t == s {
				continue
			}
			if satisfiesAll(d, rel, t, s) {
				return false, nil
			}
		}
	}
	return true, nil
}

func satisfiesAll(d dc.DC, rel *column.Relation, t, s int) bool {
	resolve := func(v dc.TupleVar) int {
		if v == dc.T {
			return t
		}
		return s
	}

	for _, p := range d.Predicates {
		rowLeft, rowRight := resolve(p.Left.Var), resolve(p.Right.Var)

		colLeft := rel.Column(p.Left.ColumnIndex)
		colRight := rel.Column(p.Right.ColumnIndex)
		cmp, err := comparisonFor(colLeft.Type, colRight.Type)
		if err != nil {
			return false
		}
		a := rel.At(rowLeft, p.Left.ColumnIndex)
		b := rel.At(rowRight, p.Right.ColumnIndex)
		if !evalOp(p.Op, cmp, a, b) {
			return false
		}
	}
	return true
}
