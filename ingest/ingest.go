// Package ingest reads tabular input files into the representations the
// two algorithmic cores operate on: transaction lists for association-rule
// mining, and typed relations for denial-constraint verification. No
// third-party CSV library is used anywhere in the reference corpus this
// module draws from; encoding/csv already handles quoting and delimiter
// configuration, so hand-rolled splitting would only reduce correctness.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/avldata/conslat/column"
)

// ErrUnknownFormat is returned by ParseInputFormat for an unrecognized
// format name.
var ErrUnknownFormat = errors.New("ingest: unknown input format")

// InputFormat names a row-oriented encoding ReadTransactions/ReadRelation
// can consume.
type InputFormat int

const (
	FormatCSV InputFormat = iota
)

// ParseInputFormat resolves a format name (case-insensitive) to an
// InputFormat. Fails with ErrUnknownFormat for anything but "csv".
func ParseInputFormat(name string) (InputFormat, error) {
	switch strings.ToLower(name) {
	case "csv":
		return FormatCSV, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// ReadTransactions reads one transaction per row of r: each field in a row
// is an item label. A header row is not assumed; every row is data.
func ReadTransactions(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // transactions may vary in width

	var transactions [][]string
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ingest: reading transaction row: %w", err)
		}
		row := make([]string, len(record))
		copy(row, record)
		transactions = append(transactions, row)
	}

	return transactions, nil
}

// ReadRelation reads r as a header row of column names followed by data
// rows, and builds a column.Relation typing each column per types (which
// must have one entry per header column, in order).
func ReadRelation(r io.Reader, types []column.Type) (*column.Relation, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("ingest: reading relation header: %w", err)
	}
	if len(header) != len(types) {
		return nil, fmt.Errorf("ingest: %d header columns but %d types given", len(header), len(types))
	}

	var rows [][]string
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ingest: reading relation row: %w", err)
		}
		row := make([]string, len(record))
		copy(row, record)
		rows = append(rows, row)
	}

	return column.NewRelation(header, types, rows)
}
