// Package model contains domain models passed between pipeline stages.
package model

// Column is one header cell of an extracted table. Group is the label of the
// spanning header above it and is empty for single-level headers.
type Column struct {
	Group string
	Label string
}

// RawTable is a table as found in the page markup. Every row has exactly
// len(Header) cells, in header order. Repeated in-body header rows are still
// present at this stage.
type RawTable struct {
	Header []Column
	Rows   [][]string
}

// Row maps a flat column key to its cell value.
type Row map[string]string

// Table is a table with flat column keys. It is produced by normalization and
// also carries the joined result of all categories.
type Table struct {
	Columns []string
	Rows    []Row
}

// HasColumn reports whether key is one of the table's columns.
func (t Table) HasColumn(key string) bool {
	for _, c := range t.Columns {
		if c == key {
			return true
		}
	}
	return false
}

// PlayerKey identifies a player across category tables. Both parts match
// exactly; no case or diacritic folding is applied.
type PlayerKey struct {
	Player string
	Squad  string
}
