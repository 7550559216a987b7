package dataset

import (
	"fmt"
	"strings"
)

// Table is a sequence of records with a fixed named-field schema. The column
// set is validated once, when the table is built; all later stages access
// fields through the validated index instead of probing rows dynamically.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]string

	index map[string]int
}

// SchemaError reports that a table is missing columns its consumer requires.
// It is fatal for normalization: no artifact is produced when it occurs.
type SchemaError struct {
	Table   string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("dataset %q: missing columns: %s", e.Table, strings.Join(e.Missing, ", "))
}

// New builds a table over the given columns. Row widths are the caller's
// responsibility; AppendRow enforces them.
func New(name string, columns []string) *Table {
	idx := make(map[string]int, len(columns))
	for i, c := range columns {
		idx[c] = i
	}
	return &Table{Name: name, Columns: columns, index: idx}
}

// AppendRow adds one record. The row must have exactly one cell per column.
func (t *Table) AppendRow(row []string) error {
	if len(row) != len(t.Columns) {
		return fmt.Errorf("dataset %q: row has %d cells, want %d", t.Name, len(row), len(t.Columns))
	}
	t.Rows = append(t.Rows, row)
	return nil
}

// Require validates that every named column exists, returning a SchemaError
// listing the absent ones otherwise.
func (t *Table) Require(columns ...string) error {
	var missing []string
	for _, c := range columns {
		if _, ok := t.index[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Table: t.Name, Missing: missing}
	}
	return nil
}

// Col returns the positional index of a named column, or -1 if absent.
func (t *Table) Col(name string) int {
	i, ok := t.index[name]
	if !ok {
		return -1
	}
	return i
}

// Cell returns the value at (row, column name). Missing columns read as the
// empty string, which downstream cleaning treats as a missing value.
func (t *Table) Cell(row int, column string) string {
	i, ok := t.index[column]
	if !ok {
		return ""
	}
	return t.Rows[row][i]
}

// Len returns the number of records.
func (t *Table) Len() int { return len(t.Rows) }
