// Package table holds the in-memory grid: ordered columns, positionally aligned rows of
// display strings, and a single dirty flag for the whole table.
package table

import (
	"errors"
	"fmt"

	"github.com/ukaji3/gridsync-go/pkg/gridsync/values"
)

// ErrLockedColumn indicates an edit targeted a column computed by the backend.
var ErrLockedColumn = errors.New("column is locked")

// ErrOutOfRange indicates an edit targeted a cell outside the table.
var ErrOutOfRange = errors.New("cell out of range")

// CellError describes a rejected cell edit.
type CellError struct {
	Row    int
	Col    int
	Column string
	Err    error
}

func (e *CellError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("cell (%d, %d) in column %q: %v", e.Row, e.Col, e.Column, e.Err)
	}
	return fmt.Sprintf("cell (%d, %d): %v", e.Row, e.Col, e.Err)
}

func (e *CellError) Unwrap() error {
	return e.Err
}

type cellKey struct {
	row, col int
}

// Table is the authoritative grid state. It is not safe for concurrent use.
type Table struct {
	columns []string
	rows    [][]string
	locked  map[string]bool
	dirty   bool
	unsaved map[cellKey]bool
}

// New creates an empty table. Columns whose name is in locked are never editable.
func New(locked []string) *Table {
	t := &Table{
		locked:  make(map[string]bool, len(locked)),
		unsaved: make(map[cellKey]bool),
	}
	for _, name := range locked {
		t.locked[name] = true
	}
	return t
}

// Replace swaps in a freshly loaded table. Every row is rebuilt from the column count:
// extra source fields are dropped and missing ones become "".
func (t *Table) Replace(columns []string, raw [][]any) {
	t.columns = append([]string(nil), columns...)
	t.rows = make([][]string, len(raw))
	for i, src := range raw {
		row := make([]string, len(t.columns))
		for c := range row {
			if c < len(src) {
				row[c] = values.Normalize(src[c])
			}
		}
		t.rows[i] = row
	}
	t.dirty = false
	t.unsaved = make(map[cellKey]bool)
}

// Clear empties the table.
func (t *Table) Clear() {
	t.columns = nil
	t.rows = nil
	t.dirty = false
	t.unsaved = make(map[cellKey]bool)
}

// Set updates the cell at (r, c) and marks the table dirty.
func (t *Table) Set(r, c int, text string) error {
	if r < 0 || r >= len(t.rows) || c < 0 || c >= len(t.columns) {
		return &CellError{Row: r, Col: c, Err: ErrOutOfRange}
	}
	if !t.Editable(c) {
		return &CellError{Row: r, Col: c, Column: t.columns[c], Err: ErrLockedColumn}
	}
	t.rows[r][c] = text
	t.dirty = true
	t.unsaved[cellKey{r, c}] = true
	return nil
}

// MarkSaved clears the dirty flag and every per-cell unsaved marker.
func (t *Table) MarkSaved() {
	t.dirty = false
	t.unsaved = make(map[cellKey]bool)
}

// Dirty reports whether unsaved edits exist since the last load or save.
func (t *Table) Dirty() bool { return t.dirty }

// Unsaved reports whether the cell at (r, c) was edited since the last load or save.
func (t *Table) Unsaved(r, c int) bool { return t.unsaved[cellKey{r, c}] }

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Width returns the number of columns.
func (t *Table) Width() int { return len(t.columns) }

// Columns returns a copy of the column names.
func (t *Table) Columns() []string {
	return append([]string(nil), t.columns...)
}

// Rows returns a deep copy of the rows.
func (t *Table) Rows() [][]string {
	out := make([][]string, len(t.rows))
	for i, row := range t.rows {
		out[i] = append([]string(nil), row...)
	}
	return out
}

// Cell returns the display string at (r, c), or "" when out of range.
func (t *Table) Cell(r, c int) string {
	if r < 0 || r >= len(t.rows) || c < 0 || c >= len(t.columns) {
		return ""
	}
	return t.rows[r][c]
}

// IsLocked reports whether name is a locked column.
func (t *Table) IsLocked(name string) bool { return t.locked[name] }

// Editable reports whether column index c accepts user edits.
func (t *Table) Editable(c int) bool {
	return c >= 0 && c < len(t.columns) && !t.locked[t.columns[c]]
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, col := range t.columns {
		if col == name {
			return i
		}
	}
	return -1
}

// Payload returns the columns and every row coerced for transmission. Locked columns are
// included unchanged.
func (t *Table) Payload() ([]string, [][]values.Scalar) {
	rows := make([][]values.Scalar, len(t.rows))
	for i, row := range t.rows {
		rows[i] = values.CoerceRow(row)
	}
	return t.Columns(), rows
}
