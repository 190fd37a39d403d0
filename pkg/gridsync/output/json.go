// Package output serializes grid views.
package output

import (
	"encoding/json"

	"github.com/ukaji3/gridsync-go/pkg/gridsync/grid"
	"github.com/ukaji3/gridsync-go/pkg/gridsync/values"
)

// Sheet is the JSON form of a grid view.
type Sheet struct {
	// State is the controller state name.
	State string `json:"state"`
	// Status is the status line.
	Status string `json:"status"`
	// Dirty reports unsaved edits.
	Dirty bool `json:"dirty"`
	// Empty is the empty-state text, set only when there are no columns.
	Empty string `json:"empty,omitempty"`
	// Columns is the ordered list of column names.
	Columns []string `json:"columns"`
	// Locked lists locked column names.
	Locked []string `json:"locked,omitempty"`
	// Rows holds the coerced cell values.
	Rows [][]values.Scalar `json:"rows"`
}

// FromView converts a view, keeping only the rows at the given indices. A nil keep slice
// keeps every row.
func FromView(v grid.View, keep []int) Sheet {
	s := Sheet{
		State:   v.State.String(),
		Status:  v.Status,
		Dirty:   v.Dirty,
		Empty:   v.Empty,
		Columns: v.Columns,
		Rows:    [][]values.Scalar{},
	}
	if s.Columns == nil {
		s.Columns = []string{}
	}
	for i, name := range v.Columns {
		if v.Locked[i] {
			s.Locked = append(s.Locked, name)
		}
	}
	if keep == nil {
		for _, row := range v.Rows {
			s.Rows = append(s.Rows, values.CoerceRow(row))
		}
		return s
	}
	for _, r := range keep {
		if r >= 0 && r < len(v.Rows) {
			s.Rows = append(s.Rows, values.CoerceRow(v.Rows[r]))
		}
	}
	return s
}

// ToJSON serializes a sheet.
func ToJSON(s Sheet, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(s, "", "  ")
	}
	return json.Marshal(s)
}
