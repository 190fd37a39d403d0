package grid

// View is a copy of everything a renderer needs.
type View struct {
	State  State
	Dirty  bool
	Status string
	Tone   Tone
	// Empty is the empty-state text; set only when there are no columns.
	Empty string
	// Err is the failure behind LoadError or SaveError.
	Err error

	Columns []string
	Rows    [][]string
	// Locked is parallel to Columns.
	Locked []bool
	// Unsaved is parallel to Rows.
	Unsaved [][]bool
}

// View snapshots the controller.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := View{
		State:   c.state,
		Dirty:   c.table.Dirty(),
		Status:  c.status,
		Tone:    c.tone,
		Err:     c.err,
		Columns: c.table.Columns(),
		Rows:    c.table.Rows(),
	}
	if len(v.Columns) == 0 {
		v.Empty = c.empty
	}

	v.Locked = make([]bool, len(v.Columns))
	for i := range v.Columns {
		v.Locked[i] = !c.table.Editable(i)
	}
	v.Unsaved = make([][]bool, len(v.Rows))
	for r := range v.Rows {
		v.Unsaved[r] = make([]bool, len(v.Columns))
		for col := range v.Columns {
			v.Unsaved[r][col] = c.table.Unsaved(r, col)
		}
	}
	return v
}

// Editable reports whether the cell at (row, col) accepts edits.
func (v View) Editable(row, col int) bool {
	return row >= 0 && row < len(v.Rows) && col >= 0 && col < len(v.Columns) && !v.Locked[col]
}

// ColumnIndex returns the position of the named column, or -1.
func (v View) ColumnIndex(name string) int {
	for i, col := range v.Columns {
		if col == name {
			return i
		}
	}
	return -1
}
