// Package filter selects rows with boolean expressions over coerced cell values.
//
// Columns are variables when their name is a valid identifier; any column is reachable with
// col("Name"). The 1-based row number is bound to row.
package filter

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/ukaji3/gridsync-go/pkg/gridsync/values"
)

// Filter is a compiled row predicate for one column layout.
type Filter struct {
	source  string
	columns []string
	program *vm.Program
}

// Compile parses expression against columns.
func Compile(expression string, columns []string) (*Filter, error) {
	f := &Filter{source: expression, columns: append([]string(nil), columns...)}
	program, err := expr.Compile(expression,
		expr.Env(f.declarations()),
		expr.AllowUndefinedVariables(),
		expr.AsBool(),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid filter %q: %w", expression, err)
	}
	f.program = program
	return f, nil
}

// Match evaluates the filter on one row. index is 0-based.
func (f *Filter) Match(index int, row []string) (bool, error) {
	out, err := expr.Run(f.program, f.env(row, index+1))
	if err != nil {
		return false, fmt.Errorf("filter %q on row %d: %w", f.source, index+1, err)
	}
	ok, _ := out.(bool)
	return ok, nil
}

// Select returns the indices of matching rows.
func (f *Filter) Select(rows [][]string) ([]int, error) {
	keep := []int{}
	for i, row := range rows {
		ok, err := f.Match(i, row)
		if err != nil {
			return nil, err
		}
		if ok {
			keep = append(keep, i)
		}
	}
	return keep, nil
}

// declarations types only row and col. Columns stay undeclared so they compile as
// interface values; a column holds a number on one row and text on another.
func (f *Filter) declarations() map[string]any {
	return map[string]any{
		"row": 0,
		"col": func(string) any { return nil },
	}
}

// env binds one row. Blank cells are nil.
func (f *Filter) env(row []string, number int) map[string]any {
	cells := make(map[string]any, len(f.columns))
	for i, name := range f.columns {
		var text string
		if i < len(row) {
			text = row[i]
		}
		if v := values.Coerce(text); v.Kind() != values.KindEmpty {
			cells[name] = v.Interface()
		} else {
			cells[name] = nil
		}
	}

	env := make(map[string]any, len(cells)+2)
	for name, v := range cells {
		env[name] = v
	}
	env["row"] = number
	env["col"] = func(name string) any { return cells[name] }
	return env
}
