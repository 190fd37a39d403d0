// Package xlsx stores a sheet in a local workbook so it can be pulled from or pushed to the
// backend.
package xlsx

import (
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/gridsync-go/pkg/gridsync/remote"
	"github.com/ukaji3/gridsync-go/pkg/gridsync/values"
)

// DefaultSheet is the sheet used when none is named.
const DefaultSheet = "Sheet1"

// ErrSheetNotFound indicates the named sheet does not exist in the workbook.
var ErrSheetNotFound = errors.New("sheet not found")

// Source reads and writes one sheet of a workbook file. The first non-empty row of the data
// region is the header.
type Source struct {
	path   string
	sheet  string
	locked map[string]bool
}

// New creates a Source. An empty sheet selects the workbook's first sheet on load and
// DefaultSheet on save.
func New(path, sheet string, locked []string) *Source {
	s := &Source{path: path, sheet: sheet, locked: make(map[string]bool, len(locked))}
	for _, name := range locked {
		s.locked[name] = true
	}
	return s
}

// Path returns the workbook path.
func (s *Source) Path() string { return s.path }

// Load reads the header and data rows.
func (s *Source) Load(ctx context.Context) (*remote.Payload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheet := s.sheet
	if sheet == "" {
		list := f.GetSheetList()
		if len(list) == 0 {
			return nil, ErrSheetNotFound
		}
		sheet = list[0]
	} else if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, sheet)
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}
	return extractTable(rows), nil
}

// extractTable turns the bounding box of non-empty cells into a payload.
func extractTable(rows [][]string) *remote.Payload {
	minRow, maxRow, minCol, maxCol := findDataBounds(rows)
	p := &remote.Payload{Columns: []string{}, Rows: [][]any{}}
	if minRow < 0 {
		return p
	}

	for c := minCol; c <= maxCol; c++ {
		p.Columns = append(p.Columns, cellAt(rows, minRow, c))
	}
	for r := minRow + 1; r <= maxRow; r++ {
		row := make([]any, 0, maxCol-minCol+1)
		for c := minCol; c <= maxCol; c++ {
			row = append(row, cellAt(rows, r, c))
		}
		p.Rows = append(p.Rows, row)
	}
	return p
}

func cellAt(rows [][]string, r, c int) string {
	if r >= len(rows) || c >= len(rows[r]) {
		return ""
	}
	return rows[r][c]
}

// findDataBounds finds the bounding box of non-empty cells. All bounds are -1 for an empty
// sheet.
func findDataBounds(rows [][]string) (minRow, maxRow, minCol, maxCol int) {
	minRow, maxRow = -1, -1
	minCol, maxCol = -1, -1

	for rowIdx, row := range rows {
		for colIdx, cell := range row {
			if cell == "" {
				continue
			}
			if minRow < 0 || rowIdx < minRow {
				minRow = rowIdx
			}
			if rowIdx > maxRow {
				maxRow = rowIdx
			}
			if minCol < 0 || colIdx < minCol {
				minCol = colIdx
			}
			if colIdx > maxCol {
				maxCol = colIdx
			}
		}
	}

	return
}

// Save writes a fresh workbook holding the header and rows. Numbers are stored as numeric
// cells and locked columns are shaded.
func (s *Source) Save(ctx context.Context, columns []string, rows [][]values.Scalar) (remote.WriteResult, error) {
	if err := ctx.Err(); err != nil {
		return remote.WriteResult{}, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := s.sheet
	if sheet == "" {
		sheet = DefaultSheet
	}
	if sheet != DefaultSheet {
		if err := f.SetSheetName(DefaultSheet, sheet); err != nil {
			return remote.WriteResult{}, err
		}
	}

	header := make([]interface{}, len(columns))
	for i, name := range columns {
		header[i] = name
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return remote.WriteResult{}, err
	}

	for r, row := range rows {
		cells := make([]interface{}, len(row))
		for c, v := range row {
			switch v.Kind() {
			case values.KindNumber:
				n, _ := v.Float()
				cells[c] = n
			case values.KindText:
				cells[c] = v.String()
			default:
				cells[c] = nil
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return remote.WriteResult{}, err
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return remote.WriteResult{}, err
		}
	}

	if err := s.styleSheet(f, sheet, columns, len(rows)); err != nil {
		return remote.WriteResult{}, err
	}

	if err := f.SaveAs(s.path); err != nil {
		return remote.WriteResult{}, err
	}
	return remote.WriteResult{Outcome: remote.ConfirmedOK}, nil
}

func (s *Source) styleSheet(f *excelize.File, sheet string, columns []string, nRows int) error {
	if len(columns) == 0 {
		return nil
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(columns), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return err
	}

	if nRows == 0 {
		return nil
	}
	lockedStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E7E6E6"}, Pattern: 1},
	})
	if err != nil {
		return err
	}
	for i, name := range columns {
		if !s.locked[name] {
			continue
		}
		top, err := excelize.CoordinatesToCellName(i+1, 2)
		if err != nil {
			return err
		}
		bottom, err := excelize.CoordinatesToCellName(i+1, nRows+1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, top, bottom, lockedStyle); err != nil {
			return err
		}
	}
	return nil
}
