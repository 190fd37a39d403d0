package xlsx

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/gridsync-go/pkg/gridsync/values"
)

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.xlsx")
	src := New(path, "Ledger", []string{"Cumulative Balance"})
	columns := []string{"Date", "Amount", "Cumulative Balance", "Note"}
	rows := [][]values.Scalar{
		{values.Text("2024-01-01"), values.Number(10), values.Number(10), values.Text("opening")},
		{values.Text("2024-01-02"), values.Number(-2.5), values.Number(7.5), values.Empty()},
	}

	_, err := src.Save(context.Background(), columns, rows)
	require.NoError(t, err)

	p, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, columns, p.Columns)
	assert.Equal(t, [][]any{
		{"2024-01-01", "10", "10", "opening"},
		{"2024-01-02", "-2.5", "7.5", ""},
	}, p.Rows)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	amount, err := f.GetCellType("Ledger", "B2")
	require.NoError(t, err)
	assert.NotEqual(t, excelize.CellTypeSharedString, amount)

	lockedStyle, err := f.GetCellStyle("Ledger", "C2")
	require.NoError(t, err)
	plainStyle, err := f.GetCellStyle("Ledger", "D2")
	require.NoError(t, err)
	assert.NotEqual(t, plainStyle, lockedStyle)
}

func TestLoadFindsOffsetTable(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Sheet1"
	f.SetCellValue(sheet, "B3", "Item")
	f.SetCellValue(sheet, "C3", "Qty")
	f.SetCellValue(sheet, "B4", "apples")
	f.SetCellValue(sheet, "C4", 3)
	f.SetCellValue(sheet, "B6", "pears")

	path := filepath.Join(t.TempDir(), "offset.xlsx")
	require.NoError(t, f.SaveAs(path))

	p, err := New(path, "", nil).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Item", "Qty"}, p.Columns)
	assert.Equal(t, [][]any{
		{"apples", "3"},
		{"", ""},
		{"pears", ""},
	}, p.Rows)
}

func TestLoadEmptySheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	require.NoError(t, f.SaveAs(path))

	p, err := New(path, "", nil).Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, p.Columns)
	assert.Empty(t, p.Rows)
}

func TestLoadMissingSheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	path := filepath.Join(t.TempDir(), "book.xlsx")
	require.NoError(t, f.SaveAs(path))

	_, err := New(path, "Nope", nil).Load(context.Background())
	assert.ErrorIs(t, err, ErrSheetNotFound)
}

func TestFindDataBounds(t *testing.T) {
	tests := []struct {
		rows                           [][]string
		minRow, maxRow, minCol, maxCol int
	}{
		{nil, -1, -1, -1, -1},
		{[][]string{{"", ""}, {"", ""}}, -1, -1, -1, -1},
		{[][]string{{"a"}}, 0, 0, 0, 0},
		{[][]string{{}, {"", "x"}, {"y", "", "", "z"}}, 1, 2, 0, 3},
	}

	for _, tt := range tests {
		minRow, maxRow, minCol, maxCol := findDataBounds(tt.rows)
		assert.Equal(t, []int{tt.minRow, tt.maxRow, tt.minCol, tt.maxCol}, []int{minRow, maxRow, minCol, maxCol}, "rows %v", tt.rows)
	}
}
