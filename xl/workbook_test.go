package xl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddSheet(t *testing.T) {
	wb := NewWorkbook()

	_, err := wb.AddSheet("Data")
	require.NoError(t, err)
	_, err = wb.AddSheet("Data")
	assert.ErrorIs(t, err, ErrDuplicateName)
	_, err = wb.AddSheet("data")
	assert.NoError(t, err)

	for _, name := range []string{"", "'quoted'", "a/b", "x[1]", "tab\there", "bad\xffname", "this name is far too long for excel"} {
		_, err := wb.AddSheet(name)
		assert.ErrorIs(t, err, ErrInvalidSheetName, "name %q", name)
	}

	assert.Equal(t, 1, wb.SheetIndex("Data"))
	assert.Equal(t, 2, wb.SheetIndex("data"))
	assert.Equal(t, -1, wb.SheetIndex("missing"))
	assert.Len(t, wb.Sheets(), 2)

	s, ok := wb.Sheet("data")
	require.True(t, ok)
	assert.Equal(t, "data", s.Name())
}

func TestRemoveSheetMissing(t *testing.T) {
	wb := NewWorkbook()
	mustSheet(t, wb, "A")
	assert.ErrorIs(t, wb.RemoveSheet("B"), ErrNotFound)
	assert.Len(t, wb.Sheets(), 1)
}

func TestRemoveSheetCascadesStrings(t *testing.T) {
	wb := NewWorkbook()
	a := mustSheet(t, wb, "A")
	b := mustSheet(t, wb, "B")
	c := mustSheet(t, wb, "C")

	require.NoError(t, a.SetStr(1, 1, "shared"))
	require.NoError(t, b.SetStr(1, 1, "shared"))
	require.NoError(t, c.SetStr(1, 1, "shared"))
	require.NoError(t, a.SetStr(2, 1, "onlyA"))
	require.NoError(t, b.SetStr(2, 1, "onlyB"))
	require.NoError(t, c.SetStr(2, 1, "onlyC"))

	sst := wb.SharedStrings()
	assert.Equal(t, []string{"A", "B", "C"}, sst.Sheets(0))

	require.NoError(t, wb.RemoveSheet("B"))

	assert.Equal(t, []string{"shared", "onlyA", "onlyC"}, sst.Snapshot())
	assert.Equal(t, []string{"A", "C"}, sst.Sheets(0))

	cell, _ := c.Cell(2, 1)
	idx, _ := cell.StringIndex()
	assert.Equal(t, 2, idx)
	v, _ := c.Value(2, 1)
	assert.Equal(t, "onlyC", v)

	v, _ = a.Value(2, 1)
	assert.Equal(t, "onlyA", v)

	assert.Equal(t, []*Sheet{a, c}, wb.Sheets())
	assert.Equal(t, 2, wb.SheetIndex("C"))
	_, ok := wb.Sheet("B")
	assert.False(t, ok)
}

func TestRemoveSheetCascadesStyles(t *testing.T) {
	wb := NewWorkbook()
	a := mustSheet(t, wb, "A")
	b := mustSheet(t, wb, "B")
	st := wb.Styles()

	red := &Style{Fill: &Fill{FgColor: "ffff0000"}}
	blue := &Style{Fill: &Fill{FgColor: "FF0000FF"}}
	require.NoError(t, b.SetCell(1, 1, CellData{Value: 1, Style: red}))
	require.NoError(t, a.SetCell(1, 1, CellData{Value: 2, Style: blue}))
	require.NoError(t, a.SetCell(1, 2, CellData{Value: 3, Style: red}))

	c, _ := a.Cell(1, 1)
	require.Equal(t, 2, c.Style())
	assert.Len(t, st.Fills(), 4)

	require.NoError(t, wb.RemoveSheet("B"))
	assert.Len(t, st.CellFormats(), 3)
	assert.Len(t, st.Fills(), 4)

	require.True(t, a.RemoveCell(1, 2))
	assert.Len(t, st.CellFormats(), 2)
	assert.Len(t, st.Fills(), 3)

	c, _ = a.Cell(1, 1)
	assert.Equal(t, 1, c.Style())
	xf, ok := st.CellFormat(1)
	require.True(t, ok)
	assert.Equal(t, 2, xf.FillID)
	assert.Equal(t, "FF0000FF", st.Fills()[2].FgColor)
}

func TestRemoveSheetEvictsStylesUsedElsewhere(t *testing.T) {
	wb := NewWorkbook()
	a := mustSheet(t, wb, "A")
	b := mustSheet(t, wb, "B")
	st := wb.Styles()

	require.NoError(t, a.SetCell(1, 1, CellData{Value: "x", Style: &Style{NumFmt: "0.000"}}))
	require.NoError(t, b.SetCell(1, 1, CellData{Value: "y", Style: &Style{NumFmt: "0.00%"}}))

	c, _ := b.Cell(1, 1)
	require.Equal(t, 2, c.Style())

	require.NoError(t, wb.RemoveSheet("A"))
	assert.Equal(t, []string{"y"}, wb.SharedStrings().Snapshot())
	assert.Len(t, st.CellFormats(), 2)
	assert.Equal(t, []NumFmt{{ID: NumFmtCustomBase, Code: "0.00%"}}, st.NumFmts())

	c, _ = b.Cell(1, 1)
	assert.Equal(t, 1, c.Style())
	idx, _ := c.StringIndex()
	assert.Equal(t, 0, idx)
	xf, _ := st.CellFormat(1)
	assert.Equal(t, NumFmtCustomBase, xf.NumFmtID)
}

func TestRemovedSheetHandle(t *testing.T) {
	wb := NewWorkbook()
	a := mustSheet(t, wb, "A")
	require.NoError(t, a.SetStr(1, 1, "x"))
	require.NoError(t, wb.RemoveSheet("A"))

	assert.Equal(t, 0, wb.SharedStrings().Len())
	assert.ErrorIs(t, a.SetStr(1, 1, "y"), ErrNotFound)
	assert.ErrorIs(t, a.SetStyle(1, 1, &Style{}), ErrNotFound)
	assert.ErrorIs(t, a.AddMerge(MergeRange{StartRow: 1, EndRow: 1, StartCol: 1, EndCol: 2}), ErrNotFound)
	assert.False(t, a.RemoveCell(1, 1))
	assert.Equal(t, 0, a.CellCount())
	assert.Equal(t, 0, wb.SharedStrings().Len())

	_, err := wb.AddSheet("A")
	assert.NoError(t, err)
}
