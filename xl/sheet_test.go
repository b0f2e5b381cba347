package xl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetCellTypes(t *testing.T) {
	wb := NewWorkbook()
	s := mustSheet(t, wb, "S")

	require.NoError(t, s.SetStr(1, 1, "shared"))
	require.NoError(t, s.SetInlineStr(1, 2, "inline"))
	require.NoError(t, s.SetInt(1, 3, -42))
	require.NoError(t, s.SetFloat(1, 4, 2.5))
	require.NoError(t, s.SetBool(1, 5, true))
	require.NoError(t, s.SetFormula(1, 6, "CONCAT(A1,B1)", "sharedinline"))
	require.NoError(t, s.SetFormula(1, 7, "C1*2", -84))
	require.NoError(t, s.SetCell(1, 8, CellData{Value: ErrorNA}))
	require.NoError(t, s.SetCellRef("I1", CellData{Value: uint8(7)}))

	want := []struct {
		typ CellType
		raw string
	}{
		{CellTypeSharedString, "0"},
		{CellTypeInlineString, "inline"},
		{CellTypeNumber, "-42"},
		{CellTypeNumber, "2.5"},
		{CellTypeBool, "1"},
		{CellTypeFormulaString, "sharedinline"},
		{CellTypeNumber, "-84"},
		{CellTypeError, "#N/A"},
		{CellTypeNumber, "7"},
	}
	for i, w := range want {
		c, ok := s.Cell(1, i+1)
		require.True(t, ok, "column %d", i+1)
		assert.Equal(t, w.typ, c.Type(), "column %d", i+1)
		assert.Equal(t, w.raw, c.Raw(), "column %d", i+1)
	}

	v, ok := s.Value(1, 1)
	require.True(t, ok)
	assert.Equal(t, "shared", v)

	c, _ := s.Cell(1, 6)
	assert.Equal(t, "CONCAT(A1,B1)", c.Formula())
	assert.Equal(t, []string{"shared"}, wb.SharedStrings().Snapshot())
}

func TestSetCellRejectsBadInput(t *testing.T) {
	wb := NewWorkbook()
	s := mustSheet(t, wb, "S")

	assert.ErrorIs(t, s.SetStr(0, 1, "x"), ErrInvalidReference)
	assert.ErrorIs(t, s.SetStr(1, MaxColumns+1, "x"), ErrInvalidReference)
	assert.ErrorIs(t, s.SetCellRef("1A", CellData{Value: 1}), ErrInvalidReference)
	assert.ErrorIs(t, s.SetCell(1, 1, CellData{Value: struct{}{}}), ErrUnsupportedValue)
	assert.ErrorIs(t, s.SetCell(1, 1, CellData{Value: ErrorCode("#OOPS")}), ErrUnsupportedValue)
	assert.ErrorIs(t, s.SetCell(1, 1, CellData{Value: "x", Style: &Style{NumFmtID: 200}}), ErrUnsupportedValue)

	assert.Equal(t, 0, s.CellCount())
	assert.Equal(t, 0, wb.SharedStrings().Len())
	assert.Len(t, wb.Styles().CellFormats(), 1)
}

func TestOverwriteReleasesPreviousString(t *testing.T) {
	wb := NewWorkbook()
	s := mustSheet(t, wb, "S")

	require.NoError(t, s.SetStr(1, 1, "first"))
	require.NoError(t, s.SetStr(2, 1, "kept"))
	require.NoError(t, s.SetStr(1, 1, "second"))

	assert.Equal(t, []string{"kept", "second"}, wb.SharedStrings().Snapshot())
	c, _ := s.Cell(1, 1)
	idx, ok := c.StringIndex()
	require.True(t, ok)
	assert.Equal(t, 1, idx)
	c, _ = s.Cell(2, 1)
	idx, _ = c.StringIndex()
	assert.Equal(t, 0, idx)
}

func TestOverwriteWithSameStyleKeepsID(t *testing.T) {
	wb := NewWorkbook()
	s := mustSheet(t, wb, "S")
	bold := &Style{Font: &Font{Bold: true}}

	require.NoError(t, s.SetCell(1, 1, CellData{Value: 1, Style: bold}))
	require.NoError(t, s.SetCell(1, 1, CellData{Value: 2, Style: bold}))

	c, _ := s.Cell(1, 1)
	assert.Equal(t, 1, c.Style())
	assert.Equal(t, 1, wb.Styles().Usage(1, "S"))

	require.NoError(t, s.SetCell(1, 1, CellData{Value: 3}))
	c, _ = s.Cell(1, 1)
	assert.Equal(t, 0, c.Style())
	assert.Len(t, wb.Styles().CellFormats(), 1)
	assert.Len(t, wb.Styles().Fonts(), 1)
}

func TestRemoveCell(t *testing.T) {
	wb := NewWorkbook()
	s := mustSheet(t, wb, "S")

	assert.False(t, s.RemoveCell(1, 1))

	require.NoError(t, s.SetCell(3, 2, CellData{Value: "x", Style: &Style{NumFmt: "0.0"}}))
	require.NoError(t, s.SetStr(4, 1, "y"))
	assert.Equal(t, []int{3, 4}, s.Rows())

	assert.True(t, s.RemoveCell(3, 2))
	assert.False(t, s.RemoveCell(3, 2))
	assert.Equal(t, []int{4}, s.Rows())
	assert.Equal(t, []string{"y"}, wb.SharedStrings().Snapshot())
	assert.Len(t, wb.Styles().CellFormats(), 1)
	assert.Empty(t, wb.Styles().NumFmts())

	c, _ := s.Cell(4, 1)
	idx, _ := c.StringIndex()
	assert.Equal(t, 0, idx)
}

func TestFourIdenticalFormats(t *testing.T) {
	wb := NewWorkbook()
	s := mustSheet(t, wb, "S")
	st := wb.Styles()

	for col := 1; col <= 4; col++ {
		require.NoError(t, s.SetCell(1, col, CellData{Value: col, Style: &Style{Font: &Font{Bold: true}}}))
	}
	require.NoError(t, s.SetCell(2, 1, CellData{Value: "x", Style: &Style{Font: &Font{Italic: true}}}))

	c, _ := s.Cell(1, 1)
	bold := c.Style()
	c, _ = s.Cell(2, 1)
	italic := c.Style()
	require.Equal(t, 1, bold)
	require.Equal(t, 2, italic)
	assert.Equal(t, 4, st.Usage(bold, "S"))

	for col := 1; col <= 3; col++ {
		require.True(t, s.RemoveCell(1, col))
	}
	assert.Len(t, st.CellFormats(), 3)
	assert.Equal(t, 1, st.Usage(bold, "S"))

	require.True(t, s.RemoveCell(1, 4))
	assert.Len(t, st.CellFormats(), 2)
	c, _ = s.Cell(2, 1)
	assert.Equal(t, 1, c.Style())
	xf, _ := st.CellFormat(1)
	assert.Equal(t, Font{Name: DefaultFontName, Size: DefaultFontSize, Italic: true}, st.Fonts()[xf.FontID])
}

func TestSetStyle(t *testing.T) {
	wb := NewWorkbook()
	s := mustSheet(t, wb, "S")
	wrap := &Style{Alignment: &Alignment{WrapText: true}}

	require.NoError(t, s.SetStyle(1, 1, nil))
	assert.Equal(t, 0, s.CellCount())

	require.NoError(t, s.SetStyle(1, 1, wrap))
	c, ok := s.Cell(1, 1)
	require.True(t, ok)
	assert.Equal(t, 1, c.Style())
	assert.Equal(t, "", c.Raw())

	require.NoError(t, s.SetStr(2, 2, "text"))
	require.NoError(t, s.SetStyle(2, 2, wrap))
	assert.Equal(t, 2, wb.Styles().Usage(1, "S"))
	v, _ := s.Value(2, 2)
	assert.Equal(t, "text", v)

	require.NoError(t, s.SetStyle(1, 1, nil))
	require.NoError(t, s.SetStyle(2, 2, nil))
	assert.Len(t, wb.Styles().CellFormats(), 1)

	assert.ErrorIs(t, s.SetStyle(0, 1, wrap), ErrInvalidReference)
}

func TestSheetMerges(t *testing.T) {
	wb := NewWorkbook()
	s := mustSheet(t, wb, "S")

	require.NoError(t, s.MergeCells("A1:B2"))
	assert.ErrorIs(t, s.AddMerge(MergeRange{StartRow: 2, EndRow: 1, StartCol: 1, EndCol: 1}), ErrInvalidRange)
	assert.ErrorIs(t, s.AddMerge(MergeRange{StartRow: 0, EndRow: 1, StartCol: 1, EndCol: 1}), ErrInvalidRange)
	assert.ErrorIs(t, s.AddMerge(MergeRange{StartRow: 2, EndRow: 3, StartCol: 2, EndCol: 3}), ErrConflict)
	require.NoError(t, s.AddMerge(MergeRange{StartRow: 3, EndRow: 3, StartCol: 1, EndCol: 2}))

	assert.ErrorIs(t, s.RemoveMerge(MergeRange{StartRow: 1, EndRow: 2, StartCol: 1, EndCol: 3}), ErrNotFound)
	require.NoError(t, s.RemoveMerge(MergeRange{StartRow: 1, EndRow: 2, StartCol: 1, EndCol: 2}))
	assert.Equal(t, []MergeRange{{StartRow: 3, EndRow: 3, StartCol: 1, EndCol: 2}}, s.Merges())
	require.NoError(t, s.AddMerge(MergeRange{StartRow: 2, EndRow: 2, StartCol: 2, EndCol: 2}))
}

func TestSheetDimension(t *testing.T) {
	wb := NewWorkbook()
	s := mustSheet(t, wb, "S")
	assert.Equal(t, "", s.dimension())

	require.NoError(t, s.SetInt(2, 3, 1))
	assert.Equal(t, "C2", s.dimension())

	require.NoError(t, s.SetInt(5, 1, 1))
	assert.Equal(t, "A2:C5", s.dimension())
}

func TestColumnWidthAndRowHeight(t *testing.T) {
	wb := NewWorkbook()
	s := mustSheet(t, wb, "S")

	assert.ErrorIs(t, s.SetColumnWidth(0, 10), ErrInvalidReference)
	assert.ErrorIs(t, s.SetColumnWidth(MaxColumns+1, 10), ErrInvalidReference)
	assert.ErrorIs(t, s.SetRowHeight(0, 10), ErrInvalidReference)
	assert.ErrorIs(t, s.SetRowHeight(MaxRows+1, 10), ErrInvalidReference)
	assert.Empty(t, s.Columns)

	require.NoError(t, s.SetColumnWidth(3, 15))
	require.NoError(t, s.SetColumnWidth(3, 18))
	assert.Equal(t, float32(18), s.Columns[3].Width)
	require.NoError(t, s.SetColumnWidth(3, 0))
	assert.NotContains(t, s.Columns, 3)

	s.Columns[4] = nil
	require.NoError(t, s.SetColumnWidth(4, 9))
	assert.Equal(t, float32(9), s.Columns[4].Width)

	require.NoError(t, s.SetRowHeight(2, 24))
	require.NoError(t, s.SetRowHeight(2, -1))
	assert.Empty(t, s.heights)

	require.NoError(t, wb.RemoveSheet("S"))
	assert.ErrorIs(t, s.SetColumnWidth(1, 10), ErrNotFound)
	assert.ErrorIs(t, s.SetRowHeight(1, 10), ErrNotFound)
}
