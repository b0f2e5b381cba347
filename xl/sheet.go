package xl

import (
	"fmt"
	"slices"
)

type Sheet struct {
	Columns map[int]*Column // 1-based

	name     string
	rows     map[int]*Row
	heights  map[int]float32
	merges   []MergeRange
	workbook *Workbook
}

type Column struct {
	Width float32
}

// Name returns the sheet name.
func (s *Sheet) Name() string {
	return s.name
}

// owner returns the workbook, or ErrNotFound once the sheet was removed.
func (s *Sheet) owner() (*Workbook, error) {
	if s.workbook == nil {
		return nil, fmt.Errorf("%w: sheet %q was removed", ErrNotFound, s.name)
	}
	return s.workbook, nil
}

// SetCell stores d at (row, col), replacing any cell there. Strings are
// interned and styles resolved on behalf of this sheet; whatever the replaced
// cell held is released afterwards.
func (s *Sheet) SetCell(row, col int, d CellData) error {
	wb, err := s.owner()
	if err != nil {
		return err
	}
	if err := checkCoord(row, col); err != nil {
		return fmt.Errorf("sheet %q: %w", s.name, err)
	}
	typ, v, err := encodeValue(d)
	if err != nil {
		return fmt.Errorf("sheet %q cell %s: %w", s.name, CellCoordAsString(col, row), err)
	}
	if d.Style != nil {
		if err := d.Style.validate(); err != nil {
			return fmt.Errorf("sheet %q cell %s: %w", s.name, CellCoordAsString(col, row), err)
		}
	}

	c := &Cell{typ: typ, v: v, formula: d.Formula}
	if typ == CellTypeSharedString {
		c.sst = wb.sst.Intern(v, s.name)
		c.v = ""
	}
	if d.Style != nil {
		c.style = wb.styles.resolveStyle(d.Style, s.name)
		c.styled = true
	}

	r, ok := s.rows[row]
	if !ok {
		r = &Row{cells: map[int]*Cell{}}
		s.rows[row] = r
	}
	old := r.cells[col]
	r.cells[col] = c
	if old != nil {
		wb.releaseCell(s.name, old)
	}
	return nil
}

// SetCellRef is SetCell with an A1-style reference.
func (s *Sheet) SetCellRef(ref string, d CellData) error {
	row, col, err := ParseCellRef(ref)
	if err != nil {
		return fmt.Errorf("sheet %q: %w", s.name, err)
	}
	return s.SetCell(row, col, d)
}

func (s *Sheet) SetStr(row, col int, v string) error {
	return s.SetCell(row, col, CellData{Value: v})
}

func (s *Sheet) SetInlineStr(row, col int, v string) error {
	return s.SetCell(row, col, CellData{Value: v, Inline: true})
}

func (s *Sheet) SetInt(row, col int, v int64) error {
	return s.SetCell(row, col, CellData{Value: v})
}

func (s *Sheet) SetFloat(row, col int, v float64) error {
	return s.SetCell(row, col, CellData{Value: v})
}

func (s *Sheet) SetBool(row, col int, v bool) error {
	return s.SetCell(row, col, CellData{Value: v})
}

func (s *Sheet) SetFormula(row, col int, formula string, cached any) error {
	return s.SetCell(row, col, CellData{Value: cached, Formula: formula})
}

// SetStyle changes the format of an existing cell, or creates an empty
// formatted cell. A nil style returns the cell to the default format.
func (s *Sheet) SetStyle(row, col int, st *Style) error {
	wb, err := s.owner()
	if err != nil {
		return err
	}
	if err := checkCoord(row, col); err != nil {
		return fmt.Errorf("sheet %q: %w", s.name, err)
	}
	if st != nil {
		if err := st.validate(); err != nil {
			return fmt.Errorf("sheet %q cell %s: %w", s.name, CellCoordAsString(col, row), err)
		}
	}
	c, _ := s.Cell(row, col)
	if c == nil {
		if st == nil {
			return nil
		}
		return s.SetCell(row, col, CellData{Style: st})
	}
	oldStyle, oldStyled := c.style, c.styled
	c.style, c.styled = 0, false
	if st != nil {
		c.style = wb.styles.resolveStyle(st, s.name)
		c.styled = true
	}
	if oldStyled {
		_, evicted := wb.styles.release(oldStyle, s.name)
		wb.remap(nil, evicted)
	}
	return nil
}

// RemoveCell deletes the cell at (row, col) and releases its string and
// style. It returns false when there is no such cell.
func (s *Sheet) RemoveCell(row, col int) bool {
	wb, err := s.owner()
	if err != nil {
		return false
	}
	r, ok := s.rows[row]
	if !ok {
		return false
	}
	c, ok := r.cells[col]
	if !ok {
		return false
	}
	delete(r.cells, col)
	if len(r.cells) == 0 {
		delete(s.rows, row)
	}
	wb.releaseCell(s.name, c)
	return true
}

// Cell returns the cell at (row, col).
func (s *Sheet) Cell(row, col int) (*Cell, bool) {
	r, ok := s.rows[row]
	if !ok {
		return nil, false
	}
	c, ok := r.cells[col]
	return c, ok
}

// Value returns the text of the cell at (row, col) with shared strings
// resolved.
func (s *Sheet) Value(row, col int) (string, bool) {
	c, ok := s.Cell(row, col)
	if !ok {
		return "", false
	}
	if c.typ == CellTypeSharedString && s.workbook != nil {
		return s.workbook.sst.String(c.sst)
	}
	return c.v, true
}

// Rows returns the numbers of the rows holding cells, ascending.
func (s *Sheet) Rows() []int {
	return sortedKeys(s.rows)
}

// CellCount returns the number of cells on the sheet.
func (s *Sheet) CellCount() int {
	n := 0
	for _, r := range s.rows {
		n += len(r.cells)
	}
	return n
}

// AddMerge merges the cells of r. Bounds are validated first; a range that
// overlaps an existing merge is rejected with ErrConflict.
func (s *Sheet) AddMerge(r MergeRange) error {
	if _, err := s.owner(); err != nil {
		return err
	}
	if err := r.validate(); err != nil {
		return fmt.Errorf("sheet %q: %w", s.name, err)
	}
	merges, err := addMerge(r, s.merges)
	if err != nil {
		return fmt.Errorf("sheet %q: %w", s.name, err)
	}
	s.merges = merges
	return nil
}

// MergeCells is AddMerge with an "A1:C3" reference.
func (s *Sheet) MergeCells(ref string) error {
	r, err := ParseMergeRange(ref)
	if err != nil {
		return fmt.Errorf("sheet %q: %w", s.name, err)
	}
	return s.AddMerge(r)
}

// RemoveMerge removes the merge with exactly the bounds of r.
func (s *Sheet) RemoveMerge(r MergeRange) error {
	if _, err := s.owner(); err != nil {
		return err
	}
	merges, err := removeMerge(r, s.merges)
	if err != nil {
		return fmt.Errorf("sheet %q: %w", s.name, err)
	}
	s.merges = merges
	return nil
}

// Merges returns the merged ranges in insertion order.
func (s *Sheet) Merges() []MergeRange {
	return slices.Clone(s.merges)
}

// SetColumnWidth sets a custom width in characters; w <= 0 restores the
// default.
func (s *Sheet) SetColumnWidth(colNumber int, w float32) error {
	if _, err := s.owner(); err != nil {
		return err
	}
	if colNumber < 1 || colNumber > MaxColumns {
		return fmt.Errorf("sheet %q: %w: column %d", s.name, ErrInvalidReference, colNumber)
	}
	if w <= 0.0 {
		delete(s.Columns, colNumber)
		return nil
	}
	c, exists := s.Columns[colNumber]
	if !exists || c == nil {
		c = &Column{}
		s.Columns[colNumber] = c
	}
	c.Width = w
	return nil
}

// SetRowHeight sets a custom height in points; h <= 0 restores the default.
func (s *Sheet) SetRowHeight(rowNumber int, h float32) error {
	if _, err := s.owner(); err != nil {
		return err
	}
	if rowNumber < 1 || rowNumber > MaxRows {
		return fmt.Errorf("sheet %q: %w: row %d", s.name, ErrInvalidReference, rowNumber)
	}
	if h <= 0 {
		delete(s.heights, rowNumber)
	} else {
		s.heights[rowNumber] = h
	}
	return nil
}

// dimension returns the used range, or "" for an empty sheet.
func (s *Sheet) dimension() string {
	if len(s.rows) == 0 {
		return ""
	}
	d := MergeRange{StartRow: MaxRows, StartCol: MaxColumns}
	for n, r := range s.rows {
		d.StartRow, d.EndRow = min(d.StartRow, n), max(d.EndRow, n)
		for c := range r.cells {
			d.StartCol, d.EndCol = min(d.StartCol, c), max(d.EndCol, c)
		}
	}
	if d.StartRow == d.EndRow && d.StartCol == d.EndCol {
		return CellCoordAsString(d.StartCol, d.StartRow)
	}
	return d.String()
}

// detach drops the sheet's contents once the workbook has released them.
func (s *Sheet) detach() {
	s.workbook = nil
	s.rows = map[int]*Row{}
	s.merges = nil
}
