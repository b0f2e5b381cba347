package xl

import (
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Workbook owns the ordered sheets together with the shared string and style
// tables they reference. All mutation goes through Workbook and Sheet methods;
// each call either completes or fails without changing anything.
//
// A Workbook is not safe for concurrent mutation.
type Workbook struct {
	AppName string
	Created time.Time
	ID      uuid.UUID // written as dc:identifier in the core properties

	sheets   []*Sheet
	sheetMap map[string]*Sheet
	sst      *SharedStrings
	styles   *StyleTable
}

func NewWorkbook() *Workbook {
	return &Workbook{
		Created:  time.Now().UTC().Truncate(time.Second),
		ID:       uuid.New(),
		sheetMap: map[string]*Sheet{},
		sst:      newSharedStrings(),
		styles:   newStyleTable(),
	}
}

func (wb *Workbook) AddSheet(name string) (*Sheet, error) {
	if _, exists := wb.sheetMap[name]; exists {
		return nil, fmt.Errorf("%w: sheet '%s'", ErrDuplicateName, name)
	}

	if err := validateSheetName(name); err != nil {
		return nil, err
	}

	sheet := &Sheet{
		workbook: wb,
		name:     name,
		Columns:  map[int]*Column{},
		rows:     map[int]*Row{},
		heights:  map[int]float32{},
	}

	wb.sheets = append(wb.sheets, sheet)
	wb.sheetMap[name] = sheet

	return sheet, nil
}

// RemoveSheet deletes a sheet. Its strings and styles are released, entries
// nobody else uses are evicted and the cells of the remaining sheets are
// renumbered before RemoveSheet returns. Sheets after it move up one position.
func (wb *Workbook) RemoveSheet(name string) error {
	sheet, ok := wb.sheetMap[name]
	if !ok {
		return fmt.Errorf("%w: sheet '%s'", ErrNotFound, name)
	}

	strs := wb.sst.releaseAll(name)
	xfs := wb.styles.releaseAll(name)

	wb.sheets = slices.DeleteFunc(wb.sheets, func(s *Sheet) bool { return s == sheet })
	delete(wb.sheetMap, name)
	sheet.detach()

	wb.remap(strs, xfs)
	return nil
}

// Sheet returns the sheet with the given name.
func (wb *Workbook) Sheet(name string) (*Sheet, bool) {
	s, ok := wb.sheetMap[name]
	return s, ok
}

// Sheets returns the sheets in presentation order.
func (wb *Workbook) Sheets() []*Sheet {
	return slices.Clone(wb.sheets)
}

// SheetIndex returns the 1-based position of a sheet, which is also its
// sheetId and part number in the assembled package, or -1.
func (wb *Workbook) SheetIndex(name string) int {
	for i, s := range wb.sheets {
		if s.name == name {
			return i + 1
		}
	}
	return -1
}

func (wb *Workbook) SharedStrings() *SharedStrings {
	return wb.sst
}

func (wb *Workbook) Styles() *StyleTable {
	return wb.styles
}

// releaseCell gives back what a cell that left its sheet was holding.
func (wb *Workbook) releaseCell(sheet string, c *Cell) {
	var strs, xfs []int
	if c.typ == CellTypeSharedString {
		strs = wb.sst.release(c.sst, sheet)
	}
	if c.styled {
		_, xfs = wb.styles.release(c.style, sheet)
	}
	wb.remap(strs, xfs)
}

// remap rewrites every cell after the shared string and cell format tables
// were compacted. Both slices hold evicted ids in ascending order.
func (wb *Workbook) remap(strs, xfs []int) {
	if len(strs) == 0 && len(xfs) == 0 {
		return
	}
	for _, sh := range wb.sheets {
		for _, r := range sh.rows {
			for _, c := range r.cells {
				if len(strs) > 0 && c.typ == CellTypeSharedString {
					c.sst = shiftIndex(c.sst, strs)
				}
				if len(xfs) > 0 && c.styled {
					c.style = shiftIndex(c.style, xfs)
				}
			}
		}
	}
}

func validateSheetName(s string) error {
	n := utf8.RuneCountInString(s)
	if n == 0 {
		return fmt.Errorf("%w: empty sheet name is not allowed", ErrInvalidSheetName)
	} else if n > 31 {
		return fmt.Errorf("%w: the sheet name is too long", ErrInvalidSheetName)
	}
	if strings.HasPrefix(s, "'") || strings.HasSuffix(s, "'") {
		return fmt.Errorf("%w: the first or last character of the sheet name can not be a single quote", ErrInvalidSheetName)
	}
	if strings.ContainsAny(s, ":\\/?*[]") {
		return fmt.Errorf("%w: the sheet can not contain any of the characters :\\/?*[]", ErrInvalidSheetName)
	}
	if !utf8.ValidString(s) || strings.ContainsFunc(s, unicode.IsControl) {
		return fmt.Errorf("%w: the sheet name contains control characters or invalid UTF-8", ErrInvalidSheetName)
	}
	return nil
}
