package xl

import (
	"fmt"
	"strconv"
)

// Worksheet limits.
const (
	MaxRows    = 1048576
	MaxColumns = 16384 // XFD
)

// Row is a sparse set of cells keyed by 1-based column number.
type Row struct {
	cells map[int]*Cell
}

// Len returns the number of cells in the row.
func (r *Row) Len() int {
	return len(r.cells)
}

func ColumnNumberAsLetters(n int) string {
	if n < 1 {
		panic("invalid column number")
	}
	var s string
	for n > 0 {
		s = string(rune((n-1)%26+65)) + s
		n = (n - 1) / 26
	}
	return s
}

// ColumnLetterToIndex decodes a column reference ("A" = 1, "AA" = 27). It
// returns -1 for an empty string, any character outside A-Z, or a column past
// the worksheet limit.
func ColumnLetterToIndex(s string) int {
	if s == "" {
		return -1
	}
	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < 'A' || c > 'Z' {
			return -1
		}
		n = n*26 + int(c-'A') + 1
		if n > MaxColumns {
			return -1
		}
	}
	return n
}

func CellCoordAsString(col, row int) string {
	if row < 0 {
		panic("invalid row number")
	}
	return ColumnNumberAsLetters(col) + strconv.Itoa(row)
}

// ParseCellRef splits an A1-style reference into its row and column numbers.
func ParseCellRef(ref string) (row, col int, err error) {
	i := 0
	for i < len(ref) && ref[i] >= 'A' && ref[i] <= 'Z' {
		i++
	}
	digits := ref[i:]
	col = ColumnLetterToIndex(ref[:i])
	if col < 0 || digits == "" || digits[0] < '1' || digits[0] > '9' {
		return 0, 0, fmt.Errorf("%w: cell %q", ErrInvalidReference, ref)
	}
	row, err = strconv.Atoi(digits)
	if err != nil || row > MaxRows {
		return 0, 0, fmt.Errorf("%w: cell %q", ErrInvalidReference, ref)
	}
	return row, col, nil
}

func checkCoord(row, col int) error {
	if row < 1 || row > MaxRows || col < 1 || col > MaxColumns {
		return fmt.Errorf("%w: row %d column %d", ErrInvalidReference, row, col)
	}
	return nil
}
