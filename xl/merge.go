package xl

import (
	"fmt"
	"slices"
	"strings"
)

// MergeRange is a rectangular block of cells, bounds inclusive and 1-based.
type MergeRange struct {
	StartRow, EndRow int
	StartCol, EndCol int
}

// Overlaps reports whether the two ranges share at least one cell. Ranges
// that only touch along an edge do not overlap.
func (a MergeRange) Overlaps(b MergeRange) bool {
	return !(a.EndRow < b.StartRow || a.StartRow > b.EndRow ||
		a.EndCol < b.StartCol || a.StartCol > b.EndCol)
}

// String returns the range in A1:B2 notation.
func (r MergeRange) String() string {
	if r.StartRow < 0 || r.EndRow < 0 || r.StartCol < 1 || r.EndCol < 1 {
		return fmt.Sprintf("rows %d-%d columns %d-%d", r.StartRow, r.EndRow, r.StartCol, r.EndCol)
	}
	return CellCoordAsString(r.StartCol, r.StartRow) + ":" + CellCoordAsString(r.EndCol, r.EndRow)
}

func (r MergeRange) validate() error {
	if r.StartRow < 1 || r.StartCol < 1 || r.EndRow > MaxRows || r.EndCol > MaxColumns ||
		r.StartRow > r.EndRow || r.StartCol > r.EndCol {
		return fmt.Errorf("%w: rows %d-%d columns %d-%d",
			ErrInvalidRange, r.StartRow, r.EndRow, r.StartCol, r.EndCol)
	}
	return nil
}

// ParseMergeRange parses "A1:C3". Corners may be given in any order.
func ParseMergeRange(ref string) (MergeRange, error) {
	from, to, ok := strings.Cut(ref, ":")
	if !ok {
		return MergeRange{}, fmt.Errorf("%w: range %q", ErrInvalidReference, ref)
	}
	r1, c1, err := ParseCellRef(from)
	if err != nil {
		return MergeRange{}, err
	}
	r2, c2, err := ParseCellRef(to)
	if err != nil {
		return MergeRange{}, err
	}
	return MergeRange{
		StartRow: min(r1, r2), EndRow: max(r1, r2),
		StartCol: min(c1, c2), EndCol: max(c1, c2),
	}, nil
}

// addMerge appends r unless it overlaps an existing range.
func addMerge(r MergeRange, existing []MergeRange) ([]MergeRange, error) {
	for _, m := range existing {
		if r.Overlaps(m) {
			return existing, fmt.Errorf("%w: %s overlaps %s", ErrConflict, r, m)
		}
	}
	return append(existing, r), nil
}

// removeMerge removes the range whose four bounds equal r.
func removeMerge(r MergeRange, existing []MergeRange) ([]MergeRange, error) {
	i := slices.Index(existing, r)
	if i < 0 {
		return existing, fmt.Errorf("%w: merge %s", ErrNotFound, r)
	}
	return slices.Delete(existing, i, i+1), nil
}
