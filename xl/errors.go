package xl

import "errors"

// Failure kinds returned by workbook operations. Use errors.Is to test for
// them; the returned errors carry the sheet name or coordinate as context.
var (
	ErrDuplicateName    = errors.New("duplicate name")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrInvalidRange     = errors.New("invalid range")
	ErrInvalidReference = errors.New("invalid reference")
	ErrInvalidSheetName = errors.New("invalid sheet name")
	ErrUnsupportedValue = errors.New("unsupported value")
)
