package xl

import (
	"fmt"
	"math"
	"strconv"
)

// Cell is the stored form of one worksheet cell. For shared strings the cell
// holds the table index, never the text.
type Cell struct {
	typ     CellType
	v       string // literal value, unused for shared strings
	sst     int    // shared string index
	formula string
	style   int  // cell format id
	styled  bool // the cell holds a use of style
}

// CellType is the type of cell value type.
type CellType int

// Cell value types enumeration. These are the six OOXML cell types.
const (
	CellTypeNumber CellType = iota
	CellTypeSharedString
	CellTypeInlineString
	CellTypeBool
	CellTypeFormulaString
	CellTypeError
)

// Code returns the value of the t attribute for the type.
func (t CellType) Code() string {
	switch t {
	case CellTypeSharedString:
		return "s"
	case CellTypeInlineString:
		return "inlineStr"
	case CellTypeBool:
		return "b"
	case CellTypeFormulaString:
		return "str"
	case CellTypeError:
		return "e"
	default:
		return "n"
	}
}

func (t CellType) String() string {
	return t.Code()
}

// ErrorCode is a cell error value.
type ErrorCode string

const (
	ErrorNull    ErrorCode = "#NULL!"
	ErrorDiv0    ErrorCode = "#DIV/0!"
	ErrorValue   ErrorCode = "#VALUE!"
	ErrorRef     ErrorCode = "#REF!"
	ErrorName    ErrorCode = "#NAME?"
	ErrorNum     ErrorCode = "#NUM!"
	ErrorNA      ErrorCode = "#N/A"
	ErrorGetData ErrorCode = "#GETTING_DATA"
)

func (e ErrorCode) valid() bool {
	switch e {
	case ErrorNull, ErrorDiv0, ErrorValue, ErrorRef, ErrorName, ErrorNum, ErrorNA, ErrorGetData:
		return true
	}
	return false
}

// CellData is the caller-side description of a cell.
//
// Value may be nil, a string, a bool, any integer or float type, or an
// ErrorCode. Strings are stored in the shared string table unless Inline is
// set or the cell has a Formula, in which case the string is the cached
// formula result. A nil Value with a Style gives an empty formatted cell.
type CellData struct {
	Value   any
	Formula string
	Inline  bool
	Style   *Style
}

func (c *Cell) Type() CellType  { return c.typ }
func (c *Cell) Formula() string { return c.formula }

// Style returns the cell format id; 0 for the default format.
func (c *Cell) Style() int { return c.style }

// StringIndex returns the shared string index of a shared string cell.
func (c *Cell) StringIndex() (int, bool) {
	if c.typ != CellTypeSharedString {
		return 0, false
	}
	return c.sst, true
}

// Raw returns the content of the cell's v element.
func (c *Cell) Raw() string {
	if c.typ == CellTypeSharedString {
		return strconv.Itoa(c.sst)
	}
	return c.v
}

// encodeValue maps a Go value onto a cell type and its literal value. For
// shared strings the literal is the text still to be interned.
func encodeValue(d CellData) (CellType, string, error) {
	switch v := d.Value.(type) {
	case nil:
		return CellTypeNumber, "", nil
	case string:
		switch {
		case d.Formula != "":
			return CellTypeFormulaString, v, nil
		case d.Inline:
			return CellTypeInlineString, v, nil
		default:
			return CellTypeSharedString, v, nil
		}
	case bool:
		if v {
			return CellTypeBool, "1", nil
		}
		return CellTypeBool, "0", nil
	case ErrorCode:
		if !v.valid() {
			return 0, "", fmt.Errorf("%w: error code %q", ErrUnsupportedValue, string(v))
		}
		return CellTypeError, string(v), nil
	case int:
		return CellTypeNumber, strconv.FormatInt(int64(v), 10), nil
	case int8:
		return CellTypeNumber, strconv.FormatInt(int64(v), 10), nil
	case int16:
		return CellTypeNumber, strconv.FormatInt(int64(v), 10), nil
	case int32:
		return CellTypeNumber, strconv.FormatInt(int64(v), 10), nil
	case int64:
		return CellTypeNumber, strconv.FormatInt(v, 10), nil
	case uint:
		return CellTypeNumber, strconv.FormatUint(uint64(v), 10), nil
	case uint8:
		return CellTypeNumber, strconv.FormatUint(uint64(v), 10), nil
	case uint16:
		return CellTypeNumber, strconv.FormatUint(uint64(v), 10), nil
	case uint32:
		return CellTypeNumber, strconv.FormatUint(uint64(v), 10), nil
	case uint64:
		return CellTypeNumber, strconv.FormatUint(v, 10), nil
	case float32:
		return encodeFloat(float64(v), 32)
	case float64:
		return encodeFloat(v, 64)
	default:
		return 0, "", fmt.Errorf("%w: %T", ErrUnsupportedValue, d.Value)
	}
}

func encodeFloat(f float64, bits int) (CellType, string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, "", fmt.Errorf("%w: %v", ErrUnsupportedValue, f)
	}
	return CellTypeNumber, strconv.FormatFloat(f, 'f', -1, bits), nil
}
