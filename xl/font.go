package xl

import "strings"

// Default font used by the first entry of the font table.
const (
	DefaultFontName = "Calibri"
	DefaultFontSize = 11
)

// Font represents font formatting properties for cell content.
// These properties correspond to the OpenXML font element as defined in ECMA-376.
type Font struct {
	Name          string        // Typeface (empty = Calibri)
	Size          float64       // Font size in points (0 = use default of 11)
	Bold          bool          // Bold text
	Italic        bool          // Italic text
	Underline     UnderlineType // Underline style
	Strikethrough bool          // Strikethrough text
	Color         string        // RGB or ARGB hex, leading '#' allowed
}

// UnderlineType represents the type of underline formatting.
type UnderlineType string

// Underline type constants as defined in ECMA-376 (ST_UnderlineValues).
const (
	UnderlineNone             UnderlineType = ""                 // No underline (default)
	UnderlineSingle           UnderlineType = "single"           // Single underline
	UnderlineDouble           UnderlineType = "double"           // Double underline
	UnderlineSingleAccounting UnderlineType = "singleAccounting" // Single accounting underline
	UnderlineDoubleAccounting UnderlineType = "doubleAccounting" // Double accounting underline
)

// IsDefault returns true if the font uses all default properties.
func (f *Font) IsDefault() bool {
	return f.canonical() == Font{Name: DefaultFontName, Size: DefaultFontSize}
}

// canonical fills in defaults and normalizes the color so that fonts that
// render identically compare equal.
func (f Font) canonical() Font {
	if f.Name == "" {
		f.Name = DefaultFontName
	}
	if f.Size <= 0 {
		f.Size = DefaultFontSize
	}
	f.Color = canonicalColor(f.Color)
	return f
}

func (f Font) node() *Node {
	n := Elem("font")
	if f.Bold {
		n.Child("b")
	}
	if f.Italic {
		n.Child("i")
	}
	if f.Strikethrough {
		n.Child("strike")
	}
	if f.Underline != UnderlineNone {
		n.Child("u").Attr("val", string(f.Underline))
	}
	n.Child("sz").Attr("val", f.Size)
	if f.Color != "" {
		n.Child("color").Attr("rgb", f.Color)
	}
	n.Child("name").Attr("val", f.Name)
	return n
}

// canonicalColor turns "#rrggbb", "rrggbb" and "aarrggbb" into upper-case
// ARGB; six-digit colors get an opaque alpha.
func canonicalColor(c string) string {
	c = strings.ToUpper(strings.TrimPrefix(c, "#"))
	if len(c) == 6 {
		c = "FF" + c
	}
	return c
}
