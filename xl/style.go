package xl

import "fmt"

// NumFmtCustomBase is the first id given to a custom number format. Ids below
// it are reserved for the built-in formats.
const NumFmtCustomBase = 164

// PatternType is the fill pattern (ST_PatternType).
type PatternType string

const (
	PatternNone       PatternType = "none"
	PatternSolid      PatternType = "solid"
	PatternGray125    PatternType = "gray125"
	PatternGray0625   PatternType = "gray0625"
	PatternLightGray  PatternType = "lightGray"
	PatternMediumGray PatternType = "mediumGray"
	PatternDarkGray   PatternType = "darkGray"
)

// Fill describes a cell background.
type Fill struct {
	Pattern PatternType // empty means solid when FgColor is set, none otherwise
	FgColor string
	BgColor string
}

func (f Fill) canonical() Fill {
	f.FgColor = canonicalColor(f.FgColor)
	f.BgColor = canonicalColor(f.BgColor)
	if f.Pattern == "" {
		if f.FgColor != "" {
			f.Pattern = PatternSolid
		} else {
			f.Pattern = PatternNone
		}
	}
	return f
}

func (f Fill) node() *Node {
	p := Elem("patternFill").Attr("patternType", string(f.Pattern))
	if f.FgColor != "" {
		p.Child("fgColor").Attr("rgb", f.FgColor)
	}
	if f.BgColor != "" {
		p.Child("bgColor").Attr("rgb", f.BgColor)
	}
	return Elem("fill").Add(p)
}

// BorderStyle is the line style of one border edge (ST_BorderStyle).
type BorderStyle string

const (
	BorderNone             BorderStyle = ""
	BorderThin             BorderStyle = "thin"
	BorderMedium           BorderStyle = "medium"
	BorderThick            BorderStyle = "thick"
	BorderDashed           BorderStyle = "dashed"
	BorderDotted           BorderStyle = "dotted"
	BorderDouble           BorderStyle = "double"
	BorderHair             BorderStyle = "hair"
	BorderMediumDashed     BorderStyle = "mediumDashed"
	BorderDashDot          BorderStyle = "dashDot"
	BorderMediumDashDot    BorderStyle = "mediumDashDot"
	BorderDashDotDot       BorderStyle = "dashDotDot"
	BorderMediumDashDotDot BorderStyle = "mediumDashDotDot"
	BorderSlantDashDot     BorderStyle = "slantDashDot"
)

type BorderEdge struct {
	Style BorderStyle
	Color string
}

// Border describes the four cell edges and the diagonal.
type Border struct {
	Left, Right, Top, Bottom, Diagonal BorderEdge
	DiagonalUp, DiagonalDown           bool
}

func (b Border) canonical() Border {
	for _, e := range []*BorderEdge{&b.Left, &b.Right, &b.Top, &b.Bottom, &b.Diagonal} {
		if e.Style == BorderNone {
			e.Color = ""
		} else {
			e.Color = canonicalColor(e.Color)
		}
	}
	return b
}

func (b Border) node() *Node {
	n := Elem("border").OptAttr("diagonalUp", b.DiagonalUp).OptAttr("diagonalDown", b.DiagonalDown)
	edge := func(tag string, e BorderEdge) {
		c := n.Child(tag).OptAttr("style", string(e.Style))
		if e.Color != "" {
			c.Child("color").Attr("rgb", e.Color)
		}
	}
	edge("left", b.Left)
	edge("right", b.Right)
	edge("top", b.Top)
	edge("bottom", b.Bottom)
	edge("diagonal", b.Diagonal)
	return n
}

// Alignment is the optional alignment block of a cell format. The zero value
// means no alignment element is written.
type Alignment struct {
	Horizontal   string // left, center, right, fill, justify, centerContinuous, distributed
	Vertical     string // top, center, bottom, justify, distributed
	WrapText     bool
	ShrinkToFit  bool
	Indent       int
	TextRotation int
}

func (a Alignment) node() *Node {
	return Elem("alignment").
		OptAttr("horizontal", a.Horizontal).
		OptAttr("vertical", a.Vertical).
		OptAttr("wrapText", a.WrapText).
		OptAttr("shrinkToFit", a.ShrinkToFit).
		OptAttr("indent", a.Indent).
		OptAttr("textRotation", a.TextRotation)
}

// Style is what a caller attaches to a cell. Nil components mean defaults.
type Style struct {
	Font      *Font
	Fill      *Fill
	Border    *Border
	NumFmtID  int    // built-in number format, 0 (General) to 163
	NumFmt    string // custom format code, takes precedence over NumFmtID
	Alignment *Alignment
}

func (s *Style) validate() error {
	if s.NumFmt == "" && (s.NumFmtID < 0 || s.NumFmtID >= NumFmtCustomBase) {
		return fmt.Errorf("%w: built-in number format %d", ErrUnsupportedValue, s.NumFmtID)
	}
	if a := s.Alignment; a != nil && (a.Indent < 0 || a.TextRotation < 0 || a.TextRotation > 255) {
		return fmt.Errorf("%w: alignment indent %d rotation %d", ErrUnsupportedValue, a.Indent, a.TextRotation)
	}
	return nil
}

// CellFormat is one entry of the cellXfs table. Two formats are the same entry
// iff all fields are equal; the component ids refer to already-canonical
// table entries, so struct equality is structural equality.
type CellFormat struct {
	FontID    int
	FillID    int
	BorderID  int
	NumFmtID  int
	Alignment Alignment
}

// NumFmt is a custom number format with its assigned id.
type NumFmt struct {
	ID   int
	Code string
}

// StyleTable holds the font, fill, border, number format and cell format
// tables of a workbook. The first font, the two mandatory fills, the first
// border and cell format 0 exist from the start and are never evicted.
type StyleTable struct {
	fonts   *table[Font]
	fills   *table[Fill]
	borders *table[Border]
	numFmts *table[string]
	xfs     *table[CellFormat]
}

func newStyleTable() *StyleTable {
	st := &StyleTable{
		fonts:   newTable[Font](),
		fills:   newTable[Fill](),
		borders: newTable[Border](),
		numFmts: newTable[string](),
		xfs:     newTable[CellFormat](),
	}
	st.fonts.resolve(Font{}.canonical())
	st.fonts.pin()
	st.fills.resolve(Fill{Pattern: PatternNone})
	st.fills.resolve(Fill{Pattern: PatternGray125})
	st.fills.pin()
	st.borders.resolve(Border{})
	st.borders.pin()
	st.xfs.resolve(CellFormat{})
	st.xfs.pin()
	return st
}

// ResolveFont returns the id of f, registering it when new.
//
// The Resolve methods record no use. An entry they add that no cell ever
// refers to is written to styles.xml and persists until a cell using it is
// released; styles applied through Sheet.SetCell and Sheet.SetStyle are
// counted and evicted automatically.
func (st *StyleTable) ResolveFont(f Font) int {
	return st.fonts.resolve(f.canonical())
}

// ResolveFill returns the id of f, registering it when new. Like ResolveFont
// it records no use.
func (st *StyleTable) ResolveFill(f Fill) int {
	return st.fills.resolve(f.canonical())
}

// ResolveBorder returns the id of b, registering it when new. Like
// ResolveFont it records no use.
func (st *StyleTable) ResolveBorder(b Border) int {
	return st.borders.resolve(b.canonical())
}

// ResolveNumFmt returns the id of a custom format code: 164 plus its position
// among the custom formats. The empty code is General (0). Like ResolveFont
// it records no use.
func (st *StyleTable) ResolveNumFmt(code string) int {
	if code == "" {
		return 0
	}
	return NumFmtCustomBase + st.numFmts.resolve(code)
}

// resolveCellFormat returns the id of the format tuple and records one use by
// sheet on it and on each component it refers to.
func (st *StyleTable) resolveCellFormat(fontID, fillID, borderID, numFmtID int, align Alignment, sheet string) int {
	id := st.xfs.resolve(CellFormat{
		FontID:    fontID,
		FillID:    fillID,
		BorderID:  borderID,
		NumFmtID:  numFmtID,
		Alignment: align,
	})
	st.xfs.acquire(id, sheet)
	st.fonts.acquire(fontID, sheet)
	st.fills.acquire(fillID, sheet)
	st.borders.acquire(borderID, sheet)
	if numFmtID >= NumFmtCustomBase {
		st.numFmts.acquire(numFmtID-NumFmtCustomBase, sheet)
	}
	return id
}

// resolveStyle resolves every component of s and then the cell format.
// s must have passed validate.
func (st *StyleTable) resolveStyle(s *Style, sheet string) int {
	fontID, fillID, borderID := 0, 0, 0
	if s.Font != nil {
		fontID = st.ResolveFont(*s.Font)
	}
	if s.Fill != nil {
		fillID = st.ResolveFill(*s.Fill)
	}
	if s.Border != nil {
		borderID = st.ResolveBorder(*s.Border)
	}
	numFmtID := s.NumFmtID
	if s.NumFmt != "" {
		numFmtID = st.ResolveNumFmt(s.NumFmt)
	}
	var align Alignment
	if s.Alignment != nil {
		align = *s.Alignment
	}
	return st.resolveCellFormat(fontID, fillID, borderID, numFmtID, align, sheet)
}

// styleEvictions lists, per table, the ids evicted by one operation.
type styleEvictions struct {
	xfs, fonts, fills, borders, numFmts []int
}

// release drops one use of cell format id by sheet, together with the uses it
// holds on its components. It returns false when sheet holds no use of id.
// When the format becomes unused it is evicted; so is every component left
// unused. The returned slice lists evicted cell format ids.
func (st *StyleTable) release(id int, sheet string) (bool, []int) {
	ok, unused := st.xfs.release(id, sheet)
	if !ok {
		return false, nil
	}
	xf := st.xfs.key(id)
	ev := styleEvictions{}
	if unused {
		ev.xfs = []int{id}
	}
	if _, u := st.fonts.release(xf.FontID, sheet); u {
		ev.fonts = []int{xf.FontID}
	}
	if _, u := st.fills.release(xf.FillID, sheet); u {
		ev.fills = []int{xf.FillID}
	}
	if _, u := st.borders.release(xf.BorderID, sheet); u {
		ev.borders = []int{xf.BorderID}
	}
	if xf.NumFmtID >= NumFmtCustomBase {
		if _, u := st.numFmts.release(xf.NumFmtID-NumFmtCustomBase, sheet); u {
			ev.numFmts = []int{xf.NumFmtID - NumFmtCustomBase}
		}
	}
	st.compact(ev)
	return true, ev.xfs
}

// releaseAll drops every use held by sheet and compacts all tables once.
func (st *StyleTable) releaseAll(sheet string) []int {
	ev := styleEvictions{
		xfs:     st.xfs.releaseOwner(sheet),
		fonts:   st.fonts.releaseOwner(sheet),
		fills:   st.fills.releaseOwner(sheet),
		borders: st.borders.releaseOwner(sheet),
		numFmts: st.numFmts.releaseOwner(sheet),
	}
	st.compact(ev)
	return ev.xfs
}

// compact removes evicted entries. Component uses mirror cell format uses, so
// a component is only evicted together with every format referring to it and
// the surviving formats can be re-keyed without collisions.
func (st *StyleTable) compact(ev styleEvictions) {
	st.xfs.compact(ev.xfs)
	st.fonts.compact(ev.fonts)
	st.fills.compact(ev.fills)
	st.borders.compact(ev.borders)
	st.numFmts.compact(ev.numFmts)
	if len(ev.fonts)+len(ev.fills)+len(ev.borders)+len(ev.numFmts) == 0 {
		return
	}
	st.xfs.rekey(func(xf CellFormat) CellFormat {
		xf.FontID = shiftIndex(xf.FontID, ev.fonts)
		xf.FillID = shiftIndex(xf.FillID, ev.fills)
		xf.BorderID = shiftIndex(xf.BorderID, ev.borders)
		if xf.NumFmtID >= NumFmtCustomBase {
			xf.NumFmtID = NumFmtCustomBase + shiftIndex(xf.NumFmtID-NumFmtCustomBase, ev.numFmts)
		}
		return xf
	})
}

// CellFormat returns the cell format stored at id.
func (st *StyleTable) CellFormat(id int) (CellFormat, bool) {
	if !st.xfs.valid(id) {
		return CellFormat{}, false
	}
	return st.xfs.key(id), true
}

// CellFormats returns the cell format table in id order.
func (st *StyleTable) CellFormats() []CellFormat { return st.xfs.keys() }

// Fonts returns the font table in id order.
func (st *StyleTable) Fonts() []Font { return st.fonts.keys() }

// Fills returns the fill table in id order.
func (st *StyleTable) Fills() []Fill { return st.fills.keys() }

// Borders returns the border table in id order.
func (st *StyleTable) Borders() []Border { return st.borders.keys() }

// NumFmts returns the custom number formats in id order.
func (st *StyleTable) NumFmts() []NumFmt {
	nn := make([]NumFmt, st.numFmts.len())
	for i, code := range st.numFmts.keys() {
		nn[i] = NumFmt{ID: NumFmtCustomBase + i, Code: code}
	}
	return nn
}

// Usage returns how many cells of sheet use cell format id.
func (st *StyleTable) Usage(id int, sheet string) int {
	return st.xfs.uses(id, sheet)
}

// TotalUsage returns how many cells of all sheets use cell format id.
func (st *StyleTable) TotalUsage(id int) int {
	return st.xfs.totalUses(id)
}
