package xl

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/adnsv/srw/xml"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/maps"
	"golang.org/x/sync/errgroup"
)

const (
	nsMain        = "http://schemas.openxmlformats.org/spreadsheetml/2006/main"
	nsRelations   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsPackageRels = "http://schemas.openxmlformats.org/package/2006/relationships"
	nsContentType = "http://schemas.openxmlformats.org/package/2006/content-types"

	relsContentType = "application/vnd.openxmlformats-package.relationships+xml"
)

// Part is one named document of the assembled package. Names carry no
// leading slash ("xl/workbook.xml").
type Part struct {
	Name        string
	ContentType string
	Data        []byte
}

type RelInfo struct {
	Type   string // url to schema type
	Target string // relative path
}

// Assemble renders the current state of wb into the parts of an xlsx package.
// It does not modify wb and may be called any number of times; sheet N is
// always the sheet at position N right now.
func Assemble(wb *Workbook) ([]Part, error) {
	return assemble(wb, xml.Indent2Spaces)
}

type assembler struct {
	wb     *Workbook
	indent xml.Indent

	lastGlobalId   int
	lastWorkbookId int

	globalRels          map[string]RelInfo // maps id to package-relative path
	workbookRels        map[string]RelInfo // maps id to workbook-relative path
	defaultContentTypes map[string]string  // maps path extension to content-type
	partContentTypes    map[string]string  // maps part name to content-type

	// read-only snapshot taken before sheets are rendered
	strs    []string
	xfCount int
}

func assemble(wb *Workbook, indent xml.Indent) ([]Part, error) {
	if len(wb.sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrNotFound)
	}
	a := &assembler{
		wb:                  wb,
		indent:              indent,
		globalRels:          map[string]RelInfo{},
		workbookRels:        map[string]RelInfo{},
		defaultContentTypes: map[string]string{},
		partContentTypes:    map[string]string{},
		strs:                wb.sst.Snapshot(),
		xfCount:             wb.styles.xfs.len(),
	}
	a.defaultContentTypes["xml"] = "application/xml"
	a.defaultContentTypes["rels"] = relsContentType

	sheets, err := a.renderSheets()
	if err != nil {
		return nil, err
	}
	sheetRIDs := make([]string, len(sheets))
	for i, p := range sheets {
		sheetRIDs[i] = a.addWorkbookPart(p, "http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet")
	}

	workbook := a.workbookPart(sheetRIDs)
	styles := a.stylesPart()
	sst := a.sharedStringsPart()
	core := a.corePropertiesPart()
	app := a.extendedPropertiesPart()

	wbRels := a.relsPart("xl/_rels/workbook.xml.rels", a.workbookRels)
	rootRels := a.relsPart("_rels/.rels", a.globalRels)
	types := a.contentTypesPart()

	parts := []Part{types, rootRels, app, core, workbook, wbRels, styles, sst}
	return append(parts, sheets...), nil
}

func (a *assembler) nextGlobalID() (int, string) {
	a.lastGlobalId++
	return a.lastGlobalId, fmt.Sprintf("rId%d", a.lastGlobalId)
}

func (a *assembler) nextWorkbookID() (int, string) {
	a.lastWorkbookId++
	return a.lastWorkbookId, fmt.Sprintf("rId%d", a.lastWorkbookId)
}

// addGlobalPart records the package relationship and the content-type
// override of p.
func (a *assembler) addGlobalPart(p Part, relType string) string {
	_, rid := a.nextGlobalID()
	a.partContentTypes["/"+p.Name] = p.ContentType
	a.globalRels[rid] = RelInfo{Type: relType, Target: p.Name}
	return rid
}

// addWorkbookPart records the workbook relationship and the content-type
// override of p. Workbook relationship targets are relative to xl/.
func (a *assembler) addWorkbookPart(p Part, relType string) string {
	_, rid := a.nextWorkbookID()
	a.partContentTypes["/"+p.Name] = p.ContentType
	a.workbookRels[rid] = RelInfo{Type: relType, Target: strings.TrimPrefix(p.Name, "xl/")}
	return rid
}

// renderSheets renders every worksheet concurrently. Rendering only reads the
// workbook and the snapshot taken by assemble.
func (a *assembler) renderSheets() ([]Part, error) {
	parts := make([]Part, len(a.wb.sheets))
	var g errgroup.Group
	for i, sh := range a.wb.sheets {
		g.Go(func() error {
			root, err := a.sheetNode(sh)
			if err != nil {
				return fmt.Errorf("sheet %q: %w", sh.name, err)
			}
			parts[i] = Part{
				Name:        fmt.Sprintf("xl/worksheets/sheet%d.xml", i+1),
				ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.worksheet+xml",
				Data:        root.Render(a.indent),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return parts, nil
}

func (a *assembler) sheetNode(sh *Sheet) (*Node, error) {
	ws := Elem("worksheet").Attr("xmlns", nsMain).Attr("xmlns:r", nsRelations)

	if dim := sh.dimension(); dim != "" {
		ws.Child("dimension").Attr("ref", dim)
	}

	// Skip entries SetColumnWidth would never store; cols must not be empty.
	cols := Elem("cols")
	enumerate(sh.Columns, func(n int, v *Column) error {
		if v != nil && v.Width > 0 && n >= 1 && n <= MaxColumns {
			cols.Child("col").Attr("min", n).Attr("max", n).
				Attr("width", v.Width).Attr("customWidth", 1)
		}
		return nil
	})
	if len(cols.Children) > 0 {
		ws.Add(cols)
	}

	sheetData := ws.Child("sheetData")
	rowNumbers := append(maps.Keys(sh.rows), maps.Keys(sh.heights)...)
	slices.Sort(rowNumbers)
	for _, n := range slices.Compact(rowNumbers) {
		row := sheetData.Child("row").Attr("r", n)
		if h, ok := sh.heights[n]; ok {
			row.Attr("ht", h).Attr("customHeight", 1)
		}
		r, ok := sh.rows[n]
		if !ok {
			continue
		}
		err := enumerate(r.cells, func(col int, c *Cell) error {
			cn, err := a.cellNode(c, col, n)
			if err != nil {
				return err
			}
			row.Add(cn)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	if len(sh.merges) > 0 {
		mc := ws.Child("mergeCells").Attr("count", len(sh.merges))
		for _, m := range sh.merges {
			mc.Child("mergeCell").Attr("ref", m.String())
		}
	}
	return ws, nil
}

func (a *assembler) cellNode(c *Cell, col, row int) (*Node, error) {
	coord := CellCoordAsString(col, row)
	n := Elem("c").Attr("r", coord)
	if c.style != 0 {
		if c.style < 0 || c.style >= a.xfCount {
			return nil, fmt.Errorf("cell %s: cell format %d out of range", coord, c.style)
		}
		n.Attr("s", c.style)
	}
	if c.typ != CellTypeNumber {
		n.Attr("t", c.typ.Code())
	}
	if c.formula != "" {
		n.Child("f").Text(c.formula)
	}
	switch c.typ {
	case CellTypeSharedString:
		if c.sst < 0 || c.sst >= len(a.strs) {
			return nil, fmt.Errorf("cell %s: shared string %d out of range", coord, c.sst)
		}
		n.Child("v").Text(strconv.Itoa(c.sst))
	case CellTypeInlineString:
		n.Child("is").Add(textNode(c.v))
	default:
		if c.v != "" {
			n.Child("v").Text(c.v)
		}
	}
	return n, nil
}

// textNode creates a t element, preserving leading and trailing whitespace.
func textNode(s string) *Node {
	t := Elem("t")
	if s != strings.TrimSpace(s) {
		t.Attr("xml:space", "preserve")
	}
	return t.Text(s)
}

func (a *assembler) workbookPart(sheetRIDs []string) Part {
	root := Elem("workbook").Attr("xmlns", nsMain).Attr("xmlns:r", nsRelations)
	root.Child("bookViews").Child("workbookView")
	sheets := root.Child("sheets")
	for i, sh := range a.wb.sheets {
		sheets.Child("sheet").
			Attr("name", sh.name).
			Attr("sheetId", i+1).
			Attr("r:id", sheetRIDs[i])
	}

	p := Part{
		Name:        "xl/workbook.xml",
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet.main+xml",
		Data:        root.Render(a.indent),
	}
	a.addGlobalPart(p, "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument")
	return p
}

func (a *assembler) stylesPart() Part {
	st := a.wb.styles
	root := Elem("styleSheet").Attr("xmlns", nsMain)

	if nf := st.NumFmts(); len(nf) > 0 {
		numFmts := root.Child("numFmts").Attr("count", len(nf))
		for _, f := range nf {
			numFmts.Child("numFmt").Attr("numFmtId", f.ID).Attr("formatCode", f.Code)
		}
	}

	fonts := root.Child("fonts").Attr("count", st.fonts.len())
	for _, f := range st.Fonts() {
		fonts.Add(f.node())
	}
	fills := root.Child("fills").Attr("count", st.fills.len())
	for _, f := range st.Fills() {
		fills.Add(f.node())
	}
	borders := root.Child("borders").Attr("count", st.borders.len())
	for _, b := range st.Borders() {
		borders.Add(b.node())
	}

	root.Child("cellStyleXfs").Attr("count", 1).
		Child("xf").Attr("numFmtId", 0).Attr("fontId", 0).Attr("fillId", 0).Attr("borderId", 0)

	xfs := root.Child("cellXfs").Attr("count", st.xfs.len())
	for _, xf := range st.CellFormats() {
		x := xfs.Child("xf").
			Attr("numFmtId", xf.NumFmtID).
			Attr("fontId", xf.FontID).
			Attr("fillId", xf.FillID).
			Attr("borderId", xf.BorderID).
			Attr("xfId", 0).
			OptAttr("applyNumberFormat", xf.NumFmtID != 0).
			OptAttr("applyFont", xf.FontID != 0).
			OptAttr("applyFill", xf.FillID != 0).
			OptAttr("applyBorder", xf.BorderID != 0)
		if xf.Alignment != (Alignment{}) {
			x.Attr("applyAlignment", 1).Add(xf.Alignment.node())
		}
	}

	root.Child("cellStyles").Attr("count", 1).
		Child("cellStyle").Attr("name", "Normal").Attr("xfId", 0).Attr("builtinId", 0)

	p := Part{
		Name:        "xl/styles.xml",
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.styles+xml",
		Data:        root.Render(a.indent),
	}
	a.addWorkbookPart(p, "http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles")
	return p
}

func (a *assembler) sharedStringsPart() Part {
	root := Elem("sst").
		Attr("xmlns", nsMain).
		Attr("count", a.wb.sst.Count()).
		Attr("uniqueCount", len(a.strs))
	for _, s := range a.strs {
		root.Child("si").Add(textNode(s))
	}

	p := Part{
		Name:        "xl/sharedStrings.xml",
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sharedStrings+xml",
		Data:        root.Render(a.indent),
	}
	a.addWorkbookPart(p, "http://schemas.openxmlformats.org/officeDocument/2006/relationships/sharedStrings")
	return p
}

func (a *assembler) corePropertiesPart() Part {
	root := Elem("cp:coreProperties").
		Attr("xmlns:cp", "http://schemas.openxmlformats.org/package/2006/metadata/core-properties").
		Attr("xmlns:dc", "http://purl.org/dc/elements/1.1/").
		Attr("xmlns:dcterms", "http://purl.org/dc/terms/").
		Attr("xmlns:dcmitype", "http://purl.org/dc/dcmitype/").
		Attr("xmlns:xsi", "http://www.w3.org/2001/XMLSchema-instance")
	if a.wb.ID != uuid.Nil {
		root.Child("dc:identifier").Text(a.wb.ID.String())
	}
	if !a.wb.Created.IsZero() {
		root.Child("dcterms:created").
			Attr("xsi:type", "dcterms:W3CDTF").
			Text(a.wb.Created.UTC().Format(time.RFC3339))
	}

	p := Part{
		Name:        "docProps/core.xml",
		ContentType: "application/vnd.openxmlformats-package.core-properties+xml",
		Data:        root.Render(a.indent),
	}
	a.addGlobalPart(p, "http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties")
	return p
}

func (a *assembler) extendedPropertiesPart() Part {
	root := Elem("Properties").
		Attr("xmlns", "http://schemas.openxmlformats.org/officeDocument/2006/extended-properties").
		Attr("xmlns:vt", "http://schemas.openxmlformats.org/officeDocument/2006/docPropsVTypes")
	if a.wb.AppName != "" {
		root.Child("Application").Text(a.wb.AppName)
	}

	p := Part{
		Name:        "docProps/app.xml",
		ContentType: "application/vnd.openxmlformats-officedocument.extended-properties+xml",
		Data:        root.Render(a.indent),
	}
	a.addGlobalPart(p, "http://schemas.openxmlformats.org/officeDocument/2006/relationships/extended-properties")
	return p
}

// relsPart lists relationships in numeric id order.
func (a *assembler) relsPart(name string, rels map[string]RelInfo) Part {
	root := Elem("Relationships").Attr("xmlns", nsPackageRels)
	ids := maps.Keys(rels)
	slices.SortFunc(ids, func(x, y string) int {
		return cmp.Or(cmp.Compare(len(x), len(y)), cmp.Compare(x, y))
	})
	for _, rid := range ids {
		info := rels[rid]
		root.Child("Relationship").
			Attr("Id", rid).
			Attr("Type", info.Type).
			Attr("Target", info.Target)
	}
	return Part{Name: name, ContentType: relsContentType, Data: root.Render(a.indent)}
}

func (a *assembler) contentTypesPart() Part {
	root := Elem("Types").Attr("xmlns", nsContentType)
	enumerate(a.defaultContentTypes, func(ext, ctype string) error {
		root.Child("Default").Attr("Extension", ext).Attr("ContentType", ctype)
		return nil
	})
	enumerate(a.partContentTypes, func(abspath, ctype string) error {
		root.Child("Override").Attr("PartName", abspath).Attr("ContentType", ctype)
		return nil
	})
	return Part{Name: "[Content_Types].xml", ContentType: "application/xml", Data: root.Render(a.indent)}
}

// WriterConfig controls how a Writer renders and reports.
type WriterConfig struct {
	Indent xml.Indent
	Logger logrus.FieldLogger // nil disables logging
}

// Writer assembles a workbook and hands the parts to a Storage.
type Writer struct {
	WriterConfig
	out Storage
}

func NewWriter(s Storage) *Writer {
	return &Writer{
		WriterConfig: WriterConfig{Indent: xml.Indent2Spaces},
		out:          s,
	}
}

// Write assembles every part before the first one is stored, so a workbook
// that fails to assemble leaves the storage untouched.
func (w *Writer) Write(wb *Workbook) error {
	parts, err := assemble(wb, w.Indent)
	if err != nil {
		return err
	}

	log := w.Logger
	if log == nil {
		silent := logrus.New()
		silent.Out = io.Discard
		log = silent
	}

	total := 0
	for _, p := range parts {
		err = w.out.WriteBlob(p.Name, p.Data)
		if err != nil {
			return fmt.Errorf("writing %s: %w", p.Name, err)
		}
		total += len(p.Data)
		log.WithFields(logrus.Fields{
			"name": p.Name,
			"size": len(p.Data),
		}).Debug("part written")
	}
	log.WithFields(logrus.Fields{
		"sheets":  len(wb.sheets),
		"strings": wb.sst.Len(),
		"parts":   len(parts),
		"size":    humanize.Bytes(uint64(total)),
	}).Info("package written")
	return nil
}
