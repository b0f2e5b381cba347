package xl

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/adnsv/srw/xml"
)

// Attr is a single XML attribute. The value is escaped on output.
type Attr struct {
	Name  string
	Value string
}

// Node is an element of a generic XML tree. A node holds either text content
// or child elements; when text is set, children are rendered after it.
type Node struct {
	Tag      string
	Attrs    []Attr
	Children []*Node

	text    string
	hasText bool
}

// Elem creates a detached element.
func Elem(tag string) *Node {
	return &Node{Tag: tag}
}

// Attr appends an attribute. Numbers are written in their shortest decimal
// form, booleans as 1 or 0.
func (n *Node) Attr(name string, v any) *Node {
	n.Attrs = append(n.Attrs, Attr{Name: name, Value: attrString(v)})
	return n
}

// OptAttr appends an attribute unless v is the zero value of its type.
func (n *Node) OptAttr(name string, v any) *Node {
	switch v := v.(type) {
	case string:
		if v == "" {
			return n
		}
	case int:
		if v == 0 {
			return n
		}
	case float64:
		if v == 0 {
			return n
		}
	case float32:
		if v == 0 {
			return n
		}
	case bool:
		if !v {
			return n
		}
	}
	return n.Attr(name, v)
}

// Text sets the text content. An empty string still renders as an open/close
// pair rather than a self-closing tag.
func (n *Node) Text(s string) *Node {
	n.text = s
	n.hasText = true
	return n
}

// Add appends child elements and returns the receiver.
func (n *Node) Add(children ...*Node) *Node {
	n.Children = append(n.Children, children...)
	return n
}

// Child appends a new element and returns it.
func (n *Node) Child(tag string) *Node {
	c := Elem(tag)
	n.Children = append(n.Children, c)
	return c
}

// Render writes the tree as a standalone XML document.
func (n *Node) Render(indent xml.Indent) []byte {
	bb := bytes.Buffer{}
	x := xml.NewWriter(&bb, xml.WriterConfig{Indent: indent})
	x.XmlStandaloneDecl()
	n.write(x, false)
	return bb.Bytes()
}

// Elements holding text are kept on the same line as their parent so that no
// whitespace leaks into text-bearing content.
func (n *Node) write(x *xml.Writer, indent bool) {
	name := xml.NameString(n.Tag)
	if indent {
		name = "+" + name
	}
	x.OTag(name)
	for _, a := range n.Attrs {
		x.RawAttr(xml.NameString(a.Name), EscapeAttr(a.Value))
	}
	if n.hasText {
		x.RawString(Escape(n.text))
	}
	for _, c := range n.Children {
		c.write(x, !n.hasText && !c.hasText)
	}
	x.CTag()
}

// Escape prepares text content. The five predefined XML entities are
// replaced, control characters that XML 1.0 cannot carry are written in the
// OOXML _xHHHH_ form and an underscore that would start such a sequence is
// itself written as _x005F_. Invalid UTF-8 becomes U+FFFD; U+FFFE and U+FFFF
// are dropped.
func Escape(s string) xml.RawString {
	return escape(s, false)
}

// EscapeAttr prepares an attribute value. Readers do not decode _xHHHH_ in
// attributes, so tab, newline and carriage return become character
// references and other control characters are dropped.
func EscapeAttr(s string) xml.RawString {
	return escape(s, true)
}

func escape(s string, attr bool) xml.RawString {
	if !needsEscape(s, attr) {
		return xml.RawString(s)
	}
	s = strings.ToValidUTF8(s, "\uFFFD")
	sb := strings.Builder{}
	sb.Grow(len(s) + 16)
	for i, r := range s {
		switch r {
		case '&':
			sb.WriteString("&amp;")
		case '<':
			sb.WriteString("&lt;")
		case '>':
			sb.WriteString("&gt;")
		case '"':
			sb.WriteString("&quot;")
		case '\'':
			sb.WriteString("&apos;")
		case '\t', '\n', '\r':
			if attr {
				fmt.Fprintf(&sb, "&#%d;", r)
			} else {
				sb.WriteRune(r)
			}
		case '_':
			if !attr && isEscapeSequence(s[i:]) {
				sb.WriteString("_x005F_")
			} else {
				sb.WriteByte('_')
			}
		case '\uFFFE', '\uFFFF':
		default:
			switch {
			case r >= ' ':
				sb.WriteRune(r)
			case !attr:
				fmt.Fprintf(&sb, "_x%04X_", r)
			}
		}
	}
	return xml.RawString(sb.String())
}

func needsEscape(s string, attr bool) bool {
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '&', '<', '>', '"', '\'', '_':
			return true
		case '\t', '\n', '\r':
			if attr {
				return true
			}
		default:
			if c < ' ' {
				return true
			}
		}
	}
	return !utf8.ValidString(s) || strings.ContainsAny(s, "\uFFFE\uFFFF")
}

// isEscapeSequence reports whether s starts with _xHHHH_. Any four letters or
// digits are matched, as lenient readers do.
func isEscapeSequence(s string) bool {
	if len(s) < 7 || s[0] != '_' || s[1] != 'x' || s[6] != '_' {
		return false
	}
	for _, c := range []byte(s[2:6]) {
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z') {
			return false
		}
	}
	return true
}

func attrString(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case bool:
		if v {
			return "1"
		}
		return "0"
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
