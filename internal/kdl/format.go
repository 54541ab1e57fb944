package kdl

import (
	"fmt"
	"io"
	"strings"

	"github.com/sblinch/kdl-go/document"
)

const defaultIndent = "    "

// Style decorates the pieces of printed KDL. Nil functions leave text unchanged.
type Style struct {
	Name       func(string) string
	Annotation func(string) string
	Key        func(string) string
	String     func(string) string
	Number     func(string) string
	Keyword    func(string) string
}

// Printer writes nodes as KDL text: one node per line, children in indented blocks,
// arguments before properties. Identifiers and strings are quoted here rather than by
// kdl-go's generator, which writes keywords such as true or -1 bare.
type Printer struct {
	Indent string
	Style  Style
}

// Write prints nodes with the default printer.
func Write(w io.Writer, nodes []*Node) error {
	return Printer{}.Write(w, nodes)
}

func (p Printer) Write(w io.Writer, nodes []*Node) error {
	var b strings.Builder
	for _, n := range nodes {
		p.writeNode(&b, n, 0)
	}
	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write KDL: %w", err)
	}
	return nil
}

// String renders a single node and its children without the trailing newline.
func (n *Node) String() string {
	var b strings.Builder
	Printer{}.writeNode(&b, n, 0)
	return strings.TrimSuffix(b.String(), "\n")
}

func (p Printer) writeNode(b *strings.Builder, n *Node, depth int) {
	indent := p.Indent
	if indent == "" {
		indent = defaultIndent
	}

	b.WriteString(strings.Repeat(indent, depth))
	if n.Annotation != "" {
		b.WriteString(apply(p.Style.Annotation, "("+FormatIdentifier(n.Annotation)+")"))
	}
	b.WriteString(apply(p.Style.Name, FormatIdentifier(n.Name)))

	for _, v := range n.Values {
		b.WriteByte(' ')
		b.WriteString(p.value(v))
	}

	for _, prop := range n.Properties {
		b.WriteByte(' ')
		b.WriteString(apply(p.Style.Key, FormatIdentifier(prop.Name)))
		b.WriteByte('=')
		b.WriteString(p.value(prop.Value))
	}

	if len(n.Children) > 0 {
		b.WriteString(" {\n")
		for _, child := range n.Children {
			p.writeNode(b, child, depth+1)
		}
		b.WriteString(strings.Repeat(indent, depth))
		b.WriteByte('}')
	}
	b.WriteByte('\n')
}

func (p Printer) value(v Value) string {
	var out string
	if v.annotation != "" {
		out = apply(p.Style.Annotation, "("+FormatIdentifier(v.annotation)+")")
	}

	literal := v.literal()
	switch v.kind {
	case KindString:
		return out + apply(p.Style.String, literal)
	case KindInteger, KindFloat:
		return out + apply(p.Style.Number, literal)
	default:
		return out + apply(p.Style.Keyword, literal)
	}
}

func apply(fn func(string) string, s string) string {
	if fn == nil {
		return s
	}
	return fn(s)
}

// FormatIdentifier writes s bare when the grammar allows it and quoted otherwise.
func FormatIdentifier(s string) string {
	if IsBareIdentifier(s) {
		return s
	}
	return quote(s)
}

func quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\u{%x}`, r)
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// formatNumber renders integers in decimal and floats with a '.' or exponent, so the
// literal reads back as the same kind.
func formatNumber(x any) string {
	return (&document.Value{Value: x}).UnformattedString()
}
