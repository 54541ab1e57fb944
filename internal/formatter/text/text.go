package text

import (
	"io"

	"github.com/fatih/color"

	"github.com/jacoelho/kq/internal/formatter"
	"github.com/jacoelho/kq/internal/kdl"
)

// Formatter writes nodes back as KDL text.
type Formatter struct {
	writer  io.Writer
	printer kdl.Printer
}

// New creates a KDL formatter. Colour is resolved once against writer.
func New(writer io.Writer, mode formatter.ColorMode) formatter.Formatter {
	p := kdl.Printer{}
	if formatter.UseColor(mode, writer) {
		p.Style = palette()
	}

	return &Formatter{
		writer:  writer,
		printer: p,
	}
}

func (f *Formatter) Format(nodes []*kdl.Node) error {
	return f.printer.Write(f.writer, nodes)
}

func palette() kdl.Style {
	return kdl.Style{
		Name:       paint(color.FgBlue, color.Bold),
		Annotation: paint(color.FgMagenta),
		Key:        paint(color.FgCyan),
		String:     paint(color.FgGreen),
		Number:     paint(color.FgYellow),
		Keyword:    paint(color.FgRed),
	}
}

func paint(attrs ...color.Attribute) func(string) string {
	c := color.New(attrs...)
	c.EnableColor()
	return func(s string) string {
		return c.Sprint(s)
	}
}
