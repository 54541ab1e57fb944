package formatter

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/jacoelho/kq/internal/kdl"
)

var ErrUnsupported = errors.New("unsupported output format")

// Formatter writes matched nodes. Implementations own their destination.
type Formatter interface {
	Format(nodes []*kdl.Node) error
}

// Kind names an output format.
type Kind string

const (
	KDL  Kind = "kdl"
	JSON Kind = "json"
	YAML Kind = "yaml"
)

// ParseKind maps a --output value to its Kind.
func ParseKind(input string) (Kind, error) {
	switch k := Kind(input); k {
	case KDL, JSON, YAML:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupported, input)
}

// Structured reports whether the format carries data rather than KDL text.
func (k Kind) Structured() bool {
	return k == JSON || k == YAML
}

// ColorMode controls ANSI styling of text output: auto, always or never.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// UseColor resolves mode for w. Auto enables colour only when w is a terminal.
func UseColor(mode ColorMode, w io.Writer) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}

	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
