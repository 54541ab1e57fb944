package structured

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-yaml"
	"github.com/theory/jsonpath"

	"github.com/jacoelho/kq/internal/formatter"
	"github.com/jacoelho/kq/internal/kdl"
)

var ErrInvalidJSONPath = errors.New("invalid JSONPath expression")

// Formatter renders matches as JSON Lines or as a YAML sequence.
type Formatter struct {
	writer io.Writer
	kind   formatter.Kind
	path   *jsonpath.Path
}

// New creates a structured formatter. A non-empty expr is compiled as an RFC 9535
// JSONPath query applied to the array of matches.
func New(writer io.Writer, kind formatter.Kind, expr string) (formatter.Formatter, error) {
	if !kind.Structured() {
		return nil, fmt.Errorf("%w: %q is not a structured format", formatter.ErrUnsupported, kind)
	}

	f := &Formatter{
		writer: writer,
		kind:   kind,
	}

	if expr != "" {
		path, err := jsonpath.Parse(expr)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidJSONPath, expr, err)
		}
		f.path = path
	}

	return f, nil
}

func (f *Formatter) Format(nodes []*kdl.Node) error {
	items, err := f.items(nodes)
	if err != nil {
		return err
	}

	if f.kind == formatter.YAML {
		return f.writeYAML(items)
	}
	return f.writeJSONLines(items)
}

func (f *Formatter) items(nodes []*kdl.Node) ([]any, error) {
	docs := newDocuments(nodes)

	if f.path == nil {
		items := make([]any, 0, len(docs))
		for _, d := range docs {
			items = append(items, d)
		}
		return items, nil
	}

	payload, err := json.Marshal(docs)
	if err != nil {
		return nil, fmt.Errorf("encode matches: %w", err)
	}

	var data any
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("decode matches: %w", err)
	}

	selected := f.path.Select(data)
	items := make([]any, 0, len(selected))
	items = append(items, selected...)
	return items, nil
}

func (f *Formatter) writeJSONLines(items []any) error {
	enc := json.NewEncoder(f.writer)
	enc.SetEscapeHTML(false)

	for _, item := range items {
		if err := enc.Encode(item); err != nil {
			return fmt.Errorf("write JSON: %w", err)
		}
	}
	return nil
}

func (f *Formatter) writeYAML(items []any) error {
	payload, err := yaml.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode YAML: %w", err)
	}

	if _, err := f.writer.Write(payload); err != nil {
		return fmt.Errorf("write YAML: %w", err)
	}
	return nil
}
