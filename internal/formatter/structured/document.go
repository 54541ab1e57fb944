package structured

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/goccy/go-yaml"

	"github.com/jacoelho/kq/internal/kdl"
)

// document is the data rendering of a node.
type document struct {
	Name       string     `json:"name" yaml:"name"`
	Type       string     `json:"type,omitempty" yaml:"type,omitempty"`
	Values     []any      `json:"values" yaml:"values"`
	Properties properties `json:"properties" yaml:"properties"`
	Children   []document `json:"children" yaml:"children"`
}

// properties keeps source order in both encodings.
type properties []kdl.Property

func newDocument(n *kdl.Node) document {
	d := document{
		Name:       n.Name,
		Type:       n.Annotation,
		Values:     make([]any, 0, len(n.Values)),
		Properties: properties(n.Properties),
		Children:   make([]document, 0, len(n.Children)),
	}
	for _, v := range n.Values {
		d.Values = append(d.Values, v.Interface())
	}
	for _, child := range n.Children {
		d.Children = append(d.Children, newDocument(child))
	}
	return d
}

func newDocuments(nodes []*kdl.Node) []document {
	docs := make([]document, 0, len(nodes))
	for _, n := range nodes {
		docs = append(docs, newDocument(n))
	}
	return docs
}

func (p properties) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, prop := range p {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(prop.Name)
		if err != nil {
			return nil, fmt.Errorf("encode property name %q: %w", prop.Name, err)
		}
		value, err := json.Marshal(prop.Value.Interface())
		if err != nil {
			return nil, fmt.Errorf("encode property %q: %w", prop.Name, err)
		}

		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (p properties) MarshalYAML() (any, error) {
	out := make(yaml.MapSlice, 0, len(p))
	for _, prop := range p {
		out = append(out, yaml.MapItem{Key: prop.Name, Value: prop.Value.Interface()})
	}
	return out, nil
}
