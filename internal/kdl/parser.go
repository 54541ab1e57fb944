package kdl

import (
	"bytes"
	"fmt"
	"io"
	"maps"
	"math/big"
	"slices"
	"unicode/utf8"

	kdlgo "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// Parse reads a complete KDL 1.0 document.
func Parse(r io.Reader) ([]*Node, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read KDL document: %w", err)
	}
	return parse(data)
}

// ParseString parses a KDL document held in memory.
func ParseString(src string) ([]*Node, error) {
	return parse([]byte(src))
}

func parse(data []byte) ([]*Node, error) {
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: document is not valid UTF-8", ErrSyntax)
	}

	doc, err := kdlgo.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
	}

	return convertNodes(doc.Nodes)
}

func convertNodes(in []*document.Node) ([]*Node, error) {
	out := make([]*Node, 0, len(in))
	for _, n := range in {
		node, err := convertNode(n)
		if err != nil {
			return nil, err
		}
		out = append(out, node)
	}
	return out, nil
}

// convertNode copies a parsed node into the query model. Properties are ordered by key.
func convertNode(in *document.Node) (*Node, error) {
	n := &Node{
		Name:       nodeName(in.Name),
		Annotation: string(in.Type),
	}

	if len(in.Arguments) > 0 {
		n.Values = make([]Value, 0, len(in.Arguments))
	}
	for _, arg := range in.Arguments {
		v, err := convertValue(arg)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", FormatIdentifier(n.Name), err)
		}
		n.Values = append(n.Values, v)
	}

	props := in.Properties.Unordered()
	for _, key := range slices.Sorted(maps.Keys(props)) {
		v, err := convertValue(props[key])
		if err != nil {
			return nil, fmt.Errorf("node %s property %s: %w", FormatIdentifier(n.Name), FormatIdentifier(key), err)
		}
		n.Properties = append(n.Properties, Property{Name: key, Value: v})
	}

	if len(in.Children) > 0 {
		children, err := convertNodes(in.Children)
		if err != nil {
			return nil, err
		}
		n.Children = children
	}

	return n, nil
}

func nodeName(v *document.Value) string {
	if v == nil {
		return ""
	}
	if s, ok := v.Value.(string); ok {
		return s
	}
	return v.ValueString()
}

func convertValue(in *document.Value) (Value, error) {
	var v Value
	switch x := in.Value.(type) {
	case nil:
		v = Null()
	case string:
		v = NewString(x)
	case int64:
		v = NewInteger(x)
	case float64:
		v = NewFloat(x)
	case bool:
		v = NewBool(x)
	case *big.Int:
		return Value{}, fmt.Errorf("%w: integer %s out of range", ErrSyntax, x.String())
	case *big.Float:
		return Value{}, fmt.Errorf("%w: float %s out of range", ErrSyntax, x.String())
	default:
		return Value{}, fmt.Errorf("%w: unsupported literal %v", ErrSyntax, x)
	}
	return v.WithAnnotation(string(in.Type)), nil
}
