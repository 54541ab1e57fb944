package kdl

// Node is a single KDL node with its arguments, properties and children.
type Node struct {
	Name string
	// Annotation is the type annotation written before the name, empty when absent.
	Annotation string
	Values     []Value
	Properties []Property
	Children   []*Node
}

// Property is a key=value pair attached to a node.
type Property struct {
	Name  string
	Value Value
}

// Property returns the value stored under name.
func (n *Node) Property(name string) (Value, bool) {
	for _, p := range n.Properties {
		if p.Name == name {
			return p.Value, true
		}
	}
	return Value{}, false
}

// HasProperty reports whether the node carries a property called name.
func (n *Node) HasProperty(name string) bool {
	_, ok := n.Property(name)
	return ok
}

// SetProperty stores value under name. An existing property keeps its position.
func (n *Node) SetProperty(name string, value Value) {
	for i := range n.Properties {
		if n.Properties[i].Name == name {
			n.Properties[i].Value = value
			return
		}
	}
	n.Properties = append(n.Properties, Property{Name: name, Value: value})
}

// Value returns the positional argument at index.
func (n *Node) Value(index int) (Value, bool) {
	if index < 0 || index >= len(n.Values) {
		return Value{}, false
	}
	return n.Values[index], true
}
