package selector

import (
	"strconv"
	"strings"

	"github.com/jacoelho/kq/internal/kdl"
	"github.com/jacoelho/kq/internal/predicate"
)

// CombinatorKind is the relation between a combinator and the one before it.
type CombinatorKind uint8

const (
	Descendant CombinatorKind = iota
	Child
)

// Sibling is the relation of a sibling step to the node before it.
type Sibling uint8

const (
	General Sibling = iota
	Adjacent
)

func (s Sibling) String() string {
	if s == Adjacent {
		return "+"
	}
	return "~"
}

// Combinator is a hierarchy step: a head accessor plus the sibling steps that follow it.
type Combinator struct {
	Kind     CombinatorKind
	Head     Accessor
	Siblings []SiblingStep
}

// SiblingStep is one `+ x` or `~ x` link in a sibling chain.
type SiblingStep struct {
	Relation Sibling
	Accessor Accessor
}

// Accessor selects nodes. Implementations: Top, AnyElement, AnyElementWithTypeTag, Closed, Sole.
type Accessor interface {
	isAccessor()
	String() string
}

// Top is the zero-width anchor above the document's top-level nodes.
type Top struct{}

// AnyElement is `[]`. It matches every node.
type AnyElement struct{}

// AnyElementWithTypeTag is the reserved `(type)` accessor. It never matches.
type AnyElementWithTypeTag struct {
	Name    string
	HasName bool
}

// Closed filters by an optional node name and a matcher.
type Closed struct {
	Name    string
	HasName bool
	Matcher Matcher
}

// Sole filters by node name only.
type Sole struct {
	Name string
}

func (Top) isAccessor()                   {}
func (AnyElement) isAccessor()            {}
func (AnyElementWithTypeTag) isAccessor() {}
func (Closed) isAccessor()                {}
func (Sole) isAccessor()                  {}

func (Top) String() string        { return "top()" }
func (AnyElement) String() string { return "[]" }

func (a AnyElementWithTypeTag) String() string {
	if !a.HasName {
		return "()"
	}
	return "(" + kdl.FormatIdentifier(a.Name) + ")"
}

func (c Closed) String() string {
	if !c.HasName {
		return c.Matcher.String()
	}
	return kdl.FormatIdentifier(c.Name) + c.Matcher.String()
}

func (s Sole) String() string {
	return kdl.FormatIdentifier(s.Name)
}

// Matcher tests a single node. Implementations: Direct, Expression.
type Matcher interface {
	isMatcher()
	String() string
}

// Direct tests for the presence of an entity.
type Direct struct {
	Entity Entity
}

// Expression compares an entity against a literal.
type Expression struct {
	Entity Entity
	Op     predicate.Operator
	Value  kdl.Value
}

func (Direct) isMatcher()     {}
func (Expression) isMatcher() {}

func (d Direct) String() string {
	return "[" + d.Entity.String() + "]"
}

func (e Expression) String() string {
	return "[" + e.Entity.String() + " " + string(e.Op) + " " + e.Value.String() + "]"
}

// Entity names the part of a node a matcher reads.
// Props, TypeTag and Values are reserved and never match.
type Entity interface {
	isEntity()
	String() string
}

type NodeName struct{}

type PropName struct {
	Name string
}

type Val struct {
	Index int
}

type Props struct{}

type TypeTag struct{}

type Values struct{}

func (NodeName) isEntity() {}
func (PropName) isEntity() {}
func (Val) isEntity()      {}
func (Props) isEntity()    {}
func (TypeTag) isEntity()  {}
func (Values) isEntity()   {}

func (NodeName) String() string { return "name()" }
func (Props) String() string    { return "props()" }
func (TypeTag) String() string  { return "tag()" }
func (Values) String() string   { return "values()" }

func (p PropName) String() string {
	return "prop(" + kdl.FormatIdentifier(p.Name) + ")"
}

func (v Val) String() string {
	return "val(" + strconv.Itoa(v.Index) + ")"
}

// Format renders combinators back into selector text.
func Format(combinators []Combinator) string {
	var b strings.Builder
	for i, c := range combinators {
		if i > 0 {
			if c.Kind == Child {
				b.WriteString(" > ")
			} else {
				b.WriteByte(' ')
			}
		}
		b.WriteString(c.Head.String())
		for _, step := range c.Siblings {
			b.WriteByte(' ')
			b.WriteString(step.Relation.String())
			b.WriteByte(' ')
			b.WriteString(step.Accessor.String())
		}
	}
	return b.String()
}

// Reserved lists the constructs in combinators that are accepted by the grammar
// but never match, in order of first appearance.
func Reserved(combinators []Combinator) []string {
	var out []string
	seen := make(map[string]struct{})
	add := func(s string) {
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	visit := func(a Accessor) {
		switch a := a.(type) {
		case AnyElementWithTypeTag:
			add(a.String())
		case Closed:
			var entity Entity
			switch m := a.Matcher.(type) {
			case Direct:
				entity = m.Entity
			case Expression:
				entity = m.Entity
			}
			switch entity.(type) {
			case Props, TypeTag, Values:
				add(entity.String())
			}
		}
	}

	for _, c := range combinators {
		visit(c.Head)
		for _, step := range c.Siblings {
			visit(step.Accessor)
		}
	}
	return out
}
