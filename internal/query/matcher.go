package query

import (
	"github.com/jacoelho/kq/internal/kdl"
	"github.com/jacoelho/kq/internal/predicate"
	"github.com/jacoelho/kq/internal/selector"
)

// matches reports whether accessor selects n. Top and AnyElement select every node;
// the reserved type-tag accessor selects none.
func matches(accessor selector.Accessor, n *kdl.Node) bool {
	switch a := accessor.(type) {
	case selector.Top, selector.AnyElement:
		return true
	case selector.Sole:
		return n.Name == a.Name
	case selector.Closed:
		if a.HasName && n.Name != a.Name {
			return false
		}
		return matchNode(a.Matcher, n)
	default:
		return false
	}
}

func matchNode(m selector.Matcher, n *kdl.Node) bool {
	switch m := m.(type) {
	case selector.Direct:
		return present(m.Entity, n)
	case selector.Expression:
		return compare(m, n)
	default:
		return false
	}
}

func present(entity selector.Entity, n *kdl.Node) bool {
	switch e := entity.(type) {
	case selector.PropName:
		return n.HasProperty(e.Name)
	case selector.Val:
		_, ok := n.Value(e.Index)
		return ok
	default:
		return false
	}
}

func compare(expr selector.Expression, n *kdl.Node) bool {
	switch e := expr.Entity.(type) {
	case selector.PropName:
		v, ok := n.Property(e.Name)
		return ok && predicate.Evaluate(v, expr.Op, expr.Value)
	case selector.Val:
		v, ok := n.Value(e.Index)
		return ok && predicate.Evaluate(v, expr.Op, expr.Value)
	case selector.NodeName:
		if expr.Op.IsOrdering() || expr.Value.Kind() != kdl.KindString {
			return false
		}
		return predicate.Evaluate(kdl.NewString(n.Name), expr.Op, expr.Value)
	default:
		return false
	}
}
