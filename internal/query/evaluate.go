package query

import (
	"github.com/jacoelho/kq/internal/kdl"
	"github.com/jacoelho/kq/internal/selector"
)

// anchor records whether the previous combinator was the zero-width top() anchor.
type anchor uint8

const (
	anchorTop anchor = iota
	anchorMatched
)

// siblingList is an ordered list of siblings. parent is nil for the list formed by the
// current set itself.
type siblingList struct {
	parent *kdl.Node
	nodes  []*kdl.Node
}

// link pairs an accessor with its relation to the accessor before it.
type link struct {
	relation selector.Sibling
	accessor selector.Accessor
}

// Evaluate folds combinators over document and returns the matched nodes.
// It never fails; selectors that match nothing return an empty result.
func Evaluate(combinators []selector.Combinator, document []*kdl.Node) []*kdl.Node {
	state := anchorTop
	current := document

	for _, c := range combinators {
		current = apply(c, state, current)

		state = anchorMatched
		if _, ok := c.Head.(selector.Top); ok {
			state = anchorTop
		}
	}

	return current
}

func apply(c selector.Combinator, state anchor, current []*kdl.Node) []*kdl.Node {
	lists := scope(state, current)

	if len(c.Siblings) == 0 {
		switch c.Head.(type) {
		case selector.Top, selector.AnyElement:
			return flatten(lists)
		case selector.AnyElementWithTypeTag:
			return nil
		}

		if c.Kind == selector.Child {
			return filter(lists, c.Head)
		}
		return search(lists, c.Head)
	}

	chain := relationChain(c)
	if c.Kind == selector.Child {
		var out []*kdl.Node
		for _, list := range lists {
			out = append(out, matchChain(chain, list.nodes)...)
		}
		return out
	}
	return searchChain(lists, chain)
}

// scope returns the sibling lists a combinator applies to: the current set itself after
// top(), otherwise the children of every current node.
func scope(state anchor, current []*kdl.Node) []siblingList {
	if state == anchorTop {
		return []siblingList{{nodes: current}}
	}

	lists := make([]siblingList, 0, len(current))
	for _, n := range current {
		if len(n.Children) > 0 {
			lists = append(lists, siblingList{parent: n, nodes: n.Children})
		}
	}
	return lists
}

func flatten(lists []siblingList) []*kdl.Node {
	var out []*kdl.Node
	for _, list := range lists {
		out = append(out, list.nodes...)
	}
	return out
}

func filter(lists []siblingList, accessor selector.Accessor) []*kdl.Node {
	var out []*kdl.Node
	for _, list := range lists {
		for _, n := range list.nodes {
			if matches(accessor, n) {
				out = append(out, n)
			}
		}
	}
	return out
}

// search tests every node of the scope subtrees in breadth-first order, visiting each node once.
func search(lists []siblingList, accessor selector.Accessor) []*kdl.Node {
	queue := flatten(lists)
	visited := make(map[*kdl.Node]struct{}, len(queue))

	var out []*kdl.Node
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]

		if _, ok := visited[n]; ok {
			continue
		}
		visited[n] = struct{}{}

		if matches(accessor, n) {
			out = append(out, n)
		}
		queue = append(queue, n.Children...)
	}
	return out
}

// searchChain applies the relation chain to every sibling list reachable from the scope,
// breadth first.
func searchChain(lists []siblingList, chain []link) []*kdl.Node {
	queue := append([]siblingList(nil), lists...)
	walked := make(map[*kdl.Node]struct{})
	emitted := make(map[*kdl.Node]struct{})

	var out []*kdl.Node
	for len(queue) > 0 {
		list := queue[0]
		queue = queue[1:]

		if list.parent != nil {
			if _, ok := walked[list.parent]; ok {
				continue
			}
			walked[list.parent] = struct{}{}
		}

		for _, n := range matchChain(chain, list.nodes) {
			if _, ok := emitted[n]; ok {
				continue
			}
			emitted[n] = struct{}{}
			out = append(out, n)
		}

		for _, n := range list.nodes {
			if len(n.Children) > 0 {
				queue = append(queue, siblingList{parent: n, nodes: n.Children})
			}
		}
	}
	return out
}

// relationChain builds [(General, head)] followed by the combinator's sibling steps.
func relationChain(c selector.Combinator) []link {
	chain := make([]link, 0, len(c.Siblings)+1)
	chain = append(chain, link{relation: selector.General, accessor: c.Head})
	for _, step := range c.Siblings {
		chain = append(chain, link{relation: step.Relation, accessor: step.Accessor})
	}
	return chain
}

func matchChain(chain []link, nodes []*kdl.Node) []*kdl.Node {
	var out []*kdl.Node
	for i := range nodes {
		if matchesAt(chain, nodes, i) {
			out = append(out, nodes[i])
		}
	}
	return out
}

// matchesAt reports whether nodes[i] matches the last link and every earlier link can be
// satisfied scanning backwards. Adjacent needs the node right before the cursor; General
// takes the nearest earlier match. Each satisfied link moves the cursor to its match.
func matchesAt(chain []link, nodes []*kdl.Node, i int) bool {
	last := len(chain) - 1
	if !matches(chain[last].accessor, nodes[i]) {
		return false
	}

	cursor := i
	for k := last; k > 0; k-- {
		target := chain[k-1].accessor

		if chain[k].relation == selector.Adjacent {
			if cursor == 0 || !matches(target, nodes[cursor-1]) {
				return false
			}
			cursor--
			continue
		}

		found := -1
		for j := cursor - 1; j >= 0; j-- {
			if matches(target, nodes[j]) {
				found = j
				break
			}
		}
		if found < 0 {
			return false
		}
		cursor = found
	}

	return true
}
