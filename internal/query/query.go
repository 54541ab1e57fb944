package query

import (
	"strings"

	"github.com/jacoelho/kq/internal/kdl"
	"github.com/jacoelho/kq/internal/selector"
)

// Query is a compiled selector. The zero combinator list passes documents through unchanged.
type Query struct {
	combinators []selector.Combinator
}

// Compile parses a selector. Empty or whitespace-only input compiles to a query that
// returns its input unchanged.
func Compile(text string) (*Query, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return &Query{}, nil
	}

	combinators, err := selector.Parse(text)
	if err != nil {
		return nil, err
	}
	return &Query{combinators: combinators}, nil
}

// Run evaluates the query against document. The document is never modified.
func (q *Query) Run(document []*kdl.Node) []*kdl.Node {
	if q.IsIdentity() {
		return document
	}
	return Evaluate(q.combinators, document)
}

// IsIdentity reports whether the query returns its input unchanged.
func (q *Query) IsIdentity() bool {
	return len(q.combinators) == 0
}

// Reserved lists constructs in the query that never match.
func (q *Query) Reserved() []string {
	return selector.Reserved(q.combinators)
}

// String returns the canonical selector text.
func (q *Query) String() string {
	return selector.Format(q.combinators)
}

// Select compiles text and runs it against document.
func Select(text string, document []*kdl.Node) ([]*kdl.Node, error) {
	q, err := Compile(text)
	if err != nil {
		return nil, err
	}
	return q.Run(document), nil
}
