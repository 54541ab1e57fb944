package selector

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/jacoelho/kq/internal/kdl"
	"github.com/jacoelho/kq/internal/predicate"
)

// ErrSyntax is wrapped by every error Parse returns.
var ErrSyntax = errors.New("invalid selector")

type separator uint8

const (
	sepDescendant separator = iota
	sepChild
	sepAdjacent
	sepGeneral
)

var symbolSeparators = []struct {
	symbol string
	sep    separator
}{
	{symbol: ">", sep: sepChild},
	{symbol: "+", sep: sepAdjacent},
	{symbol: "~", sep: sepGeneral},
}

// Parse turns selector text into combinators. The first accessor always heads a
// Descendant combinator; sibling separators extend the most recent combinator.
func Parse(input string) ([]Combinator, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, fmt.Errorf("%w: empty selector", ErrSyntax)
	}

	p := &parser{input: input, s: kdl.NewScanner(input)}

	head, err := p.accessor()
	if err != nil {
		return nil, err
	}
	combinators := []Combinator{{Kind: Descendant, Head: head}}

	for !p.s.EOF() {
		sep, err := p.separator()
		if err != nil {
			return nil, err
		}
		accessor, err := p.accessor()
		if err != nil {
			return nil, err
		}

		switch sep {
		case sepAdjacent, sepGeneral:
			relation := General
			if sep == sepAdjacent {
				relation = Adjacent
			}
			last := &combinators[len(combinators)-1]
			last.Siblings = append(last.Siblings, SiblingStep{Relation: relation, Accessor: accessor})
		case sepChild:
			combinators = append(combinators, Combinator{Kind: Child, Head: accessor})
		default:
			combinators = append(combinators, Combinator{Kind: Descendant, Head: accessor})
		}
	}

	return combinators, nil
}

type parser struct {
	input string
	s     *kdl.Scanner
}

func (p *parser) errorf(offset int, format string, args ...any) error {
	column := utf8.RuneCountInString(p.input[:offset]) + 1
	return fmt.Errorf("%w: %s at column %d of %q", ErrSyntax, fmt.Sprintf(format, args...), column, p.input)
}

// literalError reports a malformed KDL literal found by the scanner, or msg when
// nothing matched at all.
func (p *parser) literalError(offset int, msg string) error {
	var scanErr *kdl.ScanError
	if errors.As(p.s.Err(), &scanErr) {
		return p.errorf(scanErr.Offset, "%s", scanErr.Msg)
	}
	return p.errorf(offset, "%s", msg)
}

func (p *parser) found() string {
	if p.s.EOF() {
		return "end of input"
	}
	return strconv.QuoteRune(p.s.Peek())
}

// separator reads the whitespace between two accessors. A symbol without whitespace on
// both sides is left for the next accessor, matching the plain descendant separator.
func (p *parser) separator() (separator, error) {
	if p.s.SkipWhitespace() == 0 {
		return 0, p.errorf(p.s.Pos(), "expected whitespace between accessors, found %s", p.found())
	}

	afterSpace := p.s.Pos()
	for _, candidate := range symbolSeparators {
		if !p.s.Consume(candidate.symbol) {
			continue
		}
		if p.s.SkipWhitespace() > 0 {
			return candidate.sep, nil
		}
		p.s.Reset(afterSpace)
		break
	}
	return sepDescendant, nil
}

func (p *parser) accessor() (Accessor, error) {
	start := p.s.Pos()

	switch {
	case p.s.Consume("top()"):
		return Top{}, nil
	case p.s.Consume("[]"):
		return AnyElement{}, nil
	case p.s.Consume("("):
		if p.s.Consume(")") {
			return AnyElementWithTypeTag{}, nil
		}
		name, ok := p.s.Identifier()
		if !ok {
			return nil, p.literalError(p.s.Pos(), "expected type name after '('")
		}
		if !p.s.Consume(")") {
			return nil, p.errorf(p.s.Pos(), "expected ')', found %s", p.found())
		}
		return AnyElementWithTypeTag{Name: name, HasName: true}, nil
	}

	name, hasName := p.s.Identifier()
	if !hasName && p.s.Err() != nil {
		return nil, p.literalError(start, "")
	}

	if p.s.HasPrefix("[") {
		m, err := p.matcher()
		if err != nil {
			return nil, err
		}
		return Closed{Name: name, HasName: hasName, Matcher: m}, nil
	}

	if !hasName {
		return nil, p.errorf(start, "expected accessor, found %s", p.found())
	}
	return Sole{Name: name}, nil
}

func (p *parser) matcher() (Matcher, error) {
	p.s.Consume("[")

	entity, err := p.entity()
	if err != nil {
		return nil, err
	}

	var m Matcher = Direct{Entity: entity}

	afterEntity := p.s.Pos()
	if p.s.SkipWhitespace() > 0 {
		if op, ok := predicate.MatchOperator(p.s.Rest()); ok {
			p.s.Consume(string(op))
			if p.s.SkipWhitespace() == 0 {
				return nil, p.errorf(p.s.Pos(), "expected whitespace after operator %q", op)
			}
			valueStart := p.s.Pos()
			v, ok := p.s.Value()
			if !ok {
				return nil, p.literalError(valueStart, "expected value, found "+p.found())
			}
			m = Expression{Entity: entity, Op: op, Value: v}
		} else {
			p.s.Reset(afterEntity)
		}
	}

	if !p.s.Consume("]") {
		return nil, p.errorf(p.s.Pos(), "expected ']', found %s", p.found())
	}
	return m, nil
}

func (p *parser) entity() (Entity, error) {
	switch {
	case p.s.Consume("name()"):
		return NodeName{}, nil
	case p.s.Consume("tag()"):
		return TypeTag{}, nil
	case p.s.Consume("props()"):
		return Props{}, nil
	case p.s.Consume("values()"):
		return Values{}, nil
	}

	start := p.s.Pos()

	if p.s.Consume("val(") {
		rest := p.s.Rest()
		n := 0
		for n < len(rest) && rest[n] >= '0' && rest[n] <= '9' {
			n++
		}
		if strings.HasPrefix(rest[n:], ")") {
			// An index too large for int reads as val(0).
			index, err := strconv.Atoi(rest[:n])
			if err != nil {
				index = 0
			}
			p.s.Reset(p.s.Pos() + n + 1)
			return Val{Index: index}, nil
		}
		p.s.Reset(start)
	}

	if p.s.Consume("prop(") {
		if name, ok := p.s.Identifier(); ok && p.s.Consume(")") {
			return PropName{Name: name}, nil
		}
		p.s.Reset(start)
	}

	name, ok := p.s.Identifier()
	if !ok {
		return nil, p.literalError(start, "expected entity, found "+p.found())
	}
	return PropName{Name: name}, nil
}
