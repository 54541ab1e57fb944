package predicate

import (
	"cmp"
	"strings"

	"github.com/jacoelho/kq/internal/kdl"
)

// Operator is a selector comparison operator in its source spelling.
type Operator string

const (
	OpEqual              Operator = "="
	OpNotEqual           Operator = "!="
	OpGreaterThan        Operator = ">"
	OpGreaterThanOrEqual Operator = ">="
	OpLessThan           Operator = "<"
	OpLessThanOrEqual    Operator = "<="
	OpContains           Operator = "*="
	OpStartsWith         Operator = "^="
	OpEndsWith           Operator = "$="
)

// matchOrder lists operators so that two-character forms are tried before their one-character prefixes.
var matchOrder = []Operator{
	OpContains,
	OpEndsWith,
	OpGreaterThanOrEqual,
	OpLessThanOrEqual,
	OpNotEqual,
	OpStartsWith,
	OpEqual,
	OpGreaterThan,
	OpLessThan,
}

type operationFunc func(lhs, rhs kdl.Value) bool

var operations = map[Operator]operationFunc{
	OpEqual:              equal,
	OpNotEqual:           notEqual,
	OpGreaterThan:        ordered(func(c int) bool { return c > 0 }),
	OpGreaterThanOrEqual: ordered(func(c int) bool { return c >= 0 }),
	OpLessThan:           ordered(func(c int) bool { return c < 0 }),
	OpLessThanOrEqual:    ordered(func(c int) bool { return c <= 0 }),
	OpContains:           textual(strings.Contains),
	OpStartsWith:         textual(strings.HasPrefix),
	OpEndsWith:           textual(strings.HasSuffix),
}

// MatchOperator returns the operator at the start of input, preferring the longest match.
func MatchOperator(input string) (Operator, bool) {
	for _, op := range matchOrder {
		if strings.HasPrefix(input, string(op)) {
			return op, true
		}
	}
	return "", false
}

// IsOrdering reports whether op compares magnitudes.
func (op Operator) IsOrdering() bool {
	switch op {
	case OpGreaterThan, OpGreaterThanOrEqual, OpLessThan, OpLessThanOrEqual:
		return true
	}
	return false
}

// Evaluate compares lhs against rhs. Values are never coerced: operands of different
// kinds satisfy no operator, not even "!=".
func Evaluate(lhs kdl.Value, op Operator, rhs kdl.Value) bool {
	fn, ok := operations[op]
	if !ok {
		return false
	}
	return fn(lhs, rhs)
}

func equal(lhs, rhs kdl.Value) bool {
	if lhs.Kind() != rhs.Kind() {
		return false
	}

	switch lhs.Kind() {
	case kdl.KindNull:
		return true
	case kdl.KindString:
		a, _ := lhs.AsString()
		b, _ := rhs.AsString()
		return a == b
	case kdl.KindInteger:
		a, _ := lhs.AsInteger()
		b, _ := rhs.AsInteger()
		return a == b
	case kdl.KindFloat:
		a, _ := lhs.AsFloat()
		b, _ := rhs.AsFloat()
		return a == b
	case kdl.KindBoolean:
		a, _ := lhs.AsBool()
		b, _ := rhs.AsBool()
		return a == b
	}
	return false
}

// notEqual is only defined between values of the same kind.
func notEqual(lhs, rhs kdl.Value) bool {
	return lhs.Kind() == rhs.Kind() && !equal(lhs, rhs)
}

func ordered(accept func(int) bool) operationFunc {
	return func(lhs, rhs kdl.Value) bool {
		c, ok := compare(lhs, rhs)
		return ok && accept(c)
	}
}

func compare(lhs, rhs kdl.Value) (int, bool) {
	if a, ok := lhs.AsInteger(); ok {
		b, ok := rhs.AsInteger()
		if !ok {
			return 0, false
		}
		return cmp.Compare(a, b), true
	}

	if a, ok := lhs.AsFloat(); ok {
		b, ok := rhs.AsFloat()
		if !ok {
			return 0, false
		}
		return cmp.Compare(a, b), true
	}

	return 0, false
}

func textual(fn func(s, substr string) bool) operationFunc {
	return func(lhs, rhs kdl.Value) bool {
		a, ok := lhs.AsString()
		if !ok {
			return false
		}
		b, ok := rhs.AsString()
		if !ok {
			return false
		}
		return fn(a, b)
	}
}
