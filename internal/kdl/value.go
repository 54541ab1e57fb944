package kdl

import (
	"math"
	"strconv"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindInteger
	KindFloat
	KindBoolean
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindBoolean:
		return "boolean"
	default:
		return "unknown"
	}
}

// Value is a KDL scalar: a string, integer, float, boolean or null.
// The zero Value is null.
type Value struct {
	kind       Kind
	str        string
	integer    int64
	float      float64
	boolean    bool
	annotation string
}

func NewString(s string) Value {
	return Value{kind: KindString, str: s}
}

func NewInteger(i int64) Value {
	return Value{kind: KindInteger, integer: i}
}

func NewFloat(f float64) Value {
	return Value{kind: KindFloat, float: f}
}

func NewBool(b bool) Value {
	return Value{kind: KindBoolean, boolean: b}
}

func Null() Value {
	return Value{}
}

func (v Value) Kind() Kind {
	return v.kind
}

func (v Value) AsString() (string, bool) {
	return v.str, v.kind == KindString
}

func (v Value) AsInteger() (int64, bool) {
	return v.integer, v.kind == KindInteger
}

func (v Value) AsFloat() (float64, bool) {
	return v.float, v.kind == KindFloat
}

func (v Value) AsBool() (bool, bool) {
	return v.boolean, v.kind == KindBoolean
}

// Annotation returns the type annotation written before the value, e.g. "u8" for (u8)10.
func (v Value) Annotation() string {
	return v.annotation
}

// WithAnnotation returns a copy of v carrying the given type annotation.
func (v Value) WithAnnotation(annotation string) Value {
	v.annotation = annotation
	return v
}

// Equal reports whether both values hold the same variant, payload and annotation.
// Floats are compared bit for bit so that a value always equals itself.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind || v.annotation != other.annotation {
		return false
	}

	switch v.kind {
	case KindString:
		return v.str == other.str
	case KindInteger:
		return v.integer == other.integer
	case KindFloat:
		return math.Float64bits(v.float) == math.Float64bits(other.float)
	case KindBoolean:
		return v.boolean == other.boolean
	default:
		return true
	}
}

// Interface returns the payload as a plain Go value: string, int64, float64, bool or nil.
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindInteger:
		return v.integer
	case KindFloat:
		return v.float
	case KindBoolean:
		return v.boolean
	default:
		return nil
	}
}

// String renders the value as a KDL literal, annotation included.
func (v Value) String() string {
	literal := v.literal()
	if v.annotation == "" {
		return literal
	}
	return "(" + FormatIdentifier(v.annotation) + ")" + literal
}

func (v Value) literal() string {
	switch v.kind {
	case KindString:
		return quote(v.str)
	case KindInteger:
		return formatNumber(v.integer)
	case KindFloat:
		return formatNumber(v.float)
	case KindBoolean:
		return strconv.FormatBool(v.boolean)
	default:
		return "null"
	}
}
