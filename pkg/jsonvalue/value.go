package jsonvalue

import (
	"errors"
	"math"
	"strconv"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInteger
	KindFloat
	KindString
	KindArray
	KindObject
)

// String returns the JSON Schema flavoured name of the kind.
// Floats report as "number" since that is the narrowest schema type they satisfy.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is a decoded JSON document node.
// The zero Value is null.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	// s holds string contents, or the literal text of a number.
	s   string
	arr []Value
	obj *Object
}

// Null returns the null value.
func Null() Value { return Value{} }

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int wraps an integer.
func Int(i int64) Value {
	return Value{kind: KindInteger, i: i, s: strconv.FormatInt(i, 10)}
}

// Float wraps a floating point number.
func Float(f float64) Value {
	return Value{kind: KindFloat, f: f, s: strconv.FormatFloat(f, 'g', -1, 64)}
}

// String wraps a string.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Array wraps a list of values. The slice is not copied.
func Array(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: KindArray, arr: items}
}

// FromObject wraps an ordered object. A nil object becomes an empty one.
func FromObject(o *Object) Value {
	if o == nil {
		o = NewObject()
	}
	return Value{kind: KindObject, obj: o}
}

// number builds a numeric Value from its literal text.
// Integer literals that do not fit in int64 fall back to floats, and float
// literals beyond float64 range become ±Inf with their text kept.
func number(lit string) (Value, error) {
	if i, err := strconv.ParseInt(lit, 10, 64); err == nil {
		return Value{kind: KindInteger, i: i, s: lit}, nil
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return Value{}, err
	}
	return Value{kind: KindFloat, f: f, s: lit}, nil
}

// Kind reports the variant of v.
func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool   { return v.kind == KindNull }
func (v Value) IsBool() bool   { return v.kind == KindBool }
func (v Value) IsString() bool { return v.kind == KindString }
func (v Value) IsArray() bool  { return v.kind == KindArray }
func (v Value) IsObject() bool { return v.kind == KindObject }

// IsNumber reports whether v is an integer or a float. Booleans are not numbers.
func (v Value) IsNumber() bool { return v.kind == KindInteger || v.kind == KindFloat }

// IsWholeNumber reports whether v is an integer, or a finite float without a fractional part.
func (v Value) IsWholeNumber() bool {
	switch v.kind {
	case KindInteger:
		return true
	case KindFloat:
		return !math.IsInf(v.f, 0) && !math.IsNaN(v.f) && v.f == math.Trunc(v.f)
	default:
		return false
	}
}

// AsBool returns the boolean held by v.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsInt returns the integer held by v.
func (v Value) AsInt() (int64, bool) { return v.i, v.kind == KindInteger }

// AsFloat returns v as a float64 for either numeric variant.
func (v Value) AsFloat() (float64, bool) {
	switch v.kind {
	case KindInteger:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	default:
		return 0, false
	}
}

// AsString returns the string held by v.
func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.s, true
}

// Items returns the elements of an array value, or nil.
func (v Value) Items() []Value {
	if v.kind != KindArray {
		return nil
	}
	return v.arr
}

// Object returns the object held by v, or nil.
func (v Value) Object() *Object {
	if v.kind != KindObject {
		return nil
	}
	return v.obj
}

// NumberLiteral returns the source text of a numeric value.
func (v Value) NumberLiteral() (string, bool) {
	if !v.IsNumber() {
		return "", false
	}
	return v.s, true
}

// Text renders v the way violation messages show it: strings raw, everything else as compact JSON.
func (v Value) Text() string {
	if v.kind == KindString {
		return v.s
	}
	return v.String()
}
