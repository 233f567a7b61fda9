package literal

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Value is a sealed interface over the literal types.
type Value interface {
	literalValue()
}

// Null is the null literal (null or None).
type Null struct{}

func (Null) literalValue() {}

// MarshalJSON implements json.Marshaler for Null.
func (Null) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// String is a string literal, quoted or implicit.
type String string

func (String) literalValue() {}

// Int is an integer literal.
type Int int64

func (Int) literalValue() {}

// Float is a decimal literal.
type Float float64

func (Float) literalValue() {}

// MarshalJSON implements json.Marshaler for Float.
// Integral values keep a trailing ".0" so they stay distinguishable from Int.
func (f Float) MarshalJSON() ([]byte, error) {
	s, err := formatFloat(float64(f))
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

// Bool is a boolean literal.
type Bool bool

func (Bool) literalValue() {}

// Array is an ordered list of values.
type Array []Value

func (Array) literalValue() {}

// MarshalJSON implements json.Marshaler for Array.
// A nil Array marshals as [] rather than null.
func (a Array) MarshalJSON() ([]byte, error) {
	if a == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Value(a))
}

func formatFloat(f float64) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", fmt.Errorf("unsupported float value: %v", f)
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e16 {
		return strconv.FormatFloat(f, 'f', 1, 64), nil
	}
	return strconv.FormatFloat(f, 'g', -1, 64), nil
}

// Equal reports whether a and b hold the same value.
// Mappings compare by key set and values, ignoring key order.
// Int and Float never compare equal to each other.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case nil:
		return b == nil
	case Null:
		_, ok := b.(Null)
		return ok
	case String:
		bv, ok := b.(String)
		return ok && av == bv
	case Int:
		bv, ok := b.(Int)
		return ok && av == bv
	case Float:
		bv, ok := b.(Float)
		return ok && av == bv
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	case Array:
		bv, ok := b.(Array)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case *Mapping:
		bv, ok := b.(*Mapping)
		if !ok || av.Len() != bv.Len() {
			return false
		}
		for _, k := range av.Keys() {
			x, _ := av.Get(k)
			y, found := bv.Get(k)
			if !found || !Equal(x, y) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// TypeName returns a short human-readable name for v's type.
func TypeName(v Value) string {
	switch v.(type) {
	case Null:
		return "null"
	case String:
		return "string"
	case Int:
		return "int"
	case Float:
		return "float"
	case Bool:
		return "bool"
	case Array:
		return "array"
	case *Mapping:
		return "mapping"
	default:
		return fmt.Sprintf("%T", v)
	}
}
