package literal

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Mapping is an insertion-ordered string-keyed map of values.
// The zero value is an empty mapping ready for use; a nil *Mapping reads as empty.
type Mapping struct {
	keys   []string
	values map[string]Value
}

func (*Mapping) literalValue() {}

// Pair is a key-value pair for Mapping construction.
type Pair struct {
	Key   string
	Value Value
}

// P is a shorthand for Pair.
// Example: NewMapping(P("name", String("Alice")), P("age", Int(22)))
func P(key string, value Value) Pair {
	return Pair{Key: key, Value: value}
}

// NewMapping creates a mapping from pairs, in order.
// A repeated key keeps its first position and takes the last value.
func NewMapping(pairs ...Pair) *Mapping {
	m := &Mapping{}
	for _, p := range pairs {
		m.Set(p.Key, p.Value)
	}
	return m
}

// Len returns the number of entries.
func (m *Mapping) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the keys in insertion order.
func (m *Mapping) Keys() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Pairs returns the entries in insertion order.
func (m *Mapping) Pairs() []Pair {
	if m == nil {
		return nil
	}
	out := make([]Pair, len(m.keys))
	for i, k := range m.keys {
		out[i] = Pair{Key: k, Value: m.values[k]}
	}
	return out
}

// Get returns the value stored under key.
func (m *Mapping) Get(key string) (Value, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m.values[key]
	return v, ok
}

// Has reports whether key is present.
func (m *Mapping) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Set stores value under key. New keys are appended; existing keys keep
// their position.
func (m *Mapping) Set(key string, value Value) {
	if m.values == nil {
		m.values = make(map[string]Value)
	}
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Clone returns a deep copy of m. Nested mappings and arrays are copied;
// scalar values are immutable and shared.
func (m *Mapping) Clone() *Mapping {
	out := &Mapping{}
	for _, p := range m.Pairs() {
		out.Set(p.Key, cloneValue(p.Value))
	}
	return out
}

func cloneValue(v Value) Value {
	switch val := v.(type) {
	case *Mapping:
		return val.Clone()
	case Array:
		arr := make(Array, len(val))
		for i, elem := range val {
			arr[i] = cloneValue(elem)
		}
		return arr
	default:
		return v
	}
}

// String returns the canonical literal text of m.
func (m *Mapping) String() string {
	return Format(m)
}

// MarshalJSON implements json.Marshaler, keeping insertion order.
func (m *Mapping) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range m.Pairs() {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(p.Key)
		if err != nil {
			return nil, fmt.Errorf("marshal key %q: %w", p.Key, err)
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')

		valBytes, err := json.Marshal(p.Value)
		if err != nil {
			return nil, fmt.Errorf("marshal value for key %q: %w", p.Key, err)
		}
		buf.Write(valBytes)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler, keeping document order.
func (m *Mapping) UnmarshalJSON(data []byte) error {
	v, err := DecodeJSON(data)
	if err != nil {
		return err
	}
	decoded, ok := v.(*Mapping)
	if !ok {
		return fmt.Errorf("expected JSON object, got %s", TypeName(v))
	}
	*m = *decoded
	return nil
}
