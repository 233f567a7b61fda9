package literal

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"unicode/utf16"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces canonical JSON for hashing.
//
// Differences from json.Marshal:
//  1. Mapping keys are sorted by UTF-16 code units (RFC 8785), not insertion order
//  2. No HTML escaping
//  3. Strings are NFC normalized
//  4. NaN and Inf are rejected
func MarshalCanonical(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeCanonical(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeCanonical(buf *bytes.Buffer, v Value) error {
	switch val := v.(type) {
	case nil, Null:
		buf.WriteString("null")
	case String:
		buf.WriteString(quote(norm.NFC.String(string(val))))
	case Int:
		buf.WriteString(strconv.FormatInt(int64(val), 10))
	case Float:
		s, err := formatFloat(float64(val))
		if err != nil {
			return err
		}
		buf.WriteString(s)
	case Bool:
		buf.WriteString(strconv.FormatBool(bool(val)))
	case Array:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonical(buf, elem); err != nil {
				return fmt.Errorf("array[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
	case *Mapping:
		buf.WriteByte('{')
		for i, p := range sortedPairs(val) {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(quote(p.Key))
			buf.WriteByte(':')
			if err := writeCanonical(buf, p.Value); err != nil {
				return fmt.Errorf("value for key %q: %w", p.Key, err)
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("unsupported type for canonical JSON: %T", v)
	}
	return nil
}

// sortedPairs returns m's pairs with NFC normalized keys, in key order.
func sortedPairs(m *Mapping) []Pair {
	pairs := m.Pairs()
	out := make([]Pair, len(pairs))
	for i, p := range pairs {
		out[i] = Pair{Key: norm.NFC.String(p.Key), Value: p.Value}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return compareKeysRFC8785(out[i].Key, out[j].Key) < 0
	})
	return out
}

// compareKeysRFC8785 compares strings by UTF-16 code units.
func compareKeysRFC8785(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	for i := 0; i < len(a16) && i < len(b16); i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	}
	return 0
}
