package literal

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Format returns the canonical literal text of v.
// Strings are double-quoted byte for byte, mappings keep insertion order.
// The output decodes back to an equal value with Decode.
func Format(v Value) string {
	var b strings.Builder
	writeLiteral(&b, v)
	return b.String()
}

func writeLiteral(b *strings.Builder, v Value) {
	switch val := v.(type) {
	case nil, Null:
		b.WriteString("null")
	case String:
		b.WriteString(quote(string(val)))
	case Int:
		b.WriteString(strconv.FormatInt(int64(val), 10))
	case Float:
		s, err := formatFloat(float64(val))
		if err != nil {
			// NaN and Inf have no literal form; emit Go's spelling.
			s = strconv.FormatFloat(float64(val), 'g', -1, 64)
		}
		b.WriteString(s)
	case Bool:
		b.WriteString(strconv.FormatBool(bool(val)))
	case Array:
		b.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				b.WriteString(", ")
			}
			writeLiteral(b, elem)
		}
		b.WriteByte(']')
	case *Mapping:
		b.WriteByte('{')
		for i, p := range val.Pairs() {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(quote(p.Key))
			b.WriteString(": ")
			writeLiteral(b, p.Value)
		}
		b.WriteByte('}')
	}
}

// quote renders s as a double-quoted string. Only the quote, the backslash and control characters are escaped;
// <, >, & and U+2028/U+2029 are written as-is.
func quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case r == '"':
			b.WriteString(`\"`)
		case r == '\\':
			b.WriteString(`\\`)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		case r == '\b':
			b.WriteString(`\b`)
		case r == '\f':
			b.WriteString(`\f`)
		case r < 0x20:
			b.WriteString(`\u00`)
			b.WriteByte(hexDigits[r>>4])
			b.WriteByte(hexDigits[r&0xF])
		case r == utf8.RuneError && size == 1:
			b.WriteRune(utf8.RuneError)
		default:
			b.WriteString(s[i : i+size])
		}
		i += size
	}
	b.WriteByte('"')
	return b.String()
}

const hexDigits = "0123456789abcdef"
