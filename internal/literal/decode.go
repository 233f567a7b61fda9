package literal

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"
)

// maxDepth bounds mapping/array nesting.
const maxDepth = 64

var (
	intToken   = regexp.MustCompile(`^[-+]?\d+$`)
	floatToken = regexp.MustCompile(`^[-+]?(\d+\.\d*|\.\d+|\d+)([eE][-+]?\d+)?$`)
)

// SyntaxError describes a literal that could not be decoded.
type SyntaxError struct {
	Offset int    // byte offset into the decoded text
	Msg    string // description of the problem
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("offset %d: %s", e.Offset, e.Msg)
}

// Decode decodes exactly one value from text.
// Text after the value (other than whitespace) is an error.
func Decode(text string) (Value, error) {
	p := &parser{src: text}
	v, err := p.value("", 0)
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if !p.eof() {
		return nil, p.errorf("unexpected %q after value", p.peek())
	}
	return v, nil
}

// DecodeMapping decodes text that must hold a single mapping literal.
func DecodeMapping(text string) (*Mapping, error) {
	v, err := Decode(text)
	if err != nil {
		return nil, err
	}
	m, ok := v.(*Mapping)
	if !ok {
		return nil, &SyntaxError{Offset: 0, Msg: fmt.Sprintf("expected mapping, got %s", TypeName(v))}
	}
	return m, nil
}

// ParseList decodes a comma-separated list of values at the top level of text.
// Commas nested inside mappings, arrays or strings do not split the list.
// Whitespace-only text yields an empty list. A comma after the last value is
// an error, unlike inside mappings and arrays.
func ParseList(text string) ([]Value, error) {
	p := &parser{src: text}
	p.skipSpace()
	if p.eof() {
		return nil, nil
	}

	var out []Value
	for {
		v, err := p.value(",", 0)
		if err != nil {
			return nil, err
		}
		out = append(out, v)

		p.skipSpace()
		if p.eof() {
			return out, nil
		}
		if !p.consume(',') {
			return nil, p.errorf("expected ',' between values, found %q", p.peek())
		}
		p.skipSpace()
		if p.eof() {
			return nil, p.errorf("trailing ',' after last value")
		}
	}
}

// parser is a recursive-descent scanner over the literal grammar.
type parser struct {
	src string
	pos int
}

func (p *parser) eof() bool {
	return p.pos >= len(p.src)
}

func (p *parser) peek() byte {
	return p.src[p.pos]
}

func (p *parser) consume(c byte) bool {
	if !p.eof() && p.src[p.pos] == c {
		p.pos++
		return true
	}
	return false
}

func (p *parser) skipSpace() {
	for !p.eof() {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) errorf(format string, args ...any) *SyntaxError {
	return &SyntaxError{Offset: p.pos, Msg: fmt.Sprintf(format, args...)}
}

// value decodes one value. stop lists the bytes that end a bare token in
// the enclosing context.
func (p *parser) value(stop string, depth int) (Value, error) {
	if depth > maxDepth {
		return nil, p.errorf("nesting deeper than %d levels", maxDepth)
	}
	p.skipSpace()
	if p.eof() {
		return nil, p.errorf("missing value")
	}

	switch p.peek() {
	case '{':
		return p.mapping(depth)
	case '[':
		return p.array(depth)
	case '"', '\'':
		s, err := p.quoted()
		if err != nil {
			return nil, err
		}
		return String(s), nil
	}
	return p.bare(stop)
}

func (p *parser) mapping(depth int) (*Mapping, error) {
	start := p.pos
	p.pos++ // '{'
	m := NewMapping()

	p.skipSpace()
	if p.consume('}') {
		return m, nil
	}

	for {
		key, err := p.key()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if !p.consume(':') {
			if p.eof() {
				return nil, &SyntaxError{Offset: start, Msg: "unclosed '{'"}
			}
			return nil, p.errorf("expected ':' after key %q", key)
		}

		v, err := p.value(",}", depth+1)
		if err != nil {
			return nil, err
		}
		m.Set(key, v)

		p.skipSpace()
		switch {
		case p.consume(','):
			p.skipSpace()
			if p.consume('}') {
				return m, nil
			}
		case p.consume('}'):
			return m, nil
		case p.eof():
			return nil, &SyntaxError{Offset: start, Msg: "unclosed '{'"}
		default:
			return nil, p.errorf("expected ',' or '}' in mapping, found %q", p.peek())
		}
	}
}

func (p *parser) key() (string, error) {
	p.skipSpace()
	if p.eof() {
		return "", p.errorf("missing key")
	}
	if c := p.peek(); c == '"' || c == '\'' {
		return p.quoted()
	}

	start := p.pos
	for !p.eof() && !strings.ContainsRune(":,{}[]()\"'", rune(p.peek())) {
		p.pos++
	}
	key := strings.TrimSpace(p.src[start:p.pos])
	if key == "" {
		return "", &SyntaxError{Offset: start, Msg: "empty key"}
	}
	return key, nil
}

func (p *parser) array(depth int) (Array, error) {
	start := p.pos
	p.pos++ // '['
	arr := Array{}

	p.skipSpace()
	if p.consume(']') {
		return arr, nil
	}

	for {
		v, err := p.value(",]", depth+1)
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)

		p.skipSpace()
		switch {
		case p.consume(','):
			p.skipSpace()
			if p.consume(']') {
				return arr, nil
			}
		case p.consume(']'):
			return arr, nil
		case p.eof():
			return nil, &SyntaxError{Offset: start, Msg: "unclosed '['"}
		default:
			return nil, p.errorf("expected ',' or ']' in array, found %q", p.peek())
		}
	}
}

// quoted decodes a single- or double-quoted string starting at p.pos.
func (p *parser) quoted() (string, error) {
	start := p.pos
	q := p.src[p.pos]
	p.pos++

	var b strings.Builder
	for {
		if p.eof() {
			return "", &SyntaxError{Offset: start, Msg: "unterminated string"}
		}
		c := p.src[p.pos]
		switch {
		case c == q:
			p.pos++
			return b.String(), nil
		case c == '\\':
			if err := p.escape(&b, start); err != nil {
				return "", err
			}
		default:
			b.WriteByte(c)
			p.pos++
		}
	}
}

func (p *parser) escape(b *strings.Builder, start int) error {
	p.pos++ // '\'
	if p.eof() {
		return &SyntaxError{Offset: start, Msg: "unterminated string"}
	}
	c := p.src[p.pos]
	p.pos++

	switch c {
	case 'n':
		b.WriteByte('\n')
	case 't':
		b.WriteByte('\t')
	case 'r':
		b.WriteByte('\r')
	case 'b':
		b.WriteByte('\b')
	case 'f':
		b.WriteByte('\f')
	case '/', '\\', '\'', '"':
		b.WriteByte(c)
	case 'u':
		r, err := p.hex4()
		if err != nil {
			return err
		}
		if utf16.IsSurrogate(r) && strings.HasPrefix(p.src[p.pos:], `\u`) {
			save := p.pos
			p.pos += 2
			low, err := p.hex4()
			if err == nil {
				if combined := utf16.DecodeRune(r, low); combined != unicode.ReplacementChar {
					b.WriteRune(combined)
					return nil
				}
			}
			p.pos = save
		}
		b.WriteRune(r)
	default:
		// Unknown escapes are kept verbatim.
		b.WriteByte('\\')
		b.WriteByte(c)
	}
	return nil
}

func (p *parser) hex4() (rune, error) {
	if p.pos+4 > len(p.src) {
		return 0, p.errorf("truncated \\u escape")
	}
	n, err := strconv.ParseUint(p.src[p.pos:p.pos+4], 16, 32)
	if err != nil {
		return 0, p.errorf("invalid \\u escape %q", p.src[p.pos:p.pos+4])
	}
	p.pos += 4
	return rune(n), nil
}

// bare reads an unquoted token up to the next stop byte and classifies it.
func (p *parser) bare(stop string) (Value, error) {
	start := p.pos
	for !p.eof() && !strings.ContainsRune(stop, rune(p.peek())) {
		p.pos++
	}
	tok := strings.TrimSpace(p.src[start:p.pos])
	if tok == "" {
		return nil, &SyntaxError{Offset: start, Msg: "empty value"}
	}
	return classify(tok, start)
}

// classify decodes a bare token into a number, boolean, null or implicit string.
func classify(tok string, offset int) (Value, error) {
	switch tok {
	case "true", "True":
		return Bool(true), nil
	case "false", "False":
		return Bool(false), nil
	case "null", "None":
		return Null{}, nil
	}

	if intToken.MatchString(tok) {
		if n, err := strconv.ParseInt(tok, 10, 64); err == nil {
			return Int(n), nil
		}
		// Out of int64 range: fall through to float.
	}
	if floatToken.MatchString(tok) {
		f, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, &SyntaxError{Offset: offset, Msg: fmt.Sprintf("invalid number %q", tok)}
		}
		return Float(f), nil
	}

	if i := strings.IndexAny(tok, "{}[]():"); i >= 0 {
		return nil, &SyntaxError{Offset: offset + i, Msg: fmt.Sprintf("unexpected %q in bare value %q", tok[i], tok)}
	}

	s := strings.TrimRight(tok, `"'`)
	if i := strings.IndexAny(s, `"'`); i >= 0 {
		return nil, &SyntaxError{Offset: offset + i, Msg: fmt.Sprintf("unexpected quote in bare value %q", tok)}
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, &SyntaxError{Offset: offset, Msg: fmt.Sprintf("empty value %q", tok)}
	}
	return String(s), nil
}
