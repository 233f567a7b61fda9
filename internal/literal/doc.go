// Package literal implements the value model and the lenient literal grammar
// used for find() argument text.
//
// A Value is one of Null, String, Int, Float, Bool, Array or *Mapping. Value is
// a sealed interface: only types in this package implement it, so callers can
// write exhaustive type switches.
//
// The grammar accepts JSON, Python-style literals (single quotes, True/False,
// None) and the unquoted string values some translators emit:
//
//	{"age": {"$gt": 20}}
//	{'name': 'Alice'}
//	{name: Alice, active: true}
//
// Nested mappings are parsed structurally with depth tracking, so a brace
// inside a quoted string never opens a mapping. Tokens that are empty or carry
// unbalanced delimiters are rejected with a *SyntaxError rather than being
// turned into strings.
//
// Mapping preserves insertion order. Rendering, projection and the canonical
// call text all depend on that order.
package literal
