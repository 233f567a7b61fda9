package mql

import (
	"strings"
)

// Prefix starts every canonical query text.
const Prefix = "MongoDB Query: "

const canonicalStart = Prefix + "db."

// Canonicalize returns the canonical text for a call expression:
// Prefix followed by the trimmed expression without its trailing ';'.
func Canonicalize(expr string) string {
	return Prefix + strings.TrimRight(strings.TrimSpace(expr), ";")
}

// ParseCanonical decodes canonical query text back into a Query.
func ParseCanonical(text string) (Query, error) {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, canonicalStart) {
		return Query{}, newError(KindInvalidQueryFormat, text, nil, "invalid query format: prefix missing")
	}
	return ParseQuery(s[len(Prefix):])
}
