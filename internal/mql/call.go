package mql

import (
	"strings"
)

// CallExpression is a call expression split into its parts.
type CallExpression struct {
	Receiver     string // "db"
	Collection   string
	Method       string // "find"
	ArgumentText string // text strictly between the parentheses
}

// ParseCall splits expr into receiver, collection, method and argument text.
// A trailing ';' is ignored. Collection names may themselves contain dots.
func ParseCall(expr string) (CallExpression, error) {
	s := strings.TrimSpace(expr)
	s = strings.TrimSpace(strings.TrimSuffix(s, ";"))

	open := strings.IndexByte(s, '(')
	if open < 0 {
		return CallExpression{}, newError(KindMalformedQueryStructure, expr, nil, "could not find arguments: missing '('")
	}
	end := matchParen(s, open)
	if end < 0 {
		return CallExpression{}, newError(KindMalformedQueryStructure, expr, nil, "could not find arguments: no matching ')'")
	}
	if rest := strings.TrimSpace(s[end+1:]); rest != "" {
		return CallExpression{}, newError(KindMalformedQueryStructure, expr, nil, "unexpected %q after call", rest)
	}

	segments := strings.Split(s[:open], ".")
	if len(segments) < 3 {
		return CallExpression{}, newError(KindMalformedQueryStructure, expr, nil, "malformed query structure: expected <db>.<collection>.<method>")
	}
	for i, seg := range segments {
		segments[i] = strings.TrimSpace(seg)
		if segments[i] == "" {
			return CallExpression{}, newError(KindMalformedQueryStructure, expr, nil, "malformed query structure: empty name segment")
		}
	}

	last := len(segments) - 1
	return CallExpression{
		Receiver:     segments[0],
		Collection:   strings.Join(segments[1:last], "."),
		Method:       segments[last],
		ArgumentText: s[open+1 : end],
	}, nil
}
