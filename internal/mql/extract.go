package mql

import (
	"regexp"
	"strings"
)

var callStart = regexp.MustCompile(`[A-Za-z_$][A-Za-z0-9_$]*(?:\.[A-Za-z_$][A-Za-z0-9_$]*)+\.find\s*\(`)

// Extract returns the first <receiver>.<collection>.find(...) call in text
// whose parenthesis is balanced. A candidate without a matching ')' is skipped.
// The collection may be dotted; the match starts at the leftmost identifier
// of the chain.
//
// When no call is found, Extract returns the trimmed text and ok=false; the
// caller should treat the result as best-effort.
func Extract(text string) (expr string, ok bool) {
	for _, loc := range callStart.FindAllStringIndex(text, -1) {
		open := loc[1] - 1
		if end := matchParen(text, open); end >= 0 {
			return text[loc[0] : end+1], true
		}
	}
	return strings.TrimSpace(text), false
}
