package testutil

import (
	"context"
	"strings"
	"sync"

	"github.com/roach88/sqlmongo/internal/mql"
)

// StubTranslator answers Translate from a table instead of running a process.
//
// Lookups use the trimmed SQL. Unknown SQL gets Default. Stderr, when set
// on a response, produces the same error a real translator run would.
type StubTranslator struct {
	Responses map[string]Response
	Default   Response

	mu    sync.Mutex
	calls []string
}

// Response is one canned translator result.
type Response struct {
	Stdout string
	Stderr string
	Err    error
}

// NewStubTranslator creates a stub answering every SQL with stdout.
func NewStubTranslator(stdout string) *StubTranslator {
	return &StubTranslator{Default: Response{Stdout: stdout}}
}

// On registers a response for sql and returns the stub for chaining.
func (s *StubTranslator) On(sql string, resp Response) *StubTranslator {
	if s.Responses == nil {
		s.Responses = make(map[string]Response)
	}
	s.Responses[strings.TrimSpace(sql)] = resp
	return s
}

// Translate implements translator.Translator.
func (s *StubTranslator) Translate(ctx context.Context, sql string) (string, error) {
	s.mu.Lock()
	s.calls = append(s.calls, sql)
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", &mql.Error{Kind: mql.KindTranslatorTimeout, Message: "translator timed out", Err: err}
	}

	resp, ok := s.Responses[strings.TrimSpace(sql)]
	if !ok {
		resp = s.Default
	}
	if resp.Err != nil {
		return "", resp.Err
	}
	if resp.Stderr != "" {
		return "", &mql.Error{
			Kind:    mql.KindTranslatorFailure,
			Message: "Parser Error:\n" + resp.Stderr,
			Text:    resp.Stderr,
		}
	}
	return resp.Stdout, nil
}

// Calls returns the SQL passed to Translate, in order.
func (s *StubTranslator) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.calls))
	copy(out, s.calls)
	return out
}
