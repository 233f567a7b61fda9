package harness

import (
	"github.com/roach88/sqlmongo/internal/literal"
)

// TraceEvent records one flow step and its outcome.
type TraceEvent struct {
	// Step is the 1-based position in the flow.
	Step int `json:"step"`

	// Seq is the session sequence number after the step.
	Seq int64 `json:"seq"`

	Action string `json:"action"`

	// Input is the SQL or call expression, if the action takes one.
	Input string `json:"input,omitempty"`

	// Outcome is OutcomeOK or the error kind.
	Outcome string `json:"outcome"`

	// Message is the error or status message.
	Message string `json:"message,omitempty"`

	// Warning is the non-fatal warning kind, if any.
	Warning string `json:"warning,omitempty"`

	// Text is the canonical query text produced or executed.
	Text string `json:"text,omitempty"`

	// Documents is the result set of execute, run and find.
	Documents []*literal.Mapping `json:"documents,omitempty"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if all expect clauses and assertions match.
	Pass bool `json:"pass"`

	// Trace contains one event per flow step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// LastQuery is the cached query text after the flow, empty if none.
	LastQuery string `json:"last_query,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends an event to the trace.
func (r *Result) AddTrace(event TraceEvent) {
	r.Trace = append(r.Trace, event)
}
