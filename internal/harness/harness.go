package harness

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/sqlmongo/internal/ids"
	"github.com/roach88/sqlmongo/internal/literal"
	"github.com/roach88/sqlmongo/internal/mql"
	"github.com/roach88/sqlmongo/internal/session"
	"github.com/roach88/sqlmongo/internal/store"
	"github.com/roach88/sqlmongo/internal/testutil"
)

// clockStart is the wall clock of every scenario.
var clockStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Harness is the test execution engine.
// It runs scenarios against a fresh embedded store and a canned
// translator with deterministic ids and clock.
type Harness struct {
	session *session.Session
	logger  *slog.Logger
}

// unreachable reports the store as down on every probe.
type unreachable struct {
	session.Store
}

func (unreachable) Ping(ctx context.Context) error {
	return fmt.Errorf("%w: scenario store is down", store.ErrUnavailable)
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// Deterministic helpers ensure reproducible results.
//
// Execution flow:
// 1. Create fresh in-memory database and load fixtures
// 2. Register canned translator responses
// 3. Execute flow steps with expect validation
// 4. Evaluate assertions
func Run(scenario *Scenario) (*Result, error) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests

	st, err := store.Open(":memory:",
		store.WithIDGenerator(ids.NewSequenceGenerator("doc")),
		store.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	ctx := context.Background()
	if err := loadFixtures(ctx, st, scenario); err != nil {
		return nil, fmt.Errorf("failed to load fixtures: %w", err)
	}

	stub := testutil.NewStubTranslator("")
	stub.Default = testutil.Response{Stderr: "no translation registered"}
	for _, r := range scenario.Translator {
		stub.On(r.SQL, testutil.Response{Stdout: r.Stdout, Stderr: r.Stderr})
	}

	var target session.Store = st
	if scenario.StoreDown {
		target = unreachable{st}
	}

	clock := testutil.NewDeterministicClock(clockStart, time.Second)
	h := &Harness{
		session: session.New(stub, target,
			session.WithIDGenerator(ids.NewSequenceGenerator("q")),
			session.WithNow(clock.Now),
			session.WithLogger(logger),
		),
		logger: logger,
	}

	result := NewResult()
	h.executeFlow(ctx, scenario.Flow, result)

	if entry, err := h.session.Last(); err == nil {
		result.LastQuery = entry.Text
	} else if !mql.IsKind(err, mql.KindNoTranslatedQuery) {
		return nil, fmt.Errorf("failed to read last query: %w", err)
	}

	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(errMsg)
	}

	return result, nil
}

// loadFixtures seeds the store from the scenario's inline fixtures or
// fixture file.
func loadFixtures(ctx context.Context, st *store.Store, scenario *Scenario) error {
	var data []byte
	if path, ok := scenario.fixturePath(); ok {
		b, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		data = b
	} else if scenario.Fixtures.Kind == yaml.MappingNode {
		b, err := yaml.Marshal(&scenario.Fixtures)
		if err != nil {
			return err
		}
		data = b
	} else {
		return nil
	}

	_, err := store.LoadFixtures(ctx, st, bytes.NewReader(data))
	return err
}

// executeFlow runs all flow steps and validates expect clauses.
// Step failures are recorded in the trace, not returned.
func (h *Harness) executeFlow(ctx context.Context, flow []FlowStep, result *Result) {
	for i, step := range flow {
		event := h.executeStep(ctx, step)
		event.Step = i + 1
		event.Seq = h.session.Seq()
		result.AddTrace(event)

		for _, msg := range checkExpect(step.Expect, event) {
			result.AddError(fmt.Sprintf("flow[%d] %s: %s", i, step.Action, msg))
		}

		h.logger.Info("flow step completed",
			"step", event.Step,
			"action", step.Action,
			"outcome", event.Outcome,
		)
	}
}

func (h *Harness) executeStep(ctx context.Context, step FlowStep) TraceEvent {
	event := TraceEvent{Action: step.Action, Outcome: OutcomeOK}

	var err error
	switch step.Action {
	case ActionTranslate:
		event.Input = step.SQL
		var t session.Translation
		t, err = h.session.Translate(ctx, step.SQL)
		recordTranslation(&event, t)
	case ActionExecute:
		var exec session.Execution
		exec, err = h.session.Execute(ctx)
		recordExecution(&event, exec, err)
	case ActionRun:
		event.Input = step.SQL
		var t session.Translation
		var exec session.Execution
		t, exec, err = h.session.Run(ctx, step.SQL)
		recordTranslation(&event, t)
		recordExecution(&event, exec, err)
	case ActionFind:
		event.Input = step.Expr
		var exec session.Execution
		exec, err = h.session.FindText(ctx, step.Expr)
		recordExecution(&event, exec, err)
	case ActionClear:
		err = h.session.Clear()
	case ActionPing:
		err = h.session.CheckConnection(ctx)
		if err == nil {
			event.Message = session.MsgConnected
		}
	}

	if err != nil {
		event.Outcome = outcomeOf(err)
		event.Message = messageOf(err)
	}
	return event
}

func recordTranslation(event *TraceEvent, t session.Translation) {
	event.Text = t.Text
	if t.Warning != nil {
		event.Warning = string(t.Warning.Kind)
	}
}

// recordExecution keeps the translated text of a run step; other steps
// record the executed query.
func recordExecution(event *TraceEvent, exec session.Execution, err error) {
	if err != nil {
		return
	}
	if event.Text == "" {
		event.Text = mql.Prefix + mql.Format(exec.Query)
	}
	event.Documents = exec.Documents
}

// outcomeOf returns the error kind, or "ERROR" for errors outside the
// pipeline taxonomy.
func outcomeOf(err error) string {
	if kind := mql.KindOf(err); kind != "" {
		return string(kind)
	}
	return "ERROR"
}

func messageOf(err error) string {
	var e *mql.Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// checkExpect compares a step's outcome with its expect clause.
func checkExpect(expect *ExpectClause, event TraceEvent) []string {
	if expect == nil {
		return nil
	}

	var errs []string
	if event.Outcome != expect.Outcome {
		errs = append(errs, fmt.Sprintf("expected outcome %s, got %s (%s)", expect.Outcome, event.Outcome, event.Message))
	}
	if event.Warning != expect.Warning {
		errs = append(errs, fmt.Sprintf("expected warning %q, got %q", expect.Warning, event.Warning))
	}
	if expect.Text != "" && event.Text != expect.Text {
		errs = append(errs, fmt.Sprintf("expected text %q, got %q", expect.Text, event.Text))
	}
	if expect.Count != nil && len(event.Documents) != *expect.Count {
		errs = append(errs, fmt.Sprintf("expected %d documents, got %d", *expect.Count, len(event.Documents)))
	}
	if expect.First != "" {
		if msg := checkFirst(expect.First, event.Documents); msg != "" {
			errs = append(errs, msg)
		}
	}
	return errs
}

// checkFirst compares the first result document with want.
func checkFirst(want string, docs []*literal.Mapping) string {
	doc, err := literal.DecodeMapping(want)
	if err != nil {
		return fmt.Sprintf("expected first document: %v", err)
	}
	if len(docs) == 0 {
		return fmt.Sprintf("expected first document %s, got none", literal.Format(doc))
	}
	if !literal.Equal(doc, docs[0]) {
		return fmt.Sprintf("expected first document %s, got %s", literal.Format(doc), literal.Format(docs[0]))
	}
	return ""
}
