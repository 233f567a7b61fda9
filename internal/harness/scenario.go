package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/sqlmongo/internal/literal"
	"github.com/roach88/sqlmongo/internal/mql"
)

// Scenario defines a conformance scenario: documents in the store, canned
// translator responses, a flow of user actions and assertions on the
// resulting trace.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Fixtures seeds the embedded store before the flow. Either an inline
	// mapping of collection names to document lists, or the path of a
	// fixture file relative to the scenario file.
	Fixtures yaml.Node `yaml:"fixtures,omitempty"`

	// Translator lists canned translator responses keyed by SQL text.
	// SQL with no response fails as a translator error.
	Translator []TranslatorResponse `yaml:"translator,omitempty"`

	// StoreDown makes every liveness probe fail.
	StoreDown bool `yaml:"store_down,omitempty"`

	// Flow contains the user actions, run in order.
	Flow []FlowStep `yaml:"flow"`

	// Assertions validate the final trace and last-query slot.
	// Supported types: trace_contains, trace_order, trace_count, last_query
	Assertions []Assertion `yaml:"assertions"`

	// baseDir resolves a fixture file path.
	baseDir string
}

// TranslatorResponse is what the translator prints for one SQL statement.
type TranslatorResponse struct {
	SQL    string `yaml:"sql"`
	Stdout string `yaml:"stdout,omitempty"`
	Stderr string `yaml:"stderr,omitempty"`
}

// FlowStep is one user action.
type FlowStep struct {
	// Action is one of translate, execute, run, find, clear, ping.
	Action string `yaml:"action"`

	// SQL is the input of translate and run.
	SQL string `yaml:"sql,omitempty"`

	// Expr is the call expression of find.
	Expr string `yaml:"expr,omitempty"`

	// Expect validates the outcome. If nil, any outcome is accepted.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected outcome of a step.
type ExpectClause struct {
	// Outcome is "ok" or an error kind such as STORE_UNAVAILABLE.
	Outcome string `yaml:"outcome"`

	// Warning is the expected non-fatal warning kind, if any.
	Warning string `yaml:"warning,omitempty"`

	// Text is the expected canonical query text (translate, run).
	Text string `yaml:"text,omitempty"`

	// Count is the expected number of documents (execute, run, find).
	Count *int `yaml:"count,omitempty"`

	// First is the expected first document in literal syntax; key order
	// is ignored (execute, run, find).
	First string `yaml:"first,omitempty"`
}

// Assertion validates the trace or the final last-query slot.
type Assertion struct {
	// Type specifies the assertion type:
	// - "trace_contains": Check action appears in trace, optionally with an outcome
	// - "trace_order": Check actions appear in order
	// - "trace_count": Check action appears exactly N times
	// - "last_query": Check the cached query text, or that none is cached
	Type string `yaml:"type"`

	// Action is the action name (used by trace_contains, trace_count).
	Action string `yaml:"action,omitempty"`

	// Outcome narrows trace_contains to steps with this outcome.
	Outcome string `yaml:"outcome,omitempty"`

	// Count is the expected number of occurrences (used by trace_count).
	Count int `yaml:"count,omitempty"`

	// Actions is the expected action order (used by trace_order).
	Actions []string `yaml:"actions,omitempty"`

	// Text is the expected cached query text (used by last_query).
	Text string `yaml:"text,omitempty"`

	// Empty asserts that no query is cached (used by last_query).
	Empty bool `yaml:"empty,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertLastQuery     = "last_query"
)

// Flow actions.
const (
	ActionTranslate = "translate"
	ActionExecute   = "execute"
	ActionRun       = "run"
	ActionFind      = "find"
	ActionClear     = "clear"
	ActionPing      = "ping"
)

// OutcomeOK is the outcome of a step that did not fail.
const OutcomeOK = "ok"

var knownActions = map[string]bool{
	ActionTranslate: true,
	ActionExecute:   true,
	ActionRun:       true,
	ActionFind:      true,
	ActionClear:     true,
	ActionPing:      true,
}

var knownOutcomes = map[string]bool{
	OutcomeOK:                                true,
	string(mql.KindTranslatorFailure):       true,
	string(mql.KindTranslatorTimeout):       true,
	string(mql.KindMalformedArguments):      true,
	string(mql.KindInvalidQueryFormat):      true,
	string(mql.KindMalformedQueryStructure): true,
	string(mql.KindStoreUnavailable):        true,
	string(mql.KindNoTranslatedQuery):       true,
	string(mql.KindEmptyInput):              true,
	string(mql.KindQueryFailed):             true,
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// A fixture file path is resolved relative to the scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}
	scenario.baseDir = filepath.Dir(path)
	return scenario, nil
}

// ParseScenario parses and validates scenario YAML. A fixture file path is
// resolved against the working directory.
func ParseScenario(data []byte) (*Scenario, error) {
	// Reject unknown fields (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// fixturePath returns the fixture file path when Fixtures is a scalar.
func (s *Scenario) fixturePath() (string, bool) {
	if s.Fixtures.Kind != yaml.ScalarNode {
		return "", false
	}
	path := s.Fixtures.Value
	if !filepath.IsAbs(path) && s.baseDir != "" {
		path = filepath.Join(s.baseDir, path)
	}
	return path, true
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	switch s.Fixtures.Kind {
	case 0, yaml.ScalarNode, yaml.MappingNode:
	default:
		return fmt.Errorf("fixtures must be a mapping of collections or a file path")
	}

	seen := make(map[string]bool, len(s.Translator))
	for i, r := range s.Translator {
		if r.SQL == "" {
			return fmt.Errorf("translator[%d]: sql is required", i)
		}
		if seen[r.SQL] {
			return fmt.Errorf("translator[%d]: duplicate sql %q", i, r.SQL)
		}
		seen[r.SQL] = true
	}

	for i, step := range s.Flow {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(index int, step *FlowStep) error {
	if !knownActions[step.Action] {
		return fmt.Errorf("flow[%d]: unknown action %q", index, step.Action)
	}
	if step.Action == ActionFind && step.Expr == "" {
		return fmt.Errorf("flow[%d]: expr is required for find", index)
	}
	if step.Expect == nil {
		return nil
	}
	if step.Expect.Outcome == "" {
		return fmt.Errorf("flow[%d].expect: outcome is required", index)
	}
	if !knownOutcomes[step.Expect.Outcome] {
		return fmt.Errorf("flow[%d].expect: unknown outcome %q", index, step.Expect.Outcome)
	}
	if step.Expect.Count != nil && *step.Expect.Count < 0 {
		return fmt.Errorf("flow[%d].expect: count must be non-negative", index)
	}
	if step.Expect.First != "" {
		if _, err := literal.DecodeMapping(step.Expect.First); err != nil {
			return fmt.Errorf("flow[%d].expect: first: %w", index, err)
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceContains:
		if a.Action == "" {
			return fmt.Errorf("assertions[%d]: action is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Actions) == 0 {
			return fmt.Errorf("assertions[%d]: actions list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Action == "" {
			return fmt.Errorf("assertions[%d]: action is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertLastQuery:
		if a.Empty == (a.Text != "") {
			return fmt.Errorf("assertions[%d]: last_query needs exactly one of text or empty", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
