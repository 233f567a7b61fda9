package harness

import (
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/sqlmongo/internal/literal"
)

// Transcript renders a result as the text stored in golden files: one block
// per flow step, documents one per line in result order, then the final
// last-query slot.
//
//	scenario: filter_by_age
//	[1] translate SELECT name FROM students WHERE age > 20
//	    outcome: ok
//	    text: MongoDB Query: db.students.find({"age": {"$gt": 20}}, {"name": 1})
//	[2] execute
//	    outcome: ok
//	    text: MongoDB Query: db.students.find({"age": {"$gt": 20}}, {"name": 1, "_id": 0})
//	    documents: 1
//	      {"name": "Alice"}
//	last_query: MongoDB Query: db.students.find({"age": {"$gt": 20}}, {"name": 1})
func Transcript(scenarioName string, result *Result) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "scenario: %s\n", scenarioName)
	for _, event := range result.Trace {
		fmt.Fprintf(&b, "[%d] %s", event.Step, event.Action)
		if event.Input != "" {
			b.WriteString(" " + oneLine(event.Input))
		}
		b.WriteByte('\n')

		fmt.Fprintf(&b, "    outcome: %s\n", event.Outcome)
		if event.Message != "" {
			fmt.Fprintf(&b, "    message: %s\n", oneLine(event.Message))
		}
		if event.Warning != "" {
			fmt.Fprintf(&b, "    warning: %s\n", event.Warning)
		}
		if event.Text != "" {
			fmt.Fprintf(&b, "    text: %s\n", oneLine(event.Text))
		}
		if returnsDocuments(event) {
			fmt.Fprintf(&b, "    documents: %d\n", len(event.Documents))
			for _, doc := range event.Documents {
				fmt.Fprintf(&b, "      %s\n", literal.Format(doc))
			}
		}
	}

	last := result.LastQuery
	if last == "" {
		last = "(none)"
	}
	fmt.Fprintf(&b, "last_query: %s\n", oneLine(last))
	return []byte(b.String())
}

func returnsDocuments(event TraceEvent) bool {
	if event.Outcome != OutcomeOK {
		return false
	}
	switch event.Action {
	case ActionExecute, ActionRun, ActionFind:
		return true
	}
	return false
}

// oneLine quotes s when it spans lines, so every field stays on one line.
func oneLine(s string) string {
	if strings.ContainsAny(s, "\r\n") {
		return strconv.Quote(s)
	}
	return s
}

// RunWithGolden executes a scenario and compares its transcript against a
// golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the transcript doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	AssertGolden(t, scenario.Name, result)
	return result, nil
}

// AssertGolden compares the given result's transcript against a golden
// file without re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, Transcript(scenarioName, result))
}
