package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/sqlmongo/internal/literal"
	"github.com/roach88/sqlmongo/internal/mql"
	"github.com/roach88/sqlmongo/internal/session"
)

// executionData is the JSON payload of an execution.
type executionData struct {
	QueryID     string             `json:"query_id,omitempty"`
	Query       mql.Query          `json:"query"`
	Text        string             `json:"text"`
	Fingerprint string             `json:"fingerprint"`
	Count       int                `json:"count"`
	Documents   []*literal.Mapping `json:"documents"`
}

func newExecutionData(exec session.Execution) executionData {
	docs := exec.Documents
	if docs == nil {
		docs = []*literal.Mapping{}
	}
	return executionData{
		QueryID:     exec.QueryID,
		Query:       exec.Query,
		Text:        mql.Format(exec.Query),
		Fingerprint: exec.Fingerprint,
		Count:       len(docs),
		Documents:   docs,
	}
}

// NewExecuteCommand creates the execute command.
func NewExecuteCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "execute",
		Short: "Execute the last translated query",
		Long: `Execute the query cached by the last translate or run.

The document store is probed first; when it is unreachable nothing is
executed.

Exit codes:
  0 - Executed (including an empty result)
  1 - No translated query, malformed query, store unavailable or query failed
  2 - Command error (bad config)

Examples:
  sqlmongo execute
  sqlmongo execute --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExecute(rootOpts, cmd)
		},
	}
	return cmd
}

func runExecute(opts *RootOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	formatter := newFormatter(opts, cmd)

	env, err := openEnvironment(ctx, opts, formatter, true)
	if err != nil {
		return err
	}
	defer env.Close()

	exec, err := env.session.Execute(ctx)
	if err != nil {
		return formatter.Fail(err)
	}
	return formatter.Documents(exec.Documents, newExecutionData(exec))
}

// NewFindCommand creates the find command.
func NewFindCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "find <call-expression>",
		Short: "Execute a find call expression directly",
		Long: `Execute a db.<collection>.find(<filter>[, <projection>]) expression
without the translator. The cached last query is not changed.

Examples:
  sqlmongo find "db.students.find({'age': {'$gte': 21}}, {'name': 1})"
  sqlmongo find 'db.courses.find({})'`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFind(rootOpts, cmd, strings.Join(args, " "))
		},
	}
	return cmd
}

func runFind(opts *RootOptions, cmd *cobra.Command, expr string) error {
	ctx := cmd.Context()
	formatter := newFormatter(opts, cmd)

	env, err := openEnvironment(ctx, opts, formatter, false)
	if err != nil {
		return err
	}
	defer env.Close()

	exec, err := env.session.FindText(ctx, expr)
	if err != nil {
		return formatter.Fail(err)
	}
	return formatter.Documents(exec.Documents, newExecutionData(exec))
}
