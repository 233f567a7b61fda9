package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/sqlmongo/internal/literal"
	"github.com/roach88/sqlmongo/internal/mql"
	"github.com/roach88/sqlmongo/internal/session"
)

// parseData is the JSON payload of the parse command.
type parseData struct {
	Collection  string           `json:"collection"`
	Filter      *literal.Mapping `json:"filter"`
	Projection  *literal.Mapping `json:"projection"`
	Text        string           `json:"text"`
	Fingerprint string           `json:"fingerprint"`
	Warning     string           `json:"warning,omitempty"`
}

// NewParseCommand creates the parse command.
func NewParseCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse [text | -]",
		Short: "Parse a query without executing it",
		Long: `Parse canonical query text ("MongoDB Query: db.c.find(...)") or raw
translator output and print the normalized query. Nothing is executed and
no store or translator is needed.

Raw output is searched for the first db.<collection>.find(...) call;
when none is found the whole text is parsed and a warning is printed.

Examples:
  sqlmongo parse "MongoDB Query: db.students.find({'age': 22})"
  ./translator < query.sql | sqlmongo parse -`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(rootOpts, cmd, args)
		},
	}
	return cmd
}

func runParse(opts *RootOptions, cmd *cobra.Command, args []string) error {
	formatter := newFormatter(opts, cmd)

	text, err := readInput(cmd, args)
	if err != nil {
		return formatter.CommandError(ErrCodeInput, "failed to read input", err)
	}

	var q mql.Query
	var warning string
	if strings.HasPrefix(strings.TrimSpace(text), strings.TrimSpace(mql.Prefix)) {
		q, err = mql.ParseCanonical(text)
	} else {
		expr, ok := mql.Extract(text)
		if !ok {
			warning = session.MsgExtractionWarning
		}
		q, err = mql.ParseQuery(expr)
	}
	if err != nil {
		if warning != "" {
			formatter.Warn(warning)
		}
		return formatter.Fail(err)
	}

	fp, err := q.Fingerprint()
	if err != nil {
		return formatter.Fail(err)
	}

	if formatter.Format == "json" {
		return formatter.Success(parseData{
			Collection:  q.Collection,
			Filter:      q.Filter,
			Projection:  q.Projection,
			Text:        mql.Format(q),
			Fingerprint: fp,
			Warning:     warning,
		})
	}

	if warning != "" {
		formatter.Warn(warning)
	}
	fmt.Fprintln(formatter.Writer, mql.Format(q))
	return nil
}
