package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/sqlmongo/internal/session"
)

// translationData is the JSON payload of a translation.
type translationData struct {
	ID         string `json:"id"`
	SQL        string `json:"sql"`
	Raw        string `json:"raw"`
	Expression string `json:"expression"`
	Text       string `json:"text"`
	Warning    string `json:"warning,omitempty"`
}

func newTranslationData(t session.Translation) translationData {
	data := translationData{
		ID:         t.ID,
		SQL:        t.SQL,
		Raw:        t.Raw,
		Expression: t.Expression,
		Text:       t.Text,
	}
	if t.Warning != nil {
		data.Warning = t.Warning.Message
	}
	return data
}

// NewTranslateCommand creates the translate command.
func NewTranslateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "translate [sql | -]",
		Short: "Translate SQL into a MongoDB query",
		Long: `Send SQL to the translator and cache the resulting query as the last
query for a later execute.

SQL is taken from the arguments, or from stdin when none are given or
the only argument is "-".

Exit codes:
  0 - Translated (possibly with a warning)
  1 - Translator failed or input was empty
  2 - Command error (bad config, unreadable input)

Examples:
  sqlmongo translate "SELECT name FROM students WHERE age > 20"
  echo "SELECT * FROM courses" | sqlmongo translate -
  sqlmongo translate --format json "SELECT * FROM students"`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(rootOpts, cmd, args)
		},
	}
	return cmd
}

func runTranslate(opts *RootOptions, cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	formatter := newFormatter(opts, cmd)

	sql, err := readInput(cmd, args)
	if err != nil {
		return formatter.CommandError(ErrCodeInput, "failed to read SQL", err)
	}

	env, err := openEnvironment(ctx, opts, formatter, true)
	if err != nil {
		return err
	}
	defer env.Close()

	t, err := env.session.Translate(ctx, sql)
	if err != nil {
		return formatter.Fail(err)
	}

	if formatter.Format == "json" {
		return formatter.Success(newTranslationData(t))
	}
	writeTranslationText(formatter, t)
	return nil
}

func writeTranslationText(formatter *OutputFormatter, t session.Translation) {
	if t.Warning != nil {
		formatter.Warn(t.Warning.Message)
	}
	fmt.Fprintln(formatter.Writer, t.Text)
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [sql | -]",
		Short: "Translate SQL and execute the result",
		Long: `Translate SQL, cache the query, and execute it immediately.

Exit codes:
  0 - Executed
  1 - Translation or execution failed
  2 - Command error (bad config, unreadable input)

Examples:
  sqlmongo run "SELECT * FROM students WHERE major = 'CS'"
  sqlmongo run --format yaml "SELECT name FROM students"`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(rootOpts, cmd, args)
		},
	}
	return cmd
}

func runRun(opts *RootOptions, cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	formatter := newFormatter(opts, cmd)

	sql, err := readInput(cmd, args)
	if err != nil {
		return formatter.CommandError(ErrCodeInput, "failed to read SQL", err)
	}

	env, err := openEnvironment(ctx, opts, formatter, true)
	if err != nil {
		return err
	}
	defer env.Close()

	t, exec, err := env.session.Run(ctx, sql)
	translated := t.ID != ""
	if translated && formatter.Format == "text" {
		writeTranslationText(formatter, t)
	}
	if err != nil {
		return formatter.Fail(err)
	}

	data := map[string]any{
		"translation": newTranslationData(t),
		"execution":   newExecutionData(exec),
	}
	return formatter.Documents(exec.Documents, data)
}

// readSQL returns the SQL from args, or from stdin when args is empty or
// a single "-".
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 && !(len(args) == 1 && args[0] == "-") {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", err
	}
	return string(data), nil
}
