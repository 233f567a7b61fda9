package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/sqlmongo/internal/session"
)

const shellPrompt = "sqlmongo> "

const shellHelp = `Commands:
  <sql>               translate SQL (same as .translate)
  .translate <sql>    translate SQL and keep it as the last query
  .execute            execute the last query
  .run <sql>          translate and execute
  .find <expr>        execute a db.<collection>.find(...) expression
  .last               show the last query
  .clear              forget the last query
  .ping               check the document store
  .help               show this help
  .exit               leave the shell`

// maxShellLine bounds one input line.
const maxShellLine = 1 << 20

// NewShellCommand creates the shell command.
func NewShellCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Interactive translate/execute loop",
		Long: `Read SQL and dot-commands line by line. The last query lives in
memory for the length of the shell and is not written to the state file.

Type .help inside the shell for the command list.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)
			env, err := openEnvironment(cmd.Context(), rootOpts, formatter, false)
			if err != nil {
				return err
			}
			defer env.Close()

			sh := &shell{session: env.session, formatter: formatter}
			return sh.run(cmd.Context(), cmd.InOrStdin())
		},
	}
	return cmd
}

// shell dispatches input lines to session actions. Failures are reported
// and the loop continues.
type shell struct {
	session   *session.Session
	formatter *OutputFormatter
}

func (s *shell) run(ctx context.Context, in io.Reader) error {
	out := s.formatter.Writer
	if s.formatter.Format == "text" {
		fmt.Fprintln(out, "sqlmongo shell. Type .help for commands.")
	}

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxShellLine)

	fmt.Fprint(out, shellPrompt)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" && s.dispatch(ctx, line) {
			return nil
		}
		fmt.Fprint(out, shellPrompt)
	}
	fmt.Fprintln(out)

	if err := scanner.Err(); err != nil {
		return s.formatter.CommandError(ErrCodeInput, "failed to read input", err)
	}
	return nil
}

// dispatch runs one line and reports whether the shell should exit.
func (s *shell) dispatch(ctx context.Context, line string) bool {
	if !strings.HasPrefix(line, ".") {
		s.translate(ctx, line)
		return false
	}

	name, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch name {
	case ".exit", ".quit":
		return true
	case ".help":
		fmt.Fprintln(s.formatter.Writer, shellHelp)
	case ".translate":
		s.translate(ctx, rest)
	case ".execute":
		exec, err := s.session.Execute(ctx)
		s.documents(exec, err)
	case ".run":
		t, exec, err := s.session.Run(ctx, rest)
		if t.ID != "" {
			s.showTranslation(t)
		}
		s.documents(exec, err)
	case ".find":
		exec, err := s.session.FindText(ctx, rest)
		s.documents(exec, err)
	case ".last":
		entry, err := s.session.Last()
		if err != nil {
			s.report(err)
			break
		}
		fmt.Fprintln(s.formatter.Writer, entry.Text)
	case ".clear":
		if err := s.session.Clear(); err != nil {
			s.report(err)
			break
		}
		_ = s.formatter.Message("Last query cleared.")
	case ".ping":
		if err := s.session.CheckConnection(ctx); err != nil {
			s.report(err)
			break
		}
		_ = s.formatter.Message(session.MsgConnected)
	default:
		_ = s.formatter.Error(ErrCodeInput, fmt.Sprintf("unknown command %s (type .help)", name), nil)
	}
	return false
}

func (s *shell) translate(ctx context.Context, sql string) {
	t, err := s.session.Translate(ctx, sql)
	if err != nil {
		s.report(err)
		return
	}
	s.showTranslation(t)
}

func (s *shell) showTranslation(t session.Translation) {
	if s.formatter.Format == "json" {
		_ = s.formatter.Success(newTranslationData(t))
		return
	}
	writeTranslationText(s.formatter, t)
}

func (s *shell) documents(exec session.Execution, err error) {
	if err != nil {
		s.report(err)
		return
	}
	_ = s.formatter.Documents(exec.Documents, newExecutionData(exec))
}

func (s *shell) report(err error) {
	_ = s.formatter.Fail(err)
}
