package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/sqlmongo/internal/session"
	"github.com/roach88/sqlmongo/internal/translator"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "text" | "json" | "yaml"
	ConfigPath string

	// Overrides applied over the loaded configuration when set.
	StatePath  string
	Backend    string
	URI        string
	DBPath     string
	Translator string

	logger *slog.Logger

	// Test hooks replacing the configured translator and store.
	translator translator.Translator
	store      session.Store
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json", "yaml"}

// NewRootCommand creates the root command for the sqlmongo CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sqlmongo",
		Short: "Translate SQL to MongoDB queries and run them",
		Long: `sqlmongo sends SQL to an external translator, extracts the
db.<collection>.find(...) call from its output, and executes it against
MongoDB or an embedded SQLite document store.

The last translated query is kept in a state file, so translate and
execute can run as separate commands.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			opts.logger = newLogger(cmd.ErrOrStderr(), opts.Verbose)
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json|yaml)")
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "config file (default ./sqlmongo.yaml if present)")
	cmd.PersistentFlags().StringVar(&opts.StatePath, "state", "", "last-query state file")
	cmd.PersistentFlags().StringVar(&opts.Backend, "backend", "", "document store backend (mongo|sqlite)")
	cmd.PersistentFlags().StringVar(&opts.URI, "uri", "", "MongoDB connection URI")
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "SQLite document store path")
	cmd.PersistentFlags().StringVar(&opts.Translator, "translator", "", "translator command")

	// Add subcommands
	cmd.AddCommand(NewTranslateCommand(opts))
	cmd.AddCommand(NewExecuteCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewFindCommand(opts))
	cmd.AddCommand(NewParseCommand(opts))
	cmd.AddCommand(NewLastCommand(opts))
	cmd.AddCommand(NewClearCommand(opts))
	cmd.AddCommand(NewPingCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewShellCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// Execute runs the CLI with os.Args. Errors not already reported by a
// command are printed to stderr; the returned error carries the exit code.
func Execute() error {
	cmd := NewRootCommand()
	err := cmd.Execute()
	if err == nil {
		return nil
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return err
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return WrapExitError(ExitCommandError, "command failed", err)
}

// newLogger returns a text logger on w at debug level when verbose,
// warnings only otherwise.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Logger returns the logger set up for the running command.
func (o *RootOptions) Logger() *slog.Logger {
	if o.logger == nil {
		return slog.Default()
	}
	return o.logger
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}
