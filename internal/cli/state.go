package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/sqlmongo/internal/session"
)

// lastData is the JSON payload of the last command.
type lastData struct {
	ID           string    `json:"id"`
	Text         string    `json:"text"`
	TranslatedAt time.Time `json:"translated_at"`
}

// NewLastCommand creates the last command.
func NewLastCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "last",
		Short:         "Show the last translated query",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)
			env, err := openEnvironment(cmd.Context(), rootOpts, formatter, true)
			if err != nil {
				return err
			}
			defer env.Close()

			entry, err := env.session.Last()
			if err != nil {
				return formatter.Fail(err)
			}
			if formatter.Format == "json" {
				return formatter.Success(lastData{ID: entry.ID, Text: entry.Text, TranslatedAt: entry.TranslatedAt})
			}
			fmt.Fprintln(formatter.Writer, entry.Text)
			return nil
		},
	}
	return cmd
}

// NewClearCommand creates the clear command.
func NewClearCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "clear",
		Short:         "Forget the last translated query",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)
			env, err := openEnvironment(cmd.Context(), rootOpts, formatter, true)
			if err != nil {
				return err
			}
			defer env.Close()

			if err := env.session.Clear(); err != nil {
				return formatter.Fail(err)
			}
			return formatter.Message("Last query cleared.")
		},
	}
	return cmd
}

// NewPingCommand creates the ping command.
func NewPingCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Check that the document store is reachable",
		Long: `Probe the configured document store.

Exit codes:
  0 - Reachable
  1 - Unreachable
  2 - Command error (bad config)`,
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

			if err := env.session.CheckConnection(cmd.Context()); err != nil {
				return formatter.Fail(err)
			}
			return formatter.Message(session.MsgConnected)
		},
	}
	return cmd
}
