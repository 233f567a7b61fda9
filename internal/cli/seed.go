package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/sqlmongo/internal/store"
)

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed <fixture | ->",
		Short: "Load fixture documents into the embedded store",
		Long: `Insert documents from a YAML or JSON fixture into the SQLite document
store. The fixture maps collection names to lists of documents:

  students:
    - {name: Alice, age: 22, major: CS}
    - {name: Bob, age: 19, major: Math}

Documents without an _id get one.

Examples:
  sqlmongo --backend sqlite --db campus.db seed campus.yaml
  cat campus.json | sqlmongo --backend sqlite seed -`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(rootOpts, cmd, args[0])
		},
	}
	return cmd
}

func runSeed(opts *RootOptions, cmd *cobra.Command, path string) error {
	ctx := cmd.Context()
	formatter := newFormatter(opts, cmd)

	var r io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return formatter.CommandError(ErrCodeInput, "failed to open fixture", err)
		}
		defer f.Close()
		r = f
		formatter.VerboseLog("Reading fixture %s", path)
	}

	env, err := openEnvironment(ctx, opts, formatter, false)
	if err != nil {
		return err
	}
	defer env.Close()

	ins, ok := env.store.(store.Inserter)
	if !ok {
		return formatter.CommandError(ErrCodeUnsupported, "seed requires the sqlite backend", nil)
	}

	seeded, err := store.LoadFixtures(ctx, ins, r)
	if err != nil {
		return formatter.CommandError(ErrCodeSeed, "failed to load fixtures", err)
	}

	if formatter.Format == "json" {
		if seeded == nil {
			seeded = []store.Seeded{}
		}
		return formatter.Success(map[string]any{"collections": seeded})
	}
	if len(seeded) == 0 {
		fmt.Fprintln(formatter.Writer, "Nothing to seed.")
		return nil
	}
	for _, s := range seeded {
		fmt.Fprintf(formatter.Writer, "Seeded %d documents into %s\n", s.Count, s.Collection)
	}
	return nil
}
