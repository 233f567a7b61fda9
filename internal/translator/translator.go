// Package translator runs the external SQL-to-query translator process.
package translator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/roach88/sqlmongo/internal/mql"
)

// DefaultTimeout bounds a translator run when Runner.Timeout is zero.
const DefaultTimeout = 10 * time.Second

// Translator turns SQL text into raw translator output.
type Translator interface {
	Translate(ctx context.Context, sql string) (string, error)
}

// Runner invokes an external translator, feeding SQL on stdin.
type Runner struct {
	// Command is the executable to run.
	Command string

	// Args are passed to Command.
	Args []string

	// Timeout bounds one run. Zero means DefaultTimeout.
	Timeout time.Duration

	// Dir is the working directory; empty means the current one.
	Dir string

	// Logger receives debug output. Nil means slog.Default().
	Logger *slog.Logger
}

// Translate runs the translator with sql on stdin and returns its stdout
// unmodified. Both streams are drained before Translate returns.
//
// Any output on stderr is authoritative: the run fails with
// mql.KindTranslatorFailure carrying stderr verbatim, even on exit status 0.
// A run that outlives its timeout fails with mql.KindTranslatorTimeout.
func (r *Runner) Translate(ctx context.Context, sql string) (string, error) {
	if r.Command == "" {
		return "", &mql.Error{Kind: mql.KindTranslatorFailure, Message: "no translator command configured"}
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.Command, r.Args...)
	cmd.Dir = r.Dir
	cmd.Stdin = strings.NewReader(sql)
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	r.logger().Debug("translator finished",
		"command", r.Command,
		"duration_ms", time.Since(start).Milliseconds(),
		"stdout_bytes", stdout.Len(),
		"stderr_bytes", stderr.Len(),
		"error", err,
	)

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "", &mql.Error{
			Kind:    mql.KindTranslatorTimeout,
			Message: fmt.Sprintf("translator did not finish within %s", timeout),
			Text:    stderr.String(),
			Err:     ctx.Err(),
		}
	}
	if stderr.Len() > 0 {
		return "", &mql.Error{
			Kind:    mql.KindTranslatorFailure,
			Message: "Parser Error:\n" + stderr.String(),
			Text:    stderr.String(),
		}
	}
	if err != nil {
		return "", &mql.Error{
			Kind:    mql.KindTranslatorFailure,
			Message: fmt.Sprintf("translator %s failed", r.Command),
			Err:     err,
		}
	}
	return stdout.String(), nil
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}
