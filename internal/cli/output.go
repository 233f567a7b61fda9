package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/roach88/sqlmongo/internal/literal"
	"github.com/roach88/sqlmongo/internal/mql"
	"github.com/roach88/sqlmongo/internal/render"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Action failure (translator error, store unavailable, failed scenarios, etc.)
	ExitCommandError = 2 // Command error (bad config, unreadable input, etc.)
)

// CLI error codes. Pipeline failures report their kind's code (E001-E010).
const (
	ErrCodeGeneric     = "E100" // Generic/unknown error
	ErrCodeConfig      = "E101" // Configuration error
	ErrCodeStoreOpen   = "E102" // Store could not be opened
	ErrCodeInput       = "E103" // Input could not be read
	ErrCodeUnsupported = "E104" // Operation not supported by the backend
	ErrCodeSeed        = "E105" // Fixture load failed
	ErrCodeTestFailed  = "E106" // Scenarios failed
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles text, JSON and YAML output for CLI commands.
// YAML applies to result documents; other output falls back to text.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for warnings and diagnostics (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status  string    `json:"status"`             // "ok" or "error"
	Data    any       `json:"data,omitempty"`     // success payload
	Error   *CLIError `json:"error,omitempty"`    // error details
	TraceID string    `json:"trace_id,omitempty"` // query id for correlation
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // "E001", "E100", etc.
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	fmt.Fprintln(f.Writer, data)
	return nil
}

// Message outputs a status message; JSON wraps it as {"message": msg}.
func (f *OutputFormatter) Message(msg string) error {
	if f.Format == "json" {
		return f.Success(map[string]string{"message": msg})
	}
	_, err := color.New(color.FgGreen).Fprintln(f.Writer, msg)
	return err
}

// Documents outputs a result set. JSON emits data in the response
// envelope; YAML emits the documents as a sequence; text emits the
// indented documents or the no-documents sentinel.
func (f *OutputFormatter) Documents(docs []*literal.Mapping, data any) error {
	switch f.Format {
	case "json":
		return f.Success(data)
	case "yaml":
		return render.YAML(f.Writer, docs)
	}

	if err := render.Text(f.Writer, docs); err != nil {
		return err
	}
	if len(docs) == 0 {
		_, err := fmt.Fprintln(f.Writer)
		return err
	}
	return nil
}

// Warn outputs a non-fatal warning in text and YAML modes. JSON output
// carries warnings in the payload instead.
func (f *OutputFormatter) Warn(msg string) {
	if f.Format == "json" {
		return
	}
	color.New(color.FgYellow).Fprintf(f.GetErrWriter(), "Warning: %s\n", msg)
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	fmt.Fprintf(f.Writer, "%s [%s]: %s\n", color.RedString("Error"), code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Fail reports err and returns the ExitError for it. Pipeline failures
// exit with ExitFailure under their kind's code; anything else exits with
// ExitCommandError under ErrCodeGeneric.
func (f *OutputFormatter) Fail(err error) error {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return err
	}

	var e *mql.Error
	if errors.As(err, &e) {
		_ = f.Error(e.Kind.Code(), e.Message, errorDetails(e))
		return WrapExitError(ExitFailure, string(e.Kind), err)
	}

	_ = f.Error(ErrCodeGeneric, err.Error(), nil)
	return WrapExitError(ExitCommandError, "command failed", err)
}

// CommandError reports a command-level failure under code and returns an
// ExitError with ExitCommandError.
func (f *OutputFormatter) CommandError(code, message string, err error) error {
	text := message
	if err != nil {
		text = fmt.Sprintf("%s: %v", message, err)
	}
	_ = f.Error(code, text, nil)
	return WrapExitError(ExitCommandError, message, err)
}

func errorDetails(e *mql.Error) map[string]string {
	details := map[string]string{"kind": string(e.Kind)}
	if e.Text != "" {
		details["text"] = e.Text
	}
	if e.Err != nil {
		details["cause"] = e.Err.Error()
	}
	return details
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}
