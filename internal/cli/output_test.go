package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sqlmongo/internal/literal"
	"github.com/roach88/sqlmongo/internal/mql"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	data := map[string]string{"result": "success"}
	err := formatter.Success(data)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Error("E001", "translation failed", nil)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	assert.NotNil(t, resp.Error)
	assert.Equal(t, "E001", resp.Error.Code)
	assert.Equal(t, "translation failed", resp.Error.Message)
}

func TestOutputFormatter_JSONErrorWithDetails(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	details := map[string]string{"kind": "TRANSLATOR_FAILURE", "text": "bad"}
	err := formatter.Error("E002", "parser error", details)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	assert.NotNil(t, resp.Error)
	assert.NotNil(t, resp.Error.Details)
}

func TestOutputFormatter_TextSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "text",
		Writer: buf,
	}

	err := formatter.Success("Last query cleared.")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Last query cleared.")
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: false,
	}

	err := formatter.Error("E001", "translation failed", nil)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error [E001]")
	assert.Contains(t, buf.String(), "translation failed")
}

func TestOutputFormatter_TextErrorVerbose(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: true,
	}

	details := map[string]string{"kind": "QUERY_FAILED"}
	err := formatter.Error("E001", "translation failed", details)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error [E001]")
	assert.Contains(t, buf.String(), "Details:")
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		wantLog bool
	}{
		{"verbose_enabled", true, true},
		{"verbose_disabled", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			formatter := &OutputFormatter{
				Format:  "text",
				Writer:  buf,
				Verbose: tt.verbose,
			}

			formatter.VerboseLog("Processing %s", "students")

			if tt.wantLog {
				assert.Contains(t, buf.String(), "Processing students")
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestCLIResponse_JSON(t *testing.T) {
	resp := CLIResponse{
		Status: "ok",
		Data:   map[string]int{"count": 42},
	}

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded CLIResponse
	err = json.Unmarshal(data, &decoded)
	require.NoError(t, err)
	assert.Equal(t, "ok", decoded.Status)
}

func TestCLIError_JSON(t *testing.T) {
	cliErr := CLIError{
		Code:    "E100",
		Message: "invalid configuration",
		Details: []string{"translator.command is required"},
	}

	data, err := json.Marshal(cliErr)
	require.NoError(t, err)

	var decoded CLIError
	err = json.Unmarshal(data, &decoded)
	require.NoError(t, err)
	assert.Equal(t, "E100", decoded.Code)
	assert.Equal(t, "invalid configuration", decoded.Message)
}

func TestOutputFormatter_Documents(t *testing.T) {
	docs := []*literal.Mapping{
		literal.NewMapping(literal.P("name", literal.String("Alice")), literal.P("age", literal.Int(22))),
	}

	tests := []struct {
		name   string
		format string
		docs   []*literal.Mapping
		want   string
	}{
		{"text", "text", docs, "{\n    \"name\": \"Alice\",\n    \"age\": 22\n}\n"},
		{"text empty", "text", nil, "No documents found.\n"},
		{"yaml", "yaml", docs, "- name: Alice\n  age: 22\n"},
		{"yaml empty", "yaml", nil, "[]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			formatter := &OutputFormatter{Format: tt.format, Writer: buf}
			require.NoError(t, formatter.Documents(tt.docs, nil))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestOutputFormatter_DocumentsJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Documents(nil, map[string]int{"count": 0}))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, map[string]any{"count": float64(0)}, resp.Data)
}

func TestOutputFormatter_Warn(t *testing.T) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: out, ErrWriter: errOut}

	formatter.Warn("check the output")
	assert.Empty(t, out.String())
	assert.Equal(t, "Warning: check the output\n", errOut.String())

	errOut.Reset()
	formatter.Format = "json"
	formatter.Warn("check the output")
	assert.Empty(t, errOut.String())
}

func TestOutputFormatter_Message(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Message("Last query cleared."))
	assert.JSONEq(t, `{"status":"ok","data":{"message":"Last query cleared."}}`, buf.String())
}

func TestOutputFormatter_Fail(t *testing.T) {
	t.Run("pipeline error", func(t *testing.T) {
		buf := &bytes.Buffer{}
		formatter := &OutputFormatter{Format: "json", Writer: buf}

		cause := &mql.Error{Kind: mql.KindTranslatorFailure, Message: "Parser Error:\nbad", Text: "bad"}
		err := formatter.Fail(cause)
		require.Error(t, err)
		assert.Equal(t, ExitFailure, GetExitCode(err))
		assert.ErrorIs(t, err, cause)

		var resp CLIResponse
		require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
		require.NotNil(t, resp.Error)
		assert.Equal(t, "E001", resp.Error.Code)
		assert.Equal(t, "Parser Error:\nbad", resp.Error.Message)
		assert.Equal(t, map[string]any{"kind": "TRANSLATOR_FAILURE", "text": "bad"}, resp.Error.Details)
	})

	t.Run("other error", func(t *testing.T) {
		buf := &bytes.Buffer{}
		formatter := &OutputFormatter{Format: "text", Writer: buf}

		err := formatter.Fail(errors.New("disk full"))
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.Equal(t, "Error [E100]: disk full\n", buf.String())
	})

	t.Run("exit error passes through", func(t *testing.T) {
		buf := &bytes.Buffer{}
		formatter := &OutputFormatter{Format: "text", Writer: buf}

		exitErr := NewExitError(ExitFailure, "2 scenario(s) failed")
		assert.Same(t, exitErr, formatter.Fail(exitErr))
		assert.Empty(t, buf.String())
	})
}

func TestOutputFormatter_CommandError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	err := formatter.CommandError(ErrCodeInput, "failed to read SQL", errors.New("broken pipe"))
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Equal(t, "Error [E103]: failed to read SQL: broken pipe\n", buf.String())
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(WrapExitError(ExitCommandError, "bad config", errors.New("x"))))
}
