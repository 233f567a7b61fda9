package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "sqlmongo", cmd.Use)
	assert.Contains(t, cmd.Long, "db.<collection>.find(...)")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"translate", "execute", "run", "find", "parse", "last", "clear", "ping", "seed", "shell", "test"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "c", configFlag.Shorthand)

	for _, name := range []string{"state", "backend", "uri", "db", "translator"} {
		flag := cmd.PersistentFlags().Lookup(name)
		require.NotNil(t, flag, name)
		assert.Equal(t, "", flag.DefValue, "overrides default to the loaded config")
	}
}

func TestTestCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	testCmd, _, err := cmd.Find([]string{"test"})
	require.NoError(t, err)

	updateFlag := testCmd.Flags().Lookup("update")
	require.NotNil(t, updateFlag)
	assert.Equal(t, "false", updateFlag.DefValue)

	filterFlag := testCmd.Flags().Lookup("filter")
	require.NotNil(t, filterFlag)

	goldenFlag := testCmd.Flags().Lookup("golden-dir")
	require.NotNil(t, goldenFlag)
}

func TestFormatValidation(t *testing.T) {
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))
	assert.True(t, isValidFormat("yaml"))

	assert.False(t, isValidFormat("xml"))
	assert.False(t, isValidFormat(""))
	assert.False(t, isValidFormat("TEXT"))
}

func TestFormatValidationIntegration(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"--format", "invalid", "parse", "db.c.find({})"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestFlagOverridesConfig(t *testing.T) {
	env := newCLIEnv(t)
	opts := &RootOptions{
		ConfigPath: env.configPath,
		StatePath:  "/tmp/elsewhere.json",
		Translator: "/usr/local/bin/sql2mongo",
		Backend:    "mongo",
		URI:        "mongodb://db.internal:27017/",
	}

	cfg, err := opts.loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/elsewhere.json", cfg.State)
	assert.Equal(t, "/usr/local/bin/sql2mongo", cfg.Translator.Command)
	assert.Equal(t, "mongo", cfg.Store.Backend)
	assert.Equal(t, "mongodb://db.internal:27017/", cfg.Store.URI)
}

func TestFlagOverrideValidated(t *testing.T) {
	env := newCLIEnv(t)
	opts := &RootOptions{ConfigPath: env.configPath, Backend: "postgres"}

	_, err := opts.loadConfig()
	require.Error(t, err)
}
