// Package config loads sqlmongo settings from a YAML file, .env and the
// environment.
//
// Precedence, lowest first: built-in defaults, the config file, SQLMONGO_*
// environment variables (including those set by .env), command-line flags.
// String values in the file may reference the environment as ${VAR} or $VAR.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultFile is read when no config path is given and it exists.
const DefaultFile = "sqlmongo.yaml"

// Store backends.
const (
	BackendMongo  = "mongo"
	BackendSQLite = "sqlite"
)

// Config is the complete runtime configuration.
type Config struct {
	Translator Translator `yaml:"translator"`
	Store      Store      `yaml:"store"`

	// State is the last-query state file shared by CLI invocations.
	State string `yaml:"state"`
}

// Translator configures the external translator process.
type Translator struct {
	Command string        `yaml:"command"`
	Args    []string      `yaml:"args"`
	Timeout time.Duration `yaml:"timeout"`
	Dir     string        `yaml:"dir"`
}

// Store configures the document store.
type Store struct {
	// Backend is "mongo" or "sqlite".
	Backend string `yaml:"backend"`

	URI                    string        `yaml:"uri"`
	Database               string        `yaml:"database"`
	ServerSelectionTimeout time.Duration `yaml:"server_selection_timeout"`

	// Path is the SQLite database file for the sqlite backend.
	Path string `yaml:"path"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Translator: Translator{
			Command: "app",
			Timeout: 10 * time.Second,
		},
		Store: Store{
			Backend:                BackendMongo,
			URI:                    "mongodb://localhost:27017/",
			Database:               "campus",
			ServerSelectionTimeout: 2 * time.Second,
			Path:                   "sqlmongo.db",
		},
		State: defaultStatePath(),
	}
}

func defaultStatePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "sqlmongo", "last_query.json")
}

// Load builds the configuration. An empty path reads DefaultFile when it
// exists; a non-empty path must exist. A .env file in the working
// directory is loaded first and never overrides variables already set.
func Load(path string) (*Config, error) {
	if err := loadEnvFile(".env"); err != nil {
		return nil, err
	}

	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := decode(data, cfg); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// defaults only
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := applyEnv(cfg, os.Getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decode merges YAML over cfg. Unknown keys are errors.
func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	expandConfigEnvVars(cfg)
	return nil
}

func loadEnvFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// applyEnv applies SQLMONGO_* overrides.
func applyEnv(cfg *Config, getenv func(string) string) error {
	strs := []struct {
		name string
		dst  *string
	}{
		{"SQLMONGO_TRANSLATOR", &cfg.Translator.Command},
		{"SQLMONGO_TRANSLATOR_DIR", &cfg.Translator.Dir},
		{"SQLMONGO_BACKEND", &cfg.Store.Backend},
		{"SQLMONGO_MONGO_URI", &cfg.Store.URI},
		{"SQLMONGO_DATABASE", &cfg.Store.Database},
		{"SQLMONGO_SQLITE_PATH", &cfg.Store.Path},
		{"SQLMONGO_STATE", &cfg.State},
	}
	for _, s := range strs {
		if v := getenv(s.name); v != "" {
			*s.dst = v
		}
	}

	durations := []struct {
		name string
		dst  *time.Duration
	}{
		{"SQLMONGO_TRANSLATOR_TIMEOUT", &cfg.Translator.Timeout},
		{"SQLMONGO_SERVER_SELECTION_TIMEOUT", &cfg.Store.ServerSelectionTimeout},
	}
	for _, d := range durations {
		v := getenv(d.name)
		if v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", d.name, err)
		}
		*d.dst = parsed
	}
	return nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Translator.Command) == "" {
		return fmt.Errorf("translator.command is required")
	}
	if c.Translator.Timeout <= 0 {
		return fmt.Errorf("translator.timeout must be positive, got %s", c.Translator.Timeout)
	}
	switch c.Store.Backend {
	case BackendMongo:
		if c.Store.URI == "" {
			return fmt.Errorf("store.uri is required for the mongo backend")
		}
		if c.Store.Database == "" {
			return fmt.Errorf("store.database is required for the mongo backend")
		}
		if c.Store.ServerSelectionTimeout <= 0 {
			return fmt.Errorf("store.server_selection_timeout must be positive, got %s", c.Store.ServerSelectionTimeout)
		}
	case BackendSQLite:
		if c.Store.Path == "" {
			return fmt.Errorf("store.path is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("store.backend must be %q or %q, got %q", BackendMongo, BackendSQLite, c.Store.Backend)
	}
	return nil
}

var (
	bracedVar = regexp.MustCompile(`\$\{([^}]+)\}`)
	bareVar   = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
)

// expandEnvVars expands ${VAR} and $VAR from the environment.
func expandEnvVars(s string) string {
	s = bracedVar.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(match[2 : len(match)-1])
	})
	return bareVar.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(match[1:])
	})
}

func expandConfigEnvVars(cfg *Config) {
	cfg.Translator.Command = expandEnvVars(cfg.Translator.Command)
	cfg.Translator.Dir = expandEnvVars(cfg.Translator.Dir)
	for i, arg := range cfg.Translator.Args {
		cfg.Translator.Args[i] = expandEnvVars(arg)
	}
	cfg.Store.URI = expandEnvVars(cfg.Store.URI)
	cfg.Store.Database = expandEnvVars(cfg.Store.Database)
	cfg.Store.Path = expandEnvVars(cfg.Store.Path)
	cfg.State = expandEnvVars(cfg.State)
}
