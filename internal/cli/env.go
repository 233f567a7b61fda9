package cli

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/roach88/sqlmongo/internal/config"
	"github.com/roach88/sqlmongo/internal/lastquery"
	"github.com/roach88/sqlmongo/internal/session"
	"github.com/roach88/sqlmongo/internal/store"
	"github.com/roach88/sqlmongo/internal/translator"
)

// disconnectTimeout bounds closing a MongoDB client.
const disconnectTimeout = 5 * time.Second

// environment is what one command run works with: the loaded
// configuration, the store and a session over them.
type environment struct {
	config  *config.Config
	store   session.Store
	session *session.Session
	closers []func() error
}

// loadConfig loads the configuration and applies flag overrides.
func (o *RootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return nil, err
	}

	if o.StatePath != "" {
		cfg.State = o.StatePath
	}
	if o.Backend != "" {
		cfg.Store.Backend = o.Backend
	}
	if o.URI != "" {
		cfg.Store.URI = o.URI
	}
	if o.DBPath != "" {
		cfg.Store.Path = o.DBPath
	}
	if o.Translator != "" {
		cfg.Translator.Command = o.Translator
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openEnvironment builds the session for a command. With persistent set
// the last query lives in the configured state file, so separate
// invocations share it; otherwise it lives in memory for this run only.
// Failures are reported through formatter.
func openEnvironment(ctx context.Context, opts *RootOptions, formatter *OutputFormatter, persistent bool) (*environment, error) {
	cfg, err := opts.loadConfig()
	if err != nil {
		return nil, formatter.CommandError(ErrCodeConfig, "invalid configuration", err)
	}

	logger := opts.Logger()
	env := &environment{config: cfg}
	formatter.VerboseLog("Using %s document store, translator %q", cfg.Store.Backend, cfg.Translator.Command)

	tr := opts.translator
	if tr == nil {
		tr = &translator.Runner{
			Command: cfg.Translator.Command,
			Args:    cfg.Translator.Args,
			Timeout: cfg.Translator.Timeout,
			Dir:     cfg.Translator.Dir,
			Logger:  logger,
		}
	}

	env.store = opts.store
	if env.store == nil {
		env.store, err = env.openStore(ctx, cfg, logger)
		if err != nil {
			return nil, formatter.CommandError(ErrCodeStoreOpen, "failed to open document store", err)
		}
	}

	var slot lastquery.Slot = &lastquery.Memory{}
	if persistent {
		slot = lastquery.NewFile(cfg.State)
	}

	env.session = session.New(tr, env.store,
		session.WithSlot(slot),
		session.WithLogger(logger),
	)
	logger.Debug("environment ready",
		"backend", cfg.Store.Backend,
		"translator", cfg.Translator.Command,
		"state", cfg.State,
		"persistent", persistent,
	)
	return env, nil
}

func (e *environment) openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (session.Store, error) {
	if cfg.Store.Backend == config.BackendSQLite {
		s, err := store.Open(cfg.Store.Path, store.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		e.closers = append(e.closers, s.Close)
		return s, nil
	}

	m, err := store.OpenMongo(ctx, store.MongoOptions{
		URI:                    cfg.Store.URI,
		Database:               cfg.Store.Database,
		ServerSelectionTimeout: cfg.Store.ServerSelectionTimeout,
		Logger:                 logger,
	})
	if err != nil {
		return nil, err
	}
	e.closers = append(e.closers, func() error {
		ctx, cancel := context.WithTimeout(context.Background(), disconnectTimeout)
		defer cancel()
		return m.Close(ctx)
	})
	return m, nil
}

// Close releases the store, most recently opened first.
func (e *environment) Close() error {
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		errs = append(errs, e.closers[i]())
	}
	return errors.Join(errs...)
}
