package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/five82/quotebox/internal/config"
	"github.com/five82/quotebox/internal/logging"
	"github.com/five82/quotebox/internal/reconcile"
	"github.com/five82/quotebox/internal/remote"
	"github.com/five82/quotebox/internal/store"
)

// Options configure a quotebox runtime.
type Options struct {
	ConfigPath string
	PollEvery  time.Duration // zero uses the configured interval
	Offline    bool          // skip the remote even if sync is enabled
	Verbose    bool
}

// Runtime bundles everything a command needs: the loaded config, the logger
// and an engine backed by the on-disk store.
type Runtime struct {
	Config config.Config
	Logger *zap.Logger
	Engine *Engine
	Poll   time.Duration

	store *store.Store
}

// Open loads the config, opens the store and builds the engine. Startup
// fails only on a bad config or an unopenable database.
func Open(ctx context.Context, opts Options) (*Runtime, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	policy, err := reconcile.ParsePolicy(cfg.ConflictPolicy)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.LogPath(), opts.Verbose)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	db, err := store.Open(ctx, cfg.DBPath())
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("open store: %w", err)
	}

	var syncer remote.Syncer
	if cfg.SyncEnabled && !opts.Offline {
		client, err := remote.NewClient(remote.Options{
			Endpoint: cfg.RemoteURL,
			Limit:    cfg.FetchLimit,
			Category: cfg.RemoteCategory,
		})
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("init remote client: %w", err)
		}
		syncer = client
		logger.Info("remote sync enabled", zap.String("endpoint", client.Endpoint()))
	}

	engine, err := NewEngine(ctx, EngineOptions{
		Storage: db,
		Remote:  syncer,
		Policy:  policy,
		Logger:  logger,
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	poll := cfg.PollInterval
	if opts.PollEvery > 0 {
		poll = opts.PollEvery
	}

	return &Runtime{
		Config: cfg,
		Logger: logger,
		Engine: engine,
		Poll:   poll,
		store:  db,
	}, nil
}

// StartSync launches the background poller when sync is enabled. The
// returned channel closes when the poller stops; it is already closed when
// sync is disabled.
func (r *Runtime) StartSync(ctx context.Context) <-chan struct{} {
	if !r.Engine.SyncEnabled() {
		done := make(chan struct{})
		close(done)
		return done
	}
	return StartPoller(ctx, r.Engine, r.Poll, r.Logger)
}

// Close flushes the logger and closes the store.
func (r *Runtime) Close() error {
	if r == nil {
		return nil
	}
	var errs []error
	if r.store != nil {
		if err := r.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close store: %w", err))
		}
	}
	if r.Logger != nil {
		_ = r.Logger.Sync()
	}
	return errors.Join(errs...)
}
