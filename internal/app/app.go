// Package app assembles the storage backend, event publisher, GraphQL schema and HTTP server
// described by a Config.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/eleven-am/bistro/internal/config"
	"github.com/eleven-am/bistro/internal/database"
	"github.com/eleven-am/bistro/internal/events"
	"github.com/eleven-am/bistro/internal/graph"
	"github.com/eleven-am/bistro/internal/logger"
	"github.com/eleven-am/bistro/internal/migrator"
	"github.com/eleven-am/bistro/internal/repository"
	"github.com/eleven-am/bistro/internal/repository/memory"
	"github.com/eleven-am/bistro/internal/repository/postgres"
	"github.com/eleven-am/bistro/internal/server"
)

// App owns everything Build opened and releases it in Close.
type App struct {
	Config *config.Config
	Repos  repository.Repositories
	Schema *graph.Schema
	Server *server.Server

	db        *sqlx.DB
	publisher events.Publisher
}

// Option overrides a dependency Build would otherwise construct from the config.
type Option func(*builder)

type builder struct {
	publisher events.Publisher
	store     *memory.Store
	db        *sqlx.DB
}

// WithPublisher skips dialing AMQP and uses p instead.
func WithPublisher(p events.Publisher) Option {
	return func(b *builder) { b.publisher = p }
}

// WithMemoryStore backs the memory backend with s instead of the process-wide store.
func WithMemoryStore(s *memory.Store) Option {
	return func(b *builder) { b.store = s }
}

// WithDB uses an already connected pool for the postgres backend.
func WithDB(db *sqlx.DB) Option {
	return func(b *builder) { b.db = db }
}

// Build wires cfg into a ready-to-run App, logging through the component loggers of the
// global logger. On failure anything opened so far is closed.
func Build(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app: config is required")
	}

	b := &builder{}
	for _, opt := range opts {
		opt(b)
	}

	a := &App{Config: cfg}

	repos, err := a.openRepositories(ctx, b)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Repos = repos

	publisher, err := a.openPublisher(b)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.publisher = publisher

	schema, err := graph.NewSchema(repos, graph.Options{
		ResolverTimeout: cfg.GraphQL.ResolverTimeout,
		MaxParallelism:  cfg.GraphQL.MaxParallelism,
		Events:          publisher,
		Logger:          logger.GraphQL(),
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to build schema: %w", err)
	}
	a.Schema = schema

	a.Server = server.New(schema, repos.Healthy, server.Options{
		Addr:            cfg.Addr(),
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		Playground:      cfg.GraphQL.Playground,
	}, logger.HTTP())

	return a, nil
}

func (a *App) openRepositories(ctx context.Context, b *builder) (repository.Repositories, error) {
	switch a.Config.Storage.Backend {
	case config.BackendMemory:
		store := b.store
		if store == nil {
			store = memory.Shared()
		}
		logger.DB().Info("using in-memory storage")
		return store.Repositories(), nil

	case config.BackendPostgres:
		db := b.db
		if db == nil {
			var err error
			db, err = Connect(ctx, a.Config)
			if err != nil {
				return repository.Repositories{}, err
			}
			a.db = db
		}

		if a.Config.Database.AutoMigrate {
			applied, err := migrator.New(db, logger.Migration()).Up(ctx)
			if err != nil {
				return repository.Repositories{}, fmt.Errorf("auto-migrate failed: %w", err)
			}
			logger.Migration().Info("migrations applied", zap.Strings("applied", applied))
		}

		logger.DB().Info("using postgres storage", zap.String("driver", a.Config.Database.Driver))
		return postgres.New(db, logger.DB())

	default:
		return repository.Repositories{}, fmt.Errorf("unknown storage backend %q", a.Config.Storage.Backend)
	}
}

// openPublisher returns the configured publisher behind a bounded background queue, so
// mutations never wait on the broker. Without an AMQP URL events are discarded.
func (a *App) openPublisher(b *builder) (events.Publisher, error) {
	next := b.publisher
	if next == nil {
		if a.Config.Events.AMQPURL == "" {
			return events.Noop{}, nil
		}

		p, err := events.DialAMQP(a.Config.Events.AMQPURL, a.Config.Events.Exchange)
		if err != nil {
			return nil, err
		}
		logger.Events().Info("publishing events", zap.String("exchange", a.Config.Events.Exchange))
		next = p
	}
	return events.NewAsync(next, a.Config.Events.QueueSize, logger.Events()), nil
}

// Connect opens the postgres pool described by cfg.Database.
func Connect(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	dbCfg := database.NewDBConfig(cfg.Database.URL)
	dbCfg.Driver = cfg.Database.Driver
	dbCfg.MaxOpenConns = cfg.Database.MaxConnections
	dbCfg.MaxIdleConns = cfg.Database.MaxIdleConnections
	dbCfg.ConnMaxLifetime = cfg.Database.ConnMaxLifetime
	dbCfg.StatementTimeout = cfg.Database.StatementTimeout

	return dbCfg.Connect(ctx)
}

// Run serves until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	return a.Server.Run(ctx)
}

// Close releases the publisher and the pool Build opened. A pool passed with WithDB is left open.
func (a *App) Close() error {
	var errs []error
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close publisher: %w", err))
		}
		a.publisher = nil
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
		a.db = nil
	}
	return errors.Join(errs...)
}
