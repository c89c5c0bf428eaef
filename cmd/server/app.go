package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/folio-api/internal/config"
	"github.com/phrazzld/folio-api/internal/events"
	"github.com/phrazzld/folio-api/internal/platform/cache"
	"github.com/phrazzld/folio-api/internal/platform/kafka"
	"github.com/phrazzld/folio-api/internal/platform/postgres"
	"github.com/phrazzld/folio-api/internal/platform/telemetry"
	"github.com/phrazzld/folio-api/internal/store"
	"github.com/redis/go-redis/v9"
)

// pinger reports whether the database is reachable.
type pinger interface {
	Ping(ctx context.Context) error
}

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *postgres.Database
	health pinger

	// Decorated stores served by the API
	posts store.PostStore
	tags  store.TagStore

	// Event delivery
	emitter   events.EventEmitter
	async     *events.AsyncHandler
	publisher *kafka.Publisher

	redis           *redis.Client
	shutdownTracing telemetry.ShutdownFunc
}

// newApplication wires the stores behind their cache and event decorators.
//
// Post reads go through the Redis cache when one is configured, and every
// successful mutation is emitted as a content event. Without Kafka brokers
// events are only logged. On failure everything opened so far, db included,
// is released.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *postgres.Database) (_ *application, err error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
		health: db,
	}
	defer func() {
		if err != nil {
			app.cleanup(ctx)
		}
	}()

	app.shutdownTracing, err = telemetry.Setup(ctx, telemetry.Config{
		Endpoint:    cfg.Telemetry.OTLPEndpoint,
		ServiceName: cfg.Telemetry.ServiceName,
		SampleRatio: cfg.Telemetry.SampleRatio,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to set up tracing: %w", err)
	}

	posts := db.Posts()
	if cfg.Cache.RedisAddr != "" {
		app.redis, err = cache.NewRedisClient(ctx, cfg.Cache.RedisAddr, logger)
		if err != nil {
			return nil, err
		}
		posts = cache.NewCachedPostStore(posts, cache.NewRedisCache(app.redis, "folio:"), cfg.Cache.TTL(), logger)
		logger.Info("post cache enabled", "ttl", cfg.Cache.TTL().String())
	}

	emitter := events.NewInMemoryEventEmitter(logger)
	emitter.RegisterHandler(events.LogEventHandler(logger))
	if len(cfg.Events.KafkaBrokers) > 0 {
		app.publisher, err = kafka.NewPublisher(kafka.Config{
			Brokers: cfg.Events.KafkaBrokers,
			Topic:   cfg.Events.Topic,
		}, logger)
		if err != nil {
			return nil, err
		}

		asyncCfg := events.DefaultAsyncConfig()
		asyncCfg.Workers = cfg.Events.Workers
		asyncCfg.QueueSize = cfg.Events.QueueSize
		app.async = events.NewAsyncHandler(app.publisher, asyncCfg, logger)
		emitter.RegisterHandler(app.async)
		logger.Info("kafka event publishing enabled",
			"topic", cfg.Events.Topic,
			"workers", asyncCfg.Workers)
	}
	app.emitter = emitter

	app.posts = events.NewPublishingPostStore(posts, emitter, logger)
	app.tags = events.NewPublishingTagStore(db.Tags(), emitter, logger)

	return app, nil
}

// Run serves HTTP until ctx is cancelled, then releases every resource.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources. Queued events
// are drained before the publisher and the database are closed.
func (app *application) cleanup(ctx context.Context) {
	if app.async != nil {
		if err := app.async.Stop(ctx); err != nil {
			app.logger.Error("error draining event queue", "error", err)
		}
	}
	if app.publisher != nil {
		if err := app.publisher.Close(); err != nil {
			app.logger.Error("error closing kafka publisher", "error", err)
		}
	}
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis client", "error", err)
		}
	}
	if app.shutdownTracing != nil {
		if err := app.shutdownTracing(ctx); err != nil {
			app.logger.Error("error flushing traces", "error", err)
		}
	}
	if app.db != nil {
		closeDatabase(app.db, app.logger)
	}
}
