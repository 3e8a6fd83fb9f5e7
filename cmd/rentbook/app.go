package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"rentbook/internal/app/engine"
	"rentbook/internal/app/middleware"
	appoutbox "rentbook/internal/app/outbox"
	"rentbook/internal/app/policies"
	"rentbook/internal/app/uow"
	domainproperty "rentbook/internal/domain/property"
	domainuser "rentbook/internal/domain/user"
	"rentbook/internal/infra/broker/kafka"
	"rentbook/internal/infra/cache"
	"rentbook/internal/infra/config"
	"rentbook/internal/infra/db/mongo"
	"rentbook/internal/infra/db/postgres"
	ginserver "rentbook/internal/infra/http/gin"
	"rentbook/internal/infra/lock/redislock"
	"rentbook/internal/infra/obs"
	infraoutbox "rentbook/internal/infra/outbox"
	"rentbook/internal/infra/storage/memory"
	"rentbook/internal/infra/validation"
)

type outboxStore interface {
	appoutbox.Outbox
	infraoutbox.Store
}

// storage is what a driver contributes to the application.
type storage struct {
	properties  domainproperty.Repository
	users       domainuser.Repository
	factory     func(properties domainproperty.Directory) uow.UoWFactory
	outbox      outboxStore
	idempotency middleware.IdempotencyStore
	checks      map[string]obs.Check
	closers     []func(context.Context) error
}

type application struct {
	storage storage
	server  *http.Server
	worker  *infraoutbox.Worker
	closers []func(context.Context) error
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (*application, error) {
	st, err := openStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app := &application{storage: st, closers: st.closers}

	properties := cache.NewPropertyDirectory(st.properties, cfg.PropertyCacheTTL, 0)
	app.closers = append(app.closers, func(context.Context) error {
		properties.Stop()
		return nil
	})

	locker, lockCheck := newLocker(cfg, logger)
	producer, err := newProducer(cfg, logger)
	if err != nil {
		app.close(logger)
		return nil, err
	}
	if closer, ok := producer.(interface{ Close() error }); ok {
		app.closers = append(app.closers, func(context.Context) error { return closer.Close() })
	}

	metrics := obs.DefaultMetrics()
	eng := engine.New(engine.Deps{
		UoWFactory:      st.factory(properties),
		Locker:          locker,
		Outbox:          st.outbox,
		Encoder:         appoutbox.JSONEventEncoder{},
		Idempotency:     st.idempotency,
		Validator:       validation.New(),
		Metrics:         metrics,
		Logger:          logger,
		DefaultCurrency: cfg.DefaultCurrency,
	})
	logger.Info("engine ready", "commands", len(eng.CommandKeys()))

	checks := st.checks
	if lockCheck != nil {
		checks["redis"] = lockCheck
	}
	auth := ginserver.AuthMiddleware{
		Secret:      []byte(cfg.JWTSecret),
		TrustHeader: cfg.JWTSecret == "" && isLocalEnv(cfg.Env),
		Logger:      logger,
	}
	if cfg.JWTSecret == "" && !auth.TrustHeader {
		logger.Warn("JWT_SECRET is empty; renter endpoints will reject every request")
	}
	app.server = ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{Checks: checks}, ginserver.Handlers{
		Bookings:       &ginserver.BookingHandler{Commands: eng.Commands, Queries: eng.Queries},
		Payments:       &ginserver.PaymentHandler{Commands: eng.Commands, Queries: eng.Queries},
		Reviews:        &ginserver.ReviewHandler{Commands: eng.Commands, Queries: eng.Queries},
		Availability:   &ginserver.AvailabilityHandler{Queries: eng.Queries},
		AuthMiddleware: auth.Handle,
		Metrics:        metrics.Handler(),
	})
	app.worker = &infraoutbox.Worker{
		Store:       st.outbox,
		Producer:    producer,
		Logger:      logger,
		Interval:    cfg.OutboxPoll,
		TopicPrefix: cfg.KafkaTopicPrefix,
		Backoff:     cfg.RetryBackoff,
	}
	return app, nil
}

func openStorage(ctx context.Context, cfg config.Config) (storage, error) {
	switch cfg.StorageDriver {
	case config.DriverMongo:
		client, err := mongo.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return storage{}, fmt.Errorf("mongo connect: %w", err)
		}
		if err := client.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(ctx)
			return storage{}, fmt.Errorf("mongo indexes: %w", err)
		}
		box, err := mongo.NewOutboxStore(ctx, client.DB)
		if err != nil {
			_ = client.Disconnect(ctx)
			return storage{}, err
		}
		idem, err := mongo.NewIdempotencyStore(ctx, client.DB, cfg.IdempotencyTTL)
		if err != nil {
			_ = client.Disconnect(ctx)
			return storage{}, err
		}
		return storage{
			properties: mongo.NewPropertyRepository(client.DB),
			users:      mongo.NewUserRepository(client.DB),
			factory: func(properties domainproperty.Directory) uow.UoWFactory {
				return mongo.NewFactory(client.DB, properties)
			},
			outbox:      box,
			idempotency: idem,
			checks:      map[string]obs.Check{"mongo": client.Ping},
			closers:     []func(context.Context) error{client.Disconnect},
		}, nil
	case config.DriverPostgres:
		db, err := postgres.Open(cfg.PostgresDSN)
		if err != nil {
			return storage{}, fmt.Errorf("postgres connect: %w", err)
		}
		if err := postgres.Migrate(ctx, db); err != nil {
			return storage{}, fmt.Errorf("postgres migrate: %w", err)
		}
		return storage{
			properties: postgres.NewPropertyRepository(db),
			users:      postgres.NewUserRepository(db),
			factory: func(properties domainproperty.Directory) uow.UoWFactory {
				return postgres.NewFactory(db, properties)
			},
			outbox:      postgres.NewOutboxStore(db),
			idempotency: postgres.NewIdempotencyStore(db, cfg.IdempotencyTTL),
			checks: map[string]obs.Check{"postgres": func(ctx context.Context) error {
				return postgres.Ping(ctx, db)
			}},
			closers: []func(context.Context) error{func(context.Context) error {
				sqlDB, err := db.DB()
				if err != nil {
					return err
				}
				return sqlDB.Close()
			}},
		}, nil
	default:
		store := memory.NewStore()
		return storage{
			properties: store.Properties,
			users:      store.Users,
			factory: func(properties domainproperty.Directory) uow.UoWFactory {
				f := store.Factory()
				f.PropertiesRepo = properties
				return f
			},
			outbox:      memory.NewOutbox(),
			idempotency: memory.NewIdempotencyStore(),
			checks:      map[string]obs.Check{},
		}, nil
	}
}

// newLocker prefers redis so several instances share booking locks; a
// single process falls back to in-memory locks.
func newLocker(cfg config.Config, logger *slog.Logger) (policies.Locker, obs.Check) {
	if cfg.RedisAddr == "" {
		return memory.NewLocker(cfg.LockTimeout), nil
	}
	client := redislock.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	locker := redislock.New(client, "rentbook:lock:", cfg.LockTimeout, logger)
	locker.TTL = cfg.LockTTL
	return locker, func(ctx context.Context) error { return redislock.Ping(ctx, client) }
}

func newProducer(cfg config.Config, logger *slog.Logger) (infraoutbox.Producer, error) {
	if len(cfg.KafkaBrokers) == 0 {
		logger.Info("no kafka brokers configured, events are logged only")
		return infraoutbox.LogProducer{Logger: logger}, nil
	}
	producer, err := kafka.NewProducer(kafka.Options{Brokers: cfg.KafkaBrokers, ClientID: "rentbook"})
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

func (a *application) close(logger *slog.Logger) {
	ctx := context.Background()
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			logger.Warn("shutdown step failed", "error", err)
		}
	}
}

func isLocalEnv(env string) bool {
	switch strings.ToLower(env) {
	case "dev", "local", "test":
		return true
	}
	return false
}
