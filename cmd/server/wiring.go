package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"webshop/internal/audit"
	"webshop/internal/docstore"
	"webshop/internal/platform/config"
	"webshop/internal/platform/database"
	"webshop/internal/platform/health"
	"webshop/internal/platform/kafka"
	"webshop/internal/platform/kafka/producer"
	redisclient "webshop/internal/platform/redis"
	"webshop/internal/session/service"
	"webshop/internal/session/store"
	"webshop/internal/session/workers/cleanup"
	"webshop/migrations"
	"webshop/pkg/secrets"
)

const (
	backendMemory   = "memory"
	backendRedis    = "redis"
	backendPostgres = "postgres"
)

// infra holds the shared connections the selected backends need.
type infra struct {
	redis *redisclient.Client
	db    *database.Pool
}

func openInfra(ctx context.Context, cfg config.Server, checks *health.Handler) (*infra, error) {
	i := &infra{}
	if cfg.DocStore.Backend == backendRedis || cfg.LocalState.Backend == backendRedis {
		if cfg.Redis.URL == "" {
			return nil, errors.New("REDIS_URL is required for the redis backends")
		}
		client, err := redisclient.New(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		i.redis = client
		client.RegisterPoolMetrics(nil)
		checks.RegisterCheck("redis", client.Health)
	}
	if cfg.DocStore.Backend == backendPostgres {
		if cfg.Database.URL == "" {
			i.close()
			return nil, errors.New("DATABASE_URL is required for the postgres docstore")
		}
		pool, err := database.New(ctx, database.Config{
			URL:             cfg.Database.URL,
			MaxConns:        cfg.Database.MaxConns,
			MaxConnLifetime: cfg.Database.ConnMaxLifetime,
		})
		if err != nil {
			i.close()
			return nil, err
		}
		i.db = pool
		if err := pool.Migrate(ctx, migrations.FS); err != nil {
			i.close()
			return nil, err
		}
		checks.RegisterCheck("postgres", pool.Health)
	}
	return i, nil
}

func (i *infra) close() {
	if i.redis != nil {
		_ = i.redis.Close()
	}
	if i.db != nil {
		i.db.Close()
	}
}

type docBackend struct {
	store docstore.Store
	// listen is set for backends that need a change-notification loop.
	listen func(ctx context.Context) error
}

func newDocStore(cfg config.Server, i *infra, log *slog.Logger) (docBackend, error) {
	switch cfg.DocStore.Backend {
	case backendMemory:
		return docBackend{store: docstore.NewInMemory()}, nil
	case backendRedis:
		return docBackend{store: docstore.NewRedis(i.redis.Client)}, nil
	case backendPostgres:
		pg := docstore.NewPostgres(i.db.PGX(), log)
		return docBackend{store: pg, listen: pg.Start}, nil
	default:
		return docBackend{}, fmt.Errorf("unknown DOCSTORE_BACKEND %q", cfg.DocStore.Backend)
	}
}

type localBackend struct {
	store     service.LocalStore
	sweepable cleanup.LocalStateStore
}

func newLocalState(cfg config.Server, i *infra, log *slog.Logger) (localBackend, error) {
	secret := cfg.LocalState.Secret
	if secret == "" {
		generated, err := secrets.Generate()
		if err != nil {
			return localBackend{}, err
		}
		secret = generated
		log.Warn("LOCAL_STATE_SECRET not set; persisted sign-ins will not survive a restart")
	}
	sealer, err := secrets.NewSealer(secret)
	if err != nil {
		return localBackend{}, err
	}
	opts := []store.Option{
		store.WithTTL(cfg.LocalState.TTL),
		store.WithSealer(sealer),
	}

	switch cfg.LocalState.Backend {
	case backendMemory:
		s := store.NewInMemory(opts...)
		return localBackend{store: s, sweepable: s}, nil
	case backendRedis:
		s := store.NewRedis(i.redis.Client, opts...)
		return localBackend{store: s, sweepable: s}, nil
	default:
		return localBackend{}, fmt.Errorf("unknown LOCAL_STATE_BACKEND %q", cfg.LocalState.Backend)
	}
}

type auditSink struct {
	publisher *audit.Publisher
	close     func()
}

// newAuditPublisher publishes session events to Kafka when brokers are
// configured and to the log otherwise.
func newAuditPublisher(cfg config.Server, log *slog.Logger, checks *health.Handler) (auditSink, error) {
	if cfg.Kafka.Brokers == "" {
		return auditSink{
			publisher: audit.NewPublisher(audit.NewLogStore(log)),
			close:     func() {},
		}, nil
	}

	pcfg := kafka.DefaultProducerConfig()
	pcfg.Brokers = cfg.Kafka.Brokers
	pcfg.Acks = cfg.Kafka.Acks
	p, err := producer.New(pcfg, log)
	if err != nil {
		return auditSink{}, err
	}
	checks.RegisterCheck("kafka", func(ctx context.Context) error {
		if !p.Healthy(ctx) {
			return errors.New("no kafka brokers reachable")
		}
		return nil
	})

	publisher := audit.NewPublisher(audit.NewKafkaStore(p, cfg.Kafka.Topic),
		audit.WithAsyncBuffer(1024),
		audit.WithPublisherLogger(log),
	)
	return auditSink{
		publisher: publisher,
		close: func() {
			publisher.Close()
			_ = p.Close()
		},
	}, nil
}
