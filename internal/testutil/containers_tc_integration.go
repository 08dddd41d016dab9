//go:build integration

package testutil

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/modules/redpanda"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

const (
	postgresImage = "postgres:16-alpine"
	redpandaImage = "docker.redpanda.com/redpandadata/redpanda:v23.3.8"
)

var tcLog = zap.NewExample().Sugar().Named("tc")

// lifecycle — пишет в лог готовность и остановку контейнера.
func lifecycle(kind string) tc.CustomizeRequestOption {
	short := func(c tc.Container) string {
		id := c.GetContainerID()
		return id[:min(12, len(id))]
	}
	return tc.WithLifecycleHooks(tc.ContainerLifecycleHooks{
		PostReadies: []tc.ContainerHook{func(_ context.Context, c tc.Container) error {
			tcLog.Infow("container ready", "kind", kind, "id", short(c))
			return nil
		}},
		PostTerminates: []tc.ContainerHook{func(_ context.Context, c tc.Container) error {
			tcLog.Infow("container terminated", "kind", kind, "id", short(c))
			return nil
		}},
	})
}

// PGContainer — Postgres с открытым пулом.
type PGContainer struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	DSN       string
}

// StartPostgresTC поднимает чистую БД voltcart. Схема не накатывается:
// тесты зовут postgres.Migrate сами.
func StartPostgresTC(ctx context.Context) (*PGContainer, func(context.Context) error, error) {
	pg, err := postgres.Run(ctx, postgresImage,
		lifecycle("postgres"),
		postgres.WithDatabase("voltcart"),
		postgres.WithUsername("cart"),
		postgres.WithPassword("cart"),
		tc.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("start postgres: %w", err)
	}

	pool, dsn, err := openPool(ctx, pg)
	if err != nil {
		_ = pg.Terminate(ctx)
		return nil, nil, err
	}

	stop := func(c context.Context) error {
		pool.Close()
		return pg.Terminate(c)
	}
	return &PGContainer{Container: pg, Pool: pool, DSN: dsn}, stop, nil
}

func openPool(ctx context.Context, pg *postgres.PostgresContainer) (*pgxpool.Pool, string, error) {
	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, "", fmt.Errorf("postgres dsn: %w", err)
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, "", fmt.Errorf("postgres dsn: %w", err)
	}
	// оформление заказа держит соединение под FOR UPDATE: параллельным тестам нужен запас
	cfg.MaxConns = 8
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, "", fmt.Errorf("postgres pool: %w", err)
	}
	return pool, dsn, nil
}

// KafkaEnv — Redpanda и префикс тем для теста.
type KafkaEnv struct {
	Container *redpanda.Container
	Brokers   []string
	BaseTopic string
}

// StartKafkaTC поднимает Redpanda (Kafka API) с автосозданием тем.
func StartKafkaTC(ctx context.Context, baseTopic string) (*KafkaEnv, func(context.Context) error, error) {
	rp, err := redpanda.Run(ctx, redpandaImage,
		lifecycle("redpanda"),
		redpanda.WithAutoCreateTopics(),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("start redpanda: %w", err)
	}
	seed, err := rp.KafkaSeedBroker(ctx)
	if err != nil {
		_ = tc.TerminateContainer(rp)
		return nil, nil, fmt.Errorf("redpanda seed broker: %w", err)
	}

	stop := func(context.Context) error { return tc.TerminateContainer(rp) }
	return &KafkaEnv{Container: rp, Brokers: []string{seed}, BaseTopic: baseTopic}, stop, nil
}
