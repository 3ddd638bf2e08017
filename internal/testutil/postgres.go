// Package testutil provides test helpers: a disposable PostgreSQL database
// for storage tests and a line-oriented telnet client for session tests.
package testutil

import (
	"context"
	"errors"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/cory-johannsen/chance/internal/config"
	"github.com/cory-johannsen/chance/internal/storage/postgres"
)

const (
	pgImage    = "postgres:16-alpine"
	pgUser     = "chance"
	pgDatabase = "chance_test"
	pgReadyLog = "database system is ready to accept connections"
)

// Postgres is a migrated, connected test database.
type Postgres struct {
	Config config.DatabaseConfig
	Pool   *postgres.Pool
	Store  *postgres.KVStore
}

// StartPostgres boots a throwaway PostgreSQL container, applies the
// repository migrations and opens a KV store on it.
//
// Precondition: Docker must be available.
// Postcondition: the kv_entries table exists and Store is usable; the
// container is terminated during test cleanup.
func StartPostgres(t *testing.T) *Postgres {
	t.Helper()
	ctx := context.Background()
	began := time.Now()

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        pgImage,
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     pgUser,
				"POSTGRES_PASSWORD": pgUser,
				"POSTGRES_DB":       pgDatabase,
			},
			// postgres logs readiness once during initdb and once for real.
			WaitingFor: wait.ForLog(pgReadyLog).WithOccurrence(2).WithStartupTimeout(45 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("postgres container: %v", err)
	}
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	if err != nil {
		t.Fatalf("postgres host: %v", err)
	}
	port, err := c.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("postgres port: %v", err)
	}

	cfg := config.DatabaseConfig{
		Host:            host,
		Port:            port.Int(),
		User:            pgUser,
		Password:        pgUser,
		Name:            pgDatabase,
		SSLMode:         "disable",
		MaxConns:        4,
		MinConns:        1,
		MaxConnLifetime: time.Minute,
	}
	migrateUp(t, cfg.DSN())

	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		t.Fatalf("postgres pool: %v", err)
	}
	t.Cleanup(pool.Close)
	t.Logf("postgres ready on %s:%d after %s", host, cfg.Port, time.Since(began).Round(time.Millisecond))

	return &Postgres{Config: cfg, Pool: pool, Store: postgres.NewKVStore(pool.DB())}
}

// migrateUp runs every migration under the repository's migrations directory.
func migrateUp(t *testing.T, dsn string) {
	t.Helper()
	m, err := migrate.New("file://"+migrationsDir(), dsn)
	if err != nil {
		t.Fatalf("migrator: %v", err)
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		t.Fatalf("migrate up: %v", err)
	}
}

func migrationsDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "migrations")
}
