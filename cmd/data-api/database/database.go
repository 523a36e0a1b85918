package database

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/heptiolabs/healthcheck"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/united-manufacturing-hub/umh-utils/env"
	"go.uber.org/zap"
)

// PgxIface is the subset of pgxpool.Pool the store needs. pgxmock's pool
// mock satisfies it too, which is how the query builders are tested without
// a live database.
type PgxIface interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
	Close()
}

// Connection implements services.Store on Postgres. Column lookups are
// cached in an ARC cache keyed by table name and invalidated whenever the
// table's schema can change.
type Connection struct {
	db           PgxIface
	columnsCache *lru.ARCCache
}

// NewConnection wraps an existing pool, used by tests with a pgxmock pool.
func NewConnection(db PgxIface, cacheSize int) (*Connection, error) {
	if cacheSize <= 0 {
		cacheSize = 1000
	}
	cache, err := lru.NewARC(cacheSize)
	if err != nil {
		return nil, err
	}
	return &Connection{db: db, columnsCache: cache}, nil
}

// Connect reads the POSTGRES_* environment and opens the pool. Failures here
// are fatal, the service cannot run without its store.
func Connect() *Connection {
	PQHost, err := env.GetAsString("POSTGRES_HOST", false, "db")
	if err != nil {
		zap.S().Fatalf("Failed to get POSTGRES_HOST from env: %s", err)
	}
	PQPort, err := env.GetAsInt("POSTGRES_PORT", false, 5432)
	if err != nil {
		zap.S().Fatalf("Failed to get POSTGRES_PORT from env: %s", err)
	}
	PQUser, err := env.GetAsString("POSTGRES_USER", true, "")
	if err != nil {
		zap.S().Fatalf("Failed to get POSTGRES_USER from env: %s", err)
	}
	PQPassword, err := env.GetAsString("POSTGRES_PASSWORD", true, "")
	if err != nil {
		zap.S().Fatalf("Failed to get POSTGRES_PASSWORD from env: %s", err)
	}
	PQDBName, err := env.GetAsString("POSTGRES_DATABASE", true, "")
	if err != nil {
		zap.S().Fatalf("Failed to get POSTGRES_DATABASE from env: %s", err)
	}
	PQSSLMode, err := env.GetAsString("POSTGRES_SSL_MODE", false, "require")
	if err != nil {
		zap.S().Fatalf("Failed to get POSTGRES_SSL_MODE from env: %s", err)
	}
	PQLRUSize, err := env.GetAsInt("POSTGRES_LRU_CACHE_SIZE", false, 1000)
	if err != nil {
		zap.S().Fatalf("Failed to get POSTGRES_LRU_CACHE_SIZE from env: %s", err)
	}

	zap.S().Infof("Connecting to %s@%s:%d/%s [%s]", PQUser, PQHost, PQPort, PQDBName, PQSSLMode)

	conString := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		PQHost,
		PQPort,
		PQUser,
		PQPassword,
		PQDBName,
		PQSSLMode)

	connectCtx, connectCncl := context.WithTimeout(context.Background(), 5*time.Second)
	defer connectCncl()
	db, err := pgxpool.New(connectCtx, conString)
	if err != nil {
		zap.S().Fatalf("Failed to open connection to postgres database: %s", err)
	}

	connection, err := NewConnection(db, PQLRUSize)
	if err != nil {
		zap.S().Fatalf("Failed to create column cache: %s", err)
	}
	if !connection.IsAvailable() {
		zap.S().Fatalf("Database is not available !")
	}
	return connection
}

func (c *Connection) IsAvailable() bool {
	if c.db == nil {
		return false
	}
	ctx, cncl := context.WithTimeout(context.Background(), 5*time.Second)
	defer cncl()
	err := c.db.Ping(ctx)
	if err != nil {
		zap.S().Debugf("Failed to ping database: %s", err)
		return false
	}
	return true
}

// HealthCheck reports pool liveness for the healthcheck endpoint.
func (c *Connection) HealthCheck() healthcheck.Check {
	return func() error {
		ctx, cncl := context.WithTimeout(context.Background(), 5*time.Second)
		defer cncl()
		return c.db.Ping(ctx)
	}
}

func (c *Connection) Shutdown() {
	c.db.Close()
}
