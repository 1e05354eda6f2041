package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/pinpoint/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists the address resolution queue in Postgres.
type Repository struct {
	db  Database
	log *slog.Logger
}

// Interface is the repository surface the resolver service depends on.
type Interface interface {
	FetchUnresolved(ctx context.Context, limit int) ([]models.Address, error)
	MarkResolved(ctx context.Context, addressID int, place models.Placemark, provider string) error
	MarkFailed(ctx context.Context, addressID int, cause string) error
}

// Database is the subset of pgxpool.Pool the repository uses.
// pgxmock satisfies it, which keeps the repository testable without a server.
type Database interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// NewRepository creates a new instance of Repository with the provided Database.
// It returns a pointer to the newly created Repository.
func NewRepository(db Database, log *slog.Logger) *Repository {
	return &Repository{db: db, log: log}
}

// NewDatabase connects a pgx pool to the given Postgres instance and
// verifies the connection with a ping.
func NewDatabase(host, port, user, password, name string) (*pgxpool.Pool, error) {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s", user, password, host, port, name)

	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err = pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}
