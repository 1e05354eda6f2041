package repository_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/UnknownOlympus/pinpoint/internal/models"
	"github.com/UnknownOlympus/pinpoint/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

const addressesSchema = `
	CREATE TABLE public.addresses (
		address_id       SERIAL PRIMARY KEY,
		raw_address      TEXT,
		latitude         DOUBLE PRECISION,
		longitude        DOUBLE PRECISION,
		quality          TEXT,
		resolved_by      TEXT,
		resolve_attempts INT NOT NULL DEFAULT 0,
		resolve_error    TEXT,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
	);
`

// TestRepository_Integration exercises the repository against a real
// Postgres instance. Requires a local Docker daemon; skipped in -short runs.
func TestRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	logger := slog.Default()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("pinpoint"),
		tcpostgres.WithUsername("pinpoint"),
		tcpostgres.WithPassword("secret"),
		tcpostgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	poolCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(poolCtx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	_, err = pool.Exec(ctx, addressesSchema)
	require.NoError(t, err)

	seed := []string{"Kyiv, Khreshchatyk St, 1", "Lviv, Rynok Square, 1", ""}
	for _, raw := range seed {
		_, err = pool.Exec(ctx, `INSERT INTO addresses (raw_address) VALUES ($1)`, raw)
		require.NoError(t, err)
	}

	repo := repository.NewRepository(pool, logger)

	// The empty address must never be offered for resolution.
	addresses, err := repo.FetchUnresolved(ctx, 10)
	require.NoError(t, err)
	require.Len(t, addresses, 2)
	assert.Equal(t, "Kyiv, Khreshchatyk St, 1", addresses[0].Raw)

	place := models.Placemark{Latitude: 50.4501, Longitude: 30.5234, Quality: "ADDRESS"}
	require.NoError(t, repo.MarkResolved(ctx, addresses[0].ID, place, "mapquest"))

	require.NoError(t, repo.MarkFailed(ctx, addresses[1].ID, "no match"))

	// Resolved addresses drop out of the queue, failed ones stay until the
	// attempt limit is reached.
	addresses, err = repo.FetchUnresolved(ctx, 10)
	require.NoError(t, err)
	require.Len(t, addresses, 1)
	assert.Equal(t, "Lviv, Rynok Square, 1", addresses[0].Raw)

	var attempts int
	var cause string
	err = pool.QueryRow(ctx,
		`SELECT resolve_attempts, resolve_error FROM addresses WHERE address_id = $1`,
		addresses[0].ID,
	).Scan(&attempts, &cause)
	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
	assert.Equal(t, "no match", cause)

	for range 4 {
		require.NoError(t, repo.MarkFailed(ctx, addresses[0].ID, "no match"))
	}

	addresses, err = repo.FetchUnresolved(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, addresses)
}
