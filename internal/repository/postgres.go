package repository

import (
	"context"
	"fmt"

	"github.com/UnknownOlympus/pinpoint/internal/models"
)

// maxAttempts bounds how often an address is retried before the queue
// stops offering it.
const maxAttempts = 5

// FetchUnresolved retrieves addresses that still need geocoding: no
// coordinates yet, fewer than maxAttempts failed tries, and a non-empty
// address text. Results are ordered by creation date and limited to the
// specified count.
func (r *Repository) FetchUnresolved(ctx context.Context, limit int) ([]models.Address, error) {
	var addresses []models.Address
	query := `
		SELECT address_id, raw_address
		FROM public.addresses
		WHERE
			latitude IS NULL
			AND resolve_attempts < $1
			AND raw_address IS NOT NULL AND raw_address <> ''
		ORDER BY created_at ASC
		LIMIT $2;
	`

	rows, err := r.db.Query(ctx, query, maxAttempts, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query unresolved addresses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var address models.Address
		if errScan := rows.Scan(&address.ID, &address.Raw); errScan != nil {
			return nil, fmt.Errorf("failed to scan unresolved address: %w", errScan)
		}
		r.log.DebugContext(ctx, "Queued address without coordinates has been received.",
			"ID", address.ID, "Address", address.Raw)
		addresses = append(addresses, address)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}

	return addresses, nil
}

// MarkResolved stores the placemark for an address, records which provider
// produced it and clears any previous resolution error.
func (r *Repository) MarkResolved(ctx context.Context, addressID int, place models.Placemark, provider string) error {
	query := `
		UPDATE addresses
		SET
			latitude = $1,
			longitude = $2,
			quality = $3,
			resolved_by = $4,
			resolve_error = NULL
		WHERE
			address_id = $5;
	`

	_, err := r.db.Exec(ctx, query, place.Latitude, place.Longitude, place.Quality, provider, addressID)
	if err != nil {
		return fmt.Errorf("failed to update address coordinates: %w", err)
	}

	return nil
}

// MarkFailed increments the attempt counter for an address and stores the
// failure cause for later inspection.
func (r *Repository) MarkFailed(ctx context.Context, addressID int, cause string) error {
	query := `
		UPDATE addresses
		SET
			resolve_attempts = resolve_attempts + 1,
			resolve_error = $1
		WHERE address_id = $2;
	`

	_, err := r.db.Exec(ctx, query, cause, addressID)
	if err != nil {
		return fmt.Errorf("failed to update resolution error and number of attempts: %w", err)
	}

	return nil
}
