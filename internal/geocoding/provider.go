package geocoding

import (
	"context"
	"net/http"

	"github.com/UnknownOlympus/pinpoint/internal/models"
)

// Provider resolves a single free-text address into a placemark.
// Implementations return an error when the address could not be resolved,
// including the "no match" case (see the per-provider sentinel errors).
type Provider interface {
	Resolve(ctx context.Context, address string) (*models.Placemark, error)
}

// BatchResolver is implemented by providers whose backing service offers a
// batch endpoint. The returned slice has one entry per input address, in
// input order; entries for unmatched addresses are nil.
type BatchResolver interface {
	ResolveBatch(ctx context.Context, addresses []string) ([]*models.Placemark, error)
}

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}
