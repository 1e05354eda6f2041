package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/UnknownOlympus/pinpoint/internal/geocoding"
	"github.com/UnknownOlympus/pinpoint/internal/metrics"
	"github.com/UnknownOlympus/pinpoint/internal/models"
	"github.com/UnknownOlympus/pinpoint/internal/repository"
)

const (
	// fetchLimit caps how many queued addresses one polling cycle takes on.
	fetchLimit = 500
	// chunkSize is the number of addresses per batch request. Batch-capable
	// provider APIs cap a single request at around 100 locations.
	chunkSize = 100

	noMatchCause = "no geocoding match"
)

// Resolver drains the address queue through a geocoding provider. Providers
// that implement geocoding.BatchResolver are driven with batched requests;
// the rest go through a worker pool of single-address resolutions.
type Resolver struct {
	log          *slog.Logger         // Logger for logging service activities
	repo         repository.Interface // Address queue access
	provider     geocoding.Provider   // Geocoding provider for external services
	providerName string               // Name of the provider for metrics labeling
	metrics      *metrics.Metrics     // Metrics for tracking service performance
	numWorkers   int                  // Number of concurrent workers for single resolutions
	pollInterval time.Duration        // Interval between queue polls
}

// NewResolver creates a resolver service around the given queue and provider.
func NewResolver(
	log *slog.Logger,
	repo repository.Interface,
	provider geocoding.Provider,
	providerName string,
	metrics *metrics.Metrics,
	numWorkers int,
	pollInterval time.Duration,
) *Resolver {
	return &Resolver{
		log:          log,
		repo:         repo,
		provider:     provider,
		providerName: providerName,
		metrics:      metrics,
		numWorkers:   numWorkers,
		pollInterval: pollInterval,
	}
}

// Run polls the queue until the context is canceled.
func (r *Resolver) Run(ctx context.Context) {
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	r.log.InfoContext(ctx, "Address resolver started...")

	for {
		select {
		case <-ctx.Done():
			r.log.InfoContext(ctx, "Address resolver stopped.")
			return
		case <-ticker.C:
			r.log.InfoContext(ctx, "Polling for unresolved addresses...")
			r.resolvePending(ctx)
		}
	}
}

// resolvePending runs one polling cycle: fetch queued addresses and push
// them through the provider, batched when the provider supports it.
func (r *Resolver) resolvePending(ctx context.Context) {
	addresses, err := r.repo.FetchUnresolved(ctx, fetchLimit)
	if err != nil {
		r.log.ErrorContext(ctx, "Failed to fetch unresolved addresses", "error", err)
		return
	}
	if len(addresses) == 0 {
		r.log.InfoContext(ctx, "No addresses to resolve.")
		return
	}

	if batch, ok := r.provider.(geocoding.BatchResolver); ok {
		r.log.InfoContext(ctx, "Resolving queued addresses in batches",
			"jobs", len(addresses), "chunk_size", chunkSize)
		r.resolveBatched(ctx, batch, addresses)
		return
	}

	r.log.InfoContext(ctx, "Resolving queued addresses with worker pool",
		"jobs", len(addresses), "num_workers", r.numWorkers)
	r.resolveConcurrently(ctx, addresses)
}

// resolveBatched sends the addresses to the provider in chunks and records
// the outcome of every entry.
func (r *Resolver) resolveBatched(ctx context.Context, batch geocoding.BatchResolver, addresses []models.Address) {
	for start := 0; start < len(addresses); start += chunkSize {
		end := min(start+chunkSize, len(addresses))
		chunk := addresses[start:end]

		texts := make([]string, len(chunk))
		for i, address := range chunk {
			texts[i] = address.Raw
		}

		startTime := time.Now()
		places, err := batch.ResolveBatch(ctx, texts)
		r.metrics.RequestSeconds.WithLabelValues(r.providerName).Observe(time.Since(startTime).Seconds())
		r.metrics.BatchSize.Observe(float64(len(chunk)))

		if err != nil {
			r.log.ErrorContext(ctx, "Batch resolution failed", "size", len(chunk), "error", err)
			r.metrics.APIErrors.Inc()
			for _, address := range chunk {
				r.recordFailure(ctx, address.ID, err.Error())
			}
			continue
		}

		for i, address := range chunk {
			if places[i] == nil {
				r.recordFailure(ctx, address.ID, noMatchCause)
				continue
			}
			r.recordSuccess(ctx, address.ID, *places[i])
		}
	}

	r.log.InfoContext(ctx, "Batch resolution cycle finished")
}

// resolveConcurrently fans the addresses out over a pool of workers.
func (r *Resolver) resolveConcurrently(ctx context.Context, addresses []models.Address) {
	jobs := make(chan models.Address, len(addresses))
	var wgr sync.WaitGroup

	for i := 1; i <= r.numWorkers; i++ {
		wgr.Add(1)
		go r.worker(ctx, i, &wgr, jobs)
	}

	for _, address := range addresses {
		jobs <- address
	}
	close(jobs)

	wgr.Wait()
	r.log.InfoContext(ctx, "Resolution cycle finished")
}

// worker resolves addresses from the jobs channel one at a time, timing the
// provider call and recording the outcome per address.
func (r *Resolver) worker(ctx context.Context, idx int, wg *sync.WaitGroup, jobs <-chan models.Address) {
	defer wg.Done()
	for address := range jobs {
		r.metrics.ActiveWorkers.Inc()
		r.log.DebugContext(ctx, "Resolving address", "worker", idx, "address", address.ID)

		startTime := time.Now()
		place, err := r.provider.Resolve(ctx, address.Raw)
		r.metrics.RequestSeconds.WithLabelValues(r.providerName).Observe(time.Since(startTime).Seconds())

		if err != nil {
			r.log.ErrorContext(ctx, "Failed to resolve", "worker", idx, "address", address.ID, "error", err)
			r.metrics.APIErrors.Inc()
			r.recordFailure(ctx, address.ID, err.Error())
			r.metrics.ActiveWorkers.Dec()
			continue
		}

		r.recordSuccess(ctx, address.ID, *place)
		r.metrics.ActiveWorkers.Dec()
	}
}

func (r *Resolver) recordSuccess(ctx context.Context, addressID int, place models.Placemark) {
	r.metrics.AddressesResolved.WithLabelValues("success").Inc()

	if err := r.repo.MarkResolved(ctx, addressID, place, r.providerName); err != nil {
		r.log.ErrorContext(ctx, "Failed to store coordinates", "address", addressID, "error", err)
	}
}

func (r *Resolver) recordFailure(ctx context.Context, addressID int, cause string) {
	r.metrics.AddressesResolved.WithLabelValues("failure").Inc()

	if err := r.repo.MarkFailed(ctx, addressID, cause); err != nil {
		r.log.ErrorContext(ctx, "Failed to record resolution failure", "address", addressID, "error", err)
	}
}
