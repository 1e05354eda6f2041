package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/UnknownOlympus/pinpoint/internal/metrics"
	"github.com/UnknownOlympus/pinpoint/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) FetchUnresolved(ctx context.Context, limit int) ([]models.Address, error) {
	args := m.Called(ctx, limit)
	var addresses []models.Address
	if v := args.Get(0); v != nil {
		addresses = v.([]models.Address)
	}
	return addresses, args.Error(1)
}

func (m *mockRepository) MarkResolved(ctx context.Context, addressID int, place models.Placemark, provider string) error {
	args := m.Called(ctx, addressID, place, provider)
	return args.Error(0)
}

func (m *mockRepository) MarkFailed(ctx context.Context, addressID int, cause string) error {
	args := m.Called(ctx, addressID, cause)
	return args.Error(0)
}

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) Resolve(ctx context.Context, address string) (*models.Placemark, error) {
	args := m.Called(ctx, address)
	var place *models.Placemark
	if v := args.Get(0); v != nil {
		place = v.(*models.Placemark)
	}
	return place, args.Error(1)
}

// mockBatchProvider additionally implements geocoding.BatchResolver.
type mockBatchProvider struct {
	mockProvider
}

func (m *mockBatchProvider) ResolveBatch(ctx context.Context, addresses []string) ([]*models.Placemark, error) {
	args := m.Called(ctx, addresses)
	var places []*models.Placemark
	if v := args.Get(0); v != nil {
		places = v.([]*models.Placemark)
	}
	return places, args.Error(1)
}

func TestResolvePending(t *testing.T) {
	mockRepo := new(mockRepository)
	provider := new(mockProvider)
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	reg := prometheus.NewRegistry()
	appMetrics := metrics.NewMetrics(reg)
	ctx := t.Context()
	resolver := NewResolver(logger, mockRepo, provider, "nominatim", appMetrics, 2, 1*time.Second)

	t.Run("successful resolution", func(t *testing.T) {
		queued := []models.Address{{ID: 1, Raw: "Kyiv"}}
		place := &models.Placemark{Latitude: 50.45, Longitude: 30.52, Quality: "city"}

		mockRepo.On("FetchUnresolved", ctx, fetchLimit).Return(queued, nil).Once()
		provider.On("Resolve", ctx, "Kyiv").Return(place, nil).Once()
		mockRepo.On("MarkResolved", ctx, 1, *place, "nominatim").Return(nil).Once()

		resolver.resolvePending(ctx)

		mockRepo.AssertExpectations(t)
		provider.AssertExpectations(t)
	})

	t.Run("fetch returns error", func(t *testing.T) {
		mockRepo.On("FetchUnresolved", ctx, fetchLimit).Return(nil, assert.AnError).Once()

		resolver.resolvePending(ctx)

		mockRepo.AssertExpectations(t)
		provider.AssertExpectations(t)
	})

	t.Run("fetch returns empty list", func(t *testing.T) {
		mockRepo.On("FetchUnresolved", ctx, fetchLimit).Return([]models.Address{}, nil).Once()

		resolver.resolvePending(ctx)

		mockRepo.AssertExpectations(t)
		provider.AssertExpectations(t)
	})

	t.Run("provider returns error", func(t *testing.T) {
		queued := []models.Address{{ID: 2, Raw: "Invalid Address"}}
		resolveErr := errors.New("resolution failed")

		mockRepo.On("FetchUnresolved", ctx, fetchLimit).Return(queued, nil).Once()
		provider.On("Resolve", ctx, "Invalid Address").Return(nil, resolveErr).Once()
		mockRepo.On("MarkFailed", ctx, 2, resolveErr.Error()).Return(nil).Once()

		resolver.resolvePending(ctx)

		mockRepo.AssertExpectations(t)
		provider.AssertExpectations(t)
	})

	t.Run("error while recording failure is tolerated", func(t *testing.T) {
		queued := []models.Address{{ID: 2, Raw: "Invalid Address"}}
		resolveErr := errors.New("resolution failed")

		mockRepo.On("FetchUnresolved", ctx, fetchLimit).Return(queued, nil).Once()
		provider.On("Resolve", ctx, "Invalid Address").Return(nil, resolveErr).Once()
		mockRepo.On("MarkFailed", ctx, 2, resolveErr.Error()).Return(assert.AnError).Once()

		resolver.resolvePending(ctx)

		mockRepo.AssertExpectations(t)
		provider.AssertExpectations(t)
	})

	t.Run("error while storing coordinates is tolerated", func(t *testing.T) {
		queued := []models.Address{{ID: 3, Raw: "Lviv"}}
		place := &models.Placemark{Latitude: 49.84, Longitude: 24.03, Quality: "city"}

		mockRepo.On("FetchUnresolved", ctx, fetchLimit).Return(queued, nil).Once()
		provider.On("Resolve", ctx, "Lviv").Return(place, nil).Once()
		mockRepo.On("MarkResolved", ctx, 3, *place, "nominatim").Return(assert.AnError).Once()

		resolver.resolvePending(ctx)

		mockRepo.AssertExpectations(t)
		provider.AssertExpectations(t)
	})
}

func TestResolvePending_Batch(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	ctx := t.Context()

	newBatchResolver := func(repo *mockRepository, provider *mockBatchProvider) *Resolver {
		reg := prometheus.NewRegistry()
		return NewResolver(logger, repo, provider, "mapquest", metrics.NewMetrics(reg), 2, 1*time.Second)
	}

	t.Run("batch-capable provider is driven with one request", func(t *testing.T) {
		mockRepo := new(mockRepository)
		provider := new(mockBatchProvider)
		resolver := newBatchResolver(mockRepo, provider)

		queued := []models.Address{{ID: 1, Raw: "Kyiv"}, {ID: 2, Raw: "nowhere"}, {ID: 3, Raw: "Lviv"}}
		places := []*models.Placemark{
			{Latitude: 50.45, Longitude: 30.52, Quality: "CITY"},
			nil,
			{Latitude: 49.84, Longitude: 24.03, Quality: "CITY"},
		}

		mockRepo.On("FetchUnresolved", ctx, fetchLimit).Return(queued, nil).Once()
		provider.On("ResolveBatch", ctx, []string{"Kyiv", "nowhere", "Lviv"}).Return(places, nil).Once()
		mockRepo.On("MarkResolved", ctx, 1, *places[0], "mapquest").Return(nil).Once()
		mockRepo.On("MarkFailed", ctx, 2, noMatchCause).Return(nil).Once()
		mockRepo.On("MarkResolved", ctx, 3, *places[2], "mapquest").Return(nil).Once()

		resolver.resolvePending(ctx)

		mockRepo.AssertExpectations(t)
		provider.AssertExpectations(t)
		// Single-address path must not be used for a batch-capable provider.
		provider.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
	})

	t.Run("batch failure marks every address of the chunk", func(t *testing.T) {
		mockRepo := new(mockRepository)
		provider := new(mockBatchProvider)
		resolver := newBatchResolver(mockRepo, provider)

		queued := []models.Address{{ID: 1, Raw: "Kyiv"}, {ID: 2, Raw: "Lviv"}}
		batchErr := errors.New("batch failed")

		mockRepo.On("FetchUnresolved", ctx, fetchLimit).Return(queued, nil).Once()
		provider.On("ResolveBatch", ctx, []string{"Kyiv", "Lviv"}).Return(nil, batchErr).Once()
		mockRepo.On("MarkFailed", ctx, 1, batchErr.Error()).Return(nil).Once()
		mockRepo.On("MarkFailed", ctx, 2, batchErr.Error()).Return(nil).Once()

		resolver.resolvePending(ctx)

		mockRepo.AssertExpectations(t)
		provider.AssertExpectations(t)
	})

	t.Run("large queues are chunked", func(t *testing.T) {
		mockRepo := new(mockRepository)
		provider := new(mockBatchProvider)
		resolver := newBatchResolver(mockRepo, provider)

		queued := make([]models.Address, chunkSize+1)
		firstChunk := make([]string, chunkSize)
		for i := range queued {
			queued[i] = models.Address{ID: i + 1, Raw: "addr"}
		}
		for i := range firstChunk {
			firstChunk[i] = "addr"
		}

		mockRepo.On("FetchUnresolved", ctx, fetchLimit).Return(queued, nil).Once()
		provider.On("ResolveBatch", ctx, firstChunk).
			Return(make([]*models.Placemark, chunkSize), nil).Once()
		provider.On("ResolveBatch", ctx, []string{"addr"}).
			Return(make([]*models.Placemark, 1), nil).Once()
		mockRepo.On("MarkFailed", ctx, mock.Anything, noMatchCause).Return(nil).Times(chunkSize + 1)

		resolver.resolvePending(ctx)

		mockRepo.AssertExpectations(t)
		provider.AssertExpectations(t)
	})
}
