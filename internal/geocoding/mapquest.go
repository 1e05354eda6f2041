package geocoding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/pinpoint/internal/mapquest"
	"github.com/UnknownOlympus/pinpoint/internal/models"
)

// MapquestProvider adapts the MapQuest client to the Provider interface.
// It is the only provider with batch support.
type MapquestProvider struct {
	client  AddressGeocoder // MapQuest geocoding client
	log     *slog.Logger    // Logger for logging operations
	country string          // Optional country hint forwarded with every query
}

// AddressGeocoder is the slice of the MapQuest client the provider needs.
type AddressGeocoder interface {
	Geocode(ctx context.Context, query mapquest.Query) (*mapquest.Location, error)
	BatchGeocode(ctx context.Context, addresses []string) ([][]mapquest.Location, error)
}

// Common errors for the MapQuest provider.
var (
	ErrMapquestEmptyAddress = errors.New("mapquest provider got empty address")
	ErrMapquestNoMatch      = errors.New("mapquest API returned no match for address")
)

// NewMapquestProvider creates a MapQuest-backed provider. The country hint,
// when non-empty, is attached to every single-address query.
func NewMapquestProvider(client AddressGeocoder, country string, log *slog.Logger) *MapquestProvider {
	return &MapquestProvider{client: client, country: country, log: log}
}

// Resolve converts an address into a placemark using the MapQuest
// Geocoding API. The client reports wire failures as empty results, so
// both "no match" and "service unreachable" surface as ErrMapquestNoMatch.
func (mp *MapquestProvider) Resolve(ctx context.Context, address string) (*models.Placemark, error) {
	mp.log.DebugContext(ctx, "Geocoding using MapQuest", "address", address)

	if address == "" {
		return nil, ErrMapquestEmptyAddress
	}

	location, err := mp.client.Geocode(ctx, mapquest.Query{Location: address, Country: mp.country})
	if err != nil {
		return nil, fmt.Errorf("failed to geocode address: %w", err)
	}
	if location == nil {
		return nil, ErrMapquestNoMatch
	}

	mp.log.InfoContext(ctx, "MapQuest found result",
		"address", address,
		"lat", location.LatLng.Lat,
		"lon", location.LatLng.Lng,
		"quality", location.GeocodeQuality)

	return placemark(location), nil
}

// ResolveBatch resolves up to mapquest.MaxBatchSize addresses in a single
// request. Unmatched addresses come back as nil entries; the result always
// has one entry per input, even when the service returned fewer groups.
func (mp *MapquestProvider) ResolveBatch(ctx context.Context, addresses []string) ([]*models.Placemark, error) {
	mp.log.DebugContext(ctx, "Batch geocoding using MapQuest", "count", len(addresses))

	groups, err := mp.client.BatchGeocode(ctx, addresses)
	if err != nil {
		return nil, fmt.Errorf("failed to batch geocode: %w", err)
	}

	placemarks := make([]*models.Placemark, len(addresses))
	for i := range addresses {
		if i >= len(groups) || len(groups[i]) == 0 {
			continue
		}
		placemarks[i] = placemark(&groups[i][0])
	}

	return placemarks, nil
}

func placemark(location *mapquest.Location) *models.Placemark {
	return &models.Placemark{
		Latitude:  location.LatLng.Lat,
		Longitude: location.LatLng.Lng,
		Quality:   location.GeocodeQuality,
	}
}
