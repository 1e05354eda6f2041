package mapquest

import (
	"context"
	"net/url"
)

// BatchGeocode resolves up to MaxBatchSize addresses in one request and
// returns one result group per input, preserving the order the service
// responded with. A group may be empty when its address had no match.
//
// An empty input yields (nil, nil). More than MaxBatchSize addresses is a
// hard precondition failure: ErrTooManyLocations, checked before any
// network activity. Wire failures collapse to (nil, nil), as in Geocode.
func (c *Client) BatchGeocode(ctx context.Context, addresses []string) ([][]Location, error) {
	if len(addresses) == 0 {
		return nil, nil
	}
	if len(addresses) > MaxBatchSize {
		return nil, ErrTooManyLocations
	}

	params := url.Values{}
	params.Set("key", c.apiKey)
	for _, address := range addresses {
		params.Add("location", address)
	}

	groups := c.fetch(ctx, batchPath, params)
	if len(groups) == 0 {
		return nil, nil
	}

	results := make([][]Location, len(groups))
	for i, group := range groups {
		results[i] = flatten(group)
	}

	return results, nil
}
