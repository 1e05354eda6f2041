package mapquest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
)

// Geocode resolves a single address and returns the best match, or nil if
// the service found nothing. An empty query location short-circuits to a
// nil result without any network activity.
//
// Service and transport failures are not surfaced: a non-success status or
// an unparseable body yields (nil, nil). Callers that need to tell "no
// match" apart from "service unreachable" must instrument the transport.
func (c *Client) Geocode(ctx context.Context, query Query) (*Location, error) {
	locations, err := c.GeocodeAll(ctx, query)
	if err != nil || len(locations) == 0 {
		return nil, err
	}

	return &locations[0], nil
}

// GeocodeAll resolves a single address and returns every candidate location,
// in the order the service ranked them. Failure semantics match Geocode.
func (c *Client) GeocodeAll(ctx context.Context, query Query) ([]Location, error) {
	if query.Location == "" {
		return nil, nil
	}

	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("location", query.Location)
	if query.Country != "" {
		params.Set("adminArea1", query.Country)
	}

	groups := c.fetch(ctx, geocodePath, params)
	if len(groups) == 0 {
		return nil, nil
	}

	return flatten(groups[0]), nil
}

// fetch performs one GET against the given endpoint and decodes the shared
// response envelope. Every failure mode on the wire collapses to an empty
// result; the cause is still logged so debug runs can tell them apart.
func (c *Client) fetch(ctx context.Context, path string, params url.Values) []resultGroup {
	reqURL := url.URL{
		Scheme:   c.scheme,
		Host:     Host,
		Path:     path,
		RawQuery: params.Encode(),
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		c.log.DebugContext(ctx, "failed to create request", "error", err)
		return nil
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	if c.debug {
		c.log.DebugContext(ctx, "mapquest request", "method", http.MethodGet, "url", reqURL.String())
	}

	resp, err := c.transport.Do(req)
	if err != nil {
		c.log.DebugContext(ctx, "geocoding request failed", "error", err)
		return nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.log.DebugContext(ctx, "failed to read response body", "error", err)
		return nil
	}

	if c.debug {
		c.log.DebugContext(ctx, "mapquest response", "status", resp.StatusCode, "body", string(body))
	}

	if resp.StatusCode != http.StatusOK {
		c.log.DebugContext(ctx, "geocoding service returned non-success status", "status", resp.StatusCode)
		return nil
	}

	var decoded geocodeResponse
	if err = json.Unmarshal(body, &decoded); err != nil {
		c.log.DebugContext(ctx, "failed to decode geocoding response", "error", err)
		return nil
	}

	return decoded.Results
}
