// Package mapquest implements a client for the MapQuest Geocoding API v1.
//
// The client resolves free-text addresses into candidate locations, either
// one address at a time or in batches of up to 100. Wire-level failures
// (non-success status, unreadable or malformed body) are normalized to empty
// results rather than errors; only misconfiguration and misuse are reported
// as errors.
package mapquest

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"time"
)

// Host is the fixed MapQuest API host.
const Host = "www.mapquestapi.com"

const (
	geocodePath = "/geocoding/v1/address"
	batchPath   = "/geocoding/v1/batch"

	libVersion = "1.0.0"
	userAgent  = "pinpoint/" + libVersion

	// MaxBatchSize is the largest number of addresses the batch endpoint accepts.
	MaxBatchSize = 100
)

// Common errors for the MapQuest client.
var (
	ErrMissingKey       = errors.New("mapquest: API key is required")
	ErrInvalidKey       = errors.New("mapquest: API key is not a valid URL-encoded string")
	ErrNilTransport     = errors.New("mapquest: transport must support HTTP GET")
	ErrTLSNotSupported  = errors.New("mapquest: https requires a TLS-capable transport")
	ErrTooManyLocations = errors.New("mapquest: too many locations in batch")
)

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// TLSCapable may be implemented by injected transports to declare whether
// they can speak HTTPS. Transports that do not implement it are assumed
// capable, which holds for *http.Client.
type TLSCapable interface {
	SupportsTLS() bool
}

// Client talks to the MapQuest geocoding service. Configuration is fixed at
// construction; only the transport may be swapped afterwards, via SetTransport.
type Client struct {
	apiKey    string     // service-issued key, URL-decoded once at construction
	scheme    string     // "http" or "https"
	transport HTTPClient // HTTP client for making requests
	debug     bool       // dump every wire exchange when set
	log       *slog.Logger
}

type options struct {
	https     bool
	transport HTTPClient
	debug     bool
	log       *slog.Logger
}

// Option configures a Client at construction time.
type Option func(*options)

// WithHTTPS switches the client to the https scheme. The transport must be
// TLS-capable; see TLSCapable.
func WithHTTPS() Option {
	return func(o *options) { o.https = true }
}

// WithTransport injects a custom HTTP client.
func WithTransport(transport HTTPClient) Option {
	return func(o *options) { o.transport = transport }
}

// WithDebug enables full, unredacted logging of every outgoing request and
// incoming response. Debug output goes to the configured logger, or to a
// stderr handler if none was supplied.
func WithDebug() Option {
	return func(o *options) { o.debug = true }
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) { o.log = log }
}

// New creates a geocoding client for the given API key.
//
// The key is URL-unescaped exactly once: the service hands out pre-encoded
// keys, so callers must pass the key as issued, without decoding it first.
func New(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingKey
	}

	key, err := url.QueryUnescape(apiKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	transport := o.transport
	if transport == nil {
		const timeout = 10
		transport = &http.Client{Timeout: timeout * time.Second}
	}

	scheme := "http"
	if o.https {
		scheme = "https"
		if err = checkTLS(transport); err != nil {
			return nil, err
		}
	}

	log := o.log
	if log == nil {
		if o.debug {
			log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
		} else {
			log = slog.New(slog.DiscardHandler)
		}
	}

	return &Client{
		apiKey:    key,
		scheme:    scheme,
		transport: transport,
		debug:     o.debug,
		log:       log,
	}, nil
}

// Transport returns the currently configured HTTP client.
func (c *Client) Transport() HTTPClient {
	return c.transport
}

// SetTransport replaces the HTTP client. It rejects a nil transport and,
// when the client was constructed for https, a transport that declares
// itself incapable of TLS.
func (c *Client) SetTransport(transport HTTPClient) error {
	if transport == nil {
		return ErrNilTransport
	}
	if c.scheme == "https" {
		if err := checkTLS(transport); err != nil {
			return err
		}
	}
	c.transport = transport

	return nil
}

func checkTLS(transport HTTPClient) error {
	if capable, ok := transport.(TLSCapable); ok && !capable.SupportsTLS() {
		return ErrTLSNotSupported
	}

	return nil
}
