// Package geocoder is a client for the Google Geocoding JSON API.
package geocoder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker"
)

const (
	DefaultBaseURL = "https://maps.googleapis.com/maps/api/geocode"

	statusOK          = "OK"
	statusZeroResults = "ZERO_RESULTS"

	maxBodyBytes = 1 << 20
)

// ErrNoResults is returned when the provider could not place the address.
var ErrNoResults = errors.New("geocoder: no results")

// callerGoneError marks a lookup abandoned because the caller's context ended.
type callerGoneError struct {
	err error
}

func (e *callerGoneError) Error() string { return e.err.Error() }

func (e *callerGoneError) Unwrap() error { return e.err }

// Location is a resolved coordinate pair.
type Location struct {
	Latitude         float64 `json:"lat"`
	Longitude        float64 `json:"lng"`
	FormattedAddress string  `json:"formatted_address,omitempty"`
}

// Config configures a Client.
type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client

	BreakerMaxFailures uint32
	BreakerOpenTimeout time.Duration
}

// Client resolves addresses. The API key may be swapped at runtime.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker

	mu     sync.RWMutex
	apiKey string
}

type apiResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// New constructs a Client with defaults filled in.
func New(cfg Config) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	maxFailures := cfg.BreakerMaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}
	openTimeout := cfg.BreakerOpenTimeout
	if openTimeout <= 0 {
		openTimeout = 30 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "geocoder",
		Timeout: openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: func(err error) bool {
			// An unknown postcode is a valid answer, not a provider fault.
			// Neither is a caller that hung up.
			var gone *callerGoneError
			return err == nil || errors.Is(err, ErrNoResults) || errors.As(err, &gone)
		},
	})

	return &Client{
		baseURL: baseURL,
		http:    httpClient,
		breaker: breaker,
		apiKey:  cfg.APIKey,
	}
}

// SetAPIKey replaces the key sent with subsequent requests.
func (c *Client) SetAPIKey(key string) {
	c.mu.Lock()
	c.apiKey = key
	c.mu.Unlock()
}

// APIKey returns the key currently in use.
func (c *Client) APIKey() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.apiKey
}

// Geocode resolves address to its first matching location.
func (c *Client) Geocode(ctx context.Context, address string) (*Location, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, ErrNoResults
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	result, err := c.breaker.Execute(func() (interface{}, error) {
		loc, err := c.lookup(ctx, address)
		if err != nil && ctx.Err() != nil {
			return nil, &callerGoneError{err: err}
		}
		return loc, err
	})
	if err != nil {
		return nil, err
	}
	return result.(*Location), nil
}

func (c *Client) lookup(ctx context.Context, address string) (*Location, error) {
	params := url.Values{}
	params.Set("address", address)
	if key := c.APIKey(); key != "" {
		params.Set("key", key)
	}
	endpoint := c.baseURL + "/json?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build geocode request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocode request: unexpected status %d", resp.StatusCode)
	}

	var payload apiResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode geocode response: %w", err)
	}

	switch payload.Status {
	case statusOK:
	case statusZeroResults:
		return nil, ErrNoResults
	default:
		return nil, fmt.Errorf("geocode status %s: %s", payload.Status, payload.ErrorMessage)
	}
	if len(payload.Results) == 0 {
		return nil, ErrNoResults
	}

	first := payload.Results[0]
	return &Location{
		Latitude:         first.Geometry.Location.Lat,
		Longitude:        first.Geometry.Location.Lng,
		FormattedAddress: first.FormattedAddress,
	}, nil
}
