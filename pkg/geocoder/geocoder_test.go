package geocoder

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const okBody = `{"status":"OK","results":[{"formatted_address":"Aberdeen AB1, UK","geometry":{"location":{"lat":57.1,"lng":-2.1}}}]}`

func TestGeocodeSuccess(t *testing.T) {
	var gotAddress, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/json", r.URL.Path)
		gotAddress = r.URL.Query().Get("address")
		gotKey = r.URL.Query().Get("key")
		_, _ = w.Write([]byte(okBody))
	}))
	defer srv.Close()

	client := New(Config{BaseURL: srv.URL})
	client.SetAPIKey("secret")

	loc, err := client.Geocode(context.Background(), "AB1 2CD, UK")
	require.NoError(t, err)
	assert.InDelta(t, 57.1, loc.Latitude, 1e-9)
	assert.InDelta(t, -2.1, loc.Longitude, 1e-9)
	assert.Equal(t, "AB1 2CD, UK", gotAddress)
	assert.Equal(t, "secret", gotKey)
	assert.Equal(t, "secret", client.APIKey())
}

func TestGeocodeOmitsEmptyKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, present := r.URL.Query()["key"]
		assert.False(t, present)
		_, _ = w.Write([]byte(okBody))
	}))
	defer srv.Close()

	_, err := New(Config{BaseURL: srv.URL}).Geocode(context.Background(), "AB1")
	require.NoError(t, err)
}

func TestGeocodeZeroResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ZERO_RESULTS","results":[]}`))
	}))
	defer srv.Close()

	_, err := New(Config{BaseURL: srv.URL}).Geocode(context.Background(), "ZZ99")
	assert.ErrorIs(t, err, ErrNoResults)
}

func TestGeocodeProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"REQUEST_DENIED","error_message":"bad key"}`))
	}))
	defer srv.Close()

	_, err := New(Config{BaseURL: srv.URL}).Geocode(context.Background(), "AB1")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNoResults))
	assert.Contains(t, err.Error(), "REQUEST_DENIED")
}

func TestGeocodeBreakerOpens(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := New(Config{BaseURL: srv.URL, BreakerMaxFailures: 2, BreakerOpenTimeout: time.Minute})
	for i := 0; i < 2; i++ {
		_, err := client.Geocode(context.Background(), "AB1")
		require.Error(t, err)
	}

	_, err := client.Geocode(context.Background(), "AB1")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestGeocodeZeroResultsDoNotTripBreaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ZERO_RESULTS","results":[]}`))
	}))
	defer srv.Close()

	client := New(Config{BaseURL: srv.URL, BreakerMaxFailures: 1})
	for i := 0; i < 3; i++ {
		_, err := client.Geocode(context.Background(), "ZZ99")
		assert.ErrorIs(t, err, ErrNoResults)
	}
}

func TestGeocodeBlankAddress(t *testing.T) {
	_, err := New(Config{}).Geocode(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrNoResults)
}

func TestGeocodeCallerCancellationDoesNotTripBreaker(t *testing.T) {
	var slow int32 = 1
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.LoadInt32(&slow) == 1 {
			select {
			case <-r.Context().Done():
			case <-time.After(500 * time.Millisecond):
			}
			return
		}
		_, _ = w.Write([]byte(okBody))
	}))
	defer srv.Close()

	client := New(Config{BaseURL: srv.URL, BreakerMaxFailures: 2, BreakerOpenTimeout: time.Minute})

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	for i := 0; i < 5; i++ {
		_, err := client.Geocode(cancelled, "AB1")
		assert.ErrorIs(t, err, context.Canceled)
	}

	for i := 0; i < 3; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		_, err := client.Geocode(ctx, "AB1")
		cancel()
		require.Error(t, err)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	}

	atomic.StoreInt32(&slow, 0)
	loc, err := client.Geocode(context.Background(), "AB1")
	require.NoError(t, err)
	assert.InDelta(t, 57.1, loc.Latitude, 1e-9)
	assert.Equal(t, gobreaker.StateClosed, client.breaker.State())
}
