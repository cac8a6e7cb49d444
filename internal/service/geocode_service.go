package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/noah-isme/instructor-directory-api/pkg/geocoder"
)

const geocodeCachePrefix = "geocode:"

type geocodeClient interface {
	Geocode(ctx context.Context, address string) (*geocoder.Location, error)
	SetAPIKey(key string)
	APIKey() string
}

// GeocodeService resolves postcodes to coordinates, qualifying them with the
// configured country and caching successful answers.
type GeocodeService struct {
	client   geocodeClient
	cache    *CacheService
	cacheTTL time.Duration
	country  string
	metrics  *MetricsService
	logger   *zap.Logger
	group    singleflight.Group
}

// NewGeocodeService constructs a GeocodeService. cache may be nil.
func NewGeocodeService(client geocodeClient, cache *CacheService, cacheTTL time.Duration, country string, metrics *MetricsService, logger *zap.Logger) *GeocodeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GeocodeService{
		client:   client,
		cache:    cache,
		cacheTTL: cacheTTL,
		country:  strings.TrimSpace(country),
		metrics:  metrics,
		logger:   logger,
	}
}

// SetAPIKey replaces the provider API key.
func (s *GeocodeService) SetAPIKey(key string) {
	s.client.SetAPIKey(key)
}

// APIKey returns the provider API key.
func (s *GeocodeService) APIKey() string {
	return s.client.APIKey()
}

// Address appends the country qualifier to a postcode.
func (s *GeocodeService) Address(postcode string) string {
	postcode = strings.TrimSpace(postcode)
	if s.country == "" {
		return postcode
	}
	return postcode + ", " + s.country
}

// Refresh drops any cached answer for postcode and geocodes it again.
func (s *GeocodeService) Refresh(ctx context.Context, postcode string) (*geocoder.Location, error) {
	s.cache.Invalidate(ctx, s.cacheKey(s.Address(postcode)))
	return s.Locate(ctx, postcode)
}

func (s *GeocodeService) cacheKey(address string) string {
	return geocodeCachePrefix + strings.ToUpper(strings.Join(strings.Fields(address), " "))
}

// Locate geocodes postcode. geocoder.ErrNoResults means the provider could not place it.
func (s *GeocodeService) Locate(ctx context.Context, postcode string) (*geocoder.Location, error) {
	address := s.Address(postcode)
	key := s.cacheKey(address)

	var cached geocoder.Location
	if s.cache.Get(ctx, key, &cached) {
		s.metrics.RecordGeocode("cached")
		return &cached, nil
	}

	// The shared lookup outlives any single caller; the geocoder's HTTP timeout bounds it.
	shared := context.WithoutCancel(ctx)
	ch := s.group.DoChan(key, func() (interface{}, error) {
		return s.client.Geocode(shared, address)
	})
	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	result, err := res.Val, res.Err
	if err != nil {
		if errors.Is(err, geocoder.ErrNoResults) {
			s.metrics.RecordGeocode("not_found")
		} else {
			s.metrics.RecordGeocode("error")
			s.logger.Warn("geocode failed", zap.String("address", address), zap.Error(err))
		}
		return nil, err
	}

	location := result.(*geocoder.Location)
	s.metrics.RecordGeocode("resolved")
	s.cache.Set(ctx, key, location, s.cacheTTL)
	return location, nil
}
