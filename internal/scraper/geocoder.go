package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"ski-search/internal/models"
	"ski-search/internal/observability"
)

// ErrNoGeocodeResult is returned when Nominatim has no match for a query
var ErrNoGeocodeResult = errors.New("no geocoding result")

// Geocoder resolves resort locations using Nominatim
type Geocoder struct {
	http    *resty.Client
	limiter *rate.Limiter
}

// NominatimResult represents a geocoding result from Nominatim
type NominatimResult struct {
	Lat         string  `json:"lat"`
	Lon         string  `json:"lon"`
	DisplayName string  `json:"display_name"`
	Type        string  `json:"type"`
	Importance  float64 `json:"importance"`
}

// NewGeocoder creates a Nominatim geocoder. Nominatim allows one request
// per second.
func NewGeocoder(baseURL string) *Geocoder {
	if baseURL == "" {
		baseURL = "https://nominatim.openstreetmap.org"
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10*time.Second).
		SetHeader("User-Agent", "SkiSearch/1.0 (ski resort dataset builder)").
		SetHeader("Accept", "application/json")

	return &Geocoder{
		http:    client,
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

// Geocode converts a free-form place query to coordinates
func (g *Geocoder) Geocode(ctx context.Context, query string) (lat, lng float64, err error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return 0, 0, err
	}

	var results []NominatimResult
	start := time.Now()
	res, err := g.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":      query,
			"format": "json",
			"limit":  "1",
		}).
		SetResult(&results).
		Get("/search")
	if err != nil {
		return 0, 0, fmt.Errorf("request failed: %w", err)
	}
	observability.ObserveExternal("nominatim", "search", res.StatusCode(), time.Since(start))

	if res.StatusCode() != http.StatusOK {
		return 0, 0, fmt.Errorf("%w: %d from nominatim", ErrUnexpectedStatus, res.StatusCode())
	}
	if len(results) == 0 {
		return 0, 0, fmt.Errorf("%w: %s", ErrNoGeocodeResult, query)
	}

	if lat, err = strconv.ParseFloat(results[0].Lat, 64); err != nil {
		return 0, 0, fmt.Errorf("failed to parse latitude: %w", err)
	}
	if lng, err = strconv.ParseFloat(results[0].Lon, 64); err != nil {
		return 0, 0, fmt.Errorf("failed to parse longitude: %w", err)
	}
	return lat, lng, nil
}

// GeocodeResort fills in a resort's coordinates when they are missing.
// It reports whether coordinates were added.
func (g *Geocoder) GeocodeResort(ctx context.Context, r *models.Resort) (bool, error) {
	if r.HasCoordinates() {
		return false, nil
	}
	lat, lng, err := g.Geocode(ctx, r.Location())
	if err != nil {
		return false, err
	}
	r.Latitude, r.Longitude = &lat, &lng
	return true, nil
}
