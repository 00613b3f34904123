// README: OpenStreetMap Nominatim geocoder (free-text search, first candidate wins).
package maps

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"ridebook/internal/types"
)

type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

type NominatimOptions struct {
	BaseURL       string
	UserAgent     string
	CountryCodes  string
	Timeout       time.Duration
	RatePerSecond float64
}

// Nominatim resolves addresses against a Nominatim instance. The public
// instance allows one request per second, so every call waits on a shared
// limiter first.
type Nominatim struct {
	baseURL      string
	userAgent    string
	countryCodes string
	limiter      *rate.Limiter
	httpClient   *http.Client
}

func NewNominatim(opts NominatimOptions) *Nominatim {
	limit := rate.Inf
	if opts.RatePerSecond > 0 {
		limit = rate.Limit(opts.RatePerSecond)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Nominatim{
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
		userAgent:    opts.UserAgent,
		countryCodes: opts.CountryCodes,
		limiter:      rate.NewLimiter(limit, 1),
		httpClient:   &http.Client{Timeout: timeout},
	}
}

func (n *Nominatim) Geocode(ctx context.Context, address string) (types.GeoPoint, error) {
	if err := n.limiter.Wait(ctx); err != nil {
		return types.GeoPoint{}, fmt.Errorf("%w: nominatim throttle: %w", ErrUnavailable, err)
	}

	q := url.Values{}
	q.Set("format", "json")
	q.Set("limit", "1")
	q.Set("q", address)
	if n.countryCodes != "" {
		q.Set("countrycodes", n.countryCodes)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return types.GeoPoint{}, fmt.Errorf("%w: build nominatim request: %w", ErrUnavailable, err)
	}
	if n.userAgent != "" {
		req.Header.Set("User-Agent", n.userAgent)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return types.GeoPoint{}, fmt.Errorf("%w: nominatim: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.GeoPoint{}, fmt.Errorf("%w: nominatim returned status %d", ErrUnavailable, resp.StatusCode)
	}

	var places []nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return types.GeoPoint{}, fmt.Errorf("%w: decode nominatim response: %w", ErrUnavailable, err)
	}
	if len(places) == 0 {
		return types.GeoPoint{}, ErrNotFound
	}

	lat, latErr := strconv.ParseFloat(places[0].Lat, 64)
	lon, lonErr := strconv.ParseFloat(places[0].Lon, 64)
	if latErr != nil || lonErr != nil {
		return types.GeoPoint{}, fmt.Errorf("%w: nominatim returned non-numeric coordinates %q,%q", ErrUnavailable, places[0].Lat, places[0].Lon)
	}
	p := types.GeoPoint{Lat: lat, Lon: lon}
	if !p.Valid() {
		return types.GeoPoint{}, fmt.Errorf("%w: nominatim returned out-of-range point %v", ErrUnavailable, p)
	}
	return p, nil
}
