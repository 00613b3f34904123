// README: Google Maps geocoding and driving directions provider.
package maps

import (
	"context"
	"fmt"
	"strings"

	gmaps "googlemaps.github.io/maps"

	"ridebook/internal/types"
)

// Google implements both Geocoder and Router on the Google Maps
// Geocoding and Directions APIs.
type Google struct {
	client *gmaps.Client
	region string
}

// NewGoogle creates a Google provider with the given API key. region biases
// geocoding results (ccTLD, e.g. "lk").
func NewGoogle(apiKey, region string, opts ...gmaps.ClientOption) (*Google, error) {
	opts = append([]gmaps.ClientOption{gmaps.WithAPIKey(apiKey)}, opts...)
	client, err := gmaps.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &Google{client: client, region: region}, nil
}

func (g *Google) Geocode(ctx context.Context, address string) (types.GeoPoint, error) {
	results, err := g.client.Geocode(ctx, &gmaps.GeocodingRequest{
		Address: address,
		Region:  g.region,
	})
	if err != nil {
		if isZeroResults(err) {
			return types.GeoPoint{}, ErrNotFound
		}
		return types.GeoPoint{}, fmt.Errorf("%w: google geocode: %w", ErrUnavailable, err)
	}
	if len(results) == 0 {
		return types.GeoPoint{}, ErrNotFound
	}
	loc := results[0].Geometry.Location
	p := types.GeoPoint{Lat: loc.Lat, Lon: loc.Lng}
	if !p.Valid() {
		return types.GeoPoint{}, fmt.Errorf("%w: google returned out-of-range point %v", ErrUnavailable, p)
	}
	return p, nil
}

func (g *Google) DrivingDistance(ctx context.Context, from, to types.GeoPoint) (RouteResult, error) {
	r := &gmaps.DirectionsRequest{
		Origin:      latLng(from),
		Destination: latLng(to),
		Mode:        gmaps.TravelModeDriving,
		Region:      g.region,
	}

	routes, _, err := g.client.Directions(ctx, r)
	if err != nil {
		if isZeroResults(err) {
			return RouteResult{}, ErrNoRoute
		}
		return RouteResult{}, fmt.Errorf("%w: google directions: %w", ErrUnavailable, err)
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return RouteResult{}, ErrNoRoute
	}

	var meters int
	for _, leg := range routes[0].Legs {
		meters += leg.Distance.Meters
	}
	return RouteResult{DistanceMeters: float64(meters)}, nil
}

func latLng(p types.GeoPoint) string {
	return coord(p.Lat) + "," + coord(p.Lon)
}

// The client reports non-OK API statuses as "maps: STATUS - message".
func isZeroResults(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "ZERO_RESULTS") || strings.Contains(msg, "NOT_FOUND")
}
