// README: Geocoder and Router contracts shared by the OSM, Google and cached adapters.
package maps

import (
	"context"
	"errors"
	"math"

	"ridebook/internal/types"
)

var (
	// ErrNotFound means the geocoder returned zero candidates for the address.
	ErrNotFound = errors.New("maps: address not found")
	// ErrNoRoute means both points are valid but no driving route joins them.
	ErrNoRoute = errors.New("maps: no route found")
	// ErrUnavailable covers transport failures, bad upstream status and malformed bodies.
	ErrUnavailable = errors.New("maps: upstream unavailable")
)

type Geocoder interface {
	Geocode(ctx context.Context, address string) (types.GeoPoint, error)
}

type Router interface {
	DrivingDistance(ctx context.Context, from, to types.GeoPoint) (RouteResult, error)
}

// RouteResult carries only the distance; route geometry is not consumed.
type RouteResult struct {
	DistanceMeters float64
}

func (r RouteResult) valid() bool {
	return r.DistanceMeters >= 0 && !math.IsInf(r.DistanceMeters, 0) && !math.IsNaN(r.DistanceMeters)
}
