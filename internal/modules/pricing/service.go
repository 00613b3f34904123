// README: Pricing service: address pair -> concurrent geocode -> driving distance -> price.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"ridebook/internal/maps"
	"ridebook/internal/types"
)

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrMissingAddress = fmt.Errorf("%w: pickup and dropoff are required", ErrInvalidInput)
	// ErrLocationNotFound means one of the addresses geocoded to nothing.
	ErrLocationNotFound    = errors.New("location not found")
	ErrNoRoute             = errors.New("route not found")
	ErrUpstreamUnavailable = errors.New("location service unavailable")
	// ErrPersistence marks failures of the booking store during confirmation.
	ErrPersistence = errors.New("pricing persistence failed")
)

const defaultCallTimeout = 5 * time.Second

type Service struct {
	geocoder    maps.Geocoder
	router      maps.Router
	rates       RateTable
	callTimeout time.Duration
	logger      *zap.Logger
}

func NewService(geocoder maps.Geocoder, router maps.Router, rates RateTable, callTimeout time.Duration, logger *zap.Logger) *Service {
	if callTimeout <= 0 {
		callTimeout = defaultCallTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		geocoder:    geocoder,
		router:      router,
		rates:       rates,
		callTimeout: callTimeout,
		logger:      logger,
	}
}

func (s *Service) Rates() RateTable {
	return s.rates
}

// Estimate resolves both addresses concurrently, then asks for the driving
// distance between them. Blank input fails before any upstream call. No
// retries; callers may retry the whole operation.
func (s *Service) Estimate(ctx context.Context, pickup, dropoff string) (TripEstimate, error) {
	pickup = strings.TrimSpace(pickup)
	dropoff = strings.TrimSpace(dropoff)
	if pickup == "" || dropoff == "" {
		return TripEstimate{}, ErrMissingAddress
	}

	var from, to types.GeoPoint
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.geocode(gctx, pickup)
		if err != nil {
			return fmt.Errorf("geocode pickup: %w", err)
		}
		from = p
		return nil
	})
	g.Go(func() error {
		p, err := s.geocode(gctx, dropoff)
		if err != nil {
			return fmt.Errorf("geocode dropoff: %w", err)
		}
		to = p
		return nil
	})
	if err := g.Wait(); err != nil {
		return TripEstimate{}, s.classify(ctx, err)
	}

	rctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()
	route, err := s.router.DrivingDistance(rctx, from, to)
	if err != nil {
		return TripEstimate{}, s.classify(ctx, fmt.Errorf("driving distance: %w", err))
	}
	if route.DistanceMeters < 0 || !finite(route.DistanceMeters) {
		return TripEstimate{}, fmt.Errorf("%w: invalid route distance %v", ErrUpstreamUnavailable, route.DistanceMeters)
	}

	return TripEstimate{
		Pickup:      pickup,
		Dropoff:     dropoff,
		Coordinates: Coordinates{From: from, To: to},
		DistanceKm:  types.Round2(route.DistanceMeters / 1000),
	}, nil
}

func (s *Service) geocode(ctx context.Context, address string) (types.GeoPoint, error) {
	cctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()
	p, err := s.geocoder.Geocode(cctx, address)
	if err != nil {
		return types.GeoPoint{}, err
	}
	if !p.Valid() {
		return types.GeoPoint{}, fmt.Errorf("%w: geocoder returned out-of-range point %v", maps.ErrUnavailable, p)
	}
	return p, nil
}

// Quote prices a trip. Wedding is flat per day and needs no upstream call.
func (s *Service) Quote(ctx context.Context, req QuoteRequest) (QuoteResult, error) {
	serviceType := ServiceType(normalize(string(req.ServiceType)))
	if serviceType == "" {
		return QuoteResult{}, fmt.Errorf("%w: service type is required", ErrInvalidInput)
	}

	if serviceType.IsWedding() {
		price, err := s.rates.ComputeWeddingPrice(req.Days)
		if err != nil {
			return QuoteResult{}, err
		}
		return QuoteResult{Proposal: Proposal{
			ServiceType:    serviceType,
			VehicleType:    req.VehicleType,
			Days:           req.Days,
			FlatRatePerDay: s.rates.WeddingPerDay(),
			ComputedPrice:  price,
			Currency:       types.CurrencyLKR,
		}}, nil
	}

	trip, err := s.Estimate(ctx, req.Pickup, req.Dropoff)
	if err != nil {
		return QuoteResult{}, err
	}
	rate := s.rates.RatePerKm(serviceType, req.VehicleType)
	price, err := ComputePrice(trip.DistanceKm, rate)
	if err != nil {
		return QuoteResult{}, err
	}
	return QuoteResult{
		Proposal: Proposal{
			ServiceType:   serviceType,
			VehicleType:   req.VehicleType,
			DistanceKm:    trip.DistanceKm,
			PricePerKm:    rate,
			ComputedPrice: price,
			Currency:      types.CurrencyLKR,
		},
		Trip: &trip,
	}, nil
}

// classify maps adapter errors onto the pricing taxonomy. The first
// failing geocode wins; the sibling call is cancelled by the group.
func (s *Service) classify(ctx context.Context, err error) error {
	switch {
	case ctx.Err() != nil:
		return fmt.Errorf("estimate aborted: %w", ctx.Err())
	case errors.Is(err, maps.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrLocationNotFound, err)
	case errors.Is(err, maps.ErrNoRoute):
		return fmt.Errorf("%w: %w", ErrNoRoute, err)
	case errors.Is(err, maps.ErrUnavailable), errors.Is(err, context.DeadlineExceeded):
		s.logger.Warn("maps upstream unavailable", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	default:
		return err
	}
}
