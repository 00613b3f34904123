// README: Estimate/Quote tests with in-memory geocoder and router fakes.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"ridebook/internal/maps"
	"ridebook/internal/types"
)

type fakeGeocoder struct {
	mu     sync.Mutex
	calls  []string
	points map[string]types.GeoPoint
	errs   map[string]error
	// barrier, when set, makes each call wait until the other one arrives.
	barrier *sync.WaitGroup
	block   bool
}

func (f *fakeGeocoder) Geocode(ctx context.Context, address string) (types.GeoPoint, error) {
	f.mu.Lock()
	f.calls = append(f.calls, address)
	f.mu.Unlock()

	if f.barrier != nil {
		f.barrier.Done()
		f.barrier.Wait()
	}
	if f.block {
		<-ctx.Done()
		return types.GeoPoint{}, fmt.Errorf("%w: %w", maps.ErrUnavailable, ctx.Err())
	}
	if err := f.errs[address]; err != nil {
		return types.GeoPoint{}, err
	}
	p, ok := f.points[address]
	if !ok {
		return types.GeoPoint{}, maps.ErrNotFound
	}
	return p, nil
}

func (f *fakeGeocoder) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeRouter struct {
	mu     sync.Mutex
	calls  int
	meters float64
	err    error
	from   types.GeoPoint
	to     types.GeoPoint
}

func (f *fakeRouter) DrivingDistance(_ context.Context, from, to types.GeoPoint) (maps.RouteResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.from, f.to = from, to
	if f.err != nil {
		return maps.RouteResult{}, f.err
	}
	return maps.RouteResult{DistanceMeters: f.meters}, nil
}

var (
	colomboFort = types.GeoPoint{Lat: 6.9344, Lon: 79.8428}
	bia         = types.GeoPoint{Lat: 7.1808, Lon: 79.8841}
)

func newGeocoder() *fakeGeocoder {
	return &fakeGeocoder{points: map[string]types.GeoPoint{
		"Colombo Fort":         colomboFort,
		"Bandaranaike Airport": bia,
	}}
}

func TestEstimate_AirportScenario(t *testing.T) {
	geo := newGeocoder()
	router := &fakeRouter{meters: 35200}
	svc := NewService(geo, router, DefaultRateTable(), time.Second, nil)

	got, err := svc.Estimate(context.Background(), "  Colombo Fort ", "Bandaranaike Airport")
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	if got.DistanceKm != 35.2 {
		t.Errorf("distanceKm = %v, want 35.2", got.DistanceKm)
	}
	if got.Pickup != "Colombo Fort" || got.Dropoff != "Bandaranaike Airport" {
		t.Errorf("addresses = %q, %q", got.Pickup, got.Dropoff)
	}
	if got.Coordinates.From != colomboFort || got.Coordinates.To != bia {
		t.Errorf("coordinates = %+v", got.Coordinates)
	}
	if router.from != colomboFort || router.to != bia {
		t.Errorf("router called with %+v -> %+v", router.from, router.to)
	}
	if geo.callCount() != 2 || router.calls != 1 {
		t.Errorf("calls geocode=%d route=%d", geo.callCount(), router.calls)
	}
}

func TestEstimate_RoundsAndIsIdempotent(t *testing.T) {
	tests := []struct {
		meters float64
		want   float64
	}{
		{0, 0},
		{1, 0},
		{5, 0.01},
		{1234, 1.23},
		{1235, 1.24},
		{99999, 100},
	}
	for _, tt := range tests {
		svc := NewService(newGeocoder(), &fakeRouter{meters: tt.meters}, DefaultRateTable(), time.Second, nil)
		first, err := svc.Estimate(context.Background(), "Colombo Fort", "Bandaranaike Airport")
		if err != nil {
			t.Fatalf("%v m: %v", tt.meters, err)
		}
		second, err := svc.Estimate(context.Background(), "Colombo Fort", "Bandaranaike Airport")
		if err != nil {
			t.Fatalf("%v m: %v", tt.meters, err)
		}
		if first.DistanceKm != tt.want || second.DistanceKm != first.DistanceKm {
			t.Errorf("%v m -> %v then %v, want %v", tt.meters, first.DistanceKm, second.DistanceKm, tt.want)
		}
	}
}

func TestEstimate_MissingAddressMakesNoCalls(t *testing.T) {
	cases := [][2]string{
		{"", "Bandaranaike Airport"},
		{"Colombo Fort", ""},
		{"   ", "Bandaranaike Airport"},
		{"Colombo Fort", "\t\n"},
	}
	for _, c := range cases {
		geo := newGeocoder()
		router := &fakeRouter{meters: 1000}
		svc := NewService(geo, router, DefaultRateTable(), time.Second, nil)

		_, err := svc.Estimate(context.Background(), c[0], c[1])
		if !errors.Is(err, ErrInvalidInput) || !errors.Is(err, ErrMissingAddress) {
			t.Errorf("Estimate(%q, %q) err = %v, want ErrMissingAddress", c[0], c[1], err)
		}
		if geo.callCount() != 0 || router.calls != 0 {
			t.Errorf("Estimate(%q, %q) made calls geocode=%d route=%d", c[0], c[1], geo.callCount(), router.calls)
		}
	}
}

func TestEstimate_GeocodesConcurrently(t *testing.T) {
	var barrier sync.WaitGroup
	barrier.Add(2)
	geo := newGeocoder()
	geo.barrier = &barrier
	svc := NewService(geo, &fakeRouter{meters: 1000}, DefaultRateTable(), time.Second, nil)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Estimate(context.Background(), "Colombo Fort", "Bandaranaike Airport")
		done <- err
	}()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("estimate: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("geocode calls did not overlap")
	}
}

func TestEstimate_ErrorMapping(t *testing.T) {
	tests := []struct {
		name      string
		geoErrs   map[string]error
		routerErr error
		want      error
		wantRoute int
	}{
		{
			name:    "pickup not found",
			geoErrs: map[string]error{"Colombo Fort": maps.ErrNotFound},
			want:    ErrLocationNotFound,
		},
		{
			name:    "dropoff not found",
			geoErrs: map[string]error{"Bandaranaike Airport": maps.ErrNotFound},
			want:    ErrLocationNotFound,
		},
		{
			name:    "geocoder down",
			geoErrs: map[string]error{"Colombo Fort": fmt.Errorf("%w: connection refused", maps.ErrUnavailable)},
			want:    ErrUpstreamUnavailable,
		},
		{
			name:      "no route",
			routerErr: maps.ErrNoRoute,
			want:      ErrNoRoute,
			wantRoute: 1,
		},
		{
			name:      "router down",
			routerErr: fmt.Errorf("%w: 503", maps.ErrUnavailable),
			want:      ErrUpstreamUnavailable,
			wantRoute: 1,
		},
		{
			name:      "router deadline",
			routerErr: context.DeadlineExceeded,
			want:      ErrUpstreamUnavailable,
			wantRoute: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			geo := newGeocoder()
			geo.errs = tt.geoErrs
			router := &fakeRouter{meters: 1000, err: tt.routerErr}
			svc := NewService(geo, router, DefaultRateTable(), time.Second, nil)

			_, err := svc.Estimate(context.Background(), "Colombo Fort", "Bandaranaike Airport")
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if router.calls != tt.wantRoute {
				t.Fatalf("route calls = %d, want %d", router.calls, tt.wantRoute)
			}
		})
	}
}

func TestEstimate_UnexpectedErrorPassesThrough(t *testing.T) {
	boom := errors.New("boom")
	router := &fakeRouter{err: boom}
	svc := NewService(newGeocoder(), router, DefaultRateTable(), time.Second, nil)

	_, err := svc.Estimate(context.Background(), "Colombo Fort", "Bandaranaike Airport")
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	for _, known := range []error{ErrInvalidInput, ErrLocationNotFound, ErrNoRoute, ErrUpstreamUnavailable} {
		if errors.Is(err, known) {
			t.Fatalf("unexpected classification %v", known)
		}
	}
}

func TestEstimate_PerCallTimeout(t *testing.T) {
	geo := newGeocoder()
	geo.block = true
	svc := NewService(geo, &fakeRouter{}, DefaultRateTable(), 20*time.Millisecond, nil)

	start := time.Now()
	_, err := svc.Estimate(context.Background(), "Colombo Fort", "Bandaranaike Airport")
	if !errors.Is(err, ErrUpstreamUnavailable) {
		t.Fatalf("err = %v, want ErrUpstreamUnavailable", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("timeout not applied, took %v", elapsed)
	}
}

func TestEstimate_CallerCancelStopsGeocodes(t *testing.T) {
	geo := newGeocoder()
	geo.block = true
	router := &fakeRouter{}
	svc := NewService(geo, router, DefaultRateTable(), time.Minute, nil)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	_, err := svc.Estimate(ctx, "Colombo Fort", "Bandaranaike Airport")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if router.calls != 0 {
		t.Fatalf("router called after cancel")
	}
}

func TestEstimate_InvalidPointFromGeocoder(t *testing.T) {
	geo := newGeocoder()
	geo.points["Colombo Fort"] = types.GeoPoint{Lat: 123, Lon: 0}
	svc := NewService(geo, &fakeRouter{meters: 1}, DefaultRateTable(), time.Second, nil)

	_, err := svc.Estimate(context.Background(), "Colombo Fort", "Bandaranaike Airport")
	if !errors.Is(err, ErrUpstreamUnavailable) {
		t.Fatalf("err = %v, want ErrUpstreamUnavailable", err)
	}
}

func TestQuote(t *testing.T) {
	svc := NewService(newGeocoder(), &fakeRouter{meters: 35200}, DefaultRateTable(), time.Second, nil)

	res, err := svc.Quote(context.Background(), QuoteRequest{
		Pickup:      "Colombo Fort",
		Dropoff:     "Bandaranaike Airport",
		ServiceType: ServiceAirport,
		VehicleType: VehicleVan,
	})
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	p := res.Proposal
	if p.DistanceKm != 35.2 || p.PricePerKm != 120 || p.ComputedPrice != 4224 {
		t.Errorf("proposal = %+v", p)
	}
	if p.Currency != types.CurrencyLKR || res.Trip == nil {
		t.Errorf("currency = %q, trip = %v", p.Currency, res.Trip)
	}
}

func TestQuote_WeddingSkipsMaps(t *testing.T) {
	geo := newGeocoder()
	router := &fakeRouter{meters: 1000}
	svc := NewService(geo, router, DefaultRateTable(), time.Second, nil)

	res, err := svc.Quote(context.Background(), QuoteRequest{ServiceType: ServiceWedding, Days: 3})
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if res.Proposal.ComputedPrice != 150000 || res.Proposal.FlatRatePerDay != 50000 || res.Proposal.Days != 3 {
		t.Errorf("proposal = %+v", res.Proposal)
	}
	if geo.callCount() != 0 || router.calls != 0 {
		t.Errorf("wedding quote made upstream calls")
	}

	if _, err := svc.Quote(context.Background(), QuoteRequest{ServiceType: ServiceWedding}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("zero days err = %v, want ErrInvalidInput", err)
	}
}

func TestQuote_RequiresServiceType(t *testing.T) {
	svc := NewService(newGeocoder(), &fakeRouter{}, DefaultRateTable(), time.Second, nil)
	if _, err := svc.Quote(context.Background(), QuoteRequest{Pickup: "a", Dropoff: "b"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}
