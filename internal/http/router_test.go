// README: Router wiring tests: health, CORS and route guards.
package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	transport "ridebook/internal/http"
	"ridebook/internal/infra"
	"ridebook/internal/modules/booking"
	"ridebook/internal/modules/pricing"
	"ridebook/internal/types"
)

type customerVerifier struct{}

func (customerVerifier) VerifyIDToken(context.Context, string) (*infra.FirebaseToken, error) {
	return &infra.FirebaseToken{UID: "cust-1", Claims: map[string]interface{}{}}, nil
}

type noPricing struct{}

func (noPricing) Estimate(context.Context, string, string) (pricing.TripEstimate, error) {
	return pricing.TripEstimate{}, pricing.ErrMissingAddress
}

func (noPricing) Quote(context.Context, pricing.QuoteRequest) (pricing.QuoteResult, error) {
	return pricing.QuoteResult{}, pricing.ErrMissingAddress
}

func (noPricing) Rates() pricing.RateTable { return pricing.DefaultRateTable() }

type noBookings struct{}

func (noBookings) Get(context.Context, types.ID) (*booking.Booking, error) {
	return nil, booking.ErrNotFound
}

func (noBookings) ProposePricing(context.Context, booking.ProposeCommand) (*pricing.Proposal, error) {
	return nil, booking.ErrNotFound
}

func (noBookings) ConfirmPricing(context.Context, booking.ConfirmCommand) (booking.ConfirmResult, error) {
	return booking.ConfirmResult{}, booking.ErrNotFound
}

func (noBookings) History(context.Context, types.ID) ([]booking.Event, error) {
	return nil, nil
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return transport.NewRouter(transport.RouterDeps{
		Pricing:        noPricing{},
		Bookings:       noBookings{},
		Verifier:       customerVerifier{},
		AllowedOrigins: []string{"https://admin.example.com"},
	})
}

func TestHealth(t *testing.T) {
	w := httptest.NewRecorder()
	newRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK || w.Body.String() != "OK" {
		t.Fatalf("health = %d %q", w.Code, w.Body.String())
	}
}

func TestDistanceIsPublic(t *testing.T) {
	w := httptest.NewRecorder()
	newRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/distance", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 from the handler, got %d", w.Code)
	}
}

func TestBookingRoutesRequireAuth(t *testing.T) {
	w := httptest.NewRecorder()
	newRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/bookings/bk-1/pricing", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestConfirmRequiresAdmin(t *testing.T) {
	req := httptest.NewRequest(http.MethodPut, "/api/bookings/bk-1/pricing", nil)
	req.Header.Set("Authorization", "Bearer t")
	w := httptest.NewRecorder()
	newRouter().ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/distance", nil)
	req.Header.Set("Origin", "https://admin.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	newRouter().ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://admin.example.com" {
		t.Fatalf("allow origin = %q", got)
	}
}

type panicPricing struct{ noPricing }

func (panicPricing) Estimate(context.Context, string, string) (pricing.TripEstimate, error) {
	panic("geocoder exploded")
}

func TestPanicIsRecoveredAndLogged(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)
	r := transport.NewRouter(transport.RouterDeps{
		Pricing:  panicPricing{},
		Bookings: noBookings{},
		Verifier: customerVerifier{},
		Logger:   zap.New(core),
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/distance?pickup=a&dropoff=b", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if n := logs.FilterMessage("panic recovered").Len(); n != 1 {
		t.Errorf("panic logs = %d, want 1", n)
	}
	access := logs.FilterMessage("request").All()
	if len(access) != 1 {
		t.Fatalf("access logs = %d, want 1", len(access))
	}
	if got := access[0].ContextMap()["status"]; got != int64(http.StatusInternalServerError) {
		t.Errorf("logged status = %v, want 500", got)
	}
}
