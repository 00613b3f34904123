// README: Pricing handlers: trip distance, quotes and rate lookup.
package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ridebook/internal/modules/pricing"
)

type PricingService interface {
	Estimate(ctx context.Context, pickup, dropoff string) (pricing.TripEstimate, error)
	Quote(ctx context.Context, req pricing.QuoteRequest) (pricing.QuoteResult, error)
	Rates() pricing.RateTable
}

type PricingHandler struct {
	pricing PricingService
}

func NewPricingHandler(svc PricingService) *PricingHandler {
	return &PricingHandler{pricing: svc}
}

// Distance serves GET /distance?pickup=&dropoff=.
func (h *PricingHandler) Distance(c *gin.Context) {
	est, err := h.pricing.Estimate(c.Request.Context(), c.Query("pickup"), c.Query("dropoff"))
	if err != nil {
		writePricingError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, est)
}

func (h *PricingHandler) Quote(c *gin.Context) {
	days := 0
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(c, http.StatusBadRequest, "days must be an integer")
			return
		}
		days = n
	}
	res, err := h.pricing.Quote(c.Request.Context(), pricing.QuoteRequest{
		Pickup:      c.Query("pickup"),
		Dropoff:     c.Query("dropoff"),
		ServiceType: pricing.ServiceType(c.Query("service_type")),
		VehicleType: pricing.VehicleType(c.Query("vehicle_type")),
		Days:        days,
	})
	if err != nil {
		writePricingError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, res)
}

type rateResponse struct {
	ServiceType   pricing.ServiceType `json:"serviceType"`
	VehicleType   pricing.VehicleType `json:"vehicleType"`
	PricePerKm    float64             `json:"pricePerKm"`
	WeddingPerDay float64             `json:"weddingPerDay,omitempty"`
}

func (h *PricingHandler) Rates(c *gin.Context) {
	svc := pricing.ServiceType(c.Query("service_type"))
	if svc == "" {
		writeError(c, http.StatusBadRequest, "service_type is required")
		return
	}
	vehicle := pricing.VehicleType(c.Query("vehicle_type"))
	rates := h.pricing.Rates()
	resp := rateResponse{
		ServiceType: svc,
		VehicleType: vehicle,
		PricePerKm:  rates.RatePerKm(svc, vehicle),
	}
	if svc.IsWedding() {
		resp.WeddingPerDay = rates.WeddingPerDay()
	}
	writeJSON(c, http.StatusOK, resp)
}
