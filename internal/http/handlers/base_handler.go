// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ridebook/internal/modules/booking"
	"ridebook/internal/modules/pricing"
)

type errorResponse struct {
	Error string `json:"error"`
}

// isValidID accepts the ids bookings are created with: up to 64 chars of
// letters, digits, '-' and '_'.
func isValidID(v string) bool {
	if v == "" || len(v) > 64 {
		return false
	}
	for _, c := range v {
		if (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '-' || c == '_' {
			continue
		}
		return false
	}
	return true
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// writePricingError keeps one message per failure kind; the dashboard
// branches on them.
func writePricingError(c *gin.Context, err error) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, pricing.ErrMissingAddress):
		writeError(c, http.StatusBadRequest, "pickup and dropoff are required")
	case errors.Is(err, pricing.ErrInvalidInput):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, pricing.ErrLocationNotFound):
		writeError(c, http.StatusBadGateway, "location not found")
	case errors.Is(err, pricing.ErrNoRoute):
		writeError(c, http.StatusBadGateway, "route not found")
	case errors.Is(err, pricing.ErrUpstreamUnavailable):
		writeError(c, http.StatusBadGateway, "location service unavailable")
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

func writeBookingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, booking.ErrBadRequest):
		_ = c.Error(err)
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, booking.ErrNotFound):
		_ = c.Error(err)
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, booking.ErrInvalidState), errors.Is(err, booking.ErrConflict):
		_ = c.Error(err)
		writeError(c, http.StatusConflict, err.Error())
	default:
		writePricingError(c, err)
	}
}
