// README: Booking pricing handlers: customer estimate, pricing view, admin confirmation.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ridebook/internal/http/middleware"
	"ridebook/internal/modules/booking"
	"ridebook/internal/modules/pricing"
	"ridebook/internal/types"
)

type BookingService interface {
	Get(ctx context.Context, id types.ID) (*booking.Booking, error)
	ProposePricing(ctx context.Context, cmd booking.ProposeCommand) (*pricing.Proposal, error)
	ConfirmPricing(ctx context.Context, cmd booking.ConfirmCommand) (booking.ConfirmResult, error)
	History(ctx context.Context, id types.ID) ([]booking.Event, error)
}

type BookingHandler struct {
	booking BookingService
}

func NewBookingHandler(svc BookingService) *BookingHandler {
	return &BookingHandler{booking: svc}
}

type pricingView struct {
	BookingID   types.ID                  `json:"bookingId"`
	Status      booking.Status            `json:"status"`
	State       booking.PricingState      `json:"pricingState"`
	Proposal    *pricing.Proposal         `json:"proposal,omitempty"`
	ProposedAt  *time.Time                `json:"proposedAt,omitempty"`
	Confirmed   *pricing.ConfirmedPricing `json:"confirmed,omitempty"`
	ConfirmedAt *time.Time                `json:"confirmedAt,omitempty"`
	History     []eventView               `json:"history"`
}

type eventView struct {
	Kind      booking.EventKind `json:"kind"`
	ActorType string            `json:"actorType"`
	ActorID   *types.ID         `json:"actorId,omitempty"`
	Amount    float64           `json:"amount"`
	From      booking.Status    `json:"fromStatus"`
	To        booking.Status    `json:"toStatus"`
	At        time.Time         `json:"at"`
}

type cashPaymentView struct {
	Attempted bool   `json:"attempted"`
	Recorded  bool   `json:"recorded"`
	Error     string `json:"error,omitempty"`
}

type confirmResponse struct {
	BookingID   types.ID                 `json:"bookingId"`
	Status      booking.Status           `json:"status"`
	Pricing     pricing.ConfirmedPricing `json:"pricing"`
	CashPayment cashPaymentView          `json:"cashPayment"`
}

type estimateReq struct {
	Days int `json:"days"`
}

// loadOwned fetches the booking and allows only its customer or an admin.
func (h *BookingHandler) loadOwned(c *gin.Context) (*booking.Booking, bool) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid booking id")
		return nil, false
	}
	b, err := h.booking.Get(c.Request.Context(), types.ID(id))
	if err != nil {
		writeBookingError(c, err)
		return nil, false
	}
	if middleware.CallerRole(c) != middleware.RoleAdmin && middleware.CallerUID(c) != string(b.CustomerID) {
		writeError(c, http.StatusForbidden, "forbidden: booking belongs to another customer")
		return nil, false
	}
	return b, true
}

func (h *BookingHandler) Estimate(c *gin.Context) {
	b, ok := h.loadOwned(c)
	if !ok {
		return
	}
	var req estimateReq
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, http.StatusBadRequest, "invalid json")
			return
		}
	}
	p, err := h.booking.ProposePricing(c.Request.Context(), booking.ProposeCommand{
		BookingID: b.ID,
		ActorID:   types.ID(middleware.CallerUID(c)),
		Days:      req.Days,
	})
	if err != nil {
		writeBookingError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, p)
}

func (h *BookingHandler) GetPricing(c *gin.Context) {
	b, ok := h.loadOwned(c)
	if !ok {
		return
	}
	events, err := h.booking.History(c.Request.Context(), b.ID)
	if err != nil {
		writeBookingError(c, err)
		return
	}
	history := make([]eventView, 0, len(events))
	for _, e := range events {
		history = append(history, eventView{
			Kind: e.Kind, ActorType: e.ActorType, ActorID: e.ActorID, Amount: e.Amount,
			From: e.FromStatus, To: e.ToStatus, At: e.CreatedAt,
		})
	}
	writeJSON(c, http.StatusOK, pricingView{
		BookingID:   b.ID,
		Status:      b.Status,
		State:       b.PricingState(),
		Proposal:    b.Proposal,
		ProposedAt:  b.ProposedAt,
		Confirmed:   b.Confirmed,
		ConfirmedAt: b.ConfirmedAt,
		History:     history,
	})
}

// Confirm serves PUT /api/bookings/:id/pricing (admin only). The body shape
// depends on the booking's service type.
func (h *BookingHandler) Confirm(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid booking id")
		return
	}
	var req pricing.OverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	res, err := h.booking.ConfirmPricing(c.Request.Context(), booking.ConfirmCommand{
		BookingID: types.ID(id),
		AdminID:   types.ID(middleware.CallerUID(c)),
		Override:  req,
	})
	if err != nil {
		writeBookingError(c, err)
		return
	}

	cash := cashPaymentView{Attempted: res.CashPayment.Attempted, Recorded: res.CashPayment.Attempted && !res.CashPayment.Failed()}
	if res.CashPayment.Failed() {
		cash.Error = "payment record could not be created"
	}
	writeJSON(c, http.StatusOK, confirmResponse{
		BookingID:   res.BookingID,
		Status:      res.Status,
		Pricing:     res.Pricing,
		CashPayment: cash,
	})
}
