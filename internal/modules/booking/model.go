// README: Booking aggregate (pricing-relevant part), status flow and pricing events.
package booking

import (
	"time"

	"ridebook/internal/modules/payment"
	"ridebook/internal/modules/pricing"
	"ridebook/internal/types"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// PricingState is derived from status plus the stored proposal/confirmation.
type PricingState string

const (
	PricingUnpriced  PricingState = "unpriced"
	PricingProposed  PricingState = "proposed"
	PricingConfirmed PricingState = "confirmed"
)

type Booking struct {
	ID             types.ID
	CustomerID     types.ID
	ServiceType    pricing.ServiceType
	VehicleType    pricing.VehicleType
	PickupAddress  string
	DropoffAddress string
	WeddingDays    int
	PaymentMethod  payment.Method
	Status         Status
	StatusVersion  int
	Proposal       *pricing.Proposal
	ProposedAt     *time.Time
	Confirmed      *pricing.ConfirmedPricing
	ConfirmedBy    *types.ID
	ConfirmedAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (b *Booking) PricingState() PricingState {
	switch {
	case b.Confirmed != nil && b.Confirmed.IsPriceConfirmed:
		return PricingConfirmed
	case b.Proposal != nil:
		return PricingProposed
	default:
		return PricingUnpriced
	}
}

type EventKind string

const (
	EventProposed  EventKind = "proposed"
	EventConfirmed EventKind = "confirmed"
)

type Event struct {
	ID         int64
	BookingID  types.ID
	Kind       EventKind
	ActorType  string
	ActorID    *types.ID
	Amount     float64
	FromStatus Status
	ToStatus   Status
	CreatedAt  time.Time
}

// AllowedTransitions is the booking status flow as far as pricing cares.
var AllowedTransitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

func CanTransition(from, to Status) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}
