// README: Booking pricing workflow: customer proposal, admin confirmation, best-effort cash payment.
package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"ridebook/internal/modules/payment"
	"ridebook/internal/modules/pricing"
	"ridebook/internal/types"
)

var (
	ErrNotFound     = errors.New("booking not found")
	ErrInvalidState = errors.New("booking is not awaiting pricing")
	ErrConflict     = errors.New("booking state conflict")
	ErrBadRequest   = errors.New("bad request")
)

type Quoter interface {
	Quote(ctx context.Context, req pricing.QuoteRequest) (pricing.QuoteResult, error)
}

type PaymentRecorder interface {
	RecordCashPayment(ctx context.Context, cmd payment.CashPayment) error
}

type repository interface {
	Get(ctx context.Context, id types.ID) (*Booking, error)
	SaveProposal(ctx context.Context, id types.ID, version int, p pricing.Proposal, at time.Time) (bool, error)
	ConfirmPricing(ctx context.Context, id types.ID, version int, c pricing.ConfirmedPricing, adminID types.ID, at time.Time) (bool, error)
	AppendEvent(ctx context.Context, e *Event) error
	ListEvents(ctx context.Context, id types.ID) ([]Event, error)
}

type Service struct {
	store    repository
	quoter   Quoter
	payments PaymentRecorder
	logger   *zap.Logger
	now      func() time.Time
}

func NewService(store *Store, quoter Quoter, payments PaymentRecorder, logger *zap.Logger) *Service {
	return newService(store, quoter, payments, logger)
}

func newService(store repository, quoter Quoter, payments PaymentRecorder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, quoter: quoter, payments: payments, logger: logger, now: time.Now}
}

type ProposeCommand struct {
	BookingID types.ID
	ActorID   types.ID
	// Days overrides the booking's wedding day count when > 0.
	Days int
}

type ConfirmCommand struct {
	BookingID types.ID
	AdminID   types.ID
	Override  pricing.OverrideRequest
}

// SideEffect reports a step that may fail without failing its caller.
type SideEffect struct {
	Attempted bool
	Err       error
}

func (e SideEffect) Failed() bool {
	return e.Attempted && e.Err != nil
}

type ConfirmResult struct {
	BookingID   types.ID
	Status      Status
	Pricing     pricing.ConfirmedPricing
	CashPayment SideEffect
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Booking, error) {
	if id == "" {
		return nil, ErrBadRequest
	}
	return s.store.Get(ctx, id)
}

// History returns the booking's proposal and confirmation events.
func (s *Service) History(ctx context.Context, id types.ID) ([]Event, error) {
	if id == "" {
		return nil, ErrBadRequest
	}
	events, err := s.store.ListEvents(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: list pricing events: %w", pricing.ErrPersistence, err)
	}
	return events, nil
}

// ProposePricing quotes the booking's trip and stores it as the current
// proposal, superseding any earlier one.
func (s *Service) ProposePricing(ctx context.Context, cmd ProposeCommand) (*pricing.Proposal, error) {
	b, err := s.Get(ctx, cmd.BookingID)
	if err != nil {
		return nil, err
	}
	if b.Status != StatusPending || b.PricingState() == PricingConfirmed {
		return nil, ErrInvalidState
	}

	days := b.WeddingDays
	if cmd.Days > 0 {
		days = cmd.Days
	}
	quote, err := s.quoter.Quote(ctx, pricing.QuoteRequest{
		Pickup:      b.PickupAddress,
		Dropoff:     b.DropoffAddress,
		ServiceType: b.ServiceType,
		VehicleType: b.VehicleType,
		Days:        days,
	})
	if err != nil {
		return nil, err
	}

	now := s.now()
	ok, err := s.store.SaveProposal(ctx, b.ID, b.StatusVersion, quote.Proposal, now)
	if err != nil {
		return nil, fmt.Errorf("%w: save proposal: %w", pricing.ErrPersistence, err)
	}
	if !ok {
		return nil, ErrConflict
	}

	var actorID *types.ID
	if cmd.ActorID != "" {
		actorID = &cmd.ActorID
	}
	if err := s.store.AppendEvent(ctx, &Event{
		BookingID:  b.ID,
		Kind:       EventProposed,
		ActorType:  "customer",
		ActorID:    actorID,
		Amount:     quote.Proposal.ComputedPrice,
		FromStatus: b.Status,
		ToStatus:   b.Status,
		CreatedAt:  now,
	}); err != nil {
		s.logger.Warn("append proposal event failed", zap.String("booking_id", string(b.ID)), zap.Error(err))
	}

	p := quote.Proposal
	return &p, nil
}

// ConfirmPricing applies an admin override and moves the booking to
// confirmed. Persisting the price and the status change is one unit; the
// cash payment afterwards is best-effort and reported in the result.
func (s *Service) ConfirmPricing(ctx context.Context, cmd ConfirmCommand) (ConfirmResult, error) {
	if cmd.AdminID == "" {
		return ConfirmResult{}, ErrBadRequest
	}
	b, err := s.Get(ctx, cmd.BookingID)
	if err != nil {
		return ConfirmResult{}, err
	}
	if !CanTransition(b.Status, StatusConfirmed) {
		return ConfirmResult{}, ErrInvalidState
	}

	override, err := pricing.ParseOverride(b.ServiceType, cmd.Override)
	if err != nil {
		return ConfirmResult{}, err
	}
	confirmed, err := pricing.Confirm(b.ServiceType, override)
	if err != nil {
		return ConfirmResult{}, err
	}

	ok, err := s.store.ConfirmPricing(ctx, b.ID, b.StatusVersion, confirmed, cmd.AdminID, s.now())
	if err != nil {
		return ConfirmResult{}, fmt.Errorf("%w: confirm pricing: %w", pricing.ErrPersistence, err)
	}
	if !ok {
		return ConfirmResult{}, ErrConflict
	}

	return ConfirmResult{
		BookingID:   b.ID,
		Status:      StatusConfirmed,
		Pricing:     confirmed,
		CashPayment: s.recordCashPayment(ctx, b, confirmed.AdminSetPrice),
	}, nil
}

// recordCashPayment never fails the confirmation and is not cancelled with
// the request.
func (s *Service) recordCashPayment(ctx context.Context, b *Booking, amount float64) SideEffect {
	if b.PaymentMethod != payment.MethodCash || s.payments == nil {
		return SideEffect{}
	}
	err := s.payments.RecordCashPayment(context.WithoutCancel(ctx), payment.CashPayment{
		BookingID:  b.ID,
		CustomerID: b.CustomerID,
		Amount:     amount,
	})
	if err != nil {
		s.logger.Error("cash payment record failed; pricing stays confirmed",
			zap.String("booking_id", string(b.ID)),
			zap.String("customer_id", string(b.CustomerID)),
			zap.Float64("amount", amount),
			zap.Error(err),
		)
	}
	return SideEffect{Attempted: true, Err: err}
}
