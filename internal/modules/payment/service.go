// README: Payment service records completed cash payments.
package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ridebook/internal/types"
)

var (
	ErrNotFound   = errors.New("payment not found")
	ErrBadRequest = errors.New("bad payment request")
)

type repository interface {
	Insert(ctx context.Context, p *Payment) (bool, error)
	GetByBooking(ctx context.Context, bookingID types.ID) (*Payment, error)
}

type Service struct {
	store repository
	now   func() time.Time
}

func NewService(store *Store) *Service {
	return newService(store)
}

func newService(store repository) *Service {
	return &Service{store: store, now: time.Now}
}

// RecordCashPayment writes one completed cash payment for the booking.
// Repeating it for the same booking is a no-op.
func (s *Service) RecordCashPayment(ctx context.Context, cmd CashPayment) error {
	if cmd.BookingID == "" || cmd.CustomerID == "" {
		return fmt.Errorf("%w: booking and customer are required", ErrBadRequest)
	}
	if cmd.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrBadRequest)
	}
	p := &Payment{
		ID:         types.ID(uuid.NewString()),
		BookingID:  cmd.BookingID,
		CustomerID: cmd.CustomerID,
		Amount:     types.LKR(types.Round2(cmd.Amount)),
		Method:     MethodCash,
		Status:     StatusCompleted,
		CreatedAt:  s.now(),
	}
	if _, err := s.store.Insert(ctx, p); err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// GetByBooking is the read side of RecordCashPayment, used for
// reconciliation reads and store tests.
func (s *Service) GetByBooking(ctx context.Context, bookingID types.ID) (*Payment, error) {
	return s.store.GetByBooking(ctx, bookingID)
}
