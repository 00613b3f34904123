// README: Payment store backed by PostgreSQL.
package payment

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ridebook/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Insert stores p unless the booking already has a payment. It reports
// whether a row was written.
func (s *Store) Insert(ctx context.Context, p *Payment) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		INSERT INTO payments (
			id, booking_id, customer_id, amount, currency, method, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (booking_id) DO NOTHING`,
		string(p.ID),
		string(p.BookingID),
		string(p.CustomerID),
		p.Amount.Amount,
		p.Amount.Currency,
		string(p.Method),
		string(p.Status),
		p.CreatedAt,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) GetByBooking(ctx context.Context, bookingID types.ID) (*Payment, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, booking_id, customer_id, amount::float8, currency, method, status, created_at
		FROM payments
		WHERE booking_id = $1`, string(bookingID),
	)
	var p Payment
	err := row.Scan(
		&p.ID, &p.BookingID, &p.CustomerID,
		&p.Amount.Amount, &p.Amount.Currency,
		&p.Method, &p.Status, &p.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
