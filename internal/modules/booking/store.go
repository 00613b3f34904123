// README: Booking store backed by PostgreSQL; confirmation runs in one transaction.
package booking

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"ridebook/internal/modules/pricing"
	"ridebook/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Create inserts a booking as the intake flow would. Intake itself is
// outside the pricing core, so store tests and local seeding are its callers.
func (s *Store) Create(ctx context.Context, b *Booking) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO bookings (
			id, customer_id, service_type, vehicle_type,
			pickup_address, dropoff_address, wedding_days,
			payment_method, status, status_version, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)`,
		string(b.ID),
		string(b.CustomerID),
		string(b.ServiceType),
		string(b.VehicleType),
		b.PickupAddress,
		b.DropoffAddress,
		b.WeddingDays,
		string(b.PaymentMethod),
		string(b.Status),
		b.StatusVersion,
		b.CreatedAt,
	)
	return err
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Booking, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, customer_id, service_type, vehicle_type,
		       pickup_address, dropoff_address, wedding_days,
		       payment_method, status, status_version,
		       proposed_distance_km::float8, proposed_price_per_km::float8, proposed_days,
		       proposed_rate_per_day::float8, proposed_price::float8, proposed_at,
		       admin_calculated_distance::float8, admin_price_per_km::float8, admin_wedding_days,
		       admin_set_price::float8, is_price_confirmed, confirmed_by, confirmed_at,
		       created_at, updated_at
		FROM bookings
		WHERE id = $1`, string(id),
	)

	var b Booking
	var proposedDistance, proposedRate, proposedRatePerDay, proposedPrice sql.NullFloat64
	var proposedDays sql.NullInt64
	var proposedAt, confirmedAt sql.NullTime
	var adminDistance, adminRate, adminPrice sql.NullFloat64
	var adminDays sql.NullInt64
	var isConfirmed bool
	var confirmedBy sql.NullString

	err := row.Scan(
		&b.ID, &b.CustomerID, &b.ServiceType, &b.VehicleType,
		&b.PickupAddress, &b.DropoffAddress, &b.WeddingDays,
		&b.PaymentMethod, &b.Status, &b.StatusVersion,
		&proposedDistance, &proposedRate, &proposedDays,
		&proposedRatePerDay, &proposedPrice, &proposedAt,
		&adminDistance, &adminRate, &adminDays,
		&adminPrice, &isConfirmed, &confirmedBy, &confirmedAt,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if proposedPrice.Valid {
		b.Proposal = &pricing.Proposal{
			ServiceType:    b.ServiceType,
			VehicleType:    b.VehicleType,
			DistanceKm:     proposedDistance.Float64,
			PricePerKm:     proposedRate.Float64,
			Days:           int(proposedDays.Int64),
			FlatRatePerDay: proposedRatePerDay.Float64,
			ComputedPrice:  proposedPrice.Float64,
			Currency:       types.CurrencyLKR,
		}
		b.ProposedAt = toTimePtr(proposedAt)
	}
	if isConfirmed {
		b.Confirmed = &pricing.ConfirmedPricing{
			ServiceType:             b.ServiceType,
			AdminCalculatedDistance: adminDistance.Float64,
			PricePerKm:              adminRate.Float64,
			WeddingDays:             int(adminDays.Int64),
			AdminSetPrice:           adminPrice.Float64,
			IsPriceConfirmed:        true,
		}
		if confirmedBy.Valid {
			v := types.ID(confirmedBy.String)
			b.ConfirmedBy = &v
		}
		b.ConfirmedAt = toTimePtr(confirmedAt)
	}
	return &b, nil
}

// SaveProposal replaces any earlier proposal on a pending booking. It
// reports false when the booking moved on since version was read.
func (s *Store) SaveProposal(ctx context.Context, id types.ID, version int, p pricing.Proposal, at time.Time) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE bookings
		SET proposed_distance_km = $1,
		    proposed_price_per_km = $2,
		    proposed_days = $3,
		    proposed_rate_per_day = $4,
		    proposed_price = $5,
		    proposed_at = $6,
		    updated_at = $6,
		    status_version = status_version + 1
		WHERE id = $7 AND status = $8 AND status_version = $9 AND NOT is_price_confirmed`,
		nullIfZero(p.DistanceKm),
		nullIfZero(p.PricePerKm),
		nullIfZeroInt(p.Days),
		nullIfZero(p.FlatRatePerDay),
		p.ComputedPrice,
		at,
		string(id),
		string(StatusPending),
		version,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// ConfirmPricing stores the confirmed price, moves the booking to
// confirmed and appends the audit event in a single transaction.
func (s *Store) ConfirmPricing(ctx context.Context, id types.ID, version int, c pricing.ConfirmedPricing, adminID types.ID, at time.Time) (bool, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		UPDATE bookings
		SET admin_calculated_distance = $1,
		    admin_price_per_km = $2,
		    admin_wedding_days = $3,
		    admin_set_price = $4,
		    is_price_confirmed = TRUE,
		    confirmed_by = $5,
		    confirmed_at = $6,
		    updated_at = $6,
		    status = $7,
		    status_version = status_version + 1
		WHERE id = $8 AND status = $9 AND status_version = $10`,
		nullIfZero(c.AdminCalculatedDistance),
		nullIfZero(c.PricePerKm),
		nullIfZeroInt(c.WeddingDays),
		c.AdminSetPrice,
		string(adminID),
		at,
		string(StatusConfirmed),
		string(id),
		string(StatusPending),
		version,
	)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() != 1 {
		return false, nil
	}

	if err := insertEvent(ctx, tx, &Event{
		BookingID:  id,
		Kind:       EventConfirmed,
		ActorType:  "admin",
		ActorID:    &adminID,
		Amount:     c.AdminSetPrice,
		FromStatus: StatusPending,
		ToStatus:   StatusConfirmed,
		CreatedAt:  at,
	}); err != nil {
		return false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) AppendEvent(ctx context.Context, e *Event) error {
	return insertEvent(ctx, s.db, e)
}

// ListEvents returns the pricing audit trail, oldest first.
func (s *Store) ListEvents(ctx context.Context, id types.ID) ([]Event, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, booking_id, kind, actor_type, actor_id, amount::float8, from_status, to_status, created_at
		FROM booking_pricing_events
		WHERE booking_id = $1
		ORDER BY id`, string(id),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		var actorID sql.NullString
		if err := rows.Scan(&e.ID, &e.BookingID, &e.Kind, &e.ActorType, &actorID, &e.Amount, &e.FromStatus, &e.ToStatus, &e.CreatedAt); err != nil {
			return nil, err
		}
		if actorID.Valid {
			v := types.ID(actorID.String)
			e.ActorID = &v
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// execer is satisfied by both the pool and a transaction.
type execer interface {
	Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
}

func insertEvent(ctx context.Context, db execer, e *Event) error {
	_, err := db.Exec(ctx, `
		INSERT INTO booking_pricing_events (
			booking_id, kind, actor_type, actor_id, amount, from_status, to_status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		string(e.BookingID),
		string(e.Kind),
		e.ActorType,
		toStringPtr(e.ActorID),
		e.Amount,
		string(e.FromStatus),
		string(e.ToStatus),
		e.CreatedAt,
	)
	return err
}

func nullIfZero(v float64) *float64 {
	if v == 0 {
		return nil
	}
	return &v
}

func nullIfZeroInt(v int) *int {
	if v == 0 {
		return nil
	}
	return &v
}

func toStringPtr(v *types.ID) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}

func toTimePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}
