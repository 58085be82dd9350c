package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Domenick1991/trypguide/internal/apperror"
	"github.com/Domenick1991/trypguide/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	CreateWithFlight(ctx context.Context, booking *domain.Booking, flight *domain.FlightBooking) (*domain.Booking, *domain.FlightBooking, error)
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	GetByPNR(ctx context.Context, pnr string) (*domain.Booking, error)
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Booking, error)
	UpdateStatus(ctx context.Context, id string, status domain.BookingStatus) (*domain.Booking, error)
	TransitionStatus(ctx context.Context, id string, from []domain.BookingStatus, to domain.BookingStatus, patch map[string]any) (*domain.Booking, error)
	Cancel(ctx context.Context, id, reason string) (*domain.Booking, error)
	UserStats(ctx context.Context, userID int64) (*domain.UserStats, error)
}

type PGBookingRepository struct {
	db DB
}

func NewBookingRepository(db DB) *PGBookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingNotFound = "Booking not found"

const bookingColumns = `id::text, user_id, booking_type, pnr, status, total_amount::float8, currency,
	booking_date, travel_date, passengers_count, contact_email, contact_phone, metadata, created_at, updated_at`

const insertBookingSQL = `INSERT INTO bookings (
		id, user_id, booking_type, pnr, status, total_amount, currency,
		booking_date, travel_date, passengers_count, contact_email, contact_phone, metadata
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), $8, $9, $10, $11, $12)
	RETURNING ` + bookingColumns

func (r *PGBookingRepository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	return insertBooking(ctx, r.db, booking)
}

// CreateWithFlight stores a booking and its flight segment atomically.
func (r *PGBookingRepository) CreateWithFlight(ctx context.Context, booking *domain.Booking, flight *domain.FlightBooking) (*domain.Booking, *domain.FlightBooking, error) {
	var (
		storedBooking *domain.Booking
		storedFlight  *domain.FlightBooking
	)
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		b, err := insertBooking(ctx, tx, booking)
		if err != nil {
			return err
		}
		fb := *flight
		fb.BookingID = b.ID
		f, err := insertFlightBooking(ctx, tx, &fb)
		if err != nil {
			return err
		}
		storedBooking, storedFlight = b, f
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return storedBooking, storedFlight, nil
}

func insertBooking(ctx context.Context, q querier, b *domain.Booking) (*domain.Booking, error) {
	id := b.ID
	if id == "" {
		id = uuid.NewString()
	}
	currency := b.Currency
	if currency == "" {
		currency = domain.DefaultCurrency
	}
	metadata := b.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	meta, err := json.Marshal(metadata)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("encode metadata: %w", err))
	}

	row := q.QueryRow(ctx, insertBookingSQL,
		id, b.UserID, b.BookingType, b.PNR, string(b.Status), b.TotalAmount, currency,
		b.TravelDate, b.PassengersCount, b.ContactEmail, b.ContactPhone, meta,
	)
	stored, err := scanBooking(row)
	if err != nil {
		return nil, translate(err, bookingNotFound)
	}
	return stored, nil
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperror.NotFound(bookingNotFound)
	}
	b, err := scanBooking(r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id))
	if err != nil {
		return nil, translate(err, bookingNotFound)
	}
	return b, nil
}

func (r *PGBookingRepository) GetByPNR(ctx context.Context, pnr string) (*domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE pnr = $1`, pnr))
	if err != nil {
		return nil, translate(err, bookingNotFound)
	}
	return b, nil
}

func (r *PGBookingRepository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings
		WHERE user_id = $1
		ORDER BY booking_date DESC
		LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, translate(err, bookingNotFound)
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, translate(err, bookingNotFound)
		}
		bookings = append(bookings, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err, bookingNotFound)
	}
	return bookings, nil
}

// UpdateStatus overwrites the status whatever it currently is.
func (r *PGBookingRepository) UpdateStatus(ctx context.Context, id string, status domain.BookingStatus) (*domain.Booking, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperror.NotFound(bookingNotFound)
	}
	b, err := scanBooking(r.db.QueryRow(ctx, `UPDATE bookings
		SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING `+bookingColumns, string(status), id))
	if err != nil {
		return nil, translate(err, bookingNotFound)
	}
	return b, nil
}

// TransitionStatus moves a booking to status to only while its current status
// is one of from, merging patch into metadata. It returns ErrStaleState when
// no row qualified.
func (r *PGBookingRepository) TransitionStatus(ctx context.Context, id string, from []domain.BookingStatus, to domain.BookingStatus, patch map[string]any) (*domain.Booking, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperror.NotFound(bookingNotFound)
	}
	if patch == nil {
		patch = map[string]any{}
	}
	payload, err := json.Marshal(patch)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("encode metadata patch: %w", err))
	}
	allowed := make([]string, len(from))
	for i, s := range from {
		allowed[i] = string(s)
	}

	b, err := scanBooking(r.db.QueryRow(ctx, `UPDATE bookings
		SET status = $1,
			metadata = COALESCE(metadata, '{}'::jsonb) || $2::jsonb,
			updated_at = NOW()
		WHERE id = $3 AND status = ANY($4)
		RETURNING `+bookingColumns, string(to), payload, id, allowed))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStaleState
		}
		return nil, translate(err, bookingNotFound)
	}
	return b, nil
}

// Cancel marks a not-yet-cancelled booking cancelled and records reason.
func (r *PGBookingRepository) Cancel(ctx context.Context, id, reason string) (*domain.Booking, error) {
	return r.TransitionStatus(ctx, id,
		[]domain.BookingStatus{domain.BookingStatusPending, domain.BookingStatusConfirmed},
		domain.BookingStatusCancelled,
		map[string]any{domain.MetaCancellationReason: reason},
	)
}

func (r *PGBookingRepository) UserStats(ctx context.Context, userID int64) (*domain.UserStats, error) {
	var s domain.UserStats
	err := r.db.QueryRow(ctx, `SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'confirmed'),
			COUNT(*) FILTER (WHERE status = 'cancelled'),
			COALESCE(SUM(total_amount), 0)::float8
		FROM bookings
		WHERE user_id = $1`, userID).
		Scan(&s.TotalBookings, &s.ConfirmedBookings, &s.CancelledBookings, &s.TotalSpent)
	if err != nil {
		return nil, translate(err, bookingNotFound)
	}
	return &s, nil
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var (
		b      domain.Booking
		status string
		meta   []byte
	)
	if err := row.Scan(&b.ID, &b.UserID, &b.BookingType, &b.PNR, &status, &b.TotalAmount, &b.Currency,
		&b.BookingDate, &b.TravelDate, &b.PassengersCount, &b.ContactEmail, &b.ContactPhone, &meta,
		&b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	b.Status = domain.BookingStatus(status)
	b.Metadata = map[string]any{}
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &b.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata: %w", err)
		}
	}
	return &b, nil
}

var _ BookingRepository = (*PGBookingRepository)(nil)
