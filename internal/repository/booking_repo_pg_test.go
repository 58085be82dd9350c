package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/Domenick1991/trypguide/internal/apperror"
	"github.com/Domenick1991/trypguide/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBookingID = "0b6f3c1e-8d4a-4c0e-9f59-2a7f0d6f1a11"

var bookingCols = []string{
	"id", "user_id", "booking_type", "pnr", "status", "total_amount", "currency",
	"booking_date", "travel_date", "passengers_count", "contact_email", "contact_phone", "metadata",
	"created_at", "updated_at",
}

var fixedTime = time.Date(2025, 12, 1, 9, 30, 0, 0, time.UTC)

func bookingRows(mock pgxmock.PgxPoolIface, status string, meta string) *pgxmock.Rows {
	return mock.NewRows(bookingCols).AddRow(
		testBookingID, int64(7), "flight", "ABC123", status, 4500.0, "INR",
		fixedTime, fixedTime, 1, "a@b.com", "9876543210", []byte(meta),
		fixedTime, fixedTime,
	)
}

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func sampleBooking() *domain.Booking {
	return &domain.Booking{
		ID:              testBookingID,
		UserID:          7,
		BookingType:     domain.BookingTypeFlight,
		PNR:             "ABC123",
		Status:          domain.BookingStatusPending,
		TotalAmount:     4500,
		TravelDate:      fixedTime,
		PassengersCount: 1,
		ContactEmail:    "a@b.com",
		ContactPhone:    "9876543210",
		Metadata:        map[string]any{domain.MetaPaymentMethod: "card"},
	}
}

func TestPGBookingRepository_Create(t *testing.T) {
	mock := newMockPool(t)
	repo := NewBookingRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO bookings")).
		WithArgs(testBookingID, int64(7), "flight", "ABC123", "pending", 4500.0, "INR",
			pgxmock.AnyArg(), 1, "a@b.com", "9876543210", []byte(`{"payment_method":"card"}`)).
		WillReturnRows(bookingRows(mock, "pending", `{"payment_method":"card"}`))

	got, err := repo.Create(context.Background(), sampleBooking())
	require.NoError(t, err)

	assert.Equal(t, testBookingID, got.ID)
	assert.Equal(t, domain.BookingStatusPending, got.Status)
	assert.Equal(t, "INR", got.Currency)
	assert.Equal(t, "card", got.Metadata[domain.MetaPaymentMethod])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGBookingRepository_Create_DuplicatePNR(t *testing.T) {
	mock := newMockPool(t)
	repo := NewBookingRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO bookings")).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "bookings_pnr_key"})

	_, err := repo.Create(context.Background(), sampleBooking())

	assert.ErrorIs(t, err, ErrDuplicatePNR)
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestPGBookingRepository_Create_UnknownUser(t *testing.T) {
	mock := newMockPool(t)
	repo := NewBookingRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO bookings")).
		WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: "bookings_user_id_fkey"})

	_, err := repo.Create(context.Background(), sampleBooking())

	assert.ErrorIs(t, err, apperror.ErrInvalidReference)
	assert.NotErrorIs(t, err, ErrDuplicatePNR)
}

func TestPGBookingRepository_Create_ValueTooLong(t *testing.T) {
	mock := newMockPool(t)
	repo := NewBookingRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO bookings")).
		WillReturnError(&pgconn.PgError{Code: "22001", Message: "value too long for type character varying(3)"})

	_, err := repo.Create(context.Background(), sampleBooking())

	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.KindValidation, appErr.Kind)
}

func TestPGBookingRepository_CreateWithFlight(t *testing.T) {
	mock := newMockPool(t)
	repo := NewBookingRepository(mock)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO bookings")).
		WillReturnRows(bookingRows(mock, "pending", `{}`))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO flight_bookings")).
		WithArgs(pgxmock.AnyArg(), testBookingID, "6E", "6E203", "DEL", "BOM",
			pgxmock.AnyArg(), pgxmock.AnyArg(), "Economy", "Economy",
			[]byte(`[{"name":"A"}]`), []byte(`{"checkin":"15 Kg"}`), []byte(nil), []byte(nil), []string{}).
		WillReturnRows(flightBookingRows(mock))
	mock.ExpectCommit()

	b, f, err := repo.CreateWithFlight(context.Background(), sampleBooking(), sampleFlightBooking())
	require.NoError(t, err)

	assert.Equal(t, testBookingID, b.ID)
	assert.Equal(t, testBookingID, f.BookingID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGBookingRepository_CreateWithFlight_RollsBack(t *testing.T) {
	mock := newMockPool(t)
	repo := NewBookingRepository(mock)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO bookings")).
		WillReturnRows(bookingRows(mock, "pending", `{}`))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO flight_bookings")).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, _, err := repo.CreateWithFlight(context.Background(), sampleBooking(), sampleFlightBooking())

	assert.Equal(t, apperror.KindInternal, apperror.KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGBookingRepository_GetByID(t *testing.T) {
	mock := newMockPool(t)
	repo := NewBookingRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("FROM bookings WHERE id = $1")).
		WithArgs(testBookingID).
		WillReturnRows(bookingRows(mock, "confirmed", `{"payment_id":"pay_1"}`))

	got, err := repo.GetByID(context.Background(), testBookingID)
	require.NoError(t, err)

	assert.Equal(t, domain.BookingStatusConfirmed, got.Status)
	assert.Equal(t, "pay_1", got.Metadata[domain.MetaPaymentID])
}

func TestPGBookingRepository_GetByID_NotFound(t *testing.T) {
	mock := newMockPool(t)
	repo := NewBookingRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("FROM bookings WHERE id = $1")).
		WithArgs(testBookingID).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), testBookingID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestPGBookingRepository_GetByID_MalformedID(t *testing.T) {
	mock := newMockPool(t)
	repo := NewBookingRepository(mock)

	_, err := repo.GetByID(context.Background(), "not-a-uuid")

	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGBookingRepository_GetByPNR(t *testing.T) {
	mock := newMockPool(t)
	repo := NewBookingRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("FROM bookings WHERE pnr = $1")).
		WithArgs("ABC123").
		WillReturnRows(bookingRows(mock, "pending", `{}`))

	got, err := repo.GetByPNR(context.Background(), "ABC123")
	require.NoError(t, err)
	assert.Equal(t, "ABC123", got.PNR)
}

func TestPGBookingRepository_ListByUser(t *testing.T) {
	mock := newMockPool(t)
	repo := NewBookingRepository(mock)

	rows := bookingRows(mock, "pending", `{}`).AddRow(
		"9c1d1f0e-0000-4000-8000-000000000002", int64(7), "flight", "XYZ789", "cancelled", 3000.0, "INR",
		fixedTime, fixedTime, 2, "a@b.com", "9876543210", []byte(`{"cancellation_reason":"x"}`),
		fixedTime, fixedTime,
	)
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY booking_date DESC")).
		WithArgs(int64(7), 10, 0).
		WillReturnRows(rows)

	got, err := repo.ListByUser(context.Background(), 7, 10, 0)
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, "XYZ789", got[1].PNR)
	assert.Equal(t, domain.BookingStatusCancelled, got[1].Status)
}

func TestPGBookingRepository_UpdateStatus(t *testing.T) {
	mock := newMockPool(t)
	repo := NewBookingRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE bookings")).
		WithArgs("confirmed", testBookingID).
		WillReturnRows(bookingRows(mock, "confirmed", `{}`))

	got, err := repo.UpdateStatus(context.Background(), testBookingID, domain.BookingStatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusConfirmed, got.Status)
}

func TestPGBookingRepository_TransitionStatus(t *testing.T) {
	mock := newMockPool(t)
	repo := NewBookingRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $3 AND status = ANY($4)")).
		WithArgs("confirmed", []byte(`{"payment_id":"pay_1"}`), testBookingID, []string{"pending"}).
		WillReturnRows(bookingRows(mock, "confirmed", `{"payment_id":"pay_1"}`))

	got, err := repo.TransitionStatus(context.Background(), testBookingID,
		[]domain.BookingStatus{domain.BookingStatusPending}, domain.BookingStatusConfirmed,
		map[string]any{domain.MetaPaymentID: "pay_1"})
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusConfirmed, got.Status)
}

func TestPGBookingRepository_TransitionStatus_Stale(t *testing.T) {
	mock := newMockPool(t)
	repo := NewBookingRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("status = ANY($4)")).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.TransitionStatus(context.Background(), testBookingID,
		[]domain.BookingStatus{domain.BookingStatusPending}, domain.BookingStatusConfirmed, nil)
	assert.ErrorIs(t, err, ErrStaleState)
}

func TestPGBookingRepository_Cancel(t *testing.T) {
	mock := newMockPool(t)
	repo := NewBookingRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("COALESCE(metadata, '{}'::jsonb) || $2::jsonb")).
		WithArgs("cancelled", []byte(`{"cancellation_reason":"plans changed"}`), testBookingID, []string{"pending", "confirmed"}).
		WillReturnRows(bookingRows(mock, "cancelled", `{"cancellation_reason":"plans changed"}`))

	got, err := repo.Cancel(context.Background(), testBookingID, "plans changed")
	require.NoError(t, err)

	assert.Equal(t, domain.BookingStatusCancelled, got.Status)
	assert.Equal(t, "plans changed", got.Metadata[domain.MetaCancellationReason])
}

func TestPGBookingRepository_UserStats(t *testing.T) {
	mock := newMockPool(t)
	repo := NewBookingRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("FILTER (WHERE status = 'confirmed')")).
		WithArgs(int64(7)).
		WillReturnRows(mock.NewRows([]string{"total", "confirmed", "cancelled", "spent"}).AddRow(5, 2, 1, 12500.5))

	got, err := repo.UserStats(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, &domain.UserStats{TotalBookings: 5, ConfirmedBookings: 2, CancelledBookings: 1, TotalSpent: 12500.5}, got)
}
