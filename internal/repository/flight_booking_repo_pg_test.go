package repository

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/Domenick1991/trypguide/internal/apperror"
	"github.com/Domenick1991/trypguide/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFlightBookingID = "5a2e9d4b-7c61-4f3a-b8d0-6e1f2c3d4e5f"

var flightBookingCols = []string{
	"id", "booking_id", "airline_code", "flight_number", "from_airport", "to_airport",
	"departure_time", "arrival_time", "cabin_class", "booking_class", "passengers", "baggage_info",
	"seat_info", "meal_preferences", "ticket_numbers", "created_at",
}

func flightBookingRowsWith(mock pgxmock.PgxPoolIface, seat []byte, tickets []string) *pgxmock.Rows {
	return mock.NewRows(flightBookingCols).AddRow(
		testFlightBookingID, testBookingID, "6E", "6E203", "DEL", "BOM",
		fixedTime, fixedTime.Add(2*time.Hour), "Economy", "Economy",
		[]byte(`[{"name":"A"}]`), []byte(`{"checkin":"15 Kg"}`),
		seat, []byte(nil), tickets, fixedTime,
	)
}

func flightBookingRows(mock pgxmock.PgxPoolIface) *pgxmock.Rows {
	return flightBookingRowsWith(mock, []byte(nil), []string{})
}

func sampleFlightBooking() *domain.FlightBooking {
	return &domain.FlightBooking{
		AirlineCode:   "6E",
		FlightNumber:  "6E203",
		FromAirport:   "DEL",
		ToAirport:     "BOM",
		DepartureTime: fixedTime,
		ArrivalTime:   fixedTime.Add(2*time.Hour),
		CabinClass:    "Economy",
		BookingClass:  "Economy",
		Passengers:    []json.RawMessage{json.RawMessage(`{"name":"A"}`)},
		BaggageInfo:   json.RawMessage(`{"checkin":"15 Kg"}`),
	}
}

func TestPGFlightBookingRepository_Create(t *testing.T) {
	mock := newMockPool(t)
	repo := NewFlightBookingRepository(mock)

	fb := sampleFlightBooking()
	fb.BookingID = testBookingID
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO flight_bookings")).
		WillReturnRows(flightBookingRows(mock))

	got, err := repo.Create(context.Background(), fb)
	require.NoError(t, err)

	assert.Equal(t, testFlightBookingID, got.ID)
	require.Len(t, got.Passengers, 1)
	assert.JSONEq(t, `{"name":"A"}`, string(got.Passengers[0]))
	assert.Nil(t, got.SeatInfo)
	assert.Equal(t, []string{}, got.TicketNumbers)
}

func TestPGFlightBookingRepository_ListByBookingID(t *testing.T) {
	mock := newMockPool(t)
	repo := NewFlightBookingRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE booking_id = $1")).
		WithArgs(testBookingID).
		WillReturnRows(flightBookingRows(mock))

	got, err := repo.ListByBookingID(context.Background(), testBookingID)
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "6E203", got[0].FlightNumber)
}

func TestPGFlightBookingRepository_GetByID_NotFound(t *testing.T) {
	mock := newMockPool(t)
	repo := NewFlightBookingRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("FROM flight_bookings WHERE id = $1")).
		WithArgs(testFlightBookingID).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), testFlightBookingID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestPGFlightBookingRepository_UpdateSeats(t *testing.T) {
	mock := newMockPool(t)
	repo := NewFlightBookingRepository(mock)

	seat := []byte(`{"A":"12C"}`)
	mock.ExpectQuery(regexp.QuoteMeta("SET seat_info = $1")).
		WithArgs(seat, testFlightBookingID).
		WillReturnRows(flightBookingRowsWith(mock, seat, []string{}))

	got, err := repo.UpdateSeats(context.Background(), testFlightBookingID, json.RawMessage(seat))
	require.NoError(t, err)
	assert.JSONEq(t, `{"A":"12C"}`, string(got.SeatInfo))
}

func TestPGFlightBookingRepository_UpdateMeals(t *testing.T) {
	mock := newMockPool(t)
	repo := NewFlightBookingRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("SET meal_preferences = $1")).
		WithArgs([]byte(`{"A":"veg"}`), testFlightBookingID).
		WillReturnRows(flightBookingRows(mock))

	_, err := repo.UpdateMeals(context.Background(), testFlightBookingID, json.RawMessage(`{"A":"veg"}`))
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGFlightBookingRepository_UpdateTicketNumbers(t *testing.T) {
	mock := newMockPool(t)
	repo := NewFlightBookingRepository(mock)

	tickets := []string{"0981234567890"}
	mock.ExpectQuery(regexp.QuoteMeta("SET ticket_numbers = $1")).
		WithArgs(tickets, testFlightBookingID).
		WillReturnRows(flightBookingRowsWith(mock, []byte(nil), tickets))

	got, err := repo.UpdateTicketNumbers(context.Background(), testFlightBookingID, tickets)
	require.NoError(t, err)
	assert.Equal(t, tickets, got.TicketNumbers)
}

func TestPGFlightBookingRepository_Update_MalformedID(t *testing.T) {
	mock := newMockPool(t)
	repo := NewFlightBookingRepository(mock)

	_, err := repo.UpdateSeats(context.Background(), "nope", json.RawMessage(`{}`))
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
