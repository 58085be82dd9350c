package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Domenick1991/trypguide/internal/apperror"
	"github.com/Domenick1991/trypguide/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type FlightBookingRepository interface {
	Create(ctx context.Context, flight *domain.FlightBooking) (*domain.FlightBooking, error)
	ListByBookingID(ctx context.Context, bookingID string) ([]domain.FlightBooking, error)
	GetByID(ctx context.Context, id string) (*domain.FlightBooking, error)
	UpdateSeats(ctx context.Context, id string, seatInfo json.RawMessage) (*domain.FlightBooking, error)
	UpdateMeals(ctx context.Context, id string, meals json.RawMessage) (*domain.FlightBooking, error)
	UpdateTicketNumbers(ctx context.Context, id string, tickets []string) (*domain.FlightBooking, error)
}

type PGFlightBookingRepository struct {
	db DB
}

func NewFlightBookingRepository(db DB) *PGFlightBookingRepository {
	return &PGFlightBookingRepository{db: db}
}

const flightBookingNotFound = "Flight booking not found"

const flightBookingColumns = `id::text, booking_id::text, airline_code, flight_number, from_airport, to_airport,
	departure_time, arrival_time, cabin_class, booking_class, passengers, baggage_info,
	seat_info, meal_preferences, ticket_numbers, created_at`

func (r *PGFlightBookingRepository) Create(ctx context.Context, flight *domain.FlightBooking) (*domain.FlightBooking, error) {
	return insertFlightBooking(ctx, r.db, flight)
}

func insertFlightBooking(ctx context.Context, q querier, f *domain.FlightBooking) (*domain.FlightBooking, error) {
	id := f.ID
	if id == "" {
		id = uuid.NewString()
	}
	passengers := f.Passengers
	if passengers == nil {
		passengers = []json.RawMessage{}
	}
	paxJSON, err := json.Marshal(passengers)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("encode passengers: %w", err))
	}
	baggage := []byte(f.BaggageInfo)
	if len(baggage) == 0 {
		baggage = []byte("{}")
	}
	tickets := f.TicketNumbers
	if tickets == nil {
		tickets = []string{}
	}

	row := q.QueryRow(ctx, `INSERT INTO flight_bookings (
			id, booking_id, airline_code, flight_number, from_airport, to_airport,
			departure_time, arrival_time, cabin_class, booking_class, passengers,
			baggage_info, seat_info, meal_preferences, ticket_numbers
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING `+flightBookingColumns,
		id, f.BookingID, f.AirlineCode, f.FlightNumber, f.FromAirport, f.ToAirport,
		f.DepartureTime, f.ArrivalTime, f.CabinClass, f.BookingClass, paxJSON,
		baggage, nullableJSON(f.SeatInfo), nullableJSON(f.MealPreferences), tickets,
	)
	stored, err := scanFlightBooking(row)
	if err != nil {
		return nil, translate(err, flightBookingNotFound)
	}
	return stored, nil
}

func (r *PGFlightBookingRepository) ListByBookingID(ctx context.Context, bookingID string) ([]domain.FlightBooking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+flightBookingColumns+` FROM flight_bookings
		WHERE booking_id = $1
		ORDER BY departure_time`, bookingID)
	if err != nil {
		return nil, translate(err, flightBookingNotFound)
	}
	defer rows.Close()

	flights := make([]domain.FlightBooking, 0, 1)
	for rows.Next() {
		f, err := scanFlightBooking(rows)
		if err != nil {
			return nil, translate(err, flightBookingNotFound)
		}
		flights = append(flights, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err, flightBookingNotFound)
	}
	return flights, nil
}

func (r *PGFlightBookingRepository) GetByID(ctx context.Context, id string) (*domain.FlightBooking, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperror.NotFound(flightBookingNotFound)
	}
	f, err := scanFlightBooking(r.db.QueryRow(ctx, `SELECT `+flightBookingColumns+` FROM flight_bookings WHERE id = $1`, id))
	if err != nil {
		return nil, translate(err, flightBookingNotFound)
	}
	return f, nil
}

func (r *PGFlightBookingRepository) UpdateSeats(ctx context.Context, id string, seatInfo json.RawMessage) (*domain.FlightBooking, error) {
	return r.update(ctx, id, "seat_info", nullableJSON(seatInfo))
}

func (r *PGFlightBookingRepository) UpdateMeals(ctx context.Context, id string, meals json.RawMessage) (*domain.FlightBooking, error) {
	return r.update(ctx, id, "meal_preferences", nullableJSON(meals))
}

func (r *PGFlightBookingRepository) UpdateTicketNumbers(ctx context.Context, id string, tickets []string) (*domain.FlightBooking, error) {
	if tickets == nil {
		tickets = []string{}
	}
	return r.update(ctx, id, "ticket_numbers", tickets)
}

// update overwrites one column. column is always a package constant.
func (r *PGFlightBookingRepository) update(ctx context.Context, id, column string, value any) (*domain.FlightBooking, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperror.NotFound(flightBookingNotFound)
	}
	f, err := scanFlightBooking(r.db.QueryRow(ctx, `UPDATE flight_bookings
		SET `+column+` = $1
		WHERE id = $2
		RETURNING `+flightBookingColumns, value, id))
	if err != nil {
		return nil, translate(err, flightBookingNotFound)
	}
	return f, nil
}

func nullableJSON(raw json.RawMessage) []byte {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return []byte(raw)
}

func scanFlightBooking(row pgx.Row) (*domain.FlightBooking, error) {
	var (
		f                   domain.FlightBooking
		passengers, baggage []byte
		seatInfo, mealPrefs []byte
	)
	if err := row.Scan(&f.ID, &f.BookingID, &f.AirlineCode, &f.FlightNumber, &f.FromAirport, &f.ToAirport,
		&f.DepartureTime, &f.ArrivalTime, &f.CabinClass, &f.BookingClass, &passengers, &baggage,
		&seatInfo, &mealPrefs, &f.TicketNumbers, &f.CreatedAt); err != nil {
		return nil, err
	}
	f.Passengers = []json.RawMessage{}
	if len(passengers) > 0 {
		if err := json.Unmarshal(passengers, &f.Passengers); err != nil {
			return nil, fmt.Errorf("decode passengers: %w", err)
		}
	}
	if len(baggage) > 0 {
		f.BaggageInfo = json.RawMessage(baggage)
	}
	if len(seatInfo) > 0 {
		f.SeatInfo = json.RawMessage(seatInfo)
	}
	if len(mealPrefs) > 0 {
		f.MealPreferences = json.RawMessage(mealPrefs)
	}
	if f.TicketNumbers == nil {
		f.TicketNumbers = []string{}
	}
	return &f, nil
}

var _ FlightBookingRepository = (*PGFlightBookingRepository)(nil)
