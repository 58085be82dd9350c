package domain

import (
	"encoding/json"
	"time"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled:
		return true
	}
	return false
}

const (
	BookingTypeFlight = "flight"
	DefaultCurrency   = "INR"
)

// Metadata keys written by the booking lifecycle.
const (
	MetaPaymentMethod      = "payment_method"
	MetaPaymentID          = "payment_id"
	MetaCancellationReason = "cancellation_reason"
)

type Booking struct {
	ID              string         `json:"id"`
	UserID          int64          `json:"user_id"`
	BookingType     string         `json:"booking_type"`
	PNR             string         `json:"pnr"`
	Status          BookingStatus  `json:"status"`
	TotalAmount     float64        `json:"total_amount"`
	Currency        string         `json:"currency"`
	BookingDate     time.Time      `json:"booking_date"`
	TravelDate      time.Time      `json:"travel_date"`
	PassengersCount int            `json:"passengers_count"`
	ContactEmail    string         `json:"contact_email"`
	ContactPhone    string         `json:"contact_phone"`
	Metadata        map[string]any `json:"metadata"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

type FlightBooking struct {
	ID              string            `json:"id"`
	BookingID       string            `json:"booking_id"`
	AirlineCode     string            `json:"airline_code"`
	FlightNumber    string            `json:"flight_number"`
	FromAirport     string            `json:"from_airport"`
	ToAirport       string            `json:"to_airport"`
	DepartureTime   time.Time         `json:"departure_time"`
	ArrivalTime     time.Time         `json:"arrival_time"`
	CabinClass      string            `json:"cabin_class"`
	BookingClass    string            `json:"booking_class"`
	Passengers      []json.RawMessage `json:"passengers"`
	BaggageInfo     json.RawMessage   `json:"baggage_info"`
	SeatInfo        json.RawMessage   `json:"seat_info,omitempty"`
	MealPreferences json.RawMessage   `json:"meal_preferences,omitempty"`
	TicketNumbers   []string          `json:"ticket_numbers"`
	CreatedAt       time.Time         `json:"created_at"`
}

// BookingWithFlights is a booking together with its flight segments.
type BookingWithFlights struct {
	Booking       *Booking        `json:"booking"`
	FlightDetails []FlightBooking `json:"flightDetails"`
}

// BookingListItem renders the booking fields inline next to its flights.
type BookingListItem struct {
	Booking
	FlightDetails []FlightBooking `json:"flightDetails"`
}

type UserStats struct {
	TotalBookings     int     `json:"total_bookings"`
	ConfirmedBookings int     `json:"confirmed_bookings"`
	CancelledBookings int     `json:"cancelled_bookings"`
	TotalSpent        float64 `json:"total_spent"`
}
