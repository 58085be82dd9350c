package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/Domenick1991/trypguide/internal/apperror"
	"github.com/Domenick1991/trypguide/internal/domain"
	"github.com/Domenick1991/trypguide/internal/kafka"
	"github.com/Domenick1991/trypguide/internal/logger"
	"github.com/Domenick1991/trypguide/internal/repository"
	"github.com/google/uuid"
)

const (
	DefaultListLimit = 10
	MaxListLimit     = 100

	pnrAttempts = 5
)

var (
	phonePattern       = regexp.MustCompile(`^[0-9]{10}$`)
	airportPattern     = regexp.MustCompile(`^[A-Za-z]{3}$`)
	airlinePattern     = regexp.MustCompile(`^[A-Za-z0-9]{2,3}$`)
	flightNumberFormat = regexp.MustCompile(`^[A-Za-z0-9-]{1,10}$`)
)

// Column widths of flight_bookings and bookings.
const (
	maxCabinClassLen = 20
	maxEmailLen      = 255
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, userID int64, input CreateBookingInput) (*CreateBookingResult, error)
	GetBooking(ctx context.Context, userID int64, id string) (*domain.BookingWithFlights, error)
	GetBookingByPNR(ctx context.Context, pnr string) (*domain.BookingWithFlights, error)
	ListBookings(ctx context.Context, userID int64, limit, offset int) ([]domain.BookingListItem, error)
	ConfirmBooking(ctx context.Context, userID int64, id, paymentID string) (*domain.Booking, error)
	CancelBooking(ctx context.Context, userID int64, id, reason string) (*domain.Booking, error)
	Stats(ctx context.Context, userID int64) (*domain.UserStats, error)
	UpdateSeats(ctx context.Context, userID int64, bookingID, flightBookingID string, seatInfo json.RawMessage) (*domain.FlightBooking, error)
	UpdateMeals(ctx context.Context, userID int64, bookingID, flightBookingID string, meals json.RawMessage) (*domain.FlightBooking, error)
	UpdateTicketNumbers(ctx context.Context, userID int64, bookingID, flightBookingID string, tickets []string) (*domain.FlightBooking, error)
}

type EventProducer interface {
	Publish(ctx context.Context, topic, key string, value any) error
}

type BookingService struct {
	bookings           repository.BookingRepository
	flights            repository.FlightBookingRepository
	producer           EventProducer
	bookingTopic       string
	notificationsTopic string
	log                logger.Logger
	newPNR             func() (string, error)
}

type BookingServiceOption func(*BookingService)

// WithNotificationsTopic mirrors every lifecycle event onto topic.
func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithPNRGenerator(gen func() (string, error)) BookingServiceOption {
	return func(s *BookingService) {
		s.newPNR = gen
	}
}

// NewBookingService wires the orchestrator. producer may be nil, in which case
// lifecycle events are not published.
func NewBookingService(
	bookings repository.BookingRepository,
	flights repository.FlightBookingRepository,
	producer EventProducer,
	bookingTopic string,
	log logger.Logger,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:     bookings,
		flights:      flights,
		producer:     producer,
		bookingTopic: bookingTopic,
		log:          log,
		newPNR:       repository.GeneratePNR,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

type FlightDetailsInput struct {
	AirlineCode   string          `json:"airlineCode"`
	FlightNumber  string          `json:"flightNumber"`
	From          string          `json:"from"`
	To            string          `json:"to"`
	DepartureTime time.Time       `json:"departureTime"`
	ArrivalTime   time.Time       `json:"arrivalTime"`
	CabinClass    string          `json:"cabinClass"`
	Price         float64         `json:"price"`
	Baggage       json.RawMessage `json:"baggage"`
}

type ContactInfo struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type PaymentInfo struct {
	Method string `json:"method"`
}

type CreateBookingInput struct {
	FlightDetails FlightDetailsInput `json:"flightDetails"`
	Passengers    []json.RawMessage  `json:"passengers"`
	ContactInfo   ContactInfo        `json:"contactInfo"`
	PaymentInfo   PaymentInfo        `json:"paymentInfo"`
}

type CreateBookingResult struct {
	Booking       *domain.Booking       `json:"booking"`
	FlightDetails *domain.FlightBooking `json:"flightDetails"`
	PNR           string                `json:"pnr"`
}

func (in CreateBookingInput) validate() error {
	var details []string
	fd := in.FlightDetails
	if fd.AirlineCode == "" || fd.FlightNumber == "" {
		details = append(details, "flightDetails.airlineCode and flightDetails.flightNumber are required")
	} else {
		if !airlinePattern.MatchString(fd.AirlineCode) {
			details = append(details, "flightDetails.airlineCode must be a 2-3 character airline code")
		}
		if !flightNumberFormat.MatchString(fd.FlightNumber) {
			details = append(details, "flightDetails.flightNumber must be at most 10 characters")
		}
	}
	if fd.From == "" || fd.To == "" {
		details = append(details, "flightDetails.from and flightDetails.to are required")
	} else if !airportPattern.MatchString(fd.From) || !airportPattern.MatchString(fd.To) {
		details = append(details, "flightDetails.from and flightDetails.to must be 3-letter airport codes")
	}
	if len(fd.CabinClass) > maxCabinClassLen {
		details = append(details, "flightDetails.cabinClass is too long")
	}
	if fd.DepartureTime.IsZero() {
		details = append(details, "flightDetails.departureTime is required")
	}
	if fd.Price <= 0 {
		details = append(details, "flightDetails.price must be positive")
	}
	if len(in.Passengers) == 0 {
		details = append(details, "At least one passenger is required")
	}
	if addr, err := mail.ParseAddress(in.ContactInfo.Email); err != nil || addr.Address != in.ContactInfo.Email || len(in.ContactInfo.Email) > maxEmailLen {
		details = append(details, "Valid email is required")
	}
	if !phonePattern.MatchString(in.ContactInfo.Phone) {
		details = append(details, "Valid 10-digit phone number is required")
	}
	if len(details) > 0 {
		return apperror.Validation("Validation failed", details...)
	}
	return nil
}

func (s *BookingService) CreateBooking(ctx context.Context, userID int64, input CreateBookingInput) (*CreateBookingResult, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	fd := input.FlightDetails
	cabin := fd.CabinClass
	if cabin == "" {
		cabin = domain.DefaultCabinClass
	}
	flight := &domain.FlightBooking{
		ID:            uuid.NewString(),
		AirlineCode:   fd.AirlineCode,
		FlightNumber:  fd.FlightNumber,
		FromAirport:   strings.ToUpper(fd.From),
		ToAirport:     strings.ToUpper(fd.To),
		DepartureTime: fd.DepartureTime,
		ArrivalTime:   fd.ArrivalTime,
		CabinClass:    cabin,
		BookingClass:  cabin,
		Passengers:    input.Passengers,
		BaggageInfo:   fd.Baggage,
		TicketNumbers: []string{},
	}

	var lastErr error
	for attempt := 1; attempt <= pnrAttempts; attempt++ {
		pnr, err := s.newPNR()
		if err != nil {
			return nil, apperror.Internal(err)
		}
		b := &domain.Booking{
			ID:              uuid.NewString(),
			UserID:          userID,
			BookingType:     domain.BookingTypeFlight,
			PNR:             pnr,
			Status:          domain.BookingStatusPending,
			TotalAmount:     fd.Price,
			Currency:        domain.DefaultCurrency,
			TravelDate:      fd.DepartureTime,
			PassengersCount: len(input.Passengers),
			ContactEmail:    input.ContactInfo.Email,
			ContactPhone:    input.ContactInfo.Phone,
			Metadata:        map[string]any{domain.MetaPaymentMethod: input.PaymentInfo.Method},
		}

		stored, storedFlight, err := s.bookings.CreateWithFlight(ctx, b, flight)
		if errors.Is(err, repository.ErrDuplicatePNR) {
			s.log.Warn("pnr collision, regenerating", logger.Field{Key: "attempt", Value: attempt})
			lastErr = err
			continue
		}
		if err != nil {
			return nil, err
		}

		s.log.Info("booking created",
			logger.Field{Key: "booking_id", Value: stored.ID},
			logger.Field{Key: "pnr", Value: stored.PNR},
			logger.Field{Key: "user_id", Value: userID},
		)
		s.publish(ctx, kafka.EventBookingCreated, stored)
		return &CreateBookingResult{Booking: stored, FlightDetails: storedFlight, PNR: stored.PNR}, nil
	}
	return nil, apperror.Wrap(apperror.KindConflict, "could not allocate a unique booking reference", lastErr)
}

func (s *BookingService) GetBooking(ctx context.Context, userID int64, id string) (*domain.BookingWithFlights, error) {
	b, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return s.withFlights(ctx, b)
}

// GetBookingByPNR is a public lookup; knowing the PNR is the credential.
func (s *BookingService) GetBookingByPNR(ctx context.Context, pnr string) (*domain.BookingWithFlights, error) {
	b, err := s.bookings.GetByPNR(ctx, strings.ToUpper(strings.TrimSpace(pnr)))
	if err != nil {
		return nil, err
	}
	return s.withFlights(ctx, b)
}

func (s *BookingService) ListBookings(ctx context.Context, userID int64, limit, offset int) ([]domain.BookingListItem, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	bookings, err := s.bookings.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]domain.BookingListItem, 0, len(bookings))
	for _, b := range bookings {
		flights, err := s.flights.ListByBookingID(ctx, b.ID)
		if err != nil {
			return nil, err
		}
		items = append(items, domain.BookingListItem{Booking: b, FlightDetails: flights})
	}
	return items, nil
}

// ConfirmBooking records a payment against a pending booking. Confirming an
// already confirmed booking returns it unchanged.
func (s *BookingService) ConfirmBooking(ctx context.Context, userID int64, id, paymentID string) (*domain.Booking, error) {
	current, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	switch current.Status {
	case domain.BookingStatusConfirmed:
		return current, nil
	case domain.BookingStatusCancelled:
		return nil, apperror.InvalidState("Cancelled booking cannot be confirmed")
	}

	patch := map[string]any{}
	if paymentID != "" {
		patch[domain.MetaPaymentID] = paymentID
	}
	updated, err := s.bookings.TransitionStatus(ctx, id,
		[]domain.BookingStatus{domain.BookingStatusPending}, domain.BookingStatusConfirmed, patch)
	if errors.Is(err, repository.ErrStaleState) {
		// Lost a race; settle on whatever won.
		latest, getErr := s.bookings.GetByID(ctx, id)
		if getErr != nil {
			return nil, getErr
		}
		if latest.Status == domain.BookingStatusConfirmed {
			return latest, nil
		}
		return nil, apperror.InvalidState("Cancelled booking cannot be confirmed")
	}
	if err != nil {
		return nil, err
	}

	s.log.Info("booking confirmed", logger.Field{Key: "booking_id", Value: id})
	s.publish(ctx, kafka.EventBookingConfirmed, updated)
	return updated, nil
}

func (s *BookingService) CancelBooking(ctx context.Context, userID int64, id, reason string) (*domain.Booking, error) {
	current, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if current.Status == domain.BookingStatusCancelled {
		return nil, apperror.InvalidState("Booking already cancelled")
	}

	updated, err := s.bookings.Cancel(ctx, id, reason)
	if errors.Is(err, repository.ErrStaleState) {
		return nil, apperror.InvalidState("Booking already cancelled")
	}
	if err != nil {
		return nil, err
	}

	s.log.Info("booking cancelled", logger.Field{Key: "booking_id", Value: id})
	s.publish(ctx, kafka.EventBookingCancelled, updated)
	return updated, nil
}

func (s *BookingService) Stats(ctx context.Context, userID int64) (*domain.UserStats, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	return s.bookings.UserStats(ctx, userID)
}

func (s *BookingService) UpdateSeats(ctx context.Context, userID int64, bookingID, flightBookingID string, seatInfo json.RawMessage) (*domain.FlightBooking, error) {
	if err := s.ownedSegment(ctx, userID, bookingID, flightBookingID); err != nil {
		return nil, err
	}
	return s.flights.UpdateSeats(ctx, flightBookingID, seatInfo)
}

func (s *BookingService) UpdateMeals(ctx context.Context, userID int64, bookingID, flightBookingID string, meals json.RawMessage) (*domain.FlightBooking, error) {
	if err := s.ownedSegment(ctx, userID, bookingID, flightBookingID); err != nil {
		return nil, err
	}
	return s.flights.UpdateMeals(ctx, flightBookingID, meals)
}

func (s *BookingService) UpdateTicketNumbers(ctx context.Context, userID int64, bookingID, flightBookingID string, tickets []string) (*domain.FlightBooking, error) {
	if err := s.ownedSegment(ctx, userID, bookingID, flightBookingID); err != nil {
		return nil, err
	}
	return s.flights.UpdateTicketNumbers(ctx, flightBookingID, tickets)
}

func (s *BookingService) owned(ctx context.Context, userID int64, id string) (*domain.Booking, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.UserID != userID {
		return nil, apperror.Forbidden("Access denied")
	}
	return b, nil
}

// ownedSegment checks that the flight segment belongs to a live booking owned
// by userID.
func (s *BookingService) ownedSegment(ctx context.Context, userID int64, bookingID, flightBookingID string) error {
	b, err := s.owned(ctx, userID, bookingID)
	if err != nil {
		return err
	}
	if b.Status == domain.BookingStatusCancelled {
		return apperror.InvalidState("Booking is cancelled")
	}
	fb, err := s.flights.GetByID(ctx, flightBookingID)
	if err != nil {
		return err
	}
	if fb.BookingID != b.ID {
		return apperror.NotFound("Flight booking not found")
	}
	return nil
}

func (s *BookingService) withFlights(ctx context.Context, b *domain.Booking) (*domain.BookingWithFlights, error) {
	flights, err := s.flights.ListByBookingID(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	return &domain.BookingWithFlights{Booking: b, FlightDetails: flights}, nil
}

func (s *BookingService) publish(ctx context.Context, eventType string, b *domain.Booking) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	event := kafka.NewBookingEvent(eventType, b)
	if err := s.producer.Publish(ctx, s.bookingTopic, b.ID, event); err != nil {
		s.log.Warn(fmt.Sprintf("failed to publish %s", eventType),
			logger.Field{Key: "booking_id", Value: b.ID},
			logger.Field{Key: "error", Value: err},
		)
		return
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, b.ID, event); err != nil {
			s.log.Warn(fmt.Sprintf("failed to publish %s notification", eventType),
				logger.Field{Key: "booking_id", Value: b.ID},
				logger.Field{Key: "error", Value: err},
			)
		}
	}
}

func requireUser(userID int64) error {
	if userID <= 0 {
		return apperror.Auth("Authentication required")
	}
	return nil
}

var _ BookingUseCase = (*BookingService)(nil)
