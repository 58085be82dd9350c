package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Domenick1991/trypguide/internal/domain"
)

const (
	EventBookingCreated   = "booking_created"
	EventBookingConfirmed = "booking_confirmed"
	EventBookingCancelled = "booking_cancelled"
)

type BookingEvent struct {
	Type        string    `json:"type"`
	BookingID   string    `json:"booking_id"`
	PNR         string    `json:"pnr"`
	UserID      int64     `json:"user_id"`
	Status      string    `json:"status"`
	TotalAmount float64   `json:"total_amount"`
	Currency    string    `json:"currency"`
	Email       string    `json:"email"`
	TravelDate  time.Time `json:"travel_date"`
	Reason      string    `json:"reason,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

func NewBookingEvent(eventType string, b *domain.Booking) BookingEvent {
	ev := BookingEvent{
		Type:        eventType,
		BookingID:   b.ID,
		PNR:         b.PNR,
		UserID:      b.UserID,
		Status:      string(b.Status),
		TotalAmount: b.TotalAmount,
		Currency:    b.Currency,
		Email:       b.ContactEmail,
		TravelDate:  b.TravelDate,
		OccurredAt:  time.Now().UTC(),
	}
	if reason, ok := b.Metadata[domain.MetaCancellationReason].(string); ok {
		ev.Reason = reason
	}
	return ev
}

func DecodeBookingEvent(data []byte) (BookingEvent, error) {
	var ev BookingEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return ev, fmt.Errorf("decode booking event: %w", err)
	}
	if ev.Type == "" || ev.BookingID == "" {
		return ev, fmt.Errorf("decode booking event: missing type or booking id")
	}
	return ev, nil
}
