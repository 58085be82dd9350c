package email

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/Domenick1991/trypguide/internal/kafka"
	"github.com/Domenick1991/trypguide/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func event(eventType string) kafka.BookingEvent {
	return kafka.BookingEvent{
		Type:        eventType,
		BookingID:   "b-1",
		PNR:         "ABC123",
		Email:       "asha@example.com",
		TotalAmount: 4500,
		Currency:    "INR",
		TravelDate:  time.Date(2025, 12, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestRender(t *testing.T) {
	msg, err := Render(event(kafka.EventBookingCreated))
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", msg.To)
	assert.Equal(t, "Booking received - PNR ABC123", msg.Subject)
	assert.Contains(t, msg.Body, "01 Dec 2025")
	assert.Contains(t, msg.Body, "4500.00 INR")

	cancelled := event(kafka.EventBookingCancelled)
	cancelled.Reason = "plans changed"
	msg, err = Render(cancelled)
	require.NoError(t, err)
	assert.Contains(t, msg.Body, "Reason: plans changed.")

	_, err = Render(event("booking_expired"))
	assert.Error(t, err)

	noRecipient := event(kafka.EventBookingConfirmed)
	noRecipient.Email = ""
	_, err = Render(noRecipient)
	assert.Error(t, err)
}

func TestSender_Handle(t *testing.T) {
	var buf bytes.Buffer
	s := NewSender(logger.NewWithWriter("development", &buf))

	payload, err := json.Marshal(event(kafka.EventBookingConfirmed))
	require.NoError(t, err)

	require.NoError(t, s.Handle(context.Background(), payload))
	assert.Contains(t, buf.String(), `"subject":"Booking confirmed - PNR ABC123"`)
	assert.Contains(t, buf.String(), `"to":"asha@example.com"`)

	assert.Error(t, s.Handle(context.Background(), []byte("{")))
}
