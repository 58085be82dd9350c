package email

import (
	"context"
	"fmt"

	"github.com/Domenick1991/trypguide/internal/kafka"
	"github.com/Domenick1991/trypguide/internal/logger"
)

// Message is a rendered notification.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender renders booking lifecycle notifications. Delivery is a structured
// log line; there is no SMTP transport.
type Sender struct {
	log logger.Logger
}

func NewSender(log logger.Logger) *Sender {
	return &Sender{log: log}
}

// Handle decodes a raw event payload and sends the matching notification.
func (s *Sender) Handle(ctx context.Context, payload []byte) error {
	event, err := kafka.DecodeBookingEvent(payload)
	if err != nil {
		return err
	}
	return s.Send(ctx, event)
}

func (s *Sender) Send(_ context.Context, event kafka.BookingEvent) error {
	msg, err := Render(event)
	if err != nil {
		return err
	}
	s.log.Info("email sent",
		logger.Field{Key: "to", Value: msg.To},
		logger.Field{Key: "subject", Value: msg.Subject},
		logger.Field{Key: "booking_id", Value: event.BookingID},
	)
	return nil
}

func Render(event kafka.BookingEvent) (Message, error) {
	if event.Email == "" {
		return Message{}, fmt.Errorf("event %s for booking %s has no recipient", event.Type, event.BookingID)
	}
	msg := Message{To: event.Email}
	switch event.Type {
	case kafka.EventBookingCreated:
		msg.Subject = fmt.Sprintf("Booking received - PNR %s", event.PNR)
		msg.Body = fmt.Sprintf("We have received your booking %s for %s. Total due: %.2f %s.",
			event.PNR, event.TravelDate.Format("02 Jan 2006"), event.TotalAmount, event.Currency)
	case kafka.EventBookingConfirmed:
		msg.Subject = fmt.Sprintf("Booking confirmed - PNR %s", event.PNR)
		msg.Body = fmt.Sprintf("Your booking %s is confirmed. Have a pleasant journey.", event.PNR)
	case kafka.EventBookingCancelled:
		msg.Subject = fmt.Sprintf("Booking cancelled - PNR %s", event.PNR)
		msg.Body = fmt.Sprintf("Your booking %s has been cancelled.", event.PNR)
		if event.Reason != "" {
			msg.Body += " Reason: " + event.Reason + "."
		}
	default:
		return Message{}, fmt.Errorf("unsupported event type %q", event.Type)
	}
	return msg, nil
}
