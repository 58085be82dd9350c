package kafka

import (
	"context"
	"errors"
	"time"

	"github.com/Domenick1991/trypguide/internal/logger"
	"github.com/segmentio/kafka-go"
)

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Consumer struct {
	reader messageReader
	log    logger.Logger
}

func NewConsumer(brokers []string, groupID, topic string, log logger.Logger) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           groupID,
			Topic:             topic,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
		log: log,
	}
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

// Consume hands each message to handler until ctx is done. Messages are
// committed after the handler returns; a handler error is logged and the
// message is still committed so one bad event cannot stall the group.
func (c *Consumer) Consume(ctx context.Context, handler func(context.Context, kafka.Message) error) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}

		if err := handler(ctx, msg); err != nil {
			c.log.Error("event handler failed",
				logger.Field{Key: "topic", Value: msg.Topic},
				logger.Field{Key: "offset", Value: msg.Offset},
				logger.Field{Key: "error", Value: err},
			)
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}
