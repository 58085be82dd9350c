package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/trypguide/config"
	"github.com/Domenick1991/trypguide/internal/email"
	"github.com/Domenick1991/trypguide/internal/kafka"
	"github.com/Domenick1991/trypguide/internal/logger"
	kafkaGo "github.com/segmentio/kafka-go"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logger.NewZeroLog("").Error("load config", logger.Field{Key: "error", Value: err})
		os.Exit(1)
	}
	log := logger.NewZeroLog(cfg.AppEnv).With(logger.Field{Key: "component", Value: "notification-worker"})

	topic := cfg.Kafka.NotificationsTopic
	if topic == "" {
		topic = cfg.Kafka.BookingEventsTopic
	}
	if len(cfg.Kafka.Brokers) == 0 || topic == "" {
		log.Error("worker needs kafka brokers and a topic")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, topic, log)
	defer consumer.Close()

	sender := email.NewSender(log)

	log.Info("notification worker started", logger.Field{Key: "topic", Value: topic})
	err = consumer.Consume(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
		return sender.Handle(ctx, msg.Value)
	})
	if err != nil {
		log.Error("consumer stopped", logger.Field{Key: "error", Value: err})
		os.Exit(1)
	}
	log.Info("notification worker stopped")
}
