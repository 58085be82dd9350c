package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/trypguide/api"
	"github.com/Domenick1991/trypguide/config"
	"github.com/Domenick1991/trypguide/internal/bootstrap"
	"github.com/Domenick1991/trypguide/internal/cache"
	"github.com/Domenick1991/trypguide/internal/idgen"
	"github.com/Domenick1991/trypguide/internal/inventory"
	"github.com/Domenick1991/trypguide/internal/kafka"
	"github.com/Domenick1991/trypguide/internal/logger"
	"github.com/Domenick1991/trypguide/internal/repository"
	"github.com/Domenick1991/trypguide/internal/service/booking"
	"github.com/Domenick1991/trypguide/internal/service/flights"
	"github.com/Domenick1991/trypguide/internal/telemetry"
	"github.com/jackc/pgx/v5/pgxpool"
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
	log := logger.NewZeroLog(cfg.AppEnv).With(logger.Field{Key: "service", Value: cfg.Telemetry.ServiceName})

	if err := run(cfg, log); err != nil {
		log.Error("server error", logger.Field{Key: "error", Value: err})
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *logger.ZeroLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := telemetry.Init(ctx, cfg.Telemetry, cfg.AppEnv, log)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Warn("telemetry shutdown", logger.Field{Key: "error", Value: err})
		}
	}()

	if cfg.Database.Migrate {
		if err := repository.Migrate(cfg.Database.MigrateURL()); err != nil {
			return err
		}
		log.Info("database migrations applied")
	}

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		return err
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, log)
	defer redisCache.Close()

	ids, err := idgen.NewSnowflakeGenerator(cfg.Flights.IDNode)
	if err != nil {
		return err
	}

	deps := []bootstrap.Dependency{
		{Name: "postgres", Check: pool.Ping},
		{Name: "redis", Check: redisCache.Ping},
	}

	var producer booking.EventProducer
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaProducer := kafka.NewProducer(cfg.Kafka.Brokers, log)
		defer kafkaProducer.Close()
		producer = kafkaProducer
		deps = append(deps, bootstrap.Dependency{Name: "kafka", Check: kafkaProducer.CheckConnection})
	} else {
		log.Warn("no kafka brokers configured, booking events will not be published")
	}

	flightService := flights.NewFlightService(inventory.NewMockProvider(ids), redisCache, cfg.Flights.CacheTTL(), log)
	bookingService := booking.NewBookingService(
		repository.NewBookingRepository(pool),
		repository.NewFlightBookingRepository(pool),
		producer,
		cfg.Kafka.BookingEventsTopic,
		log,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)

	router := api.NewRouter(api.RouterConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Production:  cfg.IsProduction(),
		CORSOrigins: cfg.HTTP.CORSOrigin,
		SwaggerDir:  cfg.HTTP.SwaggerDir,
	}, flightService, bookingService, api.NewAuthenticator(cfg.Auth.JWTSecret), log)

	return bootstrap.Run(ctx, cfg, router, deps, log)
}
