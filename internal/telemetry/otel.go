package telemetry

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/trypguide/config"
	"github.com/Domenick1991/trypguide/internal/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

type ShutdownFunc func(context.Context) error

// Init installs global trace and meter providers exporting over OTLP gRPC.
// With no endpoint configured the global no-op providers stay in place.
func Init(ctx context.Context, cfg config.TelemetryConfig, env string, log logger.Logger) (ShutdownFunc, error) {
	if cfg.OTLPEndpoint == "" {
		log.Info("OpenTelemetry export disabled")
		return func(context.Context) error { return nil }, nil
	}

	conn, err := grpc.NewClient(cfg.OTLPEndpoint, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC connection to collector: %w", err)
	}

	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}
	metricExporter, err := otlpmetricgrpc.New(ctx, otlpmetricgrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, fmt.Errorf("failed to create metric exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.DeploymentEnvironment(env),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	mp := metric.NewMeterProvider(
		metric.WithReader(metric.NewPeriodicReader(metricExporter)),
		metric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	log.Info("OpenTelemetry initialized", logger.Field{Key: "otlp_endpoint", Value: cfg.OTLPEndpoint})

	return func(ctx context.Context) error {
		return errors.Join(
			wrapShutdown("tracer", tp.Shutdown(ctx)),
			wrapShutdown("meter", mp.Shutdown(ctx)),
			wrapShutdown("collector connection", conn.Close()),
		)
	}, nil
}

func wrapShutdown(what string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s shutdown failed: %w", what, err)
}
