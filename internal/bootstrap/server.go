package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/Domenick1991/trypguide/config"
	"github.com/Domenick1991/trypguide/internal/logger"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// Dependency is an external resource the API needs in order to serve traffic.
type Dependency struct {
	Name  string
	Check func(ctx context.Context) error
}

type Servers struct {
	grpcServer *grpc.Server
	health     *health.Server
	httpServer *http.Server
	conn       *grpc.ClientConn
	deps       []Dependency
	interval   time.Duration
	log        logger.Logger
}

// Run starts the gRPC health server and the HTTP server (REST API plus the
// gateway /healthz) and blocks until ctx is canceled or a server fails.
func Run(ctx context.Context, cfg *config.Config, api http.Handler, deps []Dependency, log logger.Logger) error {
	s, err := newServers(cfg, api, deps, log)
	if err != nil {
		return err
	}
	defer s.conn.Close()

	errCh := make(chan error, 2)

	lis, err := net.Listen("tcp", cfg.GRPC.Address)
	if err != nil {
		return fmt.Errorf("listen gRPC %s: %w", cfg.GRPC.Address, err)
	}
	go func() { errCh <- s.grpcServer.Serve(lis) }()

	go func() {
		if err := s.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	watchCtx, stopWatch := context.WithCancel(ctx)
	defer stopWatch()
	go s.watchDependencies(watchCtx)

	log.Info("servers started",
		logger.Field{Key: "http", Value: cfg.HTTP.Address},
		logger.Field{Key: "grpc", Value: cfg.GRPC.Address},
	)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info("shutting down")
		s.health.Shutdown()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.grpcServer.GracefulStop()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func newServers(cfg *config.Config, api http.Handler, deps []Dependency, log logger.Logger) (*Servers, error) {
	grpcSrv := grpc.NewServer()
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcSrv, healthSrv)
	reflection.Register(grpcSrv)

	conn, err := grpc.NewClient(cfg.GRPC.Address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial gRPC health endpoint: %w", err)
	}

	interval := time.Duration(cfg.GRPC.HealthIntervalSeconds) * time.Second
	if interval <= 0 {
		interval = 15 * time.Second
	}

	return &Servers{
		grpcServer: grpcSrv,
		health:     healthSrv,
		httpServer: &http.Server{
			Addr:              cfg.HTTP.Address,
			Handler:           newHTTPHandler(conn, api),
			ReadHeaderTimeout: 10 * time.Second,
		},
		conn:     conn,
		deps:     deps,
		interval: interval,
		log:      log,
	}, nil
}

// newHTTPHandler serves /healthz through grpc-gateway and everything else
// through api.
func newHTTPHandler(conn grpc.ClientConnInterface, api http.Handler) http.Handler {
	gw := runtime.NewServeMux(runtime.WithHealthzEndpoint(healthpb.NewHealthClient(conn)))

	mux := http.NewServeMux()
	mux.Handle("/healthz", gw)
	mux.Handle("/", api)
	return mux
}

func (s *Servers) watchDependencies(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		checkDependencies(ctx, s.health, s.deps, s.log)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// checkDependencies flips the overall serving status depending on whether
// every dependency answers.
func checkDependencies(ctx context.Context, hs *health.Server, deps []Dependency, log logger.Logger) bool {
	healthy := true
	for _, dep := range deps {
		checkCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := dep.Check(checkCtx)
		cancel()
		if err != nil {
			healthy = false
			log.Warn("dependency unhealthy",
				logger.Field{Key: "dependency", Value: dep.Name},
				logger.Field{Key: "error", Value: err},
			)
		}
	}

	status := healthpb.HealthCheckResponse_SERVING
	if !healthy {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	hs.SetServingStatus("", status)
	return healthy
}
