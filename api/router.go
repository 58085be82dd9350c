package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/trypguide/internal/logger"
	"github.com/Domenick1991/trypguide/internal/service/booking"
	"github.com/Domenick1991/trypguide/internal/service/flights"
	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

type RouterConfig struct {
	ServiceName string
	Production  bool
	CORSOrigins []string
	// SwaggerDir holds openapi.json; empty disables the docs routes.
	SwaggerDir string
}

// NewRouter wires the REST API on top of the flight and booking use cases.
func NewRouter(cfg RouterConfig, flightSvc flights.FlightUseCase, bookingSvc booking.BookingUseCase, auth *Authenticator, log logger.Logger) *gin.Engine {
	if cfg.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		otelgin.Middleware(cfg.ServiceName),
		RequestLogger(log),
		CORS(cfg.CORSOrigins),
		ErrorHandler(cfg.Production, log),
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK", "timestamp": time.Now().UTC().Format(time.RFC3339)})
	})

	if cfg.SwaggerDir != "" {
		router.Static("/docs", cfg.SwaggerDir)
		router.GET("/swagger/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL("/docs/openapi.json"))))
	}

	api := router.Group("/api")
	NewFlightHandler(flightSvc, auth).Register(api.Group("/flights"))
	NewBookingHandler(bookingSvc, auth).Register(api.Group("/bookings"))

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, Envelope{Success: false, Message: "Route not found"})
	})

	return router
}
