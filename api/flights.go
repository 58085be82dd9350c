package api

import (
	"net/http"

	"github.com/Domenick1991/trypguide/internal/apperror"
	"github.com/Domenick1991/trypguide/internal/domain"
	"github.com/Domenick1991/trypguide/internal/service/flights"
	"github.com/gin-gonic/gin"
)

type FlightHandler struct {
	service flights.FlightUseCase
	auth    *Authenticator
}

type filterRequest struct {
	Flights []domain.FlightOffer  `json:"flights"`
	Filters *domain.FilterOptions `json:"filters"`
	SortBy  string                `json:"sortBy"`
}

func NewFlightHandler(service flights.FlightUseCase, auth *Authenticator) *FlightHandler {
	return &FlightHandler{service: service, auth: auth}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("/search", h.auth.OptionalAuth(), h.search)
	router.POST("/filter", h.filter)
	router.GET("/airports", h.airports)
	router.GET("/:flightId", h.get)
}

func (h *FlightHandler) search(c *gin.Context) {
	var params domain.SearchParams
	if err := c.ShouldBindQuery(&params); err != nil {
		fail(c, apperror.Validation("Invalid search parameters", err.Error()))
		return
	}

	result, err := h.service.Search(c.Request.Context(), params)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, "", result)
}

func (h *FlightHandler) filter(c *gin.Context) {
	var req filterRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Flights == nil {
		fail(c, apperror.Validation("Invalid flights data"))
		return
	}

	result := h.service.Filter(req.Flights, req.Filters, req.SortBy)
	ok(c, http.StatusOK, "", gin.H{"flights": result, "count": len(result)})
}

func (h *FlightHandler) airports(c *gin.Context) {
	ok(c, http.StatusOK, "", gin.H{"airports": h.service.Airports(c.Query("search"))})
}

func (h *FlightHandler) get(c *gin.Context) {
	flight, err := h.service.GetByID(c.Request.Context(), c.Param("flightId"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, "", gin.H{"flight": flight})
}
