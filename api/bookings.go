package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/Domenick1991/trypguide/internal/apperror"
	"github.com/Domenick1991/trypguide/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
	auth    *Authenticator
}

type confirmRequest struct {
	PaymentID string `json:"paymentId"`
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

type seatsRequest struct {
	SeatInfo json.RawMessage `json:"seatInfo"`
}

type mealsRequest struct {
	MealPreferences json.RawMessage `json:"mealPreferences"`
}

type ticketsRequest struct {
	TicketNumbers []string `json:"ticketNumbers"`
}

func NewBookingHandler(service booking.BookingUseCase, auth *Authenticator) *BookingHandler {
	return &BookingHandler{service: service, auth: auth}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.GET("/pnr/:pnr", h.getByPNR)

	authed := router.Group("", h.auth.RequireAuth())
	authed.POST("", h.create)
	authed.GET("", h.list)
	authed.GET("/stats", h.stats)
	authed.GET("/:bookingId", h.get)
	authed.POST("/:bookingId/confirm", h.confirm)
	authed.POST("/:bookingId/cancel", h.cancel)
	authed.PUT("/:bookingId/flights/:flightBookingId/seats", h.updateSeats)
	authed.PUT("/:bookingId/flights/:flightBookingId/meals", h.updateMeals)
	authed.PUT("/:bookingId/flights/:flightBookingId/tickets", h.updateTickets)
}

func (h *BookingHandler) create(c *gin.Context) {
	var input booking.CreateBookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, apperror.Validation("Invalid request body", err.Error()))
		return
	}

	result, err := h.service.CreateBooking(c.Request.Context(), userID(c), input)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, "Booking created successfully", result)
}

func (h *BookingHandler) list(c *gin.Context) {
	limit, err := queryInt(c, "limit", booking.DefaultListLimit)
	if err != nil {
		fail(c, err)
		return
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		fail(c, err)
		return
	}

	items, err := h.service.ListBookings(c.Request.Context(), userID(c), limit, offset)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, "", gin.H{"bookings": items, "count": len(items)})
}

func (h *BookingHandler) stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, "", gin.H{"stats": stats})
}

func (h *BookingHandler) get(c *gin.Context) {
	result, err := h.service.GetBooking(c.Request.Context(), userID(c), c.Param("bookingId"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, "", result)
}

func (h *BookingHandler) getByPNR(c *gin.Context) {
	result, err := h.service.GetBookingByPNR(c.Request.Context(), c.Param("pnr"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, "", result)
}

func (h *BookingHandler) confirm(c *gin.Context) {
	var req confirmRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	b, err := h.service.ConfirmBooking(c.Request.Context(), userID(c), c.Param("bookingId"), req.PaymentID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, "Booking confirmed successfully", gin.H{"booking": b})
}

func (h *BookingHandler) cancel(c *gin.Context) {
	var req cancelRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	b, err := h.service.CancelBooking(c.Request.Context(), userID(c), c.Param("bookingId"), req.Reason)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, "Booking cancelled successfully", gin.H{"booking": b})
}

func (h *BookingHandler) updateSeats(c *gin.Context) {
	var req seatsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperror.Validation("Invalid request body", err.Error()))
		return
	}
	fb, err := h.service.UpdateSeats(c.Request.Context(), userID(c), c.Param("bookingId"), c.Param("flightBookingId"), req.SeatInfo)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, "Seats updated", gin.H{"flightDetails": fb})
}

func (h *BookingHandler) updateMeals(c *gin.Context) {
	var req mealsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperror.Validation("Invalid request body", err.Error()))
		return
	}
	fb, err := h.service.UpdateMeals(c.Request.Context(), userID(c), c.Param("bookingId"), c.Param("flightBookingId"), req.MealPreferences)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, "Meal preferences updated", gin.H{"flightDetails": fb})
}

func (h *BookingHandler) updateTickets(c *gin.Context) {
	var req ticketsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperror.Validation("Invalid request body", err.Error()))
		return
	}
	fb, err := h.service.UpdateTicketNumbers(c.Request.Context(), userID(c), c.Param("bookingId"), c.Param("flightBookingId"), req.TicketNumbers)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, "Ticket numbers updated", gin.H{"flightDetails": fb})
}

// bindOptionalJSON accepts an empty body; a malformed one fails the request.
func bindOptionalJSON(c *gin.Context, dst any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		fail(c, apperror.Validation("Invalid request body", err.Error()))
		return false
	}
	return true
}

func queryInt(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.Validation(key + " must be an integer")
	}
	return v, nil
}
