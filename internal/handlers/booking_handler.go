package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/railserve/reservation-backend/internal/database"
	"github.com/railserve/reservation-backend/internal/fare"
	"github.com/railserve/reservation-backend/internal/inventory"
	"github.com/railserve/reservation-backend/internal/layout"
	"github.com/railserve/reservation-backend/internal/lifecycle"
	"github.com/railserve/reservation-backend/internal/models"
	"github.com/railserve/reservation-backend/internal/services"
	"github.com/railserve/reservation-backend/pkg/validator"
)

// BookingHandler handles reservation HTTP requests
type BookingHandler struct {
	bookings *services.BookingService
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(bookings *services.BookingService) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

// CreateBooking handles POST /api/v1/bookings
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	resp, err := h.bookings.CreateBooking(c.Request.Context(), &req)
	if err != nil {
		respondBookingError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// CancelTicket handles DELETE /api/v1/tickets/:ticketId
func (h *BookingHandler) CancelTicket(c *gin.Context) {
	ticketID, err := uuid.Parse(c.Param("ticketId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid ticket id",
		})
		return
	}

	record, err := h.bookings.CancelTicket(c.Request.Context(), ticketID)
	if err != nil {
		respondBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

// TicketStatus handles GET /api/v1/tickets/:ticketId
func (h *BookingHandler) TicketStatus(c *gin.Context) {
	ticketID, err := uuid.Parse(c.Param("ticketId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid ticket id",
		})
		return
	}

	status, err := h.bookings.TicketStatus(c.Request.Context(), ticketID)
	if err != nil {
		respondBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

// PNRStatus handles GET /api/v1/bookings/pnr/:pnr
func (h *BookingHandler) PNRStatus(c *gin.Context) {
	pnr := c.Param("pnr")

	booking, tickets, err := h.bookings.PNRStatus(c.Request.Context(), pnr)
	if err != nil {
		respondBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"booking": booking,
		"tickets": tickets,
	})
}

// BookingsByMobile handles GET /api/v1/bookings?mobile=XXXXXXXXXX
func (h *BookingHandler) BookingsByMobile(c *gin.Context) {
	mobile := c.Query("mobile")
	if mobile == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "mobile query parameter is required",
		})
		return
	}

	bookings, err := h.bookings.BookingsByMobile(c.Request.Context(), mobile)
	if err != nil {
		respondBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"bookings": bookings,
		"count":    len(bookings),
	})
}

// QuoteFare handles POST /api/v1/fare/quote
func (h *BookingHandler) QuoteFare(c *gin.Context) {
	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	summary, err := h.bookings.QuoteFare(c.Request.Context(), &req)
	if err != nil {
		respondBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// respondBookingError maps service errors onto HTTP status codes.
func respondBookingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, lifecycle.ErrSoldOut):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "sold_out",
			Message: err.Error(),
			Code:    "NO_CAPACITY",
		})
	case errors.Is(err, lifecycle.ErrAlreadyCancelled):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "already_cancelled",
			Message: err.Error(),
			Code:    "ALREADY_CANCELLED",
		})
	case errors.Is(err, inventory.ErrNotFound),
		errors.Is(err, database.ErrTicketNotFound),
		errors.Is(err, database.ErrBookingNotFound),
		errors.Is(err, database.ErrTrainNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: err.Error(),
		})
	case errors.Is(err, services.ErrHoldNotFound):
		c.JSON(http.StatusGone, ErrorResponse{
			Error:   "hold_expired",
			Message: err.Error(),
			Code:    "HOLD_EXPIRED",
		})
	case errors.Is(err, services.ErrHoldMismatch):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "hold_mismatch",
			Message: err.Error(),
			Code:    "HOLD_MISMATCH",
		})
	case errors.Is(err, services.ErrTatkalClosed):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "tatkal_closed",
			Message: err.Error(),
			Code:    "TATKAL_CLOSED",
		})
	case errors.Is(err, fare.ErrInvalidFareRule):
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "invalid_fare_rule",
			Message: err.Error(),
			Code:    "INVALID_FARE_RULE",
		})
	case errors.Is(err, services.ErrInvalidJourneyDate),
		errors.Is(err, services.ErrOutsideAdvancePeriod),
		errors.Is(err, services.ErrStationNotOnRoute),
		errors.Is(err, services.ErrWrongDirection),
		errors.Is(err, layout.ErrUnknownClass),
		errors.Is(err, validator.ErrInvalidLength),
		errors.Is(err, validator.ErrInvalidPrefix),
		errors.Is(err, validator.ErrInvalidFormat),
		errors.Is(err, validator.ErrEmptyPhone):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Something went wrong. Please try again.",
		})
	}
}
