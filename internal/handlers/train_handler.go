package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/railserve/reservation-backend/internal/database"
	"github.com/railserve/reservation-backend/internal/services"
)

// TrainHandler handles train metadata HTTP requests
type TrainHandler struct {
	trains   *database.TrainRepository
	bookings *services.BookingService
}

// NewTrainHandler creates a new train handler
func NewTrainHandler(trains *database.TrainRepository, bookings *services.BookingService) *TrainHandler {
	return &TrainHandler{trains: trains, bookings: bookings}
}

// GetTrain handles GET /api/v1/trains/:trainNumber
func (h *TrainHandler) GetTrain(c *gin.Context) {
	trainNumber := c.Param("trainNumber")

	train, err := h.trains.GetByNumber(trainNumber)
	if err != nil {
		if errors.Is(err, database.ErrTrainNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Train not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to fetch train",
		})
		return
	}

	stops, err := h.trains.Stops(trainNumber)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to fetch route",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"train": train,
		"stops": stops,
	})
}

// Availability handles GET /api/v1/trains/:trainNumber/availability?date=YYYY-MM-DD
func (h *TrainHandler) Availability(c *gin.Context) {
	trainNumber := c.Param("trainNumber")
	date := c.Query("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "date query parameter is required",
		})
		return
	}

	availability, err := h.bookings.Availability(c.Request.Context(), trainNumber, date)
	if err != nil {
		respondBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"train_number": trainNumber,
		"date":         date,
		"classes":      availability,
	})
}
