package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/railserve/reservation-backend/internal/layout"
	"github.com/railserve/reservation-backend/internal/models"
	"github.com/railserve/reservation-backend/internal/services"
)

// HoldHandler handles seat hold HTTP requests
type HoldHandler struct {
	holds *services.HoldService
}

// NewHoldHandler creates a new hold handler
func NewHoldHandler(holds *services.HoldService) *HoldHandler {
	return &HoldHandler{holds: holds}
}

// CreateHoldRequest is the seat hold payload
type CreateHoldRequest struct {
	TrainNumber    string            `json:"train_number" binding:"required"`
	DateOfJourney  string            `json:"date_of_journey" binding:"required"`
	CoachClass     models.CoachClass `json:"coach_class" binding:"required"`
	PassengerCount int               `json:"passenger_count" binding:"required,min=1,max=6"`
}

// CreateHold handles POST /api/v1/holds
func (h *HoldHandler) CreateHold(c *gin.Context) {
	var req CreateHoldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	if _, err := layout.Get(req.CoachClass); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	hold, err := h.holds.CreateHold(c.Request.Context(), req.TrainNumber, req.DateOfJourney, req.CoachClass, req.PassengerCount)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to create hold",
		})
		return
	}

	c.JSON(http.StatusCreated, hold)
}

// ReleaseHold handles DELETE /api/v1/holds/:token
func (h *HoldHandler) ReleaseHold(c *gin.Context) {
	token := c.Param("token")

	if err := h.holds.Release(c.Request.Context(), token); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to release hold",
		})
		return
	}

	c.Status(http.StatusNoContent)
}
