package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/landlink/survey-backend/internal/database"
	"github.com/landlink/survey-backend/internal/middleware"
	"github.com/landlink/survey-backend/internal/models"
	"github.com/landlink/survey-backend/internal/services"
)

// ProfessionalHandler handles the surveyor and GIS expert endpoints:
// dashboards, assignment lists and booking status transitions
type ProfessionalHandler struct {
	bookingService    *services.BookingService
	bookingRepository *database.BookingRepository
	userRepository    *database.UserRepository
	logger            *logrus.Logger
}

// NewProfessionalHandler creates a new professional handler
func NewProfessionalHandler(
	bookingService *services.BookingService,
	bookingRepository *database.BookingRepository,
	userRepository *database.UserRepository,
	logger *logrus.Logger,
) *ProfessionalHandler {
	return &ProfessionalHandler{
		bookingService:    bookingService,
		bookingRepository: bookingRepository,
		userRepository:    userRepository,
		logger:            logger,
	}
}

// Dashboard handles GET /api/professional/dashboard
func (h *ProfessionalHandler) Dashboard(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	professional, err := h.userRepository.GetByID(userCtx.UserID)
	if err != nil || professional == nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "dashboard_failed",
			Message: "Failed to load dashboard",
		})
		return
	}

	stats, err := h.bookingService.AssigneeDashboard(professional)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "dashboard_failed",
			Message: "Failed to load dashboard",
		})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ListAssignments handles GET /api/professional/assignments
func (h *ProfessionalHandler) ListAssignments(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	bookings, err := h.bookingRepository.ListByAssignee(userCtx.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "assignments_retrieval_failed",
			Message: "Failed to retrieve assignments",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"bookings": bookings,
		"count":    len(bookings),
	})
}

// UpdateBookingStatusRequest represents the request to move a booking to
// a new status
type UpdateBookingStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateBookingStatus handles PATCH /api/professional/bookings/:id/status.
// Admins share this endpoint; the service enforces who may trigger which
// transition.
func (h *ProfessionalHandler) UpdateBookingStatus(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid booking id",
		})
		return
	}

	var req UpdateBookingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	status := models.BookingStatus(req.Status)
	if !status.IsValid() || status == models.BookingStatusPending {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_status",
			Message: "Status must be accepted, rejected, in_progress or completed",
			Code:    "INVALID_STATUS",
		})
		return
	}

	actor := &models.User{ID: userCtx.UserID, Email: userCtx.Email, Role: userCtx.Role}

	booking, err := h.bookingService.Transition(id, status, actor)
	if err != nil {
		switch err {
		case services.ErrBookingNotFound:
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "booking_not_found",
				Message: "Booking not found",
			})
		case services.ErrNotAssignee:
			c.JSON(http.StatusForbidden, ErrorResponse{
				Error:   "not_assignee",
				Message: "This booking is not assigned to you",
				Code:    "NOT_ASSIGNEE",
			})
		case services.ErrNoAssignee:
			c.JSON(http.StatusConflict, ErrorResponse{
				Error:   "no_assignee",
				Message: "Booking has no assigned professional yet",
				Code:    "NO_ASSIGNEE",
			})
		case services.ErrInvalidTransition:
			c.JSON(http.StatusConflict, ErrorResponse{
				Error:   "invalid_transition",
				Message: "Booking cannot move to this status from its current state",
				Code:    "INVALID_TRANSITION",
			})
		default:
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "status_update_failed",
				Message: "Failed to update booking status",
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Booking status updated",
		"booking": booking,
	})
}
