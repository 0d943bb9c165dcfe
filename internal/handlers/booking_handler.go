package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/landlink/survey-backend/internal/database"
	"github.com/landlink/survey-backend/internal/middleware"
	"github.com/landlink/survey-backend/internal/services"
)

// BookingHandler handles the client-facing booking endpoints
type BookingHandler struct {
	bookingService    *services.BookingService
	bookingRepository *database.BookingRepository
	logger            *logrus.Logger
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(
	bookingService *services.BookingService,
	bookingRepository *database.BookingRepository,
	logger *logrus.Logger,
) *BookingHandler {
	return &BookingHandler{
		bookingService:    bookingService,
		bookingRepository: bookingRepository,
		logger:            logger,
	}
}

// CreateBookingRequest represents the request to create a booking
type CreateBookingRequest struct {
	Location      string    `json:"location" binding:"required"`
	SurveyType    string    `json:"survey_type" binding:"required"`
	Description   string    `json:"description"`
	PreferredDate time.Time `json:"preferred_date" binding:"required"`
}

// CreateBooking handles POST /api/bookings
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	booking, err := h.bookingService.Create(
		userCtx.UserID, req.Location, req.SurveyType, req.Description, req.PreferredDate)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "booking_creation_failed",
			Message: "Failed to create booking",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Booking created successfully",
		"booking": booking,
	})
}

// ListMyBookings handles GET /api/bookings
func (h *BookingHandler) ListMyBookings(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	bookings, err := h.bookingRepository.ListByRequester(userCtx.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "bookings_retrieval_failed",
			Message: "Failed to retrieve bookings",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"bookings": bookings,
		"count":    len(bookings),
	})
}

// GetBooking handles GET /api/bookings/:id. Clients can only read their
// own bookings.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid booking id",
		})
		return
	}

	booking, err := h.bookingRepository.GetByID(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "booking_retrieval_failed",
			Message: "Failed to retrieve booking",
		})
		return
	}
	if booking == nil || booking.UserID != userCtx.UserID {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "booking_not_found",
			Message: "Booking not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"booking": booking})
}
