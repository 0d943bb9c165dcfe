package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/landlink/survey-backend/internal/database"
	"github.com/landlink/survey-backend/internal/middleware"
	"github.com/landlink/survey-backend/internal/models"
)

// ReviewHandler handles booking reviews
type ReviewHandler struct {
	reviewRepository  *database.ReviewRepository
	bookingRepository *database.BookingRepository
	logger            *logrus.Logger
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(
	reviewRepository *database.ReviewRepository,
	bookingRepository *database.BookingRepository,
	logger *logrus.Logger,
) *ReviewHandler {
	return &ReviewHandler{
		reviewRepository:  reviewRepository,
		bookingRepository: bookingRepository,
		logger:            logger,
	}
}

// CreateReviewRequest represents the request to leave a review
type CreateReviewRequest struct {
	BookingID string  `json:"booking_id" binding:"required"`
	Rating    int     `json:"rating" binding:"required,min=1,max=5"`
	Comment   *string `json:"comment"`
}

// CreateReview handles POST /api/reviews. Only the booking's requester may
// review it, and only once it is completed.
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	bookingID, err := uuid.Parse(req.BookingID)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid booking id",
		})
		return
	}

	booking, err := h.bookingRepository.GetByID(bookingID)
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
	if booking.Status != models.BookingStatusCompleted {
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "booking_not_completed",
			Message: "Only completed bookings can be reviewed",
			Code:    "BOOKING_NOT_COMPLETED",
		})
		return
	}

	review := &models.Review{
		BookingID: bookingID,
		UserID:    userCtx.UserID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}
	if err := h.reviewRepository.Create(review); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "review_creation_failed",
			Message: "Failed to create review",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Review submitted successfully",
		"review":  review,
	})
}

// ListBookingReviews handles GET /api/reviews/:bookingId
func (h *ReviewHandler) ListBookingReviews(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("bookingId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid booking id",
		})
		return
	}

	reviews, err := h.reviewRepository.ListByBooking(bookingID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "reviews_retrieval_failed",
			Message: "Failed to retrieve reviews",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reviews": reviews,
		"count":   len(reviews),
	})
}
