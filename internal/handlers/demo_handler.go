package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/landlink/survey-backend/internal/database"
	"github.com/landlink/survey-backend/internal/models"
)

// DemoHandler handles public demo requests
type DemoHandler struct {
	demoRepository *database.DemoRequestRepository
	logger         *logrus.Logger
}

// NewDemoHandler creates a new demo handler
func NewDemoHandler(demoRepository *database.DemoRequestRepository, logger *logrus.Logger) *DemoHandler {
	return &DemoHandler{
		demoRepository: demoRepository,
		logger:         logger,
	}
}

// CreateDemoRequest represents the request for a product demo
type CreateDemoRequest struct {
	Name    string    `json:"name" binding:"required"`
	Email   string    `json:"email" binding:"required,email"`
	Company *string   `json:"company"`
	Phone   *string   `json:"phone"`
	Date    time.Time `json:"date" binding:"required"`
}

// Create handles POST /api/demo-requests
func (h *DemoHandler) Create(c *gin.Context) {
	var req CreateDemoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	demo := &models.DemoRequest{
		Name:    req.Name,
		Email:   req.Email,
		Company: req.Company,
		Phone:   req.Phone,
		Date:    req.Date,
	}
	if err := h.demoRepository.Create(demo); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "demo_request_failed",
			Message: "Failed to submit demo request",
		})
		return
	}

	h.logger.WithField("email", demo.Email).Info("Demo request submitted")

	c.JSON(http.StatusCreated, gin.H{
		"message": "Demo request submitted. We will be in touch.",
		"demo":    demo,
	})
}
