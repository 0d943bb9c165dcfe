package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/landlink/survey-backend/internal/database"
	"github.com/landlink/survey-backend/internal/models"
	"github.com/landlink/survey-backend/internal/services"
)

// AdminHandler handles admin HTTP requests: account oversight,
// professional approval and booking assignment
type AdminHandler struct {
	authService         *services.AuthService
	registrationService *services.RegistrationService
	bookingService      *services.BookingService
	userRepository      *database.UserRepository
	bookingRepository   *database.BookingRepository
	logger              *logrus.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	authService *services.AuthService,
	registrationService *services.RegistrationService,
	bookingService *services.BookingService,
	userRepository *database.UserRepository,
	bookingRepository *database.BookingRepository,
	logger *logrus.Logger,
) *AdminHandler {
	return &AdminHandler{
		authService:         authService,
		registrationService: registrationService,
		bookingService:      bookingService,
		userRepository:      userRepository,
		bookingRepository:   bookingRepository,
		logger:              logger,
	}
}

// AdminSignupRequest represents the request to create an admin account
type AdminSignupRequest struct {
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=8"`
	SecretCode string `json:"secret_code" binding:"required"`
}

// Signup handles POST /api/admin/signup
func (h *AdminHandler) Signup(c *gin.Context) {
	var req AdminSignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	user, err := h.authService.AdminSignup(req.Name, req.Email, req.Password, req.SecretCode)
	if err != nil {
		switch err {
		case services.ErrInvalidAdminCode:
			c.JSON(http.StatusForbidden, ErrorResponse{
				Error:   "invalid_secret_code",
				Message: "Invalid admin secret code",
				Code:    "INVALID_SECRET_CODE",
			})
		case services.ErrEmailExists:
			c.JSON(http.StatusConflict, ErrorResponse{
				Error:   "email_exists",
				Message: "An account with this email already exists",
				Code:    "EMAIL_EXISTS",
			})
		default:
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "signup_failed",
				Message: "Failed to create admin account",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Admin account created successfully",
		"user":    user,
	})
}

// ListBookings handles GET /api/admin/bookings
func (h *AdminHandler) ListBookings(c *gin.Context) {
	bookings, err := h.bookingRepository.ListAll()
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

// AssignBookingRequest represents the request to assign a professional
type AssignBookingRequest struct {
	ProfessionalID string `json:"professional_id" binding:"required"`
}

// AssignBooking handles PATCH /api/admin/bookings/:id/assign
func (h *AdminHandler) AssignBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid booking id",
		})
		return
	}

	var req AssignBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	professionalID, err := uuid.Parse(req.ProfessionalID)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid professional id",
		})
		return
	}

	booking, err := h.bookingService.Assign(bookingID, professionalID)
	if err != nil {
		switch err {
		case services.ErrBookingNotFound:
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "booking_not_found",
				Message: "Booking not found",
			})
		case services.ErrNotAssignable:
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "not_assignable",
				Message: "Assignee must be an approved surveyor or GIS expert",
				Code:    "NOT_ASSIGNABLE",
			})
		case services.ErrInvalidTransition:
			c.JSON(http.StatusConflict, ErrorResponse{
				Error:   "invalid_state",
				Message: "Booking is no longer pending and cannot be assigned",
				Code:    "INVALID_TRANSITION",
			})
		default:
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "assignment_failed",
				Message: "Failed to assign booking",
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Booking assigned successfully",
		"booking": booking,
	})
}

// ListSurveyors handles GET /api/admin/surveyors
func (h *AdminHandler) ListSurveyors(c *gin.Context) {
	h.listByRole(c, models.RoleSurveyor, "surveyors")
}

// ListGISExperts handles GET /api/admin/gis-experts
func (h *AdminHandler) ListGISExperts(c *gin.Context) {
	h.listByRole(c, models.RoleGISExpert, "gis_experts")
}

// ListAdmins handles GET /api/admin/admins
func (h *AdminHandler) ListAdmins(c *gin.Context) {
	h.listByRole(c, models.RoleAdmin, "admins")
}

// ListClients handles GET /api/admin/clients
func (h *AdminHandler) ListClients(c *gin.Context) {
	h.listByRole(c, models.RoleClient, "clients")
}

func (h *AdminHandler) listByRole(c *gin.Context, role models.Role, key string) {
	users, err := h.userRepository.ListByRole(role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "users_retrieval_failed",
			Message: "Failed to retrieve users",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		key:     users,
		"count": len(users),
	})
}

// ListPendingProfessionals handles GET /api/admin/pending-professionals.
// Only applications that have confirmed their email are listed.
func (h *AdminHandler) ListPendingProfessionals(c *gin.Context) {
	role := models.Role(c.Query("role"))
	pending := h.registrationService.ListPendingProfessionals(role)

	c.JSON(http.StatusOK, gin.H{
		"pending": pending,
		"count":   len(pending),
	})
}

// DecideApplicationRequest represents an approval decision on a staged
// professional application
type DecideApplicationRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ApproveApplication handles POST /api/admin/applications/approve
func (h *AdminHandler) ApproveApplication(c *gin.Context) {
	var req DecideApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	user, err := h.registrationService.Approve(req.Email)
	if err != nil {
		switch err {
		case services.ErrPendingNotFound:
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "application_not_found",
				Message: "No pending application found for this email",
			})
		case services.ErrNotVerified:
			c.JSON(http.StatusConflict, ErrorResponse{
				Error:   "not_verified",
				Message: "Application has not confirmed its email yet",
				Code:    "NOT_VERIFIED",
			})
		case services.ErrEmailExists:
			c.JSON(http.StatusConflict, ErrorResponse{
				Error:   "email_exists",
				Message: "An account with this email already exists",
				Code:    "EMAIL_EXISTS",
			})
		default:
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "approval_failed",
				Message: "Failed to approve application",
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Application approved",
		"user":    user,
	})
}

// RejectApplication handles POST /api/admin/applications/reject
func (h *AdminHandler) RejectApplication(c *gin.Context) {
	var req DecideApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	if err := h.registrationService.Reject(req.Email); err != nil {
		switch err {
		case services.ErrPendingNotFound:
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "application_not_found",
				Message: "No pending application found for this email",
			})
		default:
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "rejection_failed",
				Message: "Failed to reject application",
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Application rejected",
	})
}

// SetApprovalRequest represents the request to change a professional's
// approval status on the durable store
type SetApprovalRequest struct {
	Role   string `json:"role" binding:"required"`
	Status string `json:"status" binding:"required"`
}

// SetApproval handles PATCH /api/admin/professionals/:id/approval. It
// acts on already-promoted professionals, for example to revoke one.
func (h *AdminHandler) SetApproval(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid user id",
		})
		return
	}

	var req SetApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	role := models.Role(req.Role)
	status := models.ApprovalStatus(req.Status)
	if !role.RequiresApproval() ||
		(status != models.ApprovalStatusApproved && status != models.ApprovalStatusRejected) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Role must be a professional role and status approved or rejected",
		})
		return
	}

	if err := h.userRepository.SetApproval(id, role, status); err != nil {
		switch err {
		case database.ErrUserNotFound:
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "user_not_found",
				Message: "No professional found with this id and role",
			})
		default:
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "approval_update_failed",
				Message: "Failed to update approval status",
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Approval status updated",
	})
}

// DeleteUser handles DELETE /api/admin/users/:id
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid user id",
		})
		return
	}

	if err := h.userRepository.Delete(id); err != nil {
		switch err {
		case database.ErrUserNotFound:
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "user_not_found",
				Message: "User not found",
			})
		default:
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "deletion_failed",
				Message: "Failed to delete user",
			})
		}
		return
	}

	h.logger.WithField("user_id", id).Info("User account deleted by admin")

	c.JSON(http.StatusOK, gin.H{
		"message": "User deleted successfully",
	})
}
