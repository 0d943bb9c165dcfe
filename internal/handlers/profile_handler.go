package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/landlink/survey-backend/internal/database"
	"github.com/landlink/survey-backend/internal/middleware"
	"github.com/landlink/survey-backend/internal/services"
)

// ProfileHandler handles the profile endpoints shared by every role
type ProfileHandler struct {
	userRepository *database.UserRepository
	authService    *services.AuthService
	logger         *logrus.Logger
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(
	userRepository *database.UserRepository,
	authService *services.AuthService,
	logger *logrus.Logger,
) *ProfileHandler {
	return &ProfileHandler{
		userRepository: userRepository,
		authService:    authService,
		logger:         logger,
	}
}

// GetProfile handles GET /api/profile
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	user, err := h.userRepository.GetByID(userCtx.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "profile_retrieval_failed",
			Message: "Failed to retrieve profile",
		})
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "user_not_found",
			Message: "User profile not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": user})
}

// UpdateProfileRequest represents the request to update profile fields.
// Omitted fields are left unchanged.
type UpdateProfileRequest struct {
	Name            *string `json:"name"`
	PhoneNumber     *string `json:"phone_number"`
	ProfileImageURL *string `json:"profile_image_url"`
}

// UpdateProfile handles PUT /api/profile
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	err := h.userRepository.UpdateProfile(userCtx.UserID, req.Name, req.PhoneNumber, req.ProfileImageURL)
	if err != nil {
		if err == database.ErrUserNotFound {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "user_not_found",
				Message: "User profile not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "profile_update_failed",
			Message: "Failed to update profile",
		})
		return
	}

	user, err := h.userRepository.GetByID(userCtx.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "profile_retrieval_failed",
			Message: "Failed to retrieve updated profile",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"profile": user,
	})
}

// ToggleNotifications handles PATCH /api/profile/notifications
func (h *ProfileHandler) ToggleNotifications(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	enabled, err := h.userRepository.ToggleNotifications(userCtx.UserID)
	if err != nil {
		if err == database.ErrUserNotFound {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "user_not_found",
				Message: "User profile not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "toggle_failed",
			Message: "Failed to toggle notifications",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":               "Notification preference updated",
		"notifications_enabled": enabled,
	})
}

// ChangePasswordRequest represents the request to change the password
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// ChangePassword handles POST /api/profile/change-password
func (h *ProfileHandler) ChangePassword(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	if err := h.authService.ChangePassword(userCtx.UserID, req.OldPassword, req.NewPassword); err != nil {
		switch err {
		case services.ErrIncorrectPassword:
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "incorrect_password",
				Message: "Current password is incorrect",
				Code:    "INCORRECT_PASSWORD",
			})
		case database.ErrUserNotFound:
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "user_not_found",
				Message: "User profile not found",
			})
		default:
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "password_change_failed",
				Message: "Failed to change password",
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Password changed successfully",
	})
}
