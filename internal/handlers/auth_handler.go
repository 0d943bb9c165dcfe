package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/landlink/survey-backend/internal/middleware"
	"github.com/landlink/survey-backend/internal/models"
	"github.com/landlink/survey-backend/internal/services"
	"github.com/landlink/survey-backend/internal/utils"
)

// AuthHandler handles registration and authentication HTTP requests
type AuthHandler struct {
	registrationService *services.RegistrationService
	authService         *services.AuthService
	logger              *logrus.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(
	registrationService *services.RegistrationService,
	authService *services.AuthService,
	logger *logrus.Logger,
) *AuthHandler {
	return &AuthHandler{
		registrationService: registrationService,
		authService:         authService,
		logger:              logger,
	}
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// SignupRequest represents the request to start a registration
type SignupRequest struct {
	Name        string  `json:"name" binding:"required"`
	Email       string  `json:"email" binding:"required,email"`
	Password    string  `json:"password" binding:"required,min=8"`
	Role        string  `json:"role" binding:"required"`
	PhoneNumber *string `json:"phone_number"`
	ISKNumber   *string `json:"isk_number"`
	IDCardURL   *string `json:"id_card_url"`
	CertURL     *string `json:"cert_url"`
}

// Signup handles POST /api/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	_, err := h.registrationService.Stage(services.StageInput{
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		Role:        models.Role(req.Role),
		PhoneNumber: req.PhoneNumber,
		ISKNumber:   req.ISKNumber,
		IDCardURL:   req.IDCardURL,
		CertURL:     req.CertURL,
	})
	if err != nil {
		switch err {
		case services.ErrInvalidRole:
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_role",
				Message: "Role must be client, surveyor or gis-expert",
				Code:    "INVALID_ROLE",
			})
		case services.ErrMissingProfessionalFields:
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "missing_fields",
				Message: err.Error(),
				Code:    "MISSING_PROFESSIONAL_FIELDS",
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
				Message: "Failed to start registration",
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Verification code sent. Please check your email.",
		"email":   req.Email,
	})
}

// VerifyOTPRequest represents the request to confirm a registration
type VerifyOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required"`
}

// VerifyOTP handles POST /api/auth/verify-otp
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	user, err := h.registrationService.Confirm(req.Email, req.OTP)
	if err != nil {
		switch err {
		case services.ErrPendingNotFound:
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "signup_not_found",
				Message: "No signup session found for this email. Please sign up again.",
				Code:    "NO_PENDING_SIGNUP",
			})
		case services.ErrOTPExpired:
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "otp_expired",
				Message: "Verification code has expired. Please sign up again.",
				Code:    "OTP_EXPIRED",
			})
		case services.ErrOTPMismatch:
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "otp_invalid",
				Message: "Invalid verification code",
				Code:    "OTP_INVALID",
			})
		case services.ErrEmailExists:
			c.JSON(http.StatusConflict, ErrorResponse{
				Error:   "email_exists",
				Message: "An account with this email already exists",
				Code:    "EMAIL_EXISTS",
			})
		default:
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "verification_failed",
				Message: "Failed to verify registration",
			})
		}
		return
	}

	// Professionals stay staged until an admin approves them
	if user == nil {
		c.JSON(http.StatusOK, gin.H{
			"message": "Email verified. Your application is now awaiting admin approval.",
			"status":  "awaiting_approval",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Account created successfully. You can now log in.",
		"user":    user,
	})
}

// ResendOTPRequest represents the request to resend a verification code
type ResendOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResendOTP handles POST /api/auth/resend-otp
func (h *AuthHandler) ResendOTP(c *gin.Context) {
	var req ResendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	if err := h.registrationService.Reissue(req.Email); err != nil {
		switch err {
		case services.ErrPendingNotFound:
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "signup_not_found",
				Message: "No signup session found for this email. Please sign up again.",
				Code:    "NO_PENDING_SIGNUP",
			})
		default:
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "resend_failed",
				Message: "Failed to resend verification code",
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Verification code sent. Please check your email.",
	})
}

// LoginRequest represents the request to log in
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents a successful login
type LoginResponse struct {
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    *models.User `json:"user"`
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	user, token, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		switch err {
		case services.ErrInvalidCredentials:
			c.JSON(http.StatusUnauthorized, ErrorResponse{
				Error:   "invalid_credentials",
				Message: "Invalid email or password",
				Code:    "INVALID_CREDENTIALS",
			})
		case services.ErrAccountNotApproved:
			c.JSON(http.StatusForbidden, ErrorResponse{
				Error:   "not_approved",
				Message: "Your account is pending admin approval",
				Code:    "PENDING_APPROVAL",
			})
		case services.ErrAccountRejected:
			c.JSON(http.StatusForbidden, ErrorResponse{
				Error:   "rejected",
				Message: "Your account application was rejected",
				Code:    "APPLICATION_REJECTED",
			})
		default:
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "login_failed",
				Message: "Failed to log in",
			})
		}
		return
	}

	clientInfo := utils.SummarizeUserAgent(utils.GetUserAgent(c))
	h.logger.WithFields(logrus.Fields{
		"user_id":     user.ID,
		"role":        user.Role,
		"ip":          utils.GetRealIP(c),
		"device_type": clientInfo.DeviceType,
		"os":          clientInfo.OS,
		"browser":     clientInfo.Browser,
	}).Info("User logged in")

	c.JSON(http.StatusOK, LoginResponse{
		Message: "Login successful",
		Token:   token,
		User:    user,
	})
}

// Logout handles POST /api/auth/logout. Tokens are stateless, so logout
// is a client-side discard; the endpoint exists for audit logging.
func (h *AuthHandler) Logout(c *gin.Context) {
	if userCtx, exists := middleware.GetUserContext(c); exists {
		h.logger.WithField("user_id", userCtx.UserID).Info("User logged out")
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Successfully logged out",
	})
}

// RequestPasswordResetRequest represents the request to start a password reset
type RequestPasswordResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// RequestPasswordReset handles POST /api/auth/request-password-reset.
// The response is identical whether or not the email exists.
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var req RequestPasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	if err := h.authService.RequestPasswordReset(req.Email); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "reset_request_failed",
			Message: "Failed to process password reset request",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "If an account exists for this email, a reset link has been sent.",
	})
}

// ResetPasswordRequest represents the request to complete a password reset
type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// ResetPassword handles POST /api/auth/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	if err := h.authService.ResetPassword(req.Email, req.Token, req.NewPassword); err != nil {
		switch err {
		case services.ErrInvalidResetToken:
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_token",
				Message: "Invalid or expired reset token",
				Code:    "INVALID_RESET_TOKEN",
			})
		default:
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "reset_failed",
				Message: "Failed to reset password",
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Password reset successfully. You can now log in.",
	})
}
