package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/landlink/survey-backend/internal/middleware"
	"github.com/landlink/survey-backend/internal/services"
	"github.com/landlink/survey-backend/pkg/validator"
)

// PaymentHandler handles payment initiation and the asynchronous provider
// callbacks. Callback endpoints always acknowledge with 200; a non-200
// would make the provider retry payloads we have already dealt with.
type PaymentHandler struct {
	paymentService *services.PaymentService
	phoneValidator *validator.PhoneValidator
	logger         *logrus.Logger
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(
	paymentService *services.PaymentService,
	phoneValidator *validator.PhoneValidator,
	logger *logrus.Logger,
) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		phoneValidator: phoneValidator,
		logger:         logger,
	}
}

// InitiateCardRequest represents the request to start a card payment
type InitiateCardRequest struct {
	Amount    int64   `json:"amount" binding:"required,gt=0"`
	BookingID *string `json:"booking_id"`
}

// InitiateCard handles POST /api/payments/card
func (h *PaymentHandler) InitiateCard(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	var req InitiateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	bookingID, ok := parseOptionalID(req.BookingID)
	if !ok {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid booking id",
		})
		return
	}

	payment, checkoutURL, err := h.paymentService.InitiateCard(userCtx.Email, req.Amount, bookingID)
	if err != nil {
		if err == services.ErrProviderUnavailable {
			c.JSON(http.StatusBadGateway, ErrorResponse{
				Error:   "provider_unavailable",
				Message: "Payment provider is unavailable. Please try again later.",
				Code:    "PROVIDER_UNAVAILABLE",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "payment_initiation_failed",
			Message: "Failed to initiate payment",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":           "Payment initiated. Complete checkout to finish.",
		"payment":           payment,
		"authorization_url": checkoutURL,
	})
}

// InitiateMobileRequest represents the request to start a mobile-money
// payment
type InitiateMobileRequest struct {
	Phone     string  `json:"phone" binding:"required"`
	Amount    int64   `json:"amount" binding:"required,gt=0"`
	BookingID *string `json:"booking_id"`
}

// InitiateMobile handles POST /api/payments/mpesa
func (h *PaymentHandler) InitiateMobile(c *gin.Context) {
	var req InitiateMobileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	phone, err := h.phoneValidator.Validate(req.Phone)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_phone",
			Message: err.Error(),
			Code:    "INVALID_PHONE",
		})
		return
	}

	bookingID, ok := parseOptionalID(req.BookingID)
	if !ok {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid booking id",
		})
		return
	}

	payment, err := h.paymentService.InitiateMobile(phone, req.Amount, bookingID)
	if err != nil {
		if err == services.ErrProviderUnavailable {
			c.JSON(http.StatusBadGateway, ErrorResponse{
				Error:   "provider_unavailable",
				Message: "Payment provider is unavailable. Please try again later.",
				Code:    "PROVIDER_UNAVAILABLE",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "payment_initiation_failed",
			Message: "Failed to initiate payment",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Payment prompt sent. Approve it on your phone.",
		"payment": payment,
	})
}

// PaystackWebhook handles POST /api/payments/paystack/webhook
func (h *PaymentHandler) PaystackWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"status": "acknowledged"})
		return
	}

	reference, succeeded, ok := services.ParsePaystackWebhook(body)
	if !ok {
		h.logger.Debug("Ignoring unrecognized Paystack webhook payload")
		c.JSON(http.StatusOK, gin.H{"status": "acknowledged"})
		return
	}

	if _, err := h.paymentService.Reconcile(reference, succeeded); err != nil {
		h.logger.WithError(err).WithField("reference", reference).
			Error("Failed to reconcile Paystack webhook")
	}

	c.JSON(http.StatusOK, gin.H{"status": "acknowledged"})
}

// MpesaCallback handles POST /api/payments/mpesa/callback
func (h *PaymentHandler) MpesaCallback(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"ResultCode": 0, "ResultDesc": "Accepted"})
		return
	}

	reference, succeeded, ok := services.ParseMpesaCallback(body)
	if !ok {
		h.logger.Debug("Ignoring unrecognized M-Pesa callback payload")
		c.JSON(http.StatusOK, gin.H{"ResultCode": 0, "ResultDesc": "Accepted"})
		return
	}

	if _, err := h.paymentService.Reconcile(reference, succeeded); err != nil {
		h.logger.WithError(err).WithField("reference", reference).
			Error("Failed to reconcile M-Pesa callback")
	}

	c.JSON(http.StatusOK, gin.H{"ResultCode": 0, "ResultDesc": "Accepted"})
}

// ListMyPayments handles GET /api/payments. Card payments are keyed by the
// account email; mobile payments by phone, passed as a query parameter.
func (h *PaymentHandler) ListMyPayments(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	payer := userCtx.Email
	if phone := c.Query("phone"); phone != "" {
		normalized, err := h.phoneValidator.Validate(phone)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_phone",
				Message: err.Error(),
				Code:    "INVALID_PHONE",
			})
			return
		}
		payer = normalized
	}

	payments, err := h.paymentService.ListByPayer(payer)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "payments_retrieval_failed",
			Message: "Failed to retrieve payments",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"payments": payments,
		"count":    len(payments),
	})
}

func parseOptionalID(raw *string) (*uuid.UUID, bool) {
	if raw == nil || *raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return nil, false
	}
	return &id, true
}
