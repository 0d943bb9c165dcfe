package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/landlink/survey-backend/internal/database"
	"github.com/landlink/survey-backend/internal/models"
)

var (
	// ErrProviderUnavailable indicates the payment provider could not be
	// reached or rejected the initiation; no intent was recorded
	ErrProviderUnavailable = fmt.Errorf("payment provider unavailable")
)

// CardGateway initiates hosted-checkout card payments
type CardGateway interface {
	InitializeTransaction(email string, amount int64) (*CardCheckout, error)
}

// MobileGateway initiates mobile-money payment prompts
type MobileGateway interface {
	STKPush(phone string, amount int64) (string, error)
}

// PaymentNotifier is the slice of notification dispatch the payment
// ledger needs
type PaymentNotifier interface {
	NotifyPaymentResolved(payment *models.Payment)
}

// PaymentService owns the payment intent ledger. Initiation only records
// an intent after the provider has issued a reference, so every pending
// row is resolvable; reconciliation is a pending-only test-and-set on
// that reference, so replayed or conflicting callbacks cannot rewrite a
// resolved payment.
type PaymentService struct {
	payments *database.PaymentRepository
	card     CardGateway
	mobile   MobileGateway
	notifier PaymentNotifier
	logger   *logrus.Logger
}

// NewPaymentService creates a new payment service
func NewPaymentService(
	payments *database.PaymentRepository,
	card CardGateway,
	mobile MobileGateway,
	notifier PaymentNotifier,
	logger *logrus.Logger,
) *PaymentService {
	return &PaymentService{
		payments: payments,
		card:     card,
		mobile:   mobile,
		notifier: notifier,
		logger:   logger,
	}
}

// InitiateCard starts a card payment and returns the recorded intent plus
// the hosted checkout URL the payer is redirected to
func (s *PaymentService) InitiateCard(email string, amount int64, bookingID *uuid.UUID) (*models.Payment, string, error) {
	checkout, err := s.card.InitializeTransaction(email, amount)
	if err != nil {
		s.logger.WithError(err).Warn("Card payment initiation failed")
		return nil, "", ErrProviderUnavailable
	}

	payment := &models.Payment{
		Payer:     email,
		Amount:    amount,
		Provider:  models.PaymentProviderPaystack,
		Status:    models.PaymentStatusPending,
		Reference: checkout.Reference,
		BookingID: bookingID,
	}
	if err := s.payments.Create(payment); err != nil {
		return nil, "", err
	}

	return payment, checkout.AuthorizationURL, nil
}

// InitiateMobile starts a mobile-money payment by prompting the payer's
// phone. Phone must already be normalized. The ledger keeps amounts in
// minor units; Daraja bills whole shillings, so the prompt amount rounds
// sub-shilling remainders up rather than undercharging the intent.
func (s *PaymentService) InitiateMobile(phone string, amount int64, bookingID *uuid.UUID) (*models.Payment, error) {
	shillings := amount / 100
	if amount%100 != 0 {
		shillings++
	}

	reference, err := s.mobile.STKPush(phone, shillings)
	if err != nil {
		s.logger.WithError(err).Warn("Mobile payment initiation failed")
		return nil, ErrProviderUnavailable
	}

	payment := &models.Payment{
		Payer:     phone,
		Amount:    amount,
		Provider:  models.PaymentProviderMpesa,
		Status:    models.PaymentStatusPending,
		Reference: reference,
		BookingID: bookingID,
	}
	if err := s.payments.Create(payment); err != nil {
		return nil, err
	}

	return payment, nil
}

// Reconcile applies a provider callback to the ledger. Unknown references
// and already-resolved payments are acknowledged without effect; the
// boolean reports whether this call transitioned the payment. A resolving
// transition dispatches exactly one notification.
func (s *PaymentService) Reconcile(reference string, succeeded bool) (bool, error) {
	payment, err := s.payments.GetByReference(reference)
	if err != nil {
		return false, err
	}
	if payment == nil {
		s.logger.WithField("reference", reference).Warn("Callback for unknown payment reference")
		return false, nil
	}

	status := models.PaymentStatusFailed
	if succeeded {
		status = models.PaymentStatusSuccess
	}

	ok, err := s.payments.Resolve(reference, status)
	if err != nil {
		return false, err
	}
	if !ok {
		s.logger.WithFields(logrus.Fields{
			"reference": reference,
			"status":    payment.Status,
		}).Info("Ignoring callback for already-resolved payment")
		return false, nil
	}

	payment.Status = status
	now := time.Now()
	payment.ResolvedAt = &now

	s.logger.WithFields(logrus.Fields{
		"reference": reference,
		"provider":  payment.Provider,
		"status":    status,
	}).Info("Payment resolved")

	s.notifier.NotifyPaymentResolved(payment)

	return true, nil
}

// ListByPayer returns the payer's payments, newest first
func (s *PaymentService) ListByPayer(payer string) ([]*models.Payment, error) {
	return s.payments.ListByPayer(payer)
}

// ListByBooking returns the payments recorded against a booking
func (s *PaymentService) ListByBooking(bookingID uuid.UUID) ([]*models.Payment, error) {
	return s.payments.ListByBooking(bookingID)
}
