package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/landlink/survey-backend/internal/models"
)

// PaymentRepository handles the payment intent ledger
type PaymentRepository struct {
	db DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db DB) *PaymentRepository {
	return &PaymentRepository{
		db: db,
	}
}

// Create inserts a pending payment intent. The reference must be the
// provider-issued transaction identifier; intents are never persisted
// before the provider has returned one.
func (r *PaymentRepository) Create(payment *models.Payment) error {
	if payment.Reference == "" {
		return fmt.Errorf("payment reference is required")
	}
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	if payment.Status == "" {
		payment.Status = models.PaymentStatusPending
	}
	payment.CreatedAt = time.Now()

	query := `
		INSERT INTO payments (
			id, payer, amount, provider, status, reference, booking_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Exec(
		query,
		payment.ID,
		payment.Payer,
		payment.Amount,
		payment.Provider,
		payment.Status,
		payment.Reference,
		payment.BookingID,
		payment.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateReference
		}
		return fmt.Errorf("failed to create payment: %w", err)
	}

	return nil
}

const paymentColumns = `
		id, payer, amount, provider, status, reference, booking_id,
		resolved_at, created_at`

// GetByReference retrieves a payment by its provider reference
func (r *PaymentRepository) GetByReference(reference string) (*models.Payment, error) {
	var payment models.Payment

	query := `SELECT` + paymentColumns + ` FROM payments WHERE reference = $1`

	err := r.db.Get(&payment, query, reference)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get payment by reference: %w", err)
	}

	return &payment, nil
}

// ListByPayer retrieves payments for a payer identity, case-insensitive,
// newest first
func (r *PaymentRepository) ListByPayer(payer string) ([]*models.Payment, error) {
	var payments []*models.Payment

	query := `SELECT` + paymentColumns + ` FROM payments WHERE LOWER(payer) = LOWER($1) ORDER BY created_at DESC`

	if err := r.db.Select(&payments, query, payer); err != nil {
		return nil, fmt.Errorf("failed to list payments by payer: %w", err)
	}

	return payments, nil
}

// ListByBooking retrieves payments linked to a booking, newest first
func (r *PaymentRepository) ListByBooking(bookingID uuid.UUID) ([]*models.Payment, error) {
	var payments []*models.Payment

	query := `SELECT` + paymentColumns + ` FROM payments WHERE booking_id = $1 ORDER BY created_at DESC`

	if err := r.db.Select(&payments, query, bookingID); err != nil {
		return nil, fmt.Errorf("failed to list payments by booking: %w", err)
	}

	return payments, nil
}

// Resolve moves a pending payment to success or failed. The status guard
// makes resolution a test-and-set: a payment that is already resolved is
// left untouched no matter what a later callback says, so duplicated or
// replayed provider callbacks cannot flip the outcome. Returns whether
// this call performed the resolution.
func (r *PaymentRepository) Resolve(reference string, status models.PaymentStatus) (bool, error) {
	if !status.IsResolved() {
		return false, fmt.Errorf("invalid resolution status: %s", status)
	}

	query := `
		UPDATE payments
		SET status = $1, resolved_at = $2
		WHERE reference = $3 AND status = 'pending'
	`

	result, err := r.db.Exec(query, status, time.Now(), reference)
	if err != nil {
		return false, fmt.Errorf("failed to resolve payment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check payment resolution: %w", err)
	}

	return rows > 0, nil
}
