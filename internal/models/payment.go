package models

import (
	"time"

	"github.com/google/uuid"
)

// PaymentProvider identifies which external gateway a payment went through
type PaymentProvider string

const (
	PaymentProviderPaystack PaymentProvider = "paystack"
	PaymentProviderMpesa    PaymentProvider = "mpesa"
)

// PaymentStatus represents the resolution state of a payment intent
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusSuccess PaymentStatus = "success"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// IsResolved reports whether the payment has reached a final state
func (s PaymentStatus) IsResolved() bool {
	return s == PaymentStatusSuccess || s == PaymentStatusFailed
}

// Payment represents a payment intent in the ledger. Reference is the
// provider-issued transaction identifier and is the only key the
// asynchronous callbacks carry.
type Payment struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	Payer      string          `json:"payer" db:"payer"` // email (Paystack) or phone (M-Pesa)
	Amount     int64           `json:"amount" db:"amount"` // minor units
	Provider   PaymentProvider `json:"provider" db:"provider"`
	Status     PaymentStatus   `json:"status" db:"status"`
	Reference  string          `json:"reference" db:"reference"`
	BookingID  *uuid.UUID      `json:"booking_id,omitempty" db:"booking_id"`
	ResolvedAt *time.Time      `json:"resolved_at,omitempty" db:"resolved_at"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}
