package models

import (
	"time"

	"github.com/google/uuid"
)

// DemoRequest is a public request for a product demonstration
type DemoRequest struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Company   *string   `json:"company,omitempty" db:"company"`
	Phone     *string   `json:"phone,omitempty" db:"phone"`
	Date      time.Time `json:"date" db:"date"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
