package models

import (
	"time"

	"github.com/google/uuid"
)

// BookingStatus represents the lifecycle state of a survey booking
type BookingStatus string

const (
	BookingStatusPending    BookingStatus = "pending"
	BookingStatusAccepted   BookingStatus = "accepted"
	BookingStatusRejected   BookingStatus = "rejected"
	BookingStatusInProgress BookingStatus = "in_progress"
	BookingStatusCompleted  BookingStatus = "completed"
)

// IsValid reports whether the status is part of the booking status domain
func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingStatusPending, BookingStatusAccepted, BookingStatusRejected,
		BookingStatusInProgress, BookingStatusCompleted:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusCompleted || s == BookingStatusRejected
}

// TransitionSources returns the set of statuses a booking may be in for a
// transition to the given target status to be legal. Rejection is allowed
// from any non-terminal status; the forward path is strictly
// pending -> accepted -> in_progress -> completed.
func TransitionSources(to BookingStatus) []BookingStatus {
	switch to {
	case BookingStatusAccepted:
		return []BookingStatus{BookingStatusPending}
	case BookingStatusRejected:
		return []BookingStatus{BookingStatusPending, BookingStatusAccepted, BookingStatusInProgress}
	case BookingStatusInProgress:
		return []BookingStatus{BookingStatusAccepted}
	case BookingStatusCompleted:
		return []BookingStatus{BookingStatusInProgress}
	}
	return nil
}

// Booking represents a requested land-survey job
type Booking struct {
	ID                     uuid.UUID     `json:"id" db:"id"`
	UserID                 uuid.UUID     `json:"user_id" db:"user_id"`
	Location               string        `json:"location" db:"location"`
	SurveyType             string        `json:"survey_type" db:"survey_type"`
	Description            string        `json:"description" db:"description"`
	PreferredDate          time.Time     `json:"preferred_date" db:"preferred_date"`
	Status                 BookingStatus `json:"status" db:"status"`
	AssignedProfessionalID *uuid.UUID    `json:"assigned_professional_id,omitempty" db:"assigned_professional_id"`
	CreatedAt              time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt              time.Time     `json:"updated_at" db:"updated_at"`
}
