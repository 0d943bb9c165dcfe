package models

import (
	"time"

	"github.com/google/uuid"
)

// Role represents the role of an account
type Role string

const (
	RoleClient    Role = "client"
	RoleSurveyor  Role = "surveyor"
	RoleGISExpert Role = "gis-expert"
	RoleAdmin     Role = "admin"
)

// IsValid reports whether the role is one of the known roles
func (r Role) IsValid() bool {
	switch r {
	case RoleClient, RoleSurveyor, RoleGISExpert, RoleAdmin:
		return true
	}
	return false
}

// RequiresApproval reports whether accounts with this role must be
// approved by an admin before they can log in
func (r Role) RequiresApproval() bool {
	return r == RoleSurveyor || r == RoleGISExpert
}

// DisplayName returns the human-readable role name used in messages
func (r Role) DisplayName() string {
	switch r {
	case RoleSurveyor:
		return "Surveyor"
	case RoleGISExpert:
		return "GIS Expert"
	case RoleAdmin:
		return "Admin"
	default:
		return "Client"
	}
}

// ApprovalStatus represents the approval state of an account
type ApprovalStatus string

const (
	ApprovalStatusApproved ApprovalStatus = "approved"
	ApprovalStatusPending  ApprovalStatus = "pending"
	ApprovalStatusRejected ApprovalStatus = "rejected"
)

// User represents a registered account in the durable store
type User struct {
	ID                   uuid.UUID      `json:"id" db:"id"`
	Name                 string         `json:"name" db:"name"`
	Email                string         `json:"email" db:"email"`
	Password             string         `json:"-" db:"password"`
	Role                 Role           `json:"role" db:"role"`
	Status               ApprovalStatus `json:"status" db:"status"`
	PhoneNumber          *string        `json:"phone_number,omitempty" db:"phone_number"`
	ISKNumber            *string        `json:"isk_number,omitempty" db:"isk_number"`
	IDCardURL            *string        `json:"id_card_url,omitempty" db:"id_card_url"`
	CertURL              *string        `json:"cert_url,omitempty" db:"cert_url"`
	ProfileImageURL      *string        `json:"profile_image_url,omitempty" db:"profile_image_url"`
	NotificationsEnabled bool           `json:"notifications_enabled" db:"notifications_enabled"`
	ResetToken           *string        `json:"-" db:"reset_token"`
	ResetTokenExpiry     *time.Time     `json:"-" db:"reset_token_expiry"`
	CreatedAt            time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at" db:"updated_at"`
}

// IsProfessional reports whether the user is a surveyor or GIS expert
func (u *User) IsProfessional() bool {
	return u.Role.RequiresApproval()
}
