package models

import "time"

// PendingRegistration holds an unverified signup awaiting OTP
// confirmation. Entries live only in the in-process pending store and are
// never written to the database; a process restart discards them.
type PendingRegistration struct {
	Name        string
	Email       string
	Password    string // bcrypt hash, never plaintext
	Role        Role
	PhoneNumber *string
	ISKNumber   *string
	IDCardURL   *string
	CertURL     *string

	OTP          string
	OTPExpiresAt time.Time

	// Verified is set once the OTP has been confirmed. Approval-required
	// roles stay in the store with Verified=true until an admin decides.
	Verified bool
	StagedAt time.Time
}

// Expired reports whether the OTP has passed its expiry at the given time
func (p *PendingRegistration) Expired(now time.Time) bool {
	return now.After(p.OTPExpiresAt)
}
