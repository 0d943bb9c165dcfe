package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/landlink/survey-backend/internal/models"
)

// ErrUserNotFound indicates no matching user row for an update
var ErrUserNotFound = fmt.Errorf("user not found")

// UserRepository handles account database operations
type UserRepository struct {
	db DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

// Create inserts a new account. The credential must already be hashed.
// Returns ErrDuplicateEmail if the email is already registered.
func (r *UserRepository) Create(user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	query := `
		INSERT INTO users (
			id, name, email, password, role, status,
			phone_number, isk_number, id_card_url, cert_url,
			profile_image_url, notifications_enabled,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.db.Exec(
		query,
		user.ID,
		user.Name,
		user.Email,
		user.Password,
		user.Role,
		user.Status,
		user.PhoneNumber,
		user.ISKNumber,
		user.IDCardURL,
		user.CertURL,
		user.ProfileImageURL,
		user.NotificationsEnabled,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

const userColumns = `
		id, name, email, password, role, status,
		phone_number, isk_number, id_card_url, cert_url,
		profile_image_url, notifications_enabled,
		reset_token, reset_token_expiry,
		created_at, updated_at`

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User

	query := `SELECT` + userColumns + ` FROM users WHERE email = $1`

	err := r.db.Get(&user, query, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // User not found, return nil without error
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return &user, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(id uuid.UUID) (*models.User, error) {
	var user models.User

	query := `SELECT` + userColumns + ` FROM users WHERE id = $1`

	err := r.db.Get(&user, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return &user, nil
}

// ListByRole retrieves all users with the given role, newest first
func (r *UserRepository) ListByRole(role models.Role) ([]*models.User, error) {
	var users []*models.User

	query := `SELECT` + userColumns + ` FROM users WHERE role = $1 ORDER BY created_at DESC`

	if err := r.db.Select(&users, query, role); err != nil {
		return nil, fmt.Errorf("failed to list users by role: %w", err)
	}

	return users, nil
}

// SetApproval sets the approval status of a professional account. The row
// must match both the id and the role; otherwise ErrUserNotFound.
func (r *UserRepository) SetApproval(id uuid.UUID, role models.Role, status models.ApprovalStatus) error {
	query := `
		UPDATE users
		SET status = $1, updated_at = $2
		WHERE id = $3 AND role = $4
	`

	result, err := r.db.Exec(query, status, time.Now(), id, role)
	if err != nil {
		return fmt.Errorf("failed to set approval status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check approval update: %w", err)
	}
	if rows == 0 {
		return ErrUserNotFound
	}

	return nil
}

// UpdateProfile updates the mutable profile fields of a user. Nil values
// leave the stored value unchanged.
func (r *UserRepository) UpdateProfile(id uuid.UUID, name, phoneNumber, profileImageURL *string) error {
	query := `
		UPDATE users
		SET name = COALESCE($1, name),
		    phone_number = COALESCE($2, phone_number),
		    profile_image_url = COALESCE($3, profile_image_url),
		    updated_at = $4
		WHERE id = $5
	`

	result, err := r.db.Exec(query, name, phoneNumber, profileImageURL, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check profile update: %w", err)
	}
	if rows == 0 {
		return ErrUserNotFound
	}

	return nil
}

// UpdatePassword replaces the stored credential hash
func (r *UserRepository) UpdatePassword(id uuid.UUID, passwordHash string) error {
	query := `UPDATE users SET password = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.Exec(query, passwordHash, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check password update: %w", err)
	}
	if rows == 0 {
		return ErrUserNotFound
	}

	return nil
}

// ToggleNotifications flips the notification preference and returns the
// new value
func (r *UserRepository) ToggleNotifications(id uuid.UUID) (bool, error) {
	query := `
		UPDATE users
		SET notifications_enabled = NOT notifications_enabled, updated_at = $1
		WHERE id = $2
		RETURNING notifications_enabled
	`

	var enabled bool
	err := r.db.QueryRow(query, time.Now(), id).Scan(&enabled)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, ErrUserNotFound
		}
		return false, fmt.Errorf("failed to toggle notifications: %w", err)
	}

	return enabled, nil
}

// SetResetToken stores a password reset token and its expiry. Token and
// expiry are always written together.
func (r *UserRepository) SetResetToken(email, token string, expiry time.Time) error {
	query := `
		UPDATE users
		SET reset_token = $1, reset_token_expiry = $2, updated_at = $3
		WHERE email = $4
	`

	result, err := r.db.Exec(query, token, expiry, time.Now(), email)
	if err != nil {
		return fmt.Errorf("failed to set reset token: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check reset token update: %w", err)
	}
	if rows == 0 {
		return ErrUserNotFound
	}

	return nil
}

// CompleteReset replaces the credential and clears the reset token pair in
// a single conditional update. Zero rows affected means the token was
// absent, mismatched or expired, and the stored credential is untouched.
func (r *UserRepository) CompleteReset(email, token, passwordHash string, now time.Time) (bool, error) {
	query := `
		UPDATE users
		SET password = $1, reset_token = NULL, reset_token_expiry = NULL, updated_at = $2
		WHERE email = $3 AND reset_token = $4 AND reset_token_expiry > $5
	`

	result, err := r.db.Exec(query, passwordHash, now, email, token, now)
	if err != nil {
		return false, fmt.Errorf("failed to complete password reset: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check password reset: %w", err)
	}

	return rows > 0, nil
}

// Delete removes an account. Only admin account deletion uses this.
func (r *UserRepository) Delete(id uuid.UUID) error {
	result, err := r.db.Exec(`DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check user deletion: %w", err)
	}
	if rows == 0 {
		return ErrUserNotFound
	}

	return nil
}
