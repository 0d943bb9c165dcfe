package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/landlink/survey-backend/internal/models"
)

// BookingRepository handles booking database operations
type BookingRepository struct {
	db DB
}

// NewBookingRepository creates a new booking repository
func NewBookingRepository(db DB) *BookingRepository {
	return &BookingRepository{
		db: db,
	}
}

// Create inserts a new booking in the pending state
func (r *BookingRepository) Create(booking *models.Booking) error {
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	if booking.Status == "" {
		booking.Status = models.BookingStatusPending
	}
	now := time.Now()
	booking.CreatedAt = now
	booking.UpdatedAt = now

	query := `
		INSERT INTO bookings (
			id, user_id, location, survey_type, description,
			preferred_date, status, assigned_professional_id,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.Exec(
		query,
		booking.ID,
		booking.UserID,
		booking.Location,
		booking.SurveyType,
		booking.Description,
		booking.PreferredDate,
		booking.Status,
		booking.AssignedProfessionalID,
		booking.CreatedAt,
		booking.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	return nil
}

const bookingColumns = `
		id, user_id, location, survey_type, description,
		preferred_date, status, assigned_professional_id,
		created_at, updated_at`

// GetByID retrieves a booking by ID
func (r *BookingRepository) GetByID(id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking

	query := `SELECT` + bookingColumns + ` FROM bookings WHERE id = $1`

	err := r.db.Get(&booking, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	return &booking, nil
}

// ListByRequester retrieves all bookings created by a user, newest first
func (r *BookingRepository) ListByRequester(userID uuid.UUID) ([]*models.Booking, error) {
	var bookings []*models.Booking

	query := `SELECT` + bookingColumns + ` FROM bookings WHERE user_id = $1 ORDER BY created_at DESC`

	if err := r.db.Select(&bookings, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list bookings by requester: %w", err)
	}

	return bookings, nil
}

// ListByAssignee retrieves all bookings assigned to a professional,
// newest first
func (r *BookingRepository) ListByAssignee(professionalID uuid.UUID) ([]*models.Booking, error) {
	var bookings []*models.Booking

	query := `SELECT` + bookingColumns + ` FROM bookings WHERE assigned_professional_id = $1 ORDER BY created_at DESC`

	if err := r.db.Select(&bookings, query, professionalID); err != nil {
		return nil, fmt.Errorf("failed to list bookings by assignee: %w", err)
	}

	return bookings, nil
}

// ListAll retrieves every booking, newest first
func (r *BookingRepository) ListAll() ([]*models.Booking, error) {
	var bookings []*models.Booking

	query := `SELECT` + bookingColumns + ` FROM bookings ORDER BY created_at DESC`

	if err := r.db.Select(&bookings, query); err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	return bookings, nil
}

// Assign sets the assigned professional on a pending booking. The status
// guard keeps assignment from racing a concurrent transition; zero rows
// affected means the booking is missing or no longer pending.
func (r *BookingRepository) Assign(bookingID, professionalID uuid.UUID) (bool, error) {
	query := `
		UPDATE bookings
		SET assigned_professional_id = $1, updated_at = $2
		WHERE id = $3 AND status = 'pending'
	`

	result, err := r.db.Exec(query, professionalID, time.Now(), bookingID)
	if err != nil {
		return false, fmt.Errorf("failed to assign booking: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check booking assignment: %w", err)
	}

	return rows > 0, nil
}

// UpdateStatus transitions a booking to the given status if and only if
// its current status is one of the allowed source statuses. The read,
// validation and write happen in a single conditional update, so two
// concurrent transition attempts can never both succeed.
func (r *BookingRepository) UpdateStatus(bookingID uuid.UUID, to models.BookingStatus, from []models.BookingStatus) (bool, error) {
	sources := make([]string, len(from))
	for i, s := range from {
		sources[i] = string(s)
	}

	query := `
		UPDATE bookings
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = ANY($4)
	`

	result, err := r.db.Exec(query, to, time.Now(), bookingID, pq.Array(sources))
	if err != nil {
		return false, fmt.Errorf("failed to update booking status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check booking status update: %w", err)
	}

	return rows > 0, nil
}
