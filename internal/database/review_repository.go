package database

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/landlink/survey-backend/internal/models"
)

// ReviewRepository handles booking review database operations
type ReviewRepository struct {
	db DB
}

// NewReviewRepository creates a new review repository
func NewReviewRepository(db DB) *ReviewRepository {
	return &ReviewRepository{
		db: db,
	}
}

// Create inserts a new review
func (r *ReviewRepository) Create(review *models.Review) error {
	if review.Rating < 1 || review.Rating > 5 {
		return fmt.Errorf("rating must be between 1 and 5")
	}
	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}
	review.CreatedAt = time.Now()

	query := `
		INSERT INTO reviews (id, booking_id, user_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Exec(query, review.ID, review.BookingID, review.UserID, review.Rating, review.Comment, review.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}

	return nil
}

// ListByBooking retrieves all reviews for a booking, newest first
func (r *ReviewRepository) ListByBooking(bookingID uuid.UUID) ([]*models.Review, error) {
	var reviews []*models.Review

	query := `
		SELECT id, booking_id, user_id, rating, comment, created_at
		FROM reviews
		WHERE booking_id = $1
		ORDER BY created_at DESC
	`

	if err := r.db.Select(&reviews, query, bookingID); err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}

	return reviews, nil
}
