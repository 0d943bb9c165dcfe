package database

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/landlink/survey-backend/internal/models"
)

// DemoRequestRepository handles demo booking requests
type DemoRequestRepository struct {
	db DB
}

// NewDemoRequestRepository creates a new demo request repository
func NewDemoRequestRepository(db DB) *DemoRequestRepository {
	return &DemoRequestRepository{
		db: db,
	}
}

// Create inserts a new demo request
func (r *DemoRequestRepository) Create(req *models.DemoRequest) error {
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	req.CreatedAt = time.Now()

	query := `
		INSERT INTO demo_requests (id, name, email, company, phone, date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(query, req.ID, req.Name, req.Email, req.Company, req.Phone, req.Date, req.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create demo request: %w", err)
	}

	return nil
}
