package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/landlink/survey-backend/internal/database"
	"github.com/landlink/survey-backend/internal/models"
)

var (
	// ErrBookingNotFound indicates no booking exists for the id
	ErrBookingNotFound = fmt.Errorf("booking not found")

	// ErrInvalidTransition indicates the requested status change is not
	// legal from the booking's current status
	ErrInvalidTransition = fmt.Errorf("invalid booking status transition")

	// ErrNotAssignee indicates the acting professional is not assigned to
	// the booking
	ErrNotAssignee = fmt.Errorf("booking is not assigned to this professional")

	// ErrNotAssignable indicates the assignee is not an approved professional
	ErrNotAssignable = fmt.Errorf("assignee must be an approved surveyor or GIS expert")

	// ErrNoAssignee indicates acceptance was attempted before assignment
	ErrNoAssignee = fmt.Errorf("booking has no assigned professional")
)

// BookingNotifier is the slice of notification dispatch the booking
// lifecycle needs
type BookingNotifier interface {
	NotifyBookingAccepted(client, professional *models.User, booking *models.Booking)
}

// BookingService governs the booking lifecycle: creation, assignment and
// status transitions. All transitions go through a single conditional
// update in the repository, so concurrent attempts on the same booking
// serialize at the database and cannot produce lost updates.
type BookingService struct {
	bookings *database.BookingRepository
	users    *database.UserRepository
	notifier BookingNotifier
	logger   *logrus.Logger
}

// NewBookingService creates a new booking service
func NewBookingService(
	bookings *database.BookingRepository,
	users *database.UserRepository,
	notifier BookingNotifier,
	logger *logrus.Logger,
) *BookingService {
	return &BookingService{
		bookings: bookings,
		users:    users,
		notifier: notifier,
		logger:   logger,
	}
}

// Create records a new booking in the pending state
func (s *BookingService) Create(userID uuid.UUID, location, surveyType, description string, preferredDate time.Time) (*models.Booking, error) {
	booking := &models.Booking{
		UserID:        userID,
		Location:      location,
		SurveyType:    surveyType,
		Description:   description,
		PreferredDate: preferredDate,
		Status:        models.BookingStatusPending,
	}

	if err := s.bookings.Create(booking); err != nil {
		return nil, err
	}

	return booking, nil
}

// Assign sets the professional on a pending booking. Only approved
// surveyors and GIS experts are assignable; the booking must still be
// pending.
func (s *BookingService) Assign(bookingID, professionalID uuid.UUID) (*models.Booking, error) {
	professional, err := s.users.GetByID(professionalID)
	if err != nil {
		return nil, err
	}
	if professional == nil || !professional.IsProfessional() || professional.Status != models.ApprovalStatusApproved {
		return nil, ErrNotAssignable
	}

	ok, err := s.bookings.Assign(bookingID, professionalID)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Distinguish a missing booking from one past assignment
		booking, err := s.bookings.GetByID(bookingID)
		if err != nil {
			return nil, err
		}
		if booking == nil {
			return nil, ErrBookingNotFound
		}
		return nil, ErrInvalidTransition
	}

	return s.bookings.GetByID(bookingID)
}

// Transition moves a booking to a new status on behalf of an actor. The
// actor must be an admin or the assigned professional; acceptance and the
// initial rejection are reserved for the assignee. Acceptance triggers
// exactly one notification to the requester and one to the assignee,
// both best-effort.
func (s *BookingService) Transition(bookingID uuid.UUID, to models.BookingStatus, actor *models.User) (*models.Booking, error) {
	sources := models.TransitionSources(to)
	if sources == nil {
		return nil, ErrInvalidTransition
	}

	booking, err := s.bookings.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}

	if err := s.authorizeTransition(booking, to, actor); err != nil {
		return nil, err
	}

	ok, err := s.bookings.UpdateStatus(bookingID, to, sources)
	if err != nil {
		return nil, err
	}
	if !ok {
		// The status moved between our read and the conditional write,
		// or was never a legal source. Either way nothing was written.
		return nil, ErrInvalidTransition
	}

	booking.Status = to

	if to == models.BookingStatusAccepted {
		s.notifyAccepted(booking)
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id": bookingID,
		"status":     to,
		"actor_id":   actor.ID,
		"actor_role": actor.Role,
	}).Info("Booking status updated")

	return booking, nil
}

// authorizeTransition enforces which actor may trigger which transition
func (s *BookingService) authorizeTransition(booking *models.Booking, to models.BookingStatus, actor *models.User) error {
	isAdmin := actor.Role == models.RoleAdmin
	isAssignee := booking.AssignedProfessionalID != nil && *booking.AssignedProfessionalID == actor.ID

	switch to {
	case models.BookingStatusAccepted:
		if booking.AssignedProfessionalID == nil {
			return ErrNoAssignee
		}
		if !isAssignee {
			return ErrNotAssignee
		}
	case models.BookingStatusRejected, models.BookingStatusInProgress, models.BookingStatusCompleted:
		if !isAdmin && !isAssignee {
			return ErrNotAssignee
		}
	default:
		return ErrInvalidTransition
	}

	return nil
}

// notifyAccepted dispatches the acceptance notifications. Failures here
// never affect the transition; lookups that fail are logged and dropped.
func (s *BookingService) notifyAccepted(booking *models.Booking) {
	client, err := s.users.GetByID(booking.UserID)
	if err != nil || client == nil {
		s.logger.WithError(err).WithField("booking_id", booking.ID).
			Warn("Skipping acceptance notification: requester lookup failed")
		return
	}

	professional, err := s.users.GetByID(*booking.AssignedProfessionalID)
	if err != nil || professional == nil {
		s.logger.WithError(err).WithField("booking_id", booking.ID).
			Warn("Skipping acceptance notification: assignee lookup failed")
		return
	}

	s.notifier.NotifyBookingAccepted(client, professional, booking)
}

// DashboardStats summarizes a professional's assignments
type DashboardStats struct {
	Name           string            `json:"name"`
	TotalAssigned  int               `json:"total_assigned"`
	CompletedCount int               `json:"completed_count"`
	PendingCount   int               `json:"pending_count"`
	RecentBookings []*models.Booking `json:"recent_bookings"`
}

// AssigneeDashboard builds the dashboard view for a professional
func (s *BookingService) AssigneeDashboard(professional *models.User) (*DashboardStats, error) {
	assigned, err := s.bookings.ListByAssignee(professional.ID)
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{
		Name:          professional.Name,
		TotalAssigned: len(assigned),
	}
	for _, b := range assigned {
		switch b.Status {
		case models.BookingStatusCompleted:
			stats.CompletedCount++
		case models.BookingStatusPending:
			stats.PendingCount++
		}
	}

	recent := assigned
	if len(recent) > 5 {
		recent = recent[:5]
	}
	stats.RecentBookings = recent

	return stats, nil
}
