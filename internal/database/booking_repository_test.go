package database

import (
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/landlink/survey-backend/internal/models"
)

func bookingRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_id", "location", "survey_type", "description",
		"preferred_date", "status", "assigned_professional_id",
		"created_at", "updated_at",
	})
}

func TestCreateBooking(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBookingRepository(db)

	t.Run("Success Defaults To Pending", func(t *testing.T) {
		booking := &models.Booking{
			UserID:        uuid.New(),
			Location:      "Nairobi, Karen",
			SurveyType:    "boundary",
			PreferredDate: time.Now().Add(72 * time.Hour),
		}

		mock.ExpectExec(`INSERT INTO bookings`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Create(booking)
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, booking.ID)
		assert.Equal(t, models.BookingStatusPending, booking.Status)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Database Error", func(t *testing.T) {
		booking := &models.Booking{UserID: uuid.New()}

		mock.ExpectExec(`INSERT INTO bookings`).
			WillReturnError(fmt.Errorf("database error"))

		err := repo.Create(booking)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create booking")

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetBookingByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBookingRepository(db)

	t.Run("Success", func(t *testing.T) {
		bookingID := uuid.New()
		userID := uuid.New()
		now := time.Now()

		mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE id`).
			WithArgs(bookingID).
			WillReturnRows(bookingRows().AddRow(
				bookingID, userID, "Nakuru", "topographic", "",
				now, "pending", nil, now, now,
			))

		booking, err := repo.GetByID(bookingID)
		require.NoError(t, err)
		require.NotNil(t, booking)
		assert.Equal(t, bookingID, booking.ID)
		assert.Equal(t, models.BookingStatusPending, booking.Status)
		assert.Nil(t, booking.AssignedProfessionalID)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Found Returns Nil", func(t *testing.T) {
		bookingID := uuid.New()

		mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE id`).
			WithArgs(bookingID).
			WillReturnRows(bookingRows())

		booking, err := repo.GetByID(bookingID)
		require.NoError(t, err)
		assert.Nil(t, booking)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAssignBooking(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBookingRepository(db)

	t.Run("Pending Booking Is Assigned", func(t *testing.T) {
		bookingID := uuid.New()
		professionalID := uuid.New()

		mock.ExpectExec(`UPDATE bookings SET assigned_professional_id`).
			WithArgs(professionalID, sqlmock.AnyArg(), bookingID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		ok, err := repo.Assign(bookingID, professionalID)
		require.NoError(t, err)
		assert.True(t, ok)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Non-Pending Booking Is Untouched", func(t *testing.T) {
		bookingID := uuid.New()
		professionalID := uuid.New()

		mock.ExpectExec(`UPDATE bookings SET assigned_professional_id`).
			WithArgs(professionalID, sqlmock.AnyArg(), bookingID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := repo.Assign(bookingID, professionalID)
		require.NoError(t, err)
		assert.False(t, ok)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUpdateBookingStatus(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBookingRepository(db)

	t.Run("Legal Transition Succeeds", func(t *testing.T) {
		bookingID := uuid.New()

		mock.ExpectExec(`UPDATE bookings SET status`).
			WithArgs(models.BookingStatusAccepted, sqlmock.AnyArg(), bookingID, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		ok, err := repo.UpdateStatus(bookingID, models.BookingStatusAccepted,
			models.TransitionSources(models.BookingStatusAccepted))
		require.NoError(t, err)
		assert.True(t, ok)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Source Mismatch Writes Nothing", func(t *testing.T) {
		bookingID := uuid.New()

		// Completed requires in_progress; a pending row matches no source
		mock.ExpectExec(`UPDATE bookings SET status`).
			WithArgs(models.BookingStatusCompleted, sqlmock.AnyArg(), bookingID, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := repo.UpdateStatus(bookingID, models.BookingStatusCompleted,
			models.TransitionSources(models.BookingStatusCompleted))
		require.NoError(t, err)
		assert.False(t, ok)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTransitionSources(t *testing.T) {
	t.Run("Forward Path", func(t *testing.T) {
		assert.Equal(t,
			[]models.BookingStatus{models.BookingStatusPending},
			models.TransitionSources(models.BookingStatusAccepted))
		assert.Equal(t,
			[]models.BookingStatus{models.BookingStatusAccepted},
			models.TransitionSources(models.BookingStatusInProgress))
		assert.Equal(t,
			[]models.BookingStatus{models.BookingStatusInProgress},
			models.TransitionSources(models.BookingStatusCompleted))
	})

	t.Run("Rejection From Any Non-Terminal", func(t *testing.T) {
		sources := models.TransitionSources(models.BookingStatusRejected)
		assert.ElementsMatch(t, []models.BookingStatus{
			models.BookingStatusPending,
			models.BookingStatusAccepted,
			models.BookingStatusInProgress,
		}, sources)
	})

	t.Run("Pending Is Never A Target", func(t *testing.T) {
		assert.Nil(t, models.TransitionSources(models.BookingStatusPending))
	})
}
