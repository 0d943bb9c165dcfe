package services

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/landlink/survey-backend/internal/database"
	"github.com/landlink/survey-backend/internal/models"
	"github.com/landlink/survey-backend/pkg/jwt"
)

func newAuthService(t *testing.T) (*AuthService, *recordingNotifier, sqlmock.Sqlmock) {
	t.Helper()

	db, mock := newMockDB(t)
	notifier := &recordingNotifier{}
	service := NewAuthService(
		database.NewUserRepository(db),
		jwt.NewService("test-secret-key", time.Hour),
		notifier,
		newTestLogger(),
		bcrypt.MinCost,
		"admin-code",
		time.Hour,
	)
	return service, notifier, mock
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestLogin(t *testing.T) {
	t.Run("Approved Client Gets A Token", func(t *testing.T) {
		service, _, mock := newAuthService(t)

		user := &models.User{
			ID:       uuid.New(),
			Email:    "client@example.com",
			Password: hashPassword(t, "hunter2hunter2"),
			Role:     models.RoleClient,
			Status:   models.ApprovalStatusApproved,
		}

		mock.ExpectQuery(`SELECT (.+) FROM users WHERE email`).
			WithArgs("client@example.com").
			WillReturnRows(userRow(user))

		loggedIn, token, err := service.Login("  Client@Example.com ", "hunter2hunter2")
		require.NoError(t, err)
		assert.Equal(t, user.ID, loggedIn.ID)
		assert.NotEmpty(t, token)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unknown Email And Wrong Password Look The Same", func(t *testing.T) {
		service, _, mock := newAuthService(t)

		mock.ExpectQuery(`SELECT (.+) FROM users WHERE email`).
			WillReturnRows(emptyUserRows())

		_, _, err := service.Login("nobody@example.com", "whatever")
		assert.ErrorIs(t, err, ErrInvalidCredentials)

		user := &models.User{
			ID:       uuid.New(),
			Email:    "client@example.com",
			Password: hashPassword(t, "hunter2hunter2"),
			Role:     models.RoleClient,
			Status:   models.ApprovalStatusApproved,
		}
		mock.ExpectQuery(`SELECT (.+) FROM users WHERE email`).
			WillReturnRows(userRow(user))

		_, _, err = service.Login("client@example.com", "wrong-password")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("Pending Professional Cannot Log In", func(t *testing.T) {
		service, _, mock := newAuthService(t)

		user := &models.User{
			ID:       uuid.New(),
			Email:    "surveyor@example.com",
			Password: hashPassword(t, "hunter2hunter2"),
			Role:     models.RoleSurveyor,
			Status:   models.ApprovalStatusPending,
		}
		mock.ExpectQuery(`SELECT (.+) FROM users WHERE email`).
			WillReturnRows(userRow(user))

		_, _, err := service.Login("surveyor@example.com", "hunter2hunter2")
		assert.ErrorIs(t, err, ErrAccountNotApproved)
	})

	t.Run("Rejected Professional Cannot Log In", func(t *testing.T) {
		service, _, mock := newAuthService(t)

		user := &models.User{
			ID:       uuid.New(),
			Email:    "surveyor@example.com",
			Password: hashPassword(t, "hunter2hunter2"),
			Role:     models.RoleGISExpert,
			Status:   models.ApprovalStatusRejected,
		}
		mock.ExpectQuery(`SELECT (.+) FROM users WHERE email`).
			WillReturnRows(userRow(user))

		_, _, err := service.Login("surveyor@example.com", "hunter2hunter2")
		assert.ErrorIs(t, err, ErrAccountRejected)
	})
}

func TestAdminSignup(t *testing.T) {
	t.Run("Correct Secret Creates An Admin", func(t *testing.T) {
		service, _, mock := newAuthService(t)

		mock.ExpectExec(`INSERT INTO users`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		user, err := service.AdminSignup("Site Admin", "admin@example.com", "hunter2hunter2", "admin-code")
		require.NoError(t, err)
		assert.Equal(t, models.RoleAdmin, user.Role)
		assert.Equal(t, models.ApprovalStatusApproved, user.Status)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Wrong Secret Is Refused", func(t *testing.T) {
		service, _, _ := newAuthService(t)

		_, err := service.AdminSignup("Site Admin", "admin@example.com", "hunter2hunter2", "wrong")
		assert.ErrorIs(t, err, ErrInvalidAdminCode)
	})
}

func TestRequestPasswordReset(t *testing.T) {
	t.Run("Known Email Gets A Token", func(t *testing.T) {
		service, notifier, mock := newAuthService(t)

		user := &models.User{
			ID:     uuid.New(),
			Email:  "client@example.com",
			Role:   models.RoleClient,
			Status: models.ApprovalStatusApproved,
		}
		mock.ExpectQuery(`SELECT (.+) FROM users WHERE email`).
			WillReturnRows(userRow(user))
		mock.ExpectExec(`UPDATE users SET reset_token`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, service.RequestPasswordReset("client@example.com"))

		require.Len(t, notifier.resets, 1)
		assert.Equal(t, "client@example.com", notifier.resets[0].Email)
		assert.NotEmpty(t, notifier.resets[0].Token)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unknown Email Is Silently Ignored", func(t *testing.T) {
		service, notifier, mock := newAuthService(t)

		mock.ExpectQuery(`SELECT (.+) FROM users WHERE email`).
			WillReturnRows(emptyUserRows())

		require.NoError(t, service.RequestPasswordReset("nobody@example.com"))
		assert.Empty(t, notifier.resets)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestResetPassword(t *testing.T) {
	t.Run("Valid Token Is Consumed", func(t *testing.T) {
		service, _, mock := newAuthService(t)

		mock.ExpectExec(`UPDATE users SET password`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := service.ResetPassword("client@example.com", "reset-token", "newpassword123")
		assert.NoError(t, err)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Stale Or Reused Token Is Refused", func(t *testing.T) {
		service, _, mock := newAuthService(t)

		mock.ExpectExec(`UPDATE users SET password`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := service.ResetPassword("client@example.com", "reset-token", "newpassword123")
		assert.ErrorIs(t, err, ErrInvalidResetToken)
	})
}

func TestChangePassword(t *testing.T) {
	t.Run("Current Password Must Match", func(t *testing.T) {
		service, _, mock := newAuthService(t)

		user := &models.User{
			ID:       uuid.New(),
			Email:    "client@example.com",
			Password: hashPassword(t, "hunter2hunter2"),
			Role:     models.RoleClient,
			Status:   models.ApprovalStatusApproved,
		}
		mock.ExpectQuery(`SELECT (.+) FROM users WHERE id`).
			WithArgs(user.ID).
			WillReturnRows(userRow(user))

		err := service.ChangePassword(user.ID, "wrong-password", "newpassword123")
		assert.ErrorIs(t, err, ErrIncorrectPassword)
	})

	t.Run("Success", func(t *testing.T) {
		service, _, mock := newAuthService(t)

		user := &models.User{
			ID:       uuid.New(),
			Email:    "client@example.com",
			Password: hashPassword(t, "hunter2hunter2"),
			Role:     models.RoleClient,
			Status:   models.ApprovalStatusApproved,
		}
		mock.ExpectQuery(`SELECT (.+) FROM users WHERE id`).
			WithArgs(user.ID).
			WillReturnRows(userRow(user))
		mock.ExpectExec(`UPDATE users SET password`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := service.ChangePassword(user.ID, "hunter2hunter2", "newpassword123")
		assert.NoError(t, err)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
