package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/landlink/survey-backend/internal/database"
	"github.com/landlink/survey-backend/internal/models"
	"github.com/landlink/survey-backend/internal/utils"
	"github.com/landlink/survey-backend/pkg/jwt"
)

var (
	// ErrInvalidCredentials covers unknown email and wrong password alike,
	// so login responses never reveal which one it was
	ErrInvalidCredentials = fmt.Errorf("invalid email or password")

	// ErrAccountNotApproved indicates a professional account that has not
	// been approved by an admin yet
	ErrAccountNotApproved = fmt.Errorf("account is pending admin approval")

	// ErrAccountRejected indicates a professional account an admin rejected
	ErrAccountRejected = fmt.Errorf("account application was rejected")

	// ErrInvalidResetToken indicates the reset token is unknown, expired or
	// already consumed
	ErrInvalidResetToken = fmt.Errorf("invalid or expired reset token")

	// ErrIncorrectPassword indicates the current password did not match
	ErrIncorrectPassword = fmt.Errorf("incorrect current password")

	// ErrInvalidAdminCode indicates the admin signup secret did not match
	ErrInvalidAdminCode = fmt.Errorf("invalid admin secret code")
)

// PasswordResetNotifier is the slice of notification dispatch the auth
// flow needs
type PasswordResetNotifier interface {
	NotifyPasswordReset(email, token string)
}

// AuthService handles login, admin signup and password management
type AuthService struct {
	users           *database.UserRepository
	jwtService      *jwt.Service
	notifier        PasswordResetNotifier
	logger          *logrus.Logger
	bcryptCost      int
	adminSecretCode string
	resetTokenTTL   time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(
	users *database.UserRepository,
	jwtService *jwt.Service,
	notifier PasswordResetNotifier,
	logger *logrus.Logger,
	bcryptCost int,
	adminSecretCode string,
	resetTokenTTL time.Duration,
) *AuthService {
	return &AuthService{
		users:           users,
		jwtService:      jwtService,
		notifier:        notifier,
		logger:          logger,
		bcryptCost:      bcryptCost,
		adminSecretCode: adminSecretCode,
		resetTokenTTL:   resetTokenTTL,
	}
}

// Login authenticates a user and returns the user with a signed token.
// Professionals that are not approved cannot log in regardless of
// credentials.
func (s *AuthService) Login(email, password string) (*models.User, string, error) {
	user, err := s.users.GetByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		return nil, "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	if user.Role.RequiresApproval() {
		switch user.Status {
		case models.ApprovalStatusPending:
			return nil, "", ErrAccountNotApproved
		case models.ApprovalStatusRejected:
			return nil, "", ErrAccountRejected
		}
	}

	token, err := s.jwtService.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	return user, token, nil
}

// AdminSignup creates an admin account. The caller must present the
// shared admin secret code.
func (s *AuthService) AdminSignup(name, email, password, secretCode string) (*models.User, error) {
	if secretCode == "" || secretCode != s.adminSecretCode {
		return nil, ErrInvalidAdminCode
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:                 name,
		Email:                strings.ToLower(strings.TrimSpace(email)),
		Password:             string(hash),
		Role:                 models.RoleAdmin,
		Status:               models.ApprovalStatusApproved,
		NotificationsEnabled: true,
	}
	if err := s.users.Create(user); err != nil {
		if err == database.ErrDuplicateEmail {
			return nil, ErrEmailExists
		}
		return nil, err
	}

	s.logger.WithField("email", user.Email).Info("Admin account created")

	return user, nil
}

// RequestPasswordReset issues a reset token for the email and dispatches
// the reset link. Unknown emails are silently ignored so the endpoint
// cannot be used to probe for accounts.
func (s *AuthService) RequestPasswordReset(email string) error {
	user, err := s.users.GetByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return err
	}
	if user == nil {
		s.logger.WithField("email", email).Info("Password reset requested for unknown email")
		return nil
	}

	token, err := utils.GenerateSecret(32)
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}

	expiry := time.Now().Add(s.resetTokenTTL)
	if err := s.users.SetResetToken(user.Email, token, expiry); err != nil {
		return err
	}

	s.notifier.NotifyPasswordReset(user.Email, token)

	return nil
}

// ResetPassword consumes a reset token and sets a new password. The token
// check, the expiry check and the token clear happen in one conditional
// update, so a token can never be used twice.
func (s *AuthService) ResetPassword(email, token, newPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	ok, err := s.users.CompleteReset(strings.ToLower(strings.TrimSpace(email)), token, string(hash), time.Now())
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidResetToken
	}

	s.logger.WithField("email", email).Info("Password reset completed")

	return nil
}

// ChangePassword updates a logged-in user's password after verifying the
// current one
func (s *AuthService) ChangePassword(userID uuid.UUID, oldPassword, newPassword string) error {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return database.ErrUserNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)); err != nil {
		return ErrIncorrectPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.users.UpdatePassword(userID, string(hash))
}
