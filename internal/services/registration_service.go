package services

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/landlink/survey-backend/internal/database"
	"github.com/landlink/survey-backend/internal/models"
)

var (
	// ErrEmailExists indicates the email is already registered in the
	// durable account store
	ErrEmailExists = fmt.Errorf("an account with this email already exists")

	// ErrPendingNotFound indicates no staged signup exists for the email
	ErrPendingNotFound = fmt.Errorf("no signup session found for this email")

	// ErrOTPExpired indicates the verification code has expired
	ErrOTPExpired = fmt.Errorf("verification code has expired")

	// ErrOTPMismatch indicates the verification code is incorrect
	ErrOTPMismatch = fmt.Errorf("verification code does not match")

	// ErrNotVerified indicates the staged signup has not confirmed its code
	ErrNotVerified = fmt.Errorf("signup has not been verified yet")

	// ErrMissingProfessionalFields indicates a professional signup lacks
	// the ISK number or document uploads
	ErrMissingProfessionalFields = fmt.Errorf("professional registration requires an ISK number, ID card and certificate")

	// ErrInvalidRole indicates a signup role outside client, surveyor and
	// gis-expert
	ErrInvalidRole = fmt.Errorf("invalid signup role")
)

// PendingStore holds staged registrations in process memory, keyed by
// email. It is deliberately not backed by the database: entries are lost
// on restart, which is an accepted failure mode for unverified signups.
// The store is owned by the service root and injected, so tests can reset
// it between cases. Entries are copied in and out, so callers never share
// memory with the store; all mutation goes through Put under the lock.
type PendingStore struct {
	mu      sync.RWMutex
	entries map[string]*models.PendingRegistration
}

// NewPendingStore creates an empty pending registration store
func NewPendingStore() *PendingStore {
	return &PendingStore{
		entries: make(map[string]*models.PendingRegistration),
	}
}

// Get returns a copy of the staged entry for an email, or nil
func (s *PendingStore) Get(email string) *models.PendingRegistration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[email]
	if !ok {
		return nil
	}
	out := *entry
	return &out
}

// Put stores a copy of the entry, replacing any prior entry for the email
func (s *PendingStore) Put(entry *models.PendingRegistration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *entry
	s.entries[entry.Email] = &stored
}

// Delete removes the staged entry for an email
func (s *PendingStore) Delete(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, email)
}

// List returns copies of all staged entries matching the filter
func (s *PendingStore) List(filter func(*models.PendingRegistration) bool) []*models.PendingRegistration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.PendingRegistration
	for _, e := range s.entries {
		if filter == nil || filter(e) {
			entry := *e
			out = append(out, &entry)
		}
	}
	return out
}

// Reset discards all staged entries
func (s *PendingStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]*models.PendingRegistration)
}

// RegistrationNotifier is the slice of notification dispatch the
// registration flow needs
type RegistrationNotifier interface {
	NotifyOTP(email string, phone *string, otp string, expiryMinutes int)
	NotifyApprovalDecision(email, name string, role models.Role, approved bool)
}

// RegistrationService manages OTP-gated signups: staging, confirmation,
// code reissue and the admin promotion step for professionals
type RegistrationService struct {
	store      *PendingStore
	users      *database.UserRepository
	notifier   RegistrationNotifier
	logger     *logrus.Logger
	bcryptCost int
	otpTTL     time.Duration
}

// NewRegistrationService creates a new registration service
func NewRegistrationService(
	store *PendingStore,
	users *database.UserRepository,
	notifier RegistrationNotifier,
	bcryptCost int,
	otpTTL time.Duration,
	logger *logrus.Logger,
) *RegistrationService {
	return &RegistrationService{
		store:      store,
		users:      users,
		notifier:   notifier,
		logger:     logger,
		bcryptCost: bcryptCost,
		otpTTL:     otpTTL,
	}
}

// StageInput carries a signup submission
type StageInput struct {
	Name        string
	Email       string
	Password    string
	Role        models.Role
	PhoneNumber *string
	ISKNumber   *string
	IDCardURL   *string
	CertURL     *string
}

// Stage holds a signup in the pending store and dispatches an OTP. A new
// submission for an already-staged email replaces the prior entry. Fails
// with ErrEmailExists if the email is already a durable account.
func (s *RegistrationService) Stage(input StageInput) (*models.PendingRegistration, error) {
	if !input.Role.IsValid() || input.Role == models.RoleAdmin {
		return nil, ErrInvalidRole
	}

	input.Email = normalizeEmail(input.Email)

	if input.Role.RequiresApproval() {
		if input.ISKNumber == nil || *input.ISKNumber == "" ||
			input.IDCardURL == nil || input.CertURL == nil {
			return nil, ErrMissingProfessionalFields
		}
	}

	existing, err := s.users.GetByEmail(input.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing account: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	otp, err := generateOTP()
	if err != nil {
		return nil, fmt.Errorf("failed to generate OTP: %w", err)
	}

	entry := &models.PendingRegistration{
		Name:         input.Name,
		Email:        input.Email,
		Password:     string(hash),
		Role:         input.Role,
		PhoneNumber:  input.PhoneNumber,
		ISKNumber:    input.ISKNumber,
		IDCardURL:    input.IDCardURL,
		CertURL:      input.CertURL,
		OTP:          otp,
		OTPExpiresAt: time.Now().Add(s.otpTTL),
		StagedAt:     time.Now(),
	}
	s.store.Put(entry)

	s.notifier.NotifyOTP(entry.Email, entry.PhoneNumber, otp, s.otpMinutes())

	s.logger.WithFields(logrus.Fields{
		"email": entry.Email,
		"role":  entry.Role,
	}).Info("Signup staged, OTP dispatched")

	return entry, nil
}

// Confirm checks the OTP for a staged signup. Self-approving roles are
// promoted to a durable account immediately and the returned user is
// non-nil. Approval-required roles stay in the pending store, marked
// verified, until an admin decides.
func (s *RegistrationService) Confirm(email, otp string) (*models.User, error) {
	email = normalizeEmail(email)

	entry := s.store.Get(email)
	if entry == nil {
		return nil, ErrPendingNotFound
	}

	if entry.Expired(time.Now()) {
		// Purge so a fresh signup for this email can be staged
		s.store.Delete(email)
		return nil, ErrOTPExpired
	}

	if entry.OTP != otp {
		return nil, ErrOTPMismatch
	}

	if entry.Role.RequiresApproval() {
		entry.Verified = true
		s.store.Put(entry)
		s.logger.WithFields(logrus.Fields{
			"email": email,
			"role":  entry.Role,
		}).Info("Professional signup verified, awaiting admin approval")
		return nil, nil
	}

	user := userFromPending(entry, models.ApprovalStatusApproved)
	if err := s.users.Create(user); err != nil {
		if err == database.ErrDuplicateEmail {
			s.store.Delete(email)
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	s.store.Delete(email)
	return user, nil
}

// Reissue regenerates the OTP for a staged signup in place and
// redispatches it
func (s *RegistrationService) Reissue(email string) error {
	email = normalizeEmail(email)

	entry := s.store.Get(email)
	if entry == nil {
		return ErrPendingNotFound
	}

	otp, err := generateOTP()
	if err != nil {
		return fmt.Errorf("failed to generate OTP: %w", err)
	}

	entry.OTP = otp
	entry.OTPExpiresAt = time.Now().Add(s.otpTTL)
	s.store.Put(entry)

	s.notifier.NotifyOTP(entry.Email, entry.PhoneNumber, otp, s.otpMinutes())
	return nil
}

// otpMinutes renders the OTP TTL in whole minutes for the message copy,
// rounding sub-minute remainders up so a short TTL never reads as zero
func (s *RegistrationService) otpMinutes() int {
	minutes := int(s.otpTTL / time.Minute)
	if s.otpTTL%time.Minute != 0 {
		minutes++
	}
	return minutes
}

// ListPendingProfessionals returns verified staged signups for a
// professional role, for the admin review queue
func (s *RegistrationService) ListPendingProfessionals(role models.Role) []*models.PendingRegistration {
	return s.store.List(func(e *models.PendingRegistration) bool {
		return e.Role == role && e.Verified
	})
}

// Approve promotes a verified staged professional into the durable store
// with approved status and purges the staged entry
func (s *RegistrationService) Approve(email string) (*models.User, error) {
	email = normalizeEmail(email)

	entry := s.store.Get(email)
	if entry == nil {
		return nil, ErrPendingNotFound
	}
	if !entry.Verified {
		return nil, ErrNotVerified
	}

	user := userFromPending(entry, models.ApprovalStatusApproved)
	if err := s.users.Create(user); err != nil {
		if err == database.ErrDuplicateEmail {
			s.store.Delete(email)
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	s.store.Delete(email)
	s.notifier.NotifyApprovalDecision(user.Email, user.Name, user.Role, true)

	s.logger.WithFields(logrus.Fields{
		"email": user.Email,
		"role":  user.Role,
	}).Info("Professional approved and promoted to durable store")

	return user, nil
}

// Reject discards a staged professional signup
func (s *RegistrationService) Reject(email string) error {
	email = normalizeEmail(email)

	entry := s.store.Get(email)
	if entry == nil {
		return ErrPendingNotFound
	}

	s.store.Delete(email)
	s.notifier.NotifyApprovalDecision(entry.Email, entry.Name, entry.Role, false)
	return nil
}

// userFromPending builds a durable account from a staged entry
func userFromPending(entry *models.PendingRegistration, status models.ApprovalStatus) *models.User {
	return &models.User{
		Name:                 entry.Name,
		Email:                entry.Email,
		Password:             entry.Password,
		Role:                 entry.Role,
		Status:               status,
		PhoneNumber:          entry.PhoneNumber,
		ISKNumber:            entry.ISKNumber,
		IDCardURL:            entry.IDCardURL,
		CertURL:              entry.CertURL,
		NotificationsEnabled: true,
	}
}

// normalizeEmail lowercases and trims an email so the staged entry, the
// durable account and every later login or reset lookup agree on the key
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// generateOTP generates a random 6-digit code
func generateOTP() (string, error) {
	max := big.NewInt(1000000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
