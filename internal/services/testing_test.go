package services

import (
	"io"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/landlink/survey-backend/internal/database"
	"github.com/landlink/survey-backend/internal/models"
)

// newMockDB wires a sqlmock connection through the sqlx wrapper the
// repositories expect.
func newMockDB(t *testing.T) (database.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return &database.PostgresDB{DB: sqlx.NewDb(db, "sqlmock")}, mock
}

// newTestLogger returns a logger that discards output
func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func userRow(user *models.User) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "email", "password", "role", "status",
		"phone_number", "isk_number", "id_card_url", "cert_url",
		"profile_image_url", "notifications_enabled",
		"reset_token", "reset_token_expiry",
		"created_at", "updated_at",
	}).AddRow(
		user.ID, user.Name, user.Email, user.Password, user.Role, user.Status,
		user.PhoneNumber, user.ISKNumber, user.IDCardURL, user.CertURL,
		user.ProfileImageURL, user.NotificationsEnabled,
		nil, nil,
		time.Now(), time.Now(),
	)
}

func emptyUserRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "email", "password", "role", "status",
		"phone_number", "isk_number", "id_card_url", "cert_url",
		"profile_image_url", "notifications_enabled",
		"reset_token", "reset_token_expiry",
		"created_at", "updated_at",
	})
}

func bookingRow(booking *models.Booking) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_id", "location", "survey_type", "description",
		"preferred_date", "status", "assigned_professional_id",
		"created_at", "updated_at",
	}).AddRow(
		booking.ID, booking.UserID, booking.Location, booking.SurveyType,
		booking.Description, booking.PreferredDate, booking.Status,
		booking.AssignedProfessionalID, time.Now(), time.Now(),
	)
}

func paymentRow(payment *models.Payment) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "payer", "amount", "provider", "status", "reference",
		"booking_id", "resolved_at", "created_at",
	}).AddRow(
		payment.ID, payment.Payer, payment.Amount, payment.Provider,
		payment.Status, payment.Reference, payment.BookingID,
		payment.ResolvedAt, time.Now(),
	)
}

// recordingNotifier captures every dispatch synchronously so tests can
// assert on counts and payloads
type recordingNotifier struct {
	otps []struct {
		Email   string
		OTP     string
		Minutes int
	}
	decisions []struct {
		Email    string
		Approved bool
	}
	accepted []struct {
		Client       *models.User
		Professional *models.User
		Booking      *models.Booking
	}
	resolved []*models.Payment
	resets   []struct {
		Email string
		Token string
	}
}

func (n *recordingNotifier) NotifyOTP(email string, phone *string, otp string, expiryMinutes int) {
	n.otps = append(n.otps, struct {
		Email   string
		OTP     string
		Minutes int
	}{email, otp, expiryMinutes})
}

func (n *recordingNotifier) NotifyApprovalDecision(email, name string, role models.Role, approved bool) {
	n.decisions = append(n.decisions, struct {
		Email    string
		Approved bool
	}{email, approved})
}

func (n *recordingNotifier) NotifyBookingAccepted(client, professional *models.User, booking *models.Booking) {
	n.accepted = append(n.accepted, struct {
		Client       *models.User
		Professional *models.User
		Booking      *models.Booking
	}{client, professional, booking})
}

func (n *recordingNotifier) NotifyPaymentResolved(payment *models.Payment) {
	n.resolved = append(n.resolved, payment)
}

func (n *recordingNotifier) NotifyPasswordReset(email, token string) {
	n.resets = append(n.resets, struct {
		Email string
		Token string
	}{email, token})
}

// fakeCardGateway returns a canned checkout or a canned error
type fakeCardGateway struct {
	checkout *CardCheckout
	err      error
	calls    int
}

func (g *fakeCardGateway) InitializeTransaction(email string, amount int64) (*CardCheckout, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return g.checkout, nil
}

// fakeMobileGateway returns a canned checkout request id or a canned
// error, recording the amount it was asked to prompt for
type fakeMobileGateway struct {
	reference string
	err       error
	calls     int
	amount    int64
}

func (g *fakeMobileGateway) STKPush(phone string, amount int64) (string, error) {
	g.calls++
	g.amount = amount
	if g.err != nil {
		return "", g.err
	}
	return g.reference, nil
}
