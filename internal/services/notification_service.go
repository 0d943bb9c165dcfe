package services

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/landlink/survey-backend/internal/models"
	"github.com/landlink/survey-backend/pkg/mailer"
	"github.com/landlink/survey-backend/pkg/sms"
)

// NotificationService sends outbound messages triggered by state
// transitions. Every send is fire-and-forget: the triggering operation
// never waits on or observes the delivery result, and failures are only
// logged.
type NotificationService struct {
	email     mailer.EmailGateway
	sms       sms.SMSGateway
	logger    *logrus.Logger
	clientURL string
}

// NewNotificationService creates a new notification service
func NewNotificationService(email mailer.EmailGateway, smsGateway sms.SMSGateway, clientURL string, logger *logrus.Logger) *NotificationService {
	return &NotificationService{
		email:     email,
		sms:       smsGateway,
		logger:    logger,
		clientURL: clientURL,
	}
}

// dispatchEmail sends an email in the background
func (s *NotificationService) dispatchEmail(msg mailer.Message) {
	go func() {
		if err := s.email.Send(msg); err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"to":      msg.To,
				"subject": msg.Subject,
				"gateway": s.email.GetName(),
			}).Error("Failed to dispatch email notification")
		}
	}()
}

// dispatchSMS sends a text message in the background
func (s *NotificationService) dispatchSMS(phone, body string) {
	go func() {
		if _, err := s.sms.Send(phone, body); err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"phone":   phone,
				"gateway": s.sms.GetName(),
			}).Error("Failed to dispatch SMS notification")
		}
	}()
}

// NotifyOTP sends the one-time signup code by email, and by SMS when a
// phone number is known
func (s *NotificationService) NotifyOTP(email string, phone *string, otp string, expiryMinutes int) {
	body := fmt.Sprintf(`
		<div style="font-family: sans-serif; color: #333;">
			<h2 style="color: #d97706;">Welcome to LandLink Ltd</h2>
			<p>Thank you for signing up with <strong>LandLink</strong>.</p>
			<p><strong>Your OTP code is:</strong></p>
			<div style="font-size: 24px; font-weight: bold; letter-spacing: 4px;">%s</div>
			<p>This code is valid for <strong>%d minutes</strong>. Do not share it with anyone.</p>
		</div>`, otp, expiryMinutes)

	s.dispatchEmail(mailer.Message{
		To:      email,
		Subject: "Your One-Time Password (OTP) for LandLink Signup",
		Body:    body,
	})

	if phone != nil && *phone != "" {
		s.dispatchSMS(*phone, fmt.Sprintf("Your LandLink OTP is: %s. It will expire in %d minutes.", otp, expiryMinutes))
	}
}

// NotifyBookingAccepted informs both the requester and the assigned
// professional that a booking was accepted. Exactly two messages go out.
func (s *NotificationService) NotifyBookingAccepted(client, professional *models.User, booking *models.Booking) {
	s.dispatchEmail(mailer.Message{
		To:      client.Email,
		Subject: "Your Booking Has Been Accepted",
		Body: fmt.Sprintf(`
			<div style="font-family: sans-serif; color: #333;">
				<h2 style="color: #d4a600;">Your Booking Has Been Accepted</h2>
				<p>Dear %s,</p>
				<p>A %s has accepted your booking for <strong>%s</strong>.</p>
				<p><a href="%s/client-dashboard/bookings">View Booking</a></p>
				<p>Thank you for using <strong>LandLink</strong>.</p>
			</div>`, client.Name, professional.Role.DisplayName(), booking.Location, s.clientURL),
	})

	s.dispatchEmail(mailer.Message{
		To:      professional.Email,
		Subject: "You Have Accepted a New Booking",
		Body: fmt.Sprintf(`
			<div style="font-family: sans-serif; color: #333;">
				<h2 style="color: #d4a600;">Booking Confirmation</h2>
				<p>Dear %s,</p>
				<p>You have accepted the survey booking for <strong>%s</strong>.</p>
				<p><a href="%s/surveyor-dashboard/bookings">Go to Assignments</a></p>
			</div>`, professional.Name, booking.Location, s.clientURL),
	})
}

// NotifyPaymentResolved informs the payer of the payment outcome. For
// M-Pesa payments the payer identity is a phone number and the message
// goes out as SMS instead.
func (s *NotificationService) NotifyPaymentResolved(payment *models.Payment) {
	outcome := "was successful"
	if payment.Status == models.PaymentStatusFailed {
		outcome = "failed"
	}

	if payment.Provider == models.PaymentProviderMpesa {
		s.dispatchSMS(payment.Payer, fmt.Sprintf(
			"Your LandLink payment of KSh %d.%02d (ref %s) %s.",
			payment.Amount/100, payment.Amount%100, payment.Reference, outcome))
		return
	}

	s.dispatchEmail(mailer.Message{
		To:      payment.Payer,
		Subject: "LandLink Payment Update",
		Body: fmt.Sprintf(`
			<div style="font-family: sans-serif; color: #333;">
				<p>Your payment of KSh %d.%02d (reference <strong>%s</strong>) %s.</p>
			</div>`, payment.Amount/100, payment.Amount%100, payment.Reference, outcome),
	})
}

// NotifyPasswordReset emails a password reset link
func (s *NotificationService) NotifyPasswordReset(email, token string) {
	link := fmt.Sprintf("%s/reset-password?token=%s", s.clientURL, token)
	s.dispatchEmail(mailer.Message{
		To:      email,
		Subject: "Reset Your LandLink Password",
		Body: fmt.Sprintf(`
			<div style="font-family: sans-serif; color: #333;">
				<p>We received a request to reset your password.</p>
				<p><a href="%s">Reset Password</a></p>
				<p>This link expires in 1 hour. If you did not request this, you can ignore this email.</p>
			</div>`, link),
	})
}

// NotifyApprovalDecision informs a professional of the admin's decision
// on their application
func (s *NotificationService) NotifyApprovalDecision(email, name string, role models.Role, approved bool) {
	subject := fmt.Sprintf("Your %s Application Has Been Approved", role.DisplayName())
	body := fmt.Sprintf(`
		<div style="font-family: sans-serif; color: #333;">
			<p>Dear %s,</p>
			<p>Your %s application has been approved. You can now log in and start receiving assignments.</p>
		</div>`, name, role.DisplayName())

	if !approved {
		subject = fmt.Sprintf("Update on Your %s Application", role.DisplayName())
		body = fmt.Sprintf(`
			<div style="font-family: sans-serif; color: #333;">
				<p>Dear %s,</p>
				<p>After review, we are unable to approve your %s application at this time.</p>
			</div>`, name, role.DisplayName())
	}

	s.dispatchEmail(mailer.Message{To: email, Subject: subject, Body: body})
}
