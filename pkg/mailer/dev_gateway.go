package mailer

import "github.com/sirupsen/logrus"

// DevGateway logs messages instead of sending them. Used in development
// mode so signup and reset flows work without SMTP credentials.
type DevGateway struct {
	logger *logrus.Logger
}

// NewDevGateway creates a new development email gateway
func NewDevGateway(logger *logrus.Logger) *DevGateway {
	return &DevGateway{logger: logger}
}

// Send logs the message instead of delivering it
func (g *DevGateway) Send(msg Message) error {
	g.logger.WithFields(logrus.Fields{
		"to":      msg.To,
		"subject": msg.Subject,
	}).Info("DEV email gateway: message not sent")
	return nil
}

// GetName returns the gateway name
func (g *DevGateway) GetName() string {
	return "dev"
}
