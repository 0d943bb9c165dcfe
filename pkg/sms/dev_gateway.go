package sms

import "github.com/sirupsen/logrus"

// DevGateway logs SMS messages instead of sending them
type DevGateway struct {
	logger *logrus.Logger
}

// NewDevGateway creates a new development SMS gateway
func NewDevGateway(logger *logrus.Logger) *DevGateway {
	return &DevGateway{logger: logger}
}

// Send logs the message instead of delivering it
func (g *DevGateway) Send(phone, body string) (string, error) {
	g.logger.WithFields(logrus.Fields{
		"phone": phone,
		"body":  body,
	}).Info("DEV SMS gateway: message not sent")
	return "dev-0", nil
}

// GetName returns the gateway name
func (g *DevGateway) GetName() string {
	return "dev"
}
