package mailer

import (
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPGateway sends email through an authenticated SMTP relay
type SMTPGateway struct {
	host     string
	port     string
	username string
	password string
	from     string // display name for the From header
}

// SMTPConfig holds configuration for the SMTP gateway
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// NewSMTPGateway creates a new SMTP email gateway
func NewSMTPGateway(config SMTPConfig) *SMTPGateway {
	return &SMTPGateway{
		host:     config.Host,
		port:     config.Port,
		username: config.Username,
		password: config.Password,
		from:     config.From,
	}
}

// Send delivers a single HTML message via SMTP
func (g *SMTPGateway) Send(msg Message) error {
	if msg.To == "" {
		return fmt.Errorf("recipient address is required")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %q <%s>\r\n", g.from, g.username)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.Body)

	auth := smtp.PlainAuth("", g.username, g.password, g.host)
	addr := g.host + ":" + g.port

	if err := smtp.SendMail(addr, auth, g.username, []string{msg.To}, []byte(b.String())); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", msg.To, err)
	}

	return nil
}

// GetName returns the gateway name
func (g *SMTPGateway) GetName() string {
	return "smtp"
}
