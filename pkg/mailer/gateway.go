package mailer

// Message is an outbound email
type Message struct {
	To      string
	Subject string
	Body    string // HTML body
}

// EmailGateway defines the interface for sending email messages
type EmailGateway interface {
	// Send delivers a single message. Callers treat delivery as
	// best-effort and never block request handling on the result.
	Send(msg Message) error

	// GetName returns the name of the gateway implementation
	GetName() string
}
