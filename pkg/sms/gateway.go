package sms

// SMSGateway defines the interface for sending SMS messages
type SMSGateway interface {
	// Send delivers a text message to the given phone number.
	// Returns the provider message identifier and an error if the send
	// failed.
	Send(phone, body string) (string, error)

	// GetName returns the name of the SMS gateway implementation
	GetName() string
}
