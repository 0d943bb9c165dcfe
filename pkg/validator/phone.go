package validator

import (
	"errors"
	"regexp"
	"strings"
)

var (
	// ErrInvalidLength indicates the phone number has the wrong number of digits
	ErrInvalidLength = errors.New("phone number must be 9 digits after the 254 country code")

	// ErrInvalidPrefix indicates the number is not a Kenyan mobile number
	ErrInvalidPrefix = errors.New("phone number must be a Kenyan mobile number starting with 07 or 01")

	// ErrInvalidFormat indicates the phone number contains invalid characters
	ErrInvalidFormat = errors.New("phone number can only contain digits")

	// ErrEmptyPhone indicates the phone number is empty
	ErrEmptyPhone = errors.New("phone number cannot be empty")
)

// phoneRegex matches digits only
var phoneRegex = regexp.MustCompile(`^\d+$`)

// PhoneValidator normalizes Kenyan mobile numbers to the 2547XXXXXXXX /
// 2541XXXXXXXX form the M-Pesa STK push API requires
type PhoneValidator struct{}

// NewPhoneValidator creates a new phone validator instance
func NewPhoneValidator() *PhoneValidator {
	return &PhoneValidator{}
}

// Validate validates a Kenyan mobile number.
// Accepts formats: 0712345678, +254712345678, 254712345678, 712345678
// Returns the number normalized to 254XXXXXXXXX and an error if invalid.
func (v *PhoneValidator) Validate(phone string) (string, error) {
	if phone == "" {
		return "", ErrEmptyPhone
	}

	sanitized := v.Sanitize(phone)

	if !phoneRegex.MatchString(sanitized) {
		return "", ErrInvalidFormat
	}

	// Strip country code or leading zero down to the 9-digit subscriber part
	switch {
	case strings.HasPrefix(sanitized, "254") && len(sanitized) == 12:
		sanitized = sanitized[3:]
	case strings.HasPrefix(sanitized, "0") && len(sanitized) == 10:
		sanitized = sanitized[1:]
	}

	if len(sanitized) != 9 {
		return "", ErrInvalidLength
	}

	// Kenyan mobile ranges are 7XXXXXXXX (Safaricom/Airtel/Telkom) and
	// 1XXXXXXXX (newer Safaricom allocations)
	if sanitized[0] != '7' && sanitized[0] != '1' {
		return "", ErrInvalidPrefix
	}

	return "254" + sanitized, nil
}

// Sanitize removes all non-digit characters from the phone number
func (v *PhoneValidator) Sanitize(phone string) string {
	phone = strings.ReplaceAll(phone, " ", "")
	phone = strings.ReplaceAll(phone, "-", "")
	phone = strings.ReplaceAll(phone, "(", "")
	phone = strings.ReplaceAll(phone, ")", "")
	phone = strings.ReplaceAll(phone, "+", "")
	phone = strings.ReplaceAll(phone, ".", "")
	return phone
}
