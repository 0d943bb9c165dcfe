package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPhoneValidator(t *testing.T) {
	validator := NewPhoneValidator()
	assert.NotNil(t, validator)
}

func TestValidate_ValidNumbers(t *testing.T) {
	validator := NewPhoneValidator()

	validNumbers := []struct {
		input    string
		expected string
		name     string
	}{
		{"0712345678", "254712345678", "Local format"},
		{"0712 345 678", "254712345678", "With spaces"},
		{"0712-345-678", "254712345678", "With dashes"},
		{"+254712345678", "254712345678", "International format"},
		{"254712345678", "254712345678", "Country code without plus"},
		{"712345678", "254712345678", "Bare subscriber number"},
		{"0110123456", "254110123456", "Safaricom 01 range"},
		{"(0712) 345 678", "254712345678", "With parentheses"},
	}

	for _, tc := range validNumbers {
		t.Run(tc.name, func(t *testing.T) {
			normalized, err := validator.Validate(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, normalized)
		})
	}
}

func TestValidate_InvalidNumbers(t *testing.T) {
	validator := NewPhoneValidator()

	invalidNumbers := []struct {
		input       string
		expectedErr error
		name        string
	}{
		{"", ErrEmptyPhone, "Empty"},
		{"07123456", ErrInvalidLength, "Too short"},
		{"071234567890", ErrInvalidLength, "Too long"},
		{"0812345678", ErrInvalidPrefix, "Landline prefix"},
		{"07a2345678", ErrInvalidFormat, "Contains letters"},
		{"0612345678", ErrInvalidPrefix, "Invalid mobile prefix"},
	}

	for _, tc := range invalidNumbers {
		t.Run(tc.name, func(t *testing.T) {
			_, err := validator.Validate(tc.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.expectedErr)
		})
	}
}

func TestSanitize(t *testing.T) {
	validator := NewPhoneValidator()

	assert.Equal(t, "254712345678", validator.Sanitize("+254 712-345.678"))
	assert.Equal(t, "0712345678", validator.Sanitize("(071) 234 5678"))
}
