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
		{"9876543210", "9876543210", "Standard format"},
		{"98765 43210", "9876543210", "With spaces"},
		{"98765-43210", "9876543210", "With dashes"},
		{"98765.43210", "9876543210", "With dots"},
		{"(98765) 43210", "9876543210", "With parentheses"},
		{"6123456789", "6123456789", "Jio 6 series"},
		{"7012345678", "7012345678", "7 series"},
		{"8123456789", "8123456789", "8 series"},
		{"919876543210", "9876543210", "With country code"},
		{"+919876543210", "9876543210", "With +91 country code"},
		{"09876543210", "9876543210", "With trunk zero"},
	}

	for _, tc := range validNumbers {
		t.Run(tc.name, func(t *testing.T) {
			sanitized, err := validator.Validate(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, sanitized)
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
		{"", ErrEmptyPhone, "Empty string"},
		{"123", ErrInvalidLength, "Too short"},
		{"98765432109", ErrInvalidLength, "Too long"},
		{"1234567890", ErrInvalidPrefix, "Landline style prefix"},
		{"5876543210", ErrInvalidPrefix, "Invalid 5 series"},
		{"987654321a", ErrInvalidFormat, "Contains letters"},
		{"98765 4321!", ErrInvalidFormat, "Contains special characters"},
	}

	for _, tc := range invalidNumbers {
		t.Run(tc.name, func(t *testing.T) {
			_, err := validator.Validate(tc.input)
			assert.Error(t, err)
			assert.Equal(t, tc.expectedErr, err)
		})
	}
}

func TestSanitize(t *testing.T) {
	validator := NewPhoneValidator()

	tests := []struct {
		input    string
		expected string
		name     string
	}{
		{"9876543210", "9876543210", "Already clean"},
		{"98765 43210", "9876543210", "With spaces"},
		{"98765-43210", "9876543210", "With dashes"},
		{"+919876543210", "9876543210", "With country code and plus"},
		{"919876543210", "9876543210", "With country code"},
		{"09876543210", "9876543210", "With trunk zero"},
		{"91 98765 43210", "9876543210", "Country code and spaces"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := validator.Sanitize(tc.input)
			assert.Equal(t, tc.expected, result)
		})
	}
}

func TestIsValidPrefix(t *testing.T) {
	validator := NewPhoneValidator()

	for _, phone := range []string{"6123456789", "7012345678", "8123456789", "9876543210"} {
		t.Run(phone[:1], func(t *testing.T) {
			assert.True(t, validator.IsValidPrefix(phone))
		})
	}

	for _, phone := range []string{"1234567890", "2345678901", "5876543210", "0123456789"} {
		t.Run(phone[:1], func(t *testing.T) {
			assert.False(t, validator.IsValidPrefix(phone))
		})
	}

	// Edge case
	assert.False(t, validator.IsValidPrefix(""))
}

func TestFormat(t *testing.T) {
	validator := NewPhoneValidator()

	tests := []struct {
		input    string
		expected string
		name     string
	}{
		{"9876543210", "98765 43210", "Standard format"},
		{"98765 43210", "98765 43210", "Already formatted"},
		{"98765-43210", "98765 43210", "With dashes"},
		{"919876543210", "98765 43210", "With country code"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result, err := validator.Format(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, result)
		})
	}

	// Test invalid input
	_, err := validator.Format("invalid")
	assert.Error(t, err)
}

func TestValidateMultiple(t *testing.T) {
	validator := NewPhoneValidator()

	phones := []string{
		"9876543210", // Valid
		"7012345678", // Valid
		"invalid",    // Invalid
		"123",        // Invalid
		"5876543210", // Invalid prefix
	}

	results := validator.ValidateMultiple(phones)

	assert.Len(t, results, 5)
	assert.Nil(t, results["9876543210"])
	assert.Nil(t, results["7012345678"])
	assert.NotNil(t, results["invalid"])
	assert.NotNil(t, results["123"])
	assert.NotNil(t, results["5876543210"])
}

func TestIsValid(t *testing.T) {
	validator := NewPhoneValidator()

	for _, phone := range []string{"9876543210", "98765 43210", "919876543210"} {
		t.Run(phone, func(t *testing.T) {
			assert.True(t, validator.IsValid(phone))
		})
	}

	for _, phone := range []string{"", "invalid", "123", "5876543210"} {
		t.Run(phone, func(t *testing.T) {
			assert.False(t, validator.IsValid(phone))
		})
	}
}

func BenchmarkValidate(b *testing.B) {
	validator := NewPhoneValidator()
	phone := "9876543210"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = validator.Validate(phone)
	}
}
