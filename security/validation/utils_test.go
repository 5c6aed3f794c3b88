package validation

import (
	"fmt"
	"strings"
	"testing"

	"github.com/mezonai/starledger/block"
	"github.com/mezonai/starledger/errors"
)

func TestValidateShortTextLength(t *testing.T) {
	tests := []struct {
		name      string
		fieldName string
		value     string
		wantErr   bool
		wantCode  errors.ServiceErrorCode
		wantMsg   string
	}{
		{
			name:      "valid",
			fieldName: "valid_field",
			value:     "hello",
			wantErr:   false,
		},
		{
			name:      "empty string",
			fieldName: "empty_field",
			value:     "",
			wantErr:   false,
		},
		{
			name:      "multibyte runes count once",
			fieldName: "dec",
			value:     strings.Repeat("°", MaxShortTextLength),
			wantErr:   false,
		},
		{
			name:      "too long",
			fieldName: "too_long_field",
			value:     makeString(MaxShortTextLength + 1),
			wantErr:   true,
			wantCode:  errors.ErrCodeInvalidRequest,
			wantMsg:   fmt.Sprintf(errors.ErrMsgShortTextTooLong, MaxShortTextLength, "too_long_field"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkServiceError(t, ValidateShortTextLength(tt.fieldName, tt.value), tt.wantErr, tt.wantCode, tt.wantMsg)
		})
	}
}

func TestValidateLongTextLength(t *testing.T) {
	tests := []struct {
		name      string
		fieldName string
		value     string
		wantErr   bool
		wantCode  errors.ServiceErrorCode
		wantMsg   string
	}{
		{
			name:      "valid",
			fieldName: "story",
			value:     "Found star using https://www.google.com/sky/",
			wantErr:   false,
		},
		{
			name:      "json string",
			fieldName: "json_field",
			value:     "{\"key\": \"value\"}",
			wantErr:   false,
		},
		{
			name:      "injection pattern",
			fieldName: "injection_field",
			value:     "test {{ alert(1) }}",
			wantErr:   true,
			wantCode:  errors.ErrCodeInvalidRequest,
			wantMsg:   fmt.Sprintf(errors.ErrMsgInvalidCharacters, "injection_field"),
		},
		{
			name:      "too long",
			fieldName: "too_long_field",
			value:     makeString(MaxLongTextLength + 1),
			wantErr:   true,
			wantCode:  errors.ErrCodeInvalidRequest,
			wantMsg:   fmt.Sprintf(errors.ErrMsgLongTextTooLong, MaxLongTextLength, "too_long_field"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkServiceError(t, ValidateLongTextLength(tt.fieldName, tt.value), tt.wantErr, tt.wantCode, tt.wantMsg)
		})
	}
}

func TestValidateAddress(t *testing.T) {
	tests := []struct {
		name    string
		address string
		wantErr bool
	}{
		{"p2pkh", "1BgGZ9tcN4rm9KBzDn7KprQz87SZ26SAMH", false},
		{"empty", "", true},
		{"blank", "   ", true},
		{"colon", "1BgGZ9tc:N4rm9", true},
		{"whitespace", "1BgG Z9tc", true},
		{"too long", makeString(MaxShortTextLength + 1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAddress(tt.address)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateAddress(%q) error = %v, wantErr %v", tt.address, err, tt.wantErr)
			}
		})
	}
}

func TestValidateSubmission(t *testing.T) {
	const address = "1BgGZ9tcN4rm9KBzDn7KprQz87SZ26SAMH"
	message := address + ":1629664849:starRegistry"
	star := block.Star{Dec: "68° 52' 56.9", Ra: "16h 29m 1.0s", Story: "Testing the story"}

	if err := ValidateSubmission(address, message, "c2lnbmF0dXJl", star); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name      string
		message   string
		signature string
		star      block.Star
		wantMsg   string
	}{
		{"missing message", "", "sig", star, fmt.Sprintf(errors.ErrMsgRequiredField, MessageField)},
		{"missing signature", message, " ", star, fmt.Sprintf(errors.ErrMsgRequiredField, SignatureField)},
		{"missing story", message, "sig", block.Star{Dec: "1"}, fmt.Sprintf(errors.ErrMsgRequiredField, StoryField)},
		{"long ra", message, "sig", block.Star{Ra: makeString(MaxShortTextLength + 1), Story: "s"}, fmt.Sprintf(errors.ErrMsgShortTextTooLong, MaxShortTextLength, RaField)},
		{"injected story", message, "sig", block.Star{Story: "${jndi:ldap://x}"}, fmt.Sprintf(errors.ErrMsgInvalidCharacters, StoryField)},
		{"long signature", message, makeString(MaxSignatureLength + 1), star, fmt.Sprintf(errors.ErrMsgLongTextTooLong, MaxSignatureLength, SignatureField)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSubmission(address, tt.message, tt.signature, tt.star)
			checkServiceError(t, err, true, errors.ErrCodeInvalidRequest, tt.wantMsg)
		})
	}
}

func checkServiceError(t *testing.T, err error, wantErr bool, wantCode errors.ServiceErrorCode, wantMsg string) {
	t.Helper()
	if !wantErr {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return
	}

	if err == nil {
		t.Fatalf("expected error, got nil")
	}

	svcErr, ok := err.(*errors.ServiceError)
	if !ok {
		t.Fatalf("expected ServiceError, got %T", err)
	}

	if svcErr.Code != wantCode {
		t.Fatalf("expected code %s, got %s", wantCode, svcErr.Code)
	}

	if svcErr.Message != wantMsg {
		t.Fatalf("expected message %q, got %q", wantMsg, svcErr.Message)
	}
}

// helper
func makeString(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = 'a'
	}
	return string(b)
}
