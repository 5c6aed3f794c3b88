package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mezonai/starledger/block"
	"github.com/mezonai/starledger/errors"
	"golang.org/x/text/unicode/norm"
)

var InjectionRegexp = BuildInjectionPatterns()

// BuildInjectionPatterns builds regexp for injection detection (case-insensitive)
func BuildInjectionPatterns() *regexp.Regexp {
	parts := make([]string, 0, len(InjectionPatterns))
	for _, pattern := range InjectionPatterns {
		pNorm := norm.NFC.String(pattern)
		parts = append(parts, regexp.QuoteMeta(pNorm))
	}
	// (?i) for case-insensitive
	return regexp.MustCompile("(?i)" + strings.Join(parts, "|"))
}

// ValidateShortTextLength validates short text field length
func ValidateShortTextLength(fieldName, fieldValue string) error {
	return validateLength(fieldName, fieldValue, MaxShortTextLength, errors.ErrMsgShortTextTooLong)
}

// ValidateLongTextLength validates long text field length and rejects injection patterns
func ValidateLongTextLength(fieldName, fieldValue string) error {
	if err := validateLength(fieldName, fieldValue, MaxLongTextLength, errors.ErrMsgLongTextTooLong); err != nil {
		return err
	}

	if InjectionRegexp.MatchString(norm.NFC.String(fieldValue)) {
		return errors.NewError(
			errors.ErrCodeInvalidRequest,
			fmt.Sprintf(errors.ErrMsgInvalidCharacters, fieldName),
		)
	}
	return nil
}

func validateLength(fieldName, fieldValue string, maxLength int, msg string) error {
	normalized := norm.NFC.String(fieldValue)

	if utf8.RuneCountInString(normalized) > maxLength {
		return errors.NewError(
			errors.ErrCodeInvalidRequest,
			fmt.Sprintf(msg, maxLength, fieldName),
		)
	}
	return nil
}

func ValidateRequired(fieldName, fieldValue string) error {
	if strings.TrimSpace(fieldValue) == "" {
		return errors.NewError(
			errors.ErrCodeInvalidRequest,
			fmt.Sprintf(errors.ErrMsgRequiredField, fieldName),
		)
	}
	return nil
}

// ValidateAddress checks the shape of a wallet address. Whether it belongs to a
// signature scheme is left to the signature verifier. A ':' would make the
// ownership challenge ambiguous, so it is rejected along with whitespace.
func ValidateAddress(address string) error {
	if err := ValidateRequired(AddressField, address); err != nil {
		return err
	}
	if err := ValidateShortTextLength(AddressField, address); err != nil {
		return err
	}
	if strings.ContainsRune(address, ':') || strings.IndexFunc(address, unicode.IsSpace) >= 0 {
		return errors.NewError(
			errors.ErrCodeInvalidRequest,
			fmt.Sprintf(errors.ErrMsgInvalidCharacters, AddressField),
		)
	}
	return nil
}

func ValidateStar(star block.Star) error {
	if err := ValidateShortTextLength(DecField, star.Dec); err != nil {
		return err
	}
	if err := ValidateShortTextLength(RaField, star.Ra); err != nil {
		return err
	}
	if err := ValidateRequired(StoryField, star.Story); err != nil {
		return err
	}
	return ValidateLongTextLength(StoryField, star.Story)
}

// ValidateSubmission runs every input check for a star submission. The challenge
// and signature themselves are verified by the ledger.
func ValidateSubmission(address, message, signature string, star block.Star) error {
	if err := ValidateAddress(address); err != nil {
		return err
	}
	if err := ValidateRequired(MessageField, message); err != nil {
		return err
	}
	if err := validateLength(MessageField, message, MaxMessageLength, errors.ErrMsgLongTextTooLong); err != nil {
		return err
	}
	if err := ValidateRequired(SignatureField, signature); err != nil {
		return err
	}
	if err := validateLength(SignatureField, signature, MaxSignatureLength, errors.ErrMsgLongTextTooLong); err != nil {
		return err
	}
	return ValidateStar(star)
}
