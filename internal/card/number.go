package card

import (
	"errors"
	"regexp"
	"strings"
)

// ErrInvalidFormat is returned for card numbers that are not exactly 16 digits.
var ErrInvalidFormat = errors.New("invalid card number format")

const numberLength = 16

var numberPattern = regexp.MustCompile(`^[0-9]{16}$`)

// ValidateNumber checks the lexical shape of a card number. Separators,
// whitespace and non-ASCII digits are rejected.
func ValidateNumber(number string) error {
	if !numberPattern.MatchString(number) {
		return ErrInvalidFormat
	}
	return nil
}

// MaskNumber hides everything but the BIN prefix and the last four digits.
// Strings that are too short to mask are fully hidden.
func MaskNumber(number string) string {
	if len(number) < 10 {
		return strings.Repeat("*", len(number))
	}
	return number[:4] + strings.Repeat("*", len(number)-8) + number[len(number)-4:]
}
