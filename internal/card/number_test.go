package card

import (
	"errors"
	"testing"
)

func TestValidateNumberAcceptsSixteenDigits(t *testing.T) {
	if err := ValidateNumber("1234567890123456"); err != nil {
		t.Fatalf("expected valid number, got %v", err)
	}
}

func TestValidateNumberRejectsMalformed(t *testing.T) {
	for _, number := range []string{
		"123",
		"12345678901234567",
		"123456789012345a",
		"",
		" 1234567890123456",
		"1234567890123456\n",
		"1234 5678 9012 3456",
		"１２３４５６７８９０１２３４５６",
	} {
		if err := ValidateNumber(number); !errors.Is(err, ErrInvalidFormat) {
			t.Fatalf("expected invalid format for %q, got %v", number, err)
		}
	}
}

func TestMaskNumber(t *testing.T) {
	if got := MaskNumber("8600123412341234"); got != "8600********1234" {
		t.Fatalf("unexpected mask: %s", got)
	}
	if got := MaskNumber("123"); got != "***" {
		t.Fatalf("unexpected short mask: %s", got)
	}
}
