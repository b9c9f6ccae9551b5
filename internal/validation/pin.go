package validation

import (
	"errors"
)

// ValidatePIN requires exactly four ASCII digits.
func ValidatePIN(pin string) error {
	if len(pin) != 4 {
		return errors.New("pin must be exactly 4 digits")
	}

	for _, c := range pin {
		if c < '0' || c > '9' {
			return errors.New("pin must be exactly 4 digits")
		}
	}

	return nil
}
