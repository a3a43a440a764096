package roster

import (
	"fmt"
	"strings"
)

// ValidatePerson checks the invariants every stored person must satisfy.
func ValidatePerson(p Person) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if p.DefaultTurnSeconds <= 0 {
		return fmt.Errorf("%w: turn length must be positive", ErrInvalidInput)
	}
	if p.TotalUsageSeconds < 0 {
		return fmt.Errorf("%w: usage cannot be negative", ErrInvalidInput)
	}
	return nil
}

// ValidateSettings checks stored settings.
func ValidateSettings(s Settings) error {
	if s.DefaultTurnMinutes <= 0 {
		return fmt.Errorf("%w: default turn minutes must be positive", ErrInvalidInput)
	}
	if s.WarningMinutes <= 0 {
		return fmt.Errorf("%w: warning minutes must be positive", ErrInvalidInput)
	}
	switch s.Theme {
	case ThemeLight, ThemeDark:
	default:
		return fmt.Errorf("%w: unknown theme %q", ErrInvalidInput, s.Theme)
	}
	return nil
}

// ValidateDevice checks a device before it is stored.
func ValidateDevice(d Device) error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("%w: device name is required", ErrInvalidInput)
	}
	return nil
}
