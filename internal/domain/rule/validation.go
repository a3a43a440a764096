package rule

import (
	"fmt"
	"strings"
)

// Validate checks that a rule is complete and both expressions parse.
func Validate(r Rule) error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if strings.TrimSpace(r.Description) == "" {
		return fmt.Errorf("%w: description is required", ErrInvalidInput)
	}
	if strings.TrimSpace(r.Condition) == "" {
		return fmt.Errorf("%w: condition is required", ErrInvalidInput)
	}
	if strings.TrimSpace(r.Action) == "" {
		return fmt.Errorf("%w: action is required", ErrInvalidInput)
	}

	cond, err := Parse(r.Condition)
	if err != nil {
		return fmt.Errorf("%w: condition: %v", ErrInvalidInput, err)
	}
	if cond.References(VarNextTurn) || cond.References(VarAllOthers) {
		return fmt.Errorf("%w: condition may only reference %s", ErrInvalidInput, VarOvertime)
	}
	if _, err := Parse(r.Action); err != nil {
		return fmt.Errorf("%w: action: %v", ErrInvalidInput, err)
	}
	return nil
}
