package mcp

import (
	"errors"
	"fmt"

	"github.com/rpggio/turnkeeper/internal/domain/activity"
	"github.com/rpggio/turnkeeper/internal/domain/backup"
	"github.com/rpggio/turnkeeper/internal/domain/queue"
	"github.com/rpggio/turnkeeper/internal/domain/roster"
	"github.com/rpggio/turnkeeper/internal/domain/rule"
	"github.com/rpggio/turnkeeper/internal/domain/session"
	"github.com/rpggio/turnkeeper/internal/domain/timer"
	"github.com/rpggio/turnkeeper/internal/domain/turn"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to MCP error codes.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	switch {
	case errors.Is(err, roster.ErrPersonNotFound):
		return &APIError{Code: "PERSON_NOT_FOUND", Message: "person not found", RecoveryHint: "Call list_people for valid ids"}
	case errors.Is(err, roster.ErrDeviceNotFound):
		return &APIError{Code: "DEVICE_NOT_FOUND", Message: "device not found", RecoveryHint: "Call list_devices for valid ids"}
	case errors.Is(err, rule.ErrRuleNotFound):
		return &APIError{Code: "RULE_NOT_FOUND", Message: "rule not found", RecoveryHint: "Call list_rules for valid ids"}
	case errors.Is(err, rule.ErrBuiltInRule):
		return &APIError{Code: "BUILT_IN_RULE", Message: "built-in rules cannot be deleted", RecoveryHint: "Disable it with toggle_rule"}
	case errors.Is(err, roster.ErrInvalidInput),
		errors.Is(err, rule.ErrInvalidInput),
		errors.Is(err, session.ErrInvalidInput),
		errors.Is(err, activity.ErrInvalidInput),
		errors.Is(err, queue.ErrUnknownReshuffleMode),
		errors.Is(err, errInvalidParams):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error()}
	case errors.Is(err, queue.ErrEmptyRoster):
		return &APIError{Code: "EMPTY_ROSTER", Message: "no people to build a rotation from", RecoveryHint: "Add people with add_person"}
	case errors.Is(err, queue.ErrEmptyQueue):
		return &APIError{Code: "EMPTY_QUEUE", Message: "queue is empty", RecoveryHint: "Call start_queue"}
	case errors.Is(err, turn.ErrNoActiveTurn), errors.Is(err, timer.ErrNotLoaded):
		return &APIError{Code: "NO_ACTIVE_TURN", Message: "no active turn", RecoveryHint: "Call start_queue"}
	case errors.Is(err, timer.ErrPauseDisabled):
		return &APIError{Code: "PAUSE_DISABLED", Message: "pausing is disabled", RecoveryHint: "Enable allow_pause in settings"}
	case errors.Is(err, timer.ErrResetDisabled):
		return &APIError{Code: "RESET_DISABLED", Message: "resetting is disabled", RecoveryHint: "Enable allow_reset in settings"}
	case errors.Is(err, backup.ErrInvalidDocument):
		return &APIError{Code: "INVALID_BACKUP", Message: err.Error(), RecoveryHint: "Pass a document produced by export_data"}
	case errors.Is(err, ErrUnknownMethod):
		return &APIError{Code: "UNKNOWN_TOOL", Message: err.Error()}
	default:
		return nil
	}
}
