package activity

import "time"

// ActivityType represents the type of activity event
type ActivityType string

const (
	TypeRotationStarted   ActivityType = "rotation_started"
	TypeRotationCompleted ActivityType = "rotation_completed"
	TypeRotationStopped   ActivityType = "rotation_stopped"
	TypeQueueReshuffled   ActivityType = "queue_reshuffled"
	TypeTurnFinished      ActivityType = "turn_finished"
	TypeRuleFailed        ActivityType = "rule_failed"
	TypeUsageReset        ActivityType = "usage_reset"
	TypeDataImported      ActivityType = "data_imported"
)

// ActivityEntry represents an event in the activity log
type ActivityEntry struct {
	ID           int64        `json:"id"`
	DeviceID     string       `json:"device_id"`
	PersonID     *string      `json:"person_id,omitempty"`
	ActivityType ActivityType `json:"type"`
	Summary      string       `json:"summary"`
	Details      string       `json:"details,omitempty"` // JSON string
	CreatedAt    time.Time    `json:"created_at"`
}
