package mcp

import (
	"time"

	"github.com/rpggio/turnkeeper/internal/domain/activity"
	"github.com/rpggio/turnkeeper/internal/domain/turn"
)

type IDParams struct {
	ID string `json:"id"`
}

type AddPersonParams struct {
	Name        string `json:"name"`
	TurnMinutes int    `json:"turn_minutes,omitempty"`
	HasPriority bool   `json:"has_priority,omitempty"`
}

type UpdatePersonParams struct {
	ID          string  `json:"id"`
	Name        *string `json:"name,omitempty"`
	TurnMinutes *int    `json:"turn_minutes,omitempty"`
	HasPriority *bool   `json:"has_priority,omitempty"`
}

type AddDeviceParams struct {
	Name string `json:"name"`
}

type UpdateSettingsParams struct {
	PriorityMode       *bool   `json:"priority_mode,omitempty"`
	DefaultTurnMinutes *int    `json:"default_turn_minutes,omitempty"`
	AllowPause         *bool   `json:"allow_pause,omitempty"`
	AllowReset         *bool   `json:"allow_reset,omitempty"`
	ShowProgress       *bool   `json:"show_progress,omitempty"`
	ShowPercent        *bool   `json:"show_percent,omitempty"`
	CountDown          *bool   `json:"count_down,omitempty"`
	WarningMinutes     *int    `json:"warning_minutes,omitempty"`
	Theme              *string `json:"theme,omitempty"`
}

type AddRuleParams struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Condition   string `json:"condition"`
	Action      string `json:"action"`
	Enabled     *bool  `json:"enabled,omitempty"`
}

type ImportDataParams struct {
	// Data is an export document, JSON or JSON with comments.
	Data string `json:"data"`
}

type RecentActivityParams struct {
	DeviceID string                 `json:"device_id,omitempty"`
	PersonID *string                `json:"person_id,omitempty"`
	Type     *activity.ActivityType `json:"type,omitempty"`
	Limit    int                    `json:"limit,omitempty"`
	Offset   int                    `json:"offset,omitempty"`
}

type DeletedResponse struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

type StoppedResponse struct {
	Stopped bool `json:"stopped"`
}

type UsageResetResponse struct {
	Reset bool `json:"reset"`
}

type PollEventsResponse struct {
	Events []turn.Event `json:"events"`
}

type ActiveDeviceResponse struct {
	DeviceID      string    `json:"device_id"`
	DeviceName    string    `json:"device_name"`
	CurrentPerson string    `json:"current_person,omitempty"`
	Position      int       `json:"position"`
	QueueLength   int       `json:"queue_length"`
	TimerState    string    `json:"timer_state"`
	LastUpdate    time.Time `json:"last_update"`
}

type ActivityEntryResponse struct {
	Timestamp time.Time             `json:"timestamp"`
	Type      activity.ActivityType `json:"type"`
	DeviceID  string                `json:"device_id"`
	PersonID  *string               `json:"person_id,omitempty"`
	Summary   string                `json:"summary"`
	Details   string                `json:"details,omitempty"`
}
