package turn

import (
	"github.com/rpggio/turnkeeper/internal/domain/queue"
	"github.com/rpggio/turnkeeper/internal/domain/timer"
)

// Snapshot is the view model of the controller.
type Snapshot struct {
	DeviceID         string          `json:"deviceId"`
	DeviceName       string          `json:"deviceName"`
	Queue            []queue.Entry   `json:"queue"`
	CurrentIndex     int             `json:"currentIndex"`
	Current          *queue.Entry    `json:"current,omitempty"`
	Timer            *timer.Snapshot `json:"timer,omitempty"`
	RotationComplete bool            `json:"rotationComplete"`
	ShowProgress     bool            `json:"showProgress"`
	ShowPercent      bool            `json:"showPercent"`
}

// TurnResult describes a finished turn.
type TurnResult struct {
	PersonID           string         `json:"personId"`
	PersonName         string         `json:"personName"`
	Overtime           int            `json:"overtime"`
	UsedSeconds        int            `json:"usedSeconds"`
	NextTurnSeconds    int            `json:"nextTurnSeconds"`
	Adjustments        map[string]int `json:"adjustments,omitempty"`
	AppliedRules       []string       `json:"appliedRules,omitempty"`
	RuleErrors         []string       `json:"ruleErrors,omitempty"`
	RotationComplete   bool           `json:"rotationComplete"`
	OtherActiveDevices int            `json:"otherActiveDevices"`
	Next               *queue.Entry   `json:"next,omitempty"`
}
