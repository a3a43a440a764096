package roster

// Person is a participant in the rotation.
type Person struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	DefaultTurnSeconds int    `json:"defaultTurnSeconds"`
	HasPriority        bool   `json:"hasPriority"`
	TotalUsageSeconds  int    `json:"totalUsageSeconds"`
}

// Device is a named shared device registered in the roster.
type Device struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Theme is the presentation color scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Settings holds the user-facing turn configuration.
type Settings struct {
	PriorityMode       bool  `json:"priorityMode"`
	DefaultTurnMinutes int   `json:"defaultTurnMinutes"`
	AllowPause         bool  `json:"allowPause"`
	AllowReset         bool  `json:"allowReset"`
	ShowProgress       bool  `json:"showProgress"`
	ShowPercent        bool  `json:"showPercent"`
	CountDown          bool  `json:"countDown"`
	WarningMinutes     int   `json:"warningMinutes"`
	Theme              Theme `json:"theme"`
}

// DefaultSettings returns the settings used when none are stored.
func DefaultSettings() Settings {
	return Settings{
		PriorityMode:       false,
		DefaultTurnMinutes: 30,
		AllowPause:         true,
		AllowReset:         true,
		ShowProgress:       true,
		ShowPercent:        true,
		CountDown:          true,
		WarningMinutes:     2,
		Theme:              ThemeLight,
	}
}

// DefaultTurnSeconds converts the configured default turn length to seconds.
func (s Settings) DefaultTurnSeconds() int {
	return s.DefaultTurnMinutes * 60
}

// WarningSeconds converts the warning lead time to seconds.
func (s Settings) WarningSeconds() int {
	return s.WarningMinutes * 60
}

// UsageShare is one person's slice of the accumulated usage.
type UsageShare struct {
	PersonID          string  `json:"personId"`
	Name              string  `json:"name"`
	TotalUsageSeconds int     `json:"totalUsageSeconds"`
	Percent           float64 `json:"percent"`
}

// UsageStats summarizes usage across the roster.
type UsageStats struct {
	TotalUsageSeconds int          `json:"totalUsageSeconds"`
	People            []UsageShare `json:"people"`
}
