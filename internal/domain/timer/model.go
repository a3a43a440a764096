package timer

// Mode selects which way the counter runs.
type Mode string

const (
	ModeCountdown Mode = "countdown"
	ModeCountUp   Mode = "countup"
)

// ModeFor maps the countDown setting to a mode.
func ModeFor(countDown bool) Mode {
	if countDown {
		return ModeCountdown
	}
	return ModeCountUp
}

// State is the run state of the timer.
type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
	StatePaused  State = "paused"
)

// EventType names a threshold crossing.
type EventType string

const (
	EventWarning EventType = "warning"
	EventExpired EventType = "expired"
)

// Event is emitted by Tick when a threshold is crossed.
type Event struct {
	Type          EventType
	TimeRemaining int
}

// Options configures a timer. Settings changes apply on the next LoadEntry.
type Options struct {
	Mode           Mode
	AllowPause     bool
	AllowReset     bool
	WarningSeconds int
}

// Values is the persisted part of a timer.
type Values struct {
	Counter      int   `json:"counter"`
	TotalSeconds int   `json:"totalSeconds"`
	Mode         Mode  `json:"mode"`
	State        State `json:"state"`
	WarningFired bool  `json:"warningFired"`
	ExpiryFired  bool  `json:"expiryFired"`
}

// Snapshot is the view model of a timer.
type Snapshot struct {
	State           State  `json:"state"`
	Mode            Mode   `json:"mode"`
	Counter         int    `json:"counter"`
	TotalSeconds    int    `json:"totalSeconds"`
	TimeRemaining   int    `json:"timeRemaining"`
	Elapsed         int    `json:"elapsed"`
	IsOvertime      bool   `json:"isOvertime"`
	ProgressPercent int    `json:"progressPercent"`
	Display         string `json:"display"`
	ElapsedDisplay  string `json:"elapsedDisplay"`
	RemainingLabel  string `json:"remainingLabel"`
}
