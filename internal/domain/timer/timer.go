package timer

import (
	"fmt"
	"math"
)

// thresholdWindow is how many seconds after a threshold a tick still counts
// as crossing it.
const thresholdWindow = 5

// Timer counts one turn. The counter never clamps: countdown goes negative
// and count-up exceeds the total once the turn runs over.
type Timer struct {
	opts   Options
	v      Values
	loaded bool
}

// New creates an idle timer with no turn loaded.
func New(opts Options) *Timer {
	if opts.Mode == "" {
		opts.Mode = ModeCountdown
	}
	return &Timer{opts: opts, v: Values{Mode: opts.Mode, State: StateIdle}}
}

// Restore rebuilds a timer from persisted values.
func Restore(opts Options, v Values) (*Timer, error) {
	if v.TotalSeconds <= 0 {
		return nil, fmt.Errorf("restoring timer: total must be positive, got %d", v.TotalSeconds)
	}
	if v.Mode == "" {
		v.Mode = opts.Mode
	}
	switch v.State {
	case StateIdle, StateRunning, StatePaused:
	case "":
		v.State = StateIdle
	default:
		return nil, fmt.Errorf("restoring timer: unknown state %q", v.State)
	}
	opts.Mode = v.Mode
	return &Timer{opts: opts, v: v, loaded: true}, nil
}

// Configure replaces the options. A new mode takes effect on the next
// LoadEntry; pause, reset and warning changes apply immediately.
func (t *Timer) Configure(opts Options) {
	if opts.Mode == "" {
		opts.Mode = t.opts.Mode
	}
	t.opts = opts
}

// LoadEntry prepares the timer for a turn of totalSeconds.
func (t *Timer) LoadEntry(totalSeconds int) error {
	if totalSeconds <= 0 {
		return fmt.Errorf("loading turn: total must be positive, got %d", totalSeconds)
	}
	t.v = Values{
		TotalSeconds: totalSeconds,
		Mode:         t.opts.Mode,
		State:        StateIdle,
	}
	t.v.Counter = t.initialCounter()
	t.loaded = true
	return nil
}

// Loaded reports whether a turn is loaded.
func (t *Timer) Loaded() bool {
	return t.loaded
}

// Start begins counting. A paused timer restarts only when pausing is
// allowed; a running timer is left alone.
func (t *Timer) Start() error {
	if !t.loaded {
		return ErrNotLoaded
	}
	switch t.v.State {
	case StateIdle:
		t.v.State = StateRunning
	case StatePaused:
		if !t.opts.AllowPause {
			return ErrPauseDisabled
		}
		t.v.State = StateRunning
	}
	return nil
}

// Pause suspends counting.
func (t *Timer) Pause() error {
	if !t.opts.AllowPause {
		return ErrPauseDisabled
	}
	if t.v.State == StateRunning {
		t.v.State = StatePaused
	}
	return nil
}

// Resume continues a paused timer.
func (t *Timer) Resume() error {
	if t.v.State == StatePaused {
		t.v.State = StateRunning
	}
	return nil
}

// Reset returns to idle with the initial counter.
func (t *Timer) Reset() error {
	if !t.opts.AllowReset {
		return ErrResetDisabled
	}
	if !t.loaded {
		return ErrNotLoaded
	}
	t.v.State = StateIdle
	t.v.Counter = t.initialCounter()
	t.v.WarningFired = false
	t.v.ExpiryFired = false
	return nil
}

// Stop halts counting and keeps the counter.
func (t *Timer) Stop() {
	t.v.State = StateIdle
}

// Tick advances a running timer by one second and returns the threshold
// events it crossed.
func (t *Timer) Tick() []Event {
	if t.v.State != StateRunning {
		return nil
	}

	if t.v.Mode == ModeCountdown {
		t.v.Counter--
	} else {
		t.v.Counter++
	}

	var events []Event
	remaining := t.TimeRemaining()
	warn := t.opts.WarningSeconds

	if warn > 0 && remaining <= warn && remaining > 0 && remaining > warn-thresholdWindow && !t.v.WarningFired {
		t.v.WarningFired = true
		events = append(events, Event{Type: EventWarning, TimeRemaining: remaining})
	}
	if remaining <= 0 && remaining > -thresholdWindow && !t.v.ExpiryFired {
		t.v.ExpiryFired = true
		events = append(events, Event{Type: EventExpired, TimeRemaining: remaining})
	}

	if remaining > 0 {
		t.v.ExpiryFired = false
	}
	if remaining > warn {
		t.v.WarningFired = false
	}

	return events
}

// State returns the run state.
func (t *Timer) State() State {
	return t.v.State
}

// Values returns the persisted part of the timer.
func (t *Timer) Values() Values {
	return t.v
}

// Options returns the active options.
func (t *Timer) Options() Options {
	return t.opts
}

// TimeRemaining is positive before the end of the turn and negative in
// overtime.
func (t *Timer) TimeRemaining() int {
	if t.v.Mode == ModeCountdown {
		return t.v.Counter
	}
	return t.v.TotalSeconds - t.v.Counter
}

// IsOvertime reports whether the turn has run past its allotment.
func (t *Timer) IsOvertime() bool {
	return t.TimeRemaining() < 0
}

// Elapsed is the number of seconds used so far, including overtime.
func (t *Timer) Elapsed() int {
	if t.v.Mode == ModeCountdown {
		return t.v.TotalSeconds - t.v.Counter
	}
	return t.v.Counter
}

// Overtime is positive when the turn ran long and negative when it ended
// early.
func (t *Timer) Overtime() int {
	return -t.TimeRemaining()
}

// ProgressPercent is the share of the allotment used, 100 in overtime.
func (t *Timer) ProgressPercent() int {
	if t.v.TotalSeconds <= 0 {
		return 0
	}
	if t.IsOvertime() {
		return 100
	}
	pct := int(math.Round(float64(t.Elapsed()) * 100 / float64(t.v.TotalSeconds)))
	return max(0, min(100, pct))
}

// Snapshot returns the view model.
func (t *Timer) Snapshot() Snapshot {
	remaining := t.TimeRemaining()
	label := FormatClock(remaining)
	if remaining < 0 {
		label = "+" + FormatClock(-remaining)
	}
	return Snapshot{
		State:           t.v.State,
		Mode:            t.v.Mode,
		Counter:         t.v.Counter,
		TotalSeconds:    t.v.TotalSeconds,
		TimeRemaining:   remaining,
		Elapsed:         t.Elapsed(),
		IsOvertime:      t.IsOvertime(),
		ProgressPercent: t.ProgressPercent(),
		Display:         FormatClock(t.v.Counter),
		ElapsedDisplay:  FormatClock(t.Elapsed()),
		RemainingLabel:  label,
	}
}

func (t *Timer) initialCounter() int {
	if t.v.Mode == ModeCountdown {
		return t.v.TotalSeconds
	}
	return 0
}
