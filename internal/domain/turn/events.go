package turn

import (
	"sync"
	"time"
)

// EventType names something the presentation layer should react to.
type EventType string

const (
	EventRotationStarted   EventType = "rotation_started"
	EventTurnStarted       EventType = "turn_started"
	EventWarning           EventType = "warning"
	EventExpired           EventType = "expired"
	EventOvertimeNotice    EventType = "overtime_notice"
	EventTurnFinished      EventType = "turn_finished"
	EventRotationCompleted EventType = "rotation_completed"
)

// Severity hints how a notice should be shown.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
	SeveritySuccess Severity = "success"
)

// Event is emitted by the controller.
type Event struct {
	Type               EventType `json:"type"`
	DeviceID           string    `json:"deviceId"`
	PersonID           string    `json:"personId,omitempty"`
	PersonName         string    `json:"personName,omitempty"`
	Seconds            int       `json:"seconds,omitempty"`
	Severity           Severity  `json:"severity,omitempty"`
	Message            string    `json:"message,omitempty"`
	OtherActiveDevices int       `json:"otherActiveDevices,omitempty"`
	At                 time.Time `json:"at"`
}

// EventSink receives controller events. Publish must not block.
type EventSink interface {
	Publish(Event)
}

// DefaultRecorderSize bounds how many undrained events a Recorder keeps.
const DefaultRecorderSize = 256

// Recorder buffers events until drained, dropping the oldest when full.
type Recorder struct {
	mu     sync.Mutex
	size   int
	events []Event
}

// NewRecorder creates a recorder holding at most size events.
func NewRecorder(size int) *Recorder {
	if size <= 0 {
		size = DefaultRecorderSize
	}
	return &Recorder{size: size}
}

func (r *Recorder) Publish(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == r.size {
		r.events = r.events[1:]
	}
	r.events = append(r.events, e)
}

// Drain returns and clears the buffered events, oldest first.
func (r *Recorder) Drain() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.events
	r.events = nil
	return out
}

type discardSink struct{}

func (discardSink) Publish(Event) {}
