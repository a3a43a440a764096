package session

import (
	"time"

	"github.com/rpggio/turnkeeper/internal/domain/queue"
	"github.com/rpggio/turnkeeper/internal/domain/timer"
)

// DefaultTTL is how long an active-session record stays visible without an
// update.
const DefaultTTL = time.Hour

// DeviceState is the timer and queue of one device, persisted so a restart
// picks up where it left off.
type DeviceState struct {
	Queue     queue.Queue  `json:"queue"`
	Timer     timer.Values `json:"timer"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// IsPaused reports whether the stored timer was paused.
func (d DeviceState) IsPaused() bool {
	return d.Timer.State == timer.StatePaused
}

// ActiveSession advertises a rotation in progress on some device. Records
// are advisory and last-writer-wins per device.
type ActiveSession struct {
	DeviceID     string        `json:"deviceId"`
	DeviceName   string        `json:"deviceName"`
	Queue        []queue.Entry `json:"queue"`
	CurrentIndex int           `json:"currentIndex"`
	Timer        timer.Values  `json:"timer"`
	LastUpdate   time.Time     `json:"lastUpdate"`
}

// CurrentPerson returns the name of whoever holds the turn, if anyone.
func (a ActiveSession) CurrentPerson() string {
	if a.CurrentIndex >= 0 && a.CurrentIndex < len(a.Queue) {
		return a.Queue[a.CurrentIndex].Person.Name
	}
	return ""
}
