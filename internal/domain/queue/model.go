package queue

import "github.com/rpggio/turnkeeper/internal/domain/roster"

// Entry is one slot in a rotation. Person is a copy taken when the rotation
// was built, so changing AllottedSeconds never touches the roster.
type Entry struct {
	Person          roster.Person `json:"person"`
	AllottedSeconds int           `json:"allottedSeconds"`
}

// ID identifies the entry within its rotation.
func (e Entry) ID() string {
	return e.Person.ID
}

// Queue is an ordered rotation with a cursor. CurrentIndex == len(Entries)
// means the rotation is complete.
type Queue struct {
	Entries      []Entry `json:"entries"`
	CurrentIndex int     `json:"currentIndex"`
}

// Len returns the number of entries.
func (q *Queue) Len() int {
	return len(q.Entries)
}

// Current returns the entry under the cursor.
func (q *Queue) Current() (*Entry, bool) {
	if q == nil || q.CurrentIndex < 0 || q.CurrentIndex >= len(q.Entries) {
		return nil, false
	}
	return &q.Entries[q.CurrentIndex], true
}

// IsComplete reports whether every entry has had its turn.
func (q *Queue) IsComplete() bool {
	return q == nil || q.CurrentIndex >= len(q.Entries)
}

// Remaining returns the entries strictly after the cursor. The slice shares
// storage with the queue.
func (q *Queue) Remaining() []Entry {
	if q == nil || q.CurrentIndex+1 >= len(q.Entries) {
		return nil
	}
	return q.Entries[q.CurrentIndex+1:]
}

// Clone returns a deep copy.
func (q *Queue) Clone() *Queue {
	if q == nil {
		return nil
	}
	entries := make([]Entry, len(q.Entries))
	copy(entries, q.Entries)
	return &Queue{Entries: entries, CurrentIndex: q.CurrentIndex}
}

// ReshuffleMode selects which entries a reshuffle permutes.
type ReshuffleMode string

const (
	// ReshuffleAll permutes every entry and restarts the rotation.
	ReshuffleAll ReshuffleMode = "all"
	// ReshuffleRemaining permutes only entries after the current one.
	ReshuffleRemaining ReshuffleMode = "remaining"
)

// ParseReshuffleMode maps a configuration string to a mode. Empty means all.
func ParseReshuffleMode(s string) (ReshuffleMode, error) {
	switch ReshuffleMode(s) {
	case "", ReshuffleAll:
		return ReshuffleAll, nil
	case ReshuffleRemaining:
		return ReshuffleRemaining, nil
	default:
		return "", ErrUnknownReshuffleMode
	}
}
