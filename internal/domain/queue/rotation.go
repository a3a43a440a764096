package queue

import (
	"fmt"

	"github.com/rpggio/turnkeeper/internal/domain/roster"
)

// BuildRotation creates a fresh rotation from the roster. In priority mode
// people with priority come first, each group keeping roster order;
// otherwise the order is shuffled.
func BuildRotation(people []roster.Person, priorityMode bool, shuffler Shuffler) (*Queue, error) {
	if len(people) == 0 {
		return nil, ErrEmptyRoster
	}

	entries := make([]Entry, 0, len(people))
	if priorityMode {
		for _, p := range people {
			if p.HasPriority {
				entries = append(entries, newEntry(p))
			}
		}
		for _, p := range people {
			if !p.HasPriority {
				entries = append(entries, newEntry(p))
			}
		}
	} else {
		for _, p := range people {
			entries = append(entries, newEntry(p))
		}
		shuffleEntries(entries, shuffler)
	}

	return &Queue{Entries: entries}, nil
}

// Reshuffle permutes the queue according to mode. ReshuffleAll restarts the
// rotation; ReshuffleRemaining keeps the cursor and the current entry.
func Reshuffle(q *Queue, mode ReshuffleMode, shuffler Shuffler) error {
	if q == nil || len(q.Entries) == 0 {
		return ErrEmptyQueue
	}

	switch mode {
	case ReshuffleAll, "":
		shuffleEntries(q.Entries, shuffler)
		q.CurrentIndex = 0
	case ReshuffleRemaining:
		shuffleEntries(q.Remaining(), shuffler)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownReshuffleMode, mode)
	}
	return nil
}

// Advance moves the cursor to the next entry, stopping at completion.
func Advance(q *Queue) {
	if q.CurrentIndex < len(q.Entries) {
		q.CurrentIndex++
	}
}

func newEntry(p roster.Person) Entry {
	return Entry{Person: p, AllottedSeconds: p.DefaultTurnSeconds}
}

func shuffleEntries(entries []Entry, shuffler Shuffler) {
	if shuffler == nil {
		shuffler = RandomShuffler{}
	}
	shuffler.Shuffle(len(entries), func(i, j int) {
		entries[i], entries[j] = entries[j], entries[i]
	})
}
