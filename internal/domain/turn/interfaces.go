package turn

import (
	"context"

	"github.com/rpggio/turnkeeper/internal/domain/activity"
	"github.com/rpggio/turnkeeper/internal/domain/roster"
	"github.com/rpggio/turnkeeper/internal/domain/rule"
	"github.com/rpggio/turnkeeper/internal/domain/session"
)

// RosterService provides the people and settings a rotation is built from.
type RosterService interface {
	Settings(ctx context.Context) (roster.Settings, error)
	ListPeople(ctx context.Context) ([]roster.Person, error)
	GetPerson(ctx context.Context, id string) (*roster.Person, error)
	Save(ctx context.Context, p *roster.Person) error
}

// RuleSource provides the rule set in evaluation order.
type RuleSource interface {
	List(ctx context.Context) ([]rule.Rule, error)
}

// SessionStore persists device state and the active-session map.
type SessionStore interface {
	SaveDeviceState(ctx context.Context, deviceID string, st *session.DeviceState) error
	LoadDeviceState(ctx context.Context, deviceID string) (*session.DeviceState, error)
	ClearDeviceState(ctx context.Context, deviceID string) error
	RecordActive(ctx context.Context, a session.ActiveSession) error
	ClearActive(ctx context.Context, deviceID string) error
	OtherActive(ctx context.Context, deviceID string) ([]session.ActiveSession, error)
}

// ActivityLogger records history entries.
type ActivityLogger interface {
	LogActivity(ctx context.Context, entry *activity.ActivityEntry) error
}
