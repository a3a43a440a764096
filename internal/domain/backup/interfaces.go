package backup

import (
	"context"

	"github.com/rpggio/turnkeeper/internal/domain/activity"
	"github.com/rpggio/turnkeeper/internal/domain/roster"
	"github.com/rpggio/turnkeeper/internal/domain/rule"
)

// Repository replaces all user configuration at once.
type Repository interface {
	Replace(ctx context.Context, doc Document) error
}

// RosterReader provides the roster half of an export.
type RosterReader interface {
	Settings(ctx context.Context) (roster.Settings, error)
	ListPeople(ctx context.Context) ([]roster.Person, error)
	ListDevices(ctx context.Context) ([]roster.Device, error)
}

// RuleLister provides the rules of an export.
type RuleLister interface {
	List(ctx context.Context) ([]rule.Rule, error)
}

// ActivityLogger records the import in history.
type ActivityLogger interface {
	LogActivity(ctx context.Context, entry *activity.ActivityEntry) error
}
