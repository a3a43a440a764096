package mocks

import (
	"context"

	"github.com/rpggio/turnkeeper/internal/domain/activity"
	"github.com/rpggio/turnkeeper/internal/domain/roster"
	"github.com/rpggio/turnkeeper/internal/domain/rule"
	"github.com/rpggio/turnkeeper/internal/domain/session"
	"github.com/stretchr/testify/mock"
)

var (
	_ roster.Repository   = (*RosterRepository)(nil)
	_ rule.Repository     = (*RuleRepository)(nil)
	_ session.Repository  = (*SessionRepository)(nil)
	_ activity.Repository = (*ActivityRepository)(nil)
)

// RosterRepository is a mock for roster.Repository.
type RosterRepository struct {
	mock.Mock
}

func (m *RosterRepository) GetSettings(ctx context.Context) (*roster.Settings, error) {
	args := m.Called(ctx)
	if s, ok := args.Get(0).(*roster.Settings); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RosterRepository) SaveSettings(ctx context.Context, settings roster.Settings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}

func (m *RosterRepository) ListPeople(ctx context.Context) ([]roster.Person, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]roster.Person); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RosterRepository) GetPerson(ctx context.Context, id string) (*roster.Person, error) {
	args := m.Called(ctx, id)
	if p, ok := args.Get(0).(*roster.Person); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RosterRepository) CreatePerson(ctx context.Context, p *roster.Person) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *RosterRepository) UpdatePerson(ctx context.Context, p *roster.Person) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *RosterRepository) DeletePerson(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *RosterRepository) ResetUsage(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *RosterRepository) ListDevices(ctx context.Context) ([]roster.Device, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]roster.Device); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RosterRepository) CreateDevice(ctx context.Context, d *roster.Device) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *RosterRepository) DeleteDevice(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// RuleRepository is a mock for rule.Repository.
type RuleRepository struct {
	mock.Mock
}

func (m *RuleRepository) List(ctx context.Context) ([]rule.Rule, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]rule.Rule); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RuleRepository) Get(ctx context.Context, id string) (*rule.Rule, error) {
	args := m.Called(ctx, id)
	if r, ok := args.Get(0).(*rule.Rule); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RuleRepository) Create(ctx context.Context, r *rule.Rule) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *RuleRepository) SetEnabled(ctx context.Context, id string, enabled bool) error {
	args := m.Called(ctx, id, enabled)
	return args.Error(0)
}

func (m *RuleRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *RuleRepository) ReplaceAll(ctx context.Context, rules []rule.Rule) error {
	args := m.Called(ctx, rules)
	return args.Error(0)
}

// SessionRepository is a mock for session.Repository.
type SessionRepository struct {
	mock.Mock
}

func (m *SessionRepository) SaveDeviceState(ctx context.Context, deviceID string, st *session.DeviceState) error {
	args := m.Called(ctx, deviceID, st)
	return args.Error(0)
}

func (m *SessionRepository) GetDeviceState(ctx context.Context, deviceID string) (*session.DeviceState, error) {
	args := m.Called(ctx, deviceID)
	if st, ok := args.Get(0).(*session.DeviceState); ok {
		return st, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SessionRepository) DeleteDeviceState(ctx context.Context, deviceID string) error {
	args := m.Called(ctx, deviceID)
	return args.Error(0)
}

func (m *SessionRepository) UpsertActive(ctx context.Context, s *session.ActiveSession) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *SessionRepository) ListActive(ctx context.Context) ([]session.ActiveSession, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]session.ActiveSession); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SessionRepository) DeleteActive(ctx context.Context, deviceID string) error {
	args := m.Called(ctx, deviceID)
	return args.Error(0)
}

func (m *SessionRepository) GetMeta(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *SessionRepository) SetMeta(ctx context.Context, key, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

// ActivityRepository is a mock for activity.Repository.
type ActivityRepository struct {
	mock.Mock
}

func (m *ActivityRepository) Log(ctx context.Context, entry *activity.ActivityEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *ActivityRepository) List(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]activity.ActivityEntry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}
