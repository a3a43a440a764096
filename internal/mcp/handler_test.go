package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rpggio/turnkeeper/internal/domain/activity"
	"github.com/rpggio/turnkeeper/internal/domain/backup"
	"github.com/rpggio/turnkeeper/internal/domain/queue"
	"github.com/rpggio/turnkeeper/internal/domain/roster"
	"github.com/rpggio/turnkeeper/internal/domain/rule"
	"github.com/rpggio/turnkeeper/internal/domain/session"
	"github.com/rpggio/turnkeeper/internal/domain/timer"
	"github.com/rpggio/turnkeeper/internal/domain/turn"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type rosterStub struct {
	addPersonFn    func(context.Context, roster.AddPersonRequest) (*roster.Person, error)
	updatePersonFn func(context.Context, roster.UpdatePersonRequest) (*roster.Person, error)
	deletePersonFn func(context.Context, string) error
	updateFn       func(context.Context, roster.UpdateSettingsRequest) (*roster.Settings, error)
	resetUsageFn   func(context.Context) error
}

func (r rosterStub) Settings(context.Context) (roster.Settings, error) {
	return roster.DefaultSettings(), nil
}
func (r rosterStub) UpdateSettings(ctx context.Context, req roster.UpdateSettingsRequest) (*roster.Settings, error) {
	return r.updateFn(ctx, req)
}
func (r rosterStub) AddPerson(ctx context.Context, req roster.AddPersonRequest) (*roster.Person, error) {
	return r.addPersonFn(ctx, req)
}
func (r rosterStub) UpdatePerson(ctx context.Context, req roster.UpdatePersonRequest) (*roster.Person, error) {
	return r.updatePersonFn(ctx, req)
}
func (r rosterStub) DeletePerson(ctx context.Context, id string) error {
	return r.deletePersonFn(ctx, id)
}
func (r rosterStub) ListPeople(context.Context) ([]roster.Person, error) {
	return []roster.Person{{ID: "p1", Name: "Ada"}}, nil
}
func (r rosterStub) AddDevice(_ context.Context, name string) (*roster.Device, error) {
	return &roster.Device{ID: "d1", Name: name}, nil
}
func (r rosterStub) RemoveDevice(context.Context, string) error {
	return roster.ErrDeviceNotFound
}
func (r rosterStub) ListDevices(context.Context) ([]roster.Device, error) {
	return []roster.Device{}, nil
}
func (r rosterStub) UsageStats(context.Context) (*roster.UsageStats, error) {
	return &roster.UsageStats{}, nil
}
func (r rosterStub) ResetUsage(ctx context.Context) error {
	return r.resetUsageFn(ctx)
}

type ruleStub struct {
	addFn    func(context.Context, rule.CreateRequest) (*rule.Rule, error)
	deleteFn func(context.Context, string) error
}

func (r ruleStub) List(context.Context) ([]rule.Rule, error) {
	return rule.DefaultRules(), nil
}
func (r ruleStub) Add(ctx context.Context, req rule.CreateRequest) (*rule.Rule, error) {
	return r.addFn(ctx, req)
}
func (r ruleStub) Toggle(_ context.Context, id string) (*rule.Rule, error) {
	return &rule.Rule{ID: id, Enabled: true}, nil
}
func (r ruleStub) Delete(ctx context.Context, id string) error {
	return r.deleteFn(ctx, id)
}

type turnStub struct {
	snapshot turn.Snapshot
	pauseErr error
	finishFn func(context.Context) (*turn.TurnResult, error)
	active   []session.ActiveSession
	stopped  bool
}

func (s *turnStub) StartQueue(context.Context) (*turn.Snapshot, error) {
	return &s.snapshot, nil
}
func (s *turnStub) Start(context.Context) (*turn.Snapshot, error)  { return &s.snapshot, nil }
func (s *turnStub) Pause(context.Context) (*turn.Snapshot, error)  { return nil, s.pauseErr }
func (s *turnStub) Resume(context.Context) (*turn.Snapshot, error) { return &s.snapshot, nil }
func (s *turnStub) Reset(context.Context) (*turn.Snapshot, error)  { return &s.snapshot, nil }
func (s *turnStub) Reshuffle(context.Context) (*turn.Snapshot, error) {
	return nil, queue.ErrEmptyQueue
}
func (s *turnStub) FinishCurrentTurn(ctx context.Context) (*turn.TurnResult, error) {
	return s.finishFn(ctx)
}
func (s *turnStub) StopRotation(context.Context) error {
	s.stopped = true
	return nil
}
func (s *turnStub) Snapshot() turn.Snapshot { return s.snapshot }
func (s *turnStub) ActiveDevices(context.Context) ([]session.ActiveSession, error) {
	return s.active, nil
}
func (s *turnStub) DeviceID() string { return "dev1" }

type eventStub struct {
	events []turn.Event
}

func (e *eventStub) Drain() []turn.Event {
	out := e.events
	e.events = nil
	return out
}

type activityStub struct {
	logged []activity.ActivityEntry
	logErr error
	listFn func(context.Context, activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}

func (a *activityStub) LogActivity(_ context.Context, entry *activity.ActivityEntry) error {
	if a.logErr != nil {
		return a.logErr
	}
	a.logged = append(a.logged, *entry)
	return nil
}
func (a *activityStub) GetRecentActivity(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	return a.listFn(ctx, opts)
}

type backupStub struct {
	imported []byte
}

func (b *backupStub) Export(context.Context) (*backup.Document, error) {
	return &backup.Document{Settings: roster.DefaultSettings()}, nil
}
func (b *backupStub) Import(_ context.Context, data []byte) (*backup.ImportSummary, error) {
	b.imported = data
	return &backup.ImportSummary{People: 1}, nil
}

func newTestHandler(r rosterStub, rl ruleStub, tr *turnStub, ev *eventStub, act *activityStub, bk *backupStub) *Handler {
	return NewHandler(Services{
		Roster:   r,
		Rules:    rl,
		Turn:     tr,
		Events:   ev,
		Activity: act,
		Backup:   bk,
	})
}

func TestHandler_RosterCommands(t *testing.T) {
	ctx := context.Background()

	var gotAdd roster.AddPersonRequest
	var gotUpdate roster.UpdatePersonRequest
	var gotSettings roster.UpdateSettingsRequest
	resetCalled := false
	act := &activityStub{}
	bk := &backupStub{}

	handler := newTestHandler(rosterStub{
		addPersonFn: func(_ context.Context, req roster.AddPersonRequest) (*roster.Person, error) {
			gotAdd = req
			return &roster.Person{ID: "p1", Name: req.Name}, nil
		},
		updatePersonFn: func(_ context.Context, req roster.UpdatePersonRequest) (*roster.Person, error) {
			gotUpdate = req
			return &roster.Person{ID: req.ID}, nil
		},
		deletePersonFn: func(context.Context, string) error { return nil },
		updateFn: func(_ context.Context, req roster.UpdateSettingsRequest) (*roster.Settings, error) {
			gotSettings = req
			s := roster.DefaultSettings()
			return &s, nil
		},
		resetUsageFn: func(context.Context) error {
			resetCalled = true
			return nil
		},
	}, ruleStub{}, &turnStub{}, &eventStub{}, act, bk)

	out, err := handler.Handle(ctx, "add_person", mustJSON(t, AddPersonParams{Name: "Ada", TurnMinutes: 15, HasPriority: true}))
	require.NoError(t, err)
	require.Equal(t, "Ada", out.(*roster.Person).Name)
	require.Equal(t, roster.AddPersonRequest{Name: "Ada", TurnMinutes: 15, HasPriority: true}, gotAdd)

	minutes := 20
	_, err = handler.Handle(ctx, "update_person", mustJSON(t, UpdatePersonParams{ID: "p1", TurnMinutes: &minutes}))
	require.NoError(t, err)
	require.Equal(t, "p1", gotUpdate.ID)
	require.Nil(t, gotUpdate.Name)
	require.Equal(t, 20, *gotUpdate.TurnMinutes)

	out, err = handler.Handle(ctx, "delete_person", mustJSON(t, IDParams{ID: "p1"}))
	require.NoError(t, err)
	require.Equal(t, DeletedResponse{ID: "p1", Deleted: true}, out)

	_, err = handler.Handle(ctx, "list_people", nil)
	require.NoError(t, err)

	_, err = handler.Handle(ctx, "update_settings", json.RawMessage(`{"theme":"dark","allow_pause":false}`))
	require.NoError(t, err)
	require.Equal(t, roster.ThemeDark, *gotSettings.Theme)
	require.False(t, *gotSettings.AllowPause)
	require.Nil(t, gotSettings.CountDown)

	out, err = handler.Handle(ctx, "reset_usage", nil)
	require.NoError(t, err)
	require.True(t, resetCalled)
	require.Equal(t, UsageResetResponse{Reset: true}, out)
	require.Len(t, act.logged, 1)
	require.Equal(t, activity.TypeUsageReset, act.logged[0].ActivityType)
	require.Equal(t, "dev1", act.logged[0].DeviceID)

	_, err = handler.Handle(ctx, "import_data", mustJSON(t, ImportDataParams{Data: `{"people": []}`}))
	require.NoError(t, err)
	require.Equal(t, `{"people": []}`, string(bk.imported))

	_, err = handler.Handle(ctx, "export_data", nil)
	require.NoError(t, err)
}

func TestHandler_ResetUsageLogsActivityFailure(t *testing.T) {
	var buf bytes.Buffer
	act := &activityStub{logErr: errors.New("disk full")}
	handler := NewHandler(Services{
		Roster:   rosterStub{resetUsageFn: func(context.Context) error { return nil }},
		Rules:    ruleStub{},
		Turn:     &turnStub{},
		Events:   &eventStub{},
		Activity: act,
		Backup:   &backupStub{},
		Logger:   zerolog.New(&buf),
	})

	out, err := handler.Handle(context.Background(), "reset_usage", nil)
	require.NoError(t, err)
	require.Equal(t, UsageResetResponse{Reset: true}, out)
	require.Empty(t, act.logged)
	require.Contains(t, buf.String(), `"level":"error"`)
	require.Contains(t, buf.String(), "logging usage reset")
	require.Contains(t, buf.String(), "disk full")
}

func TestHandler_RuleCommands(t *testing.T) {
	ctx := context.Background()

	var got rule.CreateRequest
	handler := newTestHandler(rosterStub{}, ruleStub{
		addFn: func(_ context.Context, req rule.CreateRequest) (*rule.Rule, error) {
			got = req
			return &rule.Rule{ID: "r1", Name: req.Name}, nil
		},
		deleteFn: func(context.Context, string) error { return rule.ErrBuiltInRule },
	}, &turnStub{}, &eventStub{}, &activityStub{}, &backupStub{})

	_, err := handler.Handle(ctx, "add_rule", mustJSON(t, AddRuleParams{
		Name:        "Bonus",
		Description: "extra minute when early",
		Condition:   "overtime < 0",
		Action:      "nextTurn + 60",
	}))
	require.NoError(t, err)
	require.True(t, got.Enabled)

	disabled := false
	_, err = handler.Handle(ctx, "add_rule", mustJSON(t, AddRuleParams{Name: "Off", Enabled: &disabled}))
	require.NoError(t, err)
	require.False(t, got.Enabled)

	out, err := handler.Handle(ctx, "list_rules", nil)
	require.NoError(t, err)
	require.Len(t, out.([]rule.Rule), 6)

	_, err = handler.Handle(ctx, "delete_rule", mustJSON(t, IDParams{ID: rule.IDOvertimePenalty}))
	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	require.Equal(t, "BUILT_IN_RULE", apiErr.Code)
}

func TestHandler_TurnCommands(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tr := &turnStub{
		snapshot: turn.Snapshot{DeviceID: "dev1", CurrentIndex: 0},
		finishFn: func(context.Context) (*turn.TurnResult, error) {
			return &turn.TurnResult{PersonID: "p1", NextTurnSeconds: 600}, nil
		},
		active: []session.ActiveSession{{
			DeviceID:     "dev2",
			DeviceName:   "Kitchen",
			Queue:        []queue.Entry{{Person: roster.Person{Name: "Ada"}}, {Person: roster.Person{Name: "Bo"}}},
			CurrentIndex: 1,
			Timer:        timer.Values{State: timer.StateRunning},
			LastUpdate:   now,
		}},
	}
	ev := &eventStub{events: []turn.Event{{Type: turn.EventWarning, DeviceID: "dev1"}}}
	handler := newTestHandler(rosterStub{}, ruleStub{}, tr, ev, &activityStub{}, &backupStub{})

	for _, method := range []string{"start_queue", "start_timer", "resume_timer", "reset_timer"} {
		out, err := handler.Handle(ctx, method, nil)
		require.NoError(t, err, method)
		require.Equal(t, "dev1", out.(*turn.Snapshot).DeviceID)
	}

	out, err := handler.Handle(ctx, "finish_turn", nil)
	require.NoError(t, err)
	require.Equal(t, 600, out.(*turn.TurnResult).NextTurnSeconds)

	out, err = handler.Handle(ctx, "get_status", nil)
	require.NoError(t, err)
	require.Equal(t, tr.snapshot, out)

	out, err = handler.Handle(ctx, "poll_events", nil)
	require.NoError(t, err)
	require.Len(t, out.(PollEventsResponse).Events, 1)

	out, err = handler.Handle(ctx, "poll_events", nil)
	require.NoError(t, err)
	require.NotNil(t, out.(PollEventsResponse).Events)
	require.Empty(t, out.(PollEventsResponse).Events)

	out, err = handler.Handle(ctx, "active_devices", nil)
	require.NoError(t, err)
	require.Equal(t, []ActiveDeviceResponse{{
		DeviceID:      "dev2",
		DeviceName:    "Kitchen",
		CurrentPerson: "Bo",
		Position:      2,
		QueueLength:   2,
		TimerState:    "running",
		LastUpdate:    now,
	}}, out)

	out, err = handler.Handle(ctx, "stop_rotation", nil)
	require.NoError(t, err)
	require.True(t, tr.stopped)
	require.Equal(t, StoppedResponse{Stopped: true}, out)
}

func TestHandler_RecentActivity(t *testing.T) {
	ctx := context.Background()
	personID := "p1"
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	var gotOpts activity.ListActivityOptions
	act := &activityStub{listFn: func(_ context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
		gotOpts = opts
		return []activity.ActivityEntry{{
			ID:           7,
			DeviceID:     "dev1",
			PersonID:     &personID,
			ActivityType: activity.TypeTurnFinished,
			Summary:      "Ada finished",
			CreatedAt:    created,
		}}, nil
	}}
	handler := newTestHandler(rosterStub{}, ruleStub{}, &turnStub{}, &eventStub{}, act, &backupStub{})

	out, err := handler.Handle(ctx, "recent_activity", json.RawMessage(`{"person_id":"p1","type":"turn_finished","limit":5}`))
	require.NoError(t, err)
	require.Equal(t, 5, gotOpts.Limit)
	require.Equal(t, "p1", *gotOpts.PersonID)
	require.Equal(t, activity.TypeTurnFinished, *gotOpts.ActivityType)

	entries := out.([]ActivityEntryResponse)
	require.Len(t, entries, 1)
	require.Equal(t, created, entries[0].Timestamp)
	require.Equal(t, "Ada finished", entries[0].Summary)
}

func TestHandler_ErrorMapping(t *testing.T) {
	ctx := context.Background()

	tr := &turnStub{
		pauseErr: timer.ErrPauseDisabled,
		finishFn: func(context.Context) (*turn.TurnResult, error) {
			return nil, turn.ErrNoActiveTurn
		},
	}
	handler := newTestHandler(rosterStub{
		addPersonFn: func(context.Context, roster.AddPersonRequest) (*roster.Person, error) {
			return nil, roster.ErrInvalidInput
		},
	}, ruleStub{}, tr, &eventStub{}, &activityStub{}, &backupStub{})

	cases := []struct {
		method string
		params json.RawMessage
		code   string
	}{
		{"pause_timer", nil, "PAUSE_DISABLED"},
		{"finish_turn", nil, "NO_ACTIVE_TURN"},
		{"reshuffle_queue", nil, "EMPTY_QUEUE"},
		{"remove_device", mustJSON(t, IDParams{ID: "d9"}), "DEVICE_NOT_FOUND"},
		{"add_person", mustJSON(t, AddPersonParams{}), "INVALID_INPUT"},
		{"add_person", json.RawMessage(`{"name": 5}`), "INVALID_INPUT"},
		{"import_data", mustJSON(t, ImportDataParams{}), "INVALID_BACKUP"},
		{"launch_rocket", nil, "UNKNOWN_TOOL"},
	}
	for _, tc := range cases {
		_, err := handler.Handle(ctx, tc.method, tc.params)
		require.Error(t, err, tc.method)
		apiErr, ok := err.(*APIError)
		require.True(t, ok, tc.method)
		require.Equal(t, tc.code, apiErr.Code, tc.method)
	}
}

func TestToolCatalog_CoversHandler(t *testing.T) {
	seen := map[string]bool{}
	for _, def := range buildToolCatalog() {
		require.False(t, seen[def.Name], def.Name)
		seen[def.Name] = true
		require.Equal(t, "object", def.InputSchema["type"], def.Name)
		require.NotEmpty(t, def.Description, def.Name)
	}
	require.Len(t, seen, 29)
}

func mustJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func TestFormatPayload_Truncates(t *testing.T) {
	require.Equal(t, "<nil>", formatPayload(nil))
	require.Equal(t, `{"a":1}`, formatPayload(map[string]int{"a": 1}))

	long := formatPayload(map[string]string{"data": string(make([]byte, 3000))})
	require.Contains(t, long, "...(")
	require.Less(t, len(long), 2100)
}
