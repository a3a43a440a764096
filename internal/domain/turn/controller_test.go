package turn_test

import (
	"context"
	"sync"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/rpggio/turnkeeper/internal/domain/activity"
	"github.com/rpggio/turnkeeper/internal/domain/queue"
	"github.com/rpggio/turnkeeper/internal/domain/roster"
	"github.com/rpggio/turnkeeper/internal/domain/rule"
	"github.com/rpggio/turnkeeper/internal/domain/session"
	"github.com/rpggio/turnkeeper/internal/domain/timer"
	"github.com/rpggio/turnkeeper/internal/domain/turn"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type rosterFake struct {
	mu       sync.Mutex
	settings roster.Settings
	people   []roster.Person
}

func (r *rosterFake) Settings(context.Context) (roster.Settings, error) {
	return r.settings, nil
}

func (r *rosterFake) ListPeople(context.Context) ([]roster.Person, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]roster.Person(nil), r.people...), nil
}

func (r *rosterFake) GetPerson(_ context.Context, id string) (*roster.Person, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.people {
		if p.ID == id {
			cp := p
			return &cp, nil
		}
	}
	return nil, roster.ErrPersonNotFound
}

func (r *rosterFake) Save(_ context.Context, p *roster.Person) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.people {
		if r.people[i].ID == p.ID {
			r.people[i] = *p
			return nil
		}
	}
	return roster.ErrPersonNotFound
}

func (r *rosterFake) person(id string) roster.Person {
	p, _ := r.GetPerson(context.Background(), id)
	return *p
}

type rulesFake []rule.Rule

func (r rulesFake) List(context.Context) ([]rule.Rule, error) {
	return r, nil
}

type sessionsFake struct {
	states map[string]session.DeviceState
	active map[string]session.ActiveSession
}

func newSessionsFake() *sessionsFake {
	return &sessionsFake{
		states: map[string]session.DeviceState{},
		active: map[string]session.ActiveSession{},
	}
}

func (s *sessionsFake) SaveDeviceState(_ context.Context, deviceID string, st *session.DeviceState) error {
	s.states[deviceID] = session.DeviceState{Queue: *st.Queue.Clone(), Timer: st.Timer}
	return nil
}

func (s *sessionsFake) LoadDeviceState(_ context.Context, deviceID string) (*session.DeviceState, error) {
	st, ok := s.states[deviceID]
	if !ok {
		return nil, nil
	}
	return &st, nil
}

func (s *sessionsFake) ClearDeviceState(_ context.Context, deviceID string) error {
	delete(s.states, deviceID)
	return nil
}

func (s *sessionsFake) RecordActive(_ context.Context, a session.ActiveSession) error {
	s.active[a.DeviceID] = a
	return nil
}

func (s *sessionsFake) ClearActive(_ context.Context, deviceID string) error {
	delete(s.active, deviceID)
	return nil
}

func (s *sessionsFake) OtherActive(_ context.Context, deviceID string) ([]session.ActiveSession, error) {
	var out []session.ActiveSession
	for id, a := range s.active {
		if id != deviceID {
			out = append(out, a)
		}
	}
	return out, nil
}

type activityFake struct {
	entries []activity.ActivityEntry
}

func (a *activityFake) LogActivity(_ context.Context, e *activity.ActivityEntry) error {
	a.entries = append(a.entries, *e)
	return nil
}

type harness struct {
	roster   *rosterFake
	sessions *sessionsFake
	activity *activityFake
	events   *turn.Recorder
	ctrl     *turn.Controller
}

func newHarness(t *testing.T, rules []rule.Rule, people ...roster.Person) *harness {
	t.Helper()
	h := &harness{
		roster:   &rosterFake{settings: roster.DefaultSettings(), people: people},
		sessions: newSessionsFake(),
		activity: &activityFake{},
		events:   turn.NewRecorder(0),
	}
	h.ctrl = h.newController(rules)
	return h
}

func (h *harness) newController(rules []rule.Rule) *turn.Controller {
	return turn.NewController(turn.Config{
		DeviceID: "device_abcd1234",
		Roster:   h.roster,
		Rules:    rulesFake(rules),
		Sessions: h.sessions,
		Activity: h.activity,
		Events:   h.events,
		Shuffler: queue.IdentityShuffler{},
		Clock:    clockwork.NewFakeClock(),
		Logger:   zerolog.Nop(),
	})
}

func (h *harness) tick(n int) {
	for i := 0; i < n; i++ {
		h.ctrl.Tick(context.Background())
	}
}

func eventTypes(events []turn.Event) []turn.EventType {
	out := make([]turn.EventType, 0, len(events))
	for _, e := range events {
		out = append(out, e.Type)
	}
	return out
}

func person(id string, seconds int) roster.Person {
	return roster.Person{ID: id, Name: id, DefaultTurnSeconds: seconds}
}

func TestController_TwoPersonRotation(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, rule.DefaultRules(), person("A", 60), person("B", 120))

	snap, err := h.ctrl.StartQueue(ctx)
	require.NoError(t, err)
	require.Equal(t, "A", snap.Current.ID())
	require.Equal(t, 60, snap.Timer.Counter)
	require.Equal(t, timer.StateIdle, snap.Timer.State)

	_, err = h.ctrl.Start(ctx)
	require.NoError(t, err)
	h.tick(80)
	require.Equal(t, -20, h.ctrl.Snapshot().Timer.Counter)

	res, err := h.ctrl.FinishCurrentTurn(ctx)
	require.NoError(t, err)
	require.Equal(t, 20, res.Overtime)
	require.Equal(t, 60, res.NextTurnSeconds)
	require.Equal(t, 60, res.UsedSeconds)
	require.Equal(t, []string{"Overtime penalty"}, res.AppliedRules)
	require.False(t, res.RotationComplete)
	require.Equal(t, "B", res.Next.ID())

	a := h.roster.person("A")
	require.Equal(t, 60, a.DefaultTurnSeconds)
	require.Equal(t, 60, a.TotalUsageSeconds)

	view := h.ctrl.Snapshot()
	require.Equal(t, 1, view.CurrentIndex)
	require.Equal(t, 120, view.Timer.Counter)
	require.Equal(t, timer.StateIdle, view.Timer.State)

	require.Equal(t, []turn.EventType{
		turn.EventRotationStarted,
		turn.EventTurnStarted,
		turn.EventExpired,
		turn.EventTurnFinished,
		turn.EventTurnStarted,
	}, eventTypes(h.events.Drain()))

	res, err = h.ctrl.FinishCurrentTurn(ctx)
	require.NoError(t, err)
	require.Equal(t, -120, res.Overtime)
	require.True(t, res.RotationComplete)
	require.Equal(t, 0, res.OtherActiveDevices)
	require.Equal(t, 60, h.roster.person("B").DefaultTurnSeconds)

	events := h.events.Drain()
	require.Equal(t, []turn.EventType{
		turn.EventOvertimeNotice,
		turn.EventTurnFinished,
		turn.EventRotationCompleted,
	}, eventTypes(events))
	require.Equal(t, turn.SeveritySuccess, events[0].Severity)
	require.Equal(t, "B finished 2 minutes and 0 seconds early", events[0].Message)

	require.True(t, h.ctrl.Snapshot().RotationComplete)
	require.Empty(t, h.sessions.active)

	_, err = h.ctrl.FinishCurrentTurn(ctx)
	require.ErrorIs(t, err, turn.ErrNoActiveTurn)
}

func TestController_OvertimeNoticeWhenOver(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil, person("A", 60), person("B", 60))

	_, err := h.ctrl.StartQueue(ctx)
	require.NoError(t, err)
	_, err = h.ctrl.Start(ctx)
	require.NoError(t, err)
	h.tick(125)
	h.events.Drain()

	_, err = h.ctrl.FinishCurrentTurn(ctx)
	require.NoError(t, err)
	events := h.events.Drain()
	require.Equal(t, turn.EventOvertimeNotice, events[0].Type)
	require.Equal(t, turn.SeverityDanger, events[0].Severity)
	require.Equal(t, "A went over by 1 minutes and 5 seconds", events[0].Message)
}

func TestController_AllOthersAdjustsQueue(t *testing.T) {
	ctx := context.Background()
	rules := rule.DefaultRules()
	for i := range rules {
		rules[i].Enabled = rules[i].ID == rule.IDGroupRedistribution
	}
	h := newHarness(t, rules, person("A", 60), person("B", 120), person("C", 180))

	_, err := h.ctrl.StartQueue(ctx)
	require.NoError(t, err)
	_, err = h.ctrl.Start(ctx)
	require.NoError(t, err)
	h.tick(180)

	res, err := h.ctrl.FinishCurrentTurn(ctx)
	require.NoError(t, err)
	require.Equal(t, map[string]int{"B": 60, "C": 60}, res.Adjustments)

	snap := h.ctrl.Snapshot()
	require.Equal(t, 180, snap.Queue[1].AllottedSeconds)
	require.Equal(t, 240, snap.Queue[2].AllottedSeconds)
	require.Equal(t, 180, snap.Timer.Counter)
	require.Equal(t, 120, h.roster.person("B").DefaultTurnSeconds)
}

func TestController_EmptyRoster(t *testing.T) {
	h := newHarness(t, nil)
	_, err := h.ctrl.StartQueue(context.Background())
	require.ErrorIs(t, err, queue.ErrEmptyRoster)

	_, err = h.ctrl.Start(context.Background())
	require.ErrorIs(t, err, turn.ErrNoActiveTurn)

	_, err = h.ctrl.Reshuffle(context.Background())
	require.ErrorIs(t, err, queue.ErrEmptyQueue)
}

func TestController_PauseDisabled(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil, person("A", 60))
	h.roster.settings.AllowPause = false

	_, err := h.ctrl.StartQueue(ctx)
	require.NoError(t, err)
	_, err = h.ctrl.Start(ctx)
	require.NoError(t, err)

	_, err = h.ctrl.Pause(ctx)
	require.ErrorIs(t, err, timer.ErrPauseDisabled)
	require.Equal(t, timer.StateRunning, h.ctrl.Snapshot().Timer.State)
}

func TestController_CountUpMode(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil, person("A", 60))
	h.roster.settings.CountDown = false

	_, err := h.ctrl.StartQueue(ctx)
	require.NoError(t, err)
	_, err = h.ctrl.Start(ctx)
	require.NoError(t, err)
	h.tick(75)

	res, err := h.ctrl.FinishCurrentTurn(ctx)
	require.NoError(t, err)
	require.Equal(t, 15, res.Overtime)
	require.Equal(t, 60, res.UsedSeconds)
}

func TestController_RestoreResumesRunningTimer(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil, person("A", 60), person("B", 60))

	_, err := h.ctrl.StartQueue(ctx)
	require.NoError(t, err)
	_, err = h.ctrl.Start(ctx)
	require.NoError(t, err)
	h.tick(5)
	require.Contains(t, h.sessions.active, "device_abcd1234")

	restored := h.newController(nil)
	require.NoError(t, restored.Restore(ctx))
	snap := restored.Snapshot()
	require.Equal(t, timer.StateRunning, snap.Timer.State)
	require.Equal(t, 55, snap.Timer.Counter)

	restored.Tick(ctx)
	require.Equal(t, 54, restored.Snapshot().Timer.Counter)
}

func TestController_RestoreWithoutState(t *testing.T) {
	h := newHarness(t, nil, person("A", 60))
	require.NoError(t, h.ctrl.Restore(context.Background()))
	require.Nil(t, h.ctrl.Snapshot().Timer)
}

func TestController_PersonRemovedMidRotation(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, rule.DefaultRules(), person("A", 60), person("B", 60))

	_, err := h.ctrl.StartQueue(ctx)
	require.NoError(t, err)
	h.roster.people = h.roster.people[1:]

	res, err := h.ctrl.FinishCurrentTurn(ctx)
	require.NoError(t, err)
	require.Equal(t, "A", res.PersonID)
	require.Empty(t, res.AppliedRules)
	require.Equal(t, "B", res.Next.ID())
}

func TestController_ReshuffleReloadsCurrent(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil, person("A", 60), person("B", 120))

	_, err := h.ctrl.StartQueue(ctx)
	require.NoError(t, err)
	_, err = h.ctrl.FinishCurrentTurn(ctx)
	require.NoError(t, err)

	snap, err := h.ctrl.Reshuffle(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, snap.CurrentIndex)
	require.Equal(t, "A", snap.Current.ID())
	require.Equal(t, 60, snap.Timer.Counter)
}

func TestController_ReshuffleAppliesSettingsAndPublishesActive(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil, person("A", 60), person("B", 120))

	_, err := h.ctrl.StartQueue(ctx)
	require.NoError(t, err)
	_, err = h.ctrl.FinishCurrentTurn(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, h.sessions.active["device_abcd1234"].CurrentIndex)

	h.roster.settings.CountDown = false

	snap, err := h.ctrl.Reshuffle(ctx)
	require.NoError(t, err)
	require.Equal(t, "A", snap.Current.ID())
	require.Equal(t, timer.ModeCountUp, snap.Timer.Mode)

	active := h.sessions.active["device_abcd1234"]
	require.Equal(t, 0, active.CurrentIndex)
	require.Equal(t, timer.ModeCountUp, active.Timer.Mode)
}

func TestController_StopRotation(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil, person("A", 60))

	_, err := h.ctrl.StartQueue(ctx)
	require.NoError(t, err)
	_, err = h.ctrl.Start(ctx)
	require.NoError(t, err)

	require.NoError(t, h.ctrl.StopRotation(ctx))
	require.Empty(t, h.sessions.states)
	require.Empty(t, h.sessions.active)
	require.Nil(t, h.ctrl.Snapshot().Queue)
}
