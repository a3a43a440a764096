package turn

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/rpggio/turnkeeper/internal/domain/activity"
	"github.com/rpggio/turnkeeper/internal/domain/queue"
	"github.com/rpggio/turnkeeper/internal/domain/roster"
	"github.com/rpggio/turnkeeper/internal/domain/rule"
	"github.com/rpggio/turnkeeper/internal/domain/session"
	"github.com/rpggio/turnkeeper/internal/domain/timer"
	"github.com/rs/zerolog"
)

// noticeThreshold is how far from the allotment, in seconds, a finished
// turn must land before an overtime notice is emitted.
const noticeThreshold = 30

// Config wires a Controller.
type Config struct {
	DeviceID      string
	DeviceName    string
	Roster        RosterService
	Rules         RuleSource
	Sessions      SessionStore
	Activity      ActivityLogger
	Engine        *rule.Engine
	Events        EventSink
	Shuffler      queue.Shuffler
	ReshuffleMode queue.ReshuffleMode
	Clock         clockwork.Clock
	Logger        zerolog.Logger
}

// Controller runs the rotation of one device. Commands and ticks are
// serialized.
type Controller struct {
	mu sync.Mutex

	deviceID      string
	deviceName    string
	roster        RosterService
	rules         RuleSource
	sessions      SessionStore
	activity      ActivityLogger
	engine        *rule.Engine
	events        EventSink
	shuffler      queue.Shuffler
	reshuffleMode queue.ReshuffleMode
	clock         clockwork.Clock
	logger        zerolog.Logger

	settings roster.Settings
	queue    *queue.Queue
	timer    *timer.Timer
}

// NewController creates a controller with no rotation loaded.
func NewController(cfg Config) *Controller {
	c := &Controller{
		deviceID:      cfg.DeviceID,
		deviceName:    cfg.DeviceName,
		roster:        cfg.Roster,
		rules:         cfg.Rules,
		sessions:      cfg.Sessions,
		activity:      cfg.Activity,
		engine:        cfg.Engine,
		events:        cfg.Events,
		shuffler:      cfg.Shuffler,
		reshuffleMode: cfg.ReshuffleMode,
		clock:         cfg.Clock,
		logger:        cfg.Logger.With().Str("device_id", cfg.DeviceID).Logger(),
		settings:      roster.DefaultSettings(),
	}
	if c.deviceName == "" {
		c.deviceName = roster.FallbackDeviceName(c.deviceID)
	}
	if c.engine == nil {
		c.engine = rule.NewEngine(cfg.Logger)
	}
	if c.events == nil {
		c.events = discardSink{}
	}
	if c.shuffler == nil {
		c.shuffler = queue.RandomShuffler{}
	}
	if c.reshuffleMode == "" {
		c.reshuffleMode = queue.ReshuffleAll
	}
	if c.clock == nil {
		c.clock = clockwork.NewRealClock()
	}
	return c
}

// Restore reloads this device's saved rotation. A timer that was running
// keeps running.
func (c *Controller) Restore(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.refreshSettings(ctx); err != nil {
		return err
	}

	st, err := c.sessions.LoadDeviceState(ctx, c.deviceID)
	if err != nil {
		return fmt.Errorf("restoring rotation: %w", err)
	}
	if st == nil || st.Queue.Len() == 0 {
		return nil
	}

	q := st.Queue.Clone()
	c.queue = q
	if q.IsComplete() {
		c.timer = nil
		return nil
	}

	tm, err := timer.Restore(c.timerOptions(), st.Timer)
	if err != nil {
		c.logger.Warn().Err(err).Msg("discarding unusable timer state")
		c.queue, c.timer = nil, nil
		return c.sessions.ClearDeviceState(ctx, c.deviceID)
	}
	c.timer = tm

	c.logger.Info().
		Int("current_index", q.CurrentIndex).
		Str("state", string(tm.State())).
		Msg("rotation restored")

	if tm.State() == timer.StateRunning {
		c.saveActive(ctx)
	}
	return nil
}

// StartQueue builds a new rotation from the roster and loads its first turn.
func (c *Controller) StartQueue(ctx context.Context) (*Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.refreshSettings(ctx); err != nil {
		return nil, err
	}
	people, err := c.roster.ListPeople(ctx)
	if err != nil {
		return nil, err
	}
	q, err := queue.BuildRotation(people, c.settings.PriorityMode, c.shuffler)
	if err != nil {
		return nil, err
	}

	c.queue = q
	c.timer = timer.New(c.timerOptions())
	if err := c.loadCurrent(); err != nil {
		return nil, err
	}
	if err := c.persist(ctx); err != nil {
		return nil, err
	}

	c.logger.Info().Int("people", q.Len()).Bool("priority_mode", c.settings.PriorityMode).Msg("rotation started")
	c.logActivity(ctx, activity.TypeRotationStarted, nil, fmt.Sprintf("Rotation started with %d people", q.Len()), nil)
	c.publish(Event{Type: EventRotationStarted, Seconds: q.Len()})
	c.publishTurnStarted()

	snap := c.snapshot()
	return &snap, nil
}

// Start starts or restarts the current turn's timer.
func (c *Controller) Start(ctx context.Context) (*Snapshot, error) {
	return c.timerCommand(ctx, (*timer.Timer).Start)
}

// Pause pauses the current turn's timer.
func (c *Controller) Pause(ctx context.Context) (*Snapshot, error) {
	return c.timerCommand(ctx, (*timer.Timer).Pause)
}

// Resume resumes a paused timer.
func (c *Controller) Resume(ctx context.Context) (*Snapshot, error) {
	return c.timerCommand(ctx, (*timer.Timer).Resume)
}

// Reset returns the current turn's timer to its initial value.
func (c *Controller) Reset(ctx context.Context) (*Snapshot, error) {
	return c.timerCommand(ctx, (*timer.Timer).Reset)
}

func (c *Controller) timerCommand(ctx context.Context, cmd func(*timer.Timer) error) (*Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.hasTurn() {
		return nil, ErrNoActiveTurn
	}
	if err := c.refreshSettings(ctx); err != nil {
		return nil, err
	}
	c.timer.Configure(c.timerOptions())
	if err := cmd(c.timer); err != nil {
		return nil, err
	}
	if err := c.persist(ctx); err != nil {
		return nil, err
	}
	c.saveActive(ctx)

	snap := c.snapshot()
	return &snap, nil
}

// Reshuffle reorders the rotation using the configured mode.
func (c *Controller) Reshuffle(ctx context.Context) (*Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.queue == nil {
		return nil, queue.ErrEmptyQueue
	}

	before, hadCurrent := c.queue.Current()
	beforeID := ""
	if hadCurrent {
		beforeID = before.ID()
	}
	beforeIndex := c.queue.CurrentIndex

	if err := queue.Reshuffle(c.queue, c.reshuffleMode, c.shuffler); err != nil {
		return nil, err
	}

	after, ok := c.queue.Current()
	if ok && (c.queue.CurrentIndex != beforeIndex || after.ID() != beforeID || c.timer == nil) {
		if err := c.refreshSettings(ctx); err != nil {
			return nil, err
		}
		if c.timer == nil {
			c.timer = timer.New(c.timerOptions())
		}
		if err := c.loadCurrent(); err != nil {
			return nil, err
		}
		c.publishTurnStarted()
	}
	if err := c.persist(ctx); err != nil {
		return nil, err
	}
	c.saveActive(ctx)

	c.logActivity(ctx, activity.TypeQueueReshuffled, nil, fmt.Sprintf("Queue reshuffled (%s)", c.reshuffleMode), nil)

	snap := c.snapshot()
	return &snap, nil
}

// Tick advances a running timer by one second. Persistence failures are
// logged, never returned.
func (c *Controller) Tick(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.hasTurn() || c.timer.State() != timer.StateRunning {
		return
	}

	for _, ev := range c.timer.Tick() {
		cur, _ := c.queue.Current()
		e := Event{
			PersonID:   cur.ID(),
			PersonName: cur.Person.Name,
			Seconds:    ev.TimeRemaining,
		}
		switch ev.Type {
		case timer.EventWarning:
			e.Type = EventWarning
			e.Severity = SeverityWarning
			e.Message = fmt.Sprintf("%s has %s left", cur.Person.Name, timer.FormatClock(ev.TimeRemaining))
		case timer.EventExpired:
			e.Type = EventExpired
			e.Severity = SeverityDanger
			e.Message = fmt.Sprintf("Time is up for %s", cur.Person.Name)
		}
		c.publish(e)
	}

	if err := c.persist(ctx); err != nil {
		c.logger.Error().Err(err).Msg("saving timer state on tick")
	}
	c.saveActive(ctx)
}

// FinishCurrentTurn ends the current turn, runs the rules against its
// overtime, records usage and moves to the next person.
func (c *Controller) FinishCurrentTurn(ctx context.Context) (*TurnResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.hasTurn() {
		return nil, ErrNoActiveTurn
	}
	entry, _ := c.queue.Current()

	c.timer.Stop()
	overtime := c.timer.Overtime()
	used := rule.FloorToMinute(float64(max(0, c.timer.Elapsed())))

	result := &TurnResult{
		PersonID:        entry.ID(),
		PersonName:      entry.Person.Name,
		Overtime:        overtime,
		UsedSeconds:     used,
		NextTurnSeconds: entry.Person.DefaultTurnSeconds,
	}

	person, err := c.roster.GetPerson(ctx, entry.ID())
	switch {
	case err == nil:
		if err := c.applyRules(ctx, person, overtime, used, result); err != nil {
			return nil, err
		}
	case errors.Is(err, roster.ErrPersonNotFound):
		c.logger.Warn().Str("person_id", entry.ID()).Msg("person left the roster, skipping rules and usage")
	default:
		return nil, err
	}

	if overtime > noticeThreshold || overtime < -noticeThreshold {
		c.publish(overtimeNotice(entry, overtime))
	}
	c.publish(Event{
		Type:       EventTurnFinished,
		PersonID:   entry.ID(),
		PersonName: entry.Person.Name,
		Seconds:    overtime,
	})

	details, _ := json.Marshal(result)
	personID := entry.ID()
	c.logActivity(ctx, activity.TypeTurnFinished, &personID,
		fmt.Sprintf("%s finished a turn (overtime %s)", entry.Person.Name, timer.FormatClock(overtime)), details)

	queue.Advance(c.queue)

	if c.queue.IsComplete() {
		if err := c.completeRotation(ctx, result); err != nil {
			return nil, err
		}
		return result, nil
	}

	if err := c.loadCurrent(); err != nil {
		return nil, err
	}
	next, _ := c.queue.Current()
	nextCopy := *next
	result.Next = &nextCopy
	c.publishTurnStarted()

	if err := c.persist(ctx); err != nil {
		return nil, err
	}
	c.saveActive(ctx)
	return result, nil
}

func (c *Controller) applyRules(ctx context.Context, person *roster.Person, overtime, used int, result *TurnResult) error {
	rules, err := c.rules.List(ctx)
	if err != nil {
		c.logger.Error().Err(err).Msg("loading rules, finishing turn without them")
		rules = nil
	}

	res := c.engine.ComputeNextDuration(person, overtime, rules, c.queue.Remaining())
	person.TotalUsageSeconds += used

	if err := c.roster.Save(ctx, person); err != nil {
		return fmt.Errorf("saving %s: %w", person.Name, err)
	}

	for i := range c.queue.Remaining() {
		e := &c.queue.Entries[c.queue.CurrentIndex+1+i]
		if delta, ok := res.Adjustments[e.ID()]; ok {
			e.AllottedSeconds = max(rule.MinTurnSeconds, rule.AddSeconds(e.AllottedSeconds, rule.FloorToMinute(float64(delta))))
		}
	}

	result.NextTurnSeconds = res.NextTurnSeconds
	result.AppliedRules = res.Applied
	if len(res.Adjustments) > 0 {
		result.Adjustments = res.Adjustments
	}
	for _, rerr := range res.Errors {
		result.RuleErrors = append(result.RuleErrors, rerr.Error())
		personID := person.ID
		c.logActivity(ctx, activity.TypeRuleFailed, &personID, rerr.Error(), nil)
	}
	return nil
}

func (c *Controller) completeRotation(ctx context.Context, result *TurnResult) error {
	result.RotationComplete = true
	c.timer = nil

	if err := c.sessions.ClearActive(ctx, c.deviceID); err != nil {
		c.logger.Error().Err(err).Msg("clearing active session")
	}
	others, err := c.sessions.OtherActive(ctx, c.deviceID)
	if err != nil {
		c.logger.Error().Err(err).Msg("listing other active devices")
	}
	result.OtherActiveDevices = len(others)

	if err := c.persist(ctx); err != nil {
		return err
	}

	c.logger.Info().Int("other_devices", len(others)).Msg("rotation completed")
	c.logActivity(ctx, activity.TypeRotationCompleted, nil, "Rotation completed", nil)
	c.publish(Event{
		Type:               EventRotationCompleted,
		Severity:           SeveritySuccess,
		Message:            "Everyone has had a turn",
		OtherActiveDevices: len(others),
	})
	return nil
}

// StopRotation drops the current rotation and its saved state.
func (c *Controller) StopRotation(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.queue, c.timer = nil, nil
	if err := c.sessions.ClearDeviceState(ctx, c.deviceID); err != nil {
		return err
	}
	if err := c.sessions.ClearActive(ctx, c.deviceID); err != nil {
		return err
	}
	c.logActivity(ctx, activity.TypeRotationStopped, nil, "Rotation stopped", nil)
	return nil
}

// Snapshot returns the current view model.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// ActiveDevices lists live rotations on other devices.
func (c *Controller) ActiveDevices(ctx context.Context) ([]session.ActiveSession, error) {
	return c.sessions.OtherActive(ctx, c.deviceID)
}

// DeviceID returns the identity this controller persists under.
func (c *Controller) DeviceID() string {
	return c.deviceID
}

func (c *Controller) snapshot() Snapshot {
	snap := Snapshot{
		DeviceID:     c.deviceID,
		DeviceName:   c.deviceName,
		ShowProgress: c.settings.ShowProgress,
		ShowPercent:  c.settings.ShowPercent,
	}
	if c.queue == nil {
		return snap
	}
	snap.Queue = c.queue.Clone().Entries
	snap.CurrentIndex = c.queue.CurrentIndex
	snap.RotationComplete = c.queue.IsComplete()
	if cur, ok := c.queue.Current(); ok {
		curCopy := *cur
		snap.Current = &curCopy
	}
	if c.timer != nil && c.timer.Loaded() {
		ts := c.timer.Snapshot()
		snap.Timer = &ts
	}
	return snap
}

func (c *Controller) hasTurn() bool {
	return c.queue != nil && !c.queue.IsComplete() && c.timer != nil && c.timer.Loaded()
}

func (c *Controller) loadCurrent() error {
	cur, ok := c.queue.Current()
	if !ok {
		return ErrNoActiveTurn
	}
	c.timer.Configure(c.timerOptions())
	return c.timer.LoadEntry(cur.AllottedSeconds)
}

func (c *Controller) refreshSettings(ctx context.Context) error {
	settings, err := c.roster.Settings(ctx)
	if err != nil {
		return err
	}
	c.settings = settings
	return nil
}

func (c *Controller) timerOptions() timer.Options {
	return timer.Options{
		Mode:           timer.ModeFor(c.settings.CountDown),
		AllowPause:     c.settings.AllowPause,
		AllowReset:     c.settings.AllowReset,
		WarningSeconds: c.settings.WarningSeconds(),
	}
}

func (c *Controller) persist(ctx context.Context) error {
	if c.queue == nil {
		return nil
	}
	st := &session.DeviceState{Queue: *c.queue.Clone()}
	if c.timer != nil {
		st.Timer = c.timer.Values()
	}
	if err := c.sessions.SaveDeviceState(ctx, c.deviceID, st); err != nil {
		return fmt.Errorf("saving rotation: %w", err)
	}
	return nil
}

func (c *Controller) saveActive(ctx context.Context) {
	if !c.hasTurn() {
		return
	}
	err := c.sessions.RecordActive(ctx, session.ActiveSession{
		DeviceID:     c.deviceID,
		DeviceName:   c.deviceName,
		Queue:        c.queue.Clone().Entries,
		CurrentIndex: c.queue.CurrentIndex,
		Timer:        c.timer.Values(),
	})
	if err != nil {
		c.logger.Error().Err(err).Msg("recording active session")
	}
}

func (c *Controller) logActivity(ctx context.Context, typ activity.ActivityType, personID *string, summary string, details []byte) {
	if c.activity == nil {
		return
	}
	entry := &activity.ActivityEntry{
		DeviceID:     c.deviceID,
		PersonID:     personID,
		ActivityType: typ,
		Summary:      summary,
		Details:      string(details),
	}
	if err := c.activity.LogActivity(ctx, entry); err != nil {
		c.logger.Error().Err(err).Str("type", string(typ)).Msg("logging activity")
	}
}

func (c *Controller) publish(e Event) {
	e.DeviceID = c.deviceID
	e.At = c.clock.Now()
	c.events.Publish(e)
}

func (c *Controller) publishTurnStarted() {
	cur, ok := c.queue.Current()
	if !ok {
		return
	}
	c.publish(Event{
		Type:       EventTurnStarted,
		PersonID:   cur.ID(),
		PersonName: cur.Person.Name,
		Seconds:    cur.AllottedSeconds,
		Severity:   SeverityInfo,
		Message:    fmt.Sprintf("%s's turn: %s", cur.Person.Name, timer.FormatClock(cur.AllottedSeconds)),
	})
}

func overtimeNotice(entry *queue.Entry, overtime int) Event {
	abs := overtime
	if abs < 0 {
		abs = -abs
	}
	minutes, seconds := abs/60, abs%60

	e := Event{
		Type:       EventOvertimeNotice,
		PersonID:   entry.ID(),
		PersonName: entry.Person.Name,
		Seconds:    overtime,
	}
	if overtime > 0 {
		e.Severity = SeverityDanger
		e.Message = fmt.Sprintf("%s went over by %d minutes and %d seconds", entry.Person.Name, minutes, seconds)
	} else {
		e.Severity = SeveritySuccess
		e.Message = fmt.Sprintf("%s finished %d minutes and %d seconds early", entry.Person.Name, minutes, seconds)
	}
	return e
}
