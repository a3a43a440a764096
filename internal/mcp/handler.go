package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rpggio/turnkeeper/internal/domain/activity"
	"github.com/rpggio/turnkeeper/internal/domain/backup"
	"github.com/rpggio/turnkeeper/internal/domain/roster"
	"github.com/rpggio/turnkeeper/internal/domain/rule"
	"github.com/rpggio/turnkeeper/internal/domain/session"
	"github.com/rpggio/turnkeeper/internal/domain/turn"
	"github.com/rs/zerolog"
)

// RosterService defines roster operations needed by MCP.
type RosterService interface {
	Settings(ctx context.Context) (roster.Settings, error)
	UpdateSettings(ctx context.Context, req roster.UpdateSettingsRequest) (*roster.Settings, error)
	AddPerson(ctx context.Context, req roster.AddPersonRequest) (*roster.Person, error)
	UpdatePerson(ctx context.Context, req roster.UpdatePersonRequest) (*roster.Person, error)
	DeletePerson(ctx context.Context, id string) error
	ListPeople(ctx context.Context) ([]roster.Person, error)
	AddDevice(ctx context.Context, name string) (*roster.Device, error)
	RemoveDevice(ctx context.Context, id string) error
	ListDevices(ctx context.Context) ([]roster.Device, error)
	UsageStats(ctx context.Context) (*roster.UsageStats, error)
	ResetUsage(ctx context.Context) error
}

// RuleService defines rule operations needed by MCP.
type RuleService interface {
	List(ctx context.Context) ([]rule.Rule, error)
	Add(ctx context.Context, req rule.CreateRequest) (*rule.Rule, error)
	Toggle(ctx context.Context, id string) (*rule.Rule, error)
	Delete(ctx context.Context, id string) error
}

// TurnService defines rotation commands needed by MCP.
type TurnService interface {
	StartQueue(ctx context.Context) (*turn.Snapshot, error)
	Start(ctx context.Context) (*turn.Snapshot, error)
	Pause(ctx context.Context) (*turn.Snapshot, error)
	Resume(ctx context.Context) (*turn.Snapshot, error)
	Reset(ctx context.Context) (*turn.Snapshot, error)
	Reshuffle(ctx context.Context) (*turn.Snapshot, error)
	FinishCurrentTurn(ctx context.Context) (*turn.TurnResult, error)
	StopRotation(ctx context.Context) error
	Snapshot() turn.Snapshot
	ActiveDevices(ctx context.Context) ([]session.ActiveSession, error)
	DeviceID() string
}

// EventSource yields controller events not yet delivered.
type EventSource interface {
	Drain() []turn.Event
}

// ActivityService defines activity operations needed by MCP.
type ActivityService interface {
	LogActivity(ctx context.Context, entry *activity.ActivityEntry) error
	GetRecentActivity(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}

// BackupService defines export and import.
type BackupService interface {
	Export(ctx context.Context) (*backup.Document, error)
	Import(ctx context.Context, data []byte) (*backup.ImportSummary, error)
}

// Services contains all domain services needed by MCP.
type Services struct {
	Roster   RosterService
	Rules    RuleService
	Turn     TurnService
	Events   EventSource
	Activity ActivityService
	Backup   BackupService
	Logger   zerolog.Logger
}

// Handler dispatches MCP commands.
type Handler struct {
	roster   RosterService
	rules    RuleService
	turn     TurnService
	events   EventSource
	activity ActivityService
	backup   BackupService
	logger   zerolog.Logger
}

// NewHandler creates a new MCP handler.
func NewHandler(svc Services) *Handler {
	return &Handler{
		roster:   svc.Roster,
		rules:    svc.Rules,
		turn:     svc.Turn,
		events:   svc.Events,
		activity: svc.Activity,
		backup:   svc.Backup,
		logger:   svc.Logger,
	}
}

// Handle dispatches MCP requests to domain services.
func (h *Handler) Handle(ctx context.Context, method string, params json.RawMessage) (any, error) {
	result, err := h.dispatch(ctx, method, params)
	if err != nil {
		return nil, mapError(err)
	}
	return result, nil
}

func (h *Handler) dispatch(ctx context.Context, method string, params json.RawMessage) (any, error) {
	switch method {
	// Roster
	case "add_person":
		var req AddPersonParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.roster.AddPerson(ctx, roster.AddPersonRequest{
			Name:        req.Name,
			TurnMinutes: req.TurnMinutes,
			HasPriority: req.HasPriority,
		})
	case "update_person":
		var req UpdatePersonParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.roster.UpdatePerson(ctx, roster.UpdatePersonRequest{
			ID:          req.ID,
			Name:        req.Name,
			TurnMinutes: req.TurnMinutes,
			HasPriority: req.HasPriority,
		})
	case "delete_person":
		var req IDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if err := h.roster.DeletePerson(ctx, req.ID); err != nil {
			return nil, err
		}
		return DeletedResponse{ID: req.ID, Deleted: true}, nil
	case "list_people":
		return h.roster.ListPeople(ctx)
	case "add_device":
		var req AddDeviceParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.roster.AddDevice(ctx, req.Name)
	case "remove_device":
		var req IDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if err := h.roster.RemoveDevice(ctx, req.ID); err != nil {
			return nil, err
		}
		return DeletedResponse{ID: req.ID, Deleted: true}, nil
	case "list_devices":
		return h.roster.ListDevices(ctx)
	case "get_settings":
		return h.roster.Settings(ctx)
	case "update_settings":
		var req UpdateSettingsParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.roster.UpdateSettings(ctx, settingsRequest(req))
	case "usage_stats":
		return h.roster.UsageStats(ctx)
	case "reset_usage":
		if err := h.roster.ResetUsage(ctx); err != nil {
			return nil, err
		}
		h.logUsageReset(ctx)
		return UsageResetResponse{Reset: true}, nil
	case "export_data":
		return h.backup.Export(ctx)
	case "import_data":
		var req ImportDataParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if req.Data == "" {
			return nil, fmt.Errorf("%w: data is required", backup.ErrInvalidDocument)
		}
		return h.backup.Import(ctx, []byte(req.Data))

	// Rules
	case "list_rules":
		return h.rules.List(ctx)
	case "add_rule":
		var req AddRuleParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		enabled := true
		if req.Enabled != nil {
			enabled = *req.Enabled
		}
		return h.rules.Add(ctx, rule.CreateRequest{
			Name:        req.Name,
			Description: req.Description,
			Condition:   req.Condition,
			Action:      req.Action,
			Enabled:     enabled,
		})
	case "toggle_rule":
		var req IDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.rules.Toggle(ctx, req.ID)
	case "delete_rule":
		var req IDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if err := h.rules.Delete(ctx, req.ID); err != nil {
			return nil, err
		}
		return DeletedResponse{ID: req.ID, Deleted: true}, nil

	// Turn
	case "start_queue":
		return h.turn.StartQueue(ctx)
	case "start_timer":
		return h.turn.Start(ctx)
	case "pause_timer":
		return h.turn.Pause(ctx)
	case "resume_timer":
		return h.turn.Resume(ctx)
	case "reset_timer":
		return h.turn.Reset(ctx)
	case "reshuffle_queue":
		return h.turn.Reshuffle(ctx)
	case "finish_turn":
		return h.turn.FinishCurrentTurn(ctx)
	case "stop_rotation":
		if err := h.turn.StopRotation(ctx); err != nil {
			return nil, err
		}
		return StoppedResponse{Stopped: true}, nil
	case "get_status":
		return h.turn.Snapshot(), nil
	case "poll_events":
		events := h.events.Drain()
		if events == nil {
			events = []turn.Event{}
		}
		return PollEventsResponse{Events: events}, nil
	case "active_devices":
		sessions, err := h.turn.ActiveDevices(ctx)
		if err != nil {
			return nil, err
		}
		resp := make([]ActiveDeviceResponse, 0, len(sessions))
		for _, s := range sessions {
			resp = append(resp, ActiveDeviceResponse{
				DeviceID:      s.DeviceID,
				DeviceName:    s.DeviceName,
				CurrentPerson: s.CurrentPerson(),
				Position:      s.CurrentIndex + 1,
				QueueLength:   len(s.Queue),
				TimerState:    string(s.Timer.State),
				LastUpdate:    s.LastUpdate,
			})
		}
		return resp, nil

	// History
	case "recent_activity":
		var req RecentActivityParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		entries, err := h.activity.GetRecentActivity(ctx, activity.ListActivityOptions{
			DeviceID:     req.DeviceID,
			PersonID:     req.PersonID,
			ActivityType: req.Type,
			Limit:        req.Limit,
			Offset:       req.Offset,
		})
		if err != nil {
			return nil, err
		}
		resp := make([]ActivityEntryResponse, 0, len(entries))
		for _, entry := range entries {
			resp = append(resp, ActivityEntryResponse{
				Timestamp: entry.CreatedAt,
				Type:      entry.ActivityType,
				DeviceID:  entry.DeviceID,
				PersonID:  entry.PersonID,
				Summary:   entry.Summary,
				Details:   entry.Details,
			})
		}
		return resp, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, method)
	}
}

// ErrUnknownMethod is returned for tool names the handler doesn't serve.
var ErrUnknownMethod = errors.New("unknown method")

// errInvalidParams marks arguments that don't decode.
var errInvalidParams = errors.New("invalid params")

func decodeParams(params json.RawMessage, out any) error {
	if len(params) == 0 {
		return nil
	}
	if err := json.Unmarshal(params, out); err != nil {
		return fmt.Errorf("%w: %v", errInvalidParams, err)
	}
	return nil
}

func settingsRequest(p UpdateSettingsParams) roster.UpdateSettingsRequest {
	req := roster.UpdateSettingsRequest{
		PriorityMode:       p.PriorityMode,
		DefaultTurnMinutes: p.DefaultTurnMinutes,
		AllowPause:         p.AllowPause,
		AllowReset:         p.AllowReset,
		ShowProgress:       p.ShowProgress,
		ShowPercent:        p.ShowPercent,
		CountDown:          p.CountDown,
		WarningMinutes:     p.WarningMinutes,
	}
	if p.Theme != nil {
		theme := roster.Theme(*p.Theme)
		req.Theme = &theme
	}
	return req
}

func (h *Handler) logUsageReset(ctx context.Context) {
	if h.activity == nil {
		return
	}
	deviceID := ""
	if h.turn != nil {
		deviceID = h.turn.DeviceID()
	}
	err := h.activity.LogActivity(ctx, &activity.ActivityEntry{
		DeviceID:     deviceID,
		ActivityType: activity.TypeUsageReset,
		Summary:      "Usage statistics reset",
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("logging usage reset")
	}
}

func mapError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}
