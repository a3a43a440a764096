package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rpggio/turnkeeper/internal/repository"
	"github.com/rs/zerolog"
)

const deviceIDKey = "device_id"

// Service handles per-device state and the shared active-session map.
type Service struct {
	repo   Repository
	clock  clockwork.Clock
	ttl    time.Duration
	logger zerolog.Logger
}

// NewService creates a new session service.
func NewService(repo Repository, clock clockwork.Clock, logger zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		clock:  clock,
		ttl:    DefaultTTL,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnsureDeviceID returns the configured device id, or the stored one, or
// generates and stores a new one.
func (s *Service) EnsureDeviceID(ctx context.Context, configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}

	id, err := s.repo.GetMeta(ctx, deviceIDKey)
	if err == nil && id != "" {
		return id, nil
	}
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return "", fmt.Errorf("loading device id: %w", err)
	}

	id = "device_" + uuid.NewString()
	if err := s.repo.SetMeta(ctx, deviceIDKey, id); err != nil {
		return "", fmt.Errorf("storing device id: %w", err)
	}
	s.logger.Info().Str("device_id", id).Msg("generated device id")
	return id, nil
}

// SaveDeviceState stores the timer and queue of a device.
func (s *Service) SaveDeviceState(ctx context.Context, deviceID string, st *DeviceState) error {
	if deviceID == "" || st == nil {
		return ErrInvalidInput
	}
	st.UpdatedAt = s.clock.Now()
	if err := s.repo.SaveDeviceState(ctx, deviceID, st); err != nil {
		return fmt.Errorf("saving device state: %w", err)
	}
	return nil
}

// LoadDeviceState returns the stored state, or nil when there is none.
// Corrupt state is discarded.
func (s *Service) LoadDeviceState(ctx context.Context, deviceID string) (*DeviceState, error) {
	if deviceID == "" {
		return nil, ErrInvalidInput
	}
	st, err := s.repo.GetDeviceState(ctx, deviceID)
	switch {
	case err == nil:
		return st, nil
	case errors.Is(err, repository.ErrNotFound):
		return nil, nil
	case errors.Is(err, repository.ErrCorrupt):
		s.logger.Warn().Err(err).Str("device_id", deviceID).Msg("discarding corrupt device state")
		if err := s.repo.DeleteDeviceState(ctx, deviceID); err != nil {
			return nil, fmt.Errorf("discarding device state: %w", err)
		}
		return nil, nil
	default:
		return nil, fmt.Errorf("loading device state: %w", err)
	}
}

// ClearDeviceState removes the stored state of a device.
func (s *Service) ClearDeviceState(ctx context.Context, deviceID string) error {
	if deviceID == "" {
		return ErrInvalidInput
	}
	if err := s.repo.DeleteDeviceState(ctx, deviceID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("clearing device state: %w", err)
	}
	return nil
}

// RecordActive publishes this device's rotation to the active-session map.
func (s *Service) RecordActive(ctx context.Context, a ActiveSession) error {
	if a.DeviceID == "" {
		return ErrInvalidInput
	}
	a.LastUpdate = s.clock.Now()
	if err := s.repo.UpsertActive(ctx, &a); err != nil {
		return fmt.Errorf("recording active session: %w", err)
	}
	return nil
}

// ClearActive removes a device from the active-session map.
func (s *Service) ClearActive(ctx context.Context, deviceID string) error {
	if deviceID == "" {
		return ErrInvalidInput
	}
	if err := s.repo.DeleteActive(ctx, deviceID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("clearing active session: %w", err)
	}
	return nil
}

// ListActive returns the active sessions updated within the TTL, deleting
// the expired ones.
func (s *Service) ListActive(ctx context.Context) ([]ActiveSession, error) {
	all, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing active sessions: %w", err)
	}

	now := s.clock.Now()
	live := make([]ActiveSession, 0, len(all))
	for _, a := range all {
		if now.Sub(a.LastUpdate) > s.ttl {
			if err := s.repo.DeleteActive(ctx, a.DeviceID); err != nil && !errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("purging active session: %w", err)
			}
			s.logger.Debug().Str("device_id", a.DeviceID).Msg("purged expired active session")
			continue
		}
		live = append(live, a)
	}
	return live, nil
}

// OtherActive returns the live sessions of every device except deviceID.
func (s *Service) OtherActive(ctx context.Context, deviceID string) ([]ActiveSession, error) {
	live, err := s.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	others := live[:0]
	for _, a := range live {
		if a.DeviceID != deviceID {
			others = append(others, a)
		}
	}
	return others, nil
}
