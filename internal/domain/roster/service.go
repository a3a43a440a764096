package roster

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/rpggio/turnkeeper/internal/repository"
	"github.com/rs/zerolog"
)

// Service handles people, devices and settings.
type Service struct {
	repo   Repository
	logger zerolog.Logger
}

// NewService creates a new roster service.
func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Settings returns the stored settings, or defaults when none are stored.
// Corrupt settings are discarded and replaced with defaults.
func (s *Service) Settings(ctx context.Context) (Settings, error) {
	stored, err := s.repo.GetSettings(ctx)
	switch {
	case err == nil:
		if verr := ValidateSettings(*stored); verr != nil {
			s.logger.Warn().Err(verr).Msg("stored settings invalid, using defaults")
			return DefaultSettings(), nil
		}
		return *stored, nil
	case errors.Is(err, repository.ErrNotFound):
		return DefaultSettings(), nil
	case errors.Is(err, repository.ErrCorrupt):
		s.logger.Warn().Err(err).Msg("discarding corrupt settings")
		defaults := DefaultSettings()
		if err := s.repo.SaveSettings(ctx, defaults); err != nil {
			return Settings{}, fmt.Errorf("resetting settings: %w", err)
		}
		return defaults, nil
	default:
		return Settings{}, fmt.Errorf("loading settings: %w", err)
	}
}

// UpdateSettings applies a partial edit and stores the result.
func (s *Service) UpdateSettings(ctx context.Context, req UpdateSettingsRequest) (*Settings, error) {
	current, err := s.Settings(ctx)
	if err != nil {
		return nil, err
	}

	if req.PriorityMode != nil {
		current.PriorityMode = *req.PriorityMode
	}
	if req.DefaultTurnMinutes != nil {
		current.DefaultTurnMinutes = *req.DefaultTurnMinutes
	}
	if req.AllowPause != nil {
		current.AllowPause = *req.AllowPause
	}
	if req.AllowReset != nil {
		current.AllowReset = *req.AllowReset
	}
	if req.ShowProgress != nil {
		current.ShowProgress = *req.ShowProgress
	}
	if req.ShowPercent != nil {
		current.ShowPercent = *req.ShowPercent
	}
	if req.CountDown != nil {
		current.CountDown = *req.CountDown
	}
	if req.WarningMinutes != nil {
		current.WarningMinutes = *req.WarningMinutes
	}
	if req.Theme != nil {
		current.Theme = *req.Theme
	}

	if err := ValidateSettings(current); err != nil {
		return nil, err
	}
	if err := s.repo.SaveSettings(ctx, current); err != nil {
		return nil, fmt.Errorf("saving settings: %w", err)
	}
	return &current, nil
}

// AddPerson creates a person with the requested or default turn length.
func (s *Service) AddPerson(ctx context.Context, req AddPersonRequest) (*Person, error) {
	if req.TurnMinutes < 0 {
		return nil, fmt.Errorf("%w: turn minutes cannot be negative", ErrInvalidInput)
	}

	minutes := req.TurnMinutes
	if minutes == 0 {
		settings, err := s.Settings(ctx)
		if err != nil {
			return nil, err
		}
		minutes = settings.DefaultTurnMinutes
	}

	p := &Person{
		ID:                 uuid.NewString(),
		Name:               strings.TrimSpace(req.Name),
		DefaultTurnSeconds: minutes * 60,
		HasPriority:        req.HasPriority,
	}
	if err := ValidatePerson(*p); err != nil {
		return nil, err
	}

	if err := s.repo.CreatePerson(ctx, p); err != nil {
		return nil, fmt.Errorf("creating person: %w", err)
	}

	s.logger.Info().Str("person_id", p.ID).Str("name", p.Name).Msg("person added")
	return p, nil
}

// UpdatePerson applies a partial edit to a person.
func (s *Service) UpdatePerson(ctx context.Context, req UpdatePersonRequest) (*Person, error) {
	p, err := s.GetPerson(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.TurnMinutes != nil {
		p.DefaultTurnSeconds = *req.TurnMinutes * 60
	}
	if req.HasPriority != nil {
		p.HasPriority = *req.HasPriority
	}

	if err := s.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Save validates and stores a person as given.
func (s *Service) Save(ctx context.Context, p *Person) error {
	if p == nil {
		return ErrInvalidInput
	}
	if err := ValidatePerson(*p); err != nil {
		return err
	}
	if err := s.repo.UpdatePerson(ctx, p); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPersonNotFound
		}
		return fmt.Errorf("updating person: %w", err)
	}
	return nil
}

// DeletePerson removes a person from the roster.
func (s *Service) DeletePerson(ctx context.Context, id string) error {
	if id == "" {
		return ErrInvalidInput
	}
	if err := s.repo.DeletePerson(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPersonNotFound
		}
		return fmt.Errorf("deleting person: %w", err)
	}
	return nil
}

// GetPerson returns a person by ID.
func (s *Service) GetPerson(ctx context.Context, id string) (*Person, error) {
	if id == "" {
		return nil, ErrInvalidInput
	}
	p, err := s.repo.GetPerson(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPersonNotFound
		}
		return nil, fmt.Errorf("loading person: %w", err)
	}
	return p, nil
}

// ListPeople returns every person in insertion order.
func (s *Service) ListPeople(ctx context.Context) ([]Person, error) {
	people, err := s.repo.ListPeople(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing people: %w", err)
	}
	return people, nil
}

// AddDevice registers a named device.
func (s *Service) AddDevice(ctx context.Context, name string) (*Device, error) {
	d := &Device{ID: uuid.NewString(), Name: strings.TrimSpace(name)}
	if err := ValidateDevice(*d); err != nil {
		return nil, err
	}
	if err := s.repo.CreateDevice(ctx, d); err != nil {
		return nil, fmt.Errorf("creating device: %w", err)
	}
	return d, nil
}

// RemoveDevice unregisters a device.
func (s *Service) RemoveDevice(ctx context.Context, id string) error {
	if id == "" {
		return ErrInvalidInput
	}
	if err := s.repo.DeleteDevice(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrDeviceNotFound
		}
		return fmt.Errorf("deleting device: %w", err)
	}
	return nil
}

// ListDevices returns every registered device.
func (s *Service) ListDevices(ctx context.Context) ([]Device, error) {
	devices, err := s.repo.ListDevices(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing devices: %w", err)
	}
	return devices, nil
}

// DeviceName resolves the display name for this device: the selected
// registered device if it exists, otherwise a name derived from the id.
func (s *Service) DeviceName(ctx context.Context, selectedID, deviceID string) string {
	if selectedID != "" {
		devices, err := s.repo.ListDevices(ctx)
		if err != nil {
			s.logger.Warn().Err(err).Msg("listing devices for display name")
		}
		for _, d := range devices {
			if d.ID == selectedID {
				return d.Name
			}
		}
	}
	return FallbackDeviceName(deviceID)
}

// FallbackDeviceName derives "Device XXXX" from the last four characters of
// the device id.
func FallbackDeviceName(deviceID string) string {
	suffix := deviceID
	if len(suffix) > 4 {
		suffix = suffix[len(suffix)-4:]
	}
	return "Device " + suffix
}

// UsageStats reports total usage and each person's share of it.
func (s *Service) UsageStats(ctx context.Context) (*UsageStats, error) {
	people, err := s.ListPeople(ctx)
	if err != nil {
		return nil, err
	}

	stats := &UsageStats{People: make([]UsageShare, 0, len(people))}
	for _, p := range people {
		stats.TotalUsageSeconds += p.TotalUsageSeconds
	}
	for _, p := range people {
		share := UsageShare{
			PersonID:          p.ID,
			Name:              p.Name,
			TotalUsageSeconds: p.TotalUsageSeconds,
		}
		if stats.TotalUsageSeconds > 0 {
			pct := float64(p.TotalUsageSeconds) * 100 / float64(stats.TotalUsageSeconds)
			share.Percent = math.Round(pct*10) / 10
		}
		stats.People = append(stats.People, share)
	}
	return stats, nil
}

// ResetUsage zeroes every person's accumulated usage.
func (s *Service) ResetUsage(ctx context.Context) error {
	if err := s.repo.ResetUsage(ctx); err != nil {
		return fmt.Errorf("resetting usage: %w", err)
	}
	s.logger.Info().Msg("usage statistics reset")
	return nil
}
