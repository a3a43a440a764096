// Package backup exports and restores the roster, settings and rules as a
// single JSON document.
package backup

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rpggio/turnkeeper/internal/domain/activity"
	"github.com/rpggio/turnkeeper/internal/domain/roster"
	"github.com/rpggio/turnkeeper/internal/domain/rule"
	"github.com/rs/zerolog"
	"github.com/tidwall/jsonc"
)

// Service handles export and import.
type Service struct {
	roster   RosterReader
	rules    RuleLister
	repo     Repository
	activity ActivityLogger
	clock    clockwork.Clock
	deviceID string
	logger   zerolog.Logger
}

// NewService creates a new backup service. deviceID tags the history entry
// written on import.
func NewService(
	rosterReader RosterReader,
	rules RuleLister,
	repo Repository,
	activityLogger ActivityLogger,
	clock clockwork.Clock,
	deviceID string,
	logger zerolog.Logger,
) *Service {
	return &Service{
		roster:   rosterReader,
		rules:    rules,
		repo:     repo,
		activity: activityLogger,
		clock:    clock,
		deviceID: deviceID,
		logger:   logger,
	}
}

// Export collects the current configuration.
func (s *Service) Export(ctx context.Context) (*Document, error) {
	settings, err := s.roster.Settings(ctx)
	if err != nil {
		return nil, err
	}
	people, err := s.roster.ListPeople(ctx)
	if err != nil {
		return nil, err
	}
	devices, err := s.roster.ListDevices(ctx)
	if err != nil {
		return nil, err
	}
	rules, err := s.rules.List(ctx)
	if err != nil {
		return nil, err
	}

	return &Document{
		Settings:   settings,
		People:     people,
		Devices:    devices,
		Rules:      rules,
		ExportDate: s.clock.Now().UTC(),
	}, nil
}

// Parse decodes an export document. Comments and trailing commas are
// accepted so hand-edited backups load.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(jsonc.ToJSON(data), &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return &doc, nil
}

// Import replaces the configuration with the contents of data.
func (s *Service) Import(ctx context.Context, data []byte) (*ImportSummary, error) {
	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if err := normalize(doc); err != nil {
		return nil, err
	}

	if err := s.repo.Replace(ctx, *doc); err != nil {
		return nil, fmt.Errorf("restoring backup: %w", err)
	}

	summary := &ImportSummary{People: len(doc.People), Devices: len(doc.Devices), Rules: len(doc.Rules)}
	s.logger.Info().
		Int("people", summary.People).
		Int("devices", summary.Devices).
		Int("rules", summary.Rules).
		Msg("backup imported")

	details, _ := json.Marshal(summary)
	if err := s.activity.LogActivity(ctx, &activity.ActivityEntry{
		DeviceID:     s.deviceID,
		ActivityType: activity.TypeDataImported,
		Summary:      fmt.Sprintf("Imported %d people, %d devices and %d rules", summary.People, summary.Devices, summary.Rules),
		Details:      string(details),
	}); err != nil {
		s.logger.Warn().Err(err).Msg("failed to log import")
	}
	return summary, nil
}

// normalize validates doc in place, filling missing ids.
func normalize(doc *Document) error {
	if err := roster.ValidateSettings(doc.Settings); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	seen := map[string]bool{}
	for i := range doc.People {
		p := &doc.People[i]
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		if seen[p.ID] {
			return fmt.Errorf("%w: duplicate person id %q", ErrInvalidDocument, p.ID)
		}
		seen[p.ID] = true
		if err := roster.ValidatePerson(*p); err != nil {
			return fmt.Errorf("%w: person %q: %v", ErrInvalidDocument, p.Name, err)
		}
	}

	seen = map[string]bool{}
	for i := range doc.Devices {
		d := &doc.Devices[i]
		if d.ID == "" {
			d.ID = uuid.NewString()
		}
		if seen[d.ID] {
			return fmt.Errorf("%w: duplicate device id %q", ErrInvalidDocument, d.ID)
		}
		seen[d.ID] = true
		if err := roster.ValidateDevice(*d); err != nil {
			return fmt.Errorf("%w: device %q: %v", ErrInvalidDocument, d.Name, err)
		}
	}

	seen = map[string]bool{}
	for i := range doc.Rules {
		r := &doc.Rules[i]
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		if seen[r.ID] {
			return fmt.Errorf("%w: duplicate rule id %q", ErrInvalidDocument, r.ID)
		}
		seen[r.ID] = true
		r.Position = i
		if err := rule.Validate(*r); err != nil {
			return fmt.Errorf("%w: rule %q: %v", ErrInvalidDocument, r.Name, err)
		}
	}
	return nil
}
