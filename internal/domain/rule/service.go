package rule

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rpggio/turnkeeper/internal/repository"
	"github.com/rs/zerolog"
)

// CreateRequest describes a custom rule.
type CreateRequest struct {
	Name        string
	Description string
	Condition   string
	Action      string
	Enabled     bool
}

// Service manages the stored rule set.
type Service struct {
	repo   Repository
	logger zerolog.Logger
}

// NewService creates a new rule service.
func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// List returns the rules in evaluation order, seeding the built-in
// templates when nothing is stored.
func (s *Service) List(ctx context.Context) ([]Rule, error) {
	rules, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing rules: %w", err)
	}
	if len(rules) > 0 {
		return rules, nil
	}

	defaults := DefaultRules()
	if err := s.repo.ReplaceAll(ctx, defaults); err != nil {
		return nil, fmt.Errorf("seeding default rules: %w", err)
	}
	s.logger.Info().Int("count", len(defaults)).Msg("loaded default rules")
	return defaults, nil
}

// Add validates and appends a custom rule.
func (s *Service) Add(ctx context.Context, req CreateRequest) (*Rule, error) {
	r := &Rule{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Condition:   strings.TrimSpace(req.Condition),
		Action:      strings.TrimSpace(req.Action),
		Enabled:     req.Enabled,
	}
	if err := Validate(*r); err != nil {
		return nil, err
	}

	// Seed first so a custom rule never hides the templates.
	if _, err := s.List(ctx); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, r); err != nil {
		return nil, fmt.Errorf("creating rule: %w", err)
	}
	return r, nil
}

// Toggle flips a rule's enabled flag.
func (s *Service) Toggle(ctx context.Context, id string) (*Rule, error) {
	r, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	r.Enabled = !r.Enabled
	if err := s.repo.SetEnabled(ctx, id, r.Enabled); err != nil {
		return nil, fmt.Errorf("updating rule: %w", err)
	}
	return r, nil
}

// Delete removes a custom rule.
func (s *Service) Delete(ctx context.Context, id string) error {
	r, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if r.BuiltIn {
		return ErrBuiltInRule
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting rule: %w", err)
	}
	return nil
}

func (s *Service) get(ctx context.Context, id string) (*Rule, error) {
	if id == "" {
		return nil, ErrInvalidInput
	}
	r, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRuleNotFound
		}
		return nil, fmt.Errorf("loading rule: %w", err)
	}
	return r, nil
}
