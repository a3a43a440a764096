// Package scheduler drives periodic ticks from an injectable clock.
package scheduler

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// DefaultInterval is one timer second.
const DefaultInterval = time.Second

// TickHandler receives one call per interval.
type TickHandler interface {
	Tick(ctx context.Context)
}

// TickFunc adapts a function to TickHandler.
type TickFunc func(ctx context.Context)

func (f TickFunc) Tick(ctx context.Context) { f(ctx) }

// Scheduler calls a handler on every tick of its clock until stopped.
type Scheduler struct {
	clock    clockwork.Clock
	interval time.Duration
	handler  TickHandler
	logger   zerolog.Logger
}

// New creates a scheduler. In production pass clockwork.NewRealClock(); in
// tests a fake clock.
func New(clock clockwork.Clock, interval time.Duration, handler TickHandler, logger zerolog.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		clock:    clock,
		interval: interval,
		handler:  handler,
		logger:   logger,
	}
}

// Run blocks until ctx is canceled.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info().Dur("interval", s.interval).Msg("scheduler started")
	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("scheduler stopped")
			return nil
		case <-ticker.Chan():
			s.handler.Tick(ctx)
		}
	}
}
