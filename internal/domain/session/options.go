package session

import "time"

// Option configures a Service.
type Option func(*Service)

// WithTTL overrides how long active sessions stay visible.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}
