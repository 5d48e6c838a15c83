// Package cleanup removes expired auth artifacts on a schedule: persistent
// tokens past their expiry and two-factor pins past the verification window.
package cleanup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ssogate/internal/auth/metrics"
)

// TokenStore exposes cleanup for expired persistent tokens.
type TokenStore interface {
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

// VerificationStore exposes cleanup for stale two-factor pins.
type VerificationStore interface {
	DeleteStale(ctx context.Context, cutoff time.Time) (int, error)
}

// Result summarizes the deletions performed by a cleanup run.
type Result struct {
	DeletedTokens int
	DeletedPins   int
}

// Service periodically removes expired auth artifacts.
type Service struct {
	tokens    TokenStore
	pins      VerificationStore
	pinMaxAge time.Duration
	interval  time.Duration
	logger    *slog.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

// Option configures Service.
type Option func(*Service)

// WithInterval overrides the cleanup interval when greater than zero.
func WithInterval(interval time.Duration) Option {
	return func(s *Service) {
		if interval > 0 {
			s.interval = interval
		}
	}
}

// WithLogger overrides the logger used for cleanup errors.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics enables deletion counters.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithClock injects the time source. Tests use this to pin "now".
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a cleanup Service. pinMaxAge bounds how long a two-factor
// pin stays verifiable; rows older than that are garbage.
func New(tokens TokenStore, pins VerificationStore, pinMaxAge time.Duration, opts ...Option) (*Service, error) {
	if tokens == nil || pins == nil {
		return nil, fmt.Errorf("token and verification stores are required")
	}
	if pinMaxAge <= 0 {
		return nil, fmt.Errorf("pin max age must be positive")
	}
	svc := &Service{
		tokens:    tokens,
		pins:      pins,
		pinMaxAge: pinMaxAge,
		interval:  5 * time.Minute,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc, nil
}

// Start runs cleanup periodically until ctx is cancelled.
func (s *Service) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil {
				s.logger.ErrorContext(ctx, "auth cleanup failed", "error", err)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// RunOnce performs a single cleanup pass. Failures on one table don't stop
// the other; errors are aggregated and returned together.
func (s *Service) RunOnce(ctx context.Context) (Result, error) {
	now := s.now()
	var res Result
	var errs []error

	deletedTokens, err := s.tokens.DeleteExpired(ctx, now)
	if err != nil {
		errs = append(errs, fmt.Errorf("delete expired tokens: %w", err))
	} else {
		res.DeletedTokens = deletedTokens
		if s.metrics != nil {
			s.metrics.IncrementCleanupDeletedRows("user_tokens", deletedTokens)
		}
	}

	deletedPins, err := s.pins.DeleteStale(ctx, now.Add(-s.pinMaxAge))
	if err != nil {
		errs = append(errs, fmt.Errorf("delete stale pins: %w", err))
	} else {
		res.DeletedPins = deletedPins
		if s.metrics != nil {
			s.metrics.IncrementCleanupDeletedRows("user_verifications", deletedPins)
		}
	}

	if len(errs) > 0 {
		return res, errors.Join(errs...)
	}

	if res.DeletedTokens > 0 || res.DeletedPins > 0 {
		s.logger.InfoContext(ctx, "auth cleanup completed",
			"deleted_tokens", res.DeletedTokens,
			"deleted_pins", res.DeletedPins,
		)
	}
	return res, nil
}
