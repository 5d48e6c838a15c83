package service

import (
	"context"
	"log/slog"
	"time"

	"ssogate/internal/apps"
	"ssogate/internal/auth/metrics"
	"ssogate/internal/auth/models"
	"ssogate/internal/auth/notify"
)

// UserStore defines the persistence interface for registered users.
// Error Contract: all Find methods return sentinel.ErrNotFound when the
// entity doesn't exist.
type UserStore interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	TouchLastLogin(ctx context.Context, id int64, at time.Time) error
}

// GuestStore defines the persistence interface for guest accounts.
// Error Contract: all Find methods return sentinel.ErrNotFound when the
// entity doesn't exist.
type GuestStore interface {
	FindByID(ctx context.Context, id int64) (*models.Guest, error)
	FindByCode(ctx context.Context, code string) (*models.Guest, error)
	ProfileByID(ctx context.Context, id int64) (*models.GuestProfile, error)
	TouchLastLogin(ctx context.Context, id int64, at time.Time) error
}

// TokenStore defines the persistence interface for persistent rotating
// tokens. Replace must leave at most one live row per (ObjectID, ObjectType).
type TokenStore interface {
	Replace(ctx context.Context, rec *models.TokenRecord) error
	FindValid(ctx context.Context, token string, now time.Time) (*models.TokenRecord, error)
	TouchLastUsage(ctx context.Context, token string, now time.Time) error
}

// VerificationStore defines the persistence interface for two-factor pins.
type VerificationStore interface {
	Create(ctx context.Context, pin *models.VerificationPin) error
	Find(ctx context.Context, email, pin, reason string) (*models.VerificationPin, error)
	Delete(ctx context.Context, email, pin, reason string) error
}

// SessionSink is the request-scoped session transport. Replace swaps any
// session bound to the current request context for a fresh one with the
// given time-to-live.
type SessionSink interface {
	Replace(ctx context.Context, snap *models.SessionSnapshot, ttl time.Duration) error
}

// RequestMeta carries per-request context the login protocol needs but the
// credentials themselves don't: which app the login is for, the device the
// request came from, and the display language.
type RequestMeta struct {
	App      apps.Preset
	Device   string
	Language models.Language
}

// Service implements the login protocol shared by both principal types:
// credential check, login notification, session materialization, persistent
// token issuance.
type Service struct {
	users    UserStore
	guests   GuestStore
	tokens   TokenStore
	pins     VerificationStore
	notifier notify.Notifier
	ttl      models.TTLPolicy
	logger   *slog.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithNotifier(n notify.Notifier) Option {
	return func(s *Service) {
		s.notifier = n
	}
}

// WithTTLPolicy overrides the lifetime table. Zero fields fall back to
// the defaults.
func WithTTLPolicy(p models.TTLPolicy) Option {
	return func(s *Service) {
		d := models.DefaultTTLPolicy()
		if p.UserSession <= 0 {
			p.UserSession = d.UserSession
		}
		if p.GuestSession <= 0 {
			p.GuestSession = d.GuestSession
		}
		if p.UserToken <= 0 {
			p.UserToken = d.UserToken
		}
		if p.GuestToken <= 0 {
			p.GuestToken = d.GuestToken
		}
		if p.PinMaxAge <= 0 {
			p.PinMaxAge = d.PinMaxAge
		}
		s.ttl = p
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

func NewService(users UserStore, guests GuestStore, tokens TokenStore, pins VerificationStore, opts ...Option) *Service {
	svc := &Service{
		users:  users,
		guests: guests,
		tokens: tokens,
		pins:   pins,
		ttl:    models.DefaultTTLPolicy(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	return svc
}

// TTL exposes the lifetime table the service applies, keyed by principal
// type. The request gate uses it to size cookies consistently.
func (s *Service) TTL() models.TTLPolicy {
	return s.ttl
}
