package config

import (
	"os"
	"time"
)

// Server captures process level configuration for the SSO service.
type Server struct {
	Addr        string
	DatabaseURL string

	SessionCookieName string
	SessionSigningKey string

	// TTL policy keyed by principal type. Guests get materially shorter
	// lifetimes than registered users.
	UserSessionTTL  time.Duration
	GuestSessionTTL time.Duration
	UserTokenTTL    time.Duration
	GuestTokenTTL   time.Duration
	PinMaxAge       time.Duration

	NotifyEndpoint string
	NotifyTimeout  time.Duration

	CleanupInterval time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	cfg := Server{
		Addr:              envOr("SSO_ADDR", ":8080"),
		DatabaseURL:       os.Getenv("SSO_DATABASE_URL"),
		SessionCookieName: envOr("SSO_SESSION_COOKIE", "sso_session"),
		SessionSigningKey: envOr("SSO_SESSION_KEY", "dev-secret-key-change-in-production"),
		UserSessionTTL:    durationOr("SSO_USER_SESSION_TTL", 7*24*time.Hour),
		GuestSessionTTL:   durationOr("SSO_GUEST_SESSION_TTL", 4*time.Hour),
		UserTokenTTL:      durationOr("SSO_USER_TOKEN_TTL", 30*24*time.Hour),
		GuestTokenTTL:     durationOr("SSO_GUEST_TOKEN_TTL", 24*time.Hour),
		PinMaxAge:         durationOr("SSO_PIN_MAX_AGE", 10*time.Minute),
		NotifyEndpoint:    os.Getenv("SSO_NOTIFY_ENDPOINT"),
		NotifyTimeout:     durationOr("SSO_NOTIFY_TIMEOUT", 5*time.Second),
		CleanupInterval:   durationOr("SSO_CLEANUP_INTERVAL", time.Hour),
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
