package models

import (
	"time"
)

// This file contains pure domain models for authentication: entities
// that should not depend on transport or HTTP-specific concerns.

// PrincipalKind tags the two principal variants sharing the login protocol.
type PrincipalKind string

const (
	KindUser  PrincipalKind = "User"
	KindGuest PrincipalKind = "Guest"
)

// Language is the display language stored in the session snapshot.
type Language string

const (
	LanguageEN Language = "en"
	LanguageNL Language = "nl"
)

// User represents a registered user row in the credential store.
// This is a pure domain entity - use SessionSnapshot for JSON responses.
type User struct {
	ID               int64
	Email            string
	FirstName        string
	LastName         string
	PasswordHash     string
	ImageName        string
	TwoFactorEnabled bool
	LastLoginAt      *time.Time
}

// FullName returns the user's display name for notification templates.
func (u *User) FullName() string {
	if u.FirstName == "" && u.LastName == "" {
		return "user"
	}
	return u.FirstName + " " + u.LastName
}

// Guest represents a guest account row. The code doubles as identifier and
// password: it is an opaque bearer secret looked up by equality.
type Guest struct {
	ID          int64
	Code        string
	FirstName   string
	LastName    string
	ImageName   string
	CreatedByID int64
	LastLoginAt *time.Time
}

// FullName returns the guest's display name for notification templates.
func (g *Guest) FullName() string {
	return g.FirstName + " " + g.LastName
}

// GuestProfile is a Guest joined with the administrator who created it.
// The admin address is used only to route the login notification: guests have
// no monitorable inbox, so oversight is delegated to the issuing admin.
type GuestProfile struct {
	Guest
	AdminEmail string
	AdminName  string
}

// SessionSnapshot is the public view of a principal bound to a session.
// It never carries the raw secret. Email is nil for guests.
type SessionSnapshot struct {
	ID         int64         `json:"id"`
	FirstName  string        `json:"firstName"`
	LastName   string        `json:"lastName"`
	Email      *string       `json:"email"`
	Type       PrincipalKind `json:"type"`
	ImageName  string        `json:"imageName"`
	Language   Language      `json:"language"`
	LoggedInAt time.Time     `json:"loggedInAt"`
}

// IsGuest reports whether the snapshot belongs to a guest principal.
func (s *SessionSnapshot) IsGuest() bool {
	return s.Type == KindGuest
}

// TokenRecord is the durable rotating bearer credential, one live row per
// (ObjectID, ObjectType) identity.
type TokenRecord struct {
	ObjectID   int64
	ObjectType PrincipalKind
	Token      string
	AppName    string
	ExpiresAt  time.Time
	LastUsedAt *time.Time
}

// IsExpired reports whether the token is past its expiry at the given time.
func (t *TokenRecord) IsExpired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}

// TokenIdentity is the introspection result for a persistent token.
type TokenIdentity struct {
	ObjectID   int64         `json:"object_id"`
	ObjectType PrincipalKind `json:"object_type"`
}

// ReasonTwoFactor is the verification reason for login second factors.
const ReasonTwoFactor = "2fa"

// VerificationPin is a short-lived numeric code mailed to a user.
type VerificationPin struct {
	Email     string
	Pin       string
	Reason    string
	CreatedAt time.Time
}

// IsExpired reports whether the pin is older than the allowed window.
func (p *VerificationPin) IsExpired(now time.Time, maxAge time.Duration) bool {
	return now.Sub(p.CreatedAt) > maxAge
}

// TTLPolicy is the configuration table for session and token lifetimes,
// keyed by principal type. Guest lifetimes are materially shorter than user
// lifetimes; that asymmetry is the policy, not an accident.
type TTLPolicy struct {
	UserSession  time.Duration
	GuestSession time.Duration
	UserToken    time.Duration
	GuestToken   time.Duration
	PinMaxAge    time.Duration
}

// DefaultTTLPolicy returns the stock lifetime table.
func DefaultTTLPolicy() TTLPolicy {
	return TTLPolicy{
		UserSession:  7 * 24 * time.Hour,
		GuestSession: 4 * time.Hour,
		UserToken:    30 * 24 * time.Hour,
		GuestToken:   24 * time.Hour,
		PinMaxAge:    10 * time.Minute,
	}
}

// SessionTTL returns the session lifetime for the given principal type.
func (p TTLPolicy) SessionTTL(kind PrincipalKind) time.Duration {
	if kind == KindGuest {
		return p.GuestSession
	}
	return p.UserSession
}

// TokenTTL returns the persistent token lifetime for the given principal type.
func (p TTLPolicy) TokenTTL(kind PrincipalKind) time.Duration {
	if kind == KindGuest {
		return p.GuestToken
	}
	return p.UserToken
}
