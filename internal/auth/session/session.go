// Package session implements the cookie-bound session transport: a signed,
// TTL-limited snapshot of principal attributes replacing any prior session
// on the same request context.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"ssogate/internal/auth/models"
	"ssogate/internal/sentinel"
)

type sessionClaims struct {
	User models.SessionSnapshot `json:"user"`
	jwt.RegisteredClaims
}

// Codec signs and verifies session cookies.
type Codec struct {
	signingKey []byte
	cookieName string
}

// NewCodec constructs a codec with the given HMAC signing key and cookie name.
func NewCodec(signingKey, cookieName string) *Codec {
	if cookieName == "" {
		cookieName = "sso_session"
	}
	return &Codec{signingKey: []byte(signingKey), cookieName: cookieName}
}

// CookieName returns the configured session cookie name.
func (c *Codec) CookieName() string {
	return c.cookieName
}

// Encode signs a snapshot into a compact session token valid for ttl.
func (c *Codec) Encode(snap *models.SessionSnapshot, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		User: *snap,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return signed, nil
}

// Decode verifies a session token and returns the embedded snapshot.
// Expired or tampered tokens return sentinel.ErrExpired; the caller decides
// how that surfaces to the client.
func (c *Codec) Decode(token string) (*models.SessionSnapshot, error) {
	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return c.signingKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("session expired: %w", sentinel.ErrExpired)
		}
		return nil, fmt.Errorf("invalid session token: %w", sentinel.ErrExpired)
	}
	return &claims.User, nil
}

// FromRequest reads and verifies the session cookie on an inbound request.
// A missing cookie returns sentinel.ErrNotFound.
func (c *Codec) FromRequest(r *http.Request) (*models.SessionSnapshot, error) {
	cookie, err := r.Cookie(c.cookieName)
	if err != nil {
		return nil, fmt.Errorf("no session cookie: %w", sentinel.ErrNotFound)
	}
	return c.Decode(cookie.Value)
}

func (c *Codec) newCookie(value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     c.cookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}

// ExpiredCookie returns a cookie that removes the session on the client.
func (c *Codec) ExpiredCookie() *http.Cookie {
	cookie := c.newCookie("", 0)
	cookie.MaxAge = -1
	return cookie
}

// Writer binds the codec to one response so the service can replace the
// session without depending on net/http.
type Writer struct {
	codec *Codec
	w     http.ResponseWriter
}

// Writer returns a response-bound session sink.
func (c *Codec) Writer(w http.ResponseWriter) *Writer {
	return &Writer{codec: c, w: w}
}

// Replace sets a fresh session cookie, superseding any previous one.
func (sw *Writer) Replace(_ context.Context, snap *models.SessionSnapshot, ttl time.Duration) error {
	token, err := sw.codec.Encode(snap, ttl)
	if err != nil {
		return err
	}
	http.SetCookie(sw.w, sw.codec.newCookie(token, ttl))
	return nil
}

// Clear removes the session cookie.
func (sw *Writer) Clear() {
	http.SetCookie(sw.w, sw.codec.ExpiredCookie())
}
