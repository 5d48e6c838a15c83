package secrets

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"math/big"

	"golang.org/x/crypto/bcrypt"

	dErrors "ssogate/pkg/domain-errors"
)

// GenerateToken creates a cryptographically secure random bearer token.
// Returns a base64-encoded string with 256 bits of entropy, suitable for
// persistent session tokens and guest access codes.
func GenerateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not generate token")
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// GeneratePin creates a random numeric pin of the given length for
// verification codes. Leading zeros are preserved.
func GeneratePin(length int) (string, error) {
	if length <= 0 {
		return "", dErrors.New(dErrors.CodeValidation, "pin length must be positive")
	}
	pin := make([]byte, 0, length)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not generate pin")
		}
		pin = append(pin, byte('0'+n.Int64()))
	}
	return string(pin), nil
}

// Hash creates a bcrypt hash of the provided secret.
// Use this to securely store secrets for later verification.
func Hash(secret string) (string, error) {
	if secret == "" {
		return "", dErrors.New(dErrors.CodeValidation, "secret cannot be empty")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", dErrors.New(dErrors.CodeValidation, "secret is too long")
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not hash secret")
	}
	return string(hashed), nil
}

// Verify checks if a plaintext secret matches a bcrypt hash.
func Verify(secret, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return dErrors.New(dErrors.CodeUnauthorized, "invalid secret")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "could not verify secret")
	}
	return nil
}
