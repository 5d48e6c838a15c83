package service

import (
	"context"
	"errors"

	"ssogate/internal/auth/models"
	"ssogate/internal/sentinel"
	dErrors "ssogate/pkg/domain-errors"
)

const msgInvalidToken = "invalid or expired token"

// ValidateToken introspects a persistent token and, when live, stamps its
// last usage. The lookup and the stamp are two explicit, sequenced calls.
func (s *Service) ValidateToken(ctx context.Context, req *models.ValidateTokenRequest) (*models.TokenIdentity, error) {
	now := s.now()

	rec, err := s.tokens.FindValid(ctx, req.Token, now)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) || errors.Is(err, sentinel.ErrExpired) {
			s.authFailure(ctx, "validate_token", "invalid_token")
			s.incrementTokenValidations("rejected")
			return nil, dErrors.New(dErrors.CodeUnauthorized, msgInvalidToken)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, msgUnavailable)
	}

	// The introspection verdict is already known; a failed usage stamp is
	// worth a log line, not a failed request.
	if err := s.tokens.TouchLastUsage(ctx, req.Token, now); err != nil {
		s.logger.WarnContext(ctx, "failed to stamp token usage", "error", err)
	}

	s.incrementTokenValidations("accepted")
	return &models.TokenIdentity{ObjectID: rec.ObjectID, ObjectType: rec.ObjectType}, nil
}

// Refresh re-materializes the session and rotates the persistent token for
// an already-authenticated registered user. Guests cannot refresh: their
// sessions are deliberately short-lived, and the rejection happens before
// any token operation. No login notice is sent on refresh.
func (s *Service) Refresh(ctx context.Context, meta RequestMeta, current *models.SessionSnapshot, sink SessionSink) (*models.LoginResult, error) {
	if current.IsGuest() {
		s.authFailure(ctx, "refresh", "guest_principal", "guest_id", current.ID)
		return nil, dErrors.New(dErrors.CodeUnauthorized, "guests cannot refresh a session")
	}

	// System-mode lookup: no secret was guessed, so a missing row is a
	// plain NotFound rather than a credential failure.
	user, err := s.users.FindByID(ctx, current.ID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "account no longer exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, msgUnavailable)
	}

	email := user.Email
	snap := &models.SessionSnapshot{
		ID:         user.ID,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		Email:      &email,
		Type:       models.KindUser,
		ImageName:  user.ImageName,
		Language:   languageOrDefault(current.Language),
		LoggedInAt: s.now(),
	}

	token, err := s.materialize(ctx, meta, snap, sink)
	if err != nil {
		return nil, err
	}

	s.logEvent(ctx, "session refreshed", "user_id", user.ID, "app", meta.App.Slug)
	return &models.LoginResult{User: snap, Token: token}, nil
}
