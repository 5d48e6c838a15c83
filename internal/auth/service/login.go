package service

import (
	"context"
	"errors"
	"time"

	"ssogate/internal/auth/models"
	"ssogate/internal/auth/notify"
	"ssogate/internal/sentinel"
	dErrors "ssogate/pkg/domain-errors"
	"ssogate/pkg/secrets"
)

// Credential failures are deliberately generically worded: the same message
// comes back whether the account doesn't exist or the secret is wrong, so a
// caller cannot enumerate accounts.
const (
	msgInvalidCredentials = "invalid email or password"
	msgInvalidAccessCode  = "invalid access code"
	msgInvalidPin         = "invalid or expired verification code"
	msgUnavailable        = "service temporarily unavailable, try again later"
)

const twoFactorPinLength = 6

// LoginWithEmail authenticates a registered user by email and password.
// When the account has a second factor enabled, no session is created yet;
// a pin is issued and mailed instead, and the result says so.
func (s *Service) LoginWithEmail(ctx context.Context, meta RequestMeta, req *models.EmailLoginRequest, sink SessionSink) (*models.LoginResult, error) {
	started := s.now()

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.authFailure(ctx, "login_email", "unknown_account", "app", meta.App.Slug)
			return nil, dErrors.New(dErrors.CodeUnauthorized, msgInvalidCredentials)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, msgUnavailable)
	}

	if err := secrets.Verify(req.Password, user.PasswordHash); err != nil {
		s.authFailure(ctx, "login_email", "wrong_password",
			"app", meta.App.Slug, "user_id", user.ID)
		return nil, dErrors.New(dErrors.CodeUnauthorized, msgInvalidCredentials)
	}

	if user.TwoFactorEnabled {
		if err := s.challengeTwoFactor(ctx, meta, user); err != nil {
			return nil, err
		}
		return &models.LoginResult{TwoFactorRequired: true}, nil
	}

	result, err := s.finishUserLogin(ctx, meta, user, sink)
	if err != nil {
		return nil, err
	}
	s.observeLoginDuration(float64(s.now().Sub(started).Milliseconds()))
	return result, nil
}

// LoginGuest authenticates a guest by access code. The app-level policy
// check (guest login enabled) belongs to the request gate and has already
// happened by the time this runs.
func (s *Service) LoginGuest(ctx context.Context, meta RequestMeta, req *models.GuestLoginRequest, sink SessionSink) (*models.LoginResult, error) {
	started := s.now()

	guest, err := s.guests.FindByCode(ctx, req.Code)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.authFailure(ctx, "login_guest", "unknown_code", "app", meta.App.Slug)
			return nil, dErrors.New(dErrors.CodeUnauthorized, msgInvalidAccessCode)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, msgUnavailable)
	}

	profile, err := s.guests.ProfileByID(ctx, guest.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, msgUnavailable)
	}

	// Guests have no monitorable inbox; the login notice goes to the
	// administrator who issued the code.
	if profile.AdminEmail != "" {
		s.sendLoginNotice(ctx, meta, notify.TemplateNewGuestLogin, profile.AdminEmail, guest.FullName())
	}

	now := s.now()
	if err := s.guests.TouchLastLogin(ctx, guest.ID, now); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, msgUnavailable)
	}

	snap := &models.SessionSnapshot{
		ID:         guest.ID,
		FirstName:  guest.FirstName,
		LastName:   guest.LastName,
		Email:      nil,
		Type:       models.KindGuest,
		ImageName:  guest.ImageName,
		Language:   languageOrDefault(meta.Language),
		LoggedInAt: now,
	}

	token, err := s.materialize(ctx, meta, snap, sink)
	if err != nil {
		return nil, err
	}

	s.logEvent(ctx, "guest logged in", "guest_id", guest.ID, "app", meta.App.Slug)
	s.incrementLogins("guest")
	s.observeLoginDuration(float64(s.now().Sub(started).Milliseconds()))
	return &models.LoginResult{User: snap, Token: token}, nil
}

// VerifyTwoFactor completes a pending email login by checking the mailed
// pin. Pins older than the configured window are rejected the same way
// wrong pins are.
func (s *Service) VerifyTwoFactor(ctx context.Context, meta RequestMeta, req *models.TwoFactorRequest, sink SessionSink) (*models.LoginResult, error) {
	pin, err := s.pins.Find(ctx, req.Email, req.Pin, models.ReasonTwoFactor)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.authFailure(ctx, "two_factor", "wrong_pin", "app", meta.App.Slug)
			return nil, dErrors.New(dErrors.CodeUnauthorized, msgInvalidPin)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, msgUnavailable)
	}

	// Consumption is best effort; a leftover row only shortens the window
	// for a replay that the expiry check below already closes.
	if err := s.pins.Delete(ctx, req.Email, req.Pin, models.ReasonTwoFactor); err != nil {
		s.logger.WarnContext(ctx, "failed to consume verification pin", "error", err)
	}

	if pin.IsExpired(s.now(), s.ttl.PinMaxAge) {
		s.authFailure(ctx, "two_factor", "expired_pin", "app", meta.App.Slug)
		return nil, dErrors.New(dErrors.CodeUnauthorized, msgInvalidPin)
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.authFailure(ctx, "two_factor", "unknown_account", "app", meta.App.Slug)
			return nil, dErrors.New(dErrors.CodeUnauthorized, msgInvalidCredentials)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, msgUnavailable)
	}

	return s.finishUserLogin(ctx, meta, user, sink)
}

// challengeTwoFactor issues and mails a fresh pin. Unlike the "new login"
// notice, pin delivery is load-bearing: without it the user cannot finish
// logging in, so a relay failure fails the request.
func (s *Service) challengeTwoFactor(ctx context.Context, meta RequestMeta, user *models.User) error {
	pin, err := secrets.GeneratePin(twoFactorPinLength)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, msgUnavailable)
	}

	record := &models.VerificationPin{
		Email:     user.Email,
		Pin:       pin,
		Reason:    models.ReasonTwoFactor,
		CreatedAt: s.now(),
	}
	if err := s.pins.Create(ctx, record); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, msgUnavailable)
	}

	vars := []notify.Variable{
		{Key: "name", Value: user.FullName()},
		{Key: "pin", Value: pin},
		{Key: "app", Value: meta.App.Name},
	}
	if s.notifier != nil {
		if err := s.notifier.Send(ctx, user.Email, "Your verification code", notify.TemplateTwoFactorPin, vars); err != nil {
			s.notificationFailure(ctx, notify.TemplateTwoFactorPin, err)
			return dErrors.Wrap(err, dErrors.CodeUnavailable, msgUnavailable)
		}
	}

	s.logEvent(ctx, "two-factor pin issued", "user_id", user.ID, "app", meta.App.Slug)
	s.incrementTwoFactorChallenges()
	return nil
}

// finishUserLogin runs the tail of the protocol for a registered user:
// notification, last-login stamp, session, persistent token. Ordering
// matters; the notice is attempted before the session is usable.
func (s *Service) finishUserLogin(ctx context.Context, meta RequestMeta, user *models.User, sink SessionSink) (*models.LoginResult, error) {
	s.sendLoginNotice(ctx, meta, notify.TemplateNewLogin, user.Email, user.FullName())

	now := s.now()
	if err := s.users.TouchLastLogin(ctx, user.ID, now); err != nil {
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
		Language:   languageOrDefault(meta.Language),
		LoggedInAt: now,
	}

	token, err := s.materialize(ctx, meta, snap, sink)
	if err != nil {
		return nil, err
	}

	s.logEvent(ctx, "user logged in", "user_id", user.ID, "app", meta.App.Slug)
	s.incrementLogins("user")
	return &models.LoginResult{User: snap, Token: token}, nil
}

// materialize swaps the request's session for a fresh one and rotates the
// principal's persistent token, both sized by the principal-type lifetime
// table.
func (s *Service) materialize(ctx context.Context, meta RequestMeta, snap *models.SessionSnapshot, sink SessionSink) (string, error) {
	if err := sink.Replace(ctx, snap, s.ttl.SessionTTL(snap.Type)); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, msgUnavailable)
	}

	token, err := secrets.GenerateToken()
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, msgUnavailable)
	}

	rec := &models.TokenRecord{
		ObjectID:   snap.ID,
		ObjectType: snap.Type,
		Token:      token,
		AppName:    meta.App.Slug,
		ExpiresAt:  s.now().Add(s.ttl.TokenTTL(snap.Type)),
	}
	if err := s.tokens.Replace(ctx, rec); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeUnavailable, msgUnavailable)
	}

	s.incrementTokensIssued(string(snap.Type))
	return token, nil
}

// sendLoginNotice delivers the "new login" notice. The channel is best
// effort: a relay failure is logged and counted but never aborts the login.
func (s *Service) sendLoginNotice(ctx context.Context, meta RequestMeta, template, address, name string) {
	if s.notifier == nil || address == "" {
		return
	}
	vars := []notify.Variable{
		{Key: "name", Value: name},
		{Key: "app", Value: meta.App.Name},
		{Key: "device", Value: meta.Device},
		{Key: "time", Value: s.now().UTC().Format(time.RFC1123)},
	}
	if err := s.notifier.Send(ctx, address, "New login to "+meta.App.Name, template, vars); err != nil {
		s.notificationFailure(ctx, template, err)
	}
}

func languageOrDefault(lang models.Language) models.Language {
	if lang == "" {
		return models.LanguageEN
	}
	return lang
}
