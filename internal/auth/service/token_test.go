package service

import (
	"time"

	"ssogate/internal/auth/models"
	dErrors "ssogate/pkg/domain-errors"
)

func (s *ServiceSuite) loggedInUser() *models.LoginResult {
	req := &models.EmailLoginRequest{Email: "a@x.com", Password: testPassword}
	result, err := s.svc.LoginWithEmail(s.ctx, s.meta(), req, s.sink)
	s.Require().NoError(err)
	return result
}

func (s *ServiceSuite) TestValidateTokenAcceptsLiveToken() {
	login := s.loggedInUser()

	identity, err := s.svc.ValidateToken(s.ctx, &models.ValidateTokenRequest{Token: login.Token})
	s.Require().NoError(err)
	s.Equal(int64(7), identity.ObjectID)
	s.Equal(models.KindUser, identity.ObjectType)

	rec, err := s.tokens.FindValid(s.ctx, login.Token, s.now)
	s.Require().NoError(err)
	s.Require().NotNil(rec.LastUsedAt)
	s.Equal(s.now, *rec.LastUsedAt)
}

func (s *ServiceSuite) TestValidateTokenRejectsUnknownToken() {
	_, err := s.svc.ValidateToken(s.ctx, &models.ValidateTokenRequest{Token: "no-such-token"})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *ServiceSuite) TestValidateTokenRejectsExpiredToken() {
	login := s.loggedInUser()

	s.now = s.now.Add(31 * 24 * time.Hour)

	_, err := s.svc.ValidateToken(s.ctx, &models.ValidateTokenRequest{Token: login.Token})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *ServiceSuite) TestValidateTokenRejectsRotatedOutToken() {
	first := s.loggedInUser()
	second := s.loggedInUser()
	s.NotEqual(first.Token, second.Token)

	_, err := s.svc.ValidateToken(s.ctx, &models.ValidateTokenRequest{Token: first.Token})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))

	_, err = s.svc.ValidateToken(s.ctx, &models.ValidateTokenRequest{Token: second.Token})
	s.Require().NoError(err)
}

func (s *ServiceSuite) TestRefreshRotatesSessionAndToken() {
	login := s.loggedInUser()
	sentBefore := len(s.notifier.All())

	refreshSink := &fakeSink{}
	result, err := s.svc.Refresh(s.ctx, s.meta(), login.User, refreshSink)
	s.Require().NoError(err)

	s.Equal(int64(7), result.User.ID)
	s.NotEqual(login.Token, result.Token)
	s.Equal(1, refreshSink.calls)
	s.Equal(1, s.tokens.CountByIdentity(7, models.KindUser))

	// Refresh is silent: no new login notice.
	s.Len(s.notifier.All(), sentBefore)
}

func (s *ServiceSuite) TestRefreshRejectsGuestBeforeTokenOps() {
	guestReq := &models.GuestLoginRequest{Code: testGuestCode}
	login, err := s.svc.LoginGuest(s.ctx, s.meta(), guestReq, s.sink)
	s.Require().NoError(err)

	refreshSink := &fakeSink{}
	_, err = s.svc.Refresh(s.ctx, s.meta(), login.User, refreshSink)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))

	s.Zero(refreshSink.calls)
	// The guest's token from login is untouched; refresh never reached
	// token operations.
	_, err = s.svc.ValidateToken(s.ctx, &models.ValidateTokenRequest{Token: login.Token})
	s.Require().NoError(err)
}

func (s *ServiceSuite) TestRefreshVanishedAccountIsNotFound() {
	snap := &models.SessionSnapshot{ID: 9999, Type: models.KindUser}

	_, err := s.svc.Refresh(s.ctx, s.meta(), snap, &fakeSink{})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	s.False(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}
