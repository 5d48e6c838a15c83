package service

import (
	"errors"
	"time"

	"ssogate/internal/auth/models"
	"ssogate/internal/auth/notify"
	dErrors "ssogate/pkg/domain-errors"
)

func (s *ServiceSuite) TestLoginWithEmailSucceeds() {
	req := &models.EmailLoginRequest{Email: "a@x.com", Password: testPassword}

	result, err := s.svc.LoginWithEmail(s.ctx, s.meta(), req, s.sink)
	s.Require().NoError(err)

	s.Require().NotNil(result.User)
	s.Equal(int64(7), result.User.ID)
	s.Equal(models.KindUser, result.User.Type)
	s.Require().NotNil(result.User.Email)
	s.Equal("a@x.com", *result.User.Email)
	s.Equal(s.now, result.User.LoggedInAt)
	s.NotEmpty(result.Token)
	s.False(result.TwoFactorRequired)

	user, findErr := s.users.FindByID(s.ctx, 7)
	s.Require().NoError(findErr)
	s.Require().NotNil(user.LastLoginAt)
	s.Equal(s.now, *user.LastLoginAt)

	s.Equal(1, s.sink.calls)
	s.Equal(1, s.tokens.CountByIdentity(7, models.KindUser))
}

func (s *ServiceSuite) TestLoginWithEmailSendsNoticeToOwnAddress() {
	req := &models.EmailLoginRequest{Email: "a@x.com", Password: testPassword}

	_, err := s.svc.LoginWithEmail(s.ctx, s.meta(), req, s.sink)
	s.Require().NoError(err)

	sent := s.notifier.All()
	s.Require().Len(sent, 1)
	s.Equal("a@x.com", sent[0].Address)
	s.Equal(notify.TemplateNewLogin, sent[0].Template)
}

func (s *ServiceSuite) TestLoginFailuresAreIndistinguishable() {
	wrongPassword := &models.EmailLoginRequest{Email: "a@x.com", Password: "not the password"}
	_, errPassword := s.svc.LoginWithEmail(s.ctx, s.meta(), wrongPassword, s.sink)
	s.Require().Error(errPassword)

	unknownAccount := &models.EmailLoginRequest{Email: "nobody@x.com", Password: testPassword}
	_, errAccount := s.svc.LoginWithEmail(s.ctx, s.meta(), unknownAccount, s.sink)
	s.Require().Error(errAccount)

	s.True(dErrors.HasCode(errPassword, dErrors.CodeUnauthorized))
	s.True(dErrors.HasCode(errAccount, dErrors.CodeUnauthorized))
	s.Equal(errPassword.Error(), errAccount.Error())

	s.Zero(s.sink.calls)
	s.Empty(s.notifier.All())
}

func (s *ServiceSuite) TestLoginNotifierFailureIsNonFatal() {
	s.notifier.FailWith(errors.New("relay down"))
	req := &models.EmailLoginRequest{Email: "a@x.com", Password: testPassword}

	result, err := s.svc.LoginWithEmail(s.ctx, s.meta(), req, s.sink)
	s.Require().NoError(err)
	s.NotEmpty(result.Token)
	s.Equal(1, s.sink.calls)
}

func (s *ServiceSuite) TestLoginRepeatedIsIdempotentOnIdentity() {
	req := &models.EmailLoginRequest{Email: "a@x.com", Password: testPassword}

	first, err := s.svc.LoginWithEmail(s.ctx, s.meta(), req, s.sink)
	s.Require().NoError(err)
	second, err := s.svc.LoginWithEmail(s.ctx, s.meta(), req, s.sink)
	s.Require().NoError(err)

	s.Equal(first.User.ID, second.User.ID)
	s.NotEqual(first.Token, second.Token)
	s.Equal(1, s.tokens.CountByIdentity(7, models.KindUser))
}

func (s *ServiceSuite) TestLoginGuestRoutesNoticeToAdmin() {
	req := &models.GuestLoginRequest{Code: testGuestCode}

	result, err := s.svc.LoginGuest(s.ctx, s.meta(), req, s.sink)
	s.Require().NoError(err)

	s.Require().NotNil(result.User)
	s.Equal(models.KindGuest, result.User.Type)
	s.Nil(result.User.Email)
	s.NotEmpty(result.Token)

	sent := s.notifier.All()
	s.Require().Len(sent, 1)
	s.Equal(testAdminEmail, sent[0].Address)
	s.Equal(notify.TemplateNewGuestLogin, sent[0].Template)
}

func (s *ServiceSuite) TestLoginGuestUnknownCode() {
	req := &models.GuestLoginRequest{Code: "ffffffffffffffffffffffffffffffff"}

	_, err := s.svc.LoginGuest(s.ctx, s.meta(), req, s.sink)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	s.Zero(s.sink.calls)
}

func (s *ServiceSuite) TestGuestSessionShorterThanUserSession() {
	userReq := &models.EmailLoginRequest{Email: "a@x.com", Password: testPassword}
	_, err := s.svc.LoginWithEmail(s.ctx, s.meta(), userReq, s.sink)
	s.Require().NoError(err)
	userTTL := s.sink.ttl

	guestSink := &fakeSink{}
	guestReq := &models.GuestLoginRequest{Code: testGuestCode}
	_, err = s.svc.LoginGuest(s.ctx, s.meta(), guestReq, guestSink)
	s.Require().NoError(err)

	s.Less(guestSink.ttl, userTTL)
}

func (s *ServiceSuite) TestTwoFactorAccountDefersSession() {
	req := &models.EmailLoginRequest{Email: "grace@x.com", Password: testPassword}

	result, err := s.svc.LoginWithEmail(s.ctx, s.meta(), req, s.sink)
	s.Require().NoError(err)

	s.True(result.TwoFactorRequired)
	s.Nil(result.User)
	s.Empty(result.Token)
	s.Zero(s.sink.calls)
	s.Equal(0, s.tokens.CountByIdentity(8, models.KindUser))

	sent := s.notifier.All()
	s.Require().Len(sent, 1)
	s.Equal("grace@x.com", sent[0].Address)
	s.Equal(notify.TemplateTwoFactorPin, sent[0].Template)
}

func (s *ServiceSuite) TestTwoFactorPinDeliveryFailureIsFatal() {
	s.notifier.FailWith(errors.New("relay down"))
	req := &models.EmailLoginRequest{Email: "grace@x.com", Password: testPassword}

	_, err := s.svc.LoginWithEmail(s.ctx, s.meta(), req, s.sink)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
	s.Zero(s.sink.calls)
}

func (s *ServiceSuite) issuedPin() string {
	sent := s.notifier.All()
	s.Require().NotEmpty(sent)
	last := sent[len(sent)-1]
	for _, v := range last.Variables {
		if v.Key == "pin" {
			return v.Value
		}
	}
	s.FailNow("no pin variable in notification")
	return ""
}

func (s *ServiceSuite) TestVerifyTwoFactorCompletesLogin() {
	loginReq := &models.EmailLoginRequest{Email: "grace@x.com", Password: testPassword}
	_, err := s.svc.LoginWithEmail(s.ctx, s.meta(), loginReq, s.sink)
	s.Require().NoError(err)
	pin := s.issuedPin()

	verifyReq := &models.TwoFactorRequest{Email: "grace@x.com", Pin: pin}
	result, err := s.svc.VerifyTwoFactor(s.ctx, s.meta(), verifyReq, s.sink)
	s.Require().NoError(err)

	s.Require().NotNil(result.User)
	s.Equal(int64(8), result.User.ID)
	s.NotEmpty(result.Token)
	s.Equal(1, s.sink.calls)
}

func (s *ServiceSuite) TestVerifyTwoFactorPinIsSingleUse() {
	loginReq := &models.EmailLoginRequest{Email: "grace@x.com", Password: testPassword}
	_, err := s.svc.LoginWithEmail(s.ctx, s.meta(), loginReq, s.sink)
	s.Require().NoError(err)
	pin := s.issuedPin()

	verifyReq := &models.TwoFactorRequest{Email: "grace@x.com", Pin: pin}
	_, err = s.svc.VerifyTwoFactor(s.ctx, s.meta(), verifyReq, s.sink)
	s.Require().NoError(err)

	_, err = s.svc.VerifyTwoFactor(s.ctx, s.meta(), verifyReq, s.sink)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *ServiceSuite) TestVerifyTwoFactorExpiredPin() {
	loginReq := &models.EmailLoginRequest{Email: "grace@x.com", Password: testPassword}
	_, err := s.svc.LoginWithEmail(s.ctx, s.meta(), loginReq, s.sink)
	s.Require().NoError(err)
	pin := s.issuedPin()

	// Pin aged past the window: same rejection as a wrong pin, and no
	// session or token comes into existence.
	s.now = s.now.Add(11 * time.Minute)

	verifyReq := &models.TwoFactorRequest{Email: "grace@x.com", Pin: pin}
	_, err = s.svc.VerifyTwoFactor(s.ctx, s.meta(), verifyReq, s.sink)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	s.Zero(s.sink.calls)
	s.Equal(0, s.tokens.CountByIdentity(8, models.KindUser))
}

func (s *ServiceSuite) TestVerifyTwoFactorWrongPin() {
	loginReq := &models.EmailLoginRequest{Email: "grace@x.com", Password: testPassword}
	_, err := s.svc.LoginWithEmail(s.ctx, s.meta(), loginReq, s.sink)
	s.Require().NoError(err)

	verifyReq := &models.TwoFactorRequest{Email: "grace@x.com", Pin: "000000"}
	_, err = s.svc.VerifyTwoFactor(s.ctx, s.meta(), verifyReq, s.sink)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	s.Zero(s.sink.calls)
}
