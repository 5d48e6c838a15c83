package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"ssogate/internal/apps"
	"ssogate/internal/auth/models"
	"ssogate/internal/auth/notify"
	guestStore "ssogate/internal/auth/store/guest"
	tokenStore "ssogate/internal/auth/store/token"
	userStore "ssogate/internal/auth/store/user"
	verificationStore "ssogate/internal/auth/store/verification"
	"ssogate/pkg/secrets"
)

// fakeSink records session replacements so tests can inspect the snapshot
// and TTL the service handed to the transport.
type fakeSink struct {
	snap  *models.SessionSnapshot
	ttl   time.Duration
	err   error
	calls int
}

func (f *fakeSink) Replace(_ context.Context, snap *models.SessionSnapshot, ttl time.Duration) error {
	if f.err != nil {
		return f.err
	}
	f.calls++
	f.snap = snap
	f.ttl = ttl
	return nil
}

const (
	testPassword   = "correct horse battery"
	testGuestCode  = "0123456789abcdef0123456789abcdef"
	testAdminEmail = "admin@example.com"
)

type ServiceSuite struct {
	suite.Suite
	ctx      context.Context
	now      time.Time
	users    *userStore.InMemoryStore
	guests   *guestStore.InMemoryStore
	tokens   *tokenStore.InMemoryStore
	pins     *verificationStore.InMemoryStore
	notifier *notify.MemoryNotifier
	sink     *fakeSink
	svc      *Service
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.users = userStore.NewMemory()
	s.guests = guestStore.NewMemory()
	s.tokens = tokenStore.NewMemory()
	s.pins = verificationStore.NewMemory()
	s.notifier = notify.NewMemory()
	s.sink = &fakeSink{}

	hash, err := secrets.Hash(testPassword)
	s.Require().NoError(err)

	s.users.Seed(
		&models.User{
			ID:           7,
			Email:        "a@x.com",
			FirstName:    "Ada",
			LastName:     "Lovelace",
			PasswordHash: hash,
		},
		&models.User{
			ID:               8,
			Email:            "grace@x.com",
			FirstName:        "Grace",
			LastName:         "Hopper",
			PasswordHash:     hash,
			TwoFactorEnabled: true,
		},
	)
	s.guests.Seed(&models.GuestProfile{
		Guest: models.Guest{
			ID:          21,
			Code:        testGuestCode,
			FirstName:   "Visiting",
			LastName:    "Guest",
			CreatedByID: 7,
		},
		AdminEmail: testAdminEmail,
		AdminName:  "Ada Lovelace",
	})

	s.svc = NewService(s.users, s.guests, s.tokens, s.pins,
		WithNotifier(s.notifier),
		WithLogger(slog.Default()),
		WithClock(func() time.Time { return s.now }),
	)
}

func (s *ServiceSuite) meta() RequestMeta {
	preset, ok := apps.Default().Lookup("administrator")
	s.Require().True(ok)
	return RequestMeta{App: preset, Device: "Chrome on macOS", Language: models.LanguageEN}
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}
