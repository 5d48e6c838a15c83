package cleanup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"ssogate/internal/auth/models"
	tokenStore "ssogate/internal/auth/store/token"
	verificationStore "ssogate/internal/auth/store/verification"
)

func TestRunOnceDeletesExpiredArtifacts(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tokens := tokenStore.NewMemory()
	pins := verificationStore.NewMemory()

	require.NoError(t, tokens.Replace(ctx, &models.TokenRecord{
		ObjectID:   1,
		ObjectType: models.KindUser,
		Token:      "live-token",
		AppName:    "administrator",
		ExpiresAt:  now.Add(time.Hour),
	}))
	require.NoError(t, tokens.Replace(ctx, &models.TokenRecord{
		ObjectID:   2,
		ObjectType: models.KindGuest,
		Token:      "dead-token",
		AppName:    "administrator",
		ExpiresAt:  now.Add(-time.Hour),
	}))

	require.NoError(t, pins.Create(ctx, &models.VerificationPin{
		Email:     "fresh@example.com",
		Pin:       "111111",
		Reason:    models.ReasonTwoFactor,
		CreatedAt: now.Add(-time.Minute),
	}))
	require.NoError(t, pins.Create(ctx, &models.VerificationPin{
		Email:     "stale@example.com",
		Pin:       "222222",
		Reason:    models.ReasonTwoFactor,
		CreatedAt: now.Add(-time.Hour),
	}))

	svc, err := New(tokens, pins, 10*time.Minute,
		WithClock(func() time.Time { return now }),
	)
	require.NoError(t, err)

	res, err := svc.RunOnce(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, res.DeletedTokens)
	require.Equal(t, 1, res.DeletedPins)

	_, err = tokens.FindValid(ctx, "live-token", now)
	require.NoError(t, err)
	_, err = pins.Find(ctx, "fresh@example.com", "111111", models.ReasonTwoFactor)
	require.NoError(t, err)
}

func TestRunOnceAggregatesErrors(t *testing.T) {
	ctx := context.Background()

	pins := verificationStore.NewMemory()
	svc, err := New(failingTokenStore{}, pins, 10*time.Minute)
	require.NoError(t, err)

	res, err := svc.RunOnce(ctx)
	require.Error(t, err)
	// The pin pass still ran despite the token failure.
	require.Equal(t, 0, res.DeletedPins)
}

func TestNewValidatesInputs(t *testing.T) {
	pins := verificationStore.NewMemory()
	tokens := tokenStore.NewMemory()

	_, err := New(nil, pins, 10*time.Minute)
	require.Error(t, err)

	_, err = New(tokens, nil, 10*time.Minute)
	require.Error(t, err)

	_, err = New(tokens, pins, 0)
	require.Error(t, err)
}

type failingTokenStore struct{}

func (failingTokenStore) DeleteExpired(context.Context, time.Time) (int, error) {
	return 0, errors.New("store down")
}
