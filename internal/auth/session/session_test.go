package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ssogate/internal/auth/models"
	"ssogate/internal/sentinel"
)

func snapshot() *models.SessionSnapshot {
	email := "a@x.com"
	return &models.SessionSnapshot{
		ID:         7,
		FirstName:  "Ada",
		LastName:   "Lovelace",
		Email:      &email,
		Type:       models.KindUser,
		ImageName:  "ada.png",
		Language:   models.LanguageEN,
		LoggedInAt: time.Now().Truncate(time.Second),
	}
}

func TestCodecRoundTrip(t *testing.T) {
	codec := NewCodec("signing-key", "sso_session")

	token, err := codec.Encode(snapshot(), time.Hour)
	require.NoError(t, err)

	decoded, err := codec.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), decoded.ID)
	assert.Equal(t, models.KindUser, decoded.Type)
	require.NotNil(t, decoded.Email)
	assert.Equal(t, "a@x.com", *decoded.Email)
}

func TestCodecRejectsExpiredToken(t *testing.T) {
	codec := NewCodec("signing-key", "sso_session")

	token, err := codec.Encode(snapshot(), -time.Minute)
	require.NoError(t, err)

	_, err = codec.Decode(token)
	assert.True(t, errors.Is(err, sentinel.ErrExpired))
}

func TestCodecRejectsForeignSignature(t *testing.T) {
	theirs := NewCodec("their-key", "sso_session")
	ours := NewCodec("our-key", "sso_session")

	token, err := theirs.Encode(snapshot(), time.Hour)
	require.NoError(t, err)

	_, err = ours.Decode(token)
	assert.Error(t, err)
}

func TestFromRequest(t *testing.T) {
	codec := NewCodec("signing-key", "sso_session")

	t.Run("missing cookie is not found", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		_, err := codec.FromRequest(r)
		assert.True(t, errors.Is(err, sentinel.ErrNotFound))
	})

	t.Run("round trip through writer", func(t *testing.T) {
		rec := httptest.NewRecorder()
		require.NoError(t, codec.Writer(rec).Replace(context.Background(), snapshot(), time.Hour))

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "sso_session", cookies[0].Name)
		assert.True(t, cookies[0].HttpOnly)
		assert.InDelta(t, 3600, cookies[0].MaxAge, 1)

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(cookies[0])
		snap, err := codec.FromRequest(r)
		require.NoError(t, err)
		assert.Equal(t, int64(7), snap.ID)
	})
}

func TestGuestCookieShorterThanUserCookie(t *testing.T) {
	codec := NewCodec("signing-key", "sso_session")
	policy := models.DefaultTTLPolicy()

	userRec := httptest.NewRecorder()
	require.NoError(t, codec.Writer(userRec).Replace(context.Background(), snapshot(), policy.SessionTTL(models.KindUser)))

	guest := snapshot()
	guest.Type = models.KindGuest
	guest.Email = nil
	guestRec := httptest.NewRecorder()
	require.NoError(t, codec.Writer(guestRec).Replace(context.Background(), guest, policy.SessionTTL(models.KindGuest)))

	userCookie := userRec.Result().Cookies()[0]
	guestCookie := guestRec.Result().Cookies()[0]
	assert.Less(t, guestCookie.MaxAge, userCookie.MaxAge)
}

func TestExpiredCookieClearsSession(t *testing.T) {
	codec := NewCodec("signing-key", "sso_session")
	rec := httptest.NewRecorder()
	codec.Writer(rec).Clear()

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
	assert.Empty(t, cookies[0].Value)
}
