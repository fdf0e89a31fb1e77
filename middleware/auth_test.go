package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitshare/logger"
	"fitshare/utils"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

type fakeRevocations map[string]bool

func (f fakeRevocations) IsRevoked(_ context.Context, jti string) (bool, error) {
	return f[jti], nil
}

func echoUser(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"userId": utils.GetUserIDFromRequest(r)})
}

func serve(h httprouter.Handle, r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h(rec, r, nil)
	return rec
}

func TestAuthenticate(t *testing.T) {
	revoked := fakeRevocations{}
	a := NewAuthenticator(testSecret, time.Hour, revoked, logger.Discard())
	token, claims, err := a.IssueToken("user-1")
	require.NoError(t, err)
	require.NotEmpty(t, claims.ID)

	t.Run("valid bearer token", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/me", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		rec := serve(a.Authenticate(echoUser), r)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"userId":"user-1"`)
	})

	t.Run("missing header", func(t *testing.T) {
		rec := serve(a.Authenticate(echoUser), httptest.NewRequest(http.MethodGet, "/me", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/me", nil)
		r.Header.Set("Authorization", "Token "+token)
		assert.Equal(t, http.StatusUnauthorized, serve(a.Authenticate(echoUser), r).Code)
	})

	t.Run("query token ignored outside websocket upgrades", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/me?token="+token, nil)
		assert.Equal(t, http.StatusUnauthorized, serve(a.Authenticate(echoUser), r).Code)
	})

	t.Run("query token on websocket upgrade", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/ws/activity?token="+token, nil)
		r.Header.Set("Connection", "Upgrade")
		r.Header.Set("Upgrade", "websocket")
		assert.Equal(t, http.StatusOK, serve(a.Authenticate(echoUser), r).Code)
	})

	t.Run("revoked", func(t *testing.T) {
		revoked[claims.ID] = true
		defer delete(revoked, claims.ID)
		r := httptest.NewRequest(http.MethodGet, "/me", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		rec := serve(a.Authenticate(echoUser), r)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "token revoked")
	})
}

func TestValidateToken_Rejects(t *testing.T) {
	a := NewAuthenticator(testSecret, time.Hour, nil, logger.Discard())
	ctx := context.Background()

	other := NewAuthenticator([]byte("another-secret-another-secret!!"), time.Hour, nil, logger.Discard())
	foreign, _, err := other.IssueToken("user-1")
	require.NoError(t, err)
	_, err = a.ValidateToken(ctx, foreign)
	assert.ErrorContains(t, err, "invalid token")

	expired := NewAuthenticator(testSecret, time.Hour, nil, logger.Discard())
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _, err := expired.IssueToken("user-1")
	require.NoError(t, err)
	_, err = a.ValidateToken(ctx, old)
	assert.ErrorContains(t, err, "token expired")

	_, err = a.ValidateToken(ctx, "garbage")
	assert.Error(t, err)
}

func TestOptionalAuth(t *testing.T) {
	a := NewAuthenticator(testSecret, time.Hour, nil, logger.Discard())
	token, _, err := a.IssueToken("user-2")
	require.NoError(t, err)

	rec := serve(a.OptionalAuth(echoUser), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"userId":""`)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	rec = serve(a.OptionalAuth(echoUser), r)
	assert.Contains(t, rec.Body.String(), `"userId":"user-2"`)
}

func TestClaimsFromContext(t *testing.T) {
	a := NewAuthenticator(testSecret, time.Hour, nil, logger.Discard())
	token, issued, err := a.IssueToken("user-3")
	require.NoError(t, err)

	var got *Claims
	h := a.Authenticate(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		got, _ = ClaimsFromContext(r.Context())
	})
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	serve(h, r)

	require.NotNil(t, got)
	assert.Equal(t, issued.ID, got.ID)
	assert.Equal(t, "user-3", got.UserID)
}
