package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/julienschmidt/httprouter"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitshare/db/dbtest"
	"fitshare/errs"
	"fitshare/logger"
	"fitshare/middleware"
	"fitshare/models"
	"fitshare/rdx"
)

type fakeQueue struct {
	mu   sync.Mutex
	jobs []models.VerificationMail
	err  error
}

func (f *fakeQueue) PublishVerificationMail(_ context.Context, m models.VerificationMail) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs = append(f.jobs, m)
	return f.err
}

type fixture struct {
	store  *dbtest.Memory
	queue  *fakeQueue
	authn  *middleware.Authenticator
	router *httprouter.Router
}

func setup(t *testing.T) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	log := logger.Discard()
	revocations := rdx.NewRevocations(client)
	authn := middleware.NewAuthenticator([]byte("0123456789abcdef0123456789abcdef"), time.Hour, revocations, log)
	store := dbtest.New()
	queue := &fakeQueue{}
	h := NewHandler(NewService(store, authn, revocations, queue, "http://localhost:3000/", log), log)

	router := httprouter.New()
	router.POST("/register", h.Register)
	router.GET("/verify/:token", h.Verify)
	router.POST("/login", h.Login)
	router.POST("/logout", authn.Authenticate(h.Logout))
	router.GET("/me", authn.Authenticate(h.Me))

	return &fixture{store: store, queue: queue, authn: authn, router: router}
}

func (f *fixture) do(method, path, body, token string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(method, path, strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, r)
	return rec
}

func (f *fixture) register(t *testing.T, email string) {
	t.Helper()
	rec := f.do(http.MethodPost, "/register", `{"name":"Ada","email":"`+email+`","password":"secret1"}`, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func (f *fixture) login(t *testing.T, email, password string) LoginResponse {
	t.Helper()
	rec := f.do(http.MethodPost, "/login", `{"email":"`+email+`","password":"`+password+`"}`, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestRegister(t *testing.T) {
	f := setup(t)
	f.register(t, "Ada@Example.com")

	user, err := f.store.UserByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	assert.False(t, user.Verified)
	assert.Len(t, user.VerificationToken, 40)
	assert.NotEqual(t, "secret1", user.PasswordHash)

	require.Len(t, f.queue.jobs, 1)
	assert.Equal(t, "ada@example.com", f.queue.jobs[0].Email)
	assert.Equal(t, "http://localhost:3000/verify/"+user.VerificationToken, f.queue.jobs[0].Link)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := setup(t)
	f.register(t, "ada@example.com")

	rec := f.do(http.MethodPost, "/register", `{"name":"Other","email":"ada@example.com","password":"secret2"}`, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Len(t, f.queue.jobs, 1)
}

func TestRegister_Validation(t *testing.T) {
	f := setup(t)
	rec := f.do(http.MethodPost, "/register", `{"name":"Ada","email":"not-an-email","password":"123"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email"`)
	assert.Contains(t, rec.Body.String(), `"password"`)
}

func TestRegister_MailFailureIsNotSurfaced(t *testing.T) {
	f := setup(t)
	f.queue.err = errors.New("redis down")
	f.register(t, "ada@example.com")
}

func TestVerify(t *testing.T) {
	f := setup(t)
	f.register(t, "ada@example.com")
	user, err := f.store.UserByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)

	token := user.VerificationToken

	rec := f.do(http.MethodGet, "/verify/"+token, "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	user, err = f.store.UserByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	assert.True(t, user.Verified)
	assert.Empty(t, user.VerificationToken)

	// tokens are single use
	rec = f.do(http.MethodGet, "/verify/"+token, "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLogin(t *testing.T) {
	f := setup(t)
	f.register(t, "ada@example.com")

	resp := f.login(t, "ada@example.com", "secret1")
	assert.NotEmpty(t, resp.Token)

	claims, err := f.authn.ValidateToken(context.Background(), resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.UserID, claims.UserID)
}

func TestLogin_SameErrorForUnknownEmailAndBadPassword(t *testing.T) {
	f := setup(t)
	f.register(t, "ada@example.com")

	unknown := f.do(http.MethodPost, "/login", `{"email":"bob@example.com","password":"secret1"}`, "")
	wrong := f.do(http.MethodPost, "/login", `{"email":"ada@example.com","password":"nope123"}`, "")

	assert.Equal(t, http.StatusNotFound, unknown.Code)
	assert.Equal(t, http.StatusNotFound, wrong.Code)
	assert.JSONEq(t, unknown.Body.String(), wrong.Body.String())
}

func TestLogoutRevokesToken(t *testing.T) {
	f := setup(t)
	f.register(t, "ada@example.com")
	resp := f.login(t, "ada@example.com", "secret1")

	rec := f.do(http.MethodGet, "/me", "", resp.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"ada@example.com"`)
	assert.NotContains(t, rec.Body.String(), "password")

	rec = f.do(http.MethodPost, "/logout", "", resp.Token)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(http.MethodGet, "/me", "", resp.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMe_Unauthenticated(t *testing.T) {
	f := setup(t)
	rec := f.do(http.MethodGet, "/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestServiceErrorsPropagate(t *testing.T) {
	f := setup(t)
	f.store.Err = errs.Internal("storage offline")
	rec := f.do(http.MethodPost, "/login", `{"email":"ada@example.com","password":"secret1"}`, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
