package session_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/medipro/console/internal/credential"
	"github.com/medipro/console/internal/session"
	"github.com/medipro/console/internal/shared"
	"github.com/medipro/console/internal/storage"
)

type fakeAuth struct {
	mu          sync.Mutex
	token       string
	profile     *session.Session
	loginErr    error
	acceptErr   error
	acceptCalls int
}

func (f *fakeAuth) Login(ctx context.Context, email, password string) (string, *session.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loginErr != nil {
		return "", nil, f.loginErr
	}
	return f.token, f.profile, nil
}

func (f *fakeAuth) AcceptTerms(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acceptCalls++
	return f.acceptErr
}

type staticFetcher struct {
	sess *session.Session
}

func (s *staticFetcher) FetchProfile(ctx context.Context) (*session.Session, error) {
	return s.sess, nil
}

func newHandlerRig(t *testing.T, auth *fakeAuth, fetcher session.ProfileFetcher) (*session.Manager, http.Handler) {
	t.Helper()
	mr := miniredis.RunT(t)
	kv := storage.NewRedisKV(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mgr := session.NewManager(credential.NewStore(kv), fetcher, logger)
	h := session.NewHandler(logger, mgr, auth)
	r := chi.NewRouter()
	r.Route("/auth", h.MountAuth)
	r.Route("/me", h.MountMe)
	return mgr, r
}

func TestHandleLoginSuccess(t *testing.T) {
	profile := &session.Session{ID: "u1", Name: "Dra. Ana", Role: shared.RoleMedico}
	auth := &fakeAuth{token: "tok-123", profile: profile}
	mgr, r := newHandlerRig(t, auth, nil)

	body := strings.NewReader(`{"email":"ana@clinica.com","password":"segredo123"}`)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", body))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Dra. Ana")
	require.NotNil(t, mgr.Current())
	require.Equal(t, "u1", mgr.Current().ID)
}

func TestHandleLoginValidation(t *testing.T) {
	auth := &fakeAuth{}
	_, r := newHandlerRig(t, auth, nil)

	cases := []string{
		`{"email":"not-an-email","password":"segredo123"}`,
		`{"email":"ana@clinica.com","password":"curta"}`,
		`{`,
	}
	for _, body := range cases {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body)))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %s: got %d, want %d", body, rec.Code, http.StatusBadRequest)
		}
	}
}

func TestHandleLoginRejected(t *testing.T) {
	auth := &fakeAuth{loginErr: session.ErrInvalidCredentials}
	mgr, r := newHandlerRig(t, auth, nil)

	body := strings.NewReader(`{"email":"ana@clinica.com","password":"errada12345"}`)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", body))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "Credenciais inválidas.")
	require.Nil(t, mgr.Current())
}

func TestHandleLogoutRedirects(t *testing.T) {
	auth := &fakeAuth{token: "tok", profile: &session.Session{ID: "u1", Role: shared.RoleMedico}}
	mgr, r := newHandlerRig(t, auth, nil)
	require.NoError(t, mgr.Login(context.Background(), "tok", auth.profile))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/logout", nil))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/", rec.Header().Get("Location"))
	require.Nil(t, mgr.Current())
}

func TestHandleMe(t *testing.T) {
	auth := &fakeAuth{}
	mgr, r := newHandlerRig(t, auth, nil)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	require.NoError(t, mgr.Login(context.Background(), "tok", &session.Session{ID: "u1", Role: shared.RoleMedico}))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"termsRequired":true`)
}

func TestHandleAcceptTermsRefreshesSession(t *testing.T) {
	accepted := time.Now().UTC().Truncate(time.Second)
	fetcher := &staticFetcher{sess: &session.Session{ID: "u1", Role: shared.RoleMedico, TermsAcceptedAt: &accepted}}
	auth := &fakeAuth{}
	mgr, r := newHandlerRig(t, auth, fetcher)
	require.NoError(t, mgr.Login(context.Background(), "tok", &session.Session{ID: "u1", Role: shared.RoleMedico}))
	require.True(t, mgr.Current().TermsRequired())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/me/accept-terms", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, auth.acceptCalls)
	require.False(t, mgr.Current().TermsRequired())
}

func TestHandleAcceptTermsRemoteFailureKeepsSession(t *testing.T) {
	auth := &fakeAuth{acceptErr: context.DeadlineExceeded}
	mgr, r := newHandlerRig(t, auth, nil)
	require.NoError(t, mgr.Login(context.Background(), "tok", &session.Session{ID: "u1", Role: shared.RoleMedico}))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/me/accept-terms", nil))

	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.True(t, mgr.Current().TermsRequired())
}
