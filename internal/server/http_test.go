package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"internship-portal/backend/internal/access"
	accesshandler "internship-portal/backend/internal/access/handler"
	identitydomain "internship-portal/backend/internal/identity/domain"
	profilehandler "internship-portal/backend/internal/profile/handler"
	profileservice "internship-portal/backend/internal/profile/service"
	sessiondomain "internship-portal/backend/internal/session/domain"
	sessionhandler "internship-portal/backend/internal/session/handler"
)

type staticSessions struct {
	state sessiondomain.State
}

func (s *staticSessions) Snapshot() sessiondomain.State { return s.state }

func (s *staticSessions) Login(context.Context, string, string) error { return nil }

func (s *staticSessions) Logout(context.Context) {}

func newTestRouter(t *testing.T, st sessiondomain.State) http.Handler {
	t.Helper()
	sessions := &staticSessions{state: st}
	profiles := profileservice.NewResolver(profileservice.Options{DemoProfiles: true})
	if st.Identity != nil {
		profiles.Fetch(context.Background(), st.Identity, st.Role)
	}
	return NewRouter(RouterOptions{
		Session:  sessionhandler.NewHandler(sessions, nil),
		Access:   accesshandler.NewHandler(access.NewGate(sessions, nil, nil)),
		Profile:  profilehandler.NewHandler(profiles, nil),
		Sessions: sessions,
	})
}

func TestRouter_Healthz(t *testing.T) {
	h := newTestRouter(t, sessiondomain.State{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestRouter_SessionMounted(t *testing.T) {
	h := newTestRouter(t, sessiondomain.State{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/session", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"isAuthenticated":false`)
}

func TestRouter_ProfileRequiresSession(t *testing.T) {
	h := newTestRouter(t, sessiondomain.State{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/profile", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_ProfileForSignedInDemoStudent(t *testing.T) {
	ident := &identitydomain.Identity{
		ID:       "demo-student",
		Email:    "user@example.com",
		Provider: identitydomain.AuthProviderDemo,
		RoleHint: "student",
	}
	h := newTestRouter(t, sessiondomain.State{Identity: ident, Role: identitydomain.RoleStudent, Authenticated: true})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/profile", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Jean")
}

func TestRouter_AccessRedirectsAnonymous(t *testing.T) {
	h := newTestRouter(t, sessiondomain.State{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/routes/profile", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, access.LocationLogin, rec.Header().Get("Location"))
}

func TestRouter_CORSPreflight(t *testing.T) {
	h := newTestRouter(t, sessiondomain.State{})
	req := httptest.NewRequest(http.MethodOptions, "/api/session/login", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_CORSRejectsUnknownOrigin(t *testing.T) {
	h := newTestRouter(t, sessiondomain.State{})
	req := httptest.NewRequest(http.MethodOptions, "/api/session/login", nil)
	req.Header.Set("Origin", "https://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
