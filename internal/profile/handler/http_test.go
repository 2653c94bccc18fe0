package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	identitydomain "internship-portal/backend/internal/identity/domain"
	"internship-portal/backend/internal/platform/rbac"
	"internship-portal/backend/internal/profile/domain"
	"internship-portal/backend/internal/profile/repository"
	"internship-portal/backend/internal/profile/service"
	sessiondomain "internship-portal/backend/internal/session/domain"
)

type fixedSession sessiondomain.State

func (f fixedSession) Snapshot() sessiondomain.State { return sessiondomain.State(f) }

type failingRepo struct{}

func (failingRepo) GetBase(context.Context, string) (*repository.Base, error) {
	return &repository.Base{UserID: "u1", Email: "marie@example.com", FirstName: "Marie", LastName: "Martin"}, nil
}

func (failingRepo) GetExtension(context.Context, identitydomain.Role, string) (domain.Extension, error) {
	return nil, nil
}

func (failingRepo) UpdateBase(context.Context, string, domain.Update) error {
	return errors.New("database is read-only")
}

var demoStudent = &identitydomain.Identity{ID: "demo-student", Email: "user@example.com", Provider: identitydomain.AuthProviderDemo}

func router(svc ProfileService, st sessiondomain.State) http.Handler {
	r := chi.NewRouter()
	r.Use(rbac.RequireSession(fixedSession(st)))
	NewHandler(svc, nil).Routes(r)
	return r
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	return rec
}

type envelope struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func profileOf(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	var p map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &p))
	return p
}

func signedInDemo(t *testing.T) (*service.Resolver, http.Handler) {
	t.Helper()
	res := service.NewResolver(service.Options{DemoProfiles: true})
	res.Fetch(context.Background(), demoStudent, identitydomain.RoleStudent)
	st := sessiondomain.State{Identity: demoStudent, Role: identitydomain.RoleStudent, Authenticated: true}
	return res, router(res, st)
}

func TestGetProfile(t *testing.T) {
	_, h := signedInDemo(t)
	rec := do(h, http.MethodGet, "/profile", "")
	require.Equal(t, http.StatusOK, rec.Code)
	p := profileOf(t, rec)
	assert.Equal(t, "Jean Dupont", p["name"])
	assert.Equal(t, 4.75, p["averageRating"])
}

func TestGetProfile_NoneLoaded(t *testing.T) {
	res := service.NewResolver(service.Options{})
	st := sessiondomain.State{Identity: demoStudent, Role: identitydomain.RoleStudent, Authenticated: true}
	rec := do(router(res, st), http.MethodGet, "/profile", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetProfile_RequiresSession(t *testing.T) {
	res := service.NewResolver(service.Options{DemoProfiles: true})
	assert.Equal(t, http.StatusUnauthorized, do(router(res, sessiondomain.State{}), http.MethodGet, "/profile", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(router(res, sessiondomain.State{Loading: true}), http.MethodGet, "/profile", "").Code)
}

func TestPatchProfile_Demo(t *testing.T) {
	_, h := signedInDemo(t)
	rec := do(h, http.MethodPatch, "/profile", `{"firstName":"Paul","phone":"+33 7 00 00 00 00"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	p := profileOf(t, rec)
	assert.Equal(t, "Paul Dupont", p["name"])
	assert.Equal(t, "PD", p["avatar"])
}

func TestPatchProfile_StoreError(t *testing.T) {
	res := service.NewResolver(service.Options{Repo: failingRepo{}})
	acct := &identitydomain.Identity{ID: "u1", Email: "marie@example.com"}
	res.Fetch(context.Background(), acct, identitydomain.RoleStudent)
	h := router(res, sessiondomain.State{Identity: acct, Role: identitydomain.RoleStudent, Authenticated: true})

	rec := do(h, http.MethodPatch, "/profile", `{"lastName":"Durand"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "database is read-only")
	assert.Equal(t, "Martin", res.Current().LastName)
}

func TestPatchProfile_RejectsExtensionFields(t *testing.T) {
	_, h := signedInDemo(t)
	rec := do(h, http.MethodPatch, "/profile", `{"specialization":"Droit"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddRating(t *testing.T) {
	_, h := signedInDemo(t)
	rec := do(h, http.MethodPost, "/profile/ratings", `{"rating":2,"author":"Acme","comment":"Peut mieux faire"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3.83, profileOf(t, rec)["averageRating"])

	rec = do(h, http.MethodPost, "/profile/ratings", `{"rating":9}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(h, http.MethodPost, "/profile/ratings", `{"userId":"someone-else","rating":3}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLookup(t *testing.T) {
	_, h := signedInDemo(t)
	rec := do(h, http.MethodGet, "/profiles/entreprise@example.com", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "TechCorp", profileOf(t, rec)["name"])

	rec = do(h, http.MethodGet, "/profiles/nobody", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
