// Package handler exposes the agent's session over HTTP.
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	identitydomain "internship-portal/backend/internal/identity/domain"
	"internship-portal/backend/internal/identity/store"
	"internship-portal/backend/internal/logger"
	"internship-portal/backend/internal/platform/httpjson"
	"internship-portal/backend/internal/session/domain"
	"internship-portal/backend/internal/session/service"
)

// SessionService is the part of the session manager the handler needs.
type SessionService interface {
	Snapshot() domain.State
	Login(ctx context.Context, email, password string) error
	Logout(ctx context.Context)
}

// Handler serves /session routes.
type Handler struct {
	svc SessionService
	log *zap.Logger
}

// NewHandler returns a session handler.
func NewHandler(svc SessionService, log *zap.Logger) *Handler {
	return &Handler{svc: svc, log: logger.OrGlobal(log)}
}

// Routes mounts the session endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/session", h.get)
	r.Post("/session/login", h.login)
	r.Post("/session/logout", h.logout)
}

// View is the wire form of the session state. Role is null when unresolved.
type View struct {
	User            *identitydomain.Identity `json:"user"`
	Role            *string                  `json:"role"`
	IsAuthenticated bool                     `json:"isAuthenticated"`
	IsDemo          bool                     `json:"isDemo"`
	Loading         bool                     `json:"loading"`
}

// NewView converts a session state to its wire form.
func NewView(st domain.State) View {
	v := View{
		User:            st.Identity,
		IsAuthenticated: st.Authenticated,
		IsDemo:          st.IsDemo(),
		Loading:         st.Loading,
	}
	if st.Role.Valid() {
		role := string(st.Role)
		v.Role = &role
	}
	return v
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	httpjson.Success(w, http.StatusOK, NewView(h.svc.Snapshot()))
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid_body", "request body must be {email, password}")
		return
	}
	if req.Email == "" || req.Password == "" {
		httpjson.Error(w, http.StatusBadRequest, "invalid_body", "email and password are required")
		return
	}

	err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		var loginErr *service.LoginError
		var authErr *store.AuthError
		switch {
		case errors.Is(err, service.ErrNoBackend):
			httpjson.Error(w, http.StatusServiceUnavailable, "no_backend", err.Error())
		case errors.As(err, &authErr):
			httpjson.Error(w, http.StatusUnauthorized, "invalid_credentials", err.Error())
		case errors.As(err, &loginErr):
			httpjson.Error(w, http.StatusBadGateway, "login_failed", loginErr.Message)
		default:
			h.log.Error("login handler: unexpected error", zap.Error(err))
			httpjson.Error(w, http.StatusInternalServerError, "internal", "internal error")
		}
		return
	}
	httpjson.Success(w, http.StatusOK, NewView(h.svc.Snapshot()))
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	h.svc.Logout(r.Context())
	httpjson.Success(w, http.StatusOK, NewView(h.svc.Snapshot()))
}
