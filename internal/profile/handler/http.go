// Package handler exposes the loaded profile over HTTP.
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"internship-portal/backend/internal/logger"
	"internship-portal/backend/internal/platform/httpjson"
	"internship-portal/backend/internal/platform/rbac"
	"internship-portal/backend/internal/profile/domain"
	"internship-portal/backend/internal/profile/service"
)

// ProfileService is the part of the profile resolver the handler needs.
type ProfileService interface {
	Current() *domain.Profile
	Loading() bool
	Lookup(emailOrID string) *domain.Profile
	Update(ctx context.Context, identityID string, u domain.Update) error
	AddRating(identityID string, rating domain.Rating) bool
}

type Handler struct {
	svc ProfileService
	log *zap.Logger
}

func NewHandler(svc ProfileService, log *zap.Logger) *Handler {
	return &Handler{svc: svc, log: logger.OrGlobal(log)}
}

// Routes mounts the profile endpoints on r. r must already run rbac.RequireSession.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/profile", h.current)
	r.Patch("/profile", h.update)
	r.Post("/profile/ratings", h.addRating)
	r.Get("/profiles/{key}", h.lookup)
}

func (h *Handler) current(w http.ResponseWriter, r *http.Request) {
	p := h.svc.Current()
	if p == nil {
		h.noProfile(w)
		return
	}
	httpjson.Success(w, http.StatusOK, p)
}

func (h *Handler) noProfile(w http.ResponseWriter) {
	if h.svc.Loading() {
		w.Header().Set("Retry-After", "1")
		httpjson.Error(w, http.StatusServiceUnavailable, "profile_loading", "profile is still loading")
		return
	}
	httpjson.Error(w, http.StatusNotFound, "no_profile", "no profile loaded")
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	st, _ := rbac.StateFrom(r.Context())
	var u domain.Update
	if err := httpjson.Decode(r, &u); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid_body", "request body must be a partial profile")
		return
	}
	if err := h.svc.Update(r.Context(), st.Identity.ID, u); err != nil {
		var upErr *service.UpdateError
		if errors.As(err, &upErr) {
			status := http.StatusBadGateway
			if errors.Is(err, service.ErrNoStore) {
				status = http.StatusServiceUnavailable
			}
			httpjson.Error(w, status, "update_failed", upErr.Message)
			return
		}
		h.log.Error("profile handler: update", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal", "internal error")
		return
	}
	p := h.svc.Current()
	if p == nil {
		p = h.svc.Lookup(st.Identity.ID)
	}
	if p == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	httpjson.Success(w, http.StatusOK, p)
}

type ratingRequest struct {
	UserID  string  `json:"userId"`
	Rating  float64 `json:"rating"`
	Comment string  `json:"comment"`
	Author  string  `json:"author"`
	Date    string  `json:"date"`
}

func (h *Handler) addRating(w http.ResponseWriter, r *http.Request) {
	st, _ := rbac.StateFrom(r.Context())
	var req ratingRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid_body", "request body must be a rating")
		return
	}
	rating := domain.Rating{Rating: req.Rating, Comment: req.Comment, Author: req.Author, Date: req.Date}
	if !rating.Valid() {
		httpjson.Error(w, http.StatusUnprocessableEntity, "invalid_rating", "rating must be between 0 and 5")
		return
	}
	target := req.UserID
	if target == "" {
		target = st.Identity.ID
	}
	if !h.svc.AddRating(target, rating) {
		h.noProfile(w)
		return
	}
	httpjson.Success(w, http.StatusOK, h.svc.Current())
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) {
	p := h.svc.Lookup(chi.URLParam(r, "key"))
	if p == nil {
		httpjson.Error(w, http.StatusNotFound, "not_found", "profile not found")
		return
	}
	httpjson.Success(w, http.StatusOK, p)
}
