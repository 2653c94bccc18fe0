// Package handler serves route gate decisions over HTTP.
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"internship-portal/backend/internal/access"
	"internship-portal/backend/internal/platform/httpjson"
)

// Checker decides a path against the live session. *access.Gate satisfies it.
type Checker interface {
	Check(ctx context.Context, path string) access.Decision
}

type Handler struct {
	gate Checker
}

func NewHandler(gate Checker) *Handler {
	return &Handler{gate: gate}
}

// Routes mounts GET /routes/* on r; the wildcard is the front-end path to check.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/routes", h.check)
	r.Get("/routes/*", h.check)
}

// check answers 200 for waiting, render and incomplete_account decisions and 303
// with Location for redirects. The decision is the body in every case.
func (h *Handler) check(w http.ResponseWriter, r *http.Request) {
	d := h.gate.Check(r.Context(), "/"+chi.URLParam(r, "*"))
	status := http.StatusOK
	if d.Location != "" {
		w.Header().Set("Location", d.Location)
		status = http.StatusSeeOther
	}
	httpjson.Success(w, status, d)
}
