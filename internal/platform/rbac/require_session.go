// Package rbac gates HTTP handlers on the agent's live session.
package rbac

import (
	"context"
	"net/http"

	"internship-portal/backend/internal/platform/httpjson"
	"internship-portal/backend/internal/session/domain"
)

// SessionSource exposes the current session. *service.Manager satisfies it.
type SessionSource interface {
	Snapshot() domain.State
}

type stateKey struct{}

// WithState returns a context carrying st.
func WithState(ctx context.Context, st domain.State) context.Context {
	return context.WithValue(ctx, stateKey{}, st)
}

// StateFrom returns the session state stored by RequireSession.
func StateFrom(ctx context.Context) (domain.State, bool) {
	st, ok := ctx.Value(stateKey{}).(domain.State)
	return st, ok
}

// RequireSession lets a request through only with a settled, signed-in session
// that has a role: 503 while bootstrapping, 401 when signed out, 403 when roleless.
// The snapshot taken here is stored in the request context.
func RequireSession(src SessionSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			st := src.Snapshot()
			switch {
			case st.Loading:
				w.Header().Set("Retry-After", "1")
				httpjson.Error(w, http.StatusServiceUnavailable, "session_loading", "session is still loading")
				return
			case !st.Authenticated:
				httpjson.Error(w, http.StatusUnauthorized, "unauthenticated", "sign in required")
				return
			case !st.Role.Valid():
				httpjson.Error(w, http.StatusForbidden, "incomplete_account", "account has no role assigned")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithState(r.Context(), st)))
		})
	}
}
