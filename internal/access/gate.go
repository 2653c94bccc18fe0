package access

import (
	"context"

	"go.uber.org/zap"

	"internship-portal/backend/internal/logger"
	sessiondomain "internship-portal/backend/internal/session/domain"
)

// SessionSource exposes the current session.
type SessionSource interface {
	Snapshot() sessiondomain.State
}

// Gate answers route decisions against the live session.
type Gate struct {
	sessions SessionSource
	decider  Decider
	log      *zap.Logger
}

// NewGate returns a gate. A nil decider uses the route table directly.
func NewGate(sessions SessionSource, decider Decider, log *zap.Logger) *Gate {
	if decider == nil {
		decider = TableDecider{}
	}
	return &Gate{sessions: sessions, decider: decider, log: logger.OrGlobal(log)}
}

// Check decides path for the current session. An engine failure falls back to the route table.
func (g *Gate) Check(ctx context.Context, path string) Decision {
	st := g.sessions.Snapshot()
	route, params, _ := Match(path)
	in := Input{
		Loading:       st.Loading,
		Authenticated: st.Authenticated,
		Role:          st.Role,
		Route:         route.Name,
	}
	d, err := g.decider.Decide(ctx, in)
	if err != nil {
		g.log.Warn("access: policy engine failed; using route table", zap.String("path", path), zap.Error(err))
		d = Decide(in)
	}
	if d.Outcome == OutcomeRender && route.Name != "" {
		d.Route = route.Name
		d.Params = params
	}
	return d
}
