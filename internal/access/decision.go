package access

import (
	"context"

	identitydomain "internship-portal/backend/internal/identity/domain"
)

// Outcome is what the front end should do for a path.
type Outcome string

const (
	OutcomeWaiting           Outcome = "waiting"
	OutcomeRender            Outcome = "render"
	OutcomeRedirectLogin     Outcome = "redirect_login"
	OutcomeRedirectHome      Outcome = "redirect_home"
	OutcomeIncompleteAccount Outcome = "incomplete_account"
)

// Views that are not route names.
const (
	ViewWaiting           = "waiting"
	ViewIncompleteAccount = "incomplete-account"
)

const (
	LocationLogin = "/login"
	LocationHome  = "/"
)

// Input is everything a decision depends on. Route is empty for unknown paths.
type Input struct {
	Loading       bool                `json:"loading"`
	Authenticated bool                `json:"authenticated"`
	Role          identitydomain.Role `json:"role"`
	Route         RouteName           `json:"route"`
}

// Decision is the gate's answer for one path.
type Decision struct {
	Outcome  Outcome           `json:"outcome"`
	View     string            `json:"view,omitempty"`
	Location string            `json:"location,omitempty"`
	Route    RouteName         `json:"route,omitempty"`
	Params   map[string]string `json:"params,omitempty"`
}

// Decider computes a Decision from an Input.
type Decider interface {
	Decide(ctx context.Context, in Input) (Decision, error)
}

// Decide applies the route table. It is pure and total.
func Decide(in Input) Decision {
	switch {
	case in.Loading:
		return Decision{Outcome: OutcomeWaiting, View: ViewWaiting}
	case !in.Authenticated:
		if r, ok := Lookup(in.Route); ok && r.Class == ClassAnonymous {
			return render(string(r.Name))
		}
		return Decision{Outcome: OutcomeRedirectLogin, Location: LocationLogin}
	case !in.Role.Valid():
		return Decision{Outcome: OutcomeIncompleteAccount, View: ViewIncompleteAccount}
	}

	r, ok := Lookup(in.Route)
	if !ok {
		return redirectHome()
	}
	switch r.Class {
	case ClassHome:
		return render(DashboardView(in.Role))
	case ClassShared:
		return render(string(r.Name))
	case ClassRestricted:
		if r.Allows(in.Role) {
			return render(string(r.Name))
		}
	}
	return redirectHome()
}

// DashboardView names the home view of role.
func DashboardView(role identitydomain.Role) string {
	return string(role) + "-dashboard"
}

func render(view string) Decision {
	return Decision{Outcome: OutcomeRender, View: view}
}

func redirectHome() Decision {
	return Decision{Outcome: OutcomeRedirectHome, Location: LocationHome}
}

// TableDecider is the in-process Decider backed by Decide.
type TableDecider struct{}

func (TableDecider) Decide(_ context.Context, in Input) (Decision, error) {
	return Decide(in), nil
}
