// Package engine evaluates the route access policy with OPA Rego.
package engine

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/open-policy-agent/opa/v1/rego"

	"internship-portal/backend/internal/access"
)

const decisionQuery = "data.portal.access.decision"

//go:embed access.rego
var defaultPolicy string

// DefaultPolicy returns the built-in Rego access policy.
func DefaultPolicy() string { return defaultPolicy }

// OPADecider implements access.Decider by evaluating a Rego policy in process.
type OPADecider struct {
	query rego.PreparedEvalQuery
}

// NewOPADecider compiles policy, or the built-in policy when policy is empty.
func NewOPADecider(ctx context.Context, policy string) (*OPADecider, error) {
	if policy == "" {
		policy = defaultPolicy
	}
	compiler, err := ast.CompileModules(map[string]string{"access.rego": policy})
	if err != nil {
		return nil, fmt.Errorf("compile access policy: %w", err)
	}
	q, err := rego.New(
		rego.Query(decisionQuery),
		rego.Compiler(compiler),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("prepare access policy: %w", err)
	}
	return &OPADecider{query: q}, nil
}

// Decide evaluates the policy for in. An undefined or malformed decision is an error.
func (d *OPADecider) Decide(ctx context.Context, in access.Input) (access.Decision, error) {
	input := map[string]interface{}{
		"loading":       in.Loading,
		"authenticated": in.Authenticated,
		"role":          string(in.Role),
		"route":         string(in.Route),
	}
	rs, err := d.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return access.Decision{}, fmt.Errorf("eval access policy: %w", err)
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return access.Decision{}, errors.New("access policy returned no decision")
	}
	obj, ok := rs[0].Expressions[0].Value.(map[string]interface{})
	if !ok {
		return access.Decision{}, fmt.Errorf("access policy decision has type %T", rs[0].Expressions[0].Value)
	}
	out := access.Decision{
		Outcome:  access.Outcome(stringField(obj, "outcome")),
		View:     stringField(obj, "view"),
		Location: stringField(obj, "location"),
	}
	if out.Outcome == "" {
		return access.Decision{}, errors.New("access policy decision has no outcome")
	}
	return out, nil
}

// HealthCheck evaluates the loaded policy for a signed-out visitor on /login.
func (d *OPADecider) HealthCheck(ctx context.Context) error {
	got, err := d.Decide(ctx, access.Input{Route: access.RouteLogin})
	if err != nil {
		return err
	}
	if got.Outcome != access.OutcomeRender {
		return fmt.Errorf("access policy health: unexpected outcome %q for /login", got.Outcome)
	}
	return nil
}

func stringField(obj map[string]interface{}, key string) string {
	s, _ := obj[key].(string)
	return s
}
