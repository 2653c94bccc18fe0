// Package access decides what the front end may show for a path given the live session.
package access

import (
	"slices"
	"strings"

	identitydomain "internship-portal/backend/internal/identity/domain"
)

// RouteName identifies a portal page.
type RouteName string

const (
	RouteHome             RouteName = "home"
	RouteLogin            RouteName = "login"
	RouteRegister         RouteName = "register"
	RouteProfile          RouteName = "profile"
	RouteStudentProfile   RouteName = "student-profile"
	RouteMessages         RouteName = "messages"
	RouteApplication      RouteName = "application-tracking"
	RouteConvention       RouteName = "convention"
	RouteEvaluations      RouteName = "evaluations"
	RouteCandidates       RouteName = "candidates"
	RouteReports          RouteName = "reports"
	RouteConventionsAdmin RouteName = "conventions-admin"
)

// Class is how a route is gated.
type Class int

const (
	// ClassAnonymous routes render only for signed-out visitors.
	ClassAnonymous Class = iota
	// ClassHome renders the dashboard of the signed-in role.
	ClassHome
	// ClassShared routes render for any role.
	ClassShared
	// ClassRestricted routes render only for the roles listed on the route.
	ClassRestricted
)

// Route is one entry of the route table. Pattern segments starting with ':' are parameters.
type Route struct {
	Name    RouteName
	Pattern string
	Class   Class
	Roles   []identitydomain.Role
}

// Allows reports whether role may open a restricted route.
func (r Route) Allows(role identitydomain.Role) bool {
	return slices.Contains(r.Roles, role)
}

var (
	studentOnly = []identitydomain.Role{identitydomain.RoleStudent}
	companyOnly = []identitydomain.Role{identitydomain.RoleCompany}
	adminOnly   = []identitydomain.Role{identitydomain.RoleAdmin}
)

var routes = []Route{
	{Name: RouteHome, Pattern: "/", Class: ClassHome},
	{Name: RouteLogin, Pattern: "/login", Class: ClassAnonymous},
	{Name: RouteRegister, Pattern: "/register", Class: ClassAnonymous},
	{Name: RouteProfile, Pattern: "/profile", Class: ClassShared},
	{Name: RouteStudentProfile, Pattern: "/student/:studentId", Class: ClassShared},
	{Name: RouteMessages, Pattern: "/messages", Class: ClassShared},
	{Name: RouteApplication, Pattern: "/application/:applicationId", Class: ClassRestricted, Roles: studentOnly},
	{Name: RouteConvention, Pattern: "/convention", Class: ClassRestricted, Roles: studentOnly},
	{Name: RouteEvaluations, Pattern: "/evaluations", Class: ClassRestricted, Roles: studentOnly},
	{Name: RouteCandidates, Pattern: "/candidates", Class: ClassRestricted, Roles: companyOnly},
	{Name: RouteReports, Pattern: "/reports", Class: ClassRestricted, Roles: adminOnly},
	{Name: RouteConventionsAdmin, Pattern: "/conventions", Class: ClassRestricted, Roles: adminOnly},
}

// Routes returns a copy of the route table.
func Routes() []Route {
	return slices.Clone(routes)
}

// Lookup returns the route named name.
func Lookup(name RouteName) (Route, bool) {
	for _, r := range routes {
		if r.Name == name {
			return r, true
		}
	}
	return Route{}, false
}

// Match finds the route for path and extracts its parameters. The query string
// and a trailing slash are ignored.
func Match(path string) (Route, map[string]string, bool) {
	segs := split(path)
	for _, r := range routes {
		if params, ok := matchPattern(split(r.Pattern), segs); ok {
			return r, params, true
		}
	}
	return Route{}, nil, false
}

func split(path string) []string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

func matchPattern(pattern, segs []string) (map[string]string, bool) {
	if len(pattern) != len(segs) {
		return nil, false
	}
	var params map[string]string
	for i, p := range pattern {
		if name, ok := strings.CutPrefix(p, ":"); ok {
			if segs[i] == "" {
				return nil, false
			}
			if params == nil {
				params = make(map[string]string, 1)
			}
			params[name] = segs[i]
			continue
		}
		if p != segs[i] {
			return nil, false
		}
	}
	return params, true
}
