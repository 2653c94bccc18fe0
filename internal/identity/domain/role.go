package domain

import "strings"

// Role is the coarse capability class of a signed-in user.
// RoleNone means the identity is authenticated but no role could be resolved.
type Role string

const (
	RoleNone    Role = ""
	RoleStudent Role = "student"
	RoleCompany Role = "company"
	RoleAdmin   Role = "admin"
)

// ParseRole maps a stored role label to a Role. Both the English names and the
// labels used by the portal database (etudiant, entreprise, administration) are accepted.
func ParseRole(s string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "student", "etudiant":
		return RoleStudent, true
	case "company", "entreprise":
		return RoleCompany, true
	case "admin", "administration":
		return RoleAdmin, true
	}
	return RoleNone, false
}

// Valid reports whether r is one of the three portal roles.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleCompany || r == RoleAdmin
}

func (r Role) String() string {
	if r == RoleNone {
		return "none"
	}
	return string(r)
}
