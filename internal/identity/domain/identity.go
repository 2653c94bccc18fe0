package domain

import "strings"

// AuthProvider names where an Identity was issued.
type AuthProvider string

const (
	AuthProviderReal AuthProvider = "real"
	AuthProviderDemo AuthProvider = "demo"
)

// Identity is an authenticated principal without role or profile attached.
// RoleHint is the role carried in the provider's own account metadata; it is
// only consulted when the role table has nothing for the identity.
type Identity struct {
	ID       string       `json:"id"`
	Email    string       `json:"email"`
	Provider AuthProvider `json:"authProvider"`
	RoleHint string       `json:"-"`
}

// IsDemo reports whether the identity came from the fixed demo table.
func (i *Identity) IsDemo() bool {
	return i != nil && i.Provider == AuthProviderDemo
}

// Credential is the stored sign-in record of a real account.
type Credential struct {
	UserID       string
	Email        string
	PasswordHash string
	MetadataRole string
}

// NormalizeEmail lowercases and trims an email for lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
