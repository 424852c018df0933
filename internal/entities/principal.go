package entities

import "fmt"

// Claims represents the verified authentication claims supplied by the auth
// collaborator. Any field may be empty: tokens for invited users carry an
// email or phone number before a stable user ID exists.
type Claims struct {
	UserID   string
	Email    string
	Phone    string
	Username string
}

// Principal represents the caller whose visibility is being computed.
// It is built once per request from verified claims and never mutated
// afterwards.
type Principal struct {
	UserID   string
	Email    string
	Phone    string
	Username string

	// Admin is derived at construction from the injected admin email
	// allow-list (or forced for API key callers) and is immutable for the
	// Principal's lifetime.
	Admin bool

	// ViaAPIKey marks a machine caller. Row-level checks are bypassed in
	// favor of the static super admin permission list.
	ViaAPIKey bool
}

// NewPrincipal creates a Principal from verified claims.
// adminEmails is the injected admin allow-list; it is consulted exactly once.
func NewPrincipal(claims Claims, adminEmails []string) Principal {
	admin := false
	for _, email := range adminEmails {
		if email != "" && email == claims.Email {
			admin = true
			break
		}
	}
	return Principal{
		UserID:   claims.UserID,
		Email:    claims.Email,
		Phone:    claims.Phone,
		Username: claims.Username,
		Admin:    admin,
	}
}

// NewAPIKeyPrincipal creates a machine-caller Principal.
// API key callers act with the static super admin permission list and bypass
// per-row checks entirely.
func NewAPIKeyPrincipal() Principal {
	return Principal{
		Admin:     true,
		ViaAPIKey: true,
	}
}

// Authenticated reports whether the principal carries an identity.
func (p Principal) Authenticated() bool {
	return p.UserID != "" || p.ViaAPIKey
}

// String returns a representation suitable for audit logs.
func (p Principal) String() string {
	switch {
	case p.ViaAPIKey:
		return "apikey"
	case p.UserID != "":
		return fmt.Sprintf("user:%s", p.UserID)
	default:
		return "anonymous"
	}
}
