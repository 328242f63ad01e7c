package domain

import (
	"strings"
	"time"
)

// Role determines which route subtree and which upstream capabilities a
// session may use.
type Role string

const (
	RoleBuyer    Role = "BUYER"
	RoleSeller   Role = "SELLER"
	RoleDesigner Role = "DESIGNER"
	RoleAdmin    Role = "ADMIN"
)

// Valid reports whether r is one of the four known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleBuyer, RoleSeller, RoleDesigner, RoleAdmin:
		return true
	}
	return false
}

// DefaultLanding returns the dashboard path a freshly authenticated session
// of this role lands on.
func (r Role) DefaultLanding() string {
	switch r {
	case RoleBuyer:
		return "/buyer"
	case RoleSeller:
		return "/seller"
	case RoleDesigner:
		return "/designer"
	case RoleAdmin:
		return "/admin"
	}
	return "/"
}

// RolePrefix returns the role owning the first path segment of p, if the
// segment is one of the four role dashboards.
func RolePrefix(p string) (Role, bool) {
	seg := strings.TrimPrefix(p, "/")
	if i := strings.IndexByte(seg, '/'); i >= 0 {
		seg = seg[:i]
	}
	switch seg {
	case "buyer":
		return RoleBuyer, true
	case "seller":
		return RoleSeller, true
	case "designer":
		return RoleDesigner, true
	case "admin":
		return RoleAdmin, true
	}
	return "", false
}

// Identity is the human principal behind a session.
type Identity struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Session is the gateway-held record of an authenticated principal and the
// bearer credential the upstream issued for them. A session is either fully
// populated or absent; partial sessions are never stored.
type Session struct {
	Identity   Identity  `json:"identity"`
	Role       Role      `json:"role"`
	Credential string    `json:"-"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Complete reports whether every field required for a usable session is set.
func (s *Session) Complete() bool {
	return s != nil && s.Identity.Email != "" && s.Role.Valid() && s.Credential != ""
}

// Expired reports whether the credential's lifetime has passed. A zero
// ExpiresAt means the upstream issued no expiry.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}
