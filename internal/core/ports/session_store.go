package ports

import (
	"context"

	"github.com/garmentsource/storefront-gateway/internal/core/domain"
)

// RegisterInput carries a new buyer account's profile. The upstream assigns
// the BUYER role server-side.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Company  string
	Phone    string
}

// SessionStore is the single source of truth for who is logged in.
type SessionStore interface {
	// Login exchanges credentials with the upstream and stores the
	// resulting session. Existing sessions are untouched on failure.
	Login(ctx context.Context, email, password string) (*domain.Session, error)

	// Register creates a buyer account upstream and stores the resulting
	// session under the same contract as Login.
	Register(ctx context.Context, in RegisterInput) (*domain.Session, error)

	// Logout destroys the session for the given credential in memory and
	// in durable storage. Idempotent; performs no network calls.
	Logout(ctx context.Context, credential string) error

	// Lookup returns the live session for a credential, if any. Expired
	// sessions are treated as absent.
	Lookup(credential string) (*domain.Session, bool)

	// Restore loads all unexpired sessions from durable storage into
	// memory. Called once at boot, before the server accepts traffic.
	Restore(ctx context.Context) (int, error)

	// ResolveReturnPath picks the post-login destination: the recorded
	// path when its role prefix matches the session role, otherwise the
	// role's default landing.
	ResolveReturnPath(returnTo string, role domain.Role) string
}
