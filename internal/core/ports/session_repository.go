package ports

import (
	"context"

	"github.com/garmentsource/storefront-gateway/internal/core/domain"
)

// SessionRepository persists sessions durably so they survive gateway
// restarts. Keys are SHA-256 hex digests of the bearer credential.
type SessionRepository interface {
	Save(ctx context.Context, tokenHash string, s *domain.Session) error
	Delete(ctx context.Context, tokenHash string) error
	LoadAll(ctx context.Context) (map[string]*domain.Session, error)
}
