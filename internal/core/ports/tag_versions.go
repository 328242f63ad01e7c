package ports

import (
	"context"

	"github.com/garmentsource/storefront-gateway/internal/core/domain"
)

// TagVersions tracks a monotonically increasing version per resource tag.
// Bumping a tag's version is how one gateway instance tells the others (and
// its future restarted self) that cached payloads under that tag are stale.
type TagVersions interface {
	Bump(ctx context.Context, tags domain.TagSet) error
	Current(ctx context.Context, tags domain.TagSet) (map[domain.Tag]int64, error)
}
