package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/garmentsource/storefront-gateway/internal/core/domain"
)

// TagVersions stores a monotonically increasing counter per resource tag.
// Key format: tagver:<tag>
//
// Counters are bumped on mutation success and compared on every cache read,
// so invalidation survives gateway restarts and spans instances sharing the
// same Redis.
type TagVersions struct {
	client *redis.Client
}

// NewTagVersions creates a TagVersions wrapping the given Redis client.
func NewTagVersions(client *redis.Client) *TagVersions {
	return &TagVersions{client: client}
}

// Bump increments the version of every given tag atomically.
func (t *TagVersions) Bump(ctx context.Context, tags domain.TagSet) error {
	pipe := t.client.Pipeline()
	for _, tag := range tags {
		pipe.Incr(ctx, t.key(tag))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("bump tag versions: %w", err)
	}
	return nil
}

// Current returns the version of every given tag. Tags never bumped report
// version 0.
func (t *TagVersions) Current(ctx context.Context, tags domain.TagSet) (map[domain.Tag]int64, error) {
	keys := make([]string, len(tags))
	for i, tag := range tags {
		keys[i] = t.key(tag)
	}

	vals, err := t.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("read tag versions: %w", err)
	}

	out := make(map[domain.Tag]int64, len(tags))
	for i, tag := range tags {
		var v int64
		if s, ok := vals[i].(string); ok {
			v, _ = strconv.ParseInt(s, 10, 64)
		}
		out[tag] = v
	}
	return out, nil
}

func (t *TagVersions) key(tag domain.Tag) string {
	return "tagver:" + string(tag)
}
