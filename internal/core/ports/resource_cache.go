package ports

import (
	"context"

	"github.com/garmentsource/storefront-gateway/internal/core/domain"
)

// FetchFunc performs the actual upstream call for a query or mutation.
type FetchFunc func(ctx context.Context) ([]byte, error)

// ResourceCache deduplicates and caches upstream reads, and keeps them
// coherent after writes via tag invalidation.
type ResourceCache interface {
	// Query returns the cached payload for (tag, args) or runs fetch.
	// Concurrent queries for the same identity share one in-flight fetch.
	// tags lists every resource class the payload depends on; it always
	// includes the key's own tag.
	Query(ctx context.Context, tag domain.Tag, args string, tags domain.TagSet, fetch FetchFunc) ([]byte, error)

	// Mutate runs do and, on success, invalidates every cached query whose
	// tag set intersects invalidates. Invalidation is applied in
	// response-arrival order.
	Mutate(ctx context.Context, invalidates domain.TagSet, do FetchFunc) ([]byte, error)

	// Observe marks (tag, args) as having a mounted consumer, making it
	// eligible for eager refresh after invalidation. The returned release
	// drops the reference; unobserved entries are garbage-collected.
	Observe(tag domain.Tag, args string) (release func())
}
