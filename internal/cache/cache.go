// Package cache implements the remote data cache: a declarative cache of
// upstream resources keyed by (resource tag, serialized arguments), kept
// coherent after writes by tag invalidation.
//
// Coherence spans gateway instances through redis-backed tag version
// counters: a mutation bumps the versions of the tags it invalidates, and a
// cached payload is only served while the versions recorded at fill time
// still match.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/garmentsource/storefront-gateway/internal/api/metrics"
	"github.com/garmentsource/storefront-gateway/internal/core/domain"
	"github.com/garmentsource/storefront-gateway/internal/core/ports"
)

const defaultGCLinger = 30 * time.Second

// Status is the lifecycle state of a cache entry.
type Status int

const (
	StatusUninitialized Status = iota
	StatusLoading
	StatusReady
	StatusError
)

// Key identifies one cached query.
type Key struct {
	Tag  domain.Tag
	Args string
}

func (k Key) String() string {
	return string(k.Tag) + "?" + k.Args
}

type entry struct {
	status   Status
	payload  []byte
	tags     domain.TagSet
	versions map[domain.Tag]int64
	stale    bool
	refs     int
	fetch    ports.FetchFunc
	gcTimer  *time.Timer
}

// Cache is the process-wide resource cache. Safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	entries map[Key]*entry

	group    singleflight.Group
	versions ports.TagVersions
	refresh  ports.Refresher
	log      zerolog.Logger
	gcLinger time.Duration
}

// New returns an empty cache backed by the given tag version store.
func New(versions ports.TagVersions, log zerolog.Logger) *Cache {
	// Prime the per-tag label sets so every tag reports from zero.
	for _, t := range domain.AllTags {
		metrics.CacheHitsTotal.WithLabelValues(string(t))
		metrics.CacheMissesTotal.WithLabelValues(string(t))
		metrics.CacheInvalidationsTotal.WithLabelValues(string(t))
	}

	return &Cache{
		entries:  make(map[Key]*entry),
		versions: versions,
		log:      log,
		gcLinger: defaultGCLinger,
	}
}

// AttachRefresher enables eager background refetches of observed entries
// after invalidation. Without one, stale entries refetch lazily on next read.
func (c *Cache) AttachRefresher(r ports.Refresher) {
	c.mu.Lock()
	c.refresh = r
	c.mu.Unlock()
}

// Query returns the payload for (tag, args), fetching it at most once across
// concurrent identical queries. tags lists every resource class the payload
// depends on and always includes the key's own tag.
func (c *Cache) Query(ctx context.Context, tag domain.Tag, args string, tags domain.TagSet, fetch ports.FetchFunc) ([]byte, error) {
	key := Key{Tag: tag, Args: args}

	c.mu.Lock()
	e := c.entries[key]
	if e != nil && e.status == StatusReady && !e.stale {
		payload := e.payload
		filled := e.versions
		c.mu.Unlock()

		if c.fresh(ctx, tags, filled) {
			metrics.CacheHitsTotal.WithLabelValues(string(tag)).Inc()
			return payload, nil
		}
	} else {
		c.mu.Unlock()
	}

	metrics.CacheMissesTotal.WithLabelValues(string(tag)).Inc()
	return c.fill(ctx, key, tags, fetch)
}

// fresh compares the versions recorded at fill time against the version
// store. A version-store outage degrades to serving the cached payload;
// in-process invalidation still applies through the stale flag.
func (c *Cache) fresh(ctx context.Context, tags domain.TagSet, filled map[domain.Tag]int64) bool {
	current, err := c.versions.Current(ctx, tags)
	if err != nil {
		c.log.Warn().Err(err).Msg("tag version check failed; serving cached payload")
		return true
	}
	for t, v := range current {
		if filled[t] != v {
			return false
		}
	}
	return true
}

// fill runs one fetch for all concurrent callers of the same key and stores
// the result. Tag versions are snapshotted before the fetch so a mutation
// racing with it leaves the entry stale rather than silently fresh.
func (c *Cache) fill(ctx context.Context, key Key, tags domain.TagSet, fetch ports.FetchFunc) ([]byte, error) {
	v, err, _ := c.group.Do(key.String(), func() (any, error) {
		snapshot, verr := c.versions.Current(ctx, tags)
		if verr != nil {
			c.log.Warn().Err(verr).Msg("tag version snapshot failed")
			snapshot = nil
		}

		c.mu.Lock()
		e := c.ensureLocked(key)
		e.status = StatusLoading
		c.mu.Unlock()

		payload, ferr := fetch(ctx)

		c.mu.Lock()
		defer c.mu.Unlock()
		e = c.ensureLocked(key)
		e.tags = tags
		e.fetch = fetch
		if ferr != nil {
			e.status = StatusError
			e.payload = nil
			e.versions = nil
			return nil, ferr
		}
		e.status = StatusReady
		e.payload = payload
		e.versions = snapshot
		e.stale = false
		return payload, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Mutate runs do and, on success, invalidates every cached query whose tag
// set intersects invalidates. The mutation's payload is returned verbatim.
func (c *Cache) Mutate(ctx context.Context, invalidates domain.TagSet, do ports.FetchFunc) ([]byte, error) {
	payload, err := do(ctx)
	if err != nil {
		return nil, err
	}
	c.Invalidate(ctx, invalidates)
	return payload, nil
}

// Invalidate marks every entry sharing one of the given tags stale. Entries
// with a mounted observer are handed to the refresher for an eager refetch;
// the rest refetch lazily on next read.
func (c *Cache) Invalidate(ctx context.Context, tags domain.TagSet) {
	if err := c.versions.Bump(ctx, tags); err != nil {
		c.log.Warn().Err(err).Msg("tag version bump failed; invalidation is local only")
	}
	for _, t := range tags {
		metrics.CacheInvalidationsTotal.WithLabelValues(string(t)).Inc()
	}

	var jobs []ports.RefreshJob
	c.mu.Lock()
	for key, e := range c.entries {
		if !e.tags.Intersects(tags) {
			continue
		}
		e.stale = true
		if e.refs > 0 && e.fetch != nil && c.refresh != nil {
			k := key
			jobs = append(jobs, ports.RefreshJob{
				Key: k.String(),
				Run: func(ctx context.Context) error { return c.Refetch(ctx, k) },
			})
		}
	}
	refresh := c.refresh
	c.mu.Unlock()

	// Enqueue outside the lock: the refresher's channels may block at
	// capacity.
	for _, job := range jobs {
		refresh.Enqueue(job)
	}
}

// Refetch re-runs the stored fetch for key. Used by the refresher.
func (c *Cache) Refetch(ctx context.Context, key Key) error {
	c.mu.Lock()
	e := c.entries[key]
	if e == nil || e.fetch == nil {
		c.mu.Unlock()
		return nil
	}
	tags, fetch := e.tags, e.fetch
	c.mu.Unlock()

	_, err := c.fill(ctx, key, tags, fetch)
	return err
}

// Observe marks (tag, args) as having a mounted consumer. The returned
// release drops the reference; once an entry has no observers it is
// garbage-collected after a short linger.
func (c *Cache) Observe(tag domain.Tag, args string) func() {
	key := Key{Tag: tag, Args: args}

	c.mu.Lock()
	e := c.ensureLocked(key)
	e.refs++
	if e.gcTimer != nil {
		e.gcTimer.Stop()
		e.gcTimer = nil
	}
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { c.release(key) })
	}
}

func (c *Cache) release(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.entries[key]
	if e == nil {
		return
	}
	e.refs--
	if e.refs > 0 {
		return
	}
	e.gcTimer = time.AfterFunc(c.gcLinger, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if cur := c.entries[key]; cur != nil && cur.refs <= 0 {
			delete(c.entries, key)
		}
	})
}

// Entry reports the status of a cached key. Intended for tests and probes.
func (c *Cache) Entry(tag domain.Tag, args string) (Status, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[Key{Tag: tag, Args: args}]
	if !ok {
		return StatusUninitialized, false
	}
	return e.status, true
}

func (c *Cache) ensureLocked(key Key) *entry {
	e := c.entries[key]
	if e == nil {
		e = &entry{status: StatusUninitialized}
		c.entries[key] = e
	}
	return e
}

// SetGCLinger overrides the zero-observer linger. Intended for tests.
func (c *Cache) SetGCLinger(d time.Duration) {
	c.mu.Lock()
	c.gcLinger = d
	c.mu.Unlock()
}

var _ ports.ResourceCache = (*Cache)(nil)

// ArgsFromPairs serializes query arguments deterministically: pairs are
// joined as k=v with '&', in the order given. Callers pass pairs in a fixed
// order so identical queries always produce identical keys.
func ArgsFromPairs(pairs ...string) string {
	if len(pairs)%2 != 0 {
		panic("cache: ArgsFromPairs requires key/value pairs")
	}
	var b []byte
	for i := 0; i < len(pairs); i += 2 {
		if i > 0 {
			b = append(b, '&')
		}
		b = append(b, pairs[i]...)
		b = append(b, '=')
		b = append(b, pairs[i+1]...)
	}
	return string(b)
}
