package queue

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/garmentsource/storefront-gateway/internal/api/metrics"
	"github.com/garmentsource/storefront-gateway/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 64
)

// Refresher runs eager cache refetches on a fixed set of workers, sharding
// jobs by cache key with consistent hashing so refreshes of the same entry
// never interleave.
type Refresher struct {
	workers []chan ports.RefreshJob
	log     zerolog.Logger
}

// NewRefresher creates a Refresher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewRefresher(numWorkers int, log zerolog.Logger) *Refresher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	r := &Refresher{
		workers: make([]chan ports.RefreshJob, numWorkers),
		log:     log,
	}
	for i := range r.workers {
		r.workers[i] = make(chan ports.RefreshJob, channelBuffer)
	}
	return r
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (r *Refresher) Start(ctx context.Context) {
	for i, ch := range r.workers {
		go r.runWorker(ctx, i, ch)
	}
}

// Enqueue sends a job to the worker responsible for its key. The call is
// non-blocking up to channelBuffer capacity.
func (r *Refresher) Enqueue(job ports.RefreshJob) {
	i := r.shardIndex(job.Key)
	r.workers[i] <- job
	metrics.RefreshQueueDepth.WithLabelValues(strconv.Itoa(i)).Set(float64(len(r.workers[i])))
}

// shardIndex maps a cache key deterministically to a worker index.
func (r *Refresher) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32()) % len(r.workers)
}

func (r *Refresher) runWorker(ctx context.Context, id int, ch <-chan ports.RefreshJob) {
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-ch:
			if !ok {
				return
			}
			metrics.RefreshQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			if err := job.Run(ctx); err != nil {
				r.log.Error().Err(err).
					Str("key", job.Key).
					Int("worker_id", id).
					Msg("cache refresh failed")
			}
		}
	}
}
