package ports

import "context"

// RefreshJob refetches one cache entry. Key shards the job onto a worker so
// refreshes of the same entry stay ordered.
type RefreshJob struct {
	Key string
	Run func(ctx context.Context) error
}

// Refresher executes refresh jobs in the background.
type Refresher interface {
	Enqueue(job RefreshJob)
}
