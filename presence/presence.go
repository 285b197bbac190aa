// Package presence cleans up presence records leaked by clients that
// disconnected without deleting their own document.
package presence

import (
	"context"
	"time"

	"github.com/teenchurch/community/store"
)

// DefaultMaxAge is how long a presence document may go without a heartbeat
// before it is considered stale. Clients refresh every 30 seconds.
const DefaultMaxAge = 5 * time.Minute

type Reaper struct {
	store  store.Store
	maxAge time.Duration
	now    func() time.Time
}

func NewReaper(s store.Store, maxAge time.Duration) *Reaper {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &Reaper{store: s, maxAge: maxAge, now: time.Now}
}

// Reap deletes every presence document whose last heartbeat is older than
// the max age and returns how many were removed.
func (r *Reaper) Reap(ctx context.Context) (int, error) {
	cutoff := r.now().Add(-r.maxAge)
	ids, err := r.store.StalePresence(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	if err := r.store.DeletePresence(ctx, ids); err != nil {
		return 0, err
	}
	return len(ids), nil
}
