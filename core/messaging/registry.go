package messaging

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

// Registry holds the set of conversations visible to the user, in the order
// the server returned them (sorted by last activity server-side).
type Registry struct {
	tr Transport

	mu      sync.RWMutex
	loading bool
	loaded  bool
	threads []Thread
	index   map[string]int
}

func NewRegistry(tr Transport) *Registry {
	return &Registry{tr: tr, index: make(map[string]int)}
}

// Refresh replaces the snapshot atomically on success. On failure the
// previous snapshot is kept: stale data is preferable to blanking the view.
// Concurrent refreshes are allowed; last write wins, both being current truth
// from the server.
func (r *Registry) Refresh(ctx context.Context) error {
	r.mu.Lock()
	r.loading = true
	r.mu.Unlock()

	threads, err := r.tr.ListThreads(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.loading = false
	if err != nil {
		return errors.Wrap(err, "refreshing threads")
	}
	r.replace(threads)
	return nil
}

func (r *Registry) replace(threads []Thread) {
	r.threads = threads
	r.index = make(map[string]int, len(threads))
	for i, t := range threads {
		r.index[t.ID] = i
	}
	r.loaded = true
}

// Insert makes a newly created thread visible without waiting for a full
// refresh round-trip. A later Refresh reconciles preview and ordering.
func (r *Registry) Insert(t Thread) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i, ok := r.index[t.ID]; ok {
		r.threads[i] = t
		return
	}
	r.index[t.ID] = len(r.threads)
	r.threads = append(r.threads, t)
}

func (r *Registry) Get(id string) (Thread, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i, ok := r.index[id]; ok {
		return r.threads[i], true
	}
	return Thread{}, false
}

func (r *Registry) Threads() []Thread {
	r.mu.RLock()
	defer r.mu.RUnlock()
	threads := make([]Thread, len(r.threads))
	copy(threads, r.threads)
	return threads
}

// First returns the thread the server listed first, used as the default
// selection when none is active. This is a UX convenience, not an ordering
// guarantee of ours.
func (r *Registry) First() (Thread, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.threads) == 0 {
		return Thread{}, false
	}
	return r.threads[0], true
}

func (r *Registry) Loaded() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loaded
}

func (r *Registry) Loading() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loading
}
