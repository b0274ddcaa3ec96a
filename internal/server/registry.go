package server

import (
	"sync"

	"github.com/paperlab/oshiete/internal/finder"
	"github.com/paperlab/oshiete/internal/tutor"
)

// sessionEntry pairs a controller with its find-in-paper index and the mutex
// that serializes events against it. The controller itself is not safe for
// concurrent use.
type sessionEntry struct {
	mu     sync.Mutex
	ctl    *tutor.Controller
	finder *finder.Finder
}

// registry holds the live sessions keyed by session ID.
type registry struct {
	mu      sync.RWMutex
	entries map[string]*sessionEntry
}

func newRegistry() *registry {
	return &registry{entries: make(map[string]*sessionEntry)}
}

func (r *registry) add(id string, entry *sessionEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[id] = entry
}

func (r *registry) get(id string) (*sessionEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[id]
	return entry, ok
}

func (r *registry) remove(id string) (*sessionEntry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[id]
	if ok {
		delete(r.entries, id)
	}
	return entry, ok
}

func (r *registry) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
