package store

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

type entry struct {
	store    *SavedRecipes
	lastUsed time.Time
}

// Registry owns one SavedRecipes per session. Each session's collection is
// persisted under "<baseKey>:<sessionID>". Stores that have not been used
// for a while can be dropped with Evict; they are reloaded on the next Get.
type Registry struct {
	medium  Medium
	baseKey string
	log     *zap.Logger
	opts    []Option
	now     func() time.Time

	mu     sync.Mutex
	stores map[string]*entry
}

// NewRegistry creates a registry whose stores share medium
func NewRegistry(medium Medium, baseKey string, log *zap.Logger, opts ...Option) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		medium:  medium,
		baseKey: baseKey,
		log:     log,
		opts:    opts,
		now:     time.Now,
		stores:  make(map[string]*entry),
	}
}

// Get returns the store of sessionID, creating and loading it on first use.
// A store whose load failed is returned not ready and is loaded again on the
// next Get.
func (r *Registry) Get(ctx context.Context, sessionID string) *SavedRecipes {
	r.mu.Lock()
	e, ok := r.stores[sessionID]
	if !ok {
		e = &entry{store: NewSavedRecipes(r.medium, r.Key(sessionID), r.log, r.opts...)}
		r.stores[sessionID] = e
	}
	e.lastUsed = r.now()
	s := e.store
	r.mu.Unlock()

	// Initialize serializes on the store's own lock and loads until it succeeds
	s.Initialize(ctx)
	return s
}

// Key returns the durable key used for sessionID
func (r *Registry) Key(sessionID string) string {
	return r.baseKey + ":" + sessionID
}

// Len returns the number of sessions held in memory
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}

// Evict drops every store not returned by Get within idle and reports how
// many were dropped. Durable data is untouched.
func (r *Registry) Evict(idle time.Duration) int {
	cutoff := r.now().Add(-idle)

	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for id, e := range r.stores {
		if e.lastUsed.Before(cutoff) {
			delete(r.stores, id)
			evicted++
		}
	}
	return evicted
}

// RunEviction calls Evict every interval until ctx is done
func (r *Registry) RunEviction(ctx context.Context, idle, interval time.Duration) {
	if idle <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Evict(idle); n > 0 {
				r.log.Debug("Evicted idle session stores", zap.Int("count", n), zap.Int("remaining", r.Len()))
			}
		}
	}
}
