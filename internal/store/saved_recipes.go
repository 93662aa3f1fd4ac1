// Package store keeps the saved-recipes collection of each session and
// mirrors it to a durable medium.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/pageza/pantry-chef/backend/internal/database"
	"github.com/pageza/pantry-chef/backend/internal/types"
	pgvector "github.com/pgvector/pgvector-go"
	"go.uber.org/zap"
)

// Medium is a durable key/value area. Load returns database.ErrKeyNotFound
// when nothing is stored under the key; Save replaces the whole value.
type Medium interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
}

// LoadTimeout bounds the initial read of a collection
const LoadTimeout = 5 * time.Second

// Observer is notified of durable storage failures and of mutations that
// changed the collection.
type Observer interface {
	StorageReadFailed()
	StorageWriteFailed()
	RecipeSaved()
	RecipeRemoved()
}

type nopObserver struct{}

func (nopObserver) StorageReadFailed()  {}
func (nopObserver) StorageWriteFailed() {}
func (nopObserver) RecipeSaved()        {}
func (nopObserver) RecipeRemoved()      {}

// SavedRecipes is the saved-recipes collection of one session. It is loaded
// once from the medium and written back in full after every mutation.
type SavedRecipes struct {
	medium   Medium
	key      string
	log      *zap.Logger
	observer Observer
	embed    Embedder

	mu      sync.RWMutex
	recipes []types.Recipe
	ready   bool
}

// Embedder maps text to a vector; closer vectors mean more similar text
type Embedder func(text string) pgvector.Vector

// Option configures a SavedRecipes
type Option func(*SavedRecipes)

// WithObserver reports storage failures to o
func WithObserver(o Observer) Option {
	return func(s *SavedRecipes) {
		if o != nil {
			s.observer = o
		}
	}
}

// WithEmbedder orders search results by embedding distance
func WithEmbedder(e Embedder) Option {
	return func(s *SavedRecipes) {
		s.embed = e
	}
}

// NewSavedRecipes creates a store persisting under key. The store rejects
// mutations until Initialize has run.
func NewSavedRecipes(medium Medium, key string, log *zap.Logger, opts ...Option) *SavedRecipes {
	if log == nil {
		log = zap.NewNop()
	}
	s := &SavedRecipes{
		medium:   medium,
		key:      key,
		log:      log.With(zap.String("storage_key", key)),
		observer: nopObserver{},
		recipes:  []types.Recipe{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize loads the collection from the medium and marks the store ready.
// A missing key yields an empty collection and malformed data is logged and
// discarded. When the medium cannot be read the error is logged, an empty
// collection is returned and the store stays not ready, so mutations are
// rejected and the next call reads again. Once ready, later calls do not
// touch the medium.
//
// The read is detached from ctx cancellation and bounded by LoadTimeout.
func (s *SavedRecipes) Initialize(ctx context.Context) []types.Recipe {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ready {
		return s.snapshot()
	}

	loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), LoadTimeout)
	defer cancel()

	recipes, err := s.load(loadCtx)
	if err != nil {
		s.log.Warn("Failed to read saved recipes, will retry", zap.Error(err))
		s.observer.StorageReadFailed()
		return []types.Recipe{}
	}

	s.recipes = recipes
	s.ready = true
	s.log.Debug("Saved recipes loaded", zap.Int("count", len(s.recipes)))
	return s.snapshot()
}

// load returns an error only when the medium could not be read
func (s *SavedRecipes) load(ctx context.Context) ([]types.Recipe, error) {
	data, err := s.medium.Load(ctx, s.key)
	if errors.Is(err, database.ErrKeyNotFound) {
		return []types.Recipe{}, nil
	}
	if err != nil {
		return nil, err
	}

	var recipes []types.Recipe
	if err := json.Unmarshal(data, &recipes); err != nil {
		s.log.Warn("Stored saved recipes are malformed, starting empty", zap.Error(err))
		s.observer.StorageReadFailed()
		return []types.Recipe{}, nil
	}
	if recipes == nil {
		recipes = []types.Recipe{}
	}
	return recipes, nil
}

// Add appends recipe unless a recipe with the same ID is already saved, in
// which case nothing changes and nothing is written.
func (s *SavedRecipes) Add(ctx context.Context, recipe types.Recipe) ([]types.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready {
		return nil, ErrNotReady
	}
	if s.indexOf(recipe.ID) >= 0 {
		return s.snapshot(), nil
	}

	s.recipes = append(s.recipes, recipe)
	s.persist(ctx)
	s.observer.RecipeSaved()
	return s.snapshot(), nil
}

// Remove deletes the recipe with the given ID if present. The collection is
// written back even when nothing matched.
func (s *SavedRecipes) Remove(ctx context.Context, id string) ([]types.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready {
		return nil, ErrNotReady
	}

	kept := make([]types.Recipe, 0, len(s.recipes))
	for _, r := range s.recipes {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	removed := len(kept) < len(s.recipes)
	s.recipes = kept
	s.persist(ctx)
	if removed {
		s.observer.RecipeRemoved()
	}
	return s.snapshot(), nil
}

// Toggle removes the recipe if it is saved and adds it otherwise. It reports
// whether the recipe is saved afterwards.
func (s *SavedRecipes) Toggle(ctx context.Context, recipe types.Recipe) ([]types.Recipe, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready {
		return nil, false, ErrNotReady
	}

	saved := true
	if i := s.indexOf(recipe.ID); i >= 0 {
		s.recipes = append(s.recipes[:i:i], s.recipes[i+1:]...)
		saved = false
	} else {
		s.recipes = append(s.recipes, recipe)
	}
	s.persist(ctx)
	if saved {
		s.observer.RecipeSaved()
	} else {
		s.observer.RecipeRemoved()
	}
	return s.snapshot(), saved, nil
}

// IsSaved reports whether a recipe with the given ID is in the collection
func (s *SavedRecipes) IsSaved(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexOf(id) >= 0
}

// Get returns the saved recipe with the given ID
func (s *SavedRecipes) Get(id string) (types.Recipe, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.recipes[i], true
	}
	return types.Recipe{}, false
}

// IsLoading reports whether the collection has not been loaded yet
func (s *SavedRecipes) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.ready
}

// Recipes returns a copy of the collection in insertion order
func (s *SavedRecipes) Recipes() []types.Recipe {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

// persist writes the whole collection. Failures are logged and the
// in-memory collection stays authoritative. Callers hold s.mu.
func (s *SavedRecipes) persist(ctx context.Context) {
	data, err := json.Marshal(s.recipes)
	if err == nil {
		err = s.medium.Save(ctx, s.key, data)
	}
	if err != nil {
		s.log.Error("Failed to write saved recipes", zap.Error(err), zap.Int("count", len(s.recipes)))
		s.observer.StorageWriteFailed()
	}
}

func (s *SavedRecipes) indexOf(id string) int {
	for i, r := range s.recipes {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func (s *SavedRecipes) snapshot() []types.Recipe {
	out := make([]types.Recipe, len(s.recipes))
	copy(out, s.recipes)
	return out
}
