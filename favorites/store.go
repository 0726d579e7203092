// Package favorites keeps a visitor's favorite vehicles in durable local storage with
// optimistic updates that roll back when the remote sync fails.
package favorites

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	apperrors "github.com/jrsteele09/go-salvage-market/internal/errors"
	"github.com/jrsteele09/go-salvage-market/internal/observer"
	"github.com/jrsteele09/go-salvage-market/storage"
	"github.com/jrsteele09/go-salvage-market/vehicles"
)

// Remote mirrors favorites to a server. Optional.
type Remote interface {
	List(ctx context.Context) ([]vehicles.Vehicle, error)
	Add(ctx context.Context, vehicle vehicles.Vehicle) error
	Remove(ctx context.Context, vehicleID string) error
}

// Store is safe for concurrent use. Mutations are serialized from the in-memory update
// through persistence, remote sync and any rollback.
type Store struct {
	opMu sync.Mutex

	mu  sync.RWMutex
	set set
	// unsaved is set while the last persist failed. Memory is then ahead of storage and
	// a reload would drop changes. Guarded by opMu.
	unsaved bool

	kv        storage.KV
	remote    Remote
	observers observer.Registry[Snapshot]
}

type StoreOption func(*Store)

func WithRemote(remote Remote) StoreOption {
	return func(s *Store) {
		s.remote = remote
	}
}

// New creates the store and loads any persisted favorites
func New(ctx context.Context, kv storage.KV, options ...StoreOption) *Store {
	s := &Store{kv: kv, set: newSet(nil)}
	for _, opt := range options {
		opt(s)
	}
	s.Load(ctx)
	return s
}

func (s *Store) Subscribe(fn func(Snapshot)) func() {
	return s.observers.Subscribe(fn)
}

func (s *Store) IsFavorite(vehicleID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.set.contains(vehicleID)
}

// Items returns a copy in insertion order
func (s *Store) Items() []vehicles.Vehicle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.set.snapshot().Items
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.set.items)
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.set.snapshot()
}

// Add appends vehicle unless already present
func (s *Store) Add(ctx context.Context, vehicle vehicles.Vehicle) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	return s.add(ctx, vehicle)
}

// Remove drops vehicleID if present
func (s *Store) Remove(ctx context.Context, vehicleID string) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	return s.remove(ctx, vehicleID)
}

// Toggle removes vehicle when it is a favorite, adds it otherwise
func (s *Store) Toggle(ctx context.Context, vehicle vehicles.Vehicle) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	if s.IsFavorite(vehicle.ID) {
		return s.remove(ctx, vehicle.ID)
	}
	return s.add(ctx, vehicle)
}

// Clear empties the favorites and persists the empty list
func (s *Store) Clear(ctx context.Context) {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	s.mu.Lock()
	s.set = newSet(nil)
	s.mu.Unlock()
	s.commit(ctx)
}

// Load replaces the in-memory favorites with the persisted list. Missing or corrupt data
// yields an empty set. A failed read, or changes that could not be saved, keep the
// current set.
func (s *Store) Load(ctx context.Context) {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	s.load(ctx)
	s.notify()
}

// Refresh reloads from storage like Load and, with a remote configured, merges in the
// remote list. Local order is kept and remote-only items are appended.
func (s *Store) Refresh(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	s.load(ctx)
	if s.remote == nil {
		s.notify()
		return nil
	}
	remoteItems, err := s.remote.List(ctx)
	if err != nil {
		s.notify()
		return fmt.Errorf("%w: list: %w", apperrors.ErrSync, err)
	}
	s.mu.Lock()
	for _, v := range remoteItems {
		s.set.add(v)
	}
	s.mu.Unlock()
	s.commit(ctx)
	return nil
}

func (s *Store) add(ctx context.Context, vehicle vehicles.Vehicle) error {
	if vehicle.ID == "" {
		return apperrors.Wrapf(apperrors.ErrInvalidRequest, "vehicle without id")
	}
	prev := s.snapshot()
	s.mu.Lock()
	added := s.set.add(vehicle)
	s.mu.Unlock()
	if !added {
		return nil
	}
	s.commit(ctx)

	if s.remote != nil {
		if err := s.remote.Add(ctx, vehicle); err != nil {
			s.restore(ctx, prev)
			log.Warn().Err(err).Str("vehicleId", vehicle.ID).Msg("favorite add rolled back")
			return fmt.Errorf("%w: add %s: %w", apperrors.ErrSync, vehicle.ID, err)
		}
	}
	return nil
}

func (s *Store) remove(ctx context.Context, vehicleID string) error {
	prev := s.snapshot()
	s.mu.Lock()
	removed := s.set.remove(vehicleID)
	s.mu.Unlock()
	if !removed {
		return nil
	}
	s.commit(ctx)

	if s.remote != nil {
		if err := s.remote.Remove(ctx, vehicleID); err != nil {
			s.restore(ctx, prev)
			log.Warn().Err(err).Str("vehicleId", vehicleID).Msg("favorite remove rolled back")
			return fmt.Errorf("%w: remove %s: %w", apperrors.ErrSync, vehicleID, err)
		}
	}
	return nil
}

func (s *Store) snapshot() set {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.set.clone()
}

func (s *Store) restore(ctx context.Context, prev set) {
	s.mu.Lock()
	s.set = prev
	s.mu.Unlock()
	s.commit(ctx)
}

func (s *Store) load(ctx context.Context) {
	if s.unsaved {
		log.Warn().Int("count", s.Len()).Msg("favorites have unsaved changes, keeping them over storage")
		return
	}
	loaded := newSet(nil)
	raw, ok, err := s.kv.Get(ctx, storage.KeyFavorites)
	switch {
	case err != nil:
		log.Warn().Err(err).Msg("reading favorites, keeping current list")
		return
	case ok && raw != "":
		var items []vehicles.Vehicle
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			log.Warn().Err(err).Msg("favorites data is corrupt, starting empty")
		} else {
			loaded = newSet(items)
		}
	}
	s.mu.Lock()
	s.set = loaded
	s.mu.Unlock()
}

// commit persists and notifies. Callers hold opMu.
func (s *Store) commit(ctx context.Context) {
	s.persist(ctx)
	s.notify()
}

func (s *Store) persist(ctx context.Context) {
	items := s.Items()
	data, err := json.Marshal(items)
	if err == nil {
		err = s.kv.Set(ctx, storage.KeyFavorites, string(data))
	}
	if err != nil {
		s.unsaved = true
		log.Error().Err(apperrors.Wrapf(apperrors.ErrPersistence, "favorites: %v", err)).Int("count", len(items)).Msg("favorites not persisted")
		return
	}
	s.unsaved = false
}

func (s *Store) notify() {
	s.observers.Notify(s.Snapshot())
}
