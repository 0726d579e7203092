package favoritesrepo

import (
	"errors"
	"slices"
	"sync"
)

// InMemoryRepo is a thread-safe in-memory implementation of the Repo interface
type InMemoryRepo struct {
	mu        sync.RWMutex
	favorites map[string][]string
}

// NewInMemoryRepo creates a new in-memory favorites repository
func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		favorites: make(map[string][]string),
	}
}

// List returns a copy of the user's favorite IDs
func (r *InMemoryRepo) List(userID string) ([]string, error) {
	if userID == "" {
		return nil, errors.New("userID cannot be empty")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.favorites[userID]), nil
}

// Add appends vehicleID unless it is already a favorite
func (r *InMemoryRepo) Add(userID, vehicleID string) error {
	if userID == "" {
		return errors.New("userID cannot be empty")
	}
	if vehicleID == "" {
		return errors.New("vehicleID cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if slices.Contains(r.favorites[userID], vehicleID) {
		return nil
	}
	r.favorites[userID] = append(r.favorites[userID], vehicleID)
	return nil
}

// Remove drops vehicleID. Removing an absent ID is not an error.
func (r *InMemoryRepo) Remove(userID, vehicleID string) error {
	if userID == "" {
		return errors.New("userID cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ids := slices.DeleteFunc(slices.Clone(r.favorites[userID]), func(id string) bool {
		return id == vehicleID
	})
	if len(ids) == 0 {
		delete(r.favorites, userID)
		return nil
	}
	r.favorites[userID] = ids
	return nil
}

func (r *InMemoryRepo) DeleteForUser(userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.favorites, userID)
	return nil
}
