package fakevehiclerepo

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/go-salvage-market/internal/errors"
	"github.com/jrsteele09/go-salvage-market/vehicles"
)

var _ vehicles.Catalog = (*FakeCatalog)(nil)

type FakeCatalog struct {
	vehicles map[string]*vehicles.Vehicle
	lock     sync.RWMutex
}

func NewFakeCatalog() vehicles.Catalog {
	return &FakeCatalog{
		vehicles: make(map[string]*vehicles.Vehicle),
	}
}

func (c *FakeCatalog) Upsert(vehicle *vehicles.Vehicle) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	if vehicle.ID == "" {
		vehicle.ID = uuid.New().String()
	}
	if vehicle.CreatedAt.IsZero() {
		vehicle.CreatedAt = time.Now().UTC()
	}
	vehicle.UpdatedAt = time.Now().UTC()
	c.vehicles[vehicle.ID] = vehicle
	return nil
}

// GetByID returns a copy so handlers cannot mutate the catalog
func (c *FakeCatalog) GetByID(id string) (*vehicles.Vehicle, error) {
	c.lock.RLock()
	defer c.lock.RUnlock()

	v, ok := c.vehicles[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (c *FakeCatalog) List(offset, limit int) ([]*vehicles.Vehicle, error) {
	c.lock.RLock()
	defer c.lock.RUnlock()

	list := make([]*vehicles.Vehicle, 0, len(c.vehicles))
	for _, v := range c.vehicles {
		cp := *v
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})

	if offset >= len(list) {
		return []*vehicles.Vehicle{}, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(list) {
		end = len(list)
	}
	return list[offset:end], nil
}
