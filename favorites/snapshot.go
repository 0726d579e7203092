package favorites

import "github.com/jrsteele09/go-salvage-market/vehicles"

// set keeps items in insertion order with an id index that always mirrors them
type set struct {
	items []vehicles.Vehicle
	ids   map[string]struct{}
}

// newSet collapses duplicate IDs, first occurrence wins
func newSet(items []vehicles.Vehicle) set {
	s := set{items: make([]vehicles.Vehicle, 0, len(items)), ids: make(map[string]struct{}, len(items))}
	for _, v := range items {
		s.add(v)
	}
	return s
}

func (s *set) add(v vehicles.Vehicle) bool {
	if v.ID == "" {
		return false
	}
	if _, ok := s.ids[v.ID]; ok {
		return false
	}
	s.items = append(s.items, v)
	s.ids[v.ID] = struct{}{}
	return true
}

func (s *set) remove(id string) bool {
	if _, ok := s.ids[id]; !ok {
		return false
	}
	delete(s.ids, id)
	kept := s.items[:0:0]
	for _, v := range s.items {
		if v.ID != id {
			kept = append(kept, v)
		}
	}
	s.items = kept
	return true
}

func (s set) contains(id string) bool {
	_, ok := s.ids[id]
	return ok
}

func (s set) clone() set {
	ret := set{
		items: make([]vehicles.Vehicle, len(s.items)),
		ids:   make(map[string]struct{}, len(s.ids)),
	}
	copy(ret.items, s.items)
	for id := range s.ids {
		ret.ids[id] = struct{}{}
	}
	return ret
}

// Snapshot is an immutable copy of the favorites delivered to subscribers
type Snapshot struct {
	Items []vehicles.Vehicle
	ids   map[string]struct{}
}

func (s Snapshot) Contains(vehicleID string) bool {
	_, ok := s.ids[vehicleID]
	return ok
}

func (s Snapshot) Len() int {
	return len(s.Items)
}

func (s set) snapshot() Snapshot {
	c := s.clone()
	return Snapshot{Items: c.items, ids: c.ids}
}
