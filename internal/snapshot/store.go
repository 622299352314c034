package snapshot

import (
	"sort"
	"sync"

	"github.com/xli340/carbn/internal/types"
)

// Store is the merged in-memory set of vehicles currently in view. The live
// feed and the query service write to it; everything else reads from it.
// Merge never removes entries; only Replace can shrink the set.
type Store struct {
	mu       sync.RWMutex
	vehicles map[string]*types.Vehicle
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		vehicles: make(map[string]*types.Vehicle),
	}
}

// Merge applies a single live position update. An existing vehicle is patched
// in place; an unknown id inserts a minimal record named after the id. A
// position update implies the vehicle is moving, so ignition is marked on.
func (s *Store) Merge(u types.PositionUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.vehicles[u.VehicleID]; ok {
		v.Lat = u.Lat
		v.Lng = u.Lng
		v.Speed = u.Speed
		v.Heading = u.Heading
		v.Timestamp = u.Timestamp
		v.IgnitionOn = true
		return
	}

	s.vehicles[u.VehicleID] = &types.Vehicle{
		VehicleID:    u.VehicleID,
		Registration: u.VehicleID,
		Name:         u.VehicleID,
		Lat:          u.Lat,
		Lng:          u.Lng,
		Speed:        u.Speed,
		Heading:      u.Heading,
		IgnitionOn:   true,
		Timestamp:    u.Timestamp,
	}
}

// Replace swaps the full vehicle set for a fresh query result. This is the
// only operation that can remove vehicles from the snapshot.
func (s *Store) Replace(vehicles []types.Vehicle) {
	next := make(map[string]*types.Vehicle, len(vehicles))
	for i := range vehicles {
		v := vehicles[i]
		next[v.VehicleID] = &v
	}

	s.mu.Lock()
	s.vehicles = next
	s.mu.Unlock()
}

// Get returns a copy of the vehicle with the given id.
func (s *Store) Get(vehicleID string) (types.Vehicle, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.vehicles[vehicleID]
	if !ok {
		return types.Vehicle{}, false
	}
	return *v, true
}

// Vehicles returns a copy of all vehicles, ordered by id for stable output.
func (s *Store) Vehicles() []types.Vehicle {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.Vehicle, 0, len(s.vehicles))
	for _, v := range s.vehicles {
		out = append(out, *v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VehicleID < out[j].VehicleID })
	return out
}

// IDs returns the sorted set of vehicle ids in the snapshot, the subscription
// set for the live feed.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.vehicles))
	for id := range s.vehicles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Count returns the number of vehicles in the snapshot.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vehicles)
}
