// Package store owns the authoritative order records. All reads hand out
// copies; mutation goes through Insert/Update only, so a failed engine
// operation can never leave a half-applied record behind.
package store

import (
	"fmt"
	"sort"
	"sync"

	"fusionswap/internal/domain"
	"fusionswap/pkg/units"
)

// OrderStore maps order id to record, with a derived maker index. The index
// is rebuilt from the primary map on load and is never the source of truth.
type OrderStore struct {
	mu      sync.RWMutex
	orders  map[units.OrderID]*domain.Order
	byMaker map[string][]units.OrderID
}

// NewOrderStore returns an empty store.
func NewOrderStore() *OrderStore {
	return &OrderStore{
		orders:  make(map[units.OrderID]*domain.Order),
		byMaker: make(map[string][]units.OrderID),
	}
}

// Insert adds a new order. Fails with ErrOrderAlreadyExists on id collision;
// the store is unchanged in that case.
func (s *OrderStore) Insert(o domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[o.ID]; ok {
		return fmt.Errorf("%w: id=%d", domain.ErrOrderAlreadyExists, o.ID)
	}
	cp := o
	s.orders[o.ID] = &cp
	s.byMaker[o.Maker] = append(s.byMaker[o.Maker], o.ID)
	return nil
}

// Update replaces an existing order wholesale. The record being replaced must
// exist and must not already be terminal.
func (s *OrderStore) Update(o domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.orders[o.ID]
	if !ok {
		return fmt.Errorf("%w: id=%d", domain.ErrOrderNotFound, o.ID)
	}
	if prev.IsTerminal() {
		return fmt.Errorf("%w: order %d is terminal (%s)", domain.ErrInvalidOrderState, o.ID, prev.Status)
	}
	cp := o
	s.orders[o.ID] = &cp
	return nil
}

// Get returns a copy of the order, if present.
func (s *OrderStore) Get(id units.OrderID) (domain.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return domain.Order{}, false
	}
	return *o, true
}

// All returns copies of every order, sorted by id for stable iteration.
func (s *OrderStore) All() []domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ByMaker returns copies of the maker's orders via the derived index.
func (s *OrderStore) ByMaker(maker string) []domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byMaker[maker]
	out := make([]domain.Order, 0, len(ids))
	for _, id := range ids {
		if o, ok := s.orders[id]; ok {
			out = append(out, *o)
		}
	}
	return out
}

// IDs returns every order id, sorted. Used by the expiration sweep so it can
// acquire per-id guards without holding the store lock across the scan.
func (s *OrderStore) IDs() []units.OrderID {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]units.OrderID, 0, len(s.orders))
	for id := range s.orders {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Load replaces the store contents from persisted records and rebuilds the
// maker index from scratch. Used only at bootstrap.
func (s *OrderStore) Load(orders []domain.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.orders = make(map[units.OrderID]*domain.Order, len(orders))
	s.byMaker = make(map[string][]units.OrderID)
	for _, o := range orders {
		cp := o
		s.orders[o.ID] = &cp
		s.byMaker[o.Maker] = append(s.byMaker[o.Maker], o.ID)
	}
}

// Len is the number of stored orders.
func (s *OrderStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.orders)
}
