package service

import (
	"fusionswap/internal/domain"
	"fusionswap/internal/store"
	"fusionswap/pkg/units"
)

// OrderService is the read-side query surface. It only ever hands out copies
// from the store snapshot; it never mutates.
type OrderService struct {
	store *store.OrderStore
}

// NewOrderService wraps the authoritative store.
func NewOrderService(st *store.OrderStore) *OrderService {
	return &OrderService{store: st}
}

// GetOrder returns one order by id.
func (s *OrderService) GetOrder(id units.OrderID) (domain.Order, bool) {
	return s.store.Get(id)
}

// GetAllOrders returns every order, sorted by id.
func (s *OrderService) GetAllOrders() []domain.Order {
	return s.store.All()
}

// GetOrdersByMaker returns the maker's orders via the derived index.
func (s *OrderService) GetOrdersByMaker(maker string) []domain.Order {
	return s.store.ByMaker(maker)
}

// OpenOrders returns the orders still eligible for transitions.
func (s *OrderService) OpenOrders() []domain.Order {
	all := s.store.All()
	out := all[:0]
	for _, o := range all {
		if o.IsOpen() {
			out = append(out, o)
		}
	}
	return out
}
