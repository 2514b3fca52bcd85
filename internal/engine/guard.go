package engine

import (
	"fmt"
	"sync"

	"fusionswap/internal/domain"
	"fusionswap/pkg/units"
)

// inflightGuard marks order ids with an operation in flight. Acquisition is
// atomic check-and-set; every exit path must release, so callers pair
// acquire with defer release.
type inflightGuard struct {
	mu  sync.Mutex
	ids map[units.OrderID]struct{}
}

func newInflightGuard() *inflightGuard {
	return &inflightGuard{ids: make(map[units.OrderID]struct{})}
}

// acquire claims the id or fails with ErrReentrancyDetected. It never blocks:
// a second writer on the same id is a protocol violation, not contention to
// wait out.
func (g *inflightGuard) acquire(id units.OrderID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.ids[id]; busy {
		return fmt.Errorf("%w: order %d has an operation in flight", domain.ErrReentrancyDetected, id)
	}
	g.ids[id] = struct{}{}
	return nil
}

// tryAcquire claims the id if free. The expiration sweep uses this to skip
// contended orders and defer them to its next invocation.
func (g *inflightGuard) tryAcquire(id units.OrderID) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.ids[id]; busy {
		return false
	}
	g.ids[id] = struct{}{}
	return true
}

func (g *inflightGuard) release(id units.OrderID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.ids, id)
}
