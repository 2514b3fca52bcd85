// Package auth maintains the resolver allow-list and safety deposits.
// Mutation is gated on the owner principal configured at construction; there
// is no ambient or static state.
package auth

import (
	"fmt"
	"sync"

	"fusionswap/internal/domain"
	"fusionswap/pkg/units"
)

// ResolverRegistry maps principal to authorization flag and posted safety
// deposit. Checks run before any engine state is touched.
type ResolverRegistry struct {
	mu         sync.RWMutex
	owner      string
	authorized map[string]bool
	deposits   map[string]units.Amount
}

// NewResolverRegistry creates a registry administered by owner.
func NewResolverRegistry(owner string) *ResolverRegistry {
	return &ResolverRegistry{
		owner:      owner,
		authorized: make(map[string]bool),
		deposits:   make(map[string]units.Amount),
	}
}

// Owner returns the administering principal.
func (r *ResolverRegistry) Owner() string {
	return r.owner
}

// SetAuthorized flips a resolver's authorization. Only the owner may call.
func (r *ResolverRegistry) SetAuthorized(caller, principal string, ok bool) error {
	if caller != r.owner {
		return fmt.Errorf("%w: %s is not the registry owner", domain.ErrUnauthorizedCaller, caller)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if ok {
		r.authorized[principal] = true
	} else {
		delete(r.authorized, principal)
	}
	return nil
}

// SetSafetyDeposit records a resolver's posted deposit. The resolver itself
// or the owner may update it.
func (r *ResolverRegistry) SetSafetyDeposit(caller, principal string, amount units.Amount) error {
	if caller != r.owner && caller != principal {
		return fmt.Errorf("%w: %s cannot set deposit for %s", domain.ErrUnauthorizedCaller, caller, principal)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deposits[principal] = amount
	return nil
}

// IsAuthorized reports whether the principal may invoke privileged transitions.
func (r *ResolverRegistry) IsAuthorized(principal string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.authorized[principal]
}

// Deposit returns the resolver's posted safety deposit.
func (r *ResolverRegistry) Deposit(principal string) units.Amount {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.deposits[principal]
}
