package auth

import (
	"errors"
	"testing"

	"fusionswap/internal/domain"
)

func TestResolverRegistry_SetAuthorized(t *testing.T) {
	r := NewResolverRegistry("admin")

	t.Run("owner authorizes a resolver", func(t *testing.T) {
		if err := r.SetAuthorized("admin", "resolver-1", true); err != nil {
			t.Fatal(err)
		}
		if !r.IsAuthorized("resolver-1") {
			t.Error("resolver-1 should be authorized")
		}
	})

	t.Run("non-owner is rejected", func(t *testing.T) {
		err := r.SetAuthorized("resolver-1", "resolver-2", true)
		if !errors.Is(err, domain.ErrUnauthorizedCaller) {
			t.Errorf("Expected ErrUnauthorizedCaller, got %v", err)
		}
		if r.IsAuthorized("resolver-2") {
			t.Error("resolver-2 must not be authorized")
		}
	})

	t.Run("owner revokes", func(t *testing.T) {
		if err := r.SetAuthorized("admin", "resolver-1", false); err != nil {
			t.Fatal(err)
		}
		if r.IsAuthorized("resolver-1") {
			t.Error("resolver-1 should be revoked")
		}
	})

	t.Run("unknown principal is unauthorized", func(t *testing.T) {
		if r.IsAuthorized("stranger") {
			t.Error("Unknown principal must be unauthorized")
		}
	})
}

func TestResolverRegistry_Deposits(t *testing.T) {
	r := NewResolverRegistry("admin")

	t.Run("resolver posts its own deposit", func(t *testing.T) {
		if err := r.SetSafetyDeposit("resolver-1", "resolver-1", 5_000); err != nil {
			t.Fatal(err)
		}
		if got := r.Deposit("resolver-1"); got != 5_000 {
			t.Errorf("Expected 5000, got %d", got)
		}
	})

	t.Run("owner adjusts a deposit", func(t *testing.T) {
		if err := r.SetSafetyDeposit("admin", "resolver-1", 1_000); err != nil {
			t.Fatal(err)
		}
		if got := r.Deposit("resolver-1"); got != 1_000 {
			t.Errorf("Expected 1000, got %d", got)
		}
	})

	t.Run("third party cannot touch another's deposit", func(t *testing.T) {
		err := r.SetSafetyDeposit("resolver-2", "resolver-1", 0)
		if !errors.Is(err, domain.ErrUnauthorizedCaller) {
			t.Errorf("Expected ErrUnauthorizedCaller, got %v", err)
		}
	})

	t.Run("unknown principal has zero deposit", func(t *testing.T) {
		if got := r.Deposit("stranger"); got != 0 {
			t.Errorf("Expected 0, got %d", got)
		}
	})
}
