package domain

import (
	"testing"

	"fusionswap/pkg/units"
)

func TestAuctionData_PriceAt(t *testing.T) {
	a := AuctionData{
		StartPrice: 1_000_000_000,
		EndPrice:   900_000_000,
		StartTime:  1_000_000,
		EndTime:    1_000_000 + 86400,
	}

	t.Run("clamps to start price before window", func(t *testing.T) {
		if got := a.PriceAt(999_999); got != a.StartPrice {
			t.Errorf("Expected %d, got %d", a.StartPrice, got)
		}
		if got := a.PriceAt(a.StartTime); got != a.StartPrice {
			t.Errorf("Expected start price at start time, got %d", got)
		}
	})

	t.Run("clamps to end price after window", func(t *testing.T) {
		if got := a.PriceAt(a.EndTime); got != a.EndPrice {
			t.Errorf("Expected end price at end time, got %d", got)
		}
		if got := a.PriceAt(a.EndTime + 999); got != a.EndPrice {
			t.Errorf("Expected %d, got %d", a.EndPrice, got)
		}
	})

	t.Run("midpoint of descending curve", func(t *testing.T) {
		if got := a.PriceAt(a.StartTime + 43200); got != 950_000_000 {
			t.Errorf("Expected 950000000, got %d", got)
		}
	})

	t.Run("monotonic non-increasing when descending", func(t *testing.T) {
		prev := a.PriceAt(a.StartTime)
		for now := a.StartTime; now <= a.EndTime; now += 3600 {
			p := a.PriceAt(now)
			if p > prev {
				t.Fatalf("Price increased from %d to %d at %d", prev, p, now)
			}
			if p < a.EndPrice || p > a.StartPrice {
				t.Fatalf("Price %d left [%d, %d] at %d", p, a.EndPrice, a.StartPrice, now)
			}
			prev = p
		}
	})

	t.Run("monotonic non-decreasing when ascending", func(t *testing.T) {
		up := AuctionData{StartPrice: 100, EndPrice: 500, StartTime: 0, EndTime: 1000}
		prev := up.PriceAt(0)
		for now := units.Timestamp(0); now <= 1000; now += 50 {
			p := up.PriceAt(now)
			if p < prev {
				t.Fatalf("Price decreased from %d to %d at %d", prev, p, now)
			}
			prev = p
		}
	})

	t.Run("flat curve stays put", func(t *testing.T) {
		flat := AuctionData{StartPrice: 42, EndPrice: 42, StartTime: 0, EndTime: 100}
		if got := flat.PriceAt(50); got != 42 {
			t.Errorf("Expected 42, got %d", got)
		}
	})

	t.Run("no overflow on max-width prices", func(t *testing.T) {
		wide := AuctionData{
			StartPrice: ^units.Amount(0),
			EndPrice:   0,
			StartTime:  0,
			EndTime:    1_000_000,
		}
		if got := wide.PriceAt(500_000); got > wide.StartPrice {
			t.Errorf("Interpolation overflowed: %d", got)
		}
	})
}

func TestAuctionData_Validate(t *testing.T) {
	a := AuctionData{StartTime: 100, EndTime: 100}
	if err := a.Validate(); err == nil {
		t.Error("Expected error for zero-length window")
	}
	a.EndTime = 99
	if err := a.Validate(); err == nil {
		t.Error("Expected error for inverted window")
	}
}

func TestAuctionData_FillPrice(t *testing.T) {
	a := AuctionData{StartPrice: 1000, EndPrice: 500, StartTime: 0, EndTime: 100}

	t.Run("follows curve above floor", func(t *testing.T) {
		if got := a.FillPrice(50, 600); got != 750 {
			t.Errorf("Expected 750, got %d", got)
		}
	})

	t.Run("floored at min dst amount", func(t *testing.T) {
		if got := a.FillPrice(100, 800); got != 800 {
			t.Errorf("Expected floor 800, got %d", got)
		}
	})
}

func TestProRate(t *testing.T) {
	t.Run("exact half", func(t *testing.T) {
		if got := ProRate(950_000_000, 500_000_000, 1_000_000_000); got != 475_000_000 {
			t.Errorf("Expected 475000000, got %d", got)
		}
	})

	t.Run("rounds up in maker's favor", func(t *testing.T) {
		// 10 * 1 / 3 = 3.33... -> 4
		if got := ProRate(10, 1, 3); got != 4 {
			t.Errorf("Expected 4, got %d", got)
		}
	})

	t.Run("full amount returns full price", func(t *testing.T) {
		if got := ProRate(999, 100, 100); got != 999 {
			t.Errorf("Expected 999, got %d", got)
		}
	})
}

func TestCancelPremium(t *testing.T) {
	const expiry = units.Timestamp(10_000)

	t.Run("zero before expiration", func(t *testing.T) {
		if got := CancelPremium(expiry, 3600, 1000, expiry-1); got != 0 {
			t.Errorf("Expected 0, got %d", got)
		}
		if got := CancelPremium(expiry, 3600, 1000, expiry); got != 0 {
			t.Errorf("Expected 0 at expiry, got %d", got)
		}
	})

	t.Run("grows linearly after expiration", func(t *testing.T) {
		if got := CancelPremium(expiry, 3600, 1000, expiry+1800); got != 500 {
			t.Errorf("Expected 500 at half window, got %d", got)
		}
	})

	t.Run("capped at max premium", func(t *testing.T) {
		if got := CancelPremium(expiry, 3600, 1000, expiry+999_999); got != 1000 {
			t.Errorf("Expected cap 1000, got %d", got)
		}
	})

	t.Run("zero-length auction jumps to cap once expired", func(t *testing.T) {
		if got := CancelPremium(expiry, 0, 1000, expiry+1); got != 1000 {
			t.Errorf("Expected 1000, got %d", got)
		}
	})

	t.Run("zero max premium pays nothing", func(t *testing.T) {
		if got := CancelPremium(expiry, 3600, 0, expiry+1800); got != 0 {
			t.Errorf("Expected 0, got %d", got)
		}
	})
}
