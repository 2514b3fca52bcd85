package domain

import (
	"errors"
	"testing"

	"fusionswap/pkg/units"
)

func TestComputeFees(t *testing.T) {
	t.Run("parts sum exactly to the input amount", func(t *testing.T) {
		cfgs := []FeeConfig{
			{ProtocolFeeBps: 30, IntegratorFeeBps: 10, SurplusBps: 5},
			{ProtocolFeeBps: 33, IntegratorFeeBps: 66, SurplusBps: 99},
			{ProtocolFeeBps: 0, IntegratorFeeBps: 0, SurplusBps: 0},
			{ProtocolFeeBps: 10000, IntegratorFeeBps: 0, SurplusBps: 0},
			{ProtocolFeeBps: 3333, IntegratorFeeBps: 3333, SurplusBps: 3334},
		}
		amounts := []units.Amount{1, 7, 9_999, 10_001, 1_000_000_007, ^units.Amount(0)}

		for _, cfg := range cfgs {
			for _, amount := range amounts {
				b, err := ComputeFees(amount, cfg)
				if err != nil {
					t.Fatalf("ComputeFees(%d) failed: %v", amount, err)
				}
				sum := b.ProtocolFee + b.IntegratorFee + b.Surplus + b.NetAmount
				if sum != amount {
					t.Errorf("Parts sum %d != amount %d for cfg %+v", sum, amount, cfg)
				}
			}
		}
	})

	t.Run("dust accrues to net amount", func(t *testing.T) {
		// 10001 * 33 / 10000 = 33.0033 -> fee 33, the fraction stays in net.
		b, err := ComputeFees(10_001, FeeConfig{ProtocolFeeBps: 33})
		if err != nil {
			t.Fatal(err)
		}
		if b.ProtocolFee != 33 {
			t.Errorf("Expected protocol fee 33, got %d", b.ProtocolFee)
		}
		if b.NetAmount != 10_001-33 {
			t.Errorf("Expected net %d, got %d", 10_001-33, b.NetAmount)
		}
	})

	t.Run("zero amount is rejected", func(t *testing.T) {
		_, err := ComputeFees(0, FeeConfig{})
		if !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("Expected ErrInvalidAmount, got %v", err)
		}
	})
}

func TestFeeConfig_Validate(t *testing.T) {
	t.Run("accepts bounded rates", func(t *testing.T) {
		cfg := FeeConfig{ProtocolFeeBps: 5000, IntegratorFeeBps: 4000, SurplusBps: 1000}
		if err := cfg.Validate(); err != nil {
			t.Errorf("Expected valid config, got %v", err)
		}
	})

	t.Run("rejects a single rate above 10000", func(t *testing.T) {
		cfg := FeeConfig{ProtocolFeeBps: 10_001}
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("Expected ErrInvalidAmount, got %v", err)
		}
	})

	t.Run("rejects combined rates above 10000", func(t *testing.T) {
		cfg := FeeConfig{ProtocolFeeBps: 5000, IntegratorFeeBps: 5000, SurplusBps: 1}
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("Expected ErrInvalidAmount, got %v", err)
		}
	})
}
