package domain

import (
	"fmt"

	"fusionswap/pkg/units"
)

// FeeConfig is the per-order fee schedule. All bps fields are bounded
// 0..10000 and their sum must not exceed 10000; Validate runs when the
// config is attached to an order, never at computation time.
type FeeConfig struct {
	ProtocolFeeBps   units.Bps
	IntegratorFeeBps units.Bps
	SurplusBps       units.Bps
	MaxCancelPremium units.Amount
}

// Validate enforces the bps bounds.
func (f *FeeConfig) Validate() error {
	for _, bps := range []units.Bps{f.ProtocolFeeBps, f.IntegratorFeeBps, f.SurplusBps} {
		if bps > units.BpsDenominator {
			return fmt.Errorf("%w: fee rate %d bps exceeds %d", ErrInvalidAmount, bps, units.BpsDenominator)
		}
	}
	total := f.ProtocolFeeBps + f.IntegratorFeeBps + f.SurplusBps
	if total > units.BpsDenominator {
		return fmt.Errorf("%w: combined fee rate %d bps exceeds %d", ErrInvalidAmount, total, units.BpsDenominator)
	}
	return nil
}

// FeeBreakdown splits an execution amount. The parts always sum exactly to
// the input amount: division remainders accrue to NetAmount.
type FeeBreakdown struct {
	ProtocolFee   units.Amount
	IntegratorFee units.Amount
	Surplus       units.Amount
	NetAmount     units.Amount
}

// ComputeFees splits amount per the config. Each fee is floor(amount*bps/10000);
// the dust left by flooring stays in NetAmount.
func ComputeFees(amount units.Amount, cfg FeeConfig) (FeeBreakdown, error) {
	if amount == 0 {
		return FeeBreakdown{}, fmt.Errorf("%w: fee base amount is zero", ErrInvalidAmount)
	}

	b := FeeBreakdown{
		ProtocolFee:   bpsCut(amount, cfg.ProtocolFeeBps),
		IntegratorFee: bpsCut(amount, cfg.IntegratorFeeBps),
		Surplus:       bpsCut(amount, cfg.SurplusBps),
	}
	b.NetAmount = amount - b.ProtocolFee - b.IntegratorFee - b.Surplus
	return b, nil
}

// bpsCut computes floor(amount*bps/10000) without overflowing 64 bits:
// amount = q*10000 + r, so the product decomposes into q*bps + r*bps/10000.
func bpsCut(amount units.Amount, bps units.Bps) units.Amount {
	q := uint64(amount) / units.BpsDenominator
	r := uint64(amount) % units.BpsDenominator
	return units.Amount(q*uint64(bps) + r*uint64(bps)/units.BpsDenominator)
}
