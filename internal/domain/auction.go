package domain

import (
	"fmt"
	"math/big"

	"fusionswap/pkg/units"
)

// AuctionData describes a Dutch auction: the price moves linearly from
// StartPrice at StartTime to EndPrice at EndTime.
type AuctionData struct {
	StartPrice units.Amount
	EndPrice   units.Amount
	StartTime  units.Timestamp
	EndTime    units.Timestamp
	// CurrentPrice is derived, never authoritative. It is refreshed on fills
	// for observability but pricing always recomputes from now.
	CurrentPrice units.Amount
}

// Validate rejects degenerate windows.
func (a *AuctionData) Validate() error {
	if a.StartTime >= a.EndTime {
		return fmt.Errorf("%w: auction start %d not before end %d",
			ErrInvalidTimeRange, a.StartTime, a.EndTime)
	}
	return nil
}

// PriceAt evaluates the curve at now. Clamps to StartPrice before the window
// and EndPrice after it. Deterministic: now is the only time input.
func (a *AuctionData) PriceAt(now units.Timestamp) units.Amount {
	if now <= a.StartTime {
		return a.StartPrice
	}
	if now >= a.EndTime {
		return a.EndPrice
	}

	elapsed := uint64(now - a.StartTime)
	span := uint64(a.EndTime - a.StartTime)

	// Wide intermediates: |end-start| * elapsed may exceed 64 bits.
	var diff uint64
	descending := a.EndPrice <= a.StartPrice
	if descending {
		diff = uint64(a.StartPrice - a.EndPrice)
	} else {
		diff = uint64(a.EndPrice - a.StartPrice)
	}

	delta := new(big.Int).SetUint64(diff)
	delta.Mul(delta, new(big.Int).SetUint64(elapsed))
	delta.Div(delta, new(big.Int).SetUint64(span))
	d := units.Amount(delta.Uint64())

	if descending {
		return a.StartPrice - d
	}
	return a.StartPrice + d
}

// FillPrice is the full-order destination amount a filler must deliver at
// now. The curve result is floored at minDst regardless of position.
func (a *AuctionData) FillPrice(now units.Timestamp, minDst units.Amount) units.Amount {
	p := a.PriceAt(now)
	if p < minDst {
		return minDst
	}
	return p
}

// ProRate scales a full-order destination price down to a partial fill of
// amount out of total source units. Rounds up so the maker is never shorted.
func ProRate(price, amount, total units.Amount) units.Amount {
	if amount >= total {
		return price
	}
	n := new(big.Int).SetUint64(uint64(price))
	n.Mul(n, new(big.Int).SetUint64(uint64(amount)))
	n.Add(n, new(big.Int).SetUint64(uint64(total)-1))
	n.Div(n, new(big.Int).SetUint64(uint64(total)))
	return units.Amount(n.Uint64())
}

// CancelPremium prices the cancellation incentive at now. The premium auction
// opens at the order's expiration and grows linearly from zero to
// maxPremium over auctionSecs. Before expiry the premium is zero; with a
// zero-length auction it jumps straight to the cap once expired.
func CancelPremium(expiration units.Timestamp, auctionSecs units.Duration, maxPremium units.Amount, now units.Timestamp) units.Amount {
	if now <= expiration || maxPremium == 0 {
		return 0
	}
	if auctionSecs == 0 {
		return maxPremium
	}
	curve := AuctionData{
		StartPrice: 0,
		EndPrice:   maxPremium,
		StartTime:  expiration,
		EndTime:    expiration.Add(auctionSecs),
	}
	return curve.PriceAt(now)
}
