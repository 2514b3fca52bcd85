// Package units defines the typed integer units used across the engine.
// All monetary values are strictly unsigned smallest on-chain units.
package units

// Amount is a quantity in the smallest unit of its asset's chain.
type Amount uint64

// Timestamp is Unix seconds.
type Timestamp uint64

// Duration is a span in seconds.
type Duration uint64

// OrderID uniquely identifies an order. Assigned by the creator.
type OrderID uint64

// Bps is a fee rate in basis points (1/10000).
type Bps uint32

// BpsDenominator is the basis-point scale.
const BpsDenominator = 10000

// Add returns t shifted forward by d.
func (t Timestamp) Add(d Duration) Timestamp {
	return t + Timestamp(d)
}
