package domain

import (
	"fmt"

	"fusionswap/pkg/units"
)

// OrderStatus is the observable lifecycle state of an order.
// Transitions are one-directional: a terminal order never changes again.
type OrderStatus string

const (
	// StatusAnnounced means the order exists but the maker's source funds are
	// not yet confirmed locked in escrow.
	StatusAnnounced OrderStatus = "ANNOUNCED"
	// StatusActive means escrow funding is confirmed and the order is fillable.
	StatusActive OrderStatus = "ACTIVE"
	// StatusCompleted means cumulative fills reached the full source amount.
	StatusCompleted OrderStatus = "COMPLETED"
	// StatusCancelled means the order was cancelled by the maker or a resolver.
	StatusCancelled OrderStatus = "CANCELLED"
	// StatusFailed means the order died without settlement; StatusReason says why.
	StatusFailed OrderStatus = "FAILED"
)

// ReasonExpired is the StatusReason stamped by the expiration sweep.
const ReasonExpired = "expired"

// Order is a cross-chain swap order. The engine owns all instances
// exclusively; callers only ever see copies.
type Order struct {
	ID    units.OrderID
	Maker string
	// Taker is set on the first fill and owns the exclusive withdraw window.
	Taker string

	SrcAsset           string
	DstAsset           string
	SrcAmount          units.Amount
	MinDstAmount       units.Amount
	EstimatedDstAmount units.Amount
	// FilledAmount accumulates source units across partial fills.
	FilledAmount units.Amount

	Auction  AuctionData
	Fee      FeeConfig
	Lock     HashLock
	Timelock TimeLock

	Status       OrderStatus
	StatusReason string

	CreatedAt         units.Timestamp
	ExpirationTime    units.Timestamp
	CancelAuctionSecs units.Duration
}

// OrderConfig is the caller-supplied shape of create_order. The engine stamps
// CreatedAt and derives the rest.
type OrderConfig struct {
	ID                 units.OrderID
	Maker              string
	SrcAsset           string
	DstAsset           string
	SrcAmount          units.Amount
	MinDstAmount       units.Amount
	EstimatedDstAmount units.Amount
	Auction            AuctionData
	Fee                FeeConfig
	SecretHash         [HashLen]byte
	Timelock           TimeLock
	ExpirationTime     units.Timestamp
	CancelAuctionSecs  units.Duration
}

// Validate checks the config at the point it is attached to an order, so a
// bad config can never enter the store. now is the creation timestamp.
func (c *OrderConfig) Validate(now units.Timestamp) error {
	if c.SrcAmount == 0 {
		return fmt.Errorf("%w: src_amount is zero", ErrInvalidAmount)
	}
	if c.MinDstAmount > c.EstimatedDstAmount {
		return fmt.Errorf("%w: min_dst_amount %d exceeds estimated %d",
			ErrInvalidAmount, c.MinDstAmount, c.EstimatedDstAmount)
	}
	if err := c.Auction.Validate(); err != nil {
		return err
	}
	if c.ExpirationTime <= now {
		return fmt.Errorf("%w: expiration %d not after creation %d",
			ErrInvalidTimeRange, c.ExpirationTime, now)
	}
	if err := c.Fee.Validate(); err != nil {
		return err
	}
	return nil
}

// Build materializes an Announced order from a validated config.
func (c *OrderConfig) Build(now units.Timestamp) Order {
	tl := c.Timelock
	tl.CreatedAt = now
	return Order{
		ID:                 c.ID,
		Maker:              c.Maker,
		SrcAsset:           c.SrcAsset,
		DstAsset:           c.DstAsset,
		SrcAmount:          c.SrcAmount,
		MinDstAmount:       c.MinDstAmount,
		EstimatedDstAmount: c.EstimatedDstAmount,
		Auction:            c.Auction,
		Fee:                c.Fee,
		Lock:               HashLock{SecretHash: c.SecretHash},
		Timelock:           tl,
		Status:             StatusAnnounced,
		CreatedAt:          now,
		ExpirationTime:     c.ExpirationTime,
		CancelAuctionSecs:  c.CancelAuctionSecs,
	}
}

// IsOpen reports whether the order can still transition.
func (o *Order) IsOpen() bool {
	return o.Status == StatusAnnounced || o.Status == StatusActive
}

// IsTerminal reports whether the order is immutable.
func (o *Order) IsTerminal() bool {
	return !o.IsOpen()
}

// Remaining is the unfilled source amount.
func (o *Order) Remaining() units.Amount {
	return o.SrcAmount - o.FilledAmount
}
