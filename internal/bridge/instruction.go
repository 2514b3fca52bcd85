// Package bridge is the boundary to the ledger-access layer. The engine
// never moves assets itself: it emits fire-and-forget instructions after its
// local state is committed, and confirmations arrive later as separate
// signals.
package bridge

import (
	"encoding/json"
	"math/big"
	"strings"

	"fusionswap/pkg/units"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind discriminates what the custody layer should do.
type Kind string

const (
	// KindTransfer pays the maker on the destination chain, net of fees.
	KindTransfer Kind = "TRANSFER"
	// KindRelease releases filled source escrow to the taker.
	KindRelease Kind = "RELEASE"
	// KindRefund returns remaining source escrow to the maker.
	KindRefund Kind = "REFUND"
	// KindPremium pays the cancellation premium to the canceller.
	KindPremium Kind = "PREMIUM"
)

// Instruction is one custody action. ID is a UUID idempotency key: the relay
// may redeliver, the custody layer must apply at most once.
type Instruction struct {
	ID        string
	Kind      Kind
	OrderID   units.OrderID
	Chain     string
	Asset     string
	Amount    units.Amount
	Decimals  int32
	Recipient string
}

// NewInstruction stamps a fresh idempotency key.
func NewInstruction(kind Kind, orderID units.OrderID, chain, asset string, amount units.Amount, decimals int32, recipient string) Instruction {
	return Instruction{
		ID:        uuid.NewString(),
		Kind:      kind,
		OrderID:   orderID,
		Chain:     chain,
		Asset:     asset,
		Amount:    amount,
		Decimals:  decimals,
		Recipient: recipient,
	}
}

// wireInstruction is the relay JSON shape. Amounts cross the boundary as
// decimal strings scaled out of smallest units.
type wireInstruction struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	OrderID   uint64 `json:"order_id"`
	Chain     string `json:"chain"`
	Asset     string `json:"asset"`
	Amount    string `json:"amount"`
	Recipient string `json:"recipient"`
}

// MarshalWire encodes the instruction for the relay socket.
func (in *Instruction) MarshalWire() ([]byte, error) {
	amt := decimal.NewFromBigInt(new(big.Int).SetUint64(uint64(in.Amount)), -in.Decimals)
	return json.Marshal(wireInstruction{
		ID:        in.ID,
		Kind:      string(in.Kind),
		OrderID:   uint64(in.OrderID),
		Chain:     in.Chain,
		Asset:     in.Asset,
		Amount:    amt.String(),
		Recipient: in.Recipient,
	})
}

// ValidRecipient accepts checksummable hex addresses for the EVM side and
// any non-empty textual principal for the canister side.
func ValidRecipient(addr string) bool {
	if strings.HasPrefix(addr, "0x") || strings.HasPrefix(addr, "0X") {
		return common.IsHexAddress(addr)
	}
	return addr != ""
}

// Adapter is the capability the engine holds. Enqueue must never block and
// never fail inline: delivery problems surface later as confirmation signals.
type Adapter interface {
	Enqueue(Instruction)
}
