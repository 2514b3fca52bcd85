package bridge

import (
	"encoding/json"
	"testing"
)

func TestInstruction_MarshalWire(t *testing.T) {
	in := NewInstruction(KindTransfer, 9, "evm", "USDC", 1_500_000_000, 8, "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")

	payload, err := in.MarshalWire()
	if err != nil {
		t.Fatal(err)
	}

	var wire map[string]any
	if err := json.Unmarshal(payload, &wire); err != nil {
		t.Fatal(err)
	}

	t.Run("amount is scaled out of smallest units", func(t *testing.T) {
		if got := wire["amount"]; got != "15" {
			t.Errorf("Expected \"15\", got %v", got)
		}
	})

	t.Run("idempotency key is carried", func(t *testing.T) {
		if wire["id"] == "" || wire["id"] != in.ID {
			t.Errorf("Expected id %q, got %v", in.ID, wire["id"])
		}
	})

	t.Run("order id and kind survive", func(t *testing.T) {
		if got := wire["order_id"]; got != float64(9) {
			t.Errorf("Expected order_id 9, got %v", got)
		}
		if got := wire["kind"]; got != "TRANSFER" {
			t.Errorf("Expected TRANSFER, got %v", got)
		}
	})
}

func TestNewInstruction_UniqueIDs(t *testing.T) {
	a := NewInstruction(KindRefund, 1, "icp", "ICP", 1, 8, "p")
	b := NewInstruction(KindRefund, 1, "icp", "ICP", 1, 8, "p")
	if a.ID == b.ID {
		t.Error("Instruction ids must be unique")
	}
}

func TestValidRecipient(t *testing.T) {
	cases := []struct {
		addr string
		ok   bool
	}{
		{"0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", true},
		{"0x123", false},
		{"0Xnothex", false},
		{"aaaaa-aa", true}, // canister principal
		{"", false},
	}
	for _, c := range cases {
		if got := ValidRecipient(c.addr); got != c.ok {
			t.Errorf("ValidRecipient(%q) = %v, want %v", c.addr, got, c.ok)
		}
	}
}
