package infra

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleConfig = `
app:
  name: fusionswap
  version: test
engine:
  owner: admin
  min_safety_deposit: 1000
  default_cancel_auction_secs: 3600
bridge:
  relay_url: "wss://relay.example/instructions"
  outbox_size: 16
  src_chain: icp
  dst_chain: evm
  src_decimals: 8
  dst_decimals: 18
logging:
  level: debug
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("parses and validates", func(t *testing.T) {
		cfg, err := LoadConfig(writeConfig(t, sampleConfig))
		if err != nil {
			t.Fatal(err)
		}
		if cfg.Engine.Owner != "admin" || cfg.Bridge.OutboxSize != 16 {
			t.Errorf("Unexpected config: %+v", cfg)
		}
	})

	t.Run("env overrides owner", func(t *testing.T) {
		t.Setenv("FUSION_OWNER", "root-principal")
		cfg, err := LoadConfig(writeConfig(t, sampleConfig))
		if err != nil {
			t.Fatal(err)
		}
		if cfg.Engine.Owner != "root-principal" {
			t.Errorf("Expected env override, got %s", cfg.Engine.Owner)
		}
	})

	t.Run("rejects non-websocket relay URL", func(t *testing.T) {
		bad := sampleConfig
		cfg, err := LoadConfig(writeConfig(t, bad))
		if err != nil {
			t.Fatal(err)
		}
		cfg.Bridge.RelayURL = "https://relay.example"
		if err := cfg.Validate(); err == nil {
			t.Error("Expected validation error")
		}
	})

	t.Run("rejects missing owner", func(t *testing.T) {
		cfg, err := LoadConfig(writeConfig(t, sampleConfig))
		if err != nil {
			t.Fatal(err)
		}
		cfg.Engine.Owner = ""
		if err := cfg.Validate(); err == nil {
			t.Error("Expected validation error")
		}
	})
}
