package infra

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds every runtime setting. Sensitive or deployment-specific
// values can be overridden through environment variables after the file is
// parsed.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Engine struct {
		// Owner is the principal allowed to administer the resolver registry.
		Owner string `yaml:"owner"`
		// MinSafetyDeposit gates privileged fills and premium cancellations.
		MinSafetyDeposit uint64 `yaml:"min_safety_deposit"`
		// DefaultCancelAuctionSecs applies when an order omits its own window.
		DefaultCancelAuctionSecs uint64 `yaml:"default_cancel_auction_secs"`
	} `yaml:"engine"`

	Bridge struct {
		RelayURL    string `yaml:"relay_url"`
		OutboxSize  int    `yaml:"outbox_size"`
		SrcChain    string `yaml:"src_chain"`
		DstChain    string `yaml:"dst_chain"`
		SrcDecimals int32  `yaml:"src_decimals"`
		DstDecimals int32  `yaml:"dst_decimals"`
	} `yaml:"bridge"`

	Storage struct {
		// Path overrides the default per-user database location.
		Path string `yaml:"path"`
	} `yaml:"storage"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// LoadConfig reads and parses the config file, applies env overrides and
// validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	overrideWithEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	if c.Engine.Owner == "" {
		return fmt.Errorf("engine owner principal is required")
	}
	if c.Bridge.RelayURL == "" || (!hasPrefix(c.Bridge.RelayURL, "ws://") && !hasPrefix(c.Bridge.RelayURL, "wss://")) {
		return fmt.Errorf("invalid relay URL: %s", c.Bridge.RelayURL)
	}
	if c.Bridge.OutboxSize <= 0 {
		return fmt.Errorf("bridge outbox size must be positive")
	}
	if c.Bridge.SrcChain == "" || c.Bridge.DstChain == "" {
		return fmt.Errorf("both chain identifiers are required")
	}
	return nil
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[0:len(prefix)] == prefix
}

// overrideWithEnv replaces values from the environment when set.
func overrideWithEnv(cfg *Config) {
	if owner := os.Getenv("FUSION_OWNER"); owner != "" {
		cfg.Engine.Owner = owner
	}
	if url := os.Getenv("FUSION_RELAY_URL"); url != "" {
		cfg.Bridge.RelayURL = url
	}
	if path := os.Getenv("FUSION_DB_PATH"); path != "" {
		cfg.Storage.Path = path
	}
}
