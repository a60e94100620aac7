package infra

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultUserAgent is a browser-like user agent string to avoid bot detection
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// WalletConfig describes one wallet daemon backing an account.
type WalletConfig struct {
	RestURL   string `yaml:"rest_url"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

// Config holds all application settings. Sensitive values are overridden
// from environment variables after loading.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	API struct {
		ShapeShift struct {
			RestURL string `yaml:"rest_url"`
			APIKey  string `yaml:"api_key"`
		} `yaml:"shapeshift"`
		Coinbase struct {
			WSURL    string   `yaml:"ws_url"`
			Products []string `yaml:"products"`
		} `yaml:"coinbase"`
	} `yaml:"api"`

	Transfer struct {
		QuoteTTLSec int                     `yaml:"quote_ttl_sec"`
		Wallets     map[string]WalletConfig `yaml:"wallets"` // keyed by currency code
	} `yaml:"transfer"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// LoadConfig reads and parses the configuration file.
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

// Validate checks configuration validity
func (c *Config) Validate() error {
	if c.API.ShapeShift.RestURL == "" || (!hasPrefix(c.API.ShapeShift.RestURL, "http://") && !hasPrefix(c.API.ShapeShift.RestURL, "https://")) {
		return fmt.Errorf("invalid ShapeShift REST URL: %s", c.API.ShapeShift.RestURL)
	}

	if c.API.Coinbase.WSURL != "" && !hasPrefix(c.API.Coinbase.WSURL, "ws://") && !hasPrefix(c.API.Coinbase.WSURL, "wss://") {
		return fmt.Errorf("invalid Coinbase WS URL: %s", c.API.Coinbase.WSURL)
	}

	if c.Transfer.QuoteTTLSec < 0 {
		return fmt.Errorf("quote TTL must not be negative")
	}

	for code, w := range c.Transfer.Wallets {
		if w.RestURL == "" || (!hasPrefix(w.RestURL, "http://") && !hasPrefix(w.RestURL, "https://")) {
			return fmt.Errorf("invalid wallet REST URL for %s: %s", code, w.RestURL)
		}
	}

	return nil
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[0:len(prefix)] == prefix
}

// overrideWithEnv overrides config values from environment variables when present.
func overrideWithEnv(cfg *Config) {
	if key := os.Getenv("BALANCE_SHAPESHIFT_KEY"); key != "" {
		cfg.API.ShapeShift.APIKey = key
	}
	if key := os.Getenv("BALANCE_WALLET_KEY"); key != "" {
		for code, w := range cfg.Transfer.Wallets {
			w.AccessKey = key
			cfg.Transfer.Wallets[code] = w
		}
	}
	if secret := os.Getenv("BALANCE_WALLET_SECRET"); secret != "" {
		for code, w := range cfg.Transfer.Wallets {
			w.SecretKey = secret
			cfg.Transfer.Wallets[code] = w
		}
	}
}
