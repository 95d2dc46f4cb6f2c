// Package config holds the settings an order book client is built from.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trufnetwork/orderbook-go/core/types"
)

// Config is populated from a TOML file and then overridden by TN_* environment
// variables.
type Config struct {
	Node     NodeConfig    `toml:"node"`
	Market   MarketConfig  `toml:"market"`
	Redis    RedisConfig   `toml:"redis"`
	Metrics  MetricsConfig `toml:"metrics"`
	LogLevel string        `toml:"log_level" validate:"oneof=debug info warn error"`
}

// NodeConfig points at the gateway and the key that signs transactions.
type NodeConfig struct {
	Endpoint            string   `toml:"endpoint" validate:"required,url"`
	PrivateKey          string   `toml:"private_key" validate:"omitempty,hexadecimal,len=64"` // without 0x
	PollInterval        Duration `toml:"poll_interval"`
	ConfirmationTimeout Duration `toml:"confirmation_timeout"`
}

// MarketConfig holds defaults for market creation.
type MarketConfig struct {
	DefaultBridge string `toml:"default_bridge" validate:"required"`
}

// RedisConfig enables the client-side market cache.
type RedisConfig struct {
	Enabled      bool     `toml:"enabled"`
	Addr         string   `toml:"addr" validate:"required_if=Enabled true"`
	Password     string   `toml:"password"`
	DB           int      `toml:"db" validate:"gte=0"`
	UnsettledTTL Duration `toml:"unsettled_ttl"`
	Prefix       string   `toml:"prefix"`
}

// MetricsConfig exposes Prometheus metrics when ListenAddr is set.
type MetricsConfig struct {
	ListenAddr string `toml:"listen_addr" validate:"omitempty,hostname_port"`
}

// Duration lets TOML carry strings like "2s" or "5m".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a config for a local node.
func Defaults() Config {
	return Config{
		Node: NodeConfig{
			Endpoint:            "http://localhost:8484",
			PollInterval:        Duration{time.Second},
			ConfirmationTimeout: Duration{30 * time.Second},
		},
		Market: MarketConfig{
			DefaultBridge: "hoodi_tt2",
		},
		Redis: RedisConfig{
			Addr:         "localhost:6379",
			UnsettledTTL: Duration{30 * time.Second},
			Prefix:       "orderbook:",
		},
		LogLevel: "info",
	}
}

// Validate checks struct tags and the cross-field rules tags cannot express.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	var problems []string
	if !types.ValidBridges[c.Market.DefaultBridge] {
		problems = append(problems, fmt.Sprintf("market.default_bridge %q is not a known bridge", c.Market.DefaultBridge))
	}
	if c.Node.PollInterval.Duration <= 0 {
		problems = append(problems, "node.poll_interval must be positive")
	}
	if c.Node.ConfirmationTimeout.Duration < c.Node.PollInterval.Duration {
		problems = append(problems, "node.confirmation_timeout must be at least node.poll_interval")
	}
	if c.Redis.Enabled && c.Redis.UnsettledTTL.Duration <= 0 {
		problems = append(problems, "redis.unsettled_ttl must be positive")
	}
	if len(problems) > 0 {
		return fmt.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}
