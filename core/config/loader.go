package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// Load merges the TOML file at path over Defaults and applies TN_* overrides.
// An empty path skips the file. A .env file in the working directory is read
// when present. A 0x prefix on the private key is stripped. The result is not
// validated; call Validate before use.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, errors.Wrapf(err, "config: decode %s", path)
		}
	}

	_ = godotenv.Load()

	applyEnvOverrides(&cfg)
	cfg.Node.PrivateKey = strings.TrimPrefix(strings.TrimSpace(cfg.Node.PrivateKey), "0x")

	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	setStr(&cfg.Node.Endpoint, "TN_ENDPOINT")
	setStr(&cfg.Node.PrivateKey, "TN_PRIVATE_KEY")
	setDuration(&cfg.Node.PollInterval, "TN_POLL_INTERVAL")
	setDuration(&cfg.Node.ConfirmationTimeout, "TN_CONFIRMATION_TIMEOUT")

	setStr(&cfg.Market.DefaultBridge, "TN_DEFAULT_BRIDGE")

	setBool(&cfg.Redis.Enabled, "TN_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "TN_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "TN_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "TN_REDIS_DB")
	setDuration(&cfg.Redis.UnsettledTTL, "TN_REDIS_UNSETTLED_TTL")
	setStr(&cfg.Redis.Prefix, "TN_REDIS_PREFIX")

	setStr(&cfg.Metrics.ListenAddr, "TN_METRICS_LISTEN_ADDR")

	setStr(&cfg.LogLevel, "TN_LOG_LEVEL")
}

// Each setter only touches dst when the variable is set and parses.

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}
