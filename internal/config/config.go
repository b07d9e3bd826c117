package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configurable parameters for the multi-coin client.
type Config struct {
	// PollInterval is the address-watch poll interval per coin.
	PollInterval map[string]time.Duration

	// DefaultSatPerByte is the fee rate used when on-chain estimation
	// is unavailable, per coin.
	DefaultSatPerByte map[string]int64

	// Send/broadcast behavior.
	BroadcastMaxRetries int
	ContextTimeout      time.Duration
}

// Default returns a Config populated with default values matching the
// CoinPolicy.DefaultSatPerByte table in pkg/coins.
func Default() Config {
	return Config{
		PollInterval: map[string]time.Duration{
			"btc":  2 * time.Second,
			"bch":  2 * time.Second,
			"ltc":  2 * time.Second,
			"dash": 2 * time.Second,
			"doge": 2 * time.Second,
		},
		DefaultSatPerByte: map[string]int64{
			"btc":  10,
			"bch":  1,
			"ltc":  10,
			"dash": 1,
			"doge": 1,
		},
		BroadcastMaxRetries: 3,
		ContextTimeout:      15 * time.Second,
	}
}

// FromEnv returns a Config populated from environment variables,
// falling back to defaults for unset values. Per-coin overrides use
// <COIN>_POLL_INTERVAL and <COIN>_SAT_PER_BYTE, e.g. BTC_POLL_INTERVAL,
// DOGE_SAT_PER_BYTE.
func FromEnv() Config {
	cfg := Default()

	for _, coin := range []string{"btc", "bch", "ltc", "dash", "doge"} {
		upper := strings.ToUpper(coin)
		if v := os.Getenv(upper + "_POLL_INTERVAL"); v != "" {
			if d, err := time.ParseDuration(v); err == nil {
				cfg.PollInterval[coin] = d
			}
		}
		if v := os.Getenv(upper + "_SAT_PER_BYTE"); v != "" {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil {
				cfg.DefaultSatPerByte[coin] = n
			}
		}
	}

	if v := os.Getenv("BROADCAST_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.BroadcastMaxRetries = n
		}
	}
	if v := os.Getenv("CONTEXT_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.ContextTimeout = d
		}
	}

	return cfg
}
