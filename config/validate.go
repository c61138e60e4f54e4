package config

import (
	"fmt"
	"log/slog"
	"math/big"
	"net"
	"strings"

	"github.com/nfidao/nfi-smart-contract/crypto"
	"github.com/nfidao/nfi-smart-contract/observability/logging"
)

// MinSecretLength is the shortest accepted HMAC secret.
var MinSecretLength = 32

// Validate rejects configurations the daemon cannot run with.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config: nil config")
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		return fmt.Errorf("config: DataDir required")
	}
	if _, _, err := net.SplitHostPort(cfg.ListenAddress); err != nil {
		return fmt.Errorf("config: ListenAddress %q: %w", cfg.ListenAddress, err)
	}
	if len(cfg.Auth.Secret()) < MinSecretLength {
		return fmt.Errorf("config: auth secret must be at least %d bytes", MinSecretLength)
	}
	if cfg.Auth.ClockSkewSeconds < 0 {
		return fmt.Errorf("config: auth ClockSkewSeconds must not be negative")
	}
	for name, limit := range map[string]RateLimit{
		"Mint":  cfg.RateLimits.Mint,
		"Admin": cfg.RateLimits.Admin,
		"Read":  cfg.RateLimits.Read,
	} {
		if limit.RatePerSecond < 0 || limit.Burst < 0 {
			return fmt.Errorf("config: RateLimits.%s must not be negative", name)
		}
		if limit.RatePerSecond > 0 && limit.Burst == 0 {
			return fmt.Errorf("config: RateLimits.%s burst must be positive when a rate is set", name)
		}
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Archive.Driver)) {
	case "":
	case "sqlite", "postgres":
		if strings.TrimSpace(cfg.Archive.DSN) == "" {
			return fmt.Errorf("config: Archive.DSN required for driver %q", cfg.Archive.Driver)
		}
	default:
		return fmt.Errorf("config: unsupported archive driver %q", cfg.Archive.Driver)
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Log.Level)) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("config: unsupported Log.Level %q", cfg.Log.Level)
	}
	if cfg.Telemetry.SampleRatio < 0 || cfg.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("config: Telemetry.SampleRatio must be within [0,1]")
	}
	if cfg.Events.SubscriptionBuffer < 0 {
		return fmt.Errorf("config: Events.SubscriptionBuffer must not be negative")
	}
	if _, err := cfg.GenesisBalances(); err != nil {
		return err
	}
	return nil
}

// Funding is a decoded genesis allocation.
type Funding struct {
	Address [20]byte
	Amount  *big.Int
}

// GenesisBalances decodes the genesis allocations. Each address appears at most
// once and every amount is positive.
func (c *Config) GenesisBalances() ([]Funding, error) {
	out := make([]Funding, 0, len(c.Genesis))
	seen := make(map[[20]byte]struct{}, len(c.Genesis))
	for i, alloc := range c.Genesis {
		addr, err := crypto.ParseAddress(alloc.Address)
		if err != nil {
			return nil, fmt.Errorf("config: Genesis[%d].Address: %w", i, err)
		}
		if addr == ([20]byte{}) {
			return nil, fmt.Errorf("config: Genesis[%d].Address must not be zero", i)
		}
		if _, dup := seen[addr]; dup {
			return nil, fmt.Errorf("config: Genesis[%d].Address %s listed twice", i, alloc.Address)
		}
		seen[addr] = struct{}{}
		amount, ok := new(big.Int).SetString(strings.TrimSpace(alloc.Amount), 10)
		if !ok || amount.Sign() <= 0 {
			return nil, fmt.Errorf("config: Genesis[%d].Amount %q must be a positive integer", i, alloc.Amount)
		}
		out = append(out, Funding{Address: addr, Amount: amount})
	}
	return out, nil
}

// LogLevel returns the configured level, defaulting to info.
func (c *Config) LogLevel() slog.Level {
	return logging.ParseLevel(c.Log.Level)
}
