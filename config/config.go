package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	ListenAddress string     `toml:"ListenAddress"`
	DataDir       string     `toml:"DataDir"`
	Environment   string     `toml:"Environment"`
	Log           Log        `toml:"Log"`
	Auth          Auth       `toml:"Auth"`
	RateLimits    RateLimits `toml:"RateLimits"`
	Archive       Archive    `toml:"Archive"`
	Telemetry     Telemetry  `toml:"Telemetry"`
	Pauses        Pauses     `toml:"Pauses"`
	Events        Events     `toml:"Events"`

	Genesis []GenesisAllocation `toml:"Genesis"`
}

// Load loads the configuration from the given path. A missing file is
// replaced by a freshly generated default configuration.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	cfg := defaults()
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("config file %s has unknown key %s", path, undecoded[0])
	}

	if strings.TrimSpace(cfg.Environment) == "" {
		cfg.Environment = "local"
	}
	if cfg.Events.SubscriptionBuffer == 0 {
		cfg.Events.SubscriptionBuffer = 64
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		ListenAddress: "127.0.0.1:8645",
		DataDir:       "./nfi-data",
		Environment:   "local",
		Log:           Log{Level: "info", MaxSizeMB: 100, MaxBackups: 5, MaxAgeDays: 30},
		Auth:          Auth{ClockSkewSeconds: 30},
		RateLimits: RateLimits{
			Mint:  RateLimit{RatePerSecond: 5, Burst: 10},
			Admin: RateLimit{RatePerSecond: 1, Burst: 5},
			Read:  RateLimit{RatePerSecond: 50, Burst: 100},
		},
		Telemetry: Telemetry{SampleRatio: 1},
		Events:    Events{SubscriptionBuffer: 64},
	}
}

// createDefault creates and saves a default configuration file with a random
// HMAC secret.
func createDefault(path string) (*Config, error) {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, err
	}
	cfg := defaults()
	cfg.Auth.HMACSecret = hex.EncodeToString(secret)

	if err := persist(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func persist(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}
