package config

// Log controls the structured logger. An empty File keeps output on stdout.
type Log struct {
	Level      string `toml:"Level"`
	File       string `toml:"File"`
	MaxSizeMB  int    `toml:"MaxSizeMB"`
	MaxBackups int    `toml:"MaxBackups"`
	MaxAgeDays int    `toml:"MaxAgeDays"`
	Compress   bool   `toml:"Compress"`
}

// Auth configures bearer token verification on the HTTP API. Tokens are HS256
// JWTs whose subject is the caller address.
type Auth struct {
	HMACSecret       string `toml:"HMACSecret"`
	HMACSecretEnv    string `toml:"HMACSecretEnv"`
	Issuer           string `toml:"Issuer"`
	Audience         string `toml:"Audience"`
	ClockSkewSeconds int64  `toml:"ClockSkewSeconds"`
}

// RateLimit is a token bucket applied per caller.
type RateLimit struct {
	RatePerSecond float64 `toml:"RatePerSecond"`
	Burst         int     `toml:"Burst"`
}

// RateLimits groups the buckets of each route class.
type RateLimits struct {
	Mint  RateLimit `toml:"Mint"`
	Admin RateLimit `toml:"Admin"`
	Read  RateLimit `toml:"Read"`
}

// Archive selects the optional event archive. An empty Driver disables it.
type Archive struct {
	Driver string `toml:"Driver"`
	DSN    string `toml:"DSN"`
}

// Telemetry configures OTLP export.
type Telemetry struct {
	Endpoint    string  `toml:"Endpoint"`
	Insecure    bool    `toml:"Insecure"`
	Headers     string  `toml:"Headers"`
	Metrics     bool    `toml:"Metrics"`
	Traces      bool    `toml:"Traces"`
	SampleRatio float64 `toml:"SampleRatio"`
}

// Pauses halts modules without a restart of the engines' state.
type Pauses struct {
	Minting bool `toml:"Minting"`
	Factory bool `toml:"Factory"`
}

// Events tunes the committed event stream.
type Events struct {
	SubscriptionBuffer int `toml:"SubscriptionBuffer"`
}

// GenesisAllocation funds an account with native currency the first time the
// state database is opened. Amount is a base-10 integer.
type GenesisAllocation struct {
	Address string `toml:"Address"`
	Amount  string `toml:"Amount"`
}
