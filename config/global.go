package config

import (
	"os"
	"strings"

	nativecommon "github.com/nfidao/nfi-smart-contract/native/common"
)

// IsPaused reports whether the named module is halted. It lets Pauses serve
// directly as the engines' pause view.
func (p Pauses) IsPaused(module string) bool {
	switch strings.ToLower(strings.TrimSpace(module)) {
	case nativecommon.ModuleMinting:
		return p.Minting
	case nativecommon.ModuleFactory:
		return p.Factory
	default:
		return false
	}
}

// Secret returns the HMAC secret, preferring the environment variable named by
// HMACSecretEnv when it is set and non-empty.
func (a Auth) Secret() string {
	if name := strings.TrimSpace(a.HMACSecretEnv); name != "" {
		if value := strings.TrimSpace(os.Getenv(name)); value != "" {
			return value
		}
	}
	return strings.TrimSpace(a.HMACSecret)
}
