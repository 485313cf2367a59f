package config

import (
	"os"
	"path/filepath"
)

// EnvConfigPath overrides the configuration file location.
const EnvConfigPath = "SAFEPROXY_CONFIG"

// GetConfigPath returns $SAFEPROXY_CONFIG or ~/.safeproxy.yml.
func GetConfigPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".safeproxy.yml"
	}
	return filepath.Join(home, ".safeproxy.yml")
}

// StatePath returns ~/.safeproxy.<suffix>, the home of pidfiles and logs.
func StatePath(suffix string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".safeproxy." + suffix
	}
	return filepath.Join(home, ".safeproxy."+suffix)
}
