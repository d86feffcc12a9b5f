// ABOUTME: Configuration for Charm KV backend connection
// ABOUTME: Server host, auto-sync preference, and local storage location

package charm

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/charm/kv"
)

const (
	// DefaultCharmHost is the self-hosted 2389 research server.
	DefaultCharmHost = "charm.2389.dev"

	// AppName is the application name for Charm KV database.
	AppName = "dealboard"
)

// Config holds charm connection settings.
type Config struct {
	// Host is the charm server hostname (default: charm.2389.dev)
	Host string `mapstructure:"host"`

	// AutoSync enables automatic sync after every write operation
	AutoSync bool `mapstructure:"auto_sync"`

	// Offline skips charm entirely and keeps data in a local BadgerDB
	Offline bool `mapstructure:"offline"`

	// StaleThreshold is the duration before data is considered stale and needs a sync
	StaleThreshold time.Duration `mapstructure:"stale_threshold"`
}

func DefaultConfig() *Config {
	return &Config{
		Host:           DefaultCharmHost,
		AutoSync:       true,
		StaleThreshold: kv.DefaultStaleThreshold,
	}
}

// LocalDir is where the offline BadgerDB lives.
func LocalDir() string {
	return filepath.Join(xdg.DataHome, AppName, "kv")
}

// Open returns a synced client, or a local one when the config is offline.
func Open(cfg *Config) (*Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Host == "" {
		cfg.Host = DefaultCharmHost
	}
	if cfg.Offline {
		return NewLocalClient(LocalDir())
	}
	return NewClient(cfg)
}
