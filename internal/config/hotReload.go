package config

import (
	"fmt"
	"time"
)

// MaxReloadDebounce caps how long a burst of file events may be coalesced.
const MaxReloadDebounce = time.Minute

// HotReloadConfig controls re-reading the config file while the demo runs.
// Only the logging level is applied live.
type HotReloadConfig struct {
	Enabled  bool          `json:"enabled" yaml:"enabled"`
	Debounce time.Duration `json:"debounce" yaml:"debounce"`
}

func DefaultHotReloadConfig() HotReloadConfig {
	return HotReloadConfig{
		Enabled:  true,
		Debounce: 500 * time.Millisecond,
	}
}

// Watches reports whether configFile should be watched. Without a file
// there is nothing to reload.
func (h HotReloadConfig) Watches(configFile string) bool {
	return h.Enabled && configFile != ""
}

func (h HotReloadConfig) Validate() error {
	if h.Debounce < 0 || h.Debounce > MaxReloadDebounce {
		return fmt.Errorf("debounce %s out of range [0,%s]", h.Debounce, MaxReloadDebounce)
	}
	return nil
}
