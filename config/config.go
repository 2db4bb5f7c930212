package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Defaults for engine configuration.
const (
	// DefaultMinPayout is the minimum per-member payout in base units.
	// Shares below this floor make a distribution round a no-op.
	DefaultMinPayout = 1_000_000

	// DefaultRewardsDuration is the staking reward period length in
	// seconds (7 days).
	DefaultRewardsDuration = 7 * 24 * 60 * 60
)

// Config holds engine configuration.
type Config struct {
	// DataDir is where durable state lives. Empty disables persistence.
	DataDir string

	// MinPayout is the minimum per-member payout in base units.
	MinPayout int64

	// RewardsDuration is the staking reward period length in seconds.
	RewardsDuration int64
}

// DefaultConfig returns a configuration with all defaults applied and no
// persistence.
func DefaultConfig() Config {
	return Config{
		MinPayout:       DefaultMinPayout,
		RewardsDuration: DefaultRewardsDuration,
	}
}

// ConfigPath returns the config file path inside dataDir.
func ConfigPath(dataDir string) string {
	return filepath.Join(dataDir, "config")
}

// SaveConfig writes the configuration as key = value lines, creating the
// parent directory if needed.
func SaveConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}

	var b strings.Builder
	b.WriteString("# RevDist Configuration\n")
	fmt.Fprintf(&b, "datadir = %s\n", cfg.DataDir)
	fmt.Fprintf(&b, "minpayout = %d\n", cfg.MinPayout)
	fmt.Fprintf(&b, "rewardsduration = %d\n", cfg.RewardsDuration)

	return os.WriteFile(path, []byte(b.String()), 0600)
}

// LoadConfig reads a configuration file. Missing keys retain their
// defaults; unknown keys are ignored for forward compatibility.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return cfg, fmt.Errorf("config: read file: %w", err)
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return cfg, fmt.Errorf("%w: %q", ErrInvalidConfigLine, line)
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "datadir":
			cfg.DataDir = value
		case "minpayout":
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return cfg, fmt.Errorf("%w: %q", ErrInvalidConfigLine, line)
			}
			cfg.MinPayout = n
		case "rewardsduration":
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return cfg, fmt.Errorf("%w: %q", ErrInvalidConfigLine, line)
			}
			cfg.RewardsDuration = n
		}
	}
	return cfg, nil
}
