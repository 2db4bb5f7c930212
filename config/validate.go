package config

// ValidateConfig checks that all configuration values are within acceptable
// ranges and returns the first error encountered, or nil if valid.
func ValidateConfig(cfg Config) error {
	if cfg.MinPayout <= 0 {
		return ErrInvalidMinPayout
	}
	if cfg.RewardsDuration <= 0 {
		return ErrInvalidDuration
	}
	return nil
}
