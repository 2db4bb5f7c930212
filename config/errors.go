package config

import "errors"

var (
	// ErrInvalidMinPayout indicates a non-positive minimum payout floor.
	ErrInvalidMinPayout = errors.New("config: minimum payout must be positive")

	// ErrInvalidDuration indicates a non-positive rewards duration.
	ErrInvalidDuration = errors.New("config: rewards duration must be positive")

	// ErrConfigNotFound indicates the configuration file does not exist.
	ErrConfigNotFound = errors.New("config: configuration file not found")

	// ErrInvalidConfigLine indicates a line in the config file is malformed.
	ErrInvalidConfigLine = errors.New("config: invalid configuration line")
)
