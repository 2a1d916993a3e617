package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrConfigNotFound = goerr.New("configuration file not found")
	ErrInvalidConfig  = goerr.New("invalid configuration")
	ErrMissingOption  = goerr.New("required option is missing")
	ErrInvalidBackend = goerr.New("invalid backend")
)

// Context keys for error values
const (
	ConfigPathKey = "config_path"
	OptionKey     = "option"
	BackendKey    = "backend"
)
