package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML configuration file at path and returns a validated [Config].
// It is a convenience wrapper around [LoadFromReader] and [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	if cfg.Player.JoinTimeout < 0 {
		errs = append(errs, fmt.Errorf("player.join_timeout %v must not be negative", cfg.Player.JoinTimeout.Std()))
	}
	if cfg.Player.SettleDelay < 0 {
		errs = append(errs, fmt.Errorf("player.settle_delay %v must not be negative", cfg.Player.SettleDelay.Std()))
	}
	if cfg.Player.RetryDelay < 0 {
		errs = append(errs, fmt.Errorf("player.retry_delay %v must not be negative", cfg.Player.RetryDelay.Std()))
	}

	if cfg.Resolver.SocketTimeout < 0 {
		errs = append(errs, fmt.Errorf("resolver.socket_timeout %d must not be negative", cfg.Resolver.SocketTimeout))
	}
	if cfg.Resolver.Retries < 0 {
		errs = append(errs, fmt.Errorf("resolver.retries %d must not be negative", cfg.Resolver.Retries))
	}

	return errors.Join(errs...)
}
