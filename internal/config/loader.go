package config

import (
	"fmt"
	"net"
	"strings"

	"github.com/BurntSushi/toml"
	"go.uber.org/multierr"

	"github.com/doridoridoriand/pingtap/internal/probe"
)

// Default returns baseline settings used before the file and CLI overrides.
func Default() Config {
	return Config{
		Probe: ProbeConfig{Variant: probe.VariantICMP},
		Logging: LoggingConfig{
			Level:    "info",
			MaxMB:    10,
			MaxFiles: 5,
		},
	}
}

// Load reads the TOML file at path, applies overrides and validates the result.
// An empty path means defaults only. Unknown keys are ignored.
func Load(path string, overrides CLIOverrides) (Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("decode config: %w", err)
		}
	}

	applyCLIOverrides(&cfg, overrides)
	cfg.Metrics.Listen = normalizeListen(cfg.Metrics.Listen)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs error

	if v, err := probe.ParseVariant(string(c.Probe.Variant)); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("probe.variant: %w", err))
	} else {
		c.Probe.Variant = v
	}
	if c.Probe.Resolver != "" {
		if _, _, err := net.SplitHostPort(c.Probe.Resolver); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("probe.resolver must be host:port: %w", err))
		}
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = multierr.Append(errs, fmt.Errorf("logging.level: unknown level %q", c.Logging.Level))
	}
	if c.Logging.MaxMB <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("logging.max_mb must be > 0"))
	}
	if c.Logging.MaxFiles < 0 {
		errs = multierr.Append(errs, fmt.Errorf("logging.max_files must be >= 0"))
	}
	if c.Metrics.Listen != "" {
		if _, _, err := net.SplitHostPort(c.Metrics.Listen); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("metrics.listen: %w", err))
		}
	}

	return errs
}

func applyCLIOverrides(cfg *Config, overrides CLIOverrides) {
	if overrides.Variant != nil {
		cfg.Probe.Variant = *overrides.Variant
	}
	if overrides.Resolver != nil {
		cfg.Probe.Resolver = *overrides.Resolver
	}
	if overrides.UIDisable != nil {
		cfg.UI.Disable = *overrides.UIDisable
	}
	if overrides.LogDir != nil {
		cfg.Logging.Dir = *overrides.LogDir
	}
	if overrides.LogLevel != nil {
		cfg.Logging.Level = *overrides.LogLevel
	}
	if overrides.MetricsListen != nil {
		cfg.Metrics.Listen = *overrides.MetricsListen
	}
}

func normalizeListen(value string) string {
	if isDigits(value) {
		return ":" + value
	}
	return value
}

func isDigits(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
