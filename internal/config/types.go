package config

import "github.com/doridoridoriand/pingtap/internal/probe"

// Config is the parsed configuration file.
type Config struct {
	Probe   ProbeConfig   `toml:"probe"`
	UI      UIConfig      `toml:"ui"`
	Logging LoggingConfig `toml:"logging"`
	Metrics MetricsConfig `toml:"metrics"`
}

// ProbeConfig picks how latency is measured. The timeout is fixed and not listed here.
type ProbeConfig struct {
	Variant  probe.Variant `toml:"variant"`
	Resolver string        `toml:"resolver"`
}

type UIConfig struct {
	DefaultTarget string `toml:"default_target"`
	Disable       bool   `toml:"disable"`
}

type LoggingConfig struct {
	Dir      string `toml:"dir"`
	Level    string `toml:"level"`
	MaxMB    int    `toml:"max_mb"`
	MaxFiles int    `toml:"max_files"`
}

type MetricsConfig struct {
	Listen string `toml:"listen"`
}

// CLIOverrides holds optional CLI values that override config file values.
type CLIOverrides struct {
	Variant       *probe.Variant
	Resolver      *string
	UIDisable     *bool
	LogDir        *string
	LogLevel      *string
	MetricsListen *string
}
