package config

import (
	"fmt"
	"strconv"
	"time"
)

// EnvPrefix starts every environment variable the config reads.
const EnvPrefix = "PLAYGROUND_"

// envSetters maps environment variables to the setting they override.
var envSetters = map[string]func(c *Config, v string) error{
	"GRID_WIDTH":     intSetter(func(c *Config) *int { return &c.Grid.Width }),
	"GRID_HEIGHT":    intSetter(func(c *Config) *int { return &c.Grid.Height }),
	"TIMEOUT":        durationSetter(func(c *Config) *Duration { return &c.Sandbox.Timeout }),
	"MEMORY_PAGES":   uint32Setter(func(c *Config) *uint32 { return &c.Sandbox.MemoryLimitPages }),
	"WATCH":          boolSetter(func(c *Config) *bool { return &c.Watch.Enabled }),
	"POLL_INTERVAL":  durationSetter(func(c *Config) *Duration { return &c.Watch.PollInterval }),
	"RECENCY_WINDOW": durationSetter(func(c *Config) *Duration { return &c.Watch.RecencyWindow }),
	"NOTIFY":         boolSetter(func(c *Config) *bool { return &c.Watch.Notify }),
	"LOG_LEVEL": func(c *Config, v string) error {
		c.Log.Level = v
		return nil
	},
}

// ApplyEnv overrides settings from PLAYGROUND_* variables found by lookup.
// Note: Empty string values are treated as set.
func ApplyEnv(c *Config, lookup func(string) (string, bool)) error {
	for name, set := range envSetters {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			continue
		}
		if err := set(c, v); err != nil {
			return fmt.Errorf("%s%s=%q: %w", EnvPrefix, name, v, err)
		}
	}
	return nil
}

func intSetter(field func(*Config) *int) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*field(c) = n
		return nil
	}
}

func uint32Setter(field func(*Config) *uint32) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return err
		}
		*field(c) = uint32(n)
		return nil
	}
}

func boolSetter(field func(*Config) *bool) func(*Config, string) error {
	return func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*field(c) = b
		return nil
	}
}

func durationSetter(field func(*Config) *Duration) func(*Config, string) error {
	return func(c *Config, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		field(c).Duration = d
		return nil
	}
}
