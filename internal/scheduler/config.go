package scheduler

import (
	"fmt"
	"time"
)

// Config holds link check loop configuration.
type Config struct {
	// IdleInterval is how long to wait after draining all pages before
	// starting over.
	IdleInterval string `mapstructure:"idle_interval"`
	// Chunks is how many chunks a page is split into for dispatch.
	Chunks int `mapstructure:"chunks"`
	// Workers bounds concurrent update dispatch.
	Workers int `mapstructure:"workers"`
	// Timezone is the location used for per-chat delivery times.
	Timezone string `mapstructure:"timezone"`
}

// ApplyDefaults sets sensible default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.IdleInterval == "" {
		c.IdleInterval = "1h"
	}
	if c.Chunks <= 0 {
		c.Chunks = 4
	}
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.Timezone == "" {
		c.Timezone = "Europe/Moscow"
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if _, err := time.ParseDuration(c.IdleInterval); err != nil {
		return fmt.Errorf("scheduler.idle_interval: %w", err)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("scheduler.timezone: %w", err)
	}
	return nil
}
