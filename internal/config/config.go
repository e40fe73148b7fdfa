// Package config loads the application configuration from config.yml and
// LINKTRACK_-prefixed environment variables, with .env support for local
// development.
package config

import (
	"fmt"

	"github.com/linktrack/linktrack/internal/cache"
	"github.com/linktrack/linktrack/internal/database"
	"github.com/linktrack/linktrack/internal/kafka"
	"github.com/linktrack/linktrack/internal/logger"
	"github.com/linktrack/linktrack/internal/notify"
	"github.com/linktrack/linktrack/internal/observability"
	"github.com/linktrack/linktrack/internal/scheduler"
	"github.com/linktrack/linktrack/internal/server"
	"github.com/linktrack/linktrack/internal/telegram"
)

// Config is the root configuration for all linktrack services.
type Config struct {
	Logging       logger.Config        `mapstructure:"logging"`
	Database      database.Config      `mapstructure:"database"`
	Cache         cache.Config         `mapstructure:"cache"`
	Scrapper      server.Config        `mapstructure:"scrapper"`
	Bot           server.Config        `mapstructure:"bot"`
	Kafka         kafka.Config         `mapstructure:"kafka"`
	Notify        notify.Config        `mapstructure:"notify"`
	Scheduler     scheduler.Config     `mapstructure:"scheduler"`
	Telegram      telegram.Config      `mapstructure:"telegram"`
	Observability observability.Config `mapstructure:"observability"`
}

// ApplyDefaults applies defaults to every section. The scrapper and bot
// servers get distinct default ports.
func (c *Config) ApplyDefaults() {
	c.Logging.ApplyDefaults()
	c.Database.ApplyDefaults()
	c.Cache.ApplyDefaults()
	if c.Scrapper.Port == 0 {
		c.Scrapper.Port = 8888
	}
	c.Scrapper.ApplyDefaults()
	if c.Bot.Port == 0 {
		c.Bot.Port = 7777
	}
	c.Bot.ApplyDefaults()
	c.Kafka.ApplyDefaults()
	c.Notify.ApplyDefaults()
	c.Scheduler.ApplyDefaults()
	c.Telegram.ApplyDefaults()
	c.Observability.ApplyDefaults()
}

// Validate validates every section.
func (c *Config) Validate() error {
	for _, check := range []struct {
		name string
		fn   func() error
	}{
		{"logging", c.Logging.Validate},
		{"database", c.Database.Validate},
		{"cache", c.Cache.Validate},
		{"scrapper", c.Scrapper.Validate},
		{"bot", c.Bot.Validate},
		{"kafka", c.Kafka.Validate},
		{"notify", c.Notify.Validate},
		{"scheduler", c.Scheduler.Validate},
		{"observability", c.Observability.Validate},
	} {
		if err := check.fn(); err != nil {
			return fmt.Errorf("config section %s: %w", check.name, err)
		}
	}
	return nil
}
