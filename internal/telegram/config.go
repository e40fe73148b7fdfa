package telegram

import "fmt"

// Config holds Telegram bot configuration.
type Config struct {
	// Token is the bot token from BotFather.
	Token string `mapstructure:"token"`
	// ScrapperURL is the scrapper API base URL.
	ScrapperURL string `mapstructure:"scrapper_url"`
	// PollTimeout is the long poll timeout in seconds.
	PollTimeout int `mapstructure:"poll_timeout"`
}

// ApplyDefaults sets sensible default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.ScrapperURL == "" {
		c.ScrapperURL = "http://localhost:8888"
	}
	if c.PollTimeout <= 0 {
		c.PollTimeout = 10
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Token == "" {
		return fmt.Errorf("telegram.token is required")
	}
	return nil
}
