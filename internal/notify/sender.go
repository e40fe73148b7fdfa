package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/linktrack/linktrack/internal/kafka"
	"github.com/linktrack/linktrack/internal/logger"
	"github.com/linktrack/linktrack/internal/model"
)

// Transport selects how updates reach the bot.
const (
	TransportHTTP  = "http"
	TransportKafka = "kafka"
)

// Config holds notification transport configuration.
type Config struct {
	// Type is the push transport, "http" or "kafka".
	Type string `mapstructure:"type"`
	// BotURL is the bot API base URL for the HTTP transport.
	BotURL string `mapstructure:"bot_url"`
}

// ApplyDefaults sets sensible default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Type == "" {
		c.Type = TransportKafka
	}
	c.Type = strings.ToLower(c.Type)
	if c.BotURL == "" {
		c.BotURL = "http://localhost:7777"
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Type) {
	case TransportHTTP, TransportKafka:
		return nil
	default:
		return fmt.Errorf("notify.type must be http or kafka (got: %q)", c.Type)
	}
}

// Sender pushes a batch of link updates to the bot.
type Sender interface {
	Send(ctx context.Context, updates []model.LinkUpdate) error
}

// NewSender builds the sender selected by the transport type.
func NewSender(cfg Config, kafkaCfg kafka.Config, log *logger.Logger) (Sender, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Type {
	case TransportHTTP:
		return NewHTTPSender(cfg.BotURL, log), nil
	case TransportKafka:
		producer, err := kafka.NewProducer(kafkaCfg, log)
		if err != nil {
			return nil, err
		}
		return NewKafkaSender(producer, log), nil
	default:
		return nil, fmt.Errorf("unknown notify transport %q", cfg.Type)
	}
}
