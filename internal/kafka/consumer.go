package kafka

import (
	"context"
	"fmt"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/linktrack/linktrack/internal/logger"
)

// MessageHandler processes a Kafka message. A non-nil error is logged and
// the consumer moves on to the next message.
type MessageHandler func(ctx context.Context, msg kafkago.Message) error

// Consumer wraps a kafka-go Reader for the link update topic.
type Consumer struct {
	reader *kafkago.Reader
	cfg    Config
	log    *logger.Logger
}

// NewConsumer creates a consumer for the configured topic and group.
func NewConsumer(cfg Config, log *logger.Logger) (*Consumer, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("kafka consumer config: %w", err)
	}

	clog := log.WithComponent("kafka.consumer")
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:           cfg.Brokers,
		Topic:             cfg.Topic,
		GroupID:           cfg.GroupID,
		StartOffset:       kafkago.FirstOffset,
		MinBytes:          1,
		MaxBytes:          10e6,
		SessionTimeout:    parseDuration(cfg.SessionTimeout),
		HeartbeatInterval: parseDuration(cfg.HeartbeatInterval),
		ErrorLogger: kafkago.LoggerFunc(func(msg string, args ...interface{}) {
			clog.Error("reader: "+msg, map[string]interface{}{
				"args":  fmt.Sprintf("%v", args),
				"topic": cfg.Topic,
			})
		}),
	})

	clog.Info("Kafka consumer initialized", map[string]interface{}{
		"brokers": cfg.Brokers,
		"topic":   cfg.Topic,
		"groupID": cfg.GroupID,
	})

	return &Consumer{reader: reader, cfg: cfg, log: clog}, nil
}

// Consume reads messages in a loop, calling handler for each one. It blocks
// until ctx is cancelled or the reader fails.
func (c *Consumer) Consume(ctx context.Context, handler MessageHandler) error {
	c.log.Info("starting consume loop", map[string]interface{}{"topic": c.cfg.Topic})

	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("kafka consumer: read message: %w", err)
		}
		if err := handler(ctx, msg); err != nil {
			c.log.WithError(err).Error("message handling failed", map[string]interface{}{
				"topic":  msg.Topic,
				"offset": msg.Offset,
			})
		}
	}
}

// Close closes the underlying reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
