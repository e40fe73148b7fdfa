package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/linktrack/linktrack/internal/logger"
)

// Producer wraps a kafka-go Writer with retries and structured logging.
type Producer struct {
	writer *kafkago.Writer
	cfg    Config
	log    *logger.Logger
}

// NewProducer creates a producer for the configured topic.
func NewProducer(cfg Config, log *logger.Logger) (*Producer, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("kafka producer config: %w", err)
	}

	plog := log.WithComponent("kafka.producer")
	writer := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafkago.LeastBytes{},
		BatchSize:    cfg.BatchSize,
		BatchTimeout: parseDuration(cfg.BatchTimeout),
		WriteTimeout: parseDuration(cfg.WriteTimeout),
		RequiredAcks: kafkago.RequireAll,
		ErrorLogger: kafkago.LoggerFunc(func(msg string, args ...interface{}) {
			plog.Error("writer: "+msg, map[string]interface{}{
				"args": fmt.Sprintf("%v", args),
			})
		}),
	}

	plog.Info("Kafka producer initialized", map[string]interface{}{
		"brokers": cfg.Brokers,
		"topic":   cfg.Topic,
	})

	return &Producer{writer: writer, cfg: cfg, log: plog}, nil
}

// WriteJSON marshals the value and writes it as a single message, retrying
// transient failures with linear backoff.
func (p *Producer) WriteJSON(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("kafka producer: marshal message: %w", err)
	}

	msg := kafkago.Message{Key: []byte(key), Value: data}

	var lastErr error
	for attempt := 1; attempt <= p.cfg.Retries; attempt++ {
		if err := p.writer.WriteMessages(ctx, msg); err == nil {
			return nil
		} else {
			lastErr = err
		}
		if attempt < p.cfg.Retries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * 100 * time.Millisecond):
			}
		}
	}
	return fmt.Errorf("kafka producer: write after %d retries: %w", p.cfg.Retries, lastErr)
}

// Close flushes and closes the underlying writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
