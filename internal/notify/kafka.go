package notify

import (
	"context"
	"encoding/json"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/linktrack/linktrack/internal/kafka"
	"github.com/linktrack/linktrack/internal/logger"
	"github.com/linktrack/linktrack/internal/model"
)

// KafkaSender publishes each update to the link update topic, keyed by URL.
type KafkaSender struct {
	producer *kafka.Producer
	log      *logger.Logger
}

// NewKafkaSender creates a sender on top of an initialized producer.
func NewKafkaSender(producer *kafka.Producer, log *logger.Logger) *KafkaSender {
	return &KafkaSender{
		producer: producer,
		log:      log.WithComponent("notify.kafka"),
	}
}

// Send publishes the updates one by one. A failed update is logged and does
// not stop delivery of the rest of the batch.
func (s *KafkaSender) Send(ctx context.Context, updates []model.LinkUpdate) error {
	var lastErr error
	for _, u := range updates {
		if err := s.producer.WriteJSON(ctx, u.URL, u); err != nil {
			s.log.WithError(err).Error("update publish failed", map[string]interface{}{"url": u.URL})
			lastErr = err
			continue
		}
		s.log.Info("update published", map[string]interface{}{"url": u.URL, "chat_id": u.ID})
	}
	return lastErr
}

// Close closes the underlying producer.
func (s *KafkaSender) Close() error {
	return s.producer.Close()
}

// UpdateHandler processes one decoded link update on the bot side.
type UpdateHandler func(ctx context.Context, update model.LinkUpdate) error

// ConsumeUpdates runs the bot-side consume loop, decoding each message into
// a LinkUpdate and passing it to the handler. It blocks until ctx is
// cancelled.
func ConsumeUpdates(ctx context.Context, consumer *kafka.Consumer, handler UpdateHandler, log *logger.Logger) error {
	clog := log.WithComponent("notify.consumer")
	return consumer.Consume(ctx, func(ctx context.Context, msg kafkago.Message) error {
		var update model.LinkUpdate
		if err := json.Unmarshal(msg.Value, &update); err != nil {
			clog.WithError(err).Error("malformed update message", map[string]interface{}{
				"offset": msg.Offset,
			})
			return nil
		}
		return handler(ctx, update)
	})
}
