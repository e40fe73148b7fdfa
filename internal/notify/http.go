package notify

import (
	"context"
	"fmt"

	"github.com/linktrack/linktrack/internal/logger"
	"github.com/linktrack/linktrack/internal/model"
	"github.com/linktrack/linktrack/internal/rest"
)

// UpdatesPath is the bot API endpoint that receives link updates.
const UpdatesPath = "/api/v1/updates"

// HTTPSender posts each update to the bot API.
type HTTPSender struct {
	api *rest.Client
	log *logger.Logger
}

// NewHTTPSender creates a sender against the bot API base URL.
func NewHTTPSender(botURL string, log *logger.Logger) *HTTPSender {
	return &HTTPSender{
		api: rest.New(rest.Config{BaseURL: botURL}),
		log: log.WithComponent("notify.http"),
	}
}

// Send posts the updates one by one. A failed update is logged and does not
// stop delivery of the rest of the batch.
func (s *HTTPSender) Send(ctx context.Context, updates []model.LinkUpdate) error {
	var lastErr error
	for _, u := range updates {
		resp, err := rest.Post[struct{}](ctx, s.api, UpdatesPath, u)
		if err != nil {
			s.log.WithError(err).Error("update delivery failed", map[string]interface{}{"url": u.URL})
			lastErr = err
			continue
		}
		if !resp.OK() {
			s.log.Error("bot rejected update", map[string]interface{}{
				"url":    u.URL,
				"status": resp.StatusCode,
			})
			lastErr = fmt.Errorf("bot rejected update: status %d", resp.StatusCode)
			continue
		}
		s.log.Info("update delivered", map[string]interface{}{"url": u.URL, "chat_id": u.ID})
	}
	return lastErr
}
