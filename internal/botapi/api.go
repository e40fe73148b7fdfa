// Package botapi exposes the bot's HTTP surface: the endpoint the scrapper
// pushes link updates to when the HTTP transport is configured.
package botapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/linktrack/linktrack/internal/apperrors"
	"github.com/linktrack/linktrack/internal/logger"
	"github.com/linktrack/linktrack/internal/model"
)

// Notifier delivers a notification message to a Telegram chat.
type Notifier interface {
	SendNotification(chatID int64, description string) error
}

// API exposes the bot HTTP handlers.
type API struct {
	notifier Notifier
	log      *logger.Logger
}

// New creates the bot API.
func New(notifier Notifier, log *logger.Logger) *API {
	return &API{notifier: notifier, log: log.WithComponent("bot.api")}
}

// Register mounts the bot routes on the engine.
func (a *API) Register(engine *gin.Engine) {
	engine.POST("/api/v1/updates", a.receiveUpdate)
}

func (a *API) receiveUpdate(c *gin.Context) {
	var update model.LinkUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		appErr := apperrors.Internal(err)
		c.AbortWithStatusJSON(http.StatusBadRequest, appErr.ToResponse())
		return
	}

	a.log.Info("update received", map[string]interface{}{"chat_id": update.ID, "url": update.URL})

	if err := a.notifier.SendNotification(update.ID, update.Description); err != nil {
		a.log.WithError(err).Error("sending notification failed", map[string]interface{}{
			"chat_id": update.ID,
			"url":     update.URL,
		})
		appErr := apperrors.New(apperrors.CodeInternal, "Ошибка при отправке сообщения", err.Error(), http.StatusBadRequest)
		c.AbortWithStatusJSON(http.StatusBadRequest, appErr.ToResponse())
		return
	}

	c.Status(http.StatusOK)
}
