// Package telegram implements the Telegram bot frontend: user commands, the
// track conversation flow, and the scrapper API client behind them.
package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/linktrack/linktrack/internal/apperrors"
	"github.com/linktrack/linktrack/internal/logger"
	"github.com/linktrack/linktrack/internal/model"
	"github.com/linktrack/linktrack/internal/rest"
	"github.com/linktrack/linktrack/internal/scrapper"
)

const untaggedGroup = "Без тегов"

// ScrapperClient talks to the scrapper API and converts responses into the
// reply strings the bot sends to users.
type ScrapperClient struct {
	api *rest.Client
	log *logger.Logger
}

// NewScrapperClient creates a client against the scrapper base URL.
func NewScrapperClient(baseURL string, log *logger.Logger) *ScrapperClient {
	return &ScrapperClient{
		api: rest.New(rest.Config{BaseURL: baseURL}),
		log: log.WithComponent("telegram.scrapper"),
	}
}

func chatHeader(chatID int64) rest.RequestOption {
	return rest.WithHeaders(map[string]string{scrapper.ChatIDHeader: strconv.FormatInt(chatID, 10)})
}

// Register registers the chat and returns the user-facing reply.
func (c *ScrapperClient) Register(ctx context.Context, chatID int64) string {
	resp, err := rest.Post[struct{}](ctx, c.api, fmt.Sprintf("/api/v1/tg-chat/%d", chatID), nil)
	if err != nil {
		c.log.WithError(err).Error("register request failed", map[string]interface{}{"chat_id": chatID})
		return "Ошибка регистрации пользователя"
	}
	if resp.OK() {
		return "Вы успешно зарегистрированы!"
	}
	return errorDescription(resp.Body, "Ошибка при регистрации пользователя.")
}

// Track starts tracking a URL and returns the user-facing reply.
func (c *ScrapperClient) Track(ctx context.Context, chatID int64, url string, tags, filters []string) string {
	req := model.AddLinkRequest{Link: url, Tags: tags, Filters: filters}
	resp, err := rest.Post[model.LinkResponse](ctx, c.api, "/api/v1/links", req, chatHeader(chatID))
	if err != nil {
		c.log.WithError(err).Error("track request failed", map[string]interface{}{"chat_id": chatID, "link": url})
		return "Ошибка при добавлении ссылки"
	}
	if resp.OK() {
		return "Ссылка успешно добавлена."
	}
	return errorDescription(resp.Body, "Ошибка при добавлении ссылки. Проверьте введенные данные!")
}

// Untrack stops tracking a URL and returns the user-facing reply.
func (c *ScrapperClient) Untrack(ctx context.Context, chatID int64, url string) string {
	req := model.RemoveLinkRequest{Link: url}
	resp, err := rest.Delete[model.LinkResponse](ctx, c.api, "/api/v1/links", req, chatHeader(chatID))
	if err != nil {
		c.log.WithError(err).Error("untrack request failed", map[string]interface{}{"chat_id": chatID, "link": url})
		return "Ошибка при удалении ссылки"
	}
	if resp.OK() {
		return fmt.Sprintf("Ссылка %s успешно удалена из отслеживаемых.", url)
	}
	return errorDescription(resp.Body, "Ошибка при удалении ссылки. Проверьте введенные данные!")
}

// List returns the chat's tracked links grouped by tag.
func (c *ScrapperClient) List(ctx context.Context, chatID int64) string {
	resp, err := rest.Get[model.ListLinksResponse](ctx, c.api, "/api/v1/links", chatHeader(chatID))
	if err != nil {
		c.log.WithError(err).Error("list request failed", map[string]interface{}{"chat_id": chatID})
		return "Ошибка получения списка ссылок"
	}
	if !resp.OK() {
		return errorDescription(resp.Body, "Ошибка при получении ссылок.")
	}
	return formatLinkList(resp.Data.Links)
}

// AddTag attaches a tag to a link and returns the user-facing reply.
func (c *ScrapperClient) AddTag(ctx context.Context, chatID int64, url, tag string) string {
	req := model.TagRequest{URL: url, Tag: tag}
	resp, err := rest.Post[struct{}](ctx, c.api, "/api/v1/tags", req, chatHeader(chatID))
	if err != nil {
		c.log.WithError(err).Error("add tag request failed", map[string]interface{}{"chat_id": chatID, "link": url})
		return "Ошибка при добавлении тега."
	}
	if resp.OK() {
		return fmt.Sprintf("Тег %s успешно добавлен к ссылке %s.", tag, url)
	}
	return errorDescription(resp.Body, "Ошибка при добавлении тега. Проверьте введенные данные!")
}

// DeleteTag detaches a tag from a link and returns the user-facing reply.
func (c *ScrapperClient) DeleteTag(ctx context.Context, chatID int64, url, tag string) string {
	req := model.TagRequest{URL: url, Tag: tag}
	resp, err := rest.Delete[struct{}](ctx, c.api, "/api/v1/tags", req, chatHeader(chatID))
	if err != nil {
		c.log.WithError(err).Error("delete tag request failed", map[string]interface{}{"chat_id": chatID, "link": url})
		return "Ошибка при удалении тега у ссылки"
	}
	if resp.OK() {
		return fmt.Sprintf("Тег %s у ссылки %s успешно удален.", tag, url)
	}
	return errorDescription(resp.Body, "Ошибка при удалении тега у ссылки. Проверьте введенные данные!")
}

// errorDescription extracts the description from an error envelope, falling
// back to a generic phrase when the body is unreadable.
func errorDescription(body []byte, fallback string) string {
	var envelope apperrors.ErrorResponse
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Description != "" {
		return envelope.Description
	}
	return fallback
}

// formatLinkList groups links by tag, one URL per line under each tag.
// Untagged links fall into their own group.
func formatLinkList(links []model.LinkResponse) string {
	if len(links) == 0 {
		return "Нет отслеживаемых ссылок"
	}

	groups := make(map[string][]string)
	var order []string
	addTo := func(tag, url string) {
		if _, seen := groups[tag]; !seen {
			order = append(order, tag)
		}
		groups[tag] = append(groups[tag], url)
	}

	for _, link := range links {
		if len(link.Tags) == 0 {
			addTo(untaggedGroup, link.URL)
			continue
		}
		tags := append([]string(nil), link.Tags...)
		sort.Strings(tags)
		for _, tag := range tags {
			addTo(tag, link.URL)
		}
	}

	var b strings.Builder
	for _, tag := range order {
		b.WriteString(tag)
		b.WriteString(":\n")
		b.WriteString(strings.Join(groups[tag], "\n"))
		b.WriteString("\n")
	}
	return b.String()
}
