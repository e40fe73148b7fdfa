package telegram

import (
	"context"
	"strings"
	"sync"
	"time"

	tele "gopkg.in/telebot.v3"

	"github.com/linktrack/linktrack/internal/logger"
)

// Conversation states for the /track flow.
const (
	stateWaitTags    = "WAIT_TAGS"
	stateWaitFilters = "WAIT_FILTERS"
)

// Prompts of the /track conversation.
const (
	tagsPrompt    = "Введите тэги (опционально) через пробел. Для пропуска пропишите: skip"
	filtersPrompt = "Настройте фильтры (опционально). Для этого напишите их в формате user:myprofile через пробел. Для пропуска пропишите: skip"
)

const helpText = "/start - регистрация пользователя.\n" +
	"/help - вывод списка доступных команд.\n" +
	"/track - начать отслеживание ссылки.\n" +
	"/untrack - прекратить отслеживание ссылки.\n" +
	"/list - показать список отслеживаемых ссылок."

// trackState carries one user's progress through the /track conversation.
type trackState struct {
	state   string
	url     string
	tags    []string
	filters []string
}

// Bot is the Telegram frontend over the scrapper API.
type Bot struct {
	api      *tele.Bot
	scrapper *ScrapperClient
	log      *logger.Logger

	mu     sync.Mutex
	states map[int64]*trackState
}

// New creates the bot and registers its handlers.
func New(cfg Config, scrapperClient *ScrapperClient, log *logger.Logger) (*Bot, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	api, err := tele.NewBot(tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: time.Duration(cfg.PollTimeout) * time.Second},
	})
	if err != nil {
		return nil, err
	}

	b := &Bot{
		api:      api,
		scrapper: scrapperClient,
		log:      log.WithComponent("telegram.bot"),
		states:   make(map[int64]*trackState),
	}
	b.register()
	return b, nil
}

// Run starts long polling until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	if err := b.setCommands(); err != nil {
		b.log.WithError(err).Error("setting bot commands failed")
	}

	go func() {
		<-ctx.Done()
		b.api.Stop()
	}()

	b.log.Info("bot started", map[string]interface{}{"username": b.api.Me.Username})
	b.api.Start()
	return ctx.Err()
}

// SendNotification delivers a link update message to the chat.
func (b *Bot) SendNotification(chatID int64, description string) error {
	_, err := b.api.Send(tele.ChatID(chatID), "Новое уведомление:\n"+description)
	return err
}

func (b *Bot) setCommands() error {
	return b.api.SetCommands([]tele.Command{
		{Text: "start", Description: "Регистрация пользователя"},
		{Text: "help", Description: "Вывод списка команд"},
		{Text: "track", Description: "Начать отслеживание ссылки"},
		{Text: "untrack", Description: "Прекратить отслеживание ссылки"},
		{Text: "list", Description: "Показать список отслеживаемых ссылок"},
		{Text: "delete", Description: "Удалить тег у ссылки"},
		{Text: "add", Description: "Добавить тег к ссылке"},
	})
}

func (b *Bot) register() {
	b.api.Handle("/start", b.handleStart)
	b.api.Handle("/help", b.handleHelp)
	b.api.Handle("/track", b.handleTrack)
	b.api.Handle("/untrack", b.handleUntrack)
	b.api.Handle("/list", b.handleList)
	b.api.Handle("/add", b.handleAddTag)
	b.api.Handle("/delete", b.handleDeleteTag)
	b.api.Handle(tele.OnText, b.handleText)
}

func (b *Bot) handleStart(c tele.Context) error {
	chatID := c.Sender().ID
	b.log.Info("handling /start", map[string]interface{}{"chat_id": chatID})
	return c.Send(b.scrapper.Register(context.Background(), chatID))
}

func (b *Bot) handleHelp(c tele.Context) error {
	b.log.Info("handling /help", map[string]interface{}{"chat_id": c.Sender().ID})
	return c.Send(helpText)
}

func (b *Bot) handleTrack(c tele.Context) error {
	chatID := c.Sender().ID
	b.log.Info("handling /track", map[string]interface{}{"chat_id": chatID})

	url := strings.TrimSpace(c.Message().Payload)
	if url == "" {
		return c.Send("Пожалуйста, укажите ссылку после команды /track")
	}

	b.mu.Lock()
	b.states[chatID] = &trackState{state: stateWaitTags, url: url}
	b.mu.Unlock()

	return c.Send(tagsPrompt)
}

func (b *Bot) handleUntrack(c tele.Context) error {
	chatID := c.Sender().ID
	b.log.Info("handling /untrack", map[string]interface{}{"chat_id": chatID})

	url := strings.TrimSpace(c.Message().Payload)
	if url == "" {
		return c.Send("Пожалуйста, укажите ссылку для прекращения отслеживания.")
	}
	return c.Send(b.scrapper.Untrack(context.Background(), chatID, url))
}

func (b *Bot) handleList(c tele.Context) error {
	chatID := c.Sender().ID
	b.log.Info("handling /list", map[string]interface{}{"chat_id": chatID})
	return c.Send(b.scrapper.List(context.Background(), chatID))
}

func (b *Bot) handleAddTag(c tele.Context) error {
	chatID := c.Sender().ID
	tag, url, ok := splitTagArgs(c.Message().Payload)
	if !ok {
		return c.Send("Некорректный формат. Используйте: /add name_tag url")
	}
	b.log.Info("handling /add", map[string]interface{}{"chat_id": chatID, "tag": tag, "url": url})
	return c.Send(b.scrapper.AddTag(context.Background(), chatID, url, tag))
}

func (b *Bot) handleDeleteTag(c tele.Context) error {
	chatID := c.Sender().ID
	tag, url, ok := splitTagArgs(c.Message().Payload)
	if !ok {
		return c.Send("Некорректный формат. Используйте: /delete name_tag url")
	}
	b.log.Info("handling /delete", map[string]interface{}{"chat_id": chatID, "tag": tag, "url": url})
	return c.Send(b.scrapper.DeleteTag(context.Background(), chatID, url, tag))
}

// handleText advances the /track conversation, and hints at /help for any
// other text, including unknown slash commands.
func (b *Bot) handleText(c tele.Context) error {
	text := strings.TrimSpace(c.Text())
	chatID := c.Sender().ID

	if strings.HasPrefix(text, "/") {
		b.log.Info("unknown command", map[string]interface{}{"chat_id": chatID, "command": text})
		return c.Send("Неизвестная команда. Используйте /help для получения списка доступных команд.")
	}

	prompt, done := b.advanceTrack(chatID, text)
	switch {
	case done != nil:
		return c.Send(b.scrapper.Track(context.Background(), chatID, done.url, done.tags, done.filters))
	case prompt != "":
		return c.Send(prompt)
	default:
		return nil
	}
}

// advanceTrack applies one text message to the chat's /track conversation.
// Telebot runs handlers concurrently, so the whole transition happens under
// the lock; a racing second message sees either the state before or after,
// never a half-advanced one. It returns the next prompt to send, or the
// finished state once the conversation is complete.
func (b *Bot) advanceTrack(chatID int64, text string) (prompt string, done *trackState) {
	b.mu.Lock()
	defer b.mu.Unlock()

	state := b.states[chatID]
	if state == nil {
		return "", nil
	}
	skip := strings.EqualFold(text, "skip") || text == ""

	switch state.state {
	case stateWaitTags:
		if !skip {
			state.tags = strings.Fields(text)
		}
		state.state = stateWaitFilters
		return filtersPrompt, nil
	case stateWaitFilters:
		if !skip {
			state.filters = strings.Fields(text)
		}
		delete(b.states, chatID)
		return "", state
	default:
		return "", nil
	}
}

// splitTagArgs parses "<tag> <url>" from a command payload.
func splitTagArgs(payload string) (tag, url string, ok bool) {
	parts := strings.Fields(payload)
	if len(parts) < 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}
