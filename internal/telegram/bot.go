package telegram

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// Bot wraps the Telegram bot API. Updates arrive by long polling or by
// webhook. Each chat's updates are handled one at a time in arrival order;
// different chats are handled concurrently.
type Bot struct {
	api      *tgbotapi.BotAPI
	logger   *logrus.Logger
	router   *Router
	inflight sync.WaitGroup
	chats    chatQueues
}

// NewBot creates a new Telegram bot instance
func NewBot(token string, logger *logrus.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}

	logger.WithField("username", api.Self.UserName).Info("Authorized on Telegram")

	return &Bot{
		api:    api,
		logger: logger,
		router: NewRouter(logger),
	}, nil
}

// Username is the bot's Telegram username without the leading '@'.
func (b *Bot) Username() string {
	return b.api.Self.UserName
}

// SetWebhook registers url with Telegram. Deliveries then arrive through
// ServeHTTP instead of Start.
func (b *Bot) SetWebhook(url string) error {
	wh, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return fmt.Errorf("failed to create webhook: %w", err)
	}
	if _, err := b.api.Request(wh); err != nil {
		return fmt.Errorf("failed to set webhook: %w", err)
	}

	b.logger.WithField("url", url).Info("Webhook registered")
	return nil
}

// Start long-polls for updates until ctx is done, then waits for the
// updates already being handled.
func (b *Bot) Start(ctx context.Context) error {
	// Polling and a webhook are mutually exclusive on Telegram's side.
	if _, err := b.api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return fmt.Errorf("failed to delete webhook: %w", err)
	}

	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 60
	updates := b.api.GetUpdatesChan(cfg)

	b.logger.Info("Bot started with long polling")
	defer b.inflight.Wait()

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Stopping bot...")
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.dispatch(update)
		}
	}
}

// ServeHTTP accepts webhook deliveries from Telegram.
func (b *Bot) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	update, err := b.api.HandleUpdate(r)
	if err != nil {
		b.logger.WithError(err).Warn("Rejected webhook update")
		http.Error(w, "bad update", http.StatusBadRequest)
		return
	}
	b.dispatch(*update)
	w.WriteHeader(http.StatusOK)
}

// Wait blocks until every update handed to the router has been handled.
func (b *Bot) Wait() {
	b.inflight.Wait()
}

func (b *Bot) dispatch(update tgbotapi.Update) {
	handle := func() {
		defer b.inflight.Done()
		defer func() {
			if r := recover(); r != nil {
				b.logger.WithField("update_id", update.UpdateID).Errorf("Panic in update handler: %v", r)
			}
		}()

		switch {
		case update.Message != nil:
			b.router.HandleMessage(b.api, update.Message)
		case update.CallbackQuery != nil:
			b.router.HandleCallbackQuery(b.api, update.CallbackQuery)
		default:
			b.logger.WithField("update_id", update.UpdateID).Debug("Ignoring update")
		}
	}

	b.inflight.Add(1)
	if chatID, ok := updateChatID(update); ok {
		b.chats.run(chatID, handle)
		return
	}
	go handle()
}

// SendMessage sends a Markdown message to a chat
func (b *Bot) SendMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown

	_, err := b.api.Send(msg)
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}

// Notify sends text to chatID and logs failures. Its signature matches the
// due-task notifier callback.
func (b *Bot) Notify(chatID int64, text string) {
	if err := b.SendMessage(chatID, text); err != nil {
		b.logger.WithField("chat_id", chatID).Errorf("Failed to send notification: %v", err)
	}
}

// RegisterCommand registers a command handler on the router
func (b *Bot) RegisterCommand(command string, handler CommandHandler) {
	b.router.RegisterCommand(command, handler)
}

// RegisterCallback registers an inline keyboard handler on the router
func (b *Bot) RegisterCallback(prefix string, handler CallbackHandler) {
	b.router.RegisterCallback(prefix, handler)
}

// SetFallback routes plain text to handler
func (b *Bot) SetFallback(handler CommandHandler) {
	b.router.SetFallback(handler)
}
