package handlers

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/hearth/internal/executor"
	"github.com/Kerhoff/hearth/internal/intent"
	"github.com/Kerhoff/hearth/internal/service"
	"github.com/Kerhoff/hearth/internal/telegram"
)

// FreeTextHandler reads plain messages as intents and carries them out.
type FreeTextHandler struct {
	svc     *service.Service
	parser  *intent.Parser
	exec    *executor.Executor
	botName string
	logger  *logrus.Logger
}

// NewFreeTextHandler creates a new FreeTextHandler. botName is the bot's
// username, which group members use to address it.
func NewFreeTextHandler(svc *service.Service, parser *intent.Parser, exec *executor.Executor, botName string, logger *logrus.Logger) *FreeTextHandler {
	return &FreeTextHandler{svc: svc, parser: parser, exec: exec, botName: botName, logger: logger}
}

// addressed returns the text meant for the bot. Private chats always talk
// to it; in groups only a mention or a reply to the bot does.
func (h *FreeTextHandler) addressed(message *tgbotapi.Message) (string, bool) {
	text := strings.TrimSpace(message.Text)
	if message.Chat.IsPrivate() {
		return text, true
	}
	if h.botName == "" {
		return "", false
	}
	if r := message.ReplyToMessage; r != nil && r.From != nil && strings.EqualFold(r.From.UserName, h.botName) {
		return text, true
	}
	mention := "@" + strings.ToLower(h.botName)
	if i := strings.Index(strings.ToLower(text), mention); i >= 0 {
		return strings.TrimSpace(text[:i] + text[i+len(mention):]), true
	}
	return "", false
}

// Handle parses the message, executes every intent in it and replies with
// one line per result.
func (h *FreeTextHandler) Handle(bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	text, ok := h.addressed(message)
	if !ok || text == "" {
		return nil
	}

	ctx, hh, err := scope(context.Background(), h.svc, message.From, message.Chat)
	if err != nil {
		return err
	}

	env := h.parser.Parse(ctx, text)
	report := h.exec.ExecuteBatch(ctx, hh.ID, env.Items)

	log := h.logger.WithFields(logrus.Fields{
		"chat_id":  message.Chat.ID,
		"source":   env.Source,
		"batch_id": report.ID,
		"items":    len(report.Outcomes),
	})
	if err := report.Err(); err != nil {
		log.WithField("error", err).Warn("Some intents failed")
	}

	reply(bot, message.Chat.ID, strings.Join(report.Messages(), "\n"))
	log.Info("Handled free text")
	return nil
}
