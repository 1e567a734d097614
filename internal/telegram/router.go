package telegram

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// Sender is the part of the Bot API the handlers talk to. *tgbotapi.BotAPI
// satisfies it.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// CommandHandler defines the interface for command handlers. Free-text
// handlers receive a nil args slice.
type CommandHandler interface {
	Handle(bot Sender, message *tgbotapi.Message, args []string) error
}

// CommandFunc adapts a function to CommandHandler, so one type can serve
// several commands.
type CommandFunc func(bot Sender, message *tgbotapi.Message, args []string) error

// Handle calls f.
func (f CommandFunc) Handle(bot Sender, message *tgbotapi.Message, args []string) error {
	return f(bot, message, args)
}

// CallbackHandler handles inline keyboard presses. data is the callback data
// with the registered prefix and its separator removed.
type CallbackHandler interface {
	HandleCallback(bot Sender, query *tgbotapi.CallbackQuery, data string) error
}

// Router handles message routing and command parsing
type Router struct {
	logger    *logrus.Logger
	handlers  map[string]CommandHandler
	callbacks map[string]CallbackHandler
	fallback  CommandHandler
}

// NewRouter creates a new message router
func NewRouter(logger *logrus.Logger) *Router {
	return &Router{
		logger:    logger,
		handlers:  make(map[string]CommandHandler),
		callbacks: make(map[string]CallbackHandler),
	}
}

// RegisterCommand registers a command handler
func (r *Router) RegisterCommand(command string, handler CommandHandler) {
	r.handlers[command] = handler
	r.logger.Debugf("Registered command: %s", command)
}

// RegisterCallback routes callback data of the form "prefix:rest" to handler.
func (r *Router) RegisterCallback(prefix string, handler CallbackHandler) {
	r.callbacks[prefix] = handler
	r.logger.Debugf("Registered callback: %s", prefix)
}

// SetFallback sets the handler for plain text that is not a command. Without
// one, plain text is ignored.
func (r *Router) SetFallback(handler CommandHandler) {
	r.fallback = handler
}

// HandleMessage handles incoming messages
func (r *Router) HandleMessage(bot Sender, message *tgbotapi.Message) {
	if message.From == nil {
		return
	}
	log := r.logger.WithFields(logrus.Fields{
		"chat_id":    message.Chat.ID,
		"user_id":    message.From.ID,
		"username":   message.From.UserName,
		"message_id": message.MessageID,
	})
	log.Debug("Received message")

	if message.Text == "" {
		return
	}

	if !message.IsCommand() {
		if r.fallback == nil {
			return
		}
		if err := r.fallback.Handle(bot, message, nil); err != nil {
			log.WithField("error", err).Error("Free text handler failed")
			r.sendError(bot, message.Chat.ID)
		}
		return
	}

	command := message.Command()
	args := strings.Fields(message.CommandArguments())

	handler, exists := r.handlers[command]
	if !exists {
		log.WithField("command", command).Warn("Unknown command")
		bot.Send(tgbotapi.NewMessage(message.Chat.ID, "❓ Unknown command. Use /help to see available commands."))
		return
	}
	if err := handler.Handle(bot, message, args); err != nil {
		log.WithFields(logrus.Fields{
			"command": command,
			"error":   err,
		}).Error("Command handler failed")
		r.sendError(bot, message.Chat.ID)
	}
}

// HandleCallbackQuery handles callback queries from inline keyboards
func (r *Router) HandleCallbackQuery(bot Sender, query *tgbotapi.CallbackQuery) {
	log := r.logger.WithFields(logrus.Fields{
		"callback_id": query.ID,
		"user_id":     query.From.ID,
		"data":        query.Data,
	})
	log.Debug("Received callback query")

	// Answer the callback query to remove loading state
	bot.Request(tgbotapi.NewCallback(query.ID, ""))

	prefix, rest, _ := strings.Cut(query.Data, ":")
	handler, ok := r.callbacks[prefix]
	if !ok {
		log.Warn("Unknown callback")
		return
	}
	if err := handler.HandleCallback(bot, query, rest); err != nil {
		log.WithField("error", err).Error("Callback handler failed")
		if query.Message != nil {
			r.sendError(bot, query.Message.Chat.ID)
		}
	}
}

func (r *Router) sendError(bot Sender, chatID int64) {
	bot.Send(tgbotapi.NewMessage(chatID, "❌ An error occurred while processing your request. Please try again."))
}
