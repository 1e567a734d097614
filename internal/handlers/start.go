package handlers

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/hearth/internal/service"
	"github.com/Kerhoff/hearth/internal/telegram"
)

// StartHandler handles the /start command
type StartHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewStartHandler creates a new start command handler
func NewStartHandler(svc *service.Service, logger *logrus.Logger) *StartHandler {
	return &StartHandler{
		svc:    svc,
		logger: logger,
	}
}

// Handle registers the chat as a household and sends the welcome text.
func (h *StartHandler) Handle(bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	_, hh, err := scope(context.Background(), h.svc, message.From, message.Chat)
	if err != nil {
		return err
	}

	welcomeText := fmt.Sprintf(`🏠 *Welcome to Hearth, %s!*

Just tell me what's going on and I'll sort it out:
• "Dentist tomorrow at 3pm" adds a calendar event
• "Pay rent every month" adds a recurring task
• /buy eggs x12 fills the shopping list
• "Finished the laundry" checks a task off

Plan dinners with /plan and turn them into a grocery list with /grocery.
Use /help to see every command.`, hh.Name)

	reply(bot, message.Chat.ID, welcomeText)

	h.logger.WithFields(logrus.Fields{
		"chat_id":      message.Chat.ID,
		"user_id":      message.From.ID,
		"household_id": hh.ID,
	}).Info("Sent start message")

	return nil
}
