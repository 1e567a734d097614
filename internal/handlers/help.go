package handlers

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/hearth/internal/telegram"
)

// HelpHandler handles the /help command
type HelpHandler struct {
	logger *logrus.Logger
}

func NewHelpHandler(logger *logrus.Logger) *HelpHandler {
	return &HelpHandler{logger: logger}
}

const helpText = `📚 *Hearth Help*

Plain messages are understood as events, tasks, shopping items or "done" notes.

*Tasks:*
• /add <text> - Add a task ("Pay rent every month")
• /tasks - Show pending tasks
• /done <id|text> - Complete a task
• /delete <id> - Delete a task
• /remind <time> <text> - Task with a notification when due
• /reminders - Pending reminders

*Calendar:*
• /event <title> <YYYY-MM-DD> [HH:MM] [@ place] - Add an event
• /events - Upcoming events
• /place <name> [| address] - Save a place
• /places - Saved places

*Shopping:*
• /buy <item> [x qty] - Add to shopping list
• /shop - Show shopping list
• /bought <id> - Check an item off
• /shopclear - Remove checked items

*Kitchen:*
• /have <qty> <unit> <item> - Add to inventory
• /use <item> [amount] - Use from inventory
• /pantry - Show inventory
• /expiring [days] - What to use up
• /recipe <url | text> - Save a recipe (/clip works too)
• /recipes - Recipe catalog

*Meal plan:*
• /plan - Suggest this week's dinners
• /swap <day#> <recipe> - Replace a suggestion
• /lock <day#> - Keep a suggestion
• /accept - Save the suggestions
• /grocery [add] - Grocery list for the plan`

func (h *HelpHandler) Handle(bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	reply(bot, message.Chat.ID, helpText)

	h.logger.WithFields(logrus.Fields{
		"chat_id": message.Chat.ID,
		"user_id": message.From.ID,
	}).Info("Sent help message")

	return nil
}
