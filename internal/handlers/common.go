package handlers

import (
	"context"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Kerhoff/hearth/internal/models"
	"github.com/Kerhoff/hearth/internal/service"
	"github.com/Kerhoff/hearth/internal/telegram"
)

// scope registers the sender and the chat's household and returns a context
// carrying the user.
func scope(ctx context.Context, svc *service.Service, from *tgbotapi.User, chat *tgbotapi.Chat) (context.Context, *models.Household, error) {
	user, err := svc.EnsureUser(ctx, from.ID, from.UserName, from.FirstName, from.LastName)
	if err != nil {
		return nil, nil, fmt.Errorf("ensure user: %w", err)
	}

	title := chat.Title
	if title == "" {
		title = from.FirstName + "'s home"
	}
	hh, err := svc.EnsureHousehold(ctx, chat.ID, title)
	if err != nil {
		return nil, nil, fmt.Errorf("ensure household: %w", err)
	}
	if err := svc.EnsureMember(ctx, hh.ID, user.ID); err != nil {
		return nil, nil, fmt.Errorf("ensure member: %w", err)
	}
	return models.WithUser(ctx, user), hh, nil
}

// reply sends Markdown, retrying as plain text when Telegram rejects the
// markup (user text with a stray '*' or '_').
func reply(bot telegram.Sender, chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := bot.Send(msg); err != nil {
		msg.ParseMode = ""
		bot.Send(msg)
	}
}

// parseIndex reads a 1-based position as shown in lists.
func parseIndex(s string, n int) (int, bool) {
	i, err := strconv.Atoi(s)
	if err != nil || i < 1 || i > n {
		return 0, false
	}
	return i - 1, true
}

func parseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	return id, err == nil && id > 0
}
