package telegram_test

import (
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kerhoff/hearth/internal/telegram"
	"github.com/Kerhoff/hearth/pkg/logger"
)

type recorder struct {
	sent     []string
	requests int
}

func (r *recorder) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if m, ok := c.(tgbotapi.MessageConfig); ok {
		r.sent = append(r.sent, m.Text)
	}
	return tgbotapi.Message{}, nil
}

func (r *recorder) Request(tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	r.requests++
	return &tgbotapi.APIResponse{Ok: true}, nil
}

type callbackFunc func(bot telegram.Sender, query *tgbotapi.CallbackQuery, data string) error

func (f callbackFunc) HandleCallback(bot telegram.Sender, query *tgbotapi.CallbackQuery, data string) error {
	return f(bot, query, data)
}

func command(text string, length int) *tgbotapi.Message {
	return &tgbotapi.Message{
		From:     &tgbotapi.User{ID: 1},
		Chat:     &tgbotapi.Chat{ID: 10, Type: "private"},
		Text:     text,
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: length}},
	}
}

func TestRouterDispatchesCommands(t *testing.T) {
	r := telegram.NewRouter(logger.Discard())
	var got []string
	r.RegisterCommand("buy", telegram.CommandFunc(func(_ telegram.Sender, _ *tgbotapi.Message, args []string) error {
		got = args
		return nil
	}))

	bot := &recorder{}
	r.HandleMessage(bot, command("/buy oat milk x2", 4))

	assert.Equal(t, []string{"oat", "milk", "x2"}, got)
	assert.Empty(t, bot.sent)
}

func TestRouterUnknownCommandAndErrors(t *testing.T) {
	r := telegram.NewRouter(logger.Discard())
	r.RegisterCommand("fail", telegram.CommandFunc(func(telegram.Sender, *tgbotapi.Message, []string) error {
		return errors.New("boom")
	}))

	bot := &recorder{}
	r.HandleMessage(bot, command("/nope", 5))
	r.HandleMessage(bot, command("/fail", 5))

	require.Len(t, bot.sent, 2)
	assert.Contains(t, bot.sent[0], "Unknown command")
	assert.Contains(t, bot.sent[1], "An error occurred")
}

func TestRouterFallbackGetsPlainText(t *testing.T) {
	r := telegram.NewRouter(logger.Discard())
	bot := &recorder{}

	// Without a fallback plain text is ignored.
	r.HandleMessage(bot, &tgbotapi.Message{From: &tgbotapi.User{ID: 1}, Chat: &tgbotapi.Chat{ID: 10}, Text: "hi"})
	assert.Empty(t, bot.sent)

	var text string
	var args []string
	r.SetFallback(telegram.CommandFunc(func(_ telegram.Sender, m *tgbotapi.Message, a []string) error {
		text, args = m.Text, a
		return nil
	}))
	r.HandleMessage(bot, &tgbotapi.Message{From: &tgbotapi.User{ID: 1}, Chat: &tgbotapi.Chat{ID: 10}, Text: "Dentist tomorrow at 3pm"})
	assert.Equal(t, "Dentist tomorrow at 3pm", text)
	assert.Nil(t, args)
}

func TestRouterCallbacksByPrefix(t *testing.T) {
	r := telegram.NewRouter(logger.Discard())
	var data string
	r.RegisterCallback("plan", callbackFunc(func(_ telegram.Sender, _ *tgbotapi.CallbackQuery, d string) error {
		data = d
		return nil
	}))

	bot := &recorder{}
	r.HandleCallbackQuery(bot, &tgbotapi.CallbackQuery{ID: "1", From: &tgbotapi.User{ID: 1}, Data: "plan:accept"})
	r.HandleCallbackQuery(bot, &tgbotapi.CallbackQuery{ID: "2", From: &tgbotapi.User{ID: 1}, Data: "other:x"})

	assert.Equal(t, "accept", data)
	assert.Equal(t, 2, bot.requests, "every query is answered")
}
