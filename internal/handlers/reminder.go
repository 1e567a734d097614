package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/hearth/internal/executor"
	"github.com/Kerhoff/hearth/internal/intent"
	"github.com/Kerhoff/hearth/internal/service"
	"github.com/Kerhoff/hearth/internal/telegram"
)

var errNoRemindTime = errors.New("could not parse time")

// RemindHandler handles the /remind command. It creates a task that the due
// notifier announces in the chat.
type RemindHandler struct {
	svc    *service.Service
	parser *intent.Parser
	exec   *executor.Executor
	logger *logrus.Logger
}

func NewRemindHandler(svc *service.Service, parser *intent.Parser, exec *executor.Executor, logger *logrus.Logger) *RemindHandler {
	return &RemindHandler{svc: svc, parser: parser, exec: exec, logger: logger}
}

// Handle accepts "/remind <time> <text>" with the time as 10m, 2h, 1d,
// 15:30 or "2025-01-15 15:30". Anything else is read like free text, so
// "/remind call mom tomorrow at 5pm" works too.
func (h *RemindHandler) Handle(bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	if len(args) == 0 {
		reply(bot, message.Chat.ID, "Usage: /remind <time> <text>\nTime formats: 10m, 2h, 1d, 15:30, 2025-01-15 15:30")
		return nil
	}

	ctx, hh, err := scope(context.Background(), h.svc, message.From, message.Chat)
	if err != nil {
		return err
	}

	var task *intent.Task
	remindAt, textStart, err := parseRemindTime(args, h.svc.Now().In(hh.Location()))
	if err == nil && textStart < len(args) {
		title := strings.Join(args[textStart:], " ")
		date := civil.DateOf(remindAt)
		tod := civil.TimeOf(remindAt)
		tod.Second, tod.Nanosecond = 0, 0
		task = &intent.Task{
			Title:             &title,
			RawText:           strings.Join(args, " "),
			DueDate:           &date,
			DueTime:           &tod,
			NeedsNotification: true,
		}
	} else {
		text := strings.Join(args, " ")
		task = asTask(h.parser.ParseRules(text).Single(), text, true)
	}

	res, err := h.exec.Execute(ctx, hh.ID, task)
	if err != nil {
		return fmt.Errorf("create reminder: %w", err)
	}
	reply(bot, message.Chat.ID, "⏰ "+res.Message())

	h.logger.WithFields(logrus.Fields{
		"chat_id": message.Chat.ID,
		"user_id": message.From.ID,
		"result":  res.Kind(),
	}).Info("Reminder requested")
	return nil
}

func parseRemindTime(args []string, now time.Time) (time.Time, int, error) {
	loc := now.Location()

	// Try relative time: 10m, 2h, 1d
	if len(args[0]) >= 2 {
		numStr := args[0][:len(args[0])-1]
		unit := args[0][len(args[0])-1:]
		if num, err := strconv.Atoi(numStr); err == nil && num > 0 {
			switch unit {
			case "m":
				return now.Add(time.Duration(num) * time.Minute), 1, nil
			case "h":
				return now.Add(time.Duration(num) * time.Hour), 1, nil
			case "d":
				return now.AddDate(0, 0, num), 1, nil
			}
		}
	}

	// Try absolute date+time: 2025-01-15 15:30
	if len(args) >= 2 {
		if t, err := time.ParseInLocation("2006-01-02 15:04", args[0]+" "+args[1], loc); err == nil {
			return t, 2, nil
		}
	}

	// Try time only: 15:30 (today or tomorrow)
	if t, err := time.Parse("15:04", args[0]); err == nil {
		remindAt := time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, loc)
		if remindAt.Before(now) {
			remindAt = remindAt.AddDate(0, 0, 1)
		}
		return remindAt, 1, nil
	}

	return time.Time{}, 0, errNoRemindTime
}

// RemindersListHandler handles the /reminders command
type RemindersListHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

func NewRemindersListHandler(svc *service.Service, logger *logrus.Logger) *RemindersListHandler {
	return &RemindersListHandler{svc: svc, logger: logger}
}

// Handle lists pending tasks that will be announced when due.
func (h *RemindersListHandler) Handle(bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	ctx, hh, err := scope(context.Background(), h.svc, message.From, message.Chat)
	if err != nil {
		return err
	}

	tasks, err := h.svc.PendingTasks(ctx, hh.ID)
	if err != nil {
		return fmt.Errorf("list reminders: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("⏰ *Reminders:*\n\n")
	n := 0
	for _, t := range tasks {
		if !t.NeedsNotification || t.NotifiedAt != nil {
			continue
		}
		sb.WriteString(taskLine(t) + "\n")
		n++
	}
	if n == 0 {
		reply(bot, message.Chat.ID, "⏰ No active reminders. Set one with /remind")
		return nil
	}
	sb.WriteString("\n_Cancel one with_ `/delete <id>`")
	reply(bot, message.Chat.ID, sb.String())
	return nil
}
