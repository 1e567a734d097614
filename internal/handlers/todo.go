package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/hearth/internal/executor"
	"github.com/Kerhoff/hearth/internal/intent"
	"github.com/Kerhoff/hearth/internal/models"
	"github.com/Kerhoff/hearth/internal/service"
	"github.com/Kerhoff/hearth/internal/telegram"
)

// taskLine renders one task for a list.
func taskLine(t *models.Task) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "*#%d* %s", t.ID, t.Title)
	if t.DueDate != nil {
		fmt.Fprintf(&sb, "  📅 _%s", t.DueDate.In(time.UTC).Format("Mon Jan 2"))
		if t.DueTime != "" {
			fmt.Fprintf(&sb, " %s", t.DueTime)
		}
		sb.WriteString("_")
	}
	if t.Recurring {
		sb.WriteString(" 🔁")
	}
	if t.NeedsNotification {
		sb.WriteString(" 🔔")
	}
	return sb.String()
}

// ---------------------------------------------------------------------------
// AddHandler – /add <text>
// ---------------------------------------------------------------------------

// AddHandler handles the /add command. The text is read for a due date and
// recurrence the same way free text is, but always becomes a task.
type AddHandler struct {
	svc    *service.Service
	parser *intent.Parser
	exec   *executor.Executor
	logger *logrus.Logger
}

// NewAddHandler creates a new AddHandler.
func NewAddHandler(svc *service.Service, parser *intent.Parser, exec *executor.Executor, logger *logrus.Logger) *AddHandler {
	return &AddHandler{svc: svc, parser: parser, exec: exec, logger: logger}
}

// Handle processes the /add command.
func (h *AddHandler) Handle(bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	if len(args) == 0 {
		reply(bot, message.Chat.ID, "❌ Please provide a task.\nUsage: `/add Pay rent every month`")
		return nil
	}

	ctx, hh, err := scope(context.Background(), h.svc, message.From, message.Chat)
	if err != nil {
		return err
	}

	text := strings.Join(args, " ")
	res, err := h.exec.Execute(ctx, hh.ID, asTask(h.parser.ParseRules(text).Single(), text, false))
	if err != nil {
		return fmt.Errorf("add task: %w", err)
	}
	reply(bot, message.Chat.ID, res.Message())
	return nil
}

// asTask coerces a parsed utterance into a task intent. Events keep their
// date and time; anything else becomes an undated task titled text.
func asTask(in intent.Intent, text string, notify bool) *intent.Task {
	switch v := in.(type) {
	case *intent.Task:
		v.NeedsNotification = v.NeedsNotification || notify
		return v
	case *intent.Event:
		t := &intent.Task{
			Title:             v.Title,
			RawText:           v.RawText,
			Recurring:         v.Recurring,
			Frequency:         v.Frequency,
			NeedsNotification: notify,
		}
		if v.Date != nil {
			d := civil.DateOf(*v.Date)
			t.DueDate = &d
			t.DueTime = v.Time
		}
		return t
	}
	title := text
	return &intent.Task{Title: &title, RawText: text, NeedsNotification: notify}
}

// ---------------------------------------------------------------------------
// TasksHandler – /tasks
// ---------------------------------------------------------------------------

// TasksHandler lists pending tasks grouped by due date.
type TasksHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewTasksHandler creates a new TasksHandler.
func NewTasksHandler(svc *service.Service, logger *logrus.Logger) *TasksHandler {
	return &TasksHandler{svc: svc, logger: logger}
}

// Handle processes the /tasks command.
func (h *TasksHandler) Handle(bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	ctx, hh, err := scope(context.Background(), h.svc, message.From, message.Chat)
	if err != nil {
		return err
	}

	groups, err := h.svc.GroupTasks(ctx, hh.ID)
	if err != nil {
		return fmt.Errorf("group tasks: %w", err)
	}

	sections := []struct {
		title string
		tasks []*models.Task
	}{
		{"⚠️ *Overdue*", groups.Overdue},
		{"📌 *Today*", groups.Today},
		{"🗓 *Upcoming*", groups.Upcoming},
		{"📝 *Anytime*", groups.NoDate},
	}

	var sb strings.Builder
	total := 0
	for _, sec := range sections {
		if len(sec.tasks) == 0 {
			continue
		}
		sb.WriteString(sec.title + "\n")
		for _, t := range sec.tasks {
			sb.WriteString(taskLine(t) + "\n")
		}
		sb.WriteString("\n")
		total += len(sec.tasks)
	}

	if total == 0 {
		reply(bot, message.Chat.ID, "📋 *No pending tasks!*\n\nAdd one with `/add <text>`")
		return nil
	}
	fmt.Fprintf(&sb, "_%d pending_", total)
	reply(bot, message.Chat.ID, sb.String())

	h.logger.WithFields(logrus.Fields{
		"chat_id": message.Chat.ID,
		"count":   total,
	}).Info("Listed tasks")
	return nil
}

// ---------------------------------------------------------------------------
// DoneHandler – /done <id|text>
// ---------------------------------------------------------------------------

// DoneHandler completes a task by id, or by title the way "finished the
// laundry" would.
type DoneHandler struct {
	svc    *service.Service
	exec   *executor.Executor
	logger *logrus.Logger
}

// NewDoneHandler creates a new DoneHandler.
func NewDoneHandler(svc *service.Service, exec *executor.Executor, logger *logrus.Logger) *DoneHandler {
	return &DoneHandler{svc: svc, exec: exec, logger: logger}
}

// Handle processes the /done command.
func (h *DoneHandler) Handle(bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	if len(args) == 0 {
		reply(bot, message.Chat.ID, "❌ Please provide a task id or title.\nUsage: `/done 5` or `/done laundry`")
		return nil
	}

	ctx, hh, err := scope(context.Background(), h.svc, message.From, message.Chat)
	if err != nil {
		return err
	}

	id, isID := parseID(args[0])
	if !isID || len(args) > 1 {
		query := strings.Join(args, " ")
		res, err := h.exec.Execute(ctx, hh.ID, &intent.Complete{Query: query, RawText: query})
		if err != nil {
			return fmt.Errorf("complete task: %w", err)
		}
		reply(bot, message.Chat.ID, res.Message())
		return nil
	}

	t, err := h.svc.Tasks.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get task: %w", err)
	}
	if t == nil || t.HouseholdID != hh.ID {
		reply(bot, message.Chat.ID, fmt.Sprintf("❌ Task #%d not found.", id))
		return nil
	}
	if t.Completed {
		reply(bot, message.Chat.ID, fmt.Sprintf("ℹ️ Task #%d is already done.", id))
		return nil
	}

	t, err = h.svc.ToggleTask(ctx, id)
	if err != nil {
		return fmt.Errorf("toggle task: %w", err)
	}
	reply(bot, message.Chat.ID, (&executor.Completed{Task: t}).Message())

	h.logger.WithFields(logrus.Fields{
		"chat_id": message.Chat.ID,
		"task_id": id,
	}).Info("Task completed")
	return nil
}

// ---------------------------------------------------------------------------
// DeleteHandler – /delete <id>
// ---------------------------------------------------------------------------

// DeleteHandler removes a task.
type DeleteHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewDeleteHandler creates a new DeleteHandler.
func NewDeleteHandler(svc *service.Service, logger *logrus.Logger) *DeleteHandler {
	return &DeleteHandler{svc: svc, logger: logger}
}

// Handle processes the /delete command.
func (h *DeleteHandler) Handle(bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	if len(args) == 0 {
		reply(bot, message.Chat.ID, "❌ Please provide a task id.\nUsage: `/delete 5`")
		return nil
	}
	id, ok := parseID(args[0])
	if !ok {
		reply(bot, message.Chat.ID, "❌ Invalid ID. Please provide a numeric task id.")
		return nil
	}

	ctx, hh, err := scope(context.Background(), h.svc, message.From, message.Chat)
	if err != nil {
		return err
	}

	t, err := h.svc.Tasks.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get task: %w", err)
	}
	if t == nil || t.HouseholdID != hh.ID {
		reply(bot, message.Chat.ID, fmt.Sprintf("❌ Task #%d not found.", id))
		return nil
	}
	if err := h.svc.DeleteTask(ctx, id); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	reply(bot, message.Chat.ID, fmt.Sprintf("🗑 Deleted *#%d* %s", t.ID, t.Title))
	return nil
}
