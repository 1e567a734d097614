package handlers

import (
	"context"
	"fmt"
	"regexp"
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

var (
	calDateRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	calTimeRegex = regexp.MustCompile(`^\d{1,2}:\d{2}$`)
)

const upcomingLimit = 10

// Upcoming lists a household's next calendar events.
type Upcoming interface {
	Upcoming(ctx context.Context, householdID int64, from time.Time, limit int) ([]*models.CalendarEvent, error)
}

// ---------------------------------------------------------------------------
// CalendarAddHandler – /event <title> <date> [time] [@ place]
// ---------------------------------------------------------------------------

// CalendarAddHandler handles the /event command to create a calendar event.
// It parses the date (YYYY-MM-DD) and optional time (HH:MM) from the end of
// the argument list; everything before is treated as the event title. A
// trailing "@ place" names the location.
type CalendarAddHandler struct {
	svc    *service.Service
	exec   *executor.Executor
	logger *logrus.Logger
}

// NewCalendarAddHandler creates a new CalendarAddHandler.
func NewCalendarAddHandler(svc *service.Service, exec *executor.Executor, logger *logrus.Logger) *CalendarAddHandler {
	return &CalendarAddHandler{svc: svc, exec: exec, logger: logger}
}

// Handle processes the /event command.
func (h *CalendarAddHandler) Handle(bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	const usage = "*Usage:*\n" +
		"`/event Meeting 2025-01-15 14:00`\n" +
		"`/event Soccer 2025-03-20 17:30 @ park`"
	if len(args) < 2 {
		reply(bot, message.Chat.ID, "❌ Please provide a title and date.\n\n"+usage)
		return nil
	}

	var location string
	if at := indexOf(args, "@"); at >= 0 {
		location = strings.Join(args[at+1:], " ")
		args = args[:at]
	}

	// Parse from the end: optional time, then date, rest is the title.
	var dateStr, timeStr string
	lastIdx := len(args) - 1
	if lastIdx >= 0 && calTimeRegex.MatchString(args[lastIdx]) {
		timeStr = args[lastIdx]
		lastIdx--
	}
	if lastIdx >= 0 && calDateRegex.MatchString(args[lastIdx]) {
		dateStr = args[lastIdx]
		lastIdx--
	}
	if dateStr == "" {
		reply(bot, message.Chat.ID, "❌ Could not find a date in your command.\n\n"+usage)
		return nil
	}
	if lastIdx < 0 {
		reply(bot, message.Chat.ID, "❌ Please provide an event title before the date.")
		return nil
	}
	title := strings.Join(args[:lastIdx+1], " ")

	date, err := civil.ParseDate(dateStr)
	if err != nil {
		reply(bot, message.Chat.ID, "❌ Invalid date. Use `YYYY-MM-DD`.")
		return nil
	}
	var tod *civil.Time
	if timeStr != "" {
		t, err := civil.ParseTime(timeStr + ":00")
		if err != nil {
			if len(timeStr) == 4 {
				t, err = civil.ParseTime("0" + timeStr + ":00")
			}
			if err != nil {
				reply(bot, message.Chat.ID, "❌ Invalid time. Use `HH:MM`.")
				return nil
			}
		}
		tod = &t
	}

	ctx, hh, err := scope(context.Background(), h.svc, message.From, message.Chat)
	if err != nil {
		return err
	}

	loc := hh.Location()
	start := date.In(loc)
	if tod != nil {
		start = civil.DateTime{Date: date, Time: *tod}.In(loc)
	}
	ev := &intent.Event{
		Title:    &title,
		RawText:  strings.Join(args, " "),
		Date:     &start,
		Time:     tod,
		Location: location,
	}

	res, err := h.exec.Execute(ctx, hh.ID, ev)
	if err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	reply(bot, message.Chat.ID, res.Message())

	h.logger.WithFields(logrus.Fields{
		"chat_id": message.Chat.ID,
		"user_id": message.From.ID,
		"result":  res.Kind(),
	}).Info("Calendar event requested")

	return nil
}

func indexOf(args []string, s string) int {
	for i, a := range args {
		if a == s {
			return i
		}
	}
	return -1
}

// ---------------------------------------------------------------------------
// CalendarListHandler – /events
// ---------------------------------------------------------------------------

// CalendarListHandler handles the /events command to list upcoming events
// for the current chat.
type CalendarListHandler struct {
	svc      *service.Service
	calendar Upcoming
	logger   *logrus.Logger
}

// NewCalendarListHandler creates a new CalendarListHandler.
func NewCalendarListHandler(svc *service.Service, calendar Upcoming, logger *logrus.Logger) *CalendarListHandler {
	return &CalendarListHandler{svc: svc, calendar: calendar, logger: logger}
}

// Handle processes the /events command.
func (h *CalendarListHandler) Handle(bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	ctx, hh, err := scope(context.Background(), h.svc, message.From, message.Chat)
	if err != nil {
		return err
	}

	loc := hh.Location()
	now := h.svc.Now().In(loc)
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	events, err := h.calendar.Upcoming(ctx, hh.ID, from, upcomingLimit)
	if err != nil {
		return fmt.Errorf("list events: %w", err)
	}
	if len(events) == 0 {
		reply(bot, message.Chat.ID, "📅 *No upcoming events.*\n\nJust tell me about one, e.g. \"Dentist tomorrow at 3pm\".")
		return nil
	}

	var sb strings.Builder
	sb.WriteString("📅 *Upcoming Events*\n\n")
	for _, ev := range events {
		start := ev.StartTime.In(loc)
		if ev.AllDay {
			fmt.Fprintf(&sb, "• *%s* %s (all day)", start.Format("Mon 02 Jan"), ev.Title)
		} else {
			fmt.Fprintf(&sb, "• *%s* %s", start.Format("Mon 02 Jan 15:04"), ev.Title)
		}
		if ev.Location != "" {
			fmt.Fprintf(&sb, " 📍 %s", ev.Location)
		}
		sb.WriteString("\n")
	}
	reply(bot, message.Chat.ID, sb.String())

	h.logger.WithFields(logrus.Fields{
		"chat_id": message.Chat.ID,
		"count":   len(events),
	}).Info("Listed events")
	return nil
}

// ---------------------------------------------------------------------------
// PlaceAddHandler – /place <name> [| address]
// ---------------------------------------------------------------------------

// PlaceAddHandler saves a named place that event locations resolve to.
type PlaceAddHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewPlaceAddHandler creates a new PlaceAddHandler.
func NewPlaceAddHandler(svc *service.Service, logger *logrus.Logger) *PlaceAddHandler {
	return &PlaceAddHandler{svc: svc, logger: logger}
}

// Handle processes the /place command.
func (h *PlaceAddHandler) Handle(bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	name, address, _ := strings.Cut(strings.Join(args, " "), "|")
	name, address = strings.TrimSpace(name), strings.TrimSpace(address)
	if name == "" {
		reply(bot, message.Chat.ID, "❌ Please name the place.\nUsage: `/place Lincoln Elementary | 12 Oak St`")
		return nil
	}

	ctx, hh, err := scope(context.Background(), h.svc, message.From, message.Chat)
	if err != nil {
		return err
	}
	saved, err := h.svc.AddLocation(ctx, &models.SavedLocation{HouseholdID: hh.ID, Name: name, Address: address})
	if err != nil {
		return fmt.Errorf("save location: %w", err)
	}
	reply(bot, message.Chat.ID, fmt.Sprintf("📍 Saved *%s*\n_Matches: %s_", saved.Name, strings.Join(saved.Keywords, ", ")))
	return nil
}

// ---------------------------------------------------------------------------
// PlacesHandler – /places
// ---------------------------------------------------------------------------

// PlacesHandler lists saved places.
type PlacesHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewPlacesHandler creates a new PlacesHandler.
func NewPlacesHandler(svc *service.Service, logger *logrus.Logger) *PlacesHandler {
	return &PlacesHandler{svc: svc, logger: logger}
}

// Handle processes the /places command.
func (h *PlacesHandler) Handle(bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	ctx, hh, err := scope(context.Background(), h.svc, message.From, message.Chat)
	if err != nil {
		return err
	}
	locs, err := h.svc.ListLocations(ctx, hh.ID)
	if err != nil {
		return fmt.Errorf("list locations: %w", err)
	}
	if len(locs) == 0 {
		reply(bot, message.Chat.ID, "📍 No saved places yet. Add one with `/place <name> | <address>`")
		return nil
	}
	var sb strings.Builder
	sb.WriteString("📍 *Saved Places*\n\n")
	for _, l := range locs {
		fmt.Fprintf(&sb, "• *%s*", l.Name)
		if l.Address != "" {
			fmt.Fprintf(&sb, " — %s", l.Address)
		}
		sb.WriteString("\n")
	}
	reply(bot, message.Chat.ID, sb.String())
	return nil
}
