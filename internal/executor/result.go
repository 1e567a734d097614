package executor

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Kerhoff/hearth/internal/models"
)

// ResultKind names a Result variant.
type ResultKind string

const (
	KindEventCreated  ResultKind = "eventCreated"
	KindTaskCreated   ResultKind = "taskCreated"
	KindShoppingAdded ResultKind = "shoppingAdded"
	KindCompleted     ResultKind = "completed"
	KindAmbiguous     ResultKind = "ambiguous"
	KindNotFound      ResultKind = "notFound"
	KindList          ResultKind = "list"
	KindSkipped       ResultKind = "skipped"
	KindUnknown       ResultKind = "unknown"
)

// Result is the outcome of executing one intent. The concrete types below are
// the only implementations.
type Result interface {
	Kind() ResultKind
	// Message is a short human-readable summary for chat replies.
	Message() string
	sealed()
}

type EventCreated struct {
	Event *models.CalendarEvent `json:"event"`
}

type TaskCreated struct {
	Task *models.Task `json:"task"`
}

type ShoppingAdded struct {
	Item *models.ShoppingItem `json:"item"`
}

type Completed struct {
	Task *models.Task `json:"task"`
}

// Ambiguous lists every task matching a completion query. None were changed.
type Ambiguous struct {
	Query   string         `json:"query"`
	Matches []*models.Task `json:"matches"`
}

type NotFound struct {
	Query string `json:"query"`
}

type TaskList struct {
	Tasks []*models.Task `json:"tasks"`
}

// Skipped means the intent was well-formed but not actionable.
type Skipped struct {
	Reason string `json:"reason"`
}

type Unknown struct {
	RawText string `json:"raw_text"`
}

func (*EventCreated) Kind() ResultKind  { return KindEventCreated }
func (*TaskCreated) Kind() ResultKind   { return KindTaskCreated }
func (*ShoppingAdded) Kind() ResultKind { return KindShoppingAdded }
func (*Completed) Kind() ResultKind     { return KindCompleted }
func (*Ambiguous) Kind() ResultKind     { return KindAmbiguous }
func (*NotFound) Kind() ResultKind      { return KindNotFound }
func (*TaskList) Kind() ResultKind      { return KindList }
func (*Skipped) Kind() ResultKind       { return KindSkipped }
func (*Unknown) Kind() ResultKind       { return KindUnknown }

func (*EventCreated) sealed()  {}
func (*TaskCreated) sealed()   {}
func (*ShoppingAdded) sealed() {}
func (*Completed) sealed()     {}
func (*Ambiguous) sealed()     {}
func (*NotFound) sealed()      {}
func (*TaskList) sealed()      {}
func (*Skipped) sealed()       {}
func (*Unknown) sealed()       {}

func (r *EventCreated) Message() string {
	if r.Event.AllDay {
		return fmt.Sprintf("📅 Added %q on %s", r.Event.Title, r.Event.StartTime.Format("Mon Jan 2"))
	}
	return fmt.Sprintf("📅 Added %q on %s", r.Event.Title, r.Event.StartTime.Format("Mon Jan 2 at 3:04 PM"))
}

func (r *TaskCreated) Message() string {
	msg := fmt.Sprintf("✅ Task added: %s", r.Task.Title)
	if r.Task.DueDate != nil {
		msg += " (due " + r.Task.DueDate.String()
		if r.Task.DueTime != "" {
			msg += " " + r.Task.DueTime
		}
		msg += ")"
	}
	return msg
}

func (r *ShoppingAdded) Message() string {
	return fmt.Sprintf("🛒 Added to shopping list: %s", r.Item.Name)
}

func (r *Completed) Message() string {
	return fmt.Sprintf("✔️ Done: %s", r.Task.Title)
}

func (r *Ambiguous) Message() string {
	titles := make([]string, len(r.Matches))
	for i, t := range r.Matches {
		titles[i] = "• " + t.Title
	}
	return fmt.Sprintf("🤔 %q matches %d tasks, be more specific:\n%s", r.Query, len(r.Matches), strings.Join(titles, "\n"))
}

func (r *NotFound) Message() string {
	return fmt.Sprintf("🔍 No pending task matches %q", r.Query)
}

func (r *TaskList) Message() string {
	if len(r.Tasks) == 0 {
		return "🎉 No pending tasks"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "📋 %d pending tasks:", len(r.Tasks))
	for _, t := range r.Tasks {
		b.WriteString("\n• " + t.Title)
		if t.DueDate != nil {
			b.WriteString(" (" + t.DueDate.String() + ")")
		}
	}
	return b.String()
}

func (r *Skipped) Message() string {
	return "⚠️ Skipped: " + r.Reason
}

func (r *Unknown) Message() string {
	return "🤷 Sorry, I didn't understand that"
}

// MarshalResult encodes r with its kind and message alongside the payload.
func MarshalResult(r Result) ([]byte, error) {
	return json.Marshal(struct {
		Type    ResultKind `json:"type"`
		Message string     `json:"message"`
		Data    Result     `json:"data"`
	}{r.Kind(), r.Message(), r})
}
