// Package intent turns free text into typed household commands.
//
// A Parser first offers the utterance to an AI backend and falls back to a
// deterministic rule parser when the backend is missing, the caller is
// anonymous or the call fails. Both tiers produce an Envelope of Intent
// values; the executor package applies them.
package intent

import (
	"strings"
	"time"

	"cloud.google.com/go/civil"

	"github.com/Kerhoff/hearth/internal/models"
)

// Kind names an intent variant.
type Kind string

const (
	KindEvent    Kind = "event"
	KindTask     Kind = "task"
	KindTodo     Kind = "todo"
	KindShopping Kind = "shopping"
	KindComplete Kind = "complete"
	KindList     Kind = "list"
	KindUnknown  Kind = "unknown"
)

// Intent is one of *Event, *Task, *Shopping, *Complete, *List or *Unknown.
type Intent interface {
	Kind() Kind
	Raw() string
	sealed()
}

// Event is something happening at a point in time. Date is nil when no day
// was resolved; Time is nil when no time of day was resolved.
type Event struct {
	Title     *string
	RawText   string
	Date      *time.Time
	Time      *civil.Time
	Location  string
	Recurring bool
	Frequency models.Frequency
}

// AllDay reports whether the event has no time of day.
func (e *Event) AllDay() bool { return e.Time == nil }

// Task is something to get done. Todo marks items that came in as todos or
// reminders rather than plain tasks.
type Task struct {
	Todo              bool
	Title             *string
	RawText           string
	DueDate           *civil.Date
	DueTime           *civil.Time
	Recurring         bool
	Frequency         models.Frequency
	NeedsNotification bool
}

// Shopping is an item to put on the shopping list.
type Shopping struct {
	Title    *string
	RawText  string
	Quantity *float64
	Unit     string
	Category string
}

// Complete asks to mark the task matching Query as done.
type Complete struct {
	Query   string
	RawText string
}

// List asks for the pending tasks.
type List struct {
	RawText string
}

// Unknown is input that could not be classified.
type Unknown struct {
	RawText string
}

func (*Event) Kind() Kind { return KindEvent }
func (t *Task) Kind() Kind {
	if t.Todo {
		return KindTodo
	}
	return KindTask
}
func (*Shopping) Kind() Kind { return KindShopping }
func (*Complete) Kind() Kind { return KindComplete }
func (*List) Kind() Kind     { return KindList }
func (*Unknown) Kind() Kind  { return KindUnknown }

func (e *Event) Raw() string    { return e.RawText }
func (t *Task) Raw() string     { return t.RawText }
func (s *Shopping) Raw() string { return s.RawText }
func (c *Complete) Raw() string { return c.RawText }
func (l *List) Raw() string     { return l.RawText }
func (u *Unknown) Raw() string  { return u.RawText }

func (*Event) sealed()    {}
func (*Task) sealed()     {}
func (*Shopping) sealed() {}
func (*Complete) sealed() {}
func (*List) sealed()     {}
func (*Unknown) sealed()  {}

// Title returns the trimmed title of i, or "" when it has none.
func Title(i Intent) string {
	var t *string
	switch v := i.(type) {
	case *Event:
		t = v.Title
	case *Task:
		t = v.Title
	case *Shopping:
		t = v.Title
	}
	if t == nil {
		return ""
	}
	return strings.TrimSpace(*t)
}

// Source records which tier produced an envelope.
type Source string

const (
	SourceAI     Source = "ai"
	SourceRules  Source = "rules"
	SourceClient Source = "client"
)

// Envelope is the result of parsing one utterance.
type Envelope struct {
	Items   []Intent
	RawText string
	Source  Source
}

// Single returns the only item, or nil when the envelope holds zero or
// several items.
func (e *Envelope) Single() Intent {
	if len(e.Items) != 1 {
		return nil
	}
	return e.Items[0]
}

func strPtr(s string) *string { return &s }
