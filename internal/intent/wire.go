package intent

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"

	"github.com/Kerhoff/hearth/internal/ingredient"
	"github.com/Kerhoff/hearth/internal/models"
)

// defaultTodoTime applies to todos that carry a date but no time of day.
var defaultTodoTime = civil.Time{Hour: 20}

// WireTime is a time of day as sent by AI backends.
type WireTime struct {
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
}

// Wire is the loosely typed JSON form of an intent, shared by AI backend
// responses and the HTTP API.
type Wire struct {
	Type              string             `json:"type"`
	Title             *string            `json:"title,omitempty"`
	Date              string             `json:"date,omitempty"`
	Time              *WireTime          `json:"time,omitempty"`
	DefaultTime       string             `json:"default_time,omitempty"`
	AllDay            *bool              `json:"all_day,omitempty"`
	Location          string             `json:"location,omitempty"`
	Recurring         bool               `json:"recurring,omitempty"`
	Frequency         string             `json:"frequency,omitempty"`
	NeedsNotification bool               `json:"needs_notification,omitempty"`
	Quantity          *ingredient.Amount `json:"quantity,omitempty"`
	Unit              string             `json:"unit,omitempty"`
	Category          string             `json:"category,omitempty"`
	Query             string             `json:"query,omitempty"`
	Raw               string             `json:"raw,omitempty"`
}

// FromWire converts w into a typed intent. Dates without an offset are
// interpreted in loc. A "reminder" becomes a todo that needs notification.
func FromWire(w Wire, loc *time.Location) Intent {
	kind := strings.ToLower(strings.TrimSpace(w.Type))
	notify := w.NeedsNotification
	if kind == "reminder" {
		kind = string(KindTodo)
		notify = true
	}

	date, tod, hasDate := w.dateTime(loc)
	freq, recurring := models.Frequency(strings.ToLower(w.Frequency)), w.Recurring
	if !recurring || !freq.Valid() {
		freq, recurring = "", false
	}

	switch Kind(kind) {
	case KindEvent:
		e := &Event{Title: w.Title, RawText: w.Raw, Location: strings.TrimSpace(w.Location), Recurring: recurring, Frequency: freq}
		if hasDate {
			start := combine(date, tod, loc)
			e.Date = &start
			e.Time = tod
		}
		return e
	case KindTask, KindTodo:
		t := &Task{
			Todo:              Kind(kind) == KindTodo,
			Title:             w.Title,
			RawText:           w.Raw,
			Recurring:         recurring,
			Frequency:         freq,
			NeedsNotification: notify,
		}
		if hasDate {
			t.DueDate = &date
			t.DueTime = tod
			if t.Todo && tod == nil {
				dt := defaultTodoTime
				t.DueTime = &dt
			}
		}
		return t
	case KindShopping:
		return &Shopping{
			Title:    w.Title,
			RawText:  w.Raw,
			Quantity: w.Quantity.Ptr(),
			Unit:     strings.TrimSpace(w.Unit),
			Category: strings.TrimSpace(w.Category),
		}
	case KindComplete:
		q := w.Query
		if q == "" && w.Title != nil {
			q = *w.Title
		}
		return &Complete{Query: strings.TrimSpace(q), RawText: w.Raw}
	case KindList:
		return &List{RawText: w.Raw}
	case KindUnknown:
		return &Unknown{RawText: w.Raw}
	}

	// Untyped items without a date are treated as tasks.
	if !hasDate {
		return &Task{Title: w.Title, RawText: w.Raw, Recurring: recurring, Frequency: freq, NeedsNotification: notify}
	}
	return &Unknown{RawText: w.Raw}
}

// dateTime reads Date as an ISO date or an RFC 3339 timestamp and resolves
// the time of day from Time, DefaultTime or the timestamp, in that order.
func (w Wire) dateTime(loc *time.Location) (civil.Date, *civil.Time, bool) {
	var (
		date    civil.Date
		stamped *civil.Time
	)
	s := strings.TrimSpace(w.Date)
	if s == "" {
		return date, nil, false
	}
	if d, err := civil.ParseDate(s); err == nil {
		date = d
	} else if ts, ok := parseStamp(s, loc); ok {
		date = civil.DateOf(ts)
		ct := civil.TimeOf(ts)
		ct.Nanosecond = 0
		stamped = &ct
	} else if d, err := civil.ParseDate(s[:min(len(s), 10)]); err == nil {
		date = d
	} else {
		return date, nil, false
	}

	switch {
	case w.Time != nil && validClock(w.Time.Hours, w.Time.Minutes):
		return date, &civil.Time{Hour: w.Time.Hours, Minute: w.Time.Minutes}, true
	case w.DefaultTime != "":
		if ct, ok := parseClock(w.DefaultTime); ok {
			return date, &ct, true
		}
	}
	return date, stamped, true
}

// localStampLayouts are timestamps without an offset, read in the caller's
// location.
var localStampLayouts = []string{"2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02 15:04:05", "2006-01-02 15:04"}

func parseStamp(s string, loc *time.Location) (time.Time, bool) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts.In(loc), true
	}
	for _, layout := range localStampLayouts {
		if ts, err := time.ParseInLocation(layout, s, loc); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// ToWire renders i in the JSON form.
func ToWire(i Intent) Wire {
	w := Wire{Type: string(i.Kind()), Raw: i.Raw()}
	switch v := i.(type) {
	case *Event:
		w.Title = v.Title
		w.Location = v.Location
		allDay := v.AllDay()
		w.AllDay = &allDay
		if v.Date != nil {
			w.Date = v.Date.Format(time.RFC3339)
		}
		if v.Time != nil {
			w.Time = &WireTime{Hours: v.Time.Hour, Minutes: v.Time.Minute}
		}
		w.Recurring, w.Frequency = v.Recurring, string(v.Frequency)
	case *Task:
		w.Title = v.Title
		if v.DueDate != nil {
			w.Date = v.DueDate.String()
		}
		if v.DueTime != nil {
			w.Time = &WireTime{Hours: v.DueTime.Hour, Minutes: v.DueTime.Minute}
		}
		w.Recurring, w.Frequency = v.Recurring, string(v.Frequency)
		w.NeedsNotification = v.NeedsNotification
	case *Shopping:
		w.Title = v.Title
		if v.Quantity != nil {
			q := ingredient.Amount(*v.Quantity)
			w.Quantity = &q
		}
		w.Unit, w.Category = v.Unit, v.Category
	case *Complete:
		w.Query = v.Query
	}
	return w
}

type envelopeJSON struct {
	*Wire
	Items  []Wire `json:"items"`
	Source Source `json:"source"`
	Raw    string `json:"raw"`
}

// MarshalJSON renders {"items": [...]} and, for a single item, also its
// fields at the top level.
func (e *Envelope) MarshalJSON() ([]byte, error) {
	out := envelopeJSON{Items: make([]Wire, 0, len(e.Items)), Source: e.Source, Raw: e.RawText}
	for _, it := range e.Items {
		out.Items = append(out.Items, ToWire(it))
	}
	if len(out.Items) == 1 {
		single := out.Items[0]
		out.Wire = &single
	}
	return json.Marshal(out)
}

func combine(d civil.Date, t *civil.Time, loc *time.Location) time.Time {
	if t == nil {
		return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
	}
	return time.Date(d.Year, d.Month, d.Day, t.Hour, t.Minute, 0, 0, loc)
}

func validClock(h, m int) bool {
	return h >= 0 && h < 24 && m >= 0 && m < 60
}

// parseClock reads "HH:MM".
func parseClock(s string) (civil.Time, bool) {
	var h, m int
	if _, err := fmt.Sscanf(strings.TrimSpace(s), "%d:%d", &h, &m); err != nil || !validClock(h, m) {
		return civil.Time{}, false
	}
	return civil.Time{Hour: h, Minute: m}, true
}
