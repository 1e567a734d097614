package intent

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"

	"github.com/Kerhoff/hearth/internal/models"
)

// Extraction collects what the extractors recognised in an utterance.
type Extraction struct {
	Time      *civil.Time
	Date      *civil.Date
	Location  string
	Frequency models.Frequency
}

// Extractor fills in the part of an Extraction it recognises in text.
// today is the caller's local date.
type Extractor func(text string, today civil.Date, into *Extraction)

// DefaultExtractors run in order on every utterance that is not a list or
// completion command.
var DefaultExtractors = []Extractor{
	timeExtractor,
	dateExtractor,
	locationExtractor,
	recurrenceExtractor,
}

var (
	clockPattern    = regexp.MustCompile(`(?i)\bat (\d{1,2})(?::(\d{2}))?\s*(am|pm)?\b`)
	todayPattern    = regexp.MustCompile(`(?i)\b(today|tonight)\b`)
	tomorrowPattern = regexp.MustCompile(`(?i)\btomorrow\b`)
	weekdayPattern  = regexp.MustCompile(`(?i)\b(?:on |next )?(sunday|monday|tuesday|wednesday|thursday|friday|saturday)\b`)
	nextPattern     = regexp.MustCompile(`(?i)\bnext\b`)
	locationPattern = regexp.MustCompile(`(?:\bat|@)\s+(?:the\s+)?([A-Z][a-zA-Z']+(?:\s+[A-Z][a-zA-Z']+)*)`)
	dailyPattern    = regexp.MustCompile(`(?i)\b(every day|daily)\b`)
	weeklyPattern   = regexp.MustCompile(`(?i)\b(every week|weekly)\b`)
	monthlyPattern  = regexp.MustCompile(`(?i)\b(every month|monthly)\b`)
)

var weekdays = map[string]time.Weekday{
	"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday, "wednesday": time.Wednesday,
	"thursday": time.Thursday, "friday": time.Friday, "saturday": time.Saturday,
}

// ExtractTime reads "at 3", "at 3pm" or "at 3:30 am". A bare hour below 8
// is taken as afternoon.
func ExtractTime(text string) (civil.Time, bool) {
	m := clockPattern.FindStringSubmatch(text)
	if m == nil {
		return civil.Time{}, false
	}
	hours, _ := strconv.Atoi(m[1])
	minutes := 0
	if m[2] != "" {
		minutes, _ = strconv.Atoi(m[2])
	}
	switch strings.ToLower(m[3]) {
	case "pm":
		if hours < 12 {
			hours += 12
		}
	case "am":
		if hours == 12 {
			hours = 0
		}
	default:
		if hours < 8 {
			hours += 12
		}
	}
	if !validClock(hours, minutes) {
		return civil.Time{}, false
	}
	return civil.Time{Hour: hours, Minute: minutes}, true
}

// ExtractDate resolves today, tonight, tomorrow and weekday names relative to
// today. A weekday that is today or already past this week, or one preceded
// by "next" anywhere in the text, lands in the following week.
func ExtractDate(text string, today civil.Date) (civil.Date, bool) {
	switch {
	case todayPattern.MatchString(text):
		return today, true
	case tomorrowPattern.MatchString(text):
		return today.AddDays(1), true
	}
	m := weekdayPattern.FindStringSubmatch(text)
	if m == nil {
		return civil.Date{}, false
	}
	target := weekdays[strings.ToLower(m[1])]
	current := today.In(time.UTC).Weekday()
	days := int(target) - int(current)
	if days <= 0 || nextPattern.MatchString(text) {
		days += 7
	}
	return today.AddDays(days), true
}

// ExtractLocation reads the capitalized phrase after "at" or "@", dropping a
// leading "the".
func ExtractLocation(text string) (string, bool) {
	m := locationPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ExtractRecurrence recognises the daily, weekly and monthly keyword
// families.
func ExtractRecurrence(text string) (models.Frequency, bool) {
	switch {
	case dailyPattern.MatchString(text):
		return models.FrequencyDaily, true
	case weeklyPattern.MatchString(text):
		return models.FrequencyWeekly, true
	case monthlyPattern.MatchString(text):
		return models.FrequencyMonthly, true
	}
	return "", false
}

func timeExtractor(text string, _ civil.Date, into *Extraction) {
	if t, ok := ExtractTime(text); ok {
		into.Time = &t
	}
}

func dateExtractor(text string, today civil.Date, into *Extraction) {
	if d, ok := ExtractDate(text, today); ok {
		into.Date = &d
	}
}

func locationExtractor(text string, _ civil.Date, into *Extraction) {
	if loc, ok := ExtractLocation(text); ok {
		into.Location = loc
	}
}

func recurrenceExtractor(text string, _ civil.Date, into *Extraction) {
	if f, ok := ExtractRecurrence(text); ok {
		into.Frequency = f
	}
}
