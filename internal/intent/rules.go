package intent

import (
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"cloud.google.com/go/civil"
)

var (
	listPattern        = regexp.MustCompile(`^(what('s| is)|show|list|tell me).*(to ?do|task|schedule|event|happening|going on)`)
	completeLead       = regexp.MustCompile(`^(i |i've |we |we've )?(done|finished|completed|did|checked off)`)
	completeMark       = regexp.MustCompile(`(mark|check).*(done|complete|off)`)
	completeQuery      = regexp.MustCompile(`(?i)(?:done|finished|completed|did|checked off|mark|check)[^a-z]*(.+?)(?:\s+(?:done|complete|off)\b|\s*$)`)
	queryLeadingNoise  = regexp.MustCompile(`(?i)^(?:off|with|the)\s+`)
	queryTrailingNoise = regexp.MustCompile(`(?i)\s+as$`)
	spaces             = regexp.MustCompile(`\s+`)
)

// titleStrippers remove recognised tokens and filler, in order, leaving the
// title.
var titleStrippers = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(today|tomorrow|tonight)\b`),
	regexp.MustCompile(`(?i)\b(on |next )?(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`),
	regexp.MustCompile(`(?i)\bat \d{1,2}(?::\d{2})?\s*(?:am|pm)?\b`),
	regexp.MustCompile(`(?:\bat|@)\s+(?:the\s+)?[A-Z][a-zA-Z']+(?:\s+[A-Z][a-zA-Z']+)*`),
	regexp.MustCompile(`(?i)\b(every day|daily|every week|weekly|every month|monthly)\b`),
	regexp.MustCompile(`(?i)\b(add|create|schedule|set|remind me|remind us|put|make|buy)\b`),
	regexp.MustCompile(`(?i)\b(a|an|the) \b`),
	regexp.MustCompile(`(?i)\b(to do|task|event|appointment|reminder)\b`),
}

// RuleParser classifies utterances with regular expressions. It never fails:
// unrecognised input becomes a task, possibly without a title.
type RuleParser struct {
	Extractors []Extractor
}

// NewRuleParser returns a RuleParser using DefaultExtractors.
func NewRuleParser() *RuleParser {
	return &RuleParser{Extractors: DefaultExtractors}
}

// Parse classifies text. now supplies the reference date and the zone in
// which resolved dates are expressed.
func (r *RuleParser) Parse(text string, now time.Time) Intent {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return &Unknown{RawText: text}
	}
	lower := strings.ToLower(trimmed)

	if listPattern.MatchString(lower) {
		return &List{RawText: text}
	}
	if completeLead.MatchString(lower) || completeMark.MatchString(lower) {
		return &Complete{Query: completionQuery(trimmed), RawText: text}
	}

	var ex Extraction
	today := civil.DateOf(now)
	for _, extract := range r.Extractors {
		extract(trimmed, today, &ex)
	}

	var title *string
	if t := stripTitle(trimmed); t != "" {
		title = &t
	}
	recurring := ex.Frequency != ""

	if ex.Time != nil {
		e := &Event{
			Title:     title,
			RawText:   text,
			Time:      ex.Time,
			Location:  ex.Location,
			Recurring: recurring,
			Frequency: ex.Frequency,
		}
		if ex.Date != nil {
			start := combine(*ex.Date, ex.Time, now.Location())
			e.Date = &start
		}
		return e
	}

	return &Task{
		Title:     title,
		RawText:   text,
		DueDate:   ex.Date,
		Recurring: recurring,
		Frequency: ex.Frequency,
	}
}

func completionQuery(text string) string {
	m := completeQuery.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	q := strings.TrimSpace(m[1])
	for {
		next := queryLeadingNoise.ReplaceAllString(q, "")
		if next == q {
			break
		}
		q = next
	}
	return strings.TrimSpace(queryTrailingNoise.ReplaceAllString(q, ""))
}

func stripTitle(text string) string {
	for _, re := range titleStrippers {
		text = re.ReplaceAllString(text, "")
	}
	text = strings.TrimSpace(spaces.ReplaceAllString(text, " "))
	if text == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(text)
	return string(unicode.ToUpper(r)) + text[size:]
}
