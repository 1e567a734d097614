package intent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/hearth/internal/llm"
	"github.com/Kerhoff/hearth/internal/metrics"
	"github.com/Kerhoff/hearth/internal/models"
	"github.com/Kerhoff/hearth/internal/recipe"
)

// ErrBackendUnavailable is returned by the AI tier when no backend is
// configured or the caller is not authenticated.
var ErrBackendUnavailable = errors.New("AI backend unavailable")

// Parser is the two-tier intent parser.
type Parser struct {
	backend llm.Client
	rules   *RuleParser
	logger  logrus.FieldLogger
	now     func() time.Time
	loc     *time.Location
}

// Option configures a Parser.
type Option func(*Parser)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Parser) { p.now = now }
}

// WithLocation sets the zone used for relative dates. Defaults to UTC.
func WithLocation(loc *time.Location) Option {
	return func(p *Parser) { p.loc = loc }
}

// NewParser creates a parser. backend may be nil, in which case only the rule
// tier runs.
func NewParser(backend llm.Client, logger logrus.FieldLogger, opts ...Option) *Parser {
	p := &Parser{
		backend: backend,
		rules:   NewRuleParser(),
		logger:  logger,
		now:     time.Now,
		loc:     time.UTC,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse interprets one utterance. It never fails: when the AI tier is
// unavailable or errors, the rule parser answers.
func (p *Parser) Parse(ctx context.Context, text string) *Envelope {
	env, err := p.ParseAI(ctx, llm.Request{Transcript: text})
	if err == nil {
		metrics.IntentsParsed.WithLabelValues(string(SourceAI)).Inc()
		return env
	}
	p.fallback(err, text)
	return p.ParseRules(text)
}

// ParseDocument interprets a multi-line document such as a school newsletter.
// Without the AI tier each non-empty line is parsed on its own.
func (p *Parser) ParseDocument(ctx context.Context, text, filename string) *Envelope {
	env, err := p.ParseAI(ctx, llm.Request{Transcript: text, IsDocument: true, Filename: filename})
	if err == nil {
		metrics.IntentsParsed.WithLabelValues(string(SourceAI)).Inc()
		return env
	}
	p.fallback(err, filename)

	out := &Envelope{RawText: text, Source: SourceRules}
	now := p.localNow()
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		out.Items = append(out.Items, p.rules.Parse(line, now))
	}
	metrics.IntentsParsed.WithLabelValues(string(SourceRules)).Inc()
	return out
}

// ParseRules runs only the rule tier.
func (p *Parser) ParseRules(text string) *Envelope {
	metrics.IntentsParsed.WithLabelValues(string(SourceRules)).Inc()
	return &Envelope{
		Items:   []Intent{p.rules.Parse(text, p.localNow())},
		RawText: text,
		Source:  SourceRules,
	}
}

// ParseAI runs only the AI tier.
func (p *Parser) ParseAI(ctx context.Context, req llm.Request) (*Envelope, error) {
	if p.backend == nil || models.UserFromContext(ctx) == nil {
		return nil, ErrBackendUnavailable
	}
	req.Today = p.today().String()

	raw, err := p.backend.Parse(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to parse with AI backend: %w", err)
	}
	env, err := Decode(raw, req.Transcript, p.loc)
	if err != nil {
		return nil, err
	}
	if len(env.Items) == 0 {
		return nil, fmt.Errorf("AI backend returned no items")
	}
	return env, nil
}

// ParseRecipe reads a pasted recipe through the AI tier, falling back to the
// plain-text recipe parser.
func (p *Parser) ParseRecipe(ctx context.Context, text string) *models.Recipe {
	if p.backend != nil && models.UserFromContext(ctx) != nil {
		raw, err := p.backend.Parse(ctx, llm.Request{Transcript: text, IsRecipe: true, ParseType: "recipe"})
		if err == nil {
			r, derr := recipe.Decode(raw)
			if derr == nil {
				return r
			}
			err = derr
		}
		p.fallback(err, "recipe")
	}
	return recipe.ParseText(text)
}

func (p *Parser) fallback(err error, subject string) {
	if errors.Is(err, ErrBackendUnavailable) {
		return
	}
	metrics.AIFallbacks.Inc()
	p.logger.WithFields(logrus.Fields{
		"source": SourceAI,
		"input":  subject,
		"err":    err,
	}).Warn("AI parsing failed, falling back to rules")
}

func (p *Parser) localNow() time.Time {
	return p.now().In(p.loc)
}

func (p *Parser) today() civil.Date {
	return civil.DateOf(p.localNow())
}
