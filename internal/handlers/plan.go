package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/hearth/internal/mealplan"
	"github.com/Kerhoff/hearth/internal/models"
	"github.com/Kerhoff/hearth/internal/repository"
	"github.com/Kerhoff/hearth/internal/service"
	"github.com/Kerhoff/hearth/internal/telegram"
)

const (
	callbackPlan       = "plan"
	planActionAccept   = "accept"
	planActionAgain    = "again"
	noSuggestionsReply = "🍽 No suggestions in progress. Start with /plan"
)

// draft is a chat's unaccepted week of suggestions.
type draft struct {
	planID      int64
	suggestions []mealplan.Suggestion
}

// Planner drives the /plan conversation: suggest a week, adjust it with
// /swap and /lock, then /accept it into the meal plan. Drafts live in memory
// and are lost on restart.
type Planner struct {
	svc    *service.Service
	logger *logrus.Logger

	mu     sync.Mutex
	drafts map[int64]*draft
}

// NewPlanner creates a new Planner.
func NewPlanner(svc *service.Service, logger *logrus.Logger) *Planner {
	return &Planner{svc: svc, logger: logger, drafts: make(map[int64]*draft)}
}

func (p *Planner) draft(chatID int64) *draft {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.drafts[chatID]
}

func (p *Planner) store(chatID int64, d *draft) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if d == nil {
		delete(p.drafts, chatID)
		return
	}
	p.drafts[chatID] = d
}

// update applies fn to the chat's draft under the lock. It reports false
// when there is no draft.
func (p *Planner) update(chatID int64, fn func(d *draft)) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	d, ok := p.drafts[chatID]
	if ok {
		fn(d)
	}
	return ok
}

// renderDraft lists the suggestions numbered from 1.
func renderDraft(week *models.MealPlan, d *draft, fulfilled bool) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🍽 *Dinner ideas for the week of %s*\n\n", week.WeekStart)
	for i, s := range d.suggestions {
		fmt.Fprintf(&sb, "%d. *%s* ", i+1, s.Day.Label)
		if s.Locked {
			sb.WriteString("🔒 ")
		}
		if s.Recipe == nil {
			sb.WriteString("_nothing suitable_\n")
			continue
		}
		fmt.Fprintf(&sb, "%s _(%s)_\n", s.Recipe.Name, s.Reason)
	}
	if len(d.suggestions) == 0 {
		sb.WriteString("_Every day this week is already planned._\n")
	}
	if !fulfilled {
		sb.WriteString("\n⚠️ Not enough recipes to meet every category goal.\n")
	}
	sb.WriteString("\n_/swap 2 <recipe>, /lock 3, /accept_")
	return sb.String()
}

func planKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("✅ Accept", callbackPlan+":"+planActionAccept),
		tgbotapi.NewInlineKeyboardButtonData("🔄 Try again", callbackPlan+":"+planActionAgain),
	))
}

// suggest generates a fresh draft for the current week. Locked suggestions
// from the previous draft keep their day.
func (p *Planner) suggest(ctx context.Context, bot telegram.Sender, chatID int64, hh *models.Household) error {
	plan, err := p.svc.GetOrCreatePlan(ctx, hh.ID, p.svc.Today())
	if err != nil {
		return fmt.Errorf("get plan: %w", err)
	}
	week, err := p.svc.SuggestWeek(ctx, plan)
	if err != nil {
		return fmt.Errorf("suggest week: %w", err)
	}

	d := &draft{planID: plan.ID, suggestions: week.Suggestions}
	if prev := p.draft(chatID); prev != nil && prev.planID == plan.ID {
		locked := make(map[string]mealplan.Suggestion)
		for _, s := range prev.suggestions {
			if s.Locked {
				locked[s.Day.Date.String()] = s
			}
		}
		for i, s := range d.suggestions {
			if l, ok := locked[s.Day.Date.String()]; ok {
				d.suggestions[i] = l
			}
		}
	}
	p.store(chatID, d)

	msg := tgbotapi.NewMessage(chatID, renderDraft(plan, d, week.Fulfilled))
	msg.ParseMode = tgbotapi.ModeMarkdown
	if len(d.suggestions) > 0 {
		msg.ReplyMarkup = planKeyboard()
	}
	if _, err := bot.Send(msg); err != nil {
		return fmt.Errorf("send suggestions: %w", err)
	}

	p.logger.WithFields(logrus.Fields{
		"chat_id":   chatID,
		"plan_id":   plan.ID,
		"days":      len(d.suggestions),
		"fulfilled": week.Fulfilled,
	}).Info("Suggested week")
	return nil
}

// accept writes the chat's draft into its meal plan and drops the draft.
func (p *Planner) accept(ctx context.Context, bot telegram.Sender, chatID int64) error {
	d := p.draft(chatID)
	if d == nil {
		reply(bot, chatID, noSuggestionsReply)
		return nil
	}
	plan, err := p.svc.AcceptSuggestions(ctx, d.planID, d.suggestions)
	if errors.Is(err, repository.ErrNotFound) {
		p.store(chatID, nil)
		reply(bot, chatID, "⚠️ Those suggestions are out of date. Run /plan again.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("accept suggestions: %w", err)
	}
	p.store(chatID, nil)
	reply(bot, chatID, fmt.Sprintf("✅ Planned %d dinners this week. See what to buy with /grocery", len(plan.Meals)))
	return nil
}

// Plan handles /plan.
func (p *Planner) Plan(bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	ctx, hh, err := scope(context.Background(), p.svc, message.From, message.Chat)
	if err != nil {
		return err
	}
	return p.suggest(ctx, bot, message.Chat.ID, hh)
}

// dayIndex resolves "3" or "wed" to a position in suggestions.
func dayIndex(s string, suggestions []mealplan.Suggestion) (int, bool) {
	if i, ok := parseIndex(s, len(suggestions)); ok {
		return i, true
	}
	for i, sg := range suggestions {
		if strings.EqualFold(sg.Day.Label, s) {
			return i, true
		}
	}
	return 0, false
}

// Swap handles /swap <day> <recipe name>.
func (p *Planner) Swap(bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	chatID := message.Chat.ID
	if len(args) < 2 {
		reply(bot, chatID, "❌ Usage: `/swap 2 Chicken curry`")
		return nil
	}
	d := p.draft(chatID)
	if d == nil {
		reply(bot, chatID, noSuggestionsReply)
		return nil
	}
	i, ok := dayIndex(args[0], d.suggestions)
	if !ok {
		reply(bot, chatID, fmt.Sprintf("❌ Pick a day from 1 to %d.", len(d.suggestions)))
		return nil
	}

	ctx, hh, err := scope(context.Background(), p.svc, message.From, message.Chat)
	if err != nil {
		return err
	}
	name := strings.Join(args[1:], " ")
	r, err := p.svc.FindRecipe(ctx, hh.ID, name)
	if err != nil {
		return fmt.Errorf("find recipe: %w", err)
	}
	if r == nil {
		reply(bot, chatID, fmt.Sprintf("🔍 No recipe called %q. See /recipes", name))
		return nil
	}

	var s mealplan.Suggestion
	ok = p.update(chatID, func(d *draft) {
		d.suggestions = mealplan.Swap(d.suggestions, i, r)
		if i < len(d.suggestions) {
			s = d.suggestions[i]
		}
	})
	if !ok || s.Recipe != r {
		reply(bot, chatID, noSuggestionsReply)
		return nil
	}
	text := fmt.Sprintf("🔁 %s is now *%s*", s.Day.Label, r.Name)
	if s.SwappedFrom != "" {
		text += fmt.Sprintf(" _(was %s)_", s.SwappedFrom)
	}
	reply(bot, chatID, text)
	return nil
}

// Lock handles /lock <day>, which keeps a day when suggestions are
// regenerated.
func (p *Planner) Lock(bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	chatID := message.Chat.ID
	if len(args) == 0 {
		reply(bot, chatID, "❌ Usage: `/lock 3`")
		return nil
	}
	var (
		s     mealplan.Suggestion
		days  int
		valid bool
	)
	ok := p.update(chatID, func(d *draft) {
		days = len(d.suggestions)
		var i int
		if i, valid = dayIndex(args[0], d.suggestions); valid {
			d.suggestions = mealplan.ToggleLock(d.suggestions, i)
			s = d.suggestions[i]
		}
	})
	switch {
	case !ok:
		reply(bot, chatID, noSuggestionsReply)
	case !valid:
		reply(bot, chatID, fmt.Sprintf("❌ Pick a day from 1 to %d.", days))
	case s.Locked:
		reply(bot, chatID, fmt.Sprintf("🔒 %s is locked.", s.Day.Label))
	default:
		reply(bot, chatID, fmt.Sprintf("🔓 %s is unlocked.", s.Day.Label))
	}
	return nil
}

// Accept handles /accept.
func (p *Planner) Accept(bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	ctx, _, err := scope(context.Background(), p.svc, message.From, message.Chat)
	if err != nil {
		return err
	}
	return p.accept(ctx, bot, message.Chat.ID)
}

// Grocery handles /grocery [add]. With "add" the missing ingredients go on
// the shopping list.
func (p *Planner) Grocery(bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	chatID := message.Chat.ID
	ctx, hh, err := scope(context.Background(), p.svc, message.From, message.Chat)
	if err != nil {
		return err
	}
	plan, err := p.svc.GetOrCreatePlan(ctx, hh.ID, p.svc.Today())
	if err != nil {
		return fmt.Errorf("get plan: %w", err)
	}
	if len(plan.Meals) == 0 {
		reply(bot, chatID, "🍽 Nothing planned this week yet. Try /plan")
		return nil
	}

	if len(args) > 0 && strings.EqualFold(args[0], "add") {
		user := models.UserFromContext(ctx)
		n, err := p.svc.CommitGrocery(ctx, plan, true, &user.ID)
		if err != nil {
			return fmt.Errorf("commit grocery list: %w", err)
		}
		reply(bot, chatID, fmt.Sprintf("🛒 Added %d items to the shopping list.", n))
		return nil
	}

	entries, err := p.svc.GroceryList(ctx, plan)
	if err != nil {
		return fmt.Errorf("grocery list: %w", err)
	}
	var (
		sb      strings.Builder
		current string
		have    int
	)
	sb.WriteString("🧾 *Groceries for this week*\n")
	for _, e := range entries {
		if e.Category != current {
			current = e.Category
			fmt.Fprintf(&sb, "\n_%s_\n", current)
		}
		if e.Have {
			have++
			fmt.Fprintf(&sb, "✅ ~%s~\n", e.Label())
			continue
		}
		fmt.Fprintf(&sb, "⬜ %s\n", e.Label())
	}
	fmt.Fprintf(&sb, "\n_%d to buy, %d on hand._ Add them with `/grocery add`", len(entries)-have, have)
	reply(bot, chatID, sb.String())
	return nil
}

// HandleCallback handles the Accept and Try again buttons under a draft.
func (p *Planner) HandleCallback(bot telegram.Sender, query *tgbotapi.CallbackQuery, data string) error {
	if query.Message == nil {
		return nil
	}
	ctx, hh, err := scope(context.Background(), p.svc, query.From, query.Message.Chat)
	if err != nil {
		return err
	}
	switch data {
	case planActionAccept:
		return p.accept(ctx, bot, query.Message.Chat.ID)
	case planActionAgain:
		return p.suggest(ctx, bot, query.Message.Chat.ID, hh)
	}
	p.logger.WithField("data", data).Warn("Unknown plan action")
	return nil
}
