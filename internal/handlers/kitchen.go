package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/hearth/internal/ingredient"
	"github.com/Kerhoff/hearth/internal/intent"
	"github.com/Kerhoff/hearth/internal/models"
	"github.com/Kerhoff/hearth/internal/recipe"
	"github.com/Kerhoff/hearth/internal/service"
	"github.com/Kerhoff/hearth/internal/telegram"
)

const defaultExpiringDays = 3

func amount(qty float64, unit string) string {
	s := strconv.FormatFloat(qty, 'f', -1, 64)
	if unit != "" {
		s += " " + unit
	}
	return s
}

func inventoryLine(it *models.InventoryItem) string {
	line := fmt.Sprintf("• %s (%s)", it.Name, amount(it.Quantity, it.Unit))
	if it.ExpirationDate != nil {
		line += " ⏳ " + it.ExpirationDate.String()
	}
	return line
}

// ---------------------------------------------------------------------------
// HaveHandler – /have <line>
// ---------------------------------------------------------------------------

// HaveHandler records food on hand from a line like "2 lbs chicken".
type HaveHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewHaveHandler creates a new HaveHandler.
func NewHaveHandler(svc *service.Service, logger *logrus.Logger) *HaveHandler {
	return &HaveHandler{svc: svc, logger: logger}
}

// Handle processes the /have command.
func (h *HaveHandler) Handle(bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	if len(args) == 0 {
		reply(bot, message.Chat.ID, "❌ What do you have?\nUsage: `/have 2 lbs chicken`")
		return nil
	}

	ctx, hh, err := scope(context.Background(), h.svc, message.From, message.Chat)
	if err != nil {
		return err
	}

	ing := ingredient.ParseLine(strings.Join(args, " "))
	item := &models.InventoryItem{HouseholdID: hh.ID, Name: ing.Name, Category: ing.Category}
	if ing.Quantity != nil {
		item.Quantity = *ing.Quantity
	}
	if ing.Unit != nil {
		item.Unit = *ing.Unit
	}

	created, err := h.svc.AddInventoryItem(ctx, item)
	if err != nil {
		return fmt.Errorf("add inventory item: %w", err)
	}
	reply(bot, message.Chat.ID, fmt.Sprintf("🧺 Added %s of *%s* to the %s.",
		amount(created.Quantity, created.Unit), created.Name, strings.ToLower(string(created.Location))))
	return nil
}

// ---------------------------------------------------------------------------
// UseHandler – /use <item> [amount]
// ---------------------------------------------------------------------------

// UseHandler consumes an inventory item found by name.
type UseHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewUseHandler creates a new UseHandler.
func NewUseHandler(svc *service.Service, logger *logrus.Logger) *UseHandler {
	return &UseHandler{svc: svc, logger: logger}
}

// Handle processes the /use command. Without an amount the whole item is
// used up.
func (h *UseHandler) Handle(bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	if len(args) == 0 {
		reply(bot, message.Chat.ID, "❌ What did you use?\nUsage: `/use eggs 2`")
		return nil
	}

	var used float64
	name := strings.Join(args, " ")
	if len(args) > 1 {
		if v, ok := ingredient.ParseQuantity(args[len(args)-1]); ok {
			used = v
			name = strings.Join(args[:len(args)-1], " ")
		}
	}

	ctx, hh, err := scope(context.Background(), h.svc, message.From, message.Chat)
	if err != nil {
		return err
	}

	item, err := h.svc.FindInventoryItem(ctx, hh.ID, name)
	if err != nil {
		return fmt.Errorf("find inventory item: %w", err)
	}
	if item == nil {
		reply(bot, message.Chat.ID, fmt.Sprintf("🔍 No %q in the pantry.", name))
		return nil
	}
	if used == 0 {
		used = item.Quantity
	}

	left, err := h.svc.UseItem(ctx, item.ID, used)
	if errors.Is(err, service.ErrInvalidAmount) {
		reply(bot, message.Chat.ID, "❌ The amount must be positive.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("use inventory item: %w", err)
	}
	if left == nil {
		reply(bot, message.Chat.ID, fmt.Sprintf("🍽 Used up the %s.", item.Name))
		return nil
	}
	reply(bot, message.Chat.ID, fmt.Sprintf("🍽 Used %s of %s, %s left.",
		amount(used, item.Unit), item.Name, amount(left.Quantity, left.Unit)))
	return nil
}

// ---------------------------------------------------------------------------
// PantryHandler – /pantry
// ---------------------------------------------------------------------------

// PantryHandler lists inventory by storage location.
type PantryHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewPantryHandler creates a new PantryHandler.
func NewPantryHandler(svc *service.Service, logger *logrus.Logger) *PantryHandler {
	return &PantryHandler{svc: svc, logger: logger}
}

// Handle processes the /pantry command.
func (h *PantryHandler) Handle(bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	ctx, hh, err := scope(context.Background(), h.svc, message.From, message.Chat)
	if err != nil {
		return err
	}
	items, err := h.svc.InventoryList(ctx, hh.ID)
	if err != nil {
		return fmt.Errorf("list inventory: %w", err)
	}
	if len(items) == 0 {
		reply(bot, message.Chat.ID, "🧺 Nothing on hand yet. Add food with `/have <item>`")
		return nil
	}

	byPlace := map[models.StorageLocation][]*models.InventoryItem{}
	for _, it := range items {
		byPlace[it.Location] = append(byPlace[it.Location], it)
	}
	var sb strings.Builder
	for _, place := range []models.StorageLocation{models.StorageRefrigerator, models.StorageFreezer, models.StoragePantry} {
		if len(byPlace[place]) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "*%s*\n", place)
		for _, it := range byPlace[place] {
			sb.WriteString(inventoryLine(it) + "\n")
		}
		sb.WriteString("\n")
	}
	reply(bot, message.Chat.ID, strings.TrimSpace(sb.String()))
	return nil
}

// ---------------------------------------------------------------------------
// ExpiringHandler – /expiring [days]
// ---------------------------------------------------------------------------

// ExpiringHandler lists what should be used up soon.
type ExpiringHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewExpiringHandler creates a new ExpiringHandler.
func NewExpiringHandler(svc *service.Service, logger *logrus.Logger) *ExpiringHandler {
	return &ExpiringHandler{svc: svc, logger: logger}
}

// Handle processes the /expiring command.
func (h *ExpiringHandler) Handle(bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	days := defaultExpiringDays
	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v < 0 {
			reply(bot, message.Chat.ID, "❌ Usage: `/expiring 5`")
			return nil
		}
		days = v
	}

	ctx, hh, err := scope(context.Background(), h.svc, message.From, message.Chat)
	if err != nil {
		return err
	}
	items, err := h.svc.ExpiringSoon(ctx, hh.ID, days)
	if err != nil {
		return fmt.Errorf("expiring items: %w", err)
	}
	if len(items) == 0 {
		reply(bot, message.Chat.ID, fmt.Sprintf("✅ Nothing expires in the next %d days.", days))
		return nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "⏳ *Use within %d days*\n\n", days)
	for _, it := range items {
		sb.WriteString(inventoryLine(it) + "\n")
	}
	sb.WriteString("\n_/plan favors recipes that use these._")
	reply(bot, message.Chat.ID, sb.String())
	return nil
}

// ---------------------------------------------------------------------------
// RecipeHandler – /recipe <url | text>
// ---------------------------------------------------------------------------

// RecipeHandler saves a recipe clipped from a web page or pasted as text.
type RecipeHandler struct {
	svc    *service.Service
	parser *intent.Parser
	logger *logrus.Logger
}

// NewRecipeHandler creates a new RecipeHandler.
func NewRecipeHandler(svc *service.Service, parser *intent.Parser, logger *logrus.Logger) *RecipeHandler {
	return &RecipeHandler{svc: svc, parser: parser, logger: logger}
}

// Handle processes the /recipe command. Pasted text keeps its line breaks,
// so it is read from the raw arguments.
func (h *RecipeHandler) Handle(bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	raw := strings.TrimSpace(message.CommandArguments())
	if raw == "" {
		reply(bot, message.Chat.ID, "❌ Send a link or paste a recipe.\nUsage: `/recipe https://example.com/pancakes`")
		return nil
	}

	ctx, hh, err := scope(context.Background(), h.svc, message.From, message.Chat)
	if err != nil {
		return err
	}

	var saved *models.Recipe
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		saved, err = h.svc.ImportRecipe(ctx, hh.ID, strings.Fields(raw)[0])
		switch {
		case errors.Is(err, service.ErrImportDisabled):
			reply(bot, message.Chat.ID, "⚠️ Importing from links is turned off. Paste the recipe text instead.")
			return nil
		case errors.Is(err, recipe.ErrNoRecipe):
			reply(bot, message.Chat.ID, "🔍 I couldn't find a recipe on that page.")
			return nil
		case err != nil:
			return fmt.Errorf("import recipe: %w", err)
		}
	} else {
		r := h.parser.ParseRecipe(ctx, raw)
		r.HouseholdID = hh.ID
		saved, err = h.svc.CreateRecipe(ctx, r)
		if err != nil {
			return fmt.Errorf("create recipe: %w", err)
		}
	}

	reply(bot, message.Chat.ID, fmt.Sprintf("📖 Saved *%s* (%s, %d ingredients)", saved.Name, saved.Category, len(saved.Ingredients)))

	h.logger.WithFields(logrus.Fields{
		"chat_id":   message.Chat.ID,
		"recipe_id": saved.ID,
	}).Info("Recipe saved")
	return nil
}

// ---------------------------------------------------------------------------
// RecipesHandler – /recipes
// ---------------------------------------------------------------------------

// RecipesHandler lists the recipe catalog with how much of each is on hand.
type RecipesHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewRecipesHandler creates a new RecipesHandler.
func NewRecipesHandler(svc *service.Service, logger *logrus.Logger) *RecipesHandler {
	return &RecipesHandler{svc: svc, logger: logger}
}

// Handle processes the /recipes command.
func (h *RecipesHandler) Handle(bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	ctx, hh, err := scope(context.Background(), h.svc, message.From, message.Chat)
	if err != nil {
		return err
	}
	recipes, err := h.svc.ListRecipes(ctx, hh.ID)
	if err != nil {
		return fmt.Errorf("list recipes: %w", err)
	}
	if len(recipes) == 0 {
		reply(bot, message.Chat.ID, "📖 No recipes yet. Save one with `/recipe <link or text>`")
		return nil
	}

	var sb strings.Builder
	sb.WriteString("📖 *Recipes*\n\n")
	for _, r := range recipes {
		mc, err := h.svc.MatchCount(ctx, hh.ID, r.Ingredients)
		if err != nil {
			return fmt.Errorf("match ingredients: %w", err)
		}
		fmt.Fprintf(&sb, "• %s", r.Name)
		if r.Favorite {
			sb.WriteString(" ⭐")
		}
		fmt.Fprintf(&sb, " _%d/%d on hand_\n", mc.Have, mc.Total)
	}
	reply(bot, message.Chat.ID, sb.String())
	return nil
}
