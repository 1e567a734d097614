package handlers

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/hearth/internal/models"
	"github.com/Kerhoff/hearth/internal/service"
	"github.com/Kerhoff/hearth/internal/telegram"
)

var quantityRegex = regexp.MustCompile(`^x(\d+(?:\.\d+)?)$`)

func itemLabel(it *models.ShoppingItem) string {
	label := it.Name
	if it.Quantity != nil && *it.Quantity != 1 {
		label += " (" + strconv.FormatFloat(*it.Quantity, 'f', -1, 64)
		if it.Unit != "" {
			label += " " + it.Unit
		}
		label += ")"
	}
	return label
}

// ---------------------------------------------------------------------------
// BuyAddHandler – /buy <item> [x quantity]
// ---------------------------------------------------------------------------

// BuyAddHandler handles the /buy command to add an item to the shopping list.
// An optional quantity suffix like "x2" can be appended at the end.
type BuyAddHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewBuyAddHandler creates a new BuyAddHandler.
func NewBuyAddHandler(svc *service.Service, logger *logrus.Logger) *BuyAddHandler {
	return &BuyAddHandler{svc: svc, logger: logger}
}

// Handle processes the /buy command.
func (h *BuyAddHandler) Handle(bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	if len(args) == 0 {
		reply(bot, message.Chat.ID,
			"❌ Please provide an item name.\n\n"+
				"*Usage:*\n"+
				"`/buy Milk x2`\n"+
				"`/buy Whole wheat bread`")
		return nil
	}

	// Parse optional quantity suffix (e.g. "x2", "x12")
	var quantity *float64
	name := strings.Join(args, " ")
	if m := quantityRegex.FindStringSubmatch(args[len(args)-1]); m != nil && len(args) > 1 {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			quantity = &v
			name = strings.Join(args[:len(args)-1], " ")
		}
	}

	ctx, hh, err := scope(context.Background(), h.svc, message.From, message.Chat)
	if err != nil {
		return err
	}
	user := models.UserFromContext(ctx)

	item, err := h.svc.AddShoppingItem(ctx, &models.ShoppingItem{
		HouseholdID: hh.ID,
		Name:        name,
		Quantity:    quantity,
		AddedByID:   &user.ID,
	})
	if err != nil {
		return fmt.Errorf("add shopping item: %w", err)
	}

	reply(bot, message.Chat.ID, fmt.Sprintf("🛒 *Added to shopping list!*\n\n⬜ *#%d* %s _(%s)_", item.ID, itemLabel(item), item.Category))

	h.logger.WithFields(logrus.Fields{
		"chat_id": message.Chat.ID,
		"user_id": message.From.ID,
		"item_id": item.ID,
	}).Info("Item added to shopping list")

	return nil
}

// ---------------------------------------------------------------------------
// ShopListHandler – /shop
// ---------------------------------------------------------------------------

// ShopListHandler shows the shopping list grouped by aisle, checked items
// last.
type ShopListHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewShopListHandler creates a new ShopListHandler.
func NewShopListHandler(svc *service.Service, logger *logrus.Logger) *ShopListHandler {
	return &ShopListHandler{svc: svc, logger: logger}
}

// Handle processes the /shop command.
func (h *ShopListHandler) Handle(bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	ctx, hh, err := scope(context.Background(), h.svc, message.From, message.Chat)
	if err != nil {
		return err
	}

	items, err := h.svc.ShoppingList(ctx, hh.ID, false)
	if err != nil {
		return fmt.Errorf("list shopping items: %w", err)
	}
	if len(items) == 0 {
		reply(bot, message.Chat.ID, "🛒 *Shopping list is empty!*\n\nAdd items with `/buy <item>`")
		return nil
	}

	var (
		order    []string
		byAisle  = map[string][]*models.ShoppingItem{}
		checked  []*models.ShoppingItem
		category string
	)
	for _, it := range items {
		if it.Checked {
			checked = append(checked, it)
			continue
		}
		category = it.Category
		if category == "" {
			category = "Other"
		}
		if _, seen := byAisle[category]; !seen {
			order = append(order, category)
		}
		byAisle[category] = append(byAisle[category], it)
	}

	var sb strings.Builder
	sb.WriteString("🛒 *Shopping List*\n")
	for _, cat := range order {
		fmt.Fprintf(&sb, "\n_%s_\n", cat)
		for _, it := range byAisle[cat] {
			fmt.Fprintf(&sb, "⬜ *#%d* %s\n", it.ID, itemLabel(it))
		}
	}
	if len(checked) > 0 {
		sb.WriteString("\n")
		for _, it := range checked {
			fmt.Fprintf(&sb, "✅ ~%s~\n", itemLabel(it))
		}
	}

	fmt.Fprintf(&sb, "\n_%d remaining, %d checked_", len(items)-len(checked), len(checked))
	if len(checked) > 0 {
		sb.WriteString("\n\n_Use_ `/shopclear` _to remove checked items_")
	}
	reply(bot, message.Chat.ID, sb.String())

	h.logger.WithFields(logrus.Fields{
		"chat_id": message.Chat.ID,
		"total":   len(items),
	}).Info("Listed shopping list")

	return nil
}

// ---------------------------------------------------------------------------
// BoughtHandler – /bought <id>
// ---------------------------------------------------------------------------

// BoughtHandler toggles an item's checked state.
type BoughtHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewBoughtHandler creates a new BoughtHandler.
func NewBoughtHandler(svc *service.Service, logger *logrus.Logger) *BoughtHandler {
	return &BoughtHandler{svc: svc, logger: logger}
}

// Handle processes the /bought command.
func (h *BoughtHandler) Handle(bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	if len(args) == 0 {
		reply(bot, message.Chat.ID, "❌ Please provide an item ID.\nUsage: `/bought 3`")
		return nil
	}
	itemID, ok := parseID(args[0])
	if !ok {
		reply(bot, message.Chat.ID, "❌ Invalid ID. Please provide a numeric item ID.")
		return nil
	}

	ctx, hh, err := scope(context.Background(), h.svc, message.From, message.Chat)
	if err != nil {
		return err
	}

	existing, err := h.svc.Shopping.GetByID(ctx, itemID)
	if err != nil {
		return fmt.Errorf("get shopping item: %w", err)
	}
	if existing == nil || existing.HouseholdID != hh.ID {
		reply(bot, message.Chat.ID, fmt.Sprintf("❌ Item *#%d* not found.", itemID))
		return nil
	}

	item, err := h.svc.ToggleShoppingItem(ctx, itemID)
	if err != nil {
		return fmt.Errorf("toggle shopping item: %w", err)
	}
	if item.Checked {
		reply(bot, message.Chat.ID, fmt.Sprintf("✅ %s checked off!", item.Name))
	} else {
		reply(bot, message.Chat.ID, fmt.Sprintf("⬜ %s is back on the list.", item.Name))
	}

	h.logger.WithFields(logrus.Fields{
		"chat_id": message.Chat.ID,
		"user_id": message.From.ID,
		"item_id": itemID,
	}).Info("Item toggled")

	return nil
}

// ---------------------------------------------------------------------------
// ShopClearHandler – /shopclear
// ---------------------------------------------------------------------------

// ShopClearHandler removes checked items from the shopping list.
type ShopClearHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewShopClearHandler creates a new ShopClearHandler.
func NewShopClearHandler(svc *service.Service, logger *logrus.Logger) *ShopClearHandler {
	return &ShopClearHandler{svc: svc, logger: logger}
}

// Handle processes the /shopclear command.
func (h *ShopClearHandler) Handle(bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	ctx, hh, err := scope(context.Background(), h.svc, message.From, message.Chat)
	if err != nil {
		return err
	}

	n, err := h.svc.ClearCheckedShopping(ctx, hh.ID)
	if err != nil {
		return fmt.Errorf("clear checked items: %w", err)
	}
	reply(bot, message.Chat.ID, fmt.Sprintf("🧹 Removed %d checked items from the shopping list.", n))
	return nil
}
