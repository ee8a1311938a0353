package bot

import (
	"context"
	"sort"
	"strconv"
	"strings"

	tgbotapi "github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"

	"shopbot/entity"
	"shopbot/lib/sl"
)

// catalogMenu is the snapshot behind the shop keyboards. Callback data
// carries indexes into it (Telegram caps callback data at 64 bytes, so
// names cannot ride along). Stale indexes after a catalog refresh
// resolve to a "menu expired" answer.
type catalogMenu struct {
	categories []string
	catalog    entity.Catalog
}

// shop shows the catalog to an authorized user, one button per category.
// Browsing is what feeds the view counters.
func (t *TgBot) shop(_ *tgbotapi.Bot, ctx *ext.Context) error {
	t.registerUser(ctx)
	chatId := ctx.EffectiveUser.Id

	if !t.access.IsAuthorized(context.Background(), chatId) && !t.requireAdmin(chatId) {
		t.plainResponse(chatId, "This bot requires an access code\\. Redeem one with `/redeem <code>`\\.")
		return nil
	}

	catalog, err := t.catalog.Categories(context.Background())
	if err != nil {
		t.reportError(chatId, "/shop", err)
		return nil
	}
	if len(catalog) == 0 {
		t.plainResponse(chatId, "The catalog is empty right now\\. Check back later\\.")
		return nil
	}

	categories := make([]string, 0, len(catalog))
	for name := range catalog {
		categories = append(categories, name)
	}
	sort.Strings(categories)

	t.mu.Lock()
	t.menu = &catalogMenu{categories: categories, catalog: catalog}
	t.mu.Unlock()

	t.sendWithKeyboard(chatId, "*Catalog*", buildCategoryKeyboard(categories))
	return nil
}

// onShopCallback handles category and product button presses:
// sh:c:<i> opens a category, sh:p:<i>:<j> views a product. Each press
// bumps the corresponding view counter.
func (t *TgBot) onShopCallback(_ *tgbotapi.Bot, ctx *ext.Context) error {
	cq := ctx.CallbackQuery
	chatId := cq.From.Id

	if !t.access.IsAuthorized(context.Background(), chatId) && !t.requireAdmin(chatId) {
		_, _ = cq.Answer(t.api, &tgbotapi.AnswerCallbackQueryOpts{Text: "Not authorized", ShowAlert: true})
		return nil
	}

	t.mu.Lock()
	menu := t.menu
	t.mu.Unlock()
	if menu == nil {
		_, _ = cq.Answer(t.api, &tgbotapi.AnswerCallbackQueryOpts{Text: "Menu expired, send /shop again"})
		return nil
	}

	data := strings.TrimPrefix(cq.Data, cbShop)
	switch {
	case strings.HasPrefix(data, "c:"):
		i, err := strconv.Atoi(strings.TrimPrefix(data, "c:"))
		if err != nil || i < 0 || i >= len(menu.categories) {
			_, _ = cq.Answer(t.api, &tgbotapi.AnswerCallbackQueryOpts{Text: "Menu expired, send /shop again"})
			return nil
		}
		category := menu.categories[i]

		if err := t.stats.IncrementCategory(context.Background(), category); err != nil {
			t.log.Warn("counting category view", sl.Err(err))
		}

		products := menu.catalog[category]
		if len(products) == 0 {
			_, _ = cq.Answer(t.api, &tgbotapi.AnswerCallbackQueryOpts{Text: "Nothing in this category yet"})
			return nil
		}
		t.sendWithKeyboard(chatId, "*"+Sanitize(category)+"*", buildProductKeyboard(i, products))
		_, _ = cq.Answer(t.api, nil)

	case strings.HasPrefix(data, "p:"):
		parts := strings.SplitN(strings.TrimPrefix(data, "p:"), ":", 2)
		if len(parts) != 2 {
			_, _ = cq.Answer(t.api, &tgbotapi.AnswerCallbackQueryOpts{Text: "Menu expired, send /shop again"})
			return nil
		}
		i, errI := strconv.Atoi(parts[0])
		j, errJ := strconv.Atoi(parts[1])
		if errI != nil || errJ != nil || i < 0 || i >= len(menu.categories) {
			_, _ = cq.Answer(t.api, &tgbotapi.AnswerCallbackQueryOpts{Text: "Menu expired, send /shop again"})
			return nil
		}
		category := menu.categories[i]
		products := menu.catalog[category]
		if j < 0 || j >= len(products) {
			_, _ = cq.Answer(t.api, &tgbotapi.AnswerCallbackQueryOpts{Text: "Menu expired, send /shop again"})
			return nil
		}
		product := products[j].Name

		if err := t.stats.IncrementProduct(context.Background(), category, product); err != nil {
			t.log.Warn("counting product view", sl.Err(err))
		}

		t.plainResponse(chatId, "*"+Sanitize(product)+"*\nCategory: "+Sanitize(category))
		_, _ = cq.Answer(t.api, nil)

	default:
		_, _ = cq.Answer(t.api, &tgbotapi.AnswerCallbackQueryOpts{Text: "Unknown action"})
	}
	return nil
}

func buildCategoryKeyboard(categories []string) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(categories))
	for i, name := range categories {
		rows = append(rows, []tgbotapi.InlineKeyboardButton{
			{Text: name, CallbackData: cbShop + "c:" + strconv.Itoa(i)},
		})
	}
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func buildProductKeyboard(categoryIdx int, products []entity.Product) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(products))
	for j, p := range products {
		rows = append(rows, []tgbotapi.InlineKeyboardButton{
			{Text: p.Name, CallbackData: cbShop + "p:" + strconv.Itoa(categoryIdx) + ":" + strconv.Itoa(j)},
		})
	}
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}
