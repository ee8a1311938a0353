package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"

	"shopbot/entity"
	"shopbot/lib/clock"
)

// adminCmd opens the admin menu with inline action buttons.
func (t *TgBot) adminCmd(_ *tgbotapi.Bot, ctx *ext.Context) error {
	t.registerUser(ctx)
	chatId := ctx.EffectiveUser.Id
	if !t.requireAdmin(chatId) {
		t.plainResponse(chatId, "Admin access required\\.")
		return nil
	}

	t.sendWithKeyboard(chatId, "*Admin Menu*", buildAdminKeyboard())
	return nil
}

// genCode generates a single-use access code and returns it together
// with a Telegram deep link for one-tap redemption.
func (t *TgBot) genCode(_ *tgbotapi.Bot, ctx *ext.Context) error {
	t.registerUser(ctx)
	chatId := ctx.EffectiveUser.Id
	if !t.requireAdmin(chatId) {
		t.plainResponse(chatId, "Admin access required\\.")
		return nil
	}

	t.generateCode(chatId)
	return nil
}

func (t *TgBot) generateCode(chatId int64) {
	code, err := t.access.GenerateCode(context.Background(), chatId)
	if err != nil {
		t.reportError(chatId, "/gencode", err)
		return
	}

	deepLink := fmt.Sprintf("https://t.me/%s?start=%s", t.api.Username, code.Code)
	t.plainResponse(chatId, fmt.Sprintf(
		"Access code: `%s`\nValid until: `%s`\nDeep link: %s",
		Sanitize(code.Code),
		Sanitize(clock.Stamp(code.Expiration)),
		Sanitize(deepLink),
	))
}

// listCodes shows every unused, unexpired access code.
func (t *TgBot) listCodes(_ *tgbotapi.Bot, ctx *ext.Context) error {
	t.registerUser(ctx)
	chatId := ctx.EffectiveUser.Id
	if !t.requireAdmin(chatId) {
		t.plainResponse(chatId, "Admin access required\\.")
		return nil
	}

	t.showCodes(chatId)
	return nil
}

func (t *TgBot) showCodes(chatId int64) {
	codes, err := t.access.ActiveCodes(context.Background())
	if err != nil {
		t.reportError(chatId, "/codes", err)
		return
	}

	if len(codes) == 0 {
		t.plainResponse(chatId, "No active codes\\. Use /gencode to create one\\.")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("*Active Codes* \\(%d\\)\n", len(codes)))
	for _, c := range codes {
		sb.WriteString(fmt.Sprintf("`%s` \\- until %s\n",
			Sanitize(c.Code),
			Sanitize(clock.Stamp(c.Expiration)),
		))
	}
	t.plainResponse(chatId, sb.String())
}

// usersCmd shows the registered user count and the most recently seen users.
func (t *TgBot) usersCmd(_ *tgbotapi.Bot, ctx *ext.Context) error {
	t.registerUser(ctx)
	chatId := ctx.EffectiveUser.Id
	if !t.requireAdmin(chatId) {
		t.plainResponse(chatId, "Admin access required\\.")
		return nil
	}

	t.showUsers(chatId)
	return nil
}

func (t *TgBot) showUsers(chatId int64) {
	count := t.users.Count(context.Background())
	if count == 0 {
		t.plainResponse(chatId, "No registered users yet\\.")
		return
	}

	recent := t.users.Recent(context.Background(), t.config.RecentUsersShown)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("*Users* \\(%d total\\)\n\nLast seen:\n", count))
	for _, e := range recent {
		sb.WriteString(fmt.Sprintf("  %s \\| %s\n",
			Sanitize(entity.DisplayName(e.ID, e.Record)),
			Sanitize(e.Record.LastSeen),
		))
	}

	for _, part := range splitMessage(sb.String(), maxTelegramMessageLen) {
		t.plainResponse(chatId, part)
	}
}

// statsCmd renders the view-count snapshot.
func (t *TgBot) statsCmd(_ *tgbotapi.Bot, ctx *ext.Context) error {
	t.registerUser(ctx)
	chatId := ctx.EffectiveUser.Id
	if !t.requireAdmin(chatId) {
		t.plainResponse(chatId, "Admin access required\\.")
		return nil
	}

	t.showStats(chatId)
	return nil
}

func (t *TgBot) showStats(chatId int64) {
	doc, err := t.stats.Snapshot(context.Background())
	if err != nil {
		t.reportError(chatId, "/stats", err)
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("*View Statistics*\nTotal views: `%d`\n", doc.TotalViews))
	if doc.LastReset != "" {
		sb.WriteString(fmt.Sprintf("Last reset: `%s`\n", Sanitize(doc.LastReset)))
	}

	for _, category := range sortedKeys(doc.CategoryViews) {
		sb.WriteString(fmt.Sprintf("\n*%s*: %d\n", Sanitize(category), doc.CategoryViews[category]))
		products := doc.ProductViews[category]
		for _, product := range sortedKeys(products) {
			sb.WriteString(fmt.Sprintf("  %s: %d\n", Sanitize(product), products[product]))
		}
	}

	for _, part := range splitMessage(sb.String(), maxTelegramMessageLen) {
		t.plainResponse(chatId, part)
	}
}

// resetStats zeroes all view counters.
func (t *TgBot) resetStats(_ *tgbotapi.Bot, ctx *ext.Context) error {
	t.registerUser(ctx)
	chatId := ctx.EffectiveUser.Id
	if !t.requireAdmin(chatId) {
		t.plainResponse(chatId, "Admin access required\\.")
		return nil
	}

	if err := t.stats.Reset(context.Background()); err != nil {
		t.reportError(chatId, "/resetstats", err)
		return nil
	}
	t.plainResponse(chatId, "Statistics reset\\.")
	return nil
}

// cleanStats prunes counters for categories and products no longer in
// the catalog.
func (t *TgBot) cleanStats(_ *tgbotapi.Bot, ctx *ext.Context) error {
	t.registerUser(ctx)
	chatId := ctx.EffectiveUser.Id
	if !t.requireAdmin(chatId) {
		t.plainResponse(chatId, "Admin access required\\.")
		return nil
	}

	catalog, err := t.catalog.Categories(context.Background())
	if err != nil {
		t.reportError(chatId, "/cleanstats", err)
		return nil
	}

	if err := t.stats.Clean(context.Background(), catalog); err != nil {
		t.reportError(chatId, "/cleanstats", err)
		return nil
	}
	t.plainResponse(chatId, "Statistics cleaned against the current catalog\\.")
	return nil
}
