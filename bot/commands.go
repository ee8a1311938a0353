package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"

	"shopbot/internal/access"
)

// start greets the user and, when the command carries a deep-link
// payload (/start CODE), redeems it as an access code.
func (t *TgBot) start(_ *tgbotapi.Bot, ctx *ext.Context) error {
	t.registerUser(ctx)
	chatId := ctx.EffectiveUser.Id

	args := strings.Fields(ctx.EffectiveMessage.Text)
	if len(args) > 1 {
		t.redeemCode(chatId, args[1])
		return nil
	}

	if t.access.IsAuthorized(context.Background(), chatId) || t.requireAdmin(chatId) {
		t.plainResponse(chatId, "Welcome back\\! You have full access\\. Use /help to see what I can do\\.")
		return nil
	}

	t.plainResponse(chatId, "Welcome\\! This bot requires an access code\\.\nRedeem one with `/redeem <code>` or open the invite link you received\\.")
	return nil
}

// redeem consumes a single-use access code: /redeem CODE.
func (t *TgBot) redeem(_ *tgbotapi.Bot, ctx *ext.Context) error {
	t.registerUser(ctx)
	chatId := ctx.EffectiveUser.Id

	args := strings.Fields(ctx.EffectiveMessage.Text)
	if len(args) < 2 {
		t.plainResponse(chatId, "Usage: `/redeem <code>`")
		return nil
	}

	t.redeemCode(chatId, args[1])
	return nil
}

func (t *TgBot) redeemCode(chatId int64, code string) {
	_, reason := t.access.VerifyCode(context.Background(), strings.ToUpper(code), chatId)

	switch reason {
	case access.ReasonAlreadyAuthorized:
		t.plainResponse(chatId, "You already have access\\. No code was used\\.")
	case access.ReasonSuccess:
		t.plainResponse(chatId, "Access granted\\! Use /help to see what I can do\\.")
		t.setUserCommands(chatId, true)
	case access.ReasonExpired:
		t.plainResponse(chatId, "That code has expired\\. Ask an admin for a new one\\.")
	default:
		t.plainResponse(chatId, "Invalid or already used code\\.")
	}
}

// status shows the caller's own standing with the bot.
func (t *TgBot) status(_ *tgbotapi.Bot, ctx *ext.Context) error {
	t.registerUser(ctx)
	chatId := ctx.EffectiveUser.Id

	role := "guest"
	authorized := "no"
	if t.access.IsAuthorized(context.Background(), chatId) {
		role = "user"
		authorized = "yes"
	}
	if t.requireAdmin(chatId) {
		role = "admin"
		authorized = "yes"
	}

	t.plainResponse(chatId, fmt.Sprintf(
		"*Your Status*\nRole: `%s`\nAuthorized: `%s`",
		role, authorized,
	))
	return nil
}

func (t *TgBot) help(_ *tgbotapi.Bot, ctx *ext.Context) error {
	t.registerUser(ctx)
	chatId := ctx.EffectiveUser.Id
	isAdmin := t.requireAdmin(chatId)

	var sb strings.Builder
	sb.WriteString("*Available Commands*\n\n")

	sb.WriteString("`/start` \\- Start the bot, redeem a deep\\-link code\n")
	sb.WriteString("`/redeem <code>` \\- Redeem an access code\n")
	sb.WriteString("`/shop` \\- Browse the catalog\n")
	sb.WriteString("`/status` \\- Show your access status\n")
	sb.WriteString("`/help` \\- Show this help\n")

	if isAdmin {
		sb.WriteString("\n*Admin Commands:*\n")
		sb.WriteString("`/admin` \\- Open the admin menu\n")
		sb.WriteString("`/gencode` \\- Generate an access code\n")
		sb.WriteString("`/codes` \\- List active access codes\n")
		sb.WriteString("`/users` \\- Show registered users\n")
		sb.WriteString("`/stats` \\- Show view statistics\n")
		sb.WriteString("`/resetstats` \\- Reset view statistics\n")
		sb.WriteString("`/cleanstats` \\- Prune stats for removed catalog items\n")
		sb.WriteString("`/broadcast` \\- Send a message to all users\n")
	}

	t.plainResponse(chatId, sb.String())
	return nil
}
