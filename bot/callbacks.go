package bot

import (
	"strings"

	tgbotapi "github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"
)

// Callback data prefixes for inline keyboard buttons.
// Telegram limits callback data to 64 bytes, so prefixes are kept short.
// Format: prefix + action (e.g., "ad:gencode", "bc:cancel").
const (
	cbAdmin     = "ad:" // ad:gencode, ad:codes, ad:users, ad:stats, ad:broadcast
	cbBroadcast = "bc:" // bc:cancel
	cbShop      = "sh:" // sh:c:<category idx>, sh:p:<category idx>:<product idx>
)

// buildAdminKeyboard creates the admin menu with one button per action.
func buildAdminKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.InlineKeyboardMarkup{
		InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{
			{
				{Text: "Generate code", CallbackData: cbAdmin + "gencode"},
				{Text: "Active codes", CallbackData: cbAdmin + "codes"},
			},
			{
				{Text: "Users", CallbackData: cbAdmin + "users"},
				{Text: "Statistics", CallbackData: cbAdmin + "stats"},
			},
			{
				{Text: "Broadcast", CallbackData: cbAdmin + "broadcast"},
			},
		},
	}
}

// buildCancelKeyboard creates the single cancel button attached to the
// broadcast instruction message.
func buildCancelKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.InlineKeyboardMarkup{
		InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{
			{
				{Text: "Cancel", CallbackData: cbBroadcast + "cancel"},
			},
		},
	}
}

// onAdminCallback routes admin menu button presses to the corresponding
// command action.
func (t *TgBot) onAdminCallback(_ *tgbotapi.Bot, ctx *ext.Context) error {
	cq := ctx.CallbackQuery
	chatId := cq.From.Id

	if !t.requireAdmin(chatId) {
		_, _ = cq.Answer(t.api, &tgbotapi.AnswerCallbackQueryOpts{Text: "Not authorized", ShowAlert: true})
		return nil
	}

	action := strings.TrimPrefix(cq.Data, cbAdmin)
	switch action {
	case "gencode":
		t.generateCode(chatId)
	case "codes":
		t.showCodes(chatId)
	case "users":
		t.showUsers(chatId)
	case "stats":
		t.showStats(chatId)
	case "broadcast":
		t.beginBroadcast(chatId)
	default:
		_, _ = cq.Answer(t.api, &tgbotapi.AnswerCallbackQueryOpts{Text: "Unknown action"})
		return nil
	}

	_, _ = cq.Answer(t.api, nil)
	return nil
}

// onBroadcastCallback handles the cancel button on the broadcast
// instruction message.
func (t *TgBot) onBroadcastCallback(_ *tgbotapi.Bot, ctx *ext.Context) error {
	cq := ctx.CallbackQuery
	chatId := cq.From.Id

	if !t.requireAdmin(chatId) {
		_, _ = cq.Answer(t.api, &tgbotapi.AnswerCallbackQueryOpts{Text: "Not authorized", ShowAlert: true})
		return nil
	}

	action := strings.TrimPrefix(cq.Data, cbBroadcast)
	if action != "cancel" {
		_, _ = cq.Answer(t.api, &tgbotapi.AnswerCallbackQueryOpts{Text: "Unknown action"})
		return nil
	}

	t.mu.Lock()
	instructionId, collecting := t.awaiting[chatId]
	delete(t.awaiting, chatId)
	t.mu.Unlock()

	if collecting && instructionId != 0 {
		_, _ = t.api.DeleteMessage(chatId, instructionId, nil)
	}

	_, _ = cq.Answer(t.api, &tgbotapi.AnswerCallbackQueryOpts{Text: "Broadcast cancelled"})
	return nil
}
