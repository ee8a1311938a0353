package bot

import (
	"context"
	"sort"
	"strconv"
	"strings"

	tgbotapi "github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"

	"shopbot/internal/broadcast"
	"shopbot/lib/sl"
)

// broadcastCmd starts collecting broadcast content from the admin.
func (t *TgBot) broadcastCmd(_ *tgbotapi.Bot, ctx *ext.Context) error {
	t.registerUser(ctx)
	chatId := ctx.EffectiveUser.Id
	if !t.requireAdmin(chatId) {
		t.plainResponse(chatId, "Admin access required\\.")
		return nil
	}

	t.beginBroadcast(chatId)
	return nil
}

// beginBroadcast posts the instruction message and marks the admin's
// chat as collecting: the admin's next non-command message becomes the
// broadcast content.
func (t *TgBot) beginBroadcast(chatId int64) {
	msg, err := t.api.SendMessage(chatId,
		"Send the message to broadcast\\. Text or a photo with a caption; formatting is preserved\\.",
		&tgbotapi.SendMessageOpts{
			ParseMode:   "MarkdownV2",
			ReplyMarkup: buildCancelKeyboard(),
		})
	if err != nil {
		t.log.Warn("sending broadcast instruction", sl.Err(err))
		return
	}

	t.mu.Lock()
	t.awaiting[chatId] = msg.MessageId
	t.mu.Unlock()
}

// onBroadcastContent receives every non-command message. It registers
// the sender, and when the sender is an admin mid-collection, turns the
// message into a broadcast run.
func (t *TgBot) onBroadcastContent(_ *tgbotapi.Bot, ctx *ext.Context) error {
	t.registerUser(ctx)
	msg := ctx.EffectiveMessage
	if msg == nil || ctx.EffectiveUser == nil {
		return nil
	}
	chatId := ctx.EffectiveUser.Id

	t.mu.Lock()
	instructionId, collecting := t.awaiting[chatId]
	if collecting {
		delete(t.awaiting, chatId)
	}
	t.mu.Unlock()

	if !collecting || !t.requireAdmin(chatId) {
		return nil
	}

	if strings.HasPrefix(msg.Text, "/") {
		// Commands never count as content; keep collecting.
		t.mu.Lock()
		t.awaiting[chatId] = instructionId
		t.mu.Unlock()
		return nil
	}

	content, ok := contentFrom(msg)
	if !ok {
		// Unsupported message type; keep collecting.
		t.mu.Lock()
		t.awaiting[chatId] = instructionId
		t.mu.Unlock()
		t.plainResponse(chatId, "I can only broadcast text or a photo\\. Send again or press Cancel\\.")
		return nil
	}

	adminKey := strconv.FormatInt(chatId, 10)
	run := broadcast.Run{
		AdminID:              adminKey,
		StatusChat:           adminKey,
		Content:              content,
		SourceMessageID:      msg.MessageId,
		InstructionMessageID: instructionId,
	}

	registry, err := t.users.All(context.Background())
	if err != nil {
		t.log.Error("loading broadcast recipients", sl.Err(err))
		t.runner.ReportFailure(context.Background(), run)
		return nil
	}

	recipients := make([]string, 0, len(registry))
	for id := range registry {
		recipients = append(recipients, id)
	}
	sort.Strings(recipients)
	run.Recipients = recipients

	t.runner.Run(context.Background(), run)
	return nil
}

// contentFrom extracts broadcast content from an admin message: the
// largest photo size with its caption, or plain text. Formatting
// entities ride along unchanged.
func contentFrom(msg *tgbotapi.Message) (broadcast.Content, bool) {
	if len(msg.Photo) > 0 {
		photo := msg.Photo[len(msg.Photo)-1]
		return broadcast.Content{
			PhotoID:         photo.FileId,
			Caption:         msg.Caption,
			CaptionEntities: msg.CaptionEntities,
		}, true
	}
	if msg.Text != "" {
		return broadcast.Content{
			Text:     msg.Text,
			Entities: msg.Entities,
		}, true
	}
	return broadcast.Content{}, false
}
