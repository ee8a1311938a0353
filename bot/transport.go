package bot

import (
	"context"
	"fmt"
	"strconv"

	tgbotapi "github.com/PaulSonOfLars/gotgbot/v2"

	"shopbot/internal/broadcast"
)

// tgTransport adapts the bot API to broadcast.Transport. Chat ids arrive
// as registry keys (stringified Telegram ids) and are parsed per call.
type tgTransport struct {
	api *tgbotapi.Bot
}

func (t *tgTransport) SendText(_ context.Context, chatID string, text string, opt *broadcast.SendOptions) (int64, error) {
	id, err := parseChatID(chatID)
	if err != nil {
		return 0, err
	}
	var opts *tgbotapi.SendMessageOpts
	if opt != nil {
		opts = &tgbotapi.SendMessageOpts{
			ParseMode: opt.ParseMode,
			Entities:  opt.Entities,
		}
	}
	msg, err := t.api.SendMessage(id, text, opts)
	if err != nil {
		return 0, err
	}
	return msg.MessageId, nil
}

func (t *tgTransport) SendPhoto(_ context.Context, chatID string, fileID, caption string, opt *broadcast.SendOptions) (int64, error) {
	id, err := parseChatID(chatID)
	if err != nil {
		return 0, err
	}
	opts := &tgbotapi.SendPhotoOpts{Caption: caption}
	if opt != nil {
		opts.ParseMode = opt.ParseMode
		opts.CaptionEntities = opt.CaptionEntities
	}
	msg, err := t.api.SendPhoto(id, tgbotapi.InputFileByID(fileID), opts)
	if err != nil {
		return 0, err
	}
	return msg.MessageId, nil
}

func (t *tgTransport) EditText(_ context.Context, chatID string, messageID int64, text string, opt *broadcast.SendOptions) error {
	id, err := parseChatID(chatID)
	if err != nil {
		return err
	}
	opts := &tgbotapi.EditMessageTextOpts{
		ChatId:    id,
		MessageId: messageID,
	}
	if opt != nil {
		opts.ParseMode = opt.ParseMode
		opts.Entities = opt.Entities
	}
	_, _, err = t.api.EditMessageText(text, opts)
	return err
}

func (t *tgTransport) DeleteMessage(_ context.Context, chatID string, messageID int64) error {
	id, err := parseChatID(chatID)
	if err != nil {
		return err
	}
	_, err = t.api.DeleteMessage(id, messageID, nil)
	return err
}

func parseChatID(chatID string) (int64, error) {
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid chat id %q: %w", chatID, err)
	}
	return id, nil
}
