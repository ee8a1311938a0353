// Package broadcast fans one admin-authored message out to every
// registered user.
//
// Delivery is best-effort and strictly sequential: one recipient's send
// completes before the next begins. A failed send is recorded in the
// outcome tally and never aborts the run. The in-progress status message
// in the admin's chat is edited every few attempts; a failed edit is
// logged and ignored. Whatever happens, the admin ends up with either a
// full delivery report or a partial one.
package broadcast

import (
	"context"
	"strings"

	tgbotapi "github.com/PaulSonOfLars/gotgbot/v2"
)

const previewLength = 64

// Content is the admin-authored message being fanned out: either plain
// text or a photo with an optional caption. Formatting entities captured
// from the source message are forwarded untouched.
type Content struct {
	Text            string
	PhotoID         string
	Caption         string
	Entities        []tgbotapi.MessageEntity
	CaptionEntities []tgbotapi.MessageEntity
}

// IsPhoto reports whether the content delivers as a photo.
func (c Content) IsPhoto() bool {
	return c.PhotoID != ""
}

// Describe renders the content for the delivery report: a text preview,
// "photo with caption", "photo", or a generic "message".
func (c Content) Describe() string {
	switch {
	case c.Text != "":
		return preview(c.Text)
	case c.IsPhoto() && c.Caption != "":
		return "photo with caption"
	case c.IsPhoto():
		return "photo"
	default:
		return "message"
	}
}

func preview(text string) string {
	text = strings.ReplaceAll(text, "\n", " ")
	runes := []rune(text)
	if len(runes) <= previewLength {
		return text
	}
	return string(runes[:previewLength]) + "…"
}

// SendOptions carries optional formatting for a transport call.
type SendOptions struct {
	ParseMode       string
	Entities        []tgbotapi.MessageEntity
	CaptionEntities []tgbotapi.MessageEntity
}

// Transport is the chat-platform capability the runner depends on.
// Implementations report every failure as an error return; none of the
// methods may panic. Chat ids are the registry's stringified user ids.
type Transport interface {
	SendText(ctx context.Context, chatID string, text string, opt *SendOptions) (int64, error)
	SendPhoto(ctx context.Context, chatID string, fileID, caption string, opt *SendOptions) (int64, error)
	EditText(ctx context.Context, chatID string, messageID int64, text string, opt *SendOptions) error
	DeleteMessage(ctx context.Context, chatID string, messageID int64) error
}

// Run describes one broadcast: where status messages go, who receives
// the content, and which source messages to clean up first.
type Run struct {
	AdminID    string
	StatusChat string
	Recipients []string
	Content    Content

	// Cleaned up best-effort before the fan-out; zero means absent.
	SourceMessageID      int64
	InstructionMessageID int64
}

// Outcome is the per-run tally. Success+Failed always equals Total, the
// number of attempted recipients (registry size minus the admin).
type Outcome struct {
	Success int
	Failed  int
	Total   int
}
