package logger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Notifier delivers a message to every admin chat. Implemented by the bot.
type Notifier interface {
	NotifyAdmins(msg string)
}

// AdminHandler is a slog.Handler that mirrors records at or above minLevel
// to the bot's admin chats, after passing them to the wrapped handler.
// Delivery is best-effort; a failed notification never fails the log call.
type AdminHandler struct {
	handler  slog.Handler
	notifier Notifier
	minLevel slog.Level
	attrs    []slog.Attr
	group    string
}

func NewAdminHandler(handler slog.Handler, notifier Notifier, minLevel slog.Level) *AdminHandler {
	return &AdminHandler{
		handler:  handler,
		notifier: notifier,
		minLevel: minLevel,
	}
}

func (h *AdminHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *AdminHandler) Handle(ctx context.Context, record slog.Record) error {
	if err := h.handler.Handle(ctx, record); err != nil {
		return err
	}
	if record.Level < h.minLevel || h.notifier == nil {
		return nil
	}

	var sb strings.Builder
	if h.group != "" {
		sb.WriteString(fmt.Sprintf("%s %s.%s", record.Level.String(), h.group, record.Message))
	} else {
		sb.WriteString(fmt.Sprintf("%s %s", record.Level.String(), record.Message))
	}
	for _, attr := range h.attrs {
		sb.WriteString(fmt.Sprintf("\n%s: %v", attr.Key, attr.Value))
	}
	record.Attrs(func(attr slog.Attr) bool {
		sb.WriteString(fmt.Sprintf("\n%s: %v", attr.Key, attr.Value))
		return true
	})

	h.notifier.NotifyAdmins(sb.String())
	return nil
}

func (h *AdminHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &AdminHandler{
		handler:  h.handler.WithAttrs(attrs),
		notifier: h.notifier,
		minLevel: h.minLevel,
		attrs:    merged,
		group:    h.group,
	}
}

func (h *AdminHandler) WithGroup(name string) slog.Handler {
	group := name
	if h.group != "" {
		group = h.group + "." + name
	}
	return &AdminHandler{
		handler:  h.handler.WithGroup(name),
		notifier: h.notifier,
		minLevel: h.minLevel,
		attrs:    h.attrs,
		group:    group,
	}
}
