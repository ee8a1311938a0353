package broadcast

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
)

type sentMessage struct {
	chatID string
	text   string
	photo  string
}

// fakeTransport records calls and fails sends for configured chats.
type fakeTransport struct {
	sends       []sentMessage
	edits       []string
	deleted     []int64
	failChats   map[string]bool
	failStatus  bool
	failEdits   bool
	nextMsgID   int64
	statusTexts []string
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{failChats: map[string]bool{}}
}

func (f *fakeTransport) SendText(_ context.Context, chatID, text string, _ *SendOptions) (int64, error) {
	if chatID == "admin-chat" {
		if f.failStatus {
			return 0, errors.New("send refused")
		}
		f.nextMsgID++
		f.statusTexts = append(f.statusTexts, text)
		return f.nextMsgID, nil
	}
	if f.failChats[chatID] {
		return 0, errors.New("blocked by recipient")
	}
	f.sends = append(f.sends, sentMessage{chatID: chatID, text: text})
	f.nextMsgID++
	return f.nextMsgID, nil
}

func (f *fakeTransport) SendPhoto(_ context.Context, chatID, fileID, caption string, _ *SendOptions) (int64, error) {
	if f.failChats[chatID] {
		return 0, errors.New("blocked by recipient")
	}
	f.sends = append(f.sends, sentMessage{chatID: chatID, photo: fileID, text: caption})
	f.nextMsgID++
	return f.nextMsgID, nil
}

func (f *fakeTransport) EditText(_ context.Context, _ string, _ int64, text string, _ *SendOptions) error {
	if f.failEdits {
		return errors.New("edit refused")
	}
	f.edits = append(f.edits, text)
	return nil
}

func (f *fakeTransport) DeleteMessage(_ context.Context, _ string, messageID int64) error {
	f.deleted = append(f.deleted, messageID)
	return nil
}

func testRunner(transport Transport) *Runner {
	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewRunner(transport, log, Config{})
}

func registry(n int) []string {
	ids := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		ids = append(ids, fmt.Sprintf("%d", i))
	}
	return ids
}

func TestRunExcludesAdminAndTallies(t *testing.T) {
	transport := newFakeTransport()
	transport.failChats["3"] = true
	transport.failChats["7"] = true

	r := testRunner(transport)
	outcome := r.Run(context.Background(), Run{
		AdminID:    "5",
		StatusChat: "admin-chat",
		Recipients: registry(12),
		Content:    Content{Text: "hello everyone"},
	})

	if outcome.Total != 11 {
		t.Fatalf("expected 11 attempts for 12 users minus admin, got %d", outcome.Total)
	}
	if outcome.Success+outcome.Failed != outcome.Total {
		t.Fatalf("tally mismatch: %+v", outcome)
	}
	if outcome.Failed != 2 {
		t.Fatalf("expected 2 failures, got %d", outcome.Failed)
	}
	for _, s := range transport.sends {
		if s.chatID == "5" {
			t.Fatal("admin must not receive the broadcast")
		}
	}
}

func TestRunProgressEdits(t *testing.T) {
	transport := newFakeTransport()
	r := testRunner(transport)

	r.Run(context.Background(), Run{
		AdminID:    "0",
		StatusChat: "admin-chat",
		Recipients: registry(12),
		Content:    Content{Text: "hi"},
	})

	// 12 attempts: progress edits at 5 and 10, final report edit at the end.
	if len(transport.edits) != 3 {
		t.Fatalf("expected 2 progress edits + 1 report, got %d: %v", len(transport.edits), transport.edits)
	}
	if !strings.Contains(transport.edits[0], "5/12") {
		t.Fatalf("first progress edit should show 5/12, got %q", transport.edits[0])
	}
	if !strings.Contains(transport.edits[2], "Broadcast complete") {
		t.Fatalf("last edit should be the final report, got %q", transport.edits[2])
	}
}

func TestRunAllFailuresStillReports(t *testing.T) {
	transport := newFakeTransport()
	for i := 1; i <= 4; i++ {
		transport.failChats[fmt.Sprintf("%d", i)] = true
	}

	r := testRunner(transport)
	outcome := r.Run(context.Background(), Run{
		AdminID:    "99",
		StatusChat: "admin-chat",
		Recipients: registry(4),
		Content:    Content{Text: "doomed"},
	})

	if outcome.Success != 0 || outcome.Failed != 4 {
		t.Fatalf("expected 0/4, got %+v", outcome)
	}
	report := transport.edits[len(transport.edits)-1]
	if !strings.Contains(report, "Delivered: 0") || !strings.Contains(report, "Failed: 4") {
		t.Fatalf("report should carry the tally, got %q", report)
	}
}

func TestRunStatusFailureProducesPartialReport(t *testing.T) {
	transport := newFakeTransport()
	transport.failStatus = true

	r := testRunner(transport)
	outcome := r.Run(context.Background(), Run{
		AdminID:    "0",
		StatusChat: "admin-chat",
		Recipients: registry(3),
		Content:    Content{Text: "never sent"},
	})

	if outcome.Success != 0 || outcome.Failed != 0 {
		t.Fatalf("aborted run must not deliver, got %+v", outcome)
	}
	if len(transport.sends) != 0 {
		t.Fatalf("no recipient sends expected, got %d", len(transport.sends))
	}
}

func TestRunDeletesSourceMessages(t *testing.T) {
	transport := newFakeTransport()
	r := testRunner(transport)

	r.Run(context.Background(), Run{
		AdminID:              "0",
		StatusChat:           "admin-chat",
		Recipients:           registry(1),
		Content:              Content{Text: "x"},
		SourceMessageID:      41,
		InstructionMessageID: 40,
	})

	if len(transport.deleted) != 2 || transport.deleted[0] != 41 || transport.deleted[1] != 40 {
		t.Fatalf("expected deletions [41 40], got %v", transport.deleted)
	}
}

func TestRunPhotoContent(t *testing.T) {
	transport := newFakeTransport()
	r := testRunner(transport)

	r.Run(context.Background(), Run{
		AdminID:    "0",
		StatusChat: "admin-chat",
		Recipients: registry(2),
		Content:    Content{PhotoID: "file-123", Caption: "look"},
	})

	if len(transport.sends) != 2 {
		t.Fatalf("expected 2 photo sends, got %d", len(transport.sends))
	}
	for _, s := range transport.sends {
		if s.photo != "file-123" || s.text != "look" {
			t.Fatalf("unexpected photo send: %+v", s)
		}
	}
	report := transport.edits[len(transport.edits)-1]
	if !strings.Contains(report, "photo with caption") {
		t.Fatalf("report should describe photo content, got %q", report)
	}
}

func TestContentDescribe(t *testing.T) {
	long := strings.Repeat("a", 80)
	tests := []struct {
		name    string
		content Content
		want    string
	}{
		{"text", Content{Text: "short text"}, "short text"},
		{"long text truncated", Content{Text: long}, strings.Repeat("a", 64) + "…"},
		{"photo with caption", Content{PhotoID: "f", Caption: "c"}, "photo with caption"},
		{"photo", Content{PhotoID: "f"}, "photo"},
		{"empty", Content{}, "message"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.content.Describe(); got != tt.want {
				t.Fatalf("Describe() = %q, want %q", got, tt.want)
			}
		})
	}
}
