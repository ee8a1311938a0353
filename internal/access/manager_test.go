package access

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"shopbot/entity"
	"shopbot/internal/storage"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
	return New(storage.New(storage.NewMemoryBackend()), log)
}

func TestGenerateCodeShape(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	before := time.Now()
	code, err := m.GenerateCode(ctx, 42)
	if err != nil {
		t.Fatalf("GenerateCode: %v", err)
	}
	after := time.Now()

	if len(code.Code) != 8 {
		t.Fatalf("expected 8 characters, got %q", code.Code)
	}
	for _, r := range code.Code {
		if !strings.ContainsRune(codeAlphabet, r) {
			t.Fatalf("character %q outside A-Z0-9 in %q", r, code.Code)
		}
	}
	if code.CreatedBy != 42 {
		t.Fatalf("expected created_by 42, got %d", code.CreatedBy)
	}
	if code.Used {
		t.Fatal("new code must start unused")
	}
	if code.Expiration.Before(before.Add(24*time.Hour)) || code.Expiration.After(after.Add(24*time.Hour)) {
		t.Fatalf("expiration %v not 24h from issue time", code.Expiration)
	}
}

func TestVerifyCodeSingleUse(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	code, err := m.GenerateCode(ctx, 1)
	if err != nil {
		t.Fatalf("GenerateCode: %v", err)
	}

	ok, reason := m.VerifyCode(ctx, code.Code, 100)
	if !ok || reason != ReasonSuccess {
		t.Fatalf("first redemption: got (%v, %s)", ok, reason)
	}
	if !m.IsAuthorized(ctx, 100) {
		t.Fatal("redeeming user must become authorized")
	}

	// Same code, different user: the code is consumed.
	ok, reason = m.VerifyCode(ctx, code.Code, 200)
	if ok || reason != ReasonInvalid {
		t.Fatalf("second redemption: got (%v, %s), want (false, invalid)", ok, reason)
	}
	if m.IsAuthorized(ctx, 200) {
		t.Fatal("second user must not be authorized")
	}
}

func TestVerifyCodeAlreadyAuthorized(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	code, _ := m.GenerateCode(ctx, 1)
	if ok, _ := m.VerifyCode(ctx, code.Code, 100); !ok {
		t.Fatal("seed redemption failed")
	}

	spare, _ := m.GenerateCode(ctx, 1)

	ok, reason := m.VerifyCode(ctx, "whatever", 100)
	if !ok || reason != ReasonAlreadyAuthorized {
		t.Fatalf("got (%v, %s), want (true, already_authorized)", ok, reason)
	}

	// The short-circuit must not consume any code.
	ok, reason = m.VerifyCode(ctx, spare.Code, 300)
	if !ok || reason != ReasonSuccess {
		t.Fatalf("spare code should still redeem, got (%v, %s)", ok, reason)
	}
}

func TestVerifyExpiredCodeIsInvalid(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	code, err := m.GenerateCode(ctx, 1)
	if err != nil {
		t.Fatalf("GenerateCode: %v", err)
	}

	// Jump past the lifetime: the sweep removes the code before the scan,
	// so the reported reason is invalid rather than expired.
	m.now = func() time.Time { return time.Now().Add(25 * time.Hour) }

	ok, reason := m.VerifyCode(ctx, code.Code, 100)
	if ok || reason != ReasonInvalid {
		t.Fatalf("got (%v, %s), want (false, invalid)", ok, reason)
	}

	// The sweep persisted: no codes remain in the document.
	m.now = time.Now
	active, err := m.ActiveCodes(ctx)
	if err != nil {
		t.Fatalf("ActiveCodes: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("expected swept document, got %d active codes", len(active))
	}
}

func TestActiveCodesFiltering(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	used, _ := m.GenerateCode(ctx, 1)
	live, _ := m.GenerateCode(ctx, 1)

	// Expired code injected directly: ActiveCodes must not list it even
	// though no sweep has run.
	var doc entity.AccessDocument
	err := m.store.Update(ctx, documentName, &doc, func() error {
		doc.Codes = append(doc.Codes, entity.AccessCode{
			Code:       "OLDCODE1",
			Expiration: time.Now().Add(-time.Hour),
			CreatedBy:  1,
		})
		return nil
	})
	if err != nil {
		t.Fatalf("inject expired code: %v", err)
	}

	if ok, _ := m.VerifyCode(ctx, used.Code, 100); !ok {
		t.Fatal("seed redemption failed")
	}

	active, err := m.ActiveCodes(ctx)
	if err != nil {
		t.Fatalf("ActiveCodes: %v", err)
	}
	if len(active) != 1 || active[0].Code != live.Code {
		t.Fatalf("expected only %s active, got %+v", live.Code, active)
	}
}
