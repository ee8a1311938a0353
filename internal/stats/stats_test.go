package stats

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"shopbot/entity"
	"shopbot/internal/storage"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
	return New(storage.New(storage.NewMemoryBackend()), log)
}

func TestIncrementProduct(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := m.IncrementProduct(ctx, "Drinks", "Cola"); err != nil {
			t.Fatalf("IncrementProduct: %v", err)
		}
	}
	if err := m.IncrementProduct(ctx, "Snacks", "Chips"); err != nil {
		t.Fatalf("IncrementProduct: %v", err)
	}

	doc, err := m.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if doc.TotalViews != 4 {
		t.Fatalf("expected total 4, got %d", doc.TotalViews)
	}
	if doc.ProductViews["Drinks"]["Cola"] != 3 {
		t.Fatalf("expected Cola 3, got %d", doc.ProductViews["Drinks"]["Cola"])
	}
	if doc.LastUpdated == "" {
		t.Fatal("last_updated must be stamped")
	}
}

func TestCleanRemovesStaleEntries(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	seed := func(category, product string, n int) {
		for i := 0; i < n; i++ {
			if err := m.IncrementProduct(ctx, category, product); err != nil {
				t.Fatalf("seed: %v", err)
			}
		}
	}
	seed("Drinks", "Cola", 3)
	seed("Drinks", "Water", 5)
	seed("Snacks", "Chips", 2)
	if err := m.IncrementCategory(ctx, "Snacks"); err != nil {
		t.Fatalf("seed category: %v", err)
	}

	catalog := entity.Catalog{"Drinks": {{Name: "Cola"}}}
	if err := m.Clean(ctx, catalog); err != nil {
		t.Fatalf("Clean: %v", err)
	}

	doc, err := m.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(doc.ProductViews) != 1 {
		t.Fatalf("expected only Drinks to survive, got %v", doc.ProductViews)
	}
	drinks := doc.ProductViews["Drinks"]
	if len(drinks) != 1 || drinks["Cola"] != 3 {
		t.Fatalf("expected {Cola: 3}, got %v", drinks)
	}
	if _, ok := doc.CategoryViews["Snacks"]; ok {
		t.Fatal("stale category must leave category_views too")
	}
}

func TestCleanDropsEmptiedCategory(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	if err := m.IncrementProduct(ctx, "Drinks", "Fanta"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	// Category still exists but its only tracked product is gone.
	catalog := entity.Catalog{"Drinks": {{Name: "Cola"}}}
	if err := m.Clean(ctx, catalog); err != nil {
		t.Fatalf("Clean: %v", err)
	}

	doc, err := m.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if _, ok := doc.ProductViews["Drinks"]; ok {
		t.Fatalf("emptied category must be removed, got %v", doc.ProductViews)
	}
}

func TestReset(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	if err := m.IncrementProduct(ctx, "Drinks", "Cola"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := m.Reset(ctx); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	doc, err := m.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if doc.TotalViews != 0 || len(doc.ProductViews) != 0 {
		t.Fatalf("expected zeroed document, got %+v", doc)
	}
	if doc.LastReset == "" {
		t.Fatal("last_reset must be stamped")
	}
}
