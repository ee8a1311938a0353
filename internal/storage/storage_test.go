package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type testDoc struct {
	Count int      `json:"count"`
	Names []string `json:"names"`
}

func TestViewMissingDocument(t *testing.T) {
	backends := map[string]Backend{
		"memory": NewMemoryBackend(),
		"file":   mustFileBackend(t),
	}
	for name, backend := range backends {
		t.Run(name, func(t *testing.T) {
			store := New(backend)
			doc := testDoc{}
			if err := store.View(context.Background(), "absent", &doc); err != nil {
				t.Fatalf("View on missing document: %v", err)
			}
			if doc.Count != 0 || doc.Names != nil {
				t.Fatalf("missing document should leave zero value, got %+v", doc)
			}
		})
	}
}

func TestUpdateRoundTrip(t *testing.T) {
	backends := map[string]Backend{
		"memory": NewMemoryBackend(),
		"file":   mustFileBackend(t),
	}
	for name, backend := range backends {
		t.Run(name, func(t *testing.T) {
			store := New(backend)
			ctx := context.Background()

			doc := testDoc{}
			err := store.Update(ctx, "doc", &doc, func() error {
				doc.Count++
				doc.Names = append(doc.Names, "first")
				return nil
			})
			if err != nil {
				t.Fatalf("first update: %v", err)
			}

			doc = testDoc{}
			err = store.Update(ctx, "doc", &doc, func() error {
				doc.Count++
				doc.Names = append(doc.Names, "second")
				return nil
			})
			if err != nil {
				t.Fatalf("second update: %v", err)
			}

			got := testDoc{}
			if err := store.View(ctx, "doc", &got); err != nil {
				t.Fatalf("view: %v", err)
			}
			if got.Count != 2 {
				t.Fatalf("expected count 2, got %d", got.Count)
			}
			if len(got.Names) != 2 || got.Names[1] != "second" {
				t.Fatalf("unexpected names: %v", got.Names)
			}
		})
	}
}

func TestUpdateMutateErrorSkipsSave(t *testing.T) {
	store := New(NewMemoryBackend())
	ctx := context.Background()

	doc := testDoc{}
	if err := store.Update(ctx, "doc", &doc, func() error { doc.Count = 5; return nil }); err != nil {
		t.Fatalf("seed update: %v", err)
	}

	doc = testDoc{}
	err := store.Update(ctx, "doc", &doc, func() error {
		doc.Count = 99
		return os.ErrPermission
	})
	if err == nil {
		t.Fatal("expected mutate error to propagate")
	}

	got := testDoc{}
	if err := store.View(ctx, "doc", &got); err != nil {
		t.Fatalf("view: %v", err)
	}
	if got.Count != 5 {
		t.Fatalf("failed mutate must not persist, got count %d", got.Count)
	}
}

func TestFileBackendPrettyPrints(t *testing.T) {
	dir := t.TempDir()
	backend, err := NewFileBackend(dir)
	if err != nil {
		t.Fatalf("NewFileBackend: %v", err)
	}
	if err := backend.Save(context.Background(), "doc", testDoc{Count: 1}); err != nil {
		t.Fatalf("save: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "doc.json"))
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if !strings.Contains(string(data), "\n    \"count\": 1") {
		t.Fatalf("expected indented JSON, got %q", string(data))
	}
}

func mustFileBackend(t *testing.T) *FileBackend {
	t.Helper()
	backend, err := NewFileBackend(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileBackend: %v", err)
	}
	return backend
}
