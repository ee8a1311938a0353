package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFileSourceReadsCatalog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.json")
	payload := `{"Drinks": [{"name": "Cola"}, {"name": "Water"}], "Snacks": [{"name": "Chips"}]}`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	catalog, err := NewFileSource(path).Categories(context.Background())
	if err != nil {
		t.Fatalf("Categories: %v", err)
	}
	if len(catalog) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(catalog))
	}
	if !catalog.HasProduct("Drinks", "Water") {
		t.Fatal("expected Water in Drinks")
	}
	if catalog.HasProduct("Drinks", "Fanta") {
		t.Fatal("did not expect Fanta in Drinks")
	}
}

func TestFileSourceMissingFile(t *testing.T) {
	source := NewFileSource(filepath.Join(t.TempDir(), "absent.json"))
	catalog, err := source.Categories(context.Background())
	if err != nil {
		t.Fatalf("Categories: %v", err)
	}
	if len(catalog) != 0 {
		t.Fatalf("expected empty catalog, got %v", catalog)
	}
}
