package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileBackend keeps each document as a pretty-printed UTF-8 JSON file
// under a data directory: <dir>/<name>.json.
type FileBackend struct {
	dir string
}

func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileBackend{dir: dir}, nil
}

func (f *FileBackend) Load(_ context.Context, name string, v any) error {
	data, err := os.ReadFile(f.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("read document %s: %w", name, err)
	}
	if len(data) == 0 {
		return ErrNotFound
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal document %s: %w", name, err)
	}
	return nil
}

func (f *FileBackend) Save(_ context.Context, name string, v any) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal document %s: %w", name, err)
	}
	if err := os.WriteFile(f.path(name), data, 0o644); err != nil {
		return fmt.Errorf("write document %s: %w", name, err)
	}
	return nil
}

func (f *FileBackend) path(name string) string {
	return filepath.Join(f.dir, name+".json")
}
