package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"shopbot/entity"
)

// FileSource reads the catalog from a JSON file shaped as
// {"category": [{"name": "..."}]}. A missing file is an empty catalog.
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (f *FileSource) Categories(_ context.Context) (entity.Catalog, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return entity.Catalog{}, nil
		}
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var catalog entity.Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("unmarshal catalog: %w", err)
	}
	return catalog, nil
}
