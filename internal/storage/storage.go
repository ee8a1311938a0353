// Package storage persists the bot's bookkeeping documents.
//
// Documents are small JSON-shaped values addressed by name (access_codes,
// users, stats). A Backend only knows how to load and save one document;
// Store layers atomic read-modify-write cycles on top, serializing
// mutations so two concurrent updates of the same store cannot interleave
// their load and save steps.
package storage

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned by a Backend when the named document has never
// been saved. Store treats it as "empty document", not an error.
var ErrNotFound = errors.New("document not found")

// Backend reads and writes named documents.
// Implementations must marshal v as JSON (or an equivalent faithful
// encoding) so documents keep the same shape across backends.
type Backend interface {
	Load(ctx context.Context, name string, v any) error
	Save(ctx context.Context, name string, v any) error
}

// Store serializes document access over a Backend.
type Store struct {
	mu      sync.Mutex
	backend Backend
}

func New(backend Backend) *Store {
	return &Store{backend: backend}
}

// View loads the named document into v. A missing document leaves v
// untouched and returns nil, so callers start from their zero value.
func (s *Store) View(ctx context.Context, name string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx, name, v)
}

// Update runs one atomic read-modify-write cycle: load the document into
// v, apply mutate, save the result. If mutate returns an error the save
// is skipped and the error returned unchanged.
func (s *Store) Update(ctx context.Context, name string, v any, mutate func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(ctx, name, v); err != nil {
		return err
	}
	if err := mutate(); err != nil {
		return err
	}
	return s.backend.Save(ctx, name, v)
}

func (s *Store) load(ctx context.Context, name string, v any) error {
	err := s.backend.Load(ctx, name, v)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}
