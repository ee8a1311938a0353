// Package users maintains the persisted registry of everyone who has
// talked to the bot. The broadcast loop iterates its keys; admin views
// render its entries.
package users

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"shopbot/entity"
	"shopbot/internal/storage"
	"shopbot/lib/clock"
	"shopbot/lib/sl"
)

const documentName = "users"

type Registry struct {
	store *storage.Store
	log   *slog.Logger
	now   func() time.Time
}

func New(store *storage.Store, log *slog.Logger) *Registry {
	return &Registry{
		store: store,
		log:   log.With(sl.Module("users")),
		now:   time.Now,
	}
}

// Register upserts a user's profile and refreshes last_seen. Called on
// every interaction, so a save failure is logged rather than surfaced.
func (r *Registry) Register(ctx context.Context, id int64, username, firstName, lastName string) {
	var doc entity.UserRegistry
	err := r.store.Update(ctx, documentName, &doc, func() error {
		if doc == nil {
			doc = make(entity.UserRegistry)
		}
		doc[strconv.FormatInt(id, 10)] = entity.UserRecord{
			Username:  entity.OptionalString(username),
			FirstName: entity.OptionalString(firstName),
			LastName:  entity.OptionalString(lastName),
			LastSeen:  clock.Stamp(r.now()),
		}
		return nil
	})
	if err != nil {
		r.log.Error("saving user registry", sl.User(id), sl.Err(err))
	}
}

// All returns the full registry. Missing document means no users yet.
func (r *Registry) All(ctx context.Context) (entity.UserRegistry, error) {
	var doc entity.UserRegistry
	if err := r.store.View(ctx, documentName, &doc); err != nil {
		return nil, fmt.Errorf("load user registry: %w", err)
	}
	if doc == nil {
		doc = make(entity.UserRegistry)
	}
	return doc, nil
}

func (r *Registry) Count(ctx context.Context) int {
	doc, err := r.All(ctx)
	if err != nil {
		r.log.Error("counting users", sl.Err(err))
		return 0
	}
	return len(doc)
}

// Entry pairs a registry key with its record for ordered views.
type Entry struct {
	ID     string
	Record entity.UserRecord
}

// Recent returns up to n entries ordered by last_seen, newest first.
func (r *Registry) Recent(ctx context.Context, n int) []Entry {
	doc, err := r.All(ctx)
	if err != nil {
		r.log.Error("listing recent users", sl.Err(err))
		return nil
	}

	entries := make([]Entry, 0, len(doc))
	for id, rec := range doc {
		entries = append(entries, Entry{ID: id, Record: rec})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Record.LastSeen != entries[j].Record.LastSeen {
			return entries[i].Record.LastSeen > entries[j].Record.LastSeen
		}
		return entries[i].ID < entries[j].ID
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}
