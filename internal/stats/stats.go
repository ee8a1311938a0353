// Package stats keeps view counters per catalog category and product.
package stats

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"shopbot/entity"
	"shopbot/internal/storage"
	"shopbot/lib/clock"
	"shopbot/lib/sl"
	"shopbot/pkg/metrics"
)

const documentName = "stats"

type Manager struct {
	store *storage.Store
	log   *slog.Logger
	now   func() time.Time
}

func New(store *storage.Store, log *slog.Logger) *Manager {
	return &Manager{
		store: store,
		log:   log.With(sl.Module("stats")),
		now:   time.Now,
	}
}

// IncrementProduct records one view of a product and bumps the totals.
func (m *Manager) IncrementProduct(ctx context.Context, category, product string) error {
	var doc entity.StatsDocument
	err := m.store.Update(ctx, documentName, &doc, func() error {
		m.normalize(&doc)
		if doc.ProductViews[category] == nil {
			doc.ProductViews[category] = make(map[string]int)
		}
		doc.ProductViews[category][product]++
		doc.TotalViews++
		doc.LastUpdated = clock.Stamp(m.now())
		return nil
	})
	if err != nil {
		metrics.StorageErrors.WithLabelValues(documentName).Inc()
		return fmt.Errorf("increment product views: %w", err)
	}
	metrics.ProductViews.Inc()
	return nil
}

// IncrementCategory records one view of a category listing.
func (m *Manager) IncrementCategory(ctx context.Context, category string) error {
	var doc entity.StatsDocument
	err := m.store.Update(ctx, documentName, &doc, func() error {
		m.normalize(&doc)
		doc.CategoryViews[category]++
		doc.TotalViews++
		doc.LastUpdated = clock.Stamp(m.now())
		return nil
	})
	if err != nil {
		metrics.StorageErrors.WithLabelValues(documentName).Inc()
		return fmt.Errorf("increment category views: %w", err)
	}
	return nil
}

// Clean prunes counters whose catalog items no longer exist: categories
// absent from the catalog disappear from both maps, vanished products are
// dropped, and a product-view category emptied by the pruning is removed.
func (m *Manager) Clean(ctx context.Context, catalog entity.Catalog) error {
	var doc entity.StatsDocument
	err := m.store.Update(ctx, documentName, &doc, func() error {
		m.normalize(&doc)

		for category := range doc.CategoryViews {
			if _, ok := catalog[category]; !ok {
				delete(doc.CategoryViews, category)
				m.log.Info("dropped stale category stats", slog.String("category", category))
			}
		}

		for category, products := range doc.ProductViews {
			if _, ok := catalog[category]; !ok {
				delete(doc.ProductViews, category)
				m.log.Info("dropped stale category stats", slog.String("category", category))
				continue
			}
			for product := range products {
				if !catalog.HasProduct(category, product) {
					delete(products, product)
					m.log.Info("dropped stale product stats",
						slog.String("category", category),
						slog.String("product", product),
					)
				}
			}
			if len(products) == 0 {
				delete(doc.ProductViews, category)
			}
		}

		doc.LastUpdated = clock.Stamp(m.now())
		return nil
	})
	if err != nil {
		metrics.StorageErrors.WithLabelValues(documentName).Inc()
		return fmt.Errorf("clean stats: %w", err)
	}
	return nil
}

// Snapshot returns the current document without mutating it.
func (m *Manager) Snapshot(ctx context.Context) (entity.StatsDocument, error) {
	var doc entity.StatsDocument
	if err := m.store.View(ctx, documentName, &doc); err != nil {
		return entity.StatsDocument{}, fmt.Errorf("load stats: %w", err)
	}
	m.normalize(&doc)
	return doc, nil
}

// Reset zeroes all counters and stamps last_reset.
func (m *Manager) Reset(ctx context.Context) error {
	var doc entity.StatsDocument
	err := m.store.Update(ctx, documentName, &doc, func() error {
		now := m.now()
		doc = entity.StatsDocument{
			CategoryViews: make(map[string]int),
			ProductViews:  make(map[string]map[string]int),
			LastUpdated:   clock.Stamp(now),
			LastReset:     clock.Day(now),
		}
		return nil
	})
	if err != nil {
		metrics.StorageErrors.WithLabelValues(documentName).Inc()
		return fmt.Errorf("reset stats: %w", err)
	}
	m.log.Info("stats reset")
	return nil
}

// normalize fills the maps and stamps of a freshly created document.
func (m *Manager) normalize(doc *entity.StatsDocument) {
	if doc.CategoryViews == nil {
		doc.CategoryViews = make(map[string]int)
	}
	if doc.ProductViews == nil {
		doc.ProductViews = make(map[string]map[string]int)
	}
	if doc.LastUpdated == "" {
		doc.LastUpdated = clock.Stamp(m.now())
	}
	if doc.LastReset == "" {
		doc.LastReset = clock.Day(m.now())
	}
}
