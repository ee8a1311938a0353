// Package catalog supplies the category -> products mapping consumed by
// the stats cleanup routine. The default source is a JSON file in the
// data directory; deployments backed by an OpenCart shop can read the
// catalog straight from its MySQL database instead.
package catalog

import (
	"context"

	"shopbot/entity"
)

type Source interface {
	Categories(ctx context.Context) (entity.Catalog, error)
}
