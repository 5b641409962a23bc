// Package catalog implements the catalog command: fetch the products list and
// normalize it into product descriptors.
package catalog

import (
	"context"
	"log/slog"

	"github.com/lepinkainen/hpdata/internal/cmdutil"
)

// Options configures a catalog run.
type Options struct {
	Paths   cmdutil.DataPaths
	Fetcher ProductsListFetcher
	Origin  string
}

// Run fetches the raw catalog, then normalizes it. A failed fetch stops the run.
func Run(ctx context.Context, opts Options) error {
	if err := FetchCatalog(ctx, opts.Fetcher, opts.Paths.RawCatalog); err != nil {
		return err
	}

	products, err := Normalize(opts.Paths.RawCatalog, opts.Paths.Catalog, opts.Origin)
	if err != nil {
		return err
	}

	if err := WriteDatastore(products); err != nil {
		slog.Error("Failed to write products to SQLite", "error", err)
	}
	return nil
}
