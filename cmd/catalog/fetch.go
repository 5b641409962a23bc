package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lepinkainen/hpdata/internal/fileutil"
)

// ProductsListFetcher retrieves the raw catalog.
type ProductsListFetcher interface {
	FetchProductsList(ctx context.Context) ([]byte, error)
}

// FetchCatalog downloads the products list and stores it at outputPath,
// re-indented but otherwise unchanged. Nothing is written when the request fails.
func FetchCatalog(ctx context.Context, fetcher ProductsListFetcher, outputPath string) error {
	slog.Info("Fetching products list")

	body, err := fetcher.FetchProductsList(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch products list: %w", err)
	}

	if err := fileutil.WriteIndentedJSON(body, outputPath); err != nil {
		return fmt.Errorf("failed to save products list: %w", err)
	}

	slog.Info("Products list saved", "path", outputPath, "bytes", len(body))
	return nil
}
