package catalog

import (
	"fmt"
	"log/slog"

	hpcatalog "github.com/lepinkainen/hpdata/internal/catalog"
	"github.com/lepinkainen/hpdata/internal/errors"
	"github.com/lepinkainen/hpdata/internal/fileutil"
)

// Normalize projects the raw catalog at inputPath into product descriptors and
// writes them to outputPath, replacing its contents. Entries with an unknown
// test bench or without an id are left out with a warning.
func Normalize(inputPath, outputPath, origin string) ([]hpcatalog.Product, error) {
	raw, err := fileutil.ReadJSONFile[RawCatalog](inputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read products list: %w", err)
	}
	if raw.Data.Products == nil {
		return nil, fmt.Errorf("failed to read products list: %w", errors.NewMissingFieldError("data.products"))
	}

	products := make([]hpcatalog.Product, 0, len(raw.Data.Products))
	for _, entry := range raw.Data.Products {
		product, err := normalizeProduct(entry, origin)
		if err != nil {
			slog.Warn("Skipping catalog entry", "id", entry.ID, "product", entry.Fullname, "error", err)
			continue
		}
		products = append(products, product)
	}

	if _, err := fileutil.WriteJSONFile(products, outputPath, true); err != nil {
		return nil, fmt.Errorf("failed to save normalized products: %w", err)
	}

	slog.Info("Normalized products list saved",
		"path", outputPath,
		"products", len(products),
		"skipped", len(raw.Data.Products)-len(products))
	return products, nil
}

func normalizeProduct(entry RawProduct, origin string) (hpcatalog.Product, error) {
	if entry.ID == "" {
		return hpcatalog.Product{}, errors.NewMissingFieldError("id")
	}

	tb := hpcatalog.TestBench(entry.testBench())
	if !tb.Known() {
		return hpcatalog.Product{}, errors.NewUnknownTestBenchError(string(tb))
	}

	return hpcatalog.Product{
		ID:        entry.ID,
		Fullname:  entry.Fullname,
		URL:       origin + entry.pageURL(),
		TestBench: tb,
	}, nil
}
