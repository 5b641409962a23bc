// Package export implements the export command: load the JSON artifacts of
// previous runs into the SQLite database.
package export

import (
	"fmt"
	"log/slog"

	"github.com/spf13/viper"

	"github.com/lepinkainen/hpdata/cmd/catalog"
	"github.com/lepinkainen/hpdata/cmd/curves"
	"github.com/lepinkainen/hpdata/cmd/scores"
	hpcatalog "github.com/lepinkainen/hpdata/internal/catalog"
	"github.com/lepinkainen/hpdata/internal/cmdutil"
	"github.com/lepinkainen/hpdata/internal/fileutil"
)

// Result counts the records exported per table. A table whose artifact is
// missing is left out.
type Result map[string]int

// Run replaces the products, scores and curve_points tables with the contents
// of the artifacts under paths. Missing artifacts are skipped with a warning.
func Run(paths cmdutil.DataPaths) (Result, error) {
	viper.Set("datasette.enabled", true)
	viper.Set("datasette.dbfile", paths.Database)

	result := Result{}

	if fileutil.FileExists(paths.Catalog) {
		products, err := hpcatalog.LoadProducts(paths.Catalog)
		if err != nil {
			return result, err
		}
		if err := catalog.WriteDatastore(products); err != nil {
			return result, fmt.Errorf("products: %w", err)
		}
		result["products"] = len(products)
	} else {
		slog.Warn("Catalog not found, skipping products table", "path", paths.Catalog)
	}

	if err := exportArtifact(paths.Scores, "scores", scores.WriteDatastore, result); err != nil {
		return result, err
	}
	if err := exportArtifact(paths.Curves, "curve_points", curves.WriteDatastore, result); err != nil {
		return result, err
	}

	slog.Info("Export complete", "path", paths.Database, "tables", len(result))
	return result, nil
}

func exportArtifact[T any](path, table string, write func([]T) error, result Result) error {
	if !fileutil.FileExists(path) {
		slog.Warn("Artifact not found, skipping table", "table", table, "path", path)
		return nil
	}

	records, err := fileutil.ReadJSONFile[[]T](path)
	if err != nil {
		return err
	}
	if err := write(records); err != nil {
		return fmt.Errorf("%s: %w", table, err)
	}
	result[table] = len(records)
	return nil
}
