package cmdutil

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Artifact file names under the data directory.
const (
	RawCatalogFile = "products-list.json"
	CatalogFile    = "clean-products-list.json"
	ScoresFile     = "headphones-data.json"
	CurvesFile     = "headphones-fr-data.json"
	DatabaseFile   = "hpdata.db"
)

// DataPaths holds the location of every persisted artifact.
type DataPaths struct {
	Dir        string
	RawCatalog string
	Catalog    string
	Scores     string
	Curves     string
	Database   string
}

// SetupDataDir resolves the artifact paths under dir and creates the directory.
// An empty dir falls back to the datadir config value, then ./data.
func SetupDataDir(dir string) (DataPaths, error) {
	if dir == "" {
		dir = viper.GetString("datadir")
	}
	if dir == "" {
		dir = "data"
	}
	dir = filepath.Clean(dir)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return DataPaths{}, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbFile := viper.GetString("datasette.dbfile")
	if dbFile == "" {
		dbFile = filepath.Join(dir, DatabaseFile)
	}

	return DataPaths{
		Dir:        dir,
		RawCatalog: filepath.Join(dir, RawCatalogFile),
		Catalog:    filepath.Join(dir, CatalogFile),
		Scores:     filepath.Join(dir, ScoresFile),
		Curves:     filepath.Join(dir, CurvesFile),
		Database:   dbFile,
	}, nil
}
