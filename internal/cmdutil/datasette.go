package cmdutil

import (
	"fmt"
	"log/slog"

	"github.com/spf13/viper"

	"github.com/lepinkainen/hpdata/internal/datastore"
)

// WriteToDatastore replaces the rows of table with items when the SQLite
// export is enabled (datasette.enabled). mapper turns one item into rows;
// returning several rows per item is allowed.
func WriteToDatastore[T any](items []T, schema, table, description string, mapper func(item T) []map[string]any) error {
	if !viper.GetBool("datasette.enabled") {
		return nil
	}

	dbPath := viper.GetString("datasette.dbfile")
	if dbPath == "" {
		return fmt.Errorf("datasette export enabled but datasette.dbfile is not set")
	}

	slog.Info("Writing to SQLite database", "table", table, "records", len(items), "path", dbPath)

	store := datastore.NewSQLiteStore(dbPath)
	if err := store.Connect(); err != nil {
		return fmt.Errorf("failed to connect to SQLite database: %w", err)
	}
	defer func() { _ = store.Close() }()

	if err := store.CreateTable(schema); err != nil {
		return fmt.Errorf("failed to create %s table: %w", table, err)
	}
	if err := store.Truncate(table); err != nil {
		return err
	}

	var rows []map[string]any
	for _, item := range items {
		rows = append(rows, mapper(item)...)
	}

	if err := store.BatchInsert(table, rows); err != nil {
		return fmt.Errorf("failed to insert %s: %w", description, err)
	}

	slog.Info("Wrote to SQLite database", "table", table, "rows", len(rows), "description", description)
	return nil
}
