package cache

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/spf13/viper"
)

// InvalidateCacheCmd represents the cache invalidate subcommand
type InvalidateCacheCmd struct {
	Source string `arg:"" help:"Cache source to invalidate: graph, review or all" required:""`
}

func (i *InvalidateCacheCmd) Run() error {
	tables, ok := Sources[i.Source]
	if !ok {
		names := make([]string, 0, len(Sources))
		for name := range Sources {
			names = append(names, name)
		}
		slices.Sort(names)
		return fmt.Errorf("invalid cache source '%s'; valid sources are: %s", i.Source, strings.Join(names, ", "))
	}

	cacheDB := viper.GetString("cache.dbfile")
	slog.Info("Invalidating cache", "source", i.Source, "database", cacheDB)

	db, err := NewCacheDB(cacheDB)
	if err != nil {
		return fmt.Errorf("failed to open cache database: %w", err)
	}
	defer func() { _ = db.Close() }()

	var total int64
	for _, table := range tables {
		n, err := db.InvalidateSource(table)
		if err != nil {
			return fmt.Errorf("failed to invalidate cache: %w", err)
		}
		total += n
	}

	slog.Info("Cache invalidated", "source", i.Source, "rows_deleted", total)
	return nil
}
