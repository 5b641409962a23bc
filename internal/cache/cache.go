// Package cache keeps remote responses in SQLite so reruns can skip requests
// whose answer is still fresh.
package cache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// DefaultCacheTTL is the default time-to-live for cached entries (30 days)
const DefaultCacheTTL = 720 * time.Hour

// FetchFunc represents a function that fetches data from an external source
type FetchFunc[T any] func() (T, error)

// CacheDB manages the SQLite database connection for caching
type CacheDB struct {
	db   *sql.DB
	mu   sync.RWMutex
	path string
}

// NewCacheDB opens the cache database at dbPath and creates every cache table.
func NewCacheDB(dbPath string) (*CacheDB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		closeErr := db.Close()
		return nil, errors.Join(fmt.Errorf("failed to connect to cache database: %w", err), closeErr)
	}

	c := &CacheDB{db: db, path: dbPath}
	for _, schema := range AllCacheSchemas {
		if err := c.CreateTable(schema); err != nil {
			_ = c.Close()
			return nil, err
		}
	}
	return c, nil
}

// Path returns the database file location.
func (c *CacheDB) Path() string {
	return c.path
}

// CreateTable creates a table using the provided schema
func (c *CacheDB) CreateTable(schema string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}

// Close closes the database connection
func (c *CacheDB) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// InvalidateSource deletes all entries from the specified cache table
// and returns the number of rows deleted.
func (c *CacheDB) InvalidateSource(tableName string) (int64, error) {
	if err := validateTableName(tableName); err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	result, err := c.db.Exec(fmt.Sprintf("DELETE FROM %s", tableName))
	if err != nil {
		return 0, fmt.Errorf("failed to delete cache entries: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	slog.Debug("Cache table cleared", "table", tableName, "rows_deleted", rowsAffected)
	return rowsAffected, nil
}

// validateTableName checks the table name against the whitelist
// before it is interpolated into a query.
func validateTableName(tableName string) error {
	if !ValidCacheTableNames[tableName] {
		return fmt.Errorf("invalid cache table name: %s", tableName)
	}
	return nil
}

// Get retrieves a cached value from the specified table
// Returns the cached data, whether it was from cache, and any error
func (c *CacheDB) Get(tableName, key string, ttl time.Duration) (string, bool, error) {
	if err := validateTableName(tableName); err != nil {
		return "", false, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	query := fmt.Sprintf(`SELECT data, cached_at FROM %s WHERE cache_key = ?`, tableName)

	var data string
	var cachedAt time.Time
	err := c.db.QueryRow(query, key).Scan(&data, &cachedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to query cache: %w", err)
	}

	if age := time.Now().UTC().Sub(cachedAt); age > ttl {
		slog.Debug("Cache expired", "table", tableName, "key", key, "age", age)
		return "", false, nil
	}

	return data, true, nil
}

// Set stores a value in the cache
func (c *CacheDB) Set(tableName, key, data string) error {
	return c.setAt(tableName, key, data, time.Now().UTC())
}

func (c *CacheDB) setAt(tableName, key, data string, at time.Time) error {
	if err := validateTableName(tableName); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	query := fmt.Sprintf(`INSERT OR REPLACE INTO %s (cache_key, data, cached_at) VALUES (?, ?, ?)`, tableName)
	if _, err := c.db.Exec(query, key, data, at); err != nil {
		return fmt.Errorf("failed to store cache entry: %w", err)
	}
	return nil
}

// GetOrFetch retrieves data from cache or fetches it using the provided function.
// Failed fetches are not cached. A nil cache always fetches.
// The boolean result reports whether the value came from the cache.
func GetOrFetch[T any](c *CacheDB, tableName, cacheKey string, ttl time.Duration, fetchFunc FetchFunc[T]) (T, bool, error) {
	var zero T

	if c == nil {
		data, err := fetchFunc()
		return data, false, err
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	cached, fromCache, err := c.Get(tableName, cacheKey, ttl)
	if err != nil {
		slog.Warn("Failed to read cache, fetching directly", "table", tableName, "key", cacheKey, "error", err)
	} else if fromCache {
		var result T
		if err := json.Unmarshal([]byte(cached), &result); err == nil {
			slog.Debug("Cache hit", "table", tableName, "key", cacheKey)
			return result, true, nil
		}
		slog.Warn("Failed to unmarshal cached data, will refetch", "table", tableName, "key", cacheKey, "error", err)
	}

	slog.Debug("Cache miss, fetching data", "table", tableName, "key", cacheKey)
	data, err := fetchFunc()
	if err != nil {
		return zero, false, err
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		slog.Warn("Failed to marshal data for caching", "table", tableName, "key", cacheKey, "error", err)
		return data, false, nil
	}
	if err := c.Set(tableName, cacheKey, string(jsonData)); err != nil {
		// Caching failure shouldn't stop the run
		slog.Warn("Failed to cache data", "table", tableName, "key", cacheKey, "error", err)
	}

	return data, false, nil
}
