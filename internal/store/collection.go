// Package store accumulates extracted records and persists them as a single
// JSON array on disk.
package store

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/lepinkainen/hpdata/internal/fileutil"
)

// Collection is an append-only list of records mirrored to a JSON file.
// The whole array is rewritten atomically every flushEvery appends and on Close.
type Collection[T any] struct {
	path       string
	key        func(T) string
	records    []T
	seen       map[string]struct{}
	flushEvery int
	pending    int
}

// Option configures a Collection.
type Option func(*options)

type options struct {
	flushEvery int
	resume     bool
}

// WithFlushEvery sets how many appends trigger a rewrite of the output file.
// Values below one are treated as one.
func WithFlushEvery(n int) Option {
	return func(o *options) {
		o.flushEvery = max(n, 1)
	}
}

// WithResume keeps the records already present in the output file instead of
// clearing it.
func WithResume(resume bool) Option {
	return func(o *options) {
		o.resume = resume
	}
}

// Open prepares the output file at path. Without resume the file is cleared
// to an empty array; with resume its records are loaded and their keys
// reported by Has. A failed clear is logged and left to the next flush.
func Open[T any](path string, key func(T) string, opts ...Option) (*Collection[T], error) {
	o := options{flushEvery: 1}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Collection[T]{
		path:       path,
		key:        key,
		records:    []T{},
		seen:       make(map[string]struct{}),
		flushEvery: o.flushEvery,
	}

	if o.resume && fileutil.FileExists(path) {
		existing, err := fileutil.ReadJSONFile[[]T](path)
		if err != nil {
			return nil, fmt.Errorf("failed to resume %s: %w", path, err)
		}
		for _, rec := range existing {
			c.records = append(c.records, rec)
			c.seen[key(rec)] = struct{}{}
		}
		slog.Info("Resuming output file", "path", path, "records", len(c.records))
		return c, nil
	}

	if err := fileutil.ClearJSONArray(path); err != nil {
		slog.Error("Failed to clear output file", "path", path, "error", err)
		c.pending = 1
	}
	return c, nil
}

// Append adds a record and flushes when enough records are pending.
// A failed flush keeps the records pending so the next flush retries them.
func (c *Collection[T]) Append(rec T) error {
	c.records = append(c.records, rec)
	c.seen[c.key(rec)] = struct{}{}
	c.pending++

	if c.pending >= c.flushEvery {
		return c.Flush()
	}
	return nil
}

// Flush rewrites the output file with every record collected so far.
func (c *Collection[T]) Flush() error {
	if _, err := fileutil.WriteJSONFile(c.records, c.path, true); err != nil {
		return fmt.Errorf("failed to flush %s: %w", c.path, err)
	}
	slog.Debug("Flushed output file", "path", c.path, "records", len(c.records))
	c.pending = 0
	return nil
}

// Close flushes any pending records.
func (c *Collection[T]) Close() error {
	if c.pending == 0 {
		return nil
	}
	return c.Flush()
}

// Has reports whether a record with the given key has been collected.
func (c *Collection[T]) Has(key string) bool {
	_, ok := c.seen[key]
	return ok
}

// Records returns a copy of the collected records in append order.
func (c *Collection[T]) Records() []T {
	return slices.Clone(c.records)
}
