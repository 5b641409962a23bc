// Package pipeline runs one extraction step over every product in a catalog,
// sequentially and behind a throttle gate.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lepinkainen/hpdata/internal/catalog"
	"github.com/lepinkainen/hpdata/internal/metrics"
	"github.com/lepinkainen/hpdata/internal/ratelimit"
)

// Step fetches, parses and persists a single product.
type Step func(ctx context.Context, product catalog.Product) error

// Summary counts the outcome of a run.
type Summary struct {
	Name      string
	Total     int
	Succeeded int
	Failed    int
	Skipped   int
	Elapsed   time.Duration
}

// Option configures Run.
type Option func(*runOptions)

type runOptions struct {
	skip func(catalog.Product) bool
}

// WithSkip excludes products for which skip returns true, without waiting on
// the throttle gate. Used to resume a partial run.
func WithSkip(skip func(catalog.Product) bool) Option {
	return func(o *runOptions) {
		o.skip = skip
	}
}

// Run calls step for each product in order. Before every call it waits on
// limiter. A failing step is logged and the loop moves on to the next product.
// The returned error is non-nil only when ctx is cancelled; the summary then
// covers the products handled so far.
func Run(ctx context.Context, name string, products []catalog.Product, limiter *ratelimit.Limiter, step Step, opts ...Option) (Summary, error) {
	var o runOptions
	for _, opt := range opts {
		opt(&o)
	}

	summary := Summary{Name: name, Total: len(products)}
	start := time.Now()
	slog.Info("Starting pipeline", "pipeline", name, "products", len(products), "throttle", limiter.Interval())

	for i, product := range products {
		position := fmt.Sprintf("%d/%d", i+1, len(products))

		if o.skip != nil && o.skip(product) {
			slog.Debug("Skipping product", "pipeline", name, "product", product.Fullname, "id", product.ID, "position", position)
			summary.Skipped++
			metrics.ObserveItem(name, metrics.OutcomeSkipped, 0)
			continue
		}

		if err := limiter.Wait(ctx); err != nil {
			summary.Elapsed = time.Since(start)
			return summary, fmt.Errorf("%s stopped at %s: %w", name, position, err)
		}

		itemStart := time.Now()
		if err := step(ctx, product); err != nil {
			if ctx.Err() != nil {
				summary.Elapsed = time.Since(start)
				return summary, fmt.Errorf("%s stopped at %s: %w", name, position, ctx.Err())
			}
			slog.Warn("Failed to process product",
				"pipeline", name,
				"product", product.Fullname,
				"id", product.ID,
				"position", position,
				"error", err)
			summary.Failed++
			metrics.ObserveItem(name, metrics.OutcomeFailure, time.Since(itemStart))
			continue
		}

		summary.Succeeded++
		metrics.ObserveItem(name, metrics.OutcomeSuccess, time.Since(itemStart))
		slog.Info("Processed product", "pipeline", name, "product", product.Fullname, "position", position)
	}

	summary.Elapsed = time.Since(start)
	if summary.Succeeded == 0 && summary.Total > summary.Skipped {
		slog.Warn("No products were processed successfully", "pipeline", name, "total", summary.Total, "failed", summary.Failed)
	}
	return summary, nil
}
