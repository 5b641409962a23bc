// Package scores implements the scores command: fetch every product's review
// page and extract its scored attributes.
package scores

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lepinkainen/hpdata/internal/catalog"
	"github.com/lepinkainen/hpdata/internal/cmdutil"
	"github.com/lepinkainen/hpdata/internal/pipeline"
	"github.com/lepinkainen/hpdata/internal/ratelimit"
	"github.com/lepinkainen/hpdata/internal/store"
)

// PipelineName labels log lines and metrics for this command.
const PipelineName = "scores"

// DocumentFetcher returns the HTML of a review page.
type DocumentFetcher interface {
	FetchDocument(ctx context.Context, pageURL string) (string, error)
}

// Options configures a scores run.
type Options struct {
	Paths      cmdutil.DataPaths
	Fetcher    DocumentFetcher
	Limiter    *ratelimit.Limiter
	FlushEvery int
	Resume     bool
}

// Run extracts scored attributes for every product in the normalized catalog
// and appends them to the scores file as they complete.
func Run(ctx context.Context, opts Options) (pipeline.Summary, error) {
	products, err := catalog.LoadProducts(opts.Paths.Catalog)
	if err != nil {
		return pipeline.Summary{}, err
	}

	out, err := store.Open(opts.Paths.Scores, recordKey,
		store.WithFlushEvery(opts.FlushEvery),
		store.WithResume(opts.Resume))
	if err != nil {
		return pipeline.Summary{}, err
	}

	step := func(ctx context.Context, product catalog.Product) error {
		html, err := opts.Fetcher.FetchDocument(ctx, product.URL)
		if err != nil {
			return fmt.Errorf("fetch: %w", err)
		}
		record, err := ParseDocument(product, html)
		if err != nil {
			return fmt.Errorf("parse: %w", err)
		}
		if err := out.Append(record); err != nil {
			// The record stays pending and is written by the next flush.
			slog.Error("Failed to save scores", "product", product.Fullname, "error", err)
		}
		return nil
	}

	var runOpts []pipeline.Option
	if opts.Resume {
		runOpts = append(runOpts, pipeline.WithSkip(func(p catalog.Product) bool { return out.Has(p.ID) }))
	}
	summary, runErr := pipeline.Run(ctx, PipelineName, products, opts.Limiter, step, runOpts...)

	if err := out.Close(); err != nil {
		slog.Error("Failed to write scores file", "path", opts.Paths.Scores, "error", err)
	}
	if runErr != nil {
		return summary, runErr
	}

	if err := WriteDatastore(out.Records()); err != nil {
		slog.Error("Failed to write scores to SQLite", "error", err)
	}
	return summary, nil
}

func recordKey(r Record) string {
	return r.ID
}
