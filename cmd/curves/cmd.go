// Package curves implements the curves command: resolve and download every
// product's frequency response graph and reconcile it into complete rows.
package curves

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lepinkainen/hpdata/internal/catalog"
	"github.com/lepinkainen/hpdata/internal/cmdutil"
	"github.com/lepinkainen/hpdata/internal/pipeline"
	"github.com/lepinkainen/hpdata/internal/ratelimit"
	"github.com/lepinkainen/hpdata/internal/rtings"
	"github.com/lepinkainen/hpdata/internal/store"
)

// PipelineName labels log lines and metrics for this command.
const PipelineName = "curves"

// GraphSource resolves and downloads graph data tables.
type GraphSource interface {
	ResolveGraphURL(ctx context.Context, productID, fullname, testID string) (string, error)
	FetchGraphData(ctx context.Context, path string) (rtings.GraphData, error)
}

// Options configures a curves run.
type Options struct {
	Paths      cmdutil.DataPaths
	Source     GraphSource
	Limiter    *ratelimit.Limiter
	TestID     string
	FlushEvery int
	Resume     bool
}

// Run extracts the frequency curve of every product in the normalized catalog
// and appends them to the curves file as they complete.
func Run(ctx context.Context, opts Options) (pipeline.Summary, error) {
	products, err := catalog.LoadProducts(opts.Paths.Catalog)
	if err != nil {
		return pipeline.Summary{}, err
	}

	out, err := store.Open(opts.Paths.Curves, recordKey,
		store.WithFlushEvery(opts.FlushEvery),
		store.WithResume(opts.Resume))
	if err != nil {
		return pipeline.Summary{}, err
	}

	step := func(ctx context.Context, product catalog.Product) error {
		record, err := extract(ctx, opts.Source, opts.TestID, product)
		if err != nil {
			return err
		}
		if err := out.Append(record); err != nil {
			slog.Error("Failed to save frequency curve", "product", product.Fullname, "error", err)
		}
		return nil
	}

	var runOpts []pipeline.Option
	if opts.Resume {
		runOpts = append(runOpts, pipeline.WithSkip(func(p catalog.Product) bool { return out.Has(p.ID) }))
	}
	summary, runErr := pipeline.Run(ctx, PipelineName, products, opts.Limiter, step, runOpts...)

	if err := out.Close(); err != nil {
		slog.Error("Failed to write frequency curves file", "path", opts.Paths.Curves, "error", err)
	}
	if runErr != nil {
		return summary, runErr
	}

	if err := WriteDatastore(out.Records()); err != nil {
		slog.Error("Failed to write frequency curves to SQLite", "error", err)
	}
	return summary, nil
}

func extract(ctx context.Context, source GraphSource, testID string, product catalog.Product) (Record, error) {
	graphURL, err := source.ResolveGraphURL(ctx, product.ID, product.Fullname, testID)
	if err != nil {
		return Record{}, fmt.Errorf("resolve: %w", err)
	}

	graph, err := source.FetchGraphData(ctx, graphURL)
	if err != nil {
		return Record{}, fmt.Errorf("fetch: %w", err)
	}

	rows, err := Reconcile(graph)
	if err != nil {
		return Record{}, fmt.Errorf("reconcile: %w", err)
	}

	slog.Debug("Reconciled frequency curve", "product", product.Fullname, "source_rows", len(graph.Data), "rows", len(rows))
	return Record{
		ID:       product.ID,
		Fullname: product.Fullname,
		Header:   AdjustHeader(graph.Header),
		Data:     rows,
	}, nil
}

func recordKey(r Record) string {
	return r.ID
}
