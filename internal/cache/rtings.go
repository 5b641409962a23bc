package cache

import (
	"context"
	"time"

	"github.com/lepinkainen/hpdata/internal/rtings"
)

type graphSource interface {
	ResolveGraphURL(ctx context.Context, productID, fullname, testID string) (string, error)
	FetchGraphData(ctx context.Context, path string) (rtings.GraphData, error)
}

type documentFetcher interface {
	FetchDocument(ctx context.Context, pageURL string) (string, error)
}

// GraphSource answers graph lookups from the cache while entries are fresh.
type GraphSource struct {
	Source graphSource
	DB     *CacheDB
	TTL    time.Duration
}

// ResolveGraphURL returns the cached graph location for a product and test.
func (s *GraphSource) ResolveGraphURL(ctx context.Context, productID, fullname, testID string) (string, error) {
	url, _, err := GetOrFetch(s.DB, graphURLTable, productID+"/"+testID, s.TTL, func() (string, error) {
		return s.Source.ResolveGraphURL(ctx, productID, fullname, testID)
	})
	return url, err
}

// FetchGraphData returns the cached graph data table at path.
func (s *GraphSource) FetchGraphData(ctx context.Context, path string) (rtings.GraphData, error) {
	data, _, err := GetOrFetch(s.DB, graphDataTable, path, s.TTL, func() (rtings.GraphData, error) {
		return s.Source.FetchGraphData(ctx, path)
	})
	return data, err
}

// DocumentFetcher answers review page requests from the cache while entries are fresh.
type DocumentFetcher struct {
	Fetcher documentFetcher
	DB      *CacheDB
	TTL     time.Duration
}

// FetchDocument returns the cached markup of pageURL.
func (f *DocumentFetcher) FetchDocument(ctx context.Context, pageURL string) (string, error) {
	html, _, err := GetOrFetch(f.DB, reviewPageTable, pageURL, f.TTL, func() (string, error) {
		return f.Fetcher.FetchDocument(ctx, pageURL)
	})
	return html, err
}
