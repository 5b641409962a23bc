package cache

// SQL schemas for cache tables
// All cache tables use "cache_key" as the primary key column for consistency

// GraphURLCacheSchema maps product and test ids to a graph data location
const GraphURLCacheSchema = `
CREATE TABLE IF NOT EXISTS graph_url_cache (
	cache_key TEXT PRIMARY KEY NOT NULL,
	data TEXT NOT NULL,
	cached_at DATETIME NOT NULL
);
`

// GraphDataCacheSchema holds downloaded graph data tables keyed by location
const GraphDataCacheSchema = `
CREATE TABLE IF NOT EXISTS graph_data_cache (
	cache_key TEXT PRIMARY KEY NOT NULL,
	data TEXT NOT NULL,
	cached_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_graph_data_cached_at ON graph_data_cache(cached_at);
`

// ReviewPageCacheSchema holds review page markup keyed by page URL
const ReviewPageCacheSchema = `
CREATE TABLE IF NOT EXISTS review_page_cache (
	cache_key TEXT PRIMARY KEY NOT NULL,
	data TEXT NOT NULL,
	cached_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_review_page_cached_at ON review_page_cache(cached_at);
`

const (
	graphURLTable   = "graph_url_cache"
	graphDataTable  = "graph_data_cache"
	reviewPageTable = "review_page_cache"
)

// AllCacheSchemas contains all cache table schemas for easy initialization
var AllCacheSchemas = []string{
	GraphURLCacheSchema,
	GraphDataCacheSchema,
	ReviewPageCacheSchema,
}

// ValidCacheTableNames is the whitelist of allowed cache table names
var ValidCacheTableNames = map[string]bool{
	graphURLTable:   true,
	graphDataTable:  true,
	reviewPageTable: true,
}

// Sources maps the names accepted by the invalidate command to their tables.
var Sources = map[string][]string{
	"graph":  {graphURLTable, graphDataTable},
	"review": {reviewPageTable},
	"all":    {graphURLTable, graphDataTable, reviewPageTable},
}
