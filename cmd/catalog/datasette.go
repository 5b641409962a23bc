package catalog

import (
	hpcatalog "github.com/lepinkainen/hpdata/internal/catalog"
	"github.com/lepinkainen/hpdata/internal/cmdutil"
)

const productsSchema = `
CREATE TABLE IF NOT EXISTS products (
	product_id TEXT PRIMARY KEY,
	fullname TEXT NOT NULL,
	url TEXT,
	test_bench TEXT
);
`

// WriteDatastore stores products in the products table when the SQLite export is enabled.
func WriteDatastore(products []hpcatalog.Product) error {
	return cmdutil.WriteToDatastore(products, productsSchema, "products", "product descriptors", func(p hpcatalog.Product) []map[string]any {
		return []map[string]any{cmdutil.StructToMap(p)}
	})
}
