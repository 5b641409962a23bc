// Package catalog holds the normalized product descriptors shared by every
// extraction command, and the static table of test bench layouts.
package catalog

import (
	"fmt"

	"github.com/lepinkainen/hpdata/internal/fileutil"
)

// Product is the minimal identity and location record for one reviewed headphone.
type Product struct {
	ID        string    `json:"id" db:"product_id"`
	Fullname  string    `json:"fullname"`
	URL       string    `json:"url"`
	TestBench TestBench `json:"testBench"`
}

// LoadProducts reads a normalized product list from disk.
// An empty array is a valid, empty catalog; a missing or malformed file is an error.
func LoadProducts(path string) ([]Product, error) {
	products, err := fileutil.ReadJSONFile[[]Product](path)
	if err != nil {
		return nil, fmt.Errorf("failed to load product list: %w", err)
	}
	if products == nil {
		return nil, fmt.Errorf("failed to load product list: %s does not contain a JSON array", path)
	}
	return products, nil
}
