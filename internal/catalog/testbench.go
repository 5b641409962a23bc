package catalog

import (
	_ "embed"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/lepinkainen/hpdata/internal/errors"
)

// TestBench is the review layout version a product page follows.
type TestBench string

const (
	TestBenchV15 TestBench = "v1.5"
	TestBenchV16 TestBench = "v1.6"
	TestBenchV17 TestBench = "v1.7"
)

// FieldMap names the section identifiers holding the bass, mid and treble
// accuracy test groups in a document.
type FieldMap struct {
	Bass   int `yaml:"bass"`
	Mid    int `yaml:"mid"`
	Treble int `yaml:"treble"`
}

// IDs returns the section identifiers in bass, mid, treble order.
func (f FieldMap) IDs() [3]int {
	return [3]int{f.Bass, f.Mid, f.Treble}
}

//go:embed testbenches.yaml
var testBenchYAML []byte

var fieldMaps = mustParseFieldMaps(testBenchYAML)

func mustParseFieldMaps(data []byte) map[TestBench]FieldMap {
	maps, err := parseFieldMaps(data)
	if err != nil {
		panic(err)
	}
	return maps
}

func parseFieldMaps(data []byte) (map[TestBench]FieldMap, error) {
	var maps map[TestBench]FieldMap
	if err := yaml.Unmarshal(data, &maps); err != nil {
		return nil, fmt.Errorf("invalid test bench table: %w", err)
	}
	for tb, fm := range maps {
		if fm.Bass == 0 || fm.Mid == 0 || fm.Treble == 0 {
			return nil, fmt.Errorf("invalid test bench table: %s has an empty section id", tb)
		}
	}
	return maps, nil
}

// FieldMapFor returns the section identifiers for a test bench.
func FieldMapFor(tb TestBench) (FieldMap, error) {
	fm, ok := fieldMaps[tb]
	if !ok {
		return FieldMap{}, errors.NewUnknownTestBenchError(string(tb))
	}
	return fm, nil
}

// Known reports whether tb is one of the supported layout versions.
func (tb TestBench) Known() bool {
	_, ok := fieldMaps[tb]
	return ok
}

// TestBenches lists the supported layout versions in sorted order.
func TestBenches() []TestBench {
	out := make([]TestBench, 0, len(fieldMaps))
	for tb := range fieldMaps {
		out = append(out, tb)
	}
	slices.Sort(out)
	return out
}
