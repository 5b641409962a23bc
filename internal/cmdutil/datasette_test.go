package cmdutil

import (
	"database/sql"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/lepinkainen/hpdata/internal/testutil"
)

type datasetteRecord struct {
	ID       string
	Fullname string
	Points   []float64
}

const datasetteSchema = `
CREATE TABLE IF NOT EXISTS test_points (
	product_id TEXT NOT NULL,
	idx INTEGER NOT NULL,
	value REAL,
	PRIMARY KEY (product_id, idx)
);
`

func pointRows(item datasetteRecord) []map[string]any {
	rows := make([]map[string]any, 0, len(item.Points))
	for i, v := range item.Points {
		rows = append(rows, map[string]any{"product_id": item.ID, "idx": i, "value": v})
	}
	return rows
}

func countRows(t *testing.T, dbPath string) int {
	t.Helper()
	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM test_points").Scan(&count))
	return count
}

func TestWriteToDatastore_Disabled(t *testing.T) {
	env := testutil.NewTestEnv(t)
	viper.Reset()
	viper.Set("datasette.enabled", false)
	viper.Set("datasette.dbfile", env.Path("test.db"))
	t.Cleanup(viper.Reset)

	records := []datasetteRecord{{ID: "1", Points: []float64{1}}}
	require.NoError(t, WriteToDatastore(records, datasetteSchema, "test_points", "test points", pointRows))

	assert.False(t, env.FileExists("test.db"))
}

func TestWriteToDatastore_WritesRows(t *testing.T) {
	env := testutil.NewTestEnv(t)
	viper.Reset()
	t.Cleanup(viper.Reset)
	dbPath := testutil.SetupDatasetteDB(t, env)

	records := []datasetteRecord{
		{ID: "1", Points: []float64{1, 2, 3}},
		{ID: "2", Points: []float64{4}},
	}
	require.NoError(t, WriteToDatastore(records, datasetteSchema, "test_points", "test points", pointRows))
	assert.Equal(t, 4, countRows(t, dbPath))

	// A second export replaces the first.
	require.NoError(t, WriteToDatastore(records[1:], datasetteSchema, "test_points", "test points", pointRows))
	assert.Equal(t, 1, countRows(t, dbPath))
}

func TestWriteToDatastore_RequiresDBFile(t *testing.T) {
	viper.Reset()
	viper.Set("datasette.enabled", true)
	t.Cleanup(viper.Reset)

	err := WriteToDatastore([]datasetteRecord{{ID: "1"}}, datasetteSchema, "test_points", "test points", pointRows)
	assert.Error(t, err)
}
