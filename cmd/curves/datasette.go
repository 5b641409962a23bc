package curves

import "github.com/lepinkainen/hpdata/internal/cmdutil"

const curvesSchema = `
CREATE TABLE IF NOT EXISTS curve_points (
	product_id TEXT NOT NULL,
	point INTEGER NOT NULL,
	fullname TEXT NOT NULL,
	frequency REAL NOT NULL,
	left_db REAL NOT NULL,
	right_db REAL NOT NULL,
	target_db REAL NOT NULL,
	PRIMARY KEY (product_id, point)
);
`

// WriteDatastore stores one row per curve point when the SQLite export is enabled.
// Points are keyed by their position so repeated frequencies are all kept.
func WriteDatastore(records []Record) error {
	return cmdutil.WriteToDatastore(records, curvesSchema, "curve_points", "frequency curves", func(r Record) []map[string]any {
		rows := make([]map[string]any, 0, len(r.Data))
		for i, point := range r.Data {
			rows = append(rows, map[string]any{
				"product_id": r.ID,
				"point":      i,
				"fullname":   r.Fullname,
				"frequency":  point[0],
				"left_db":    point[1],
				"right_db":   point[2],
				"target_db":  point[3],
			})
		}
		return rows
	})
}
