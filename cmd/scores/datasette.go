package scores

import "github.com/lepinkainen/hpdata/internal/cmdutil"

const scoresSchema = `
CREATE TABLE IF NOT EXISTS scores (
	product_id TEXT PRIMARY KEY,
	fullname TEXT NOT NULL,
	neutral_sound_score REAL,
	bass_accuracy_score REAL,
	bass_accuracy_description TEXT,
	mid_accuracy_score REAL,
	mid_accuracy_description TEXT,
	treble_accuracy_score REAL,
	treble_accuracy_description TEXT
);
`

// WriteDatastore stores records in the scores table when the SQLite export is enabled.
func WriteDatastore(records []Record) error {
	return cmdutil.WriteToDatastore(records, scoresSchema, "scores", "scored attributes", func(r Record) []map[string]any {
		return []map[string]any{cmdutil.StructToMap(r)}
	})
}
