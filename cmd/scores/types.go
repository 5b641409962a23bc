package scores

import "github.com/lepinkainen/hpdata/internal/catalog"

// Record holds the scored attributes extracted from one review page.
// Scores missing from the page are stored as null.
type Record struct {
	ID                        string        `json:"id" db:"product_id"`
	Fullname                  string        `json:"fullname"`
	NeutralSoundScore         catalog.Score `json:"neutralSoundScore"`
	BassAccuracyScore         catalog.Score `json:"bassAccuracyScore"`
	BassAccuracyDescription   string        `json:"bassAccuracyDescription"`
	MidAccuracyScore          catalog.Score `json:"midAccuracyScore"`
	MidAccuracyDescription    string        `json:"midAccuracyDescription"`
	TrebleAccuracyScore       catalog.Score `json:"trebleAccuracyScore"`
	TrebleAccuracyDescription string        `json:"trebleAccuracyDescription"`
}
