package catalog

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"math"
)

// Score is a numeric measurement that may be missing. A missing value is
// held as NaN and stored as JSON null.
type Score float64

// MissingScore returns the sentinel for an absent measurement.
func MissingScore() Score {
	return Score(math.NaN())
}

// Missing reports whether s carries no measurement.
func (s Score) Missing() bool {
	return math.IsNaN(float64(s)) || math.IsInf(float64(s), 0)
}

// MarshalJSON implements json.Marshaler.
func (s Score) MarshalJSON() ([]byte, error) {
	if s.Missing() {
		return []byte("null"), nil
	}
	return json.Marshal(float64(s))
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Score) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*s = MissingScore()
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*s = Score(f)
	return nil
}

// Value implements driver.Valuer; a missing score is stored as NULL.
func (s Score) Value() (driver.Value, error) {
	if s.Missing() {
		return nil, nil
	}
	return float64(s), nil
}
