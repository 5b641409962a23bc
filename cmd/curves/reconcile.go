package curves

import (
	"github.com/lepinkainen/hpdata/internal/errors"
	"github.com/lepinkainen/hpdata/internal/rtings"
)

const (
	frequencyColumn = "Frequency"
	targetColumn    = "Target Response"

	leftIndex     = 1
	rightIndex    = 2
	altLeftIndex  = 4
	altRightIndex = 5
)

// Reconcile reduces a graph data table to complete frequency, left, right,
// target rows. When both primary channel values of a row are missing the
// alternate pair is used instead; rows still missing a value are dropped.
func Reconcile(graph rtings.GraphData) ([][4]float64, error) {
	freqIdx := columnIndex(graph.Header, frequencyColumn)
	if freqIdx < 0 {
		return nil, errors.NewMissingFieldError("header." + frequencyColumn)
	}
	targetIdx := columnIndex(graph.Header, targetColumn)
	if targetIdx < 0 {
		return nil, errors.NewMissingFieldError("header." + targetColumn)
	}

	rows := make([][4]float64, 0, len(graph.Data))
	for _, row := range graph.Data {
		left, right := cell(row, leftIndex), cell(row, rightIndex)
		if left == nil && right == nil {
			left, right = cell(row, altLeftIndex), cell(row, altRightIndex)
		}

		values := [4]*float64{cell(row, freqIdx), left, right, cell(row, targetIdx)}
		complete := true
		var out [4]float64
		for i, v := range values {
			if v == nil {
				complete = false
				break
			}
			out[i] = *v
		}
		if complete {
			rows = append(rows, out)
		}
	}
	return rows, nil
}

// AdjustHeader returns header without the alternate channel columns.
func AdjustHeader(header []string) []string {
	out := make([]string, 0, len(header))
	for i, name := range header {
		if i == altLeftIndex || i == altRightIndex {
			continue
		}
		out = append(out, name)
	}
	return out
}

func columnIndex(header []string, name string) int {
	for i, h := range header {
		if h == name {
			return i
		}
	}
	return -1
}

// cell treats an index past the end of a short row as a missing value.
func cell(row []*float64, idx int) *float64 {
	if idx < 0 || idx >= len(row) {
		return nil
	}
	return row[idx]
}
