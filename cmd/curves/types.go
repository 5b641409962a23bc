package curves

// Record holds the reconciled frequency response of one product. Each data
// row is frequency, left, right and target response.
type Record struct {
	ID       string       `json:"id"`
	Fullname string       `json:"fullname"`
	Header   []string     `json:"header"`
	Data     [][4]float64 `json:"data"`
}
