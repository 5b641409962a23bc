package catalog

// RawCatalog is the products list response as returned by the table tool.
// Only the fields needed for normalization are decoded; the raw file on disk
// keeps everything.
type RawCatalog struct {
	Data struct {
		Products []RawProduct `json:"products"`
	} `json:"data"`
}

// RawProduct is one entry of the products list.
type RawProduct struct {
	ID       string `json:"id"`
	Fullname string `json:"fullname"`
	Page     *struct {
		URL string `json:"url"`
	} `json:"page"`
	Review *struct {
		TestBench *struct {
			ID          string `json:"id"`
			DisplayName string `json:"display_name"`
		} `json:"test_bench"`
	} `json:"review"`
}

func (p RawProduct) pageURL() string {
	if p.Page == nil {
		return ""
	}
	return p.Page.URL
}

func (p RawProduct) testBench() string {
	if p.Review == nil || p.Review.TestBench == nil {
		return ""
	}
	return p.Review.TestBench.DisplayName
}
