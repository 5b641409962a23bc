package scores

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/lepinkainen/hpdata/internal/catalog"
)

const neutralSoundSelector = "div.scorecard-table > div.scorecard-row:first-child > div.scorecard-row-content > span.e-score_box.is-filled > span.e-score_box-value"

func sectionScoreSelector(id int) string {
	return fmt.Sprintf(`div.test_group[data-id="%d"] > div.test_group-header > span.test_result_score > span.e-score_box-value`, id)
}

func sectionDescriptionSelector(id int) string {
	return fmt.Sprintf(`div.test_group[data-id="%d"] > div.test_group-content > div.test_group-description > p`, id)
}

// ParseDocument extracts the scored attributes of product from a review page.
// Missing elements yield a missing score or an empty description; only an
// unknown test bench is an error.
func ParseDocument(product catalog.Product, html string) (Record, error) {
	fields, err := catalog.FieldMapFor(product.TestBench)
	if err != nil {
		return Record{}, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Record{}, fmt.Errorf("failed to parse review page: %w", err)
	}

	score := func(selector string) catalog.Score {
		return parseLeadingFloat(doc.Find(selector).Text())
	}
	description := func(id int) string {
		return strings.TrimSpace(doc.Find(sectionDescriptionSelector(id)).Text())
	}

	return Record{
		ID:                        product.ID,
		Fullname:                  product.Fullname,
		NeutralSoundScore:         score(neutralSoundSelector),
		BassAccuracyScore:         score(sectionScoreSelector(fields.Bass)),
		BassAccuracyDescription:   description(fields.Bass),
		MidAccuracyScore:          score(sectionScoreSelector(fields.Mid)),
		MidAccuracyDescription:    description(fields.Mid),
		TrebleAccuracyScore:       score(sectionScoreSelector(fields.Treble)),
		TrebleAccuracyDescription: description(fields.Treble),
	}, nil
}

var leadingFloat = regexp.MustCompile(`^[+-]?(?:Infinity|(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?)`)

// parseLeadingFloat reads the longest numeric prefix of s after leading
// whitespace, so "8.1 /10" is 8.1. Text without a numeric prefix is missing.
func parseLeadingFloat(s string) catalog.Score {
	prefix := leadingFloat.FindString(strings.TrimSpace(s))
	if prefix == "" {
		return catalog.MissingScore()
	}
	switch strings.TrimLeft(prefix, "+") {
	case "Infinity":
		return catalog.Score(math.Inf(1))
	case "-Infinity":
		return catalog.Score(math.Inf(-1))
	}
	// Out of range exponents come back as ±Inf alongside ErrRange.
	f, _ := strconv.ParseFloat(prefix, 64)
	return catalog.Score(f)
}
