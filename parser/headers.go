package parser

import "strings"

// DetectHeaderRow scores the first maxRows rows by keyword overlap against
// candidateKeywords and returns the best-scoring row index, the
// bank-statement header-detection strategy spec.md §4.5 step 1 describes.
// RTA files (CAMS, Karvy, Zerodha) use a fixed offset instead — see
// FixedHeaderOffsets.
func DetectHeaderRow(rows [][]string, candidateKeywords []string, maxRows int) int {
	best, bestScore := 0, -1
	limit := maxRows
	if limit > len(rows) {
		limit = len(rows)
	}
	for i := 0; i < limit; i++ {
		score := scoreRow(rows[i], candidateKeywords)
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	return best
}

func scoreRow(row []string, keywords []string) int {
	score := 0
	for _, cell := range row {
		lc := strings.ToLower(strings.TrimSpace(cell))
		for _, kw := range keywords {
			if strings.Contains(lc, kw) {
				score++
			}
		}
	}
	return score
}

// FixedHeaderOffsets are the documented row offsets for RTA statement
// exports (spec.md §4.5 step 1): "CAMS row 4 = index 3; Karvy row 5 =
// index 4; Zerodha new-format row 15 = index 14".
var FixedHeaderOffsets = map[string]int{
	"cams":          3,
	"karvy":         4,
	"zerodha":       14,
}

// ClassifyBySign applies spec.md §4.5 step 3's unit-sign rule: positive
// units is a buy, negative a sell, zero a tax/misc event.
func ClassifyBySign(units float64) string {
	switch {
	case units > 0:
		return "BUY"
	case units < 0:
		return "SELL"
	default:
		return "MISC"
	}
}

// ClassifyByKeyword looks description up against a classifier, falling
// back to unit sign — combining spec.md §4.5 step 3's "description
// keywords plus unit sign" rule.
func ClassifyByKeyword(description string, units float64, keywordMap map[string]string) string {
	lc := strings.ToLower(description)
	for kw, kind := range keywordMap {
		if strings.Contains(lc, kw) {
			return kind
		}
	}
	return ClassifyBySign(units)
}
