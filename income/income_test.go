package income

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pfas/domain"
)

func TestFyBoundsFormatsWindow(t *testing.T) {
	from, to := fyBounds("2024-25")
	assert.Equal(t, "2024-04-01", from)
	assert.Equal(t, "2025-03-31", to)
}

func TestFyBoundsInvalidFYReturnsEmpty(t *testing.T) {
	from, to := fyBounds("not-a-fy")
	assert.Empty(t, from)
	assert.Empty(t, to)
}

func TestFyBoundsTimeMatchesFyBounds(t *testing.T) {
	start, end := fyBoundsTime("2024-25")
	assert.Equal(t, 2024, start.Year())
	assert.Equal(t, 2025, end.Year())
}

func TestEquityRateType(t *testing.T) {
	assert.Equal(t, domain.RateFlat20, equityRateType(domain.AssetMFEquity, domain.RateFlat20, domain.RateSlab))
	assert.Equal(t, domain.RateFlat20, equityRateType(domain.AssetStock, domain.RateFlat20, domain.RateSlab))
	assert.Equal(t, domain.RateFlat20, equityRateType(domain.AssetSGB, domain.RateFlat20, domain.RateSlab))
	assert.Equal(t, domain.RateSlab, equityRateType(domain.AssetMFDebt, domain.RateFlat20, domain.RateSlab))
}

func TestAssetClassGrouping(t *testing.T) {
	assert.Equal(t, "Equity Mutual Funds", assetClassGrouping(domain.AssetMFEquity))
	assert.Equal(t, "Debt Mutual Funds", assetClassGrouping(domain.AssetMFDebt))
	assert.Equal(t, "Indian Listed Equity", assetClassGrouping(domain.AssetStock))
	assert.Equal(t, string(domain.AssetSGB), assetClassGrouping(domain.AssetSGB))
}
