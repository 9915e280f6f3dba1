package money

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoneyRounding(t *testing.T) {
	m, err := NewMoney("100.005")
	require.NoError(t, err)
	assert.Equal(t, "100.00", m.String()) // round-half-to-even at .005 rounds down to the even cent

	m2, err := NewMoney("100.015")
	require.NoError(t, err)
	assert.Equal(t, "100.02", m2.String())
}

func TestMoneyArithmetic(t *testing.T) {
	a := MoneyFromInt(100)
	b := MoneyFromInt(40)
	assert.Equal(t, "140.00", a.Add(b).String())
	assert.Equal(t, "60.00", a.Sub(b).String())
	assert.True(t, a.GreaterThan(b))
	assert.True(t, b.LessThan(a))
	assert.Equal(t, "-100.00", a.Neg().String())
}

func TestMoneyEqualWithinTolerance(t *testing.T) {
	a := MoneyFromDecimal(decimal.NewFromFloat(100.00))
	b := MoneyFromDecimal(decimal.NewFromFloat(100.009))
	assert.True(t, a.Equal(b))

	c := MoneyFromDecimal(decimal.NewFromFloat(100.02))
	assert.False(t, a.Equal(c))
}

func TestMaxMinMoney(t *testing.T) {
	a := MoneyFromInt(100)
	b := MoneyFromInt(200)
	assert.Equal(t, b, MaxMoney(a, b))
	assert.Equal(t, a, MinMoney(a, b))
}

func TestUnitsGreaterThanMinusTolerance(t *testing.T) {
	held, err := NewUnits("100.0000")
	require.NoError(t, err)
	sell, err := NewUnits("100.0001")
	require.NoError(t, err)
	// sell is within tolerance of held, so held is coverable.
	assert.True(t, held.GreaterThanMinusTolerance(sell))

	tooMuch, err := NewUnits("100.01")
	require.NoError(t, err)
	assert.False(t, held.GreaterThanMinusTolerance(tooMuch))
}

func TestFYFromDate(t *testing.T) {
	cases := []struct {
		date string
		want string
	}{
		{"2024-04-01", "2024-25"},
		{"2025-03-31", "2024-25"},
		{"2024-03-31", "2023-24"},
	}
	for _, tc := range cases {
		d, err := time.Parse("2006-01-02", tc.date)
		require.NoError(t, err)
		assert.Equal(t, tc.want, FYFromDate(d).String())
	}
}

func TestFYStartEndContains(t *testing.T) {
	fy, err := ParseFY("2024-25")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC), fy.Start())
	assert.Equal(t, time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC), fy.End())
	assert.True(t, fy.Contains(time.Date(2024, time.December, 25, 0, 0, 0, 0, time.UTC)))
	assert.False(t, fy.Contains(time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2025-26", fy.AssessmentYear().String())
}

func TestDaysBetween(t *testing.T) {
	start := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 1)
	assert.Equal(t, 366, DaysBetween(start, end))
}
