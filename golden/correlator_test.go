package golden

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"pfas/domain"
	"pfas/money"
)

func defaultTolerance() domain.ToleranceConfig {
	return domain.ToleranceConfig{
		AbsoluteTolerance:   decimal.NewFromInt(10),
		PercentageTolerance: decimal.NewFromFloat(0.01),
		WarningThreshold:    decimal.NewFromInt(100),
		ErrorThreshold:      decimal.NewFromInt(1000),
		CriticalThreshold:   decimal.NewFromInt(5000),
	}
}

func TestHoldingKeyPriority(t *testing.T) {
	assert.Equal(t, "isin:INE123", holdingKey("INE123", "FOLIO1", "SYM", "Name"))
	assert.Equal(t, "folio:FOLIO1", holdingKey("", "FOLIO1", "SYM", "Name"))
	assert.Equal(t, "symbol:SYM", holdingKey("", "", "SYM", "Name"))
	assert.Equal(t, "name:Name", holdingKey("", "", "", "Name"))
}

func TestClassifyExactMatch(t *testing.T) {
	result, severity := classify(money.ZeroMoney, money.MoneyFromInt(100000), defaultTolerance())
	assert.Equal(t, domain.MatchExact, result)
	assert.Equal(t, domain.SeverityInfo, severity)
}

func TestClassifyWithinAbsoluteTolerance(t *testing.T) {
	diff := money.MoneyFromInt(5) // within AbsoluteTolerance of 10
	result, _ := classify(diff, money.MoneyFromInt(100000), defaultTolerance())
	assert.Equal(t, domain.MatchWithinTolerance, result)
}

func TestClassifyWithinPercentageTolerance(t *testing.T) {
	// 1% of 100000 = 1000, within PercentageTolerance even though it exceeds AbsoluteTolerance.
	diff := money.MoneyFromInt(900)
	result, severity := classify(diff, money.MoneyFromInt(100000), defaultTolerance())
	assert.Equal(t, domain.MatchWithinTolerance, result)
	assert.Equal(t, domain.SeverityWarning, severity) // 900 >= WarningThreshold(100)
}

func TestClassifyMismatchSeverityEscalates(t *testing.T) {
	tol := defaultTolerance()

	_, warnSeverity := classify(money.MoneyFromInt(2500), money.MoneyFromInt(10000), tol)
	assert.Equal(t, domain.SeverityError, warnSeverity) // 2500 >= ErrorThreshold(1000)

	_, critSeverity := classify(money.MoneyFromInt(6000), money.MoneyFromInt(10000), tol)
	assert.Equal(t, domain.SeverityCritical, critSeverity)

	result, _ := classify(money.MoneyFromInt(2500), money.MoneyFromInt(10000), tol)
	assert.Equal(t, domain.MatchMismatch, result)
}

func TestWithinToleranceZeroGoldenValue(t *testing.T) {
	tol := defaultTolerance()
	assert.False(t, withinTolerance(decimal.NewFromInt(20), money.ZeroMoney, tol))
	assert.True(t, withinTolerance(decimal.NewFromInt(5), money.ZeroMoney, tol))
}
