// Package money provides the fixed-point decimal primitives used across the
// ledger: monetary amounts (2 fractional digits), unit quantities (4
// fractional digits, for fund/stock holdings), and financial-year
// arithmetic. Nothing here uses float64 except where explicitly noted.
package money

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// unitScale and moneyScale match spec.md §3: 4 fractional digits for unit
// quantities, 2 for monetary amounts.
const (
	unitScale  = 4
	moneyScale = 2
)

// UnitTolerance and MoneyTolerance are the comparison tolerances spec.md §3
// calls out: 0.0001 for units, 0.01 for money.
var (
	UnitTolerance  = decimal.New(1, -4)
	MoneyTolerance = decimal.New(1, -2)
)

// Money is a monetary amount rounded to 2 fractional digits using
// banker's rounding (round-half-to-even) at every boundary.
type Money struct {
	d decimal.Decimal
}

// NewMoney builds a Money from a decimal string, rounding half-to-even to
// 2 fractional digits.
func NewMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("money: invalid amount %q: %w", s, err)
	}
	return Money{d: d.RoundBank(moneyScale)}, nil
}

// MoneyFromDecimal wraps an existing decimal.Decimal, rounding it.
func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money{d: d.RoundBank(moneyScale)}
}

// MoneyFromInt builds a Money for a whole-rupee amount.
func MoneyFromInt(v int64) Money {
	return Money{d: decimal.NewFromInt(v)}
}

// Zero is the additive identity.
var ZeroMoney = Money{d: decimal.Zero}

func (m Money) Decimal() decimal.Decimal { return m.d }

func (m Money) Add(o Money) Money { return MoneyFromDecimal(m.d.Add(o.d)) }
func (m Money) Sub(o Money) Money { return MoneyFromDecimal(m.d.Sub(o.d)) }
func (m Money) Neg() Money        { return MoneyFromDecimal(m.d.Neg()) }

// Mul multiplies by a unitless decimal factor (e.g. a tax rate) and rounds
// the result to money scale.
func (m Money) Mul(factor decimal.Decimal) Money {
	return MoneyFromDecimal(m.d.Mul(factor))
}

func (m Money) IsZero() bool         { return m.d.IsZero() }
func (m Money) IsNegative() bool     { return m.d.IsNegative() }
func (m Money) IsPositive() bool     { return m.d.IsPositive() }
func (m Money) GreaterThan(o Money) bool { return m.d.GreaterThan(o.d) }
func (m Money) LessThan(o Money) bool    { return m.d.LessThan(o.d) }
func (m Money) Cmp(o Money) int          { return m.d.Cmp(o.d) }

// Equal compares within MoneyTolerance, per spec.md §3.
func (m Money) Equal(o Money) bool {
	diff := m.d.Sub(o.d).Abs()
	return diff.LessThanOrEqual(MoneyTolerance)
}

// Max returns whichever of m, o the tax calculator would treat as larger.
func MaxMoney(a, b Money) Money {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

func MinMoney(a, b Money) Money {
	if a.LessThan(b) {
		return a
	}
	return b
}

func (m Money) String() string { return m.d.StringFixed(moneyScale) }

// Value / Scan implement database/sql so Money can round-trip through the
// store layer as a TEXT column (decimal.Decimal does the same internally;
// we store money and units as canonical fixed-point strings rather than
// floats to avoid any binary float round-trip).
func (m Money) Value() (driver.Value, error) { return m.d.StringFixed(moneyScale), nil }

func (m *Money) Scan(src interface{}) error {
	var s string
	switch v := src.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	case nil:
		m.d = decimal.Zero
		return nil
	default:
		return fmt.Errorf("money: cannot scan %T", src)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("money: scan %q: %w", s, err)
	}
	m.d = d.RoundBank(moneyScale)
	return nil
}

// Units is a quantity of fund/stock units, 4 fractional digits.
type Units struct {
	d decimal.Decimal
}

func NewUnits(s string) (Units, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Units{}, fmt.Errorf("money: invalid units %q: %w", s, err)
	}
	return Units{d: d.RoundBank(unitScale)}, nil
}

func UnitsFromDecimal(d decimal.Decimal) Units { return Units{d: d.RoundBank(unitScale)} }

var ZeroUnits = Units{d: decimal.Zero}

func (u Units) Decimal() decimal.Decimal { return u.d }
func (u Units) Add(o Units) Units        { return UnitsFromDecimal(u.d.Add(o.d)) }
func (u Units) Sub(o Units) Units        { return UnitsFromDecimal(u.d.Sub(o.d)) }
func (u Units) IsZero() bool             { return u.d.IsZero() }
func (u Units) IsNegative() bool         { return u.d.IsNegative() }
func (u Units) GreaterThan(o Units) bool { return u.d.GreaterThan(o.d) }
func (u Units) LessThan(o Units) bool    { return u.d.LessThan(o.d) }
func (u Units) GreaterThanOrEqual(o Units) bool { return u.d.GreaterThanOrEqual(o.d) }

// Equal compares within UnitTolerance, per spec.md §3.
func (u Units) Equal(o Units) bool {
	diff := u.d.Sub(o.d).Abs()
	return diff.LessThanOrEqual(UnitTolerance)
}

// GreaterThanMinusTolerance reports u >= o - UnitTolerance, the comparison
// the cost-basis tracker uses to decide whether a sell is coverable
// ("units_to_sell - 0.0001" in spec.md §4.3).
func (u Units) GreaterThanMinusTolerance(o Units) bool {
	return u.d.GreaterThanOrEqual(o.d.Sub(UnitTolerance))
}

func (u Units) String() string { return u.d.StringFixed(unitScale) }

func (u Units) Value() (driver.Value, error) { return u.d.StringFixed(unitScale), nil }

func (u *Units) Scan(src interface{}) error {
	var s string
	switch v := src.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	case nil:
		u.d = decimal.Zero
		return nil
	default:
		return fmt.Errorf("money: cannot scan %T", src)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("money: scan %q: %w", s, err)
	}
	u.d = d.RoundBank(unitScale)
	return nil
}

// FY is an Indian financial year, April 1 of Year to March 31 of Year+1.
// Rendered "YYYY-YY".
type FY struct {
	// StartYear is the calendar year the FY begins in (e.g. 2024 for FY 2024-25).
	StartYear int
}

// FYFromDate derives the financial year a date falls in. Never stored
// redundantly alongside the date it was derived from (spec.md §3).
func FYFromDate(t time.Time) FY {
	y := t.Year()
	if t.Month() < time.April {
		y--
	}
	return FY{StartYear: y}
}

// ParseFY parses the "YYYY-YY" rendering back into an FY.
func ParseFY(s string) (FY, error) {
	var y int
	var short int
	if _, err := fmt.Sscanf(s, "%d-%d", &y, &short); err != nil {
		return FY{}, fmt.Errorf("money: invalid financial year %q: %w", s, err)
	}
	return FY{StartYear: y}, nil
}

func (f FY) String() string {
	return fmt.Sprintf("%04d-%02d", f.StartYear, (f.StartYear+1)%100)
}

// Start returns 1-Apr of the FY, End returns 31-Mar of the following year.
func (f FY) Start() time.Time {
	return time.Date(f.StartYear, time.April, 1, 0, 0, 0, 0, time.UTC)
}

func (f FY) End() time.Time {
	return time.Date(f.StartYear+1, time.March, 31, 0, 0, 0, 0, time.UTC)
}

func (f FY) Contains(t time.Time) bool {
	return !t.Before(f.Start()) && !t.After(f.End())
}

// AssessmentYear is the FY after which this income is assessed, e.g. FY
// 2024-25 has AY 2025-26.
func (f FY) AssessmentYear() FY { return FY{StartYear: f.StartYear + 1} }

// DaysBetween returns the whole-day difference used for holding-period
// calculations (spec.md §4.3): (sellDate - acquisitionDate).Days, strictly
// greater-than compared against a threshold.
func DaysBetween(earlier, later time.Time) int {
	d := later.Sub(earlier)
	return int(d.Hours() / 24)
}
