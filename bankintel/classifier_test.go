package bankintel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeywordClassifierMatches(t *testing.T) {
	c := NewKeywordClassifier()
	cases := []struct {
		narration string
		want      Category
	}{
		{"NEFT SALARY CREDIT AUG", CategorySalary},
		{"ZERODHA BROKING LTD", CategoryInvestment},
		{"SIP AUTO DEBIT MUTUAL FUND", CategoryInvestment},
		{"HOME LOAN EMI", CategoryLoanEMI},
		{"BSES ELECTRICITY BILL", CategoryUtility},
		{"SAVINGS INTEREST CREDIT", CategoryInterest},
		{"UPI/unknownvendor/payment", CategoryTransfer},
		{"SOME RANDOM NARRATION", CategoryUncategorized},
	}
	for _, tc := range cases {
		got, err := c.Classify(tc.narration)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, tc.narration)
	}
}

func TestKeywordClassifierFirstMatchWins(t *testing.T) {
	c := NewKeywordClassifier()
	// contains both "salary" and "neft"; salary rule is earlier in the list.
	got, err := c.Classify("NEFT SALARY CREDIT")
	require.NoError(t, err)
	assert.Equal(t, CategorySalary, got)
}

func TestKeywordClassifierCaseInsensitive(t *testing.T) {
	c := NewKeywordClassifier()
	got, err := c.Classify("Loan Emi Payment")
	require.NoError(t, err)
	assert.Equal(t, CategoryLoanEMI, got)
}
