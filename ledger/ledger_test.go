package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pfas/domain"
	"pfas/money"
)

func TestValidateBalanceAcceptsBalancedEntries(t *testing.T) {
	entries := []domain.JournalEntry{
		{Debit: money.MoneyFromInt(100), Credit: money.ZeroMoney},
		{Debit: money.ZeroMoney, Credit: money.MoneyFromInt(60)},
		{Debit: money.ZeroMoney, Credit: money.MoneyFromInt(40)},
	}
	require.NoError(t, validateBalance(entries))
}

func TestValidateBalanceRejectsEmptyEntries(t *testing.T) {
	err := validateBalance(nil)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindUnbalancedJournal))

	err = validateBalance([]domain.JournalEntry{})
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindUnbalancedJournal))
}

func TestValidateBalanceRejectsUnbalancedEntries(t *testing.T) {
	entries := []domain.JournalEntry{
		{Debit: money.MoneyFromInt(100), Credit: money.ZeroMoney},
		{Debit: money.ZeroMoney, Credit: money.MoneyFromInt(50)},
	}
	err := validateBalance(entries)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindUnbalancedJournal))
}

func TestNormalBalanceIsDebit(t *testing.T) {
	assert.True(t, normalBalanceIsDebit(domain.AccountAsset))
	assert.True(t, normalBalanceIsDebit(domain.AccountExpense))
	assert.False(t, normalBalanceIsDebit(domain.AccountLiability))
	assert.False(t, normalBalanceIsDebit(domain.AccountEquity))
	assert.False(t, normalBalanceIsDebit(domain.AccountIncome))
}
