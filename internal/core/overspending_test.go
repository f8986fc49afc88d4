package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverspendRule_FoodScenario(t *testing.T) {
	txs := append(SeedTransactions(), expense(NewDate(2025, 10, 26), "Food", 6000))

	alerts := DefaultOverspendRule().Check(txs)

	require.Len(t, alerts, 1)
	assert.Equal(t, "2025-10", alerts[0].Month)
	assert.Equal(t, "Food", alerts[0].Category)
	assert.Equal(t, int64(720000), alerts[0].Spent.Cents)
	assert.Equal(t, "Warning: You spent ₹7200.00 on Food in 2025-10, exceeding ₹5000.00!", alerts[0].Message())
}

func TestOverspendRule_ThresholdIsExclusive(t *testing.T) {
	txs := []Transaction{expense(NewDate(2025, 10, 1), "Rent", 5000)}
	assert.Empty(t, DefaultOverspendRule().Check(txs))

	txs = append(txs, Transaction{Date: NewDate(2025, 10, 2), Type: Expense, Category: "Rent", Amount: Money{Cents: 1}})
	assert.Len(t, DefaultOverspendRule().Check(txs), 1)
}

func TestOverspendRule_BucketsByMonth(t *testing.T) {
	txs := []Transaction{
		expense(NewDate(2025, 10, 31), "Food", 3000),
		expense(NewDate(2025, 11, 1), "Food", 3000),
	}
	assert.Empty(t, DefaultOverspendRule().Check(txs))
}

func TestOverspendRule_IncomeHandling(t *testing.T) {
	d := NewDate(2025, 10, 1)
	txs := []Transaction{
		income(d, "Side", 4000),
		expense(d, "Side", 2000),
		income(d, "Salary", 50000),
	}

	assert.Empty(t, DefaultOverspendRule().Check(txs), "expense-only rule ignores income")

	legacy := OverspendRule{Threshold: DefaultOverspendThreshold, IncludeIncome: true}
	alerts := legacy.Check(txs)
	require.Len(t, alerts, 1, "salary has no expense so only Side is flagged")
	assert.Equal(t, "Side", alerts[0].Category)
	assert.Equal(t, int64(600000), alerts[0].Spent.Cents)
}

func TestOverspendRule_OrderedOutput(t *testing.T) {
	rule := OverspendRule{Threshold: Money{Cents: 100}}
	txs := []Transaction{
		expense(NewDate(2025, 11, 1), "B", 2),
		expense(NewDate(2025, 10, 1), "Z", 2),
		expense(NewDate(2025, 10, 1), "A", 2),
	}
	alerts := rule.Check(txs)
	require.Len(t, alerts, 3)
	assert.Equal(t, []string{"A", "Z", "B"}, []string{alerts[0].Category, alerts[1].Category, alerts[2].Category})
}
