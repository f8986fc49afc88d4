package core

import (
	"fmt"
	"sort"
)

// DefaultOverspendThreshold is the per-month, per-category limit (5000.00).
var DefaultOverspendThreshold = Money{Cents: 500000}

// OverspendRule flags (month, category) pairs whose accumulated amount
// exceeds Threshold.
//
// By default only Expense amounts are accumulated. With IncludeIncome set,
// amounts of every type are summed and a pair is flagged only when its
// category has at least one Expense anywhere in the collection.
type OverspendRule struct {
	Threshold     Money
	IncludeIncome bool
}

// DefaultOverspendRule returns the expense-only rule with the default threshold.
func DefaultOverspendRule() OverspendRule {
	return OverspendRule{Threshold: DefaultOverspendThreshold}
}

// Alert is one overspending notification.
type Alert struct {
	Month     string // YYYY-MM
	Category  string
	Spent     Money
	Threshold Money
}

// Message renders the user-facing warning.
func (a Alert) Message() string {
	return fmt.Sprintf("Warning: You spent %s on %s in %s, exceeding %s!",
		a.Spent.Display(), a.Category, a.Month, a.Threshold.Display())
}

type monthCategory struct {
	month    string
	category string
}

// Check returns at most one alert per qualifying (month, category) pair,
// ordered by month then category.
func (r OverspendRule) Check(txs []Transaction) []Alert {
	sums := map[monthCategory]Money{}
	hasExpense := map[string]bool{}
	for _, tx := range txs {
		if tx.Type == Expense {
			hasExpense[tx.Category] = true
		}
		if tx.Type != Expense && !r.IncludeIncome {
			continue
		}
		key := monthCategory{month: tx.Date.MonthKey(), category: tx.Category}
		sums[key] = sums[key].Add(tx.Amount)
	}

	var alerts []Alert
	for key, spent := range sums {
		if spent.Cents <= r.Threshold.Cents {
			continue
		}
		if !hasExpense[key.category] {
			continue
		}
		alerts = append(alerts, Alert{
			Month:     key.month,
			Category:  key.category,
			Spent:     spent,
			Threshold: r.Threshold,
		})
	}
	sort.Slice(alerts, func(i, j int) bool {
		if alerts[i].Month != alerts[j].Month {
			return alerts[i].Month < alerts[j].Month
		}
		return alerts[i].Category < alerts[j].Category
	})
	return alerts
}
