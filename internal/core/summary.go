package core

import "sort"

// Totals holds the dashboard sums.
type Totals struct {
	Income  Money
	Expense Money
	Balance Money
}

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount Money
	Color  string
}

// DailyPoint is one point of the income/expense time series.
type DailyPoint struct {
	Date    Date
	Income  Money
	Expense Money
}

// MonthSummary holds per-type totals for one month key.
type MonthSummary struct {
	Month   string // YYYY-MM
	Income  Money
	Expense Money
}

// Snapshot is every derived view of a transaction collection, computed in a
// single recompute pass.
type Snapshot struct {
	Count      int
	Totals     Totals
	ByCategory []CategoryAmount
	Daily      []DailyPoint
	Monthly    []MonthSummary
	Alerts     []Alert
}

// ComputeTotals sums income and expense and derives the balance.
func ComputeTotals(txs []Transaction) Totals {
	var t Totals
	for _, tx := range txs {
		switch tx.Type {
		case Income:
			t.Income = t.Income.Add(tx.Amount)
		case Expense:
			t.Expense = t.Expense.Add(tx.Amount)
		}
	}
	t.Balance = t.Income.Sub(t.Expense)
	return t
}

// ExpenseByCategory groups expenses by category in first-appearance order.
// Each category gets its stable palette colour.
func ExpenseByCategory(txs []Transaction) []CategoryAmount {
	index := map[string]int{}
	var out []CategoryAmount
	for _, tx := range txs {
		if tx.Type != Expense {
			continue
		}
		i, ok := index[tx.Category]
		if !ok {
			i = len(out)
			index[tx.Category] = i
			out = append(out, CategoryAmount{Name: tx.Category, Color: CategoryColor(tx.Category)})
		}
		out[i].Amount = out[i].Amount.Add(tx.Amount)
	}
	return out
}

// DailySeries returns one point per distinct date, in chronological order.
func DailySeries(txs []Transaction) []DailyPoint {
	byDay := map[string]*DailyPoint{}
	for _, tx := range txs {
		key := tx.Date.String()
		p, ok := byDay[key]
		if !ok {
			p = &DailyPoint{Date: tx.Date}
			byDay[key] = p
		}
		switch tx.Type {
		case Income:
			p.Income = p.Income.Add(tx.Amount)
		case Expense:
			p.Expense = p.Expense.Add(tx.Amount)
		}
	}
	out := make([]DailyPoint, 0, len(byDay))
	for _, p := range byDay {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date.Time) })
	return out
}

// MonthlySummaries accumulates income and expense per month, oldest first.
func MonthlySummaries(txs []Transaction) []MonthSummary {
	byMonth := map[string]*MonthSummary{}
	for _, tx := range txs {
		key := tx.Date.MonthKey()
		m, ok := byMonth[key]
		if !ok {
			m = &MonthSummary{Month: key}
			byMonth[key] = m
		}
		switch tx.Type {
		case Income:
			m.Income = m.Income.Add(tx.Amount)
		case Expense:
			m.Expense = m.Expense.Add(tx.Amount)
		}
	}
	out := make([]MonthSummary, 0, len(byMonth))
	for _, m := range byMonth {
		out = append(out, *m)
	}
	// YYYY-MM keys sort chronologically
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// Summarize recomputes every derived view from scratch.
func Summarize(txs []Transaction, rule OverspendRule) Snapshot {
	return Snapshot{
		Count:      len(txs),
		Totals:     ComputeTotals(txs),
		ByCategory: ExpenseByCategory(txs),
		Daily:      DailySeries(txs),
		Monthly:    MonthlySummaries(txs),
		Alerts:     rule.Check(txs),
	}
}
