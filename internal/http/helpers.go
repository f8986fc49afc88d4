package http

import (
	"strings"

	"fintrack/internal/core"
)

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}

// defaultCategories seed the category suggestions of the form.
var defaultCategories = []string{
	"Salary", "Freelance", "Bonus", "Investment",
	"Food", "Transport", "Entertainment", "Bills", "Shopping", "Health",
}

// categorySuggestions merges the default categories with every category
// already used, keeping first-seen order.
func categorySuggestions(txs []core.Transaction) []string {
	seen := make(map[string]bool, len(defaultCategories)+len(txs))
	out := make([]string, 0, len(defaultCategories))
	add := func(c string) {
		if c == "" || seen[c] {
			return
		}
		seen[c] = true
		out = append(out, c)
	}
	for _, c := range defaultCategories {
		add(c)
	}
	for _, tx := range txs {
		add(tx.Category)
	}
	return out
}

// transactionRow is one line of the transactions table.
type transactionRow struct {
	Date     string
	Type     string
	Category string
	Amount   string
	Note     string
	Income   bool
}

func newTransactionRows(txs []core.Transaction) []transactionRow {
	rows := make([]transactionRow, len(txs))
	for i, tx := range txs {
		rows[i] = transactionRow{
			Date:     tx.Date.String(),
			Type:     string(tx.Type),
			Category: tx.Category,
			Amount:   tx.Amount.Fixed(),
			Note:     tx.Note,
			Income:   tx.Type == core.Income,
		}
	}
	return rows
}

// totalsView feeds the totals partial.
type totalsView struct {
	Income   string
	Expense  string
	Balance  string
	Negative bool
}

func newTotalsView(t core.Totals) totalsView {
	return totalsView{
		Income:   t.Income.Display(),
		Expense:  t.Expense.Display(),
		Balance:  t.Balance.Display(),
		Negative: t.Balance.Cents < 0,
	}
}

// indexPage is the data of index.html.
type indexPage struct {
	Today      string
	Categories []string
	Rows       []transactionRow
	Totals     totalsView
	Alerts     []string
}

type alertJSON struct {
	Month     string     `json:"month"`
	Category  string     `json:"category"`
	Spent     core.Money `json:"spent"`
	Threshold core.Money `json:"threshold"`
	Message   string     `json:"message"`
}

func newAlertsJSON(alerts []core.Alert) []alertJSON {
	out := make([]alertJSON, len(alerts))
	for i, a := range alerts {
		out[i] = alertJSON{
			Month:     a.Month,
			Category:  a.Category,
			Spent:     a.Spent,
			Threshold: a.Threshold,
			Message:   a.Message(),
		}
	}
	return out
}

func alertMessages(alerts []core.Alert) []string {
	out := make([]string, len(alerts))
	for i, a := range alerts {
		out[i] = a.Message()
	}
	return out
}

type totalsJSON struct {
	Income         core.Money `json:"income"`
	Expense        core.Money `json:"expense"`
	Balance        core.Money `json:"balance"`
	IncomeDisplay  string     `json:"incomeDisplay"`
	ExpenseDisplay string     `json:"expenseDisplay"`
	BalanceDisplay string     `json:"balanceDisplay"`
}

func newTotalsJSON(t core.Totals) totalsJSON {
	return totalsJSON{
		Income:         t.Income,
		Expense:        t.Expense,
		Balance:        t.Balance,
		IncomeDisplay:  t.Income.Display(),
		ExpenseDisplay: t.Expense.Display(),
		BalanceDisplay: t.Balance.Display(),
	}
}

// chartDataset mirrors the Chart.js dataset shape.
type chartDataset struct {
	Label           string      `json:"label,omitempty"`
	Data            []float64   `json:"data"`
	BackgroundColor interface{} `json:"backgroundColor,omitempty"`
	BorderColor     string      `json:"borderColor,omitempty"`
}

type chartData struct {
	Labels   []string       `json:"labels"`
	Datasets []chartDataset `json:"datasets"`
}

// dashboardResponse carries every derived view of one snapshot.
type dashboardResponse struct {
	Count   int         `json:"count"`
	Totals  totalsJSON  `json:"totals"`
	Pie     chartData   `json:"pie"`
	Line    chartData   `json:"line"`
	Monthly chartData   `json:"monthly"`
	Alerts  []alertJSON `json:"alerts"`
}

func newDashboardResponse(snap core.Snapshot) dashboardResponse {
	pie := chartData{Labels: make([]string, 0, len(snap.ByCategory))}
	amounts := make([]float64, 0, len(snap.ByCategory))
	colors := make([]string, 0, len(snap.ByCategory))
	for _, c := range snap.ByCategory {
		pie.Labels = append(pie.Labels, c.Name)
		amounts = append(amounts, c.Amount.Float())
		colors = append(colors, c.Color)
	}
	pie.Datasets = []chartDataset{{Data: amounts, BackgroundColor: colors}}

	line := chartData{Labels: make([]string, 0, len(snap.Daily))}
	var dailyIncome, dailyExpense []float64
	for _, p := range snap.Daily {
		line.Labels = append(line.Labels, p.Date.String())
		dailyIncome = append(dailyIncome, p.Income.Float())
		dailyExpense = append(dailyExpense, p.Expense.Float())
	}
	line.Datasets = []chartDataset{
		{Label: string(core.Income), Data: nonNil(dailyIncome), BorderColor: core.IncomeColor},
		{Label: string(core.Expense), Data: nonNil(dailyExpense), BorderColor: core.ExpenseColor},
	}

	monthly := chartData{Labels: make([]string, 0, len(snap.Monthly))}
	var monthIncome, monthExpense []float64
	for _, m := range snap.Monthly {
		monthly.Labels = append(monthly.Labels, m.Month)
		monthIncome = append(monthIncome, m.Income.Float())
		monthExpense = append(monthExpense, m.Expense.Float())
	}
	monthly.Datasets = []chartDataset{
		{Label: string(core.Income), Data: nonNil(monthIncome), BackgroundColor: core.IncomeColor},
		{Label: string(core.Expense), Data: nonNil(monthExpense), BackgroundColor: core.ExpenseColor},
	}

	return dashboardResponse{
		Count:   snap.Count,
		Totals:  newTotalsJSON(snap.Totals),
		Pie:     pie,
		Line:    line,
		Monthly: monthly,
		Alerts:  newAlertsJSON(snap.Alerts),
	}
}

func nonNil(v []float64) []float64 {
	if v == nil {
		return []float64{}
	}
	return v
}
