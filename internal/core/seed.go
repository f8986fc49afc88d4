package core

// SeedTransactions returns the fixed sample records loaded at startup.
func SeedTransactions() []Transaction {
	tx := func(day int, typ TransactionType, category string, units int64, note string) Transaction {
		return Transaction{
			Date:     NewDate(2025, 10, day),
			Type:     typ,
			Category: category,
			Amount:   Money{Cents: units * 100},
			Note:     note,
		}
	}
	return []Transaction{
		tx(20, Income, "Salary", 50000, "October Salary"),
		tx(21, Expense, "Food", 1200, "Groceries"),
		tx(21, Expense, "Transport", 500, "Taxi/Bus"),
		tx(22, Income, "Freelance", 8000, "Project Payment"),
		tx(22, Expense, "Entertainment", 1500, "Movies & Games"),
		tx(23, Income, "Bonus", 5000, "Performance Bonus"),
		tx(23, Expense, "Bills", 2000, "Electricity + Internet"),
		tx(24, Expense, "Shopping", 2500, "Clothes"),
		tx(25, Income, "Investment", 4000, "Dividends"),
		tx(25, Expense, "Health", 1000, "Medicines"),
	}
}
