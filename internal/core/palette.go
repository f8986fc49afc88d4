package core

import "hash/fnv"

// Chart colours for the series that are not per-category.
const (
	IncomeColor  = "#4CAF50"
	ExpenseColor = "#F44336"
)

var categoryPalette = []string{
	"#4E79A7", "#F28E2B", "#E15759", "#76B7B2", "#59A14F",
	"#EDC948", "#B07AA1", "#FF9DA7", "#9C755F", "#BAB0AC",
	"#1F77B4", "#FF7F0E", "#2CA02C", "#D62728", "#9467BD",
	"#8C564B",
}

// CategoryColor maps a category name to a palette colour. The same name
// always yields the same colour.
func CategoryColor(category string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(category))
	return categoryPalette[h.Sum32()%uint32(len(categoryPalette))]
}
