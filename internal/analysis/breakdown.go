// Package analysis aggregates extracted transaction records into a category
// breakdown. Sums are carried as decimals so that many small amounts never
// accumulate float drift.
package analysis

import (
	"fmt"
	"sort"
	"strings"

	"expenselens/internal/models"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Aggregate groups records by category, sums amounts per group and computes
// each group's percentage of total spend. Group totals and percentages are
// rounded to two decimal places. An empty record set yields an empty
// breakdown with zero total; a zero total yields all-zero percentages rather
// than a division by zero.
func Aggregate(records []models.TransactionRecord) models.CategoryBreakdown {
	sums := make(map[string]decimal.Decimal)
	for _, r := range records {
		sums[r.Category] = sums[r.Category].Add(r.Amount)
	}

	amounts := make(map[string]float64, len(sums))
	total := decimal.Zero
	for category, sum := range sums {
		rounded := sum.Round(2)
		amounts[category] = rounded.InexactFloat64()
		total = total.Add(rounded)
	}

	percentages := make(map[string]float64, len(sums))
	for category, sum := range sums {
		if total.IsPositive() {
			percentages[category] = sum.Round(2).Div(total).Mul(hundred).Round(2).InexactFloat64()
		} else {
			percentages[category] = 0
		}
	}

	return models.CategoryBreakdown{
		Amounts:      amounts,
		Percentages:  percentages,
		TotalExpense: total.Round(2).InexactFloat64(),
	}
}

// RenderBreakdown formats a breakdown as one line per category, descending by
// amount with ties broken by label. The order is deterministic so prompts
// built from it are reproducible.
func RenderBreakdown(b models.CategoryBreakdown) string {
	categories := make([]string, 0, len(b.Amounts))
	for category := range b.Amounts {
		categories = append(categories, category)
	}
	sort.Slice(categories, func(i, j int) bool {
		if b.Amounts[categories[i]] != b.Amounts[categories[j]] {
			return b.Amounts[categories[i]] > b.Amounts[categories[j]]
		}
		return categories[i] < categories[j]
	})

	var sb strings.Builder
	for _, category := range categories {
		fmt.Fprintf(&sb, "%s: %.2f (%.2f%%)\n", category, b.Amounts[category], b.Percentages[category])
	}
	fmt.Fprintf(&sb, "Total: %.2f\n", b.TotalExpense)
	return sb.String()
}
