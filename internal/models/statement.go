package models

import (
	"github.com/shopspring/decimal"
)

// TransactionRecord is a single normalized debit extracted from a statement.
// Records are materialized once per parse, aggregated, and discarded; they are
// never persisted.
type TransactionRecord struct {
	Date     string // day + short month, e.g. "12 May"; year is not present in the source text
	Merchant string
	Amount   decimal.Decimal // always > 0
	Category string          // normalized, non-empty
}

// StatementMetadata holds the best-effort header fields from page one of a
// statement. Absent anchors leave zero values, never errors.
type StatementMetadata struct {
	Name               string
	Phone              string
	Email              string
	Timeframe          string
	TotalMoneyPaid     *float64
	TotalMoneyReceived *float64
}

// CategoryBreakdown maps normalized category labels to aggregated spend and
// its share of total spend. All values are rounded to two decimal places.
type CategoryBreakdown struct {
	Amounts      map[string]float64
	Percentages  map[string]float64
	TotalExpense float64
}
