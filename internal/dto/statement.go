package dto

// StatementResponse is the parse result for an uploaded statement. Header
// fields are best-effort: empty strings or null totals mean the anchor was
// not found. An all-empty response with zero transactions usually means the
// upload was not a recognized statement.
type StatementResponse struct {
	Name               string             `json:"name"`
	Phone              string             `json:"phone"`
	Email              string             `json:"email"`
	Timeframe          string             `json:"timeframe"`
	TotalMoneyPaid     *float64           `json:"total_money_paid"`
	TotalMoneyReceived *float64           `json:"total_money_received"`
	TotalExpense       float64            `json:"total_expense"`
	Categories         map[string]float64 `json:"categories"`
	Percentages        map[string]float64 `json:"percentages"`
	TransactionCount   int                `json:"transaction_count"`
}
