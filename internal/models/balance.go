package models

import "github.com/shopspring/decimal"

const (
	SourceKhata   = "khata"
	SourceExpense = "expense"
)

// ObligationRecord is one outstanding khata entry or unpaid split behind a
// counterparty total.
type ObligationRecord struct {
	Source        string          `json:"type"`
	ID            int             `json:"id"`
	TransactionID *int            `json:"transaction_id,omitempty"`
	Title         string          `json:"title"`
	Amount        decimal.Decimal `json:"amount"`
	Date          string          `json:"date"`
	Category      string          `json:"category,omitempty"`
}

type CounterpartyBalance struct {
	UserID   int                `json:"user_id"`
	Username string             `json:"username"`
	Total    decimal.Decimal    `json:"total"`
	Records  []ObligationRecord `json:"records"`
}

type BalanceSummary struct {
	UserID             int                   `json:"user_id"`
	TotalToTake        decimal.Decimal       `json:"total_to_take"`
	TotalToReturn      decimal.Decimal       `json:"total_to_return"`
	ToTakeWith         []CounterpartyBalance `json:"to_take_with"`
	ToReturnWith       []CounterpartyBalance `json:"to_return_with"`
	RecentTransactions []Transaction         `json:"recent_transactions"`
}
