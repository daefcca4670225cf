package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TransactionPersonal = "personal"
	TransactionGroup    = "group"
	TransactionLending  = "lending"
)

func ValidTransactionType(t string) bool {
	switch t {
	case TransactionPersonal, TransactionGroup, TransactionLending:
		return true
	}
	return false
}

type Transaction struct {
	ID              int             `json:"id" db:"id"`
	Title           string          `json:"title" db:"title"`
	Amount          decimal.Decimal `json:"amount" db:"amount"`
	CategoryID      *int            `json:"category_id" db:"category_id"`
	CategoryName    string          `json:"category,omitempty" db:"-"`
	TransactionType string          `json:"transaction_type" db:"transaction_type"`
	PaidBy          int             `json:"paid_by" db:"paid_by"`
	PaidByUsername  string          `json:"paid_by_username,omitempty" db:"-"`
	GroupID         *int            `json:"group_id" db:"group_id"`
	Note            string          `json:"note" db:"note"`
	Mood            *string         `json:"mood" db:"mood"`
	Date            string          `json:"date" db:"date"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	Splits          []SplitDetail   `json:"splits" db:"-"`
}
