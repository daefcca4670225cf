package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type KhataBookEntry struct {
	ID               int             `json:"id" db:"id"`
	LenderID         int             `json:"lender_id" db:"lender_id"`
	LenderUsername   string          `json:"lender_username,omitempty" db:"-"`
	BorrowerID       int             `json:"borrower_id" db:"borrower_id"`
	BorrowerUsername string          `json:"borrower_username,omitempty" db:"-"`
	Amount           decimal.Decimal `json:"amount" db:"amount"`
	Reason           string          `json:"reason" db:"reason"`
	IsSettled        bool            `json:"is_settled" db:"is_settled"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
	SettledAt        *time.Time      `json:"settled_at" db:"settled_at"`
	SettledBy        *int            `json:"settled_by" db:"settled_by"`
}
