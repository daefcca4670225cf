package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type SplitDetail struct {
	ID            int             `json:"id" db:"id"`
	TransactionID int             `json:"transaction_id" db:"transaction_id"`
	UserID        int             `json:"user_id" db:"user_id"`
	Username      string          `json:"username,omitempty" db:"-"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	IsPaid        bool            `json:"is_paid" db:"is_paid"`
	PaidAt        *time.Time      `json:"paid_at" db:"paid_at"`
}

// OpenSplit is an unpaid split joined with its transaction and both parties.
// The participant is never the payer.
type OpenSplit struct {
	SplitID             int
	TransactionID       int
	Title               string
	Amount              decimal.Decimal
	Date                string
	Category            string
	PayerID             int
	PayerUsername       string
	ParticipantID       int
	ParticipantUsername string
}
