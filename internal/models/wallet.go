package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet is kept one-to-one with a user. Nothing in the ledger writes to the
// balance yet.
type Wallet struct {
	ID        int             `json:"id,omitempty" db:"id,omitempty"`
	UserID    int             `json:"user_id,omitempty" db:"user_id,omitempty"`
	Balance   decimal.Decimal `json:"balance" db:"balance"`
	CreatedAt time.Time       `json:"created_at,omitempty" db:"created_at,omitempty"`
}
