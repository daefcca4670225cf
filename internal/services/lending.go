package services

import (
	"context"
	"strings"

	"khata_ledger/internal/models"
	"khata_ledger/pkg/utils"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type CreateLendingInput struct {
	BorrowerID int             `json:"borrower_id"`
	Amount     decimal.Decimal `json:"amount"`
	Reason     string          `json:"reason"`
}

// CreateLendingEntry records that lender gave money to borrower outside of
// any shared expense. Both users must exist; no friendship is required.
func (l *Ledger) CreateLendingEntry(ctx context.Context, lender int, in CreateLendingInput) (models.KhataBookEntry, error) {
	in.Reason = strings.TrimSpace(in.Reason)
	if !in.Amount.IsPositive() {
		return models.KhataBookEntry{}, validationError("amount", "amount must be greater than 0")
	}
	if !isCents(in.Amount) {
		return models.KhataBookEntry{}, validationError("amount", "amount must have at most 2 decimal places")
	}
	if in.Reason == "" {
		return models.KhataBookEntry{}, validationError("reason", "reason is required")
	}
	if in.BorrowerID == lender {
		return models.KhataBookEntry{}, validationError("borrower_id", "lender and borrower must be different users")
	}

	lenderUser, err := l.lookupUser(ctx, lender)
	if err != nil {
		return models.KhataBookEntry{}, err
	}
	borrower, err := l.lookupUser(ctx, in.BorrowerID)
	if err != nil {
		return models.KhataBookEntry{}, err
	}

	entry := models.KhataBookEntry{
		LenderID:         lender,
		LenderUsername:   lenderUser.Username,
		BorrowerID:       in.BorrowerID,
		BorrowerUsername: borrower.Username,
		Amount:           in.Amount,
		Reason:           in.Reason,
		CreatedAt:        l.now(),
	}
	if err := l.store.CreateKhataEntry(ctx, &entry); err != nil {
		return models.KhataBookEntry{}, internalError("failed to create khata entry", utils.ErrorHandler(err, "failed to create khata entry"))
	}

	utils.Logger.WithFields(logrus.Fields{
		"entry_id": entry.ID,
		"lender":   lender,
		"borrower": in.BorrowerID,
		"amount":   entry.Amount.StringFixed(2),
	}).Info("khata entry created")

	return entry, nil
}

// ListKhataEntries returns the caller's khata history on both sides, settled
// entries included, newest first.
func (l *Ledger) ListKhataEntries(ctx context.Context, caller int) ([]models.KhataBookEntry, error) {
	entries, err := l.store.ListKhataEntries(ctx, caller)
	if err != nil {
		return nil, internalError("failed to list khata entries", utils.ErrorHandler(err, "failed to list khata entries"))
	}
	if entries == nil {
		entries = []models.KhataBookEntry{}
	}
	return entries, nil
}
