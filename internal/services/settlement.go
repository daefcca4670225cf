package services

import (
	"context"
	"database/sql"
	"errors"

	"khata_ledger/internal/models"
	"khata_ledger/pkg/utils"

	"github.com/sirupsen/logrus"
)

// MarkSplitPaid settles a split on behalf of its participant. A split that is
// already paid is rejected rather than accepted twice.
func (l *Ledger) MarkSplitPaid(ctx context.Context, caller, splitID int) (models.SplitDetail, error) {
	split, err := l.loadSplit(ctx, splitID)
	if err != nil {
		return models.SplitDetail{}, err
	}

	if split.UserID != caller {
		return models.SplitDetail{}, authorizationError("this split does not belong to you", splitID)
	}
	if split.IsPaid {
		return models.SplitDetail{}, conflictError("split is already settled", splitID)
	}

	changed, err := l.store.MarkSplitPaid(ctx, splitID, l.now())
	if err != nil {
		return models.SplitDetail{}, internalError("failed to mark split as paid", utils.ErrorHandler(err, "failed to mark split as paid"))
	}
	if !changed {
		return models.SplitDetail{}, conflictError("split is already settled", splitID)
	}

	utils.Logger.WithFields(logrus.Fields{
		"split_id":       splitID,
		"transaction_id": split.TransactionID,
		"user_id":        caller,
	}).Info("split marked as paid")

	return l.loadSplit(ctx, splitID)
}

func (l *Ledger) loadSplit(ctx context.Context, splitID int) (models.SplitDetail, error) {
	split, err := l.store.GetSplit(ctx, splitID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.SplitDetail{}, notFoundError("split", splitID)
		}
		return models.SplitDetail{}, internalError("failed to load split", utils.ErrorHandler(err, "failed to load split"))
	}
	return split, nil
}

// SettleKhataEntry settles a lending entry. Either the lender or the borrower
// may confirm it; the entry records who did.
func (l *Ledger) SettleKhataEntry(ctx context.Context, caller, entryID int) (models.KhataBookEntry, error) {
	entry, err := l.loadKhataEntry(ctx, entryID)
	if err != nil {
		return models.KhataBookEntry{}, err
	}

	if entry.LenderID != caller && entry.BorrowerID != caller {
		return models.KhataBookEntry{}, authorizationError("only the lender or the borrower can settle this entry", entryID)
	}
	if entry.IsSettled {
		return models.KhataBookEntry{}, conflictError("entry is already settled", entryID)
	}

	changed, err := l.store.SettleKhataEntry(ctx, entryID, caller, l.now())
	if err != nil {
		return models.KhataBookEntry{}, internalError("failed to settle entry", utils.ErrorHandler(err, "failed to settle khata entry"))
	}
	if !changed {
		return models.KhataBookEntry{}, conflictError("entry is already settled", entryID)
	}

	utils.Logger.WithFields(logrus.Fields{
		"entry_id":   entryID,
		"settled_by": caller,
	}).Info("khata entry settled")

	return l.loadKhataEntry(ctx, entryID)
}

func (l *Ledger) loadKhataEntry(ctx context.Context, entryID int) (models.KhataBookEntry, error) {
	entry, err := l.store.GetKhataEntry(ctx, entryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.KhataBookEntry{}, notFoundError("khata entry", entryID)
		}
		return models.KhataBookEntry{}, internalError("failed to load khata entry", utils.ErrorHandler(err, "failed to load khata entry"))
	}
	return entry, nil
}
