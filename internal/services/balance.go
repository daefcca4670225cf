package services

import (
	"context"
	"sort"

	"khata_ledger/internal/models"
	"khata_ledger/pkg/utils"

	"github.com/shopspring/decimal"
)

// RecentActivityLimit bounds the recent transactions in a balance summary.
const RecentActivityLimit = 20

// bucket accumulates per-counterparty totals, remembering the order in which
// counterparties were first seen.
type bucket struct {
	order []int
	byID  map[int]*models.CounterpartyBalance
}

func newBucket() *bucket {
	return &bucket{byID: make(map[int]*models.CounterpartyBalance)}
}

func (b *bucket) add(userID int, username string, rec models.ObligationRecord) {
	cp, ok := b.byID[userID]
	if !ok {
		cp = &models.CounterpartyBalance{
			UserID:   userID,
			Username: username,
			Total:    decimal.Zero,
			Records:  []models.ObligationRecord{},
		}
		b.byID[userID] = cp
		b.order = append(b.order, userID)
	}
	cp.Total = cp.Total.Add(rec.Amount)
	cp.Records = append(cp.Records, rec)
}

// sorted returns the counterparties by total, largest first. Equal totals
// keep first-seen order.
func (b *bucket) sorted() ([]models.CounterpartyBalance, decimal.Decimal) {
	out := make([]models.CounterpartyBalance, 0, len(b.order))
	total := decimal.Zero
	for _, id := range b.order {
		cp := b.byID[id]
		out = append(out, *cp)
		total = total.Add(cp.Total)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Total.GreaterThan(out[j].Total)
	})
	return out, total
}

// GetBalanceSummary nets what userID is owed and owes against every
// counterparty, from open khata entries and unpaid splits. It only reads.
func (l *Ledger) GetBalanceSummary(ctx context.Context, userID int) (models.BalanceSummary, error) {
	toTake, toReturn := newBucket(), newBucket()

	entries, err := l.store.ListOpenKhataEntries(ctx, userID)
	if err != nil {
		return models.BalanceSummary{}, internalError("failed to load khata entries", utils.ErrorHandler(err, "failed to load khata entries"))
	}
	for _, e := range entries {
		rec := models.ObligationRecord{
			Source: models.SourceKhata,
			ID:     e.ID,
			Title:  e.Reason,
			Amount: e.Amount,
			Date:   e.CreatedAt.Format("2006-01-02"),
		}
		switch userID {
		case e.LenderID:
			toTake.add(e.BorrowerID, e.BorrowerUsername, rec)
		case e.BorrowerID:
			toReturn.add(e.LenderID, e.LenderUsername, rec)
		}
	}

	splits, err := l.store.ListOpenSplits(ctx, userID)
	if err != nil {
		return models.BalanceSummary{}, internalError("failed to load splits", utils.ErrorHandler(err, "failed to load open splits"))
	}
	for _, s := range splits {
		if s.PayerID == s.ParticipantID {
			continue
		}
		txnID := s.TransactionID
		rec := models.ObligationRecord{
			Source:        models.SourceExpense,
			ID:            s.SplitID,
			TransactionID: &txnID,
			Title:         s.Title,
			Amount:        s.Amount,
			Date:          s.Date,
			Category:      s.Category,
		}
		switch userID {
		case s.PayerID:
			toTake.add(s.ParticipantID, s.ParticipantUsername, rec)
		case s.ParticipantID:
			toReturn.add(s.PayerID, s.PayerUsername, rec)
		}
	}

	recent, err := l.store.ListRecentTransactions(ctx, userID, RecentActivityLimit)
	if err != nil {
		return models.BalanceSummary{}, internalError("failed to load recent transactions", utils.ErrorHandler(err, "failed to load recent transactions"))
	}
	if recent == nil {
		recent = []models.Transaction{}
	}

	summary := models.BalanceSummary{
		UserID:             userID,
		RecentTransactions: recent,
	}
	summary.ToTakeWith, summary.TotalToTake = toTake.sorted()
	summary.ToReturnWith, summary.TotalToReturn = toReturn.sorted()
	return summary, nil
}
