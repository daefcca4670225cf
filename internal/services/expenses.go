package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"khata_ledger/internal/models"
	"khata_ledger/pkg/utils"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	SplitEqual  = "equal"
	SplitCustom = "custom"
)

// SplitTolerance is the largest gap between the custom amounts and the
// transaction total that is still accepted. The gap is moved onto the
// payer's split.
var SplitTolerance = decimal.New(1, -2)

type ParticipantInput struct {
	UserID int              `json:"user_id"`
	Amount *decimal.Decimal `json:"amount,omitempty"`
}

type CreateExpenseInput struct {
	Title           string             `json:"title"`
	Amount          decimal.Decimal    `json:"amount"`
	CategoryID      *int               `json:"category_id,omitempty"`
	GroupID         *int               `json:"group_id,omitempty"`
	Note            string             `json:"note,omitempty"`
	Mood            *string            `json:"mood,omitempty"`
	TransactionType string             `json:"transaction_type,omitempty"`
	SplitType       string             `json:"split_type"`
	Participants    []ParticipantInput `json:"participants"`
}

// Share is one participant's portion of a transaction amount.
type Share struct {
	UserID int
	Amount decimal.Decimal
}

var cent = decimal.New(1, -2)

func isCents(d decimal.Decimal) bool {
	return d.Equal(d.Round(2))
}

// AllocateEqual divides amount between the payer and others in whole cents.
// Every share starts at amount/n rounded down, then the leftover cents are
// handed out one at a time, payer first, so no two shares differ by more than
// a cent and the shares always add up to amount. The payer's share comes
// first.
func AllocateEqual(amount decimal.Decimal, payer int, others []int) []Share {
	n := int64(len(others) + 1)
	base := amount.Div(decimal.NewFromInt(n)).RoundDown(2)
	leftover := amount.Sub(base.Mul(decimal.NewFromInt(n))).Div(cent).IntPart()

	shares := make([]Share, 0, n)
	for _, id := range append([]int{payer}, others...) {
		share := base
		if leftover > 0 {
			share = share.Add(cent)
			leftover--
		}
		shares = append(shares, Share{UserID: id, Amount: share})
	}
	return shares
}

// AllocateCustom checks caller supplied amounts against the total. Every
// participant, the payer included, needs exactly one amount.
func AllocateCustom(amount decimal.Decimal, payer int, participants []ParticipantInput) ([]Share, error) {
	var (
		payerShare *Share
		others     []Share
		sum        = decimal.Zero
		seen       = make(map[int]bool, len(participants))
	)

	for _, p := range participants {
		if seen[p.UserID] {
			return nil, validationError("participants", fmt.Sprintf("user %d is listed more than once", p.UserID))
		}
		seen[p.UserID] = true

		if p.Amount == nil {
			return nil, validationError("participants", fmt.Sprintf("missing custom amount for user %d", p.UserID))
		}
		if p.Amount.IsNegative() {
			return nil, validationError("participants", fmt.Sprintf("custom amount for user %d must not be negative", p.UserID))
		}
		if !isCents(*p.Amount) {
			return nil, validationError("participants", fmt.Sprintf("custom amount for user %d has more than 2 decimal places", p.UserID))
		}

		sum = sum.Add(*p.Amount)
		if p.UserID == payer {
			payerShare = &Share{UserID: payer, Amount: *p.Amount}
			continue
		}
		others = append(others, Share{UserID: p.UserID, Amount: *p.Amount})
	}

	if payerShare == nil {
		return nil, validationError("participants", "custom split must include the payer's own amount")
	}

	diff := amount.Sub(sum)
	if diff.Abs().GreaterThan(SplitTolerance) {
		return nil, validationError("participants", fmt.Sprintf("split amounts add up to %s, expected %s", sum.StringFixed(2), amount.StringFixed(2)))
	}
	payerShare.Amount = payerShare.Amount.Add(diff)
	if payerShare.Amount.IsNegative() {
		return nil, validationError("participants", "payer's amount cannot absorb the rounding difference")
	}

	return append([]Share{*payerShare}, others...), nil
}

func validateExpenseInput(in *CreateExpenseInput) error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return validationError("title", "title is required")
	}
	if !in.Amount.IsPositive() {
		return validationError("amount", "amount must be greater than 0")
	}
	if !isCents(in.Amount) {
		return validationError("amount", "amount must have at most 2 decimal places")
	}

	if in.SplitType != SplitEqual && in.SplitType != SplitCustom {
		return validationError("split_type", fmt.Sprintf("unknown split type %q", in.SplitType))
	}

	if in.TransactionType == "" {
		in.TransactionType = models.TransactionPersonal
		if in.GroupID != nil {
			in.TransactionType = models.TransactionGroup
		}
	}
	if !models.ValidTransactionType(in.TransactionType) {
		return validationError("transaction_type", fmt.Sprintf("unknown transaction type %q", in.TransactionType))
	}
	return nil
}

// resolveParticipants returns the non-payer participants after checking that
// each exists and is a friend of the payer.
func (l *Ledger) resolveParticipants(ctx context.Context, payer int, in CreateExpenseInput) ([]models.User, error) {
	seen := make(map[int]bool, len(in.Participants))
	var users []models.User

	for _, p := range in.Participants {
		if p.UserID == payer {
			continue
		}
		if seen[p.UserID] {
			return nil, validationError("participants", fmt.Sprintf("user %d is listed more than once", p.UserID))
		}
		seen[p.UserID] = true

		u, err := l.lookupUser(ctx, p.UserID)
		if err != nil {
			return nil, err
		}

		friends, err := l.store.AreFriends(ctx, models.NewFriendship(payer, p.UserID))
		if err != nil {
			return nil, internalError("failed to check friendship", utils.ErrorHandler(err, "failed to check friendship"))
		}
		if !friends {
			return nil, authorizationError("not a friend", p.UserID)
		}
		users = append(users, u)
	}
	return users, nil
}

func (l *Ledger) checkReferences(ctx context.Context, in CreateExpenseInput) (string, error) {
	var categoryName string
	if in.CategoryID != nil {
		c, err := l.store.GetCategory(ctx, *in.CategoryID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return "", notFoundError("category", *in.CategoryID)
			}
			return "", internalError("failed to load category", utils.ErrorHandler(err, "failed to load category"))
		}
		categoryName = c.Name
	}

	if in.GroupID != nil {
		exists, err := l.store.GroupExists(ctx, *in.GroupID)
		if err != nil {
			return "", internalError("failed to load group", utils.ErrorHandler(err, "failed to load group"))
		}
		if !exists {
			return "", notFoundError("group", *in.GroupID)
		}
	}
	return categoryName, nil
}

// CreateExpense validates the request, allocates the splits and stores the
// transaction with all of its splits as one unit.
func (l *Ledger) CreateExpense(ctx context.Context, payer int, in CreateExpenseInput) (models.Transaction, error) {
	if err := validateExpenseInput(&in); err != nil {
		return models.Transaction{}, err
	}

	payerUser, err := l.lookupUser(ctx, payer)
	if err != nil {
		return models.Transaction{}, err
	}

	categoryName, err := l.checkReferences(ctx, in)
	if err != nil {
		return models.Transaction{}, err
	}

	others, err := l.resolveParticipants(ctx, payer, in)
	if err != nil {
		return models.Transaction{}, err
	}

	usernames := map[int]string{payer: payerUser.Username}
	otherIDs := make([]int, 0, len(others))
	for _, u := range others {
		usernames[u.ID] = u.Username
		otherIDs = append(otherIDs, u.ID)
	}

	var shares []Share
	switch in.SplitType {
	case SplitEqual:
		shares = AllocateEqual(in.Amount, payer, otherIDs)
	case SplitCustom:
		shares, err = AllocateCustom(in.Amount, payer, in.Participants)
		if err != nil {
			return models.Transaction{}, err
		}
	}

	now := l.now()
	txn := models.Transaction{
		Title:           in.Title,
		Amount:          in.Amount,
		CategoryID:      in.CategoryID,
		CategoryName:    categoryName,
		TransactionType: in.TransactionType,
		PaidBy:          payer,
		PaidByUsername:  payerUser.Username,
		GroupID:         in.GroupID,
		Note:            in.Note,
		Mood:            in.Mood,
		Date:            now.Format("2006-01-02"),
		CreatedAt:       now,
	}

	for _, s := range shares {
		split := models.SplitDetail{
			UserID:   s.UserID,
			Username: usernames[s.UserID],
			Amount:   s.Amount,
		}
		if s.UserID == payer {
			paidAt := now
			split.IsPaid = true
			split.PaidAt = &paidAt
		}
		txn.Splits = append(txn.Splits, split)
	}

	if err := l.store.CreateTransaction(ctx, &txn); err != nil {
		return models.Transaction{}, internalError("failed to create expense", utils.ErrorHandler(err, "failed to create expense"))
	}

	utils.Logger.WithFields(logrus.Fields{
		"transaction_id": txn.ID,
		"payer":          payer,
		"amount":         txn.Amount.StringFixed(2),
		"split_type":     in.SplitType,
		"splits":         len(txn.Splits),
	}).Info("expense created")

	return txn, nil
}

// GetTransaction returns a transaction with its splits to its payer or one of
// its participants.
func (l *Ledger) GetTransaction(ctx context.Context, caller, id int) (models.Transaction, error) {
	txn, err := l.store.GetTransaction(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Transaction{}, notFoundError("transaction", id)
		}
		return models.Transaction{}, internalError("failed to load transaction", utils.ErrorHandler(err, "failed to load transaction"))
	}

	if txn.PaidBy == caller {
		return txn, nil
	}
	for _, s := range txn.Splits {
		if s.UserID == caller {
			return txn, nil
		}
	}
	return models.Transaction{}, authorizationError("you are not part of this transaction", id)
}

// ListTransactions returns every transaction the caller paid for or has a
// split in, newest first.
func (l *Ledger) ListTransactions(ctx context.Context, caller int) ([]models.Transaction, error) {
	txns, err := l.store.ListTransactions(ctx, caller)
	if err != nil {
		return nil, internalError("failed to list transactions", utils.ErrorHandler(err, "failed to list transactions"))
	}
	if txns == nil {
		txns = []models.Transaction{}
	}
	return txns, nil
}
