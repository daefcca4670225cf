package services

import (
	"context"
	"time"

	"khata_ledger/internal/models"
)

// Store is the persistence the ledger runs against. Implementations report a
// missing row as sql.ErrNoRows.
type Store interface {
	GetUser(ctx context.Context, id int) (models.User, error)
	GetUserByLogin(ctx context.Context, accountID string) (models.User, error)
	// CreateUser inserts the user and an empty wallet in one transaction.
	CreateUser(ctx context.Context, u *models.User) error
	DeleteUser(ctx context.Context, id int) error
	HasOutstandingObligations(ctx context.Context, userID int) (bool, error)
	// ListDebtors returns users that are the participant of at least one
	// unpaid split or the borrower of an unsettled khata entry.
	ListDebtors(ctx context.Context) ([]models.User, error)

	AreFriends(ctx context.Context, f models.Friendship) (bool, error)
	AddFriendship(ctx context.Context, f models.Friendship) error
	RemoveFriendship(ctx context.Context, f models.Friendship) (bool, error)
	ListFriends(ctx context.Context, userID int) ([]models.User, error)

	GetCategory(ctx context.Context, id int) (models.ExpenseCategory, error)
	ListCategories(ctx context.Context) ([]models.ExpenseCategory, error)
	CreateCategory(ctx context.Context, c *models.ExpenseCategory) error
	GroupExists(ctx context.Context, id int) (bool, error)

	// CreateTransaction persists t and t.Splits atomically and fills in ids.
	CreateTransaction(ctx context.Context, t *models.Transaction) error
	GetTransaction(ctx context.Context, id int) (models.Transaction, error)
	GetSplit(ctx context.Context, id int) (models.SplitDetail, error)
	// MarkSplitPaid flips is_paid only if it is still false and reports
	// whether this call made the change.
	MarkSplitPaid(ctx context.Context, id int, paidAt time.Time) (bool, error)

	CreateKhataEntry(ctx context.Context, e *models.KhataBookEntry) error
	GetKhataEntry(ctx context.Context, id int) (models.KhataBookEntry, error)
	SettleKhataEntry(ctx context.Context, id, settledBy int, settledAt time.Time) (bool, error)

	// ListOpenKhataEntries returns unsettled entries where userID is lender or
	// borrower, ordered by id.
	ListOpenKhataEntries(ctx context.Context, userID int) ([]models.KhataBookEntry, error)
	// ListKhataEntries returns every entry where userID is lender or
	// borrower, settled ones included, newest first.
	ListKhataEntries(ctx context.Context, userID int) ([]models.KhataBookEntry, error)
	// ListOpenSplits returns unpaid splits where userID is the payer or the
	// participant (never both), ordered by split id.
	ListOpenSplits(ctx context.Context, userID int) ([]models.OpenSplit, error)
	// ListRecentTransactions returns the newest transactions userID paid for or
	// has a split in, with splits loaded.
	ListRecentTransactions(ctx context.Context, userID, limit int) ([]models.Transaction, error)
	// ListTransactions is ListRecentTransactions without the limit.
	ListTransactions(ctx context.Context, userID int) ([]models.Transaction, error)
}
