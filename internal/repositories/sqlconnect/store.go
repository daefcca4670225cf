package sqlconnect

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"khata_ledger/internal/models"
	"khata_ledger/internal/services"

	"github.com/go-sql-driver/mysql"
)

var _ services.Store = (*Store)(nil)

// Store is the MySQL implementation of services.Store.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}

func nullInt(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

const userColumns = "id, username, email, first_name, last_name, password, created_at"

func scanUser(row interface{ Scan(...any) error }) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.Password, &u.CreatedAt)
	return u, err
}

func (s *Store) GetUser(ctx context.Context, id int) (models.User, error) {
	return scanUser(s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id))
}

func (s *Store) GetUserByLogin(ctx context.Context, accountID string) (models.User, error) {
	return scanUser(s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE username = ? OR email = ?", accountID, accountID))
}

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		"INSERT INTO users (username, email, first_name, last_name, password, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		u.Username, u.Email, u.FirstName, u.LastName, u.Password, u.CreatedAt)
	if err != nil {
		tx.Rollback()
		if isDuplicate(err) {
			return models.ErrDuplicate
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "INSERT INTO wallets (user_id, balance, created_at) VALUES (?, 0.00, ?)", id, u.CreatedAt); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to create wallet: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	u.ID = int(id)
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *Store) HasOutstandingObligations(ctx context.Context, userID int) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM khata_book_entries
			WHERE is_settled = FALSE AND (lender_id = ? OR borrower_id = ?)
		) OR EXISTS(
			SELECT 1 FROM split_details s
			JOIN transactions t ON s.transaction_id = t.id
			WHERE s.is_paid = FALSE AND s.user_id <> t.paid_by AND (s.user_id = ? OR t.paid_by = ?)
		)`, userID, userID, userID, userID).Scan(&exists)
	return exists, err
}

func (s *Store) ListDebtors(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE id IN (
			SELECT s.user_id FROM split_details s
			JOIN transactions t ON s.transaction_id = t.id
			WHERE s.is_paid = FALSE AND s.user_id <> t.paid_by
		) OR id IN (
			SELECT borrower_id FROM khata_book_entries WHERE is_settled = FALSE
		)
		ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *Store) AreFriends(ctx context.Context, f models.Friendship) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM friendships WHERE user_low = ? AND user_high = ?)",
		f.UserLow, f.UserHigh).Scan(&exists)
	return exists, err
}

func (s *Store) AddFriendship(ctx context.Context, f models.Friendship) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO friendships (user_low, user_high, created_at) VALUES (?, ?, ?)",
		f.UserLow, f.UserHigh, f.CreatedAt)
	if isDuplicate(err) {
		return models.ErrDuplicate
	}
	return err
}

func (s *Store) RemoveFriendship(ctx context.Context, f models.Friendship) (bool, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM friendships WHERE user_low = ? AND user_high = ?", f.UserLow, f.UserHigh)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (s *Store) ListFriends(ctx context.Context, userID int) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT u.id, u.username, u.email, u.first_name, u.last_name, u.password, u.created_at
		FROM friendships f
		JOIN users u ON u.id = CASE WHEN f.user_low = ? THEN f.user_high ELSE f.user_low END
		WHERE f.user_low = ? OR f.user_high = ?
		ORDER BY u.username`, userID, userID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var friends []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		u.Password = ""
		friends = append(friends, u)
	}
	return friends, rows.Err()
}

func (s *Store) GetCategory(ctx context.Context, id int) (models.ExpenseCategory, error) {
	var c models.ExpenseCategory
	err := s.db.QueryRowContext(ctx, "SELECT id, name, icon, created_by_user FROM expense_categories WHERE id = ?", id).
		Scan(&c.ID, &c.Name, &c.Icon, &c.CreatedByUser)
	return c, err
}

func (s *Store) ListCategories(ctx context.Context) ([]models.ExpenseCategory, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, icon, created_by_user FROM expense_categories ORDER BY created_by_user, name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []models.ExpenseCategory
	for rows.Next() {
		var c models.ExpenseCategory
		if err := rows.Scan(&c.ID, &c.Name, &c.Icon, &c.CreatedByUser); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (s *Store) CreateCategory(ctx context.Context, c *models.ExpenseCategory) error {
	res, err := s.db.ExecContext(ctx, "INSERT INTO expense_categories (name, icon, created_by_user) VALUES (?, ?, ?)", c.Name, c.Icon, c.CreatedByUser)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = int(id)
	return nil
}

func (s *Store) GroupExists(ctx context.Context, id int) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM `groups` WHERE id = ?)", id).Scan(&exists)
	return exists, err
}

// CreateTransaction writes the transaction row and every split inside one
// database transaction. Any failure rolls all of it back.
func (s *Store) CreateTransaction(ctx context.Context, t *models.Transaction) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO transactions (title, amount, category_id, transaction_type, paid_by, group_id, note, mood, date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.Title, t.Amount, t.CategoryID, t.TransactionType, t.PaidBy, t.GroupID, t.Note, t.Mood, t.Date, t.CreatedAt)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	txnID, err := res.LastInsertId()
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to get transaction id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO split_details (transaction_id, user_id, amount, is_paid, paid_at) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i := range t.Splits {
		split := &t.Splits[i]
		res, err := stmt.ExecContext(ctx, txnID, split.UserID, split.Amount, split.IsPaid, split.PaidAt)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert split for user %d: %w", split.UserID, err)
		}
		splitID, err := res.LastInsertId()
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to get split id: %w", err)
		}
		split.ID = int(splitID)
		split.TransactionID = int(txnID)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	t.ID = int(txnID)
	return nil
}

const transactionColumns = `
	t.id, t.title, t.amount, t.category_id, COALESCE(c.name, ''), t.transaction_type,
	t.paid_by, u.username, t.group_id, COALESCE(t.note, ''), t.mood, t.date, t.created_at`

const transactionJoins = `
	FROM transactions t
	JOIN users u ON t.paid_by = u.id
	LEFT JOIN expense_categories c ON t.category_id = c.id`

func scanTransaction(row interface{ Scan(...any) error }) (models.Transaction, error) {
	var (
		t          models.Transaction
		categoryID sql.NullInt64
		groupID    sql.NullInt64
		mood       sql.NullString
		date       time.Time
	)
	err := row.Scan(&t.ID, &t.Title, &t.Amount, &categoryID, &t.CategoryName, &t.TransactionType,
		&t.PaidBy, &t.PaidByUsername, &groupID, &t.Note, &mood, &date, &t.CreatedAt)
	if err != nil {
		return t, err
	}
	t.CategoryID = nullInt(categoryID)
	t.GroupID = nullInt(groupID)
	if mood.Valid {
		t.Mood = &mood.String
	}
	t.Date = date.Format("2006-01-02")
	t.CreatedAt = t.CreatedAt.UTC()
	return t, nil
}

func (s *Store) GetTransaction(ctx context.Context, id int) (models.Transaction, error) {
	t, err := scanTransaction(s.db.QueryRowContext(ctx, "SELECT "+transactionColumns+transactionJoins+" WHERE t.id = ?", id))
	if err != nil {
		return t, err
	}

	splits, err := s.splitsFor(ctx, []int{id})
	if err != nil {
		return t, err
	}
	t.Splits = splits[id]
	return t, nil
}

// splitsFor loads the splits of several transactions in one query, keyed by
// transaction id.
func (s *Store) splitsFor(ctx context.Context, txnIDs []int) (map[int][]models.SplitDetail, error) {
	out := make(map[int][]models.SplitDetail, len(txnIDs))
	if len(txnIDs) == 0 {
		return out, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(txnIDs)), ",")
	args := make([]any, len(txnIDs))
	for i, id := range txnIDs {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.transaction_id, s.user_id, u.username, s.amount, s.is_paid, s.paid_at
		FROM split_details s
		JOIN users u ON s.user_id = u.id
		WHERE s.transaction_id IN (`+placeholders+`)
		ORDER BY s.id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			sd     models.SplitDetail
			paidAt sql.NullTime
		)
		if err := rows.Scan(&sd.ID, &sd.TransactionID, &sd.UserID, &sd.Username, &sd.Amount, &sd.IsPaid, &paidAt); err != nil {
			return nil, err
		}
		sd.PaidAt = nullTime(paidAt)
		out[sd.TransactionID] = append(out[sd.TransactionID], sd)
	}
	return out, rows.Err()
}

func (s *Store) GetSplit(ctx context.Context, id int) (models.SplitDetail, error) {
	var (
		sd     models.SplitDetail
		paidAt sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT s.id, s.transaction_id, s.user_id, u.username, s.amount, s.is_paid, s.paid_at
		FROM split_details s
		JOIN users u ON s.user_id = u.id
		WHERE s.id = ?`, id).
		Scan(&sd.ID, &sd.TransactionID, &sd.UserID, &sd.Username, &sd.Amount, &sd.IsPaid, &paidAt)
	sd.PaidAt = nullTime(paidAt)
	return sd, err
}

func (s *Store) MarkSplitPaid(ctx context.Context, id int, paidAt time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx, "UPDATE split_details SET is_paid = TRUE, paid_at = ? WHERE id = ? AND is_paid = FALSE", paidAt, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func (s *Store) CreateKhataEntry(ctx context.Context, e *models.KhataBookEntry) error {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO khata_book_entries (lender_id, borrower_id, amount, reason, is_settled, created_at) VALUES (?, ?, ?, ?, FALSE, ?)",
		e.LenderID, e.BorrowerID, e.Amount, e.Reason, e.CreatedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = int(id)
	return nil
}

const khataColumns = `
	k.id, k.lender_id, l.username, k.borrower_id, b.username, k.amount, k.reason,
	k.is_settled, k.created_at, k.settled_at, k.settled_by
	FROM khata_book_entries k
	JOIN users l ON k.lender_id = l.id
	JOIN users b ON k.borrower_id = b.id`

func scanKhata(row interface{ Scan(...any) error }) (models.KhataBookEntry, error) {
	var (
		e         models.KhataBookEntry
		settledAt sql.NullTime
		settledBy sql.NullInt64
	)
	err := row.Scan(&e.ID, &e.LenderID, &e.LenderUsername, &e.BorrowerID, &e.BorrowerUsername, &e.Amount, &e.Reason,
		&e.IsSettled, &e.CreatedAt, &settledAt, &settledBy)
	e.CreatedAt = e.CreatedAt.UTC()
	e.SettledAt = nullTime(settledAt)
	e.SettledBy = nullInt(settledBy)
	return e, err
}

func (s *Store) GetKhataEntry(ctx context.Context, id int) (models.KhataBookEntry, error) {
	return scanKhata(s.db.QueryRowContext(ctx, "SELECT "+khataColumns+" WHERE k.id = ?", id))
}

func (s *Store) SettleKhataEntry(ctx context.Context, id, settledBy int, settledAt time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE khata_book_entries SET is_settled = TRUE, settled_at = ?, settled_by = ? WHERE id = ? AND is_settled = FALSE",
		settledAt, settledBy, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func (s *Store) queryKhata(ctx context.Context, query string, args ...any) ([]models.KhataBookEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.KhataBookEntry
	for rows.Next() {
		e, err := scanKhata(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *Store) ListOpenKhataEntries(ctx context.Context, userID int) ([]models.KhataBookEntry, error) {
	return s.queryKhata(ctx,
		"SELECT "+khataColumns+" WHERE k.is_settled = FALSE AND (k.lender_id = ? OR k.borrower_id = ?) ORDER BY k.id",
		userID, userID)
}

func (s *Store) ListKhataEntries(ctx context.Context, userID int) ([]models.KhataBookEntry, error) {
	return s.queryKhata(ctx,
		"SELECT "+khataColumns+" WHERE k.lender_id = ? OR k.borrower_id = ? ORDER BY k.created_at DESC, k.id DESC",
		userID, userID)
}

func (s *Store) ListOpenSplits(ctx context.Context, userID int) ([]models.OpenSplit, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, t.id, t.title, s.amount, t.date, COALESCE(c.name, ''),
			t.paid_by, pu.username, s.user_id, su.username
		FROM split_details s
		JOIN transactions t ON s.transaction_id = t.id
		JOIN users pu ON t.paid_by = pu.id
		JOIN users su ON s.user_id = su.id
		LEFT JOIN expense_categories c ON t.category_id = c.id
		WHERE s.is_paid = FALSE AND s.user_id <> t.paid_by AND (t.paid_by = ? OR s.user_id = ?)
		ORDER BY s.id`, userID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var splits []models.OpenSplit
	for rows.Next() {
		var (
			o    models.OpenSplit
			date time.Time
		)
		if err := rows.Scan(&o.SplitID, &o.TransactionID, &o.Title, &o.Amount, &date, &o.Category,
			&o.PayerID, &o.PayerUsername, &o.ParticipantID, &o.ParticipantUsername); err != nil {
			return nil, err
		}
		o.Date = date.Format("2006-01-02")
		splits = append(splits, o)
	}
	return splits, rows.Err()
}

const involvingUser = `
	WHERE t.paid_by = ? OR EXISTS(SELECT 1 FROM split_details s WHERE s.transaction_id = t.id AND s.user_id = ?)
	ORDER BY t.created_at DESC, t.id DESC`

func (s *Store) ListRecentTransactions(ctx context.Context, userID, limit int) ([]models.Transaction, error) {
	return s.queryTransactions(ctx, "SELECT "+transactionColumns+transactionJoins+involvingUser+" LIMIT ?", userID, userID, limit)
}

func (s *Store) ListTransactions(ctx context.Context, userID int) ([]models.Transaction, error) {
	return s.queryTransactions(ctx, "SELECT "+transactionColumns+transactionJoins+involvingUser, userID, userID)
}

// queryTransactions runs a transaction listing and attaches the splits of
// every row with one extra query.
func (s *Store) queryTransactions(ctx context.Context, query string, args ...any) ([]models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		txns []models.Transaction
		ids  []int
	)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, t)
		ids = append(ids, t.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	splits, err := s.splitsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range txns {
		txns[i].Splits = splits[txns[i].ID]
	}
	return txns, nil
}
