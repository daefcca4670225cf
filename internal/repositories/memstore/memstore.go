// Package memstore keeps the whole ledger in process memory. It backs the
// test suites and LEDGER_STORE=memory local runs; nothing survives a restart.
package memstore

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"sync"
	"time"

	"khata_ledger/internal/models"
)

// Store mirrors the relational layout: one map per table plus autoincrement
// counters. All methods hold mu for their full duration, which gives the same
// single-row atomicity the MySQL store relies on.
type Store struct {
	mu sync.Mutex

	nextID map[string]int

	users        map[int]models.User
	friendships  map[models.Friendship]time.Time
	groups       map[int]models.Group
	categories   map[int]models.ExpenseCategory
	transactions map[int]models.Transaction
	splits       map[int]models.SplitDetail
	khata        map[int]models.KhataBookEntry
	wallets      map[int]models.Wallet

	// FailCreateTransaction makes CreateTransaction fail before writing, to
	// exercise rollback paths.
	FailCreateTransaction error
}

func New() *Store {
	s := &Store{
		nextID:       make(map[string]int),
		users:        make(map[int]models.User),
		friendships:  make(map[models.Friendship]time.Time),
		groups:       make(map[int]models.Group),
		categories:   make(map[int]models.ExpenseCategory),
		transactions: make(map[int]models.Transaction),
		splits:       make(map[int]models.SplitDetail),
		khata:        make(map[int]models.KhataBookEntry),
		wallets:      make(map[int]models.Wallet),
	}
	for _, c := range []models.ExpenseCategory{
		{Name: "Food", Icon: "utensils"},
		{Name: "Groceries", Icon: "shopping-cart"},
		{Name: "Transport", Icon: "bus"},
		{Name: "Rent", Icon: "home"},
		{Name: "Utilities", Icon: "bolt"},
		{Name: "Entertainment", Icon: "film"},
		{Name: "Travel", Icon: "plane"},
		{Name: "Other", Icon: "tag"},
	} {
		c.ID = s.next("categories")
		s.categories[c.ID] = c
	}
	return s
}

func (s *Store) next(table string) int {
	s.nextID[table]++
	return s.nextID[table]
}

// AddGroup inserts a group directly. Group management lives outside the
// ledger so there is no service method for it.
func (s *Store) AddGroup(g models.Group) models.Group {
	s.mu.Lock()
	defer s.mu.Unlock()
	g.ID = s.next("groups")
	s.groups[g.ID] = g
	return g
}

// Counts reports the number of transaction and split rows.
func (s *Store) Counts() (transactions, splits int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.transactions), len(s.splits)
}

// Wallet returns the wallet of userID.
func (s *Store) Wallet(userID int) (models.Wallet, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.wallets[userID]
	return w, ok
}

func (s *Store) GetUser(_ context.Context, id int) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return models.User{}, sql.ErrNoRows
	}
	return u, nil
}

func (s *Store) GetUserByLogin(_ context.Context, accountID string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == accountID || u.Email == accountID {
			return u, nil
		}
	}
	return models.User{}, sql.ErrNoRows
}

func (s *Store) CreateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return models.ErrDuplicate
		}
	}
	u.ID = s.next("users")
	s.users[u.ID] = *u
	s.wallets[u.ID] = models.Wallet{ID: s.next("wallets"), UserID: u.ID, CreatedAt: u.CreatedAt}
	return nil
}

// DeleteUser cascades the way the MySQL foreign keys do.
func (s *Store) DeleteUser(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.users, id)
	delete(s.wallets, id)
	for f := range s.friendships {
		if f.UserLow == id || f.UserHigh == id {
			delete(s.friendships, f)
		}
	}
	for tid, t := range s.transactions {
		if t.PaidBy == id {
			delete(s.transactions, tid)
		}
	}
	for sid, sd := range s.splits {
		if _, ok := s.transactions[sd.TransactionID]; !ok || sd.UserID == id {
			delete(s.splits, sid)
		}
	}
	for kid, k := range s.khata {
		if k.LenderID == id || k.BorrowerID == id {
			delete(s.khata, kid)
		}
	}
	return nil
}

func (s *Store) HasOutstandingObligations(_ context.Context, userID int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range s.khata {
		if !k.IsSettled && (k.LenderID == userID || k.BorrowerID == userID) {
			return true, nil
		}
	}
	for _, sd := range s.splits {
		payer := s.transactions[sd.TransactionID].PaidBy
		if !sd.IsPaid && sd.UserID != payer && (sd.UserID == userID || payer == userID) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) ListDebtors(_ context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make(map[int]bool)
	for _, sd := range s.splits {
		if !sd.IsPaid && sd.UserID != s.transactions[sd.TransactionID].PaidBy {
			ids[sd.UserID] = true
		}
	}
	for _, k := range s.khata {
		if !k.IsSettled {
			ids[k.BorrowerID] = true
		}
	}

	var users []models.User
	for id := range ids {
		users = append(users, s.users[id])
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (s *Store) AreFriends(_ context.Context, f models.Friendship) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.friendships[models.NewFriendship(f.UserLow, f.UserHigh)]
	return ok, nil
}

func (s *Store) AddFriendship(_ context.Context, f models.Friendship) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := models.NewFriendship(f.UserLow, f.UserHigh)
	if _, ok := s.friendships[key]; ok {
		return models.ErrDuplicate
	}
	s.friendships[key] = f.CreatedAt
	return nil
}

func (s *Store) RemoveFriendship(_ context.Context, f models.Friendship) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := models.NewFriendship(f.UserLow, f.UserHigh)
	if _, ok := s.friendships[key]; !ok {
		return false, nil
	}
	delete(s.friendships, key)
	return true, nil
}

func (s *Store) ListFriends(_ context.Context, userID int) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var friends []models.User
	for f := range s.friendships {
		if f.UserLow != userID && f.UserHigh != userID {
			continue
		}
		u := s.users[f.Other(userID)]
		u.Password = ""
		friends = append(friends, u)
	}
	sort.Slice(friends, func(i, j int) bool { return friends[i].Username < friends[j].Username })
	return friends, nil
}

func (s *Store) GetCategory(_ context.Context, id int) (models.ExpenseCategory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok {
		return models.ExpenseCategory{}, sql.ErrNoRows
	}
	return c, nil
}

func (s *Store) ListCategories(_ context.Context) ([]models.ExpenseCategory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ExpenseCategory, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedByUser != out[j].CreatedByUser {
			return !out[i].CreatedByUser
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *Store) CreateCategory(_ context.Context, c *models.ExpenseCategory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.next("categories")
	s.categories[c.ID] = *c
	return nil
}

func (s *Store) GroupExists(_ context.Context, id int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.groups[id]
	return ok, nil
}

func (s *Store) CreateTransaction(_ context.Context, t *models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailCreateTransaction != nil {
		return s.FailCreateTransaction
	}
	for _, sd := range t.Splits {
		if _, ok := s.users[sd.UserID]; !ok {
			return errors.New("split references unknown user")
		}
	}

	t.ID = s.next("transactions")
	for i := range t.Splits {
		t.Splits[i].ID = s.next("splits")
		t.Splits[i].TransactionID = t.ID
		s.splits[t.Splits[i].ID] = t.Splits[i]
	}
	stored := *t
	stored.Splits = nil
	s.transactions[t.ID] = stored
	return nil
}

// transaction rebuilds a transaction with joined names and its splits.
// Callers hold mu.
func (s *Store) transaction(id int) (models.Transaction, bool) {
	t, ok := s.transactions[id]
	if !ok {
		return models.Transaction{}, false
	}
	t.PaidByUsername = s.users[t.PaidBy].Username
	if t.CategoryID != nil {
		t.CategoryName = s.categories[*t.CategoryID].Name
	}
	t.Splits = nil
	for _, sd := range s.splits {
		if sd.TransactionID == id {
			sd.Username = s.users[sd.UserID].Username
			t.Splits = append(t.Splits, sd)
		}
	}
	sort.Slice(t.Splits, func(i, j int) bool { return t.Splits[i].ID < t.Splits[j].ID })
	return t, true
}

func (s *Store) GetTransaction(_ context.Context, id int) (models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transaction(id)
	if !ok {
		return models.Transaction{}, sql.ErrNoRows
	}
	return t, nil
}

func (s *Store) GetSplit(_ context.Context, id int) (models.SplitDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sd, ok := s.splits[id]
	if !ok {
		return models.SplitDetail{}, sql.ErrNoRows
	}
	sd.Username = s.users[sd.UserID].Username
	return sd, nil
}

func (s *Store) MarkSplitPaid(_ context.Context, id int, paidAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sd, ok := s.splits[id]
	if !ok || sd.IsPaid {
		return false, nil
	}
	sd.IsPaid = true
	sd.PaidAt = &paidAt
	s.splits[id] = sd
	return true, nil
}

func (s *Store) CreateKhataEntry(_ context.Context, e *models.KhataBookEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = s.next("khata")
	s.khata[e.ID] = *e
	return nil
}

func (s *Store) khataEntry(id int) (models.KhataBookEntry, bool) {
	e, ok := s.khata[id]
	if !ok {
		return e, false
	}
	e.LenderUsername = s.users[e.LenderID].Username
	e.BorrowerUsername = s.users[e.BorrowerID].Username
	return e, true
}

func (s *Store) GetKhataEntry(_ context.Context, id int) (models.KhataBookEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.khataEntry(id)
	if !ok {
		return e, sql.ErrNoRows
	}
	return e, nil
}

func (s *Store) SettleKhataEntry(_ context.Context, id, settledBy int, settledAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.khata[id]
	if !ok || e.IsSettled {
		return false, nil
	}
	e.IsSettled = true
	e.SettledAt = &settledAt
	e.SettledBy = &settledBy
	s.khata[id] = e
	return true, nil
}

func (s *Store) ListOpenKhataEntries(_ context.Context, userID int) ([]models.KhataBookEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.KhataBookEntry
	for id, k := range s.khata {
		if k.IsSettled || (k.LenderID != userID && k.BorrowerID != userID) {
			continue
		}
		e, _ := s.khataEntry(id)
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) ListOpenSplits(_ context.Context, userID int) ([]models.OpenSplit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.OpenSplit
	for _, sd := range s.splits {
		t := s.transactions[sd.TransactionID]
		if sd.IsPaid || sd.UserID == t.PaidBy || (t.PaidBy != userID && sd.UserID != userID) {
			continue
		}
		o := models.OpenSplit{
			SplitID:             sd.ID,
			TransactionID:       t.ID,
			Title:               t.Title,
			Amount:              sd.Amount,
			Date:                t.Date,
			PayerID:             t.PaidBy,
			PayerUsername:       s.users[t.PaidBy].Username,
			ParticipantID:       sd.UserID,
			ParticipantUsername: s.users[sd.UserID].Username,
		}
		if t.CategoryID != nil {
			o.Category = s.categories[*t.CategoryID].Name
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SplitID < out[j].SplitID })
	return out, nil
}

func (s *Store) ListKhataEntries(_ context.Context, userID int) ([]models.KhataBookEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.KhataBookEntry
	for id, k := range s.khata {
		if k.LenderID != userID && k.BorrowerID != userID {
			continue
		}
		e, _ := s.khataEntry(id)
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *Store) ListRecentTransactions(_ context.Context, userID, limit int) ([]models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.transactionsOf(userID)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) ListTransactions(_ context.Context, userID int) ([]models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transactionsOf(userID), nil
}

// transactionsOf returns every transaction userID paid for or has a split
// in, newest first. Callers hold mu.
func (s *Store) transactionsOf(userID int) []models.Transaction {
	ids := make(map[int]bool)
	for id, t := range s.transactions {
		if t.PaidBy == userID {
			ids[id] = true
		}
	}
	for _, sd := range s.splits {
		if sd.UserID == userID {
			ids[sd.TransactionID] = true
		}
	}

	out := make([]models.Transaction, 0, len(ids))
	for id := range ids {
		t, _ := s.transaction(id)
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}
