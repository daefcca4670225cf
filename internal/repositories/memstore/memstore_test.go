package memstore

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"khata_ledger/internal/models"

	"github.com/shopspring/decimal"
)

func mustUser(t *testing.T, s *Store, name string) models.User {
	t.Helper()
	u := models.User{Username: name, Email: name + "@example.com"}
	if err := s.CreateUser(context.Background(), &u); err != nil {
		t.Fatalf("create %s: %v", name, err)
	}
	return u
}

func TestCreateUserDuplicates(t *testing.T) {
	s := New()
	mustUser(t, s, "alice")

	dup := models.User{Username: "other", Email: "alice@example.com"}
	if err := s.CreateUser(context.Background(), &dup); !errors.Is(err, models.ErrDuplicate) {
		t.Errorf("duplicate email: got %v", err)
	}
	if _, err := s.GetUser(context.Background(), 99); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("missing user: got %v", err)
	}
}

func TestFriendshipIsUnordered(t *testing.T) {
	s := New()
	ctx := context.Background()
	a, b := mustUser(t, s, "a"), mustUser(t, s, "b")

	if err := s.AddFriendship(ctx, models.NewFriendship(b.ID, a.ID)); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.AddFriendship(ctx, models.NewFriendship(a.ID, b.ID)); !errors.Is(err, models.ErrDuplicate) {
		t.Errorf("reverse pair: got %v, want duplicate", err)
	}
	ok, _ := s.AreFriends(ctx, models.NewFriendship(a.ID, b.ID))
	if !ok {
		t.Errorf("friendship not found")
	}
}

func TestOpenSplitsAndSettlement(t *testing.T) {
	s := New()
	ctx := context.Background()
	a, b := mustUser(t, s, "a"), mustUser(t, s, "b")
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	txn := models.Transaction{
		Title: "Lunch", Amount: decimal.NewFromInt(20), PaidBy: a.ID, TransactionType: models.TransactionPersonal,
		Date: "2024-05-01", CreatedAt: now,
		Splits: []models.SplitDetail{
			{UserID: a.ID, Amount: decimal.NewFromInt(10), IsPaid: true, PaidAt: &now},
			{UserID: b.ID, Amount: decimal.NewFromInt(10)},
		},
	}
	if err := s.CreateTransaction(ctx, &txn); err != nil {
		t.Fatalf("create transaction: %v", err)
	}

	open, err := s.ListOpenSplits(ctx, a.ID)
	if err != nil {
		t.Fatalf("open splits: %v", err)
	}
	if len(open) != 1 || open[0].ParticipantID != b.ID || open[0].PayerUsername != "a" {
		t.Fatalf("open splits = %+v, want b's split only", open)
	}

	changed, _ := s.MarkSplitPaid(ctx, txn.Splits[1].ID, now)
	if !changed {
		t.Fatalf("first payment did not change the split")
	}
	changed, _ = s.MarkSplitPaid(ctx, txn.Splits[1].ID, now.Add(time.Hour))
	if changed {
		t.Errorf("second payment changed the split")
	}

	open, _ = s.ListOpenSplits(ctx, b.ID)
	if len(open) != 0 {
		t.Errorf("open splits after payment = %+v", open)
	}
}

func TestListKhataEntriesIncludesSettled(t *testing.T) {
	s := New()
	ctx := context.Background()
	a, b, c := mustUser(t, s, "a"), mustUser(t, s, "b"), mustUser(t, s, "c")
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	for i, e := range []models.KhataBookEntry{
		{LenderID: a.ID, BorrowerID: b.ID, Amount: decimal.NewFromInt(5), Reason: "tea"},
		{LenderID: b.ID, BorrowerID: a.ID, Amount: decimal.NewFromInt(7), Reason: "lunch"},
		{LenderID: b.ID, BorrowerID: c.ID, Amount: decimal.NewFromInt(9), Reason: "bus"},
	} {
		e.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		if err := s.CreateKhataEntry(ctx, &e); err != nil {
			t.Fatalf("create entry: %v", err)
		}
	}
	if changed, _ := s.SettleKhataEntry(ctx, 1, b.ID, base.Add(time.Hour)); !changed {
		t.Fatalf("settle did not change the entry")
	}

	open, _ := s.ListOpenKhataEntries(ctx, a.ID)
	if len(open) != 1 || open[0].Reason != "lunch" {
		t.Errorf("open entries = %+v, want lunch only", open)
	}

	all, err := s.ListKhataEntries(ctx, a.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 || all[0].Reason != "lunch" || all[1].Reason != "tea" || !all[1].IsSettled {
		t.Errorf("entries = %+v, want lunch then settled tea", all)
	}
	if all[1].LenderUsername != "a" || all[1].BorrowerUsername != "b" {
		t.Errorf("usernames not joined: %+v", all[1])
	}
}
