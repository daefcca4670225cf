package services_test

import (
	"context"
	"fmt"
	"testing"

	"khata_ledger/internal/models"
	"khata_ledger/internal/services"
)

func TestGetBalanceSummary(t *testing.T) {
	f := newFixture(t)
	alice, bob, carol := f.user(t, "alice"), f.user(t, "bob"), f.user(t, "carol")
	f.befriend(t, alice, bob)
	f.befriend(t, alice, carol)
	ctx := context.Background()

	dinner := f.equalExpense(t, alice, "Dinner", "90.00", bob, carol)
	f.equalExpense(t, carol, "Cab", "20.00", alice)

	if _, err := f.ledger.CreateLendingEntry(ctx, alice.ID, services.CreateLendingInput{
		BorrowerID: bob.ID, Amount: dec("50.00"), Reason: "rent share",
	}); err != nil {
		t.Fatalf("lend to bob: %v", err)
	}
	settledLoan, err := f.ledger.CreateLendingEntry(ctx, alice.ID, services.CreateLendingInput{
		BorrowerID: carol.ID, Amount: dec("5.00"), Reason: "coffee",
	})
	if err != nil {
		t.Fatalf("lend to carol: %v", err)
	}
	if _, err := f.ledger.SettleKhataEntry(ctx, carol.ID, settledLoan.ID); err != nil {
		t.Fatalf("settle carol's loan: %v", err)
	}
	if _, err := f.ledger.MarkSplitPaid(ctx, bob.ID, splitFor(t, dinner, bob.ID).ID); err != nil {
		t.Fatalf("bob pays dinner: %v", err)
	}

	summary, err := f.ledger.GetBalanceSummary(ctx, alice.ID)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}

	if !summary.TotalToTake.Equal(dec("80.00")) {
		t.Errorf("total to take = %s, want 80.00", summary.TotalToTake)
	}
	if !summary.TotalToReturn.Equal(dec("10.00")) {
		t.Errorf("total to return = %s, want 10.00", summary.TotalToReturn)
	}

	if len(summary.ToTakeWith) != 2 {
		t.Fatalf("to take with %d counterparties, want 2: %+v", len(summary.ToTakeWith), summary.ToTakeWith)
	}
	first, second := summary.ToTakeWith[0], summary.ToTakeWith[1]
	if first.UserID != bob.ID || !first.Total.Equal(dec("50.00")) {
		t.Errorf("largest debtor = %+v, want bob owing 50.00", first)
	}
	if len(first.Records) != 1 || first.Records[0].Source != models.SourceKhata {
		t.Errorf("bob's records = %+v, want one khata record", first.Records)
	}
	if second.UserID != carol.ID || !second.Total.Equal(dec("30.00")) {
		t.Errorf("second debtor = %+v, want carol owing 30.00", second)
	}
	if len(second.Records) != 1 || second.Records[0].Source != models.SourceExpense || *second.Records[0].TransactionID != dinner.ID {
		t.Errorf("carol's records = %+v, want her dinner split", second.Records)
	}

	if len(summary.ToReturnWith) != 1 || summary.ToReturnWith[0].Username != "carol" {
		t.Errorf("to return with = %+v, want carol only", summary.ToReturnWith)
	}

	if len(summary.RecentTransactions) != 2 || summary.RecentTransactions[0].Title != "Cab" {
		t.Errorf("recent transactions = %+v, want Cab then Dinner", summary.RecentTransactions)
	}
}

func TestGetBalanceSummaryEmpty(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")

	summary, err := f.ledger.GetBalanceSummary(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if !summary.TotalToTake.IsZero() || !summary.TotalToReturn.IsZero() {
		t.Errorf("totals = %s / %s, want zero", summary.TotalToTake, summary.TotalToReturn)
	}
	if summary.ToTakeWith == nil || summary.ToReturnWith == nil || summary.RecentTransactions == nil {
		t.Errorf("empty summary has nil lists: %+v", summary)
	}
}

func TestGetBalanceSummaryKeepsTwentyNewest(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")

	for i := 1; i <= 25; i++ {
		f.equalExpense(t, alice, fmt.Sprintf("expense %d", i), "10.00")
	}

	summary, err := f.ledger.GetBalanceSummary(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if len(summary.RecentTransactions) != services.RecentActivityLimit {
		t.Fatalf("got %d recent transactions, want %d", len(summary.RecentTransactions), services.RecentActivityLimit)
	}
	for i, txn := range summary.RecentTransactions {
		want := fmt.Sprintf("expense %d", 25-i)
		if txn.Title != want {
			t.Errorf("recent[%d] = %q, want %q", i, txn.Title, want)
		}
	}
}

func TestGetBalanceSummaryMergesKhataAndSplits(t *testing.T) {
	f := newFixture(t)
	alice, bob := f.user(t, "alice"), f.user(t, "bob")
	f.befriend(t, alice, bob)
	ctx := context.Background()

	loan, err := f.ledger.CreateLendingEntry(ctx, alice.ID, services.CreateLendingInput{
		BorrowerID: bob.ID, Amount: dec("5.00"), Reason: "bus fare",
	})
	if err != nil {
		t.Fatalf("lend: %v", err)
	}
	dinner := f.equalExpense(t, alice, "Dinner", "40.00", bob)

	check := func(t *testing.T, buckets []models.CounterpartyBalance, counterparty models.User) {
		t.Helper()
		if len(buckets) != 1 {
			t.Fatalf("got %d counterparties, want 1: %+v", len(buckets), buckets)
		}
		got := buckets[0]
		if got.UserID != counterparty.ID || got.Username != counterparty.Username {
			t.Errorf("counterparty = %d/%q, want %s", got.UserID, got.Username, counterparty.Username)
		}
		if !got.Total.Equal(dec("25.00")) {
			t.Errorf("total = %s, want 25.00", got.Total)
		}
		if len(got.Records) != 2 {
			t.Fatalf("got %d records, want 2: %+v", len(got.Records), got.Records)
		}
		khata, split := got.Records[0], got.Records[1]
		if khata.Source != models.SourceKhata || khata.ID != loan.ID || !khata.Amount.Equal(dec("5.00")) {
			t.Errorf("first record = %+v, want the 5.00 khata entry", khata)
		}
		if split.Source != models.SourceExpense || split.TransactionID == nil || *split.TransactionID != dinner.ID || !split.Amount.Equal(dec("20.00")) {
			t.Errorf("second record = %+v, want bob's 20.00 dinner split", split)
		}
	}

	t.Run("lender", func(t *testing.T) {
		summary, err := f.ledger.GetBalanceSummary(ctx, alice.ID)
		if err != nil {
			t.Fatalf("summary: %v", err)
		}
		check(t, summary.ToTakeWith, bob)
		if !summary.TotalToTake.Equal(dec("25.00")) || len(summary.ToReturnWith) != 0 {
			t.Errorf("alice's summary = %+v, want 25.00 to take and nothing to return", summary)
		}
	})

	t.Run("borrower", func(t *testing.T) {
		summary, err := f.ledger.GetBalanceSummary(ctx, bob.ID)
		if err != nil {
			t.Fatalf("summary: %v", err)
		}
		check(t, summary.ToReturnWith, alice)
		if !summary.TotalToReturn.Equal(dec("25.00")) || len(summary.ToTakeWith) != 0 {
			t.Errorf("bob's summary = %+v, want 25.00 to return and nothing to take", summary)
		}
	})
}
