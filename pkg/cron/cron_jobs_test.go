package cron

import (
	"context"
	"errors"
	"sync"
	"testing"

	"khata_ledger/internal/models"
	"khata_ledger/internal/repositories/memstore"
	"khata_ledger/internal/services"
	"khata_ledger/pkg/utils"

	"github.com/shopspring/decimal"
)

type sentReminder struct {
	to    string
	total string
	lines []utils.ReminderLine
}

func seedLedger(t *testing.T) (*services.Ledger, map[string]models.User) {
	t.Helper()
	ctx := context.Background()
	store := memstore.New()
	ledger := services.NewLedger(store)

	users := make(map[string]models.User)
	for _, name := range []string{"alice", "bob", "carol"} {
		u := models.User{Username: name, Email: name + "@example.com", FirstName: name}
		if err := store.CreateUser(ctx, &u); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		users[name] = u
	}
	for _, pair := range [][2]string{{"alice", "bob"}, {"alice", "carol"}, {"bob", "carol"}} {
		if _, err := ledger.AddFriend(ctx, users[pair[0]].ID, users[pair[1]].ID); err != nil {
			t.Fatalf("befriend %v: %v", pair, err)
		}
	}

	// bob owes alice 20 for dinner and 15 on the khata, and carol 5 for a cab.
	if _, err := ledger.CreateExpense(ctx, users["alice"].ID, services.CreateExpenseInput{
		Title: "Dinner", Amount: decimal.NewFromInt(40), SplitType: services.SplitEqual,
		Participants: []services.ParticipantInput{{UserID: users["bob"].ID}},
	}); err != nil {
		t.Fatalf("dinner: %v", err)
	}
	if _, err := ledger.CreateLendingEntry(ctx, users["alice"].ID, services.CreateLendingInput{
		BorrowerID: users["bob"].ID, Amount: decimal.NewFromInt(15), Reason: "books",
	}); err != nil {
		t.Fatalf("loan: %v", err)
	}
	if _, err := ledger.CreateExpense(ctx, users["carol"].ID, services.CreateExpenseInput{
		Title: "Cab", Amount: decimal.NewFromInt(10), SplitType: services.SplitEqual,
		Participants: []services.ParticipantInput{{UserID: users["bob"].ID}},
	}); err != nil {
		t.Fatalf("cab: %v", err)
	}
	return ledger, users
}

func TestSendReminderEmailsToDebtors(t *testing.T) {
	ledger, _ := seedLedger(t)

	var (
		mu   sync.Mutex
		sent []sentReminder
	)
	send := func(to, _, total string, lines []utils.ReminderLine) error {
		mu.Lock()
		defer mu.Unlock()
		sent = append(sent, sentReminder{to: to, total: total, lines: lines})
		return nil
	}

	if err := SendReminderEmailsToDebtors(context.Background(), ledger, send); err != nil {
		t.Fatalf("send reminders: %v", err)
	}

	if len(sent) != 1 {
		t.Fatalf("sent %d reminders, want 1: %+v", len(sent), sent)
	}
	got := sent[0]
	if got.to != "bob@example.com" || got.total != "40.00" {
		t.Errorf("reminder = %+v, want bob owing 40.00", got)
	}
	if len(got.lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(got.lines))
	}
	if got.lines[0] != (utils.ReminderLine{Creditor: "alice", Amount: "35.00", Items: 2}) {
		t.Errorf("first line = %+v", got.lines[0])
	}
	if got.lines[1] != (utils.ReminderLine{Creditor: "carol", Amount: "5.00", Items: 1}) {
		t.Errorf("second line = %+v", got.lines[1])
	}
}

func TestSendReminderEmailsToleratesFailures(t *testing.T) {
	ledger, _ := seedLedger(t)

	send := func(string, string, string, []utils.ReminderLine) error {
		return errors.New("smtp down")
	}
	if err := SendReminderEmailsToDebtors(context.Background(), ledger, send); err != nil {
		t.Errorf("a failed send aborted the run: %v", err)
	}
}

func TestStartCronJobRejectsBadSchedule(t *testing.T) {
	ledger, _ := seedLedger(t)
	send := func(string, string, string, []utils.ReminderLine) error { return nil }

	if _, err := StartCronJob(ledger, send, "not a schedule"); err == nil {
		t.Fatalf("bad schedule accepted")
	}

	c, err := StartCronJob(ledger, send, DefaultReminderSchedule)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	c.Stop()
}
