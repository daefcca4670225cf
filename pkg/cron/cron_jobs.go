package cron

import (
	"context"
	"fmt"
	"sync"
	"time"

	"khata_ledger/internal/models"
	"khata_ledger/internal/services"
	"khata_ledger/pkg/utils"

	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
)

// DefaultReminderSchedule runs the debtor reminders daily at midnight.
const DefaultReminderSchedule = "0 0 * * *"

// ReminderSender delivers one reminder email.
type ReminderSender func(to, firstName, total string, lines []utils.ReminderLine) error

// MailReminderSender sends reminders over SMTP.
func MailReminderSender(cfg utils.MailConfig) ReminderSender {
	return func(to, firstName, total string, lines []utils.ReminderLine) error {
		return utils.SendDebtorReminderEmail(cfg, to, firstName, total, lines)
	}
}

func StartCronJob(ledger *services.Ledger, send ReminderSender, schedule string) (*cron.Cron, error) {
	c := cron.New()

	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 45*time.Second)
		defer cancel()

		if err := SendReminderEmailsToDebtors(ctx, ledger, send); err != nil {
			utils.Logger.Errorf("Cron job failed to send reminder emails: %v", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to schedule debtor reminder job: %w", err)
	}

	c.Start()
	utils.Logger.Infof("Cron jobs started (debtor reminders at %q)", schedule)
	return c, nil
}

// reminderLines turns the "to return" side of a summary into one line per
// creditor.
func reminderLines(owed []models.CounterpartyBalance) []utils.ReminderLine {
	lines := make([]utils.ReminderLine, 0, len(owed))
	for _, cp := range owed {
		lines = append(lines, utils.ReminderLine{
			Creditor: cp.Username,
			Amount:   cp.Total.StringFixed(2),
			Items:    len(cp.Records),
		})
	}
	return lines
}

// SendReminderEmailsToDebtors emails every user with unpaid splits or open
// khata entries a breakdown of what they owe. Sends run concurrently; a
// failed send is logged and does not stop the others.
func SendReminderEmailsToDebtors(ctx context.Context, ledger *services.Ledger, send ReminderSender) error {
	debtors, err := ledger.ListDebtors(ctx)
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	errChan := make(chan error, len(debtors))

	for _, debtor := range debtors {
		summary, err := ledger.GetBalanceSummary(ctx, debtor.ID)
		if err != nil {
			utils.Logger.Errorf("Failed to build summary for user %d: %v", debtor.ID, err)
			continue
		}
		if summary.TotalToReturn.LessThanOrEqual(decimal.Zero) {
			continue
		}

		wg.Add(1)
		go func(email, firstName, total string, lines []utils.ReminderLine) {
			defer wg.Done()

			if err := send(email, firstName, total, lines); err != nil {
				errChan <- fmt.Errorf("failed to send reminder email to %s: %w", email, err)
				return
			}
			utils.Logger.Infof("Sent reminder to %s (%s) for %s", firstName, email, total)
		}(debtor.Email, debtor.FirstName, summary.TotalToReturn.StringFixed(2), reminderLines(summary.ToReturnWith))
	}

	wg.Wait()
	close(errChan)

	failed := 0
	for e := range errChan {
		failed++
		utils.Logger.Error(e)
	}

	utils.Logger.Infof("Finished sending debtor reminder emails (%d failed)", failed)
	return nil
}
