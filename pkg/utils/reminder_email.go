package utils

import (
	"fmt"
	"html"
	"strings"
	"time"
)

// ReminderLine is one creditor the debtor still owes.
type ReminderLine struct {
	Creditor string
	Amount   string
	Items    int
}

func BuildDebtorReminderEmail(firstName, total string, lines []ReminderLine, now time.Time) (string, string) {
	subject := fmt.Sprintf("Reminder: you still owe %s", total)

	var rows strings.Builder
	for _, l := range lines {
		fmt.Fprintf(&rows, `
					<tr>
						<td>%s</td>
						<td class="amount">%s</td>
						<td>%d</td>
					</tr>`, html.EscapeString(l.Creditor), l.Amount, l.Items)
	}

	body := fmt.Sprintf(`
	<!DOCTYPE html>
	<html lang="en">
	<head>
	<meta charset="UTF-8">
	<title>Payment Reminder</title>
	<style>
		body { font-family: 'Segoe UI', Roboto, Arial, sans-serif; background-color: #f6f8f7; color: #333; }
		.container { max-width: 480px; margin: 25px auto; background: #ffffff; border-radius: 12px; border-top: 5px solid #d9534f; }
		.header { background-color: #d9534f; color: #ffffff; text-align: center; padding: 18px 12px; }
		.content { padding: 20px 18px; font-size: 14px; line-height: 1.6; }
		table { width: 100%%; border-collapse: collapse; margin: 16px 0; }
		th, td { text-align: left; padding: 6px 4px; border-bottom: 1px solid #eee; }
		.amount { color: #d9534f; font-weight: 700; }
		.footer { background: #f6f6f6; text-align: center; padding: 14px; font-size: 12px; color: #777; }
	</style>
	</head>
	<body>
		<div class="container">
			<div class="header"><h1>Payment Reminder</h1></div>
			<div class="content">
				<p>Hi %s,<br><br>You still have an outstanding balance of <b>%s</b> with your friends:</p>
				<table>
					<tr><th>Friend</th><th>Amount</th><th>Open items</th></tr>%s
				</table>
				<p>Log in to mark what you have paid so everyone's khata stays accurate.</p>
			</div>
			<div class="footer">&copy; %d Khata Ledger</div>
		</div>
	</body>
	</html>
	`, html.EscapeString(firstName), total, rows.String(), now.Year())

	return subject, body
}

func SendDebtorReminderEmail(cfg MailConfig, to, firstName, total string, lines []ReminderLine) error {
	subject, body := BuildDebtorReminderEmail(firstName, total, lines, time.Now())
	return SendEmail(cfg, to, subject, body)
}
