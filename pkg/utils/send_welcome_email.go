package utils

import (
	"fmt"
	"html"
	"time"
)

func BuildWelcomeEmail(username string, now time.Time) (string, string) {
	subject := fmt.Sprintf("Welcome to Khata Ledger, %s!", username)

	body := fmt.Sprintf(`
	<!DOCTYPE html>
	<html lang="en">
	<head>
	<meta charset="UTF-8">
	<title>Welcome to Khata Ledger</title>
	<style>
		body { font-family: 'Segoe UI', Roboto, Arial, sans-serif; background-color: #f9fbfa; color: #333; }
		.container { max-width: 520px; margin: 30px auto; background: #ffffff; border-radius: 14px; border-top: 5px solid #00795f; }
		.header { background-color: #00795f; color: #ffffff; text-align: center; padding: 20px 12px; }
		.content { padding: 22px 20px; font-size: 14px; line-height: 1.6; }
		.footer { background: #f6f6f6; text-align: center; padding: 14px; font-size: 12px; color: #777; }
	</style>
	</head>
	<body>
		<div class="container">
			<div class="header"><h1>Welcome, %s</h1></div>
			<div class="content">
				<p>Your khata is ready. Here is what you can do next:</p>
				<ul>
					<li>Add your friends so you can split bills with them</li>
					<li>Record shared expenses and split them equally or by amount</li>
					<li>Keep track of money you lend and settle it when it comes back</li>
				</ul>
				<p>Your summary always shows who owes you and whom you owe.</p>
			</div>
			<div class="footer">&copy; %d Khata Ledger</div>
		</div>
	</body>
	</html>
	`, html.EscapeString(username), now.Year())

	return subject, body
}

func SendWelcomeEmail(cfg MailConfig, to, username string) error {
	subject, body := BuildWelcomeEmail(username, time.Now())
	return SendEmail(cfg, to, subject, body)
}
