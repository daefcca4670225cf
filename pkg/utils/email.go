package utils

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"
)

type MailConfig struct {
	From     string
	Password string
	Host     string
	Port     int
}

func MailConfigFromEnv() (MailConfig, error) {
	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		return MailConfig{}, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}
	cfg := MailConfig{
		From:     os.Getenv("SMTP_EMAIL"),
		Password: os.Getenv("SMTP_PASS"),
		Host:     os.Getenv("SMTP_HOST"),
		Port:     port,
	}
	if cfg.From == "" || cfg.Host == "" {
		return MailConfig{}, fmt.Errorf("SMTP_EMAIL and SMTP_HOST are required")
	}
	return cfg, nil
}

func NewMessage(from, to, subject, body string) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)
	return msg
}

func SendEmail(cfg MailConfig, to, subject, body string) error {
	msg := NewMessage(cfg.From, to, subject, body)

	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.From, cfg.Password)
	if err := d.DialAndSend(msg); err != nil {
		Logger.Errorf("failed to send email to %s", to)
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
