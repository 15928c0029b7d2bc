// Package notify wraps the outbound SMS and email providers behind small
// interfaces so the checker can be tested without network calls.
package notify

import (
	"context"

	"FieldMonitorAPI/internal/logger"
)

// SMSSender delivers one text message to one recipient.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// EmailSender delivers one templated alert email to one recipient.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, message string) error
}

// LogSender stands in for a real provider when credentials are not
// configured. Used in development so a cycle still runs end to end.
type LogSender struct {
	log *logger.Logger
}

func NewLogSender(log *logger.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) SendSMS(ctx context.Context, to, body string) error {
	s.log.Info("SMS (dry-run) to %s: %s", to, body)
	return nil
}

func (s *LogSender) SendEmail(ctx context.Context, to, subject, message string) error {
	s.log.Info("Email (dry-run) to %s [%s]: %s", to, subject, message)
	return nil
}
