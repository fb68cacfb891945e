// Package email delivers transactional mail for account verification and
// meeting lifecycle notifications.
package email

import (
	"context"

	"meetingease_backend/platform/config"
)

// Sender delivers transactional emails.
type Sender interface {
	SendVerificationEmail(ctx context.Context, toEmail, verifyURL string) error
	SendPasswordResetEmail(ctx context.Context, toEmail, resetURL string) error
	SendMeetingScheduledEmail(ctx context.Context, toEmail, clientName, meetingDate, address, dealType string) error
	SendMeetingReminderEmail(ctx context.Context, toEmail, clientName, meetingDate, address string) error
	SendMeetingCancelledEmail(ctx context.Context, toEmail, clientName, meetingDate string) error
}

// NoopSender is used when email delivery is disabled.
type NoopSender struct{}

func (NoopSender) SendVerificationEmail(ctx context.Context, toEmail, verifyURL string) error {
	return nil
}

func (NoopSender) SendPasswordResetEmail(ctx context.Context, toEmail, resetURL string) error {
	return nil
}

func (NoopSender) SendMeetingScheduledEmail(ctx context.Context, toEmail, clientName, meetingDate, address, dealType string) error {
	return nil
}

func (NoopSender) SendMeetingReminderEmail(ctx context.Context, toEmail, clientName, meetingDate, address string) error {
	return nil
}

func (NoopSender) SendMeetingCancelledEmail(ctx context.Context, toEmail, clientName, meetingDate string) error {
	return nil
}

// NewSender returns an SMTP-backed sender, or a NoopSender when email
// delivery is disabled in configuration.
func NewSender(cfg config.SMTPConfig) Sender {
	if !cfg.GetEmailEnabled() {
		return NoopSender{}
	}
	return NewSMTPSender(
		cfg.GetSMTPHost(),
		cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(),
		cfg.GetSMTPPassword(),
		cfg.GetEmailFromAddress(),
		cfg.GetEmailFromName(),
	)
}
