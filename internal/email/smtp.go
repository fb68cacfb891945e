package email

import (
	"context"
	"fmt"
	"net"
	"time"

	gomail "github.com/wneessen/go-mail"
)

// SMTPSender implements the Sender interface using a direct SMTP connection via go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

// NewSMTPSender creates a new SMTPSender with the given SMTP credentials.
func NewSMTPSender(host string, port int, username, password, fromEmail, fromName string) *SMTPSender {
	return &SMTPSender{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, htmlContent string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}

func (s *SMTPSender) SendVerificationEmail(ctx context.Context, toEmail, verifyURL string) error {
	content, err := renderEmailTemplate("verification.html", verificationEmailData{
		baseEmailData: baseEmailData{
			Title:    "Confirm your email address",
			Heading:  "Confirm your email address",
			CTALabel: "Verify email",
			CTAURL:   verifyURL,
		},
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectVerification, content)
}

func (s *SMTPSender) SendPasswordResetEmail(ctx context.Context, toEmail, resetURL string) error {
	content, err := renderEmailTemplate("password_reset.html", passwordResetEmailData{
		baseEmailData: baseEmailData{
			Title:    "Reset your password",
			Heading:  "Reset your password",
			CTALabel: "Reset password",
			CTAURL:   resetURL,
		},
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectPasswordReset, content)
}

func (s *SMTPSender) SendMeetingScheduledEmail(ctx context.Context, toEmail, clientName, meetingDate, address, dealType string) error {
	content, err := renderEmailTemplate("meeting_scheduled.html", meetingScheduledEmailData{
		baseEmailData: baseEmailData{
			Title:   "Meeting scheduled",
			Heading: "Your meeting is scheduled",
		},
		ClientName:  clientName,
		MeetingDate: meetingDate,
		Address:     address,
		DealType:    dealType,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectMeetingScheduled, content)
}

func (s *SMTPSender) SendMeetingReminderEmail(ctx context.Context, toEmail, clientName, meetingDate, address string) error {
	content, err := renderEmailTemplate("meeting_reminder.html", meetingReminderEmailData{
		baseEmailData: baseEmailData{
			Title:   "Meeting reminder",
			Heading: "Upcoming meeting",
		},
		ClientName:  clientName,
		MeetingDate: meetingDate,
		Address:     address,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectMeetingReminder, content)
}

func (s *SMTPSender) SendMeetingCancelledEmail(ctx context.Context, toEmail, clientName, meetingDate string) error {
	content, err := renderEmailTemplate("meeting_cancelled.html", meetingCancelledEmailData{
		baseEmailData: baseEmailData{
			Title:   "Meeting cancelled",
			Heading: "Your meeting was cancelled",
		},
		ClientName:  clientName,
		MeetingDate: meetingDate,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectMeetingCancelled, content)
}

// Compile-time check that SMTPSender implements Sender
var _ Sender = (*SMTPSender)(nil)
