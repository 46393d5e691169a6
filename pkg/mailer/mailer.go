package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/talentscout/talentscout-api/pkg/logger"
	"go.uber.org/zap"
)

// SMTPMailer sends plain-text notification emails through an SMTP relay.
// smtp.SendMail negotiates STARTTLS when the server advertises it.
type SMTPMailer struct {
	host     string
	port     string
	from     string
	password string
}

// NewSMTPMailer creates a mailer for the given relay and sender account
func NewSMTPMailer(host, port, from, password string) *SMTPMailer {
	return &SMTPMailer{
		host:     host,
		port:     port,
		from:     from,
		password: password,
	}
}

// Send delivers a plain-text message to a single recipient. An error means the
// message was not accepted for delivery.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	msg := BuildMessage(m.from, to, subject, body)
	auth := smtp.PlainAuth("", m.from, m.password, m.host)

	err := smtp.SendMail(m.host+":"+m.port, auth, m.from, []string{to}, msg)
	if err != nil {
		logger.Error("Failed to send email",
			zap.String("to", to),
			zap.String("subject", subject),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err))
		return fmt.Errorf("send mail to %s: %w", to, err)
	}

	logger.Info("Email sent",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.Duration("duration", time.Since(start)))
	return nil
}

// BuildMessage assembles an RFC 5322 plain-text message. Header values are
// stripped of CR/LF so candidate-controlled input cannot inject headers.
func BuildMessage(from, to, subject, body string) []byte {
	sanitize := func(s string) string {
		s = strings.ReplaceAll(s, "\r", "")
		return strings.ReplaceAll(s, "\n", "")
	}

	var b strings.Builder
	b.WriteString("From: " + sanitize(from) + "\r\n")
	b.WriteString("To: " + sanitize(to) + "\r\n")
	b.WriteString("Subject: " + sanitize(subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}
