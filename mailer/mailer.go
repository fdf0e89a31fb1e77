// Package mailer delivers transactional email over SMTP.
package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"fitshare/config"
	"fitshare/models"
)

// Mailer sends the verification message for a new account.
type Mailer interface {
	SendVerification(ctx context.Context, m models.VerificationMail) error
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTP sends mail through a relay with PLAIN auth.
type SMTP struct {
	cfg  config.MailConfig
	log  *slog.Logger
	send sendFunc
}

// New returns an SMTP mailer. With no host configured it logs the link
// instead of sending, which is what local development wants.
func New(cfg config.MailConfig, log *slog.Logger) *SMTP {
	return &SMTP{cfg: cfg, log: log, send: smtp.SendMail}
}

func (s *SMTP) SendVerification(ctx context.Context, m models.VerificationMail) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.cfg.Host == "" {
		s.log.Info("mail delivery disabled, verification link not sent", "email", m.Email, "link", m.Link)
		return nil
	}

	msg := buildMessage(s.cfg.User, m.Email, "Verify your email", verificationBody(m))
	auth := smtp.PlainAuth("", s.cfg.User, s.cfg.Password, s.cfg.Host)
	if err := s.send(s.cfg.Host+":"+s.cfg.Port, auth, s.cfg.User, []string{m.Email}, msg); err != nil {
		return fmt.Errorf("send verification to %s: %w", m.Email, err)
	}
	return nil
}

func verificationBody(m models.VerificationMail) string {
	name := m.Name
	if name == "" {
		name = "there"
	}
	return fmt.Sprintf("Hi %s,\r\n\r\nPlease verify your email by opening the link below:\r\n\r\n%s\r\n", name, m.Link)
}

func buildMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n\r\n")
	b.WriteString(body)
	return []byte(b.String())
}
