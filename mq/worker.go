package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/redis/go-redis/v9"

	"fitshare/mailer"
	"fitshare/models"
)

// MailWorker consumes MailChannel and hands each job to a Mailer.
type MailWorker struct {
	conn   redis.UniversalClient
	mailer mailer.Mailer
	log    *slog.Logger
}

func NewMailWorker(conn redis.UniversalClient, m mailer.Mailer, log *slog.Logger) *MailWorker {
	return &MailWorker{conn: conn, mailer: m, log: log}
}

// Run blocks until ctx is cancelled. It returns an error only when the
// subscription cannot be established.
func (w *MailWorker) Run(ctx context.Context) error {
	sub := w.conn.Subscribe(ctx, MailChannel)
	defer func() { _ = sub.Close() }()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", MailChannel, err)
	}
	w.log.Info("mail worker listening", "channel", MailChannel)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			w.log.Info("mail worker stopped")
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			w.handle(ctx, msg.Payload)
		}
	}
}

func (w *MailWorker) handle(ctx context.Context, payload string) {
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("panic in mail worker", "panic", r, "stack", string(debug.Stack()))
		}
	}()

	var job models.VerificationMail
	if err := json.Unmarshal([]byte(payload), &job); err != nil {
		w.log.Warn("dropping malformed mail job", "error", err)
		return
	}
	if err := w.mailer.SendVerification(ctx, job); err != nil {
		w.log.Error("verification mail failed", "email", job.Email, "error", err)
		return
	}
	w.log.Info("verification mail sent", "email", job.Email)
}
