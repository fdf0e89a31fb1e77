// Package mq carries background jobs and activity events over Redis pub/sub.
// Delivery is at most once: a message published with no subscriber is lost.
package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"fitshare/models"
)

// MailChannel carries verification mail jobs.
const MailChannel = "mail:verification"

// ActivityChannel returns the channel a user's activity events go to.
func ActivityChannel(userID string) string {
	return "activity:" + userID
}

// Publisher emits jobs and events. A nil connection turns every publish
// into a no-op.
type Publisher struct {
	conn redis.UniversalClient
	log  *slog.Logger
}

func NewPublisher(conn redis.UniversalClient, log *slog.Logger) *Publisher {
	return &Publisher{conn: conn, log: log}
}

// PublishVerificationMail queues a verification mail for the mail worker.
func (p *Publisher) PublishVerificationMail(ctx context.Context, m models.VerificationMail) error {
	return p.emit(ctx, MailChannel, m)
}

// PublishActivity sends ev to the activity stream of userID.
func (p *Publisher) PublishActivity(ctx context.Context, userID string, ev models.ActivityEvent) error {
	return p.emit(ctx, ActivityChannel(userID), ev)
}

func (p *Publisher) emit(ctx context.Context, channel string, v any) error {
	if p == nil || p.conn == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s message: %w", channel, err)
	}
	if err := p.conn.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", channel, err)
	}
	p.log.Debug("message published", "channel", channel)
	return nil
}
