package mq

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitshare/logger"
	"fitshare/models"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []models.VerificationMail
}

func (r *recordingMailer) SendVerification(_ context.Context, m models.VerificationMail) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, m)
	return nil
}

func (r *recordingMailer) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent)
}

func setup(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestActivityChannel(t *testing.T) {
	assert.Equal(t, "activity:65a1b2c3d4e5f60718293a4b", ActivityChannel("65a1b2c3d4e5f60718293a4b"))
}

func TestPublisher_NilConnIsNoop(t *testing.T) {
	p := NewPublisher(nil, logger.Discard())
	assert.NoError(t, p.PublishActivity(context.Background(), "u1", models.ActivityEvent{Type: models.EventLike}))
}

func TestPublisher_PublishActivity(t *testing.T) {
	_, client := setup(t)
	p := NewPublisher(client, logger.Discard())
	ctx := context.Background()

	sub := client.Subscribe(ctx, ActivityChannel("u1"))
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	require.NoError(t, p.PublishActivity(ctx, "u1", models.ActivityEvent{Type: models.EventFollow, ActorID: "u2", TargetID: "u1"}))

	select {
	case msg := <-sub.Channel():
		var ev models.ActivityEvent
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &ev))
		assert.Equal(t, models.EventFollow, ev.Type)
		assert.Equal(t, "u2", ev.ActorID)
	case <-time.After(time.Second):
		t.Fatal("activity event not delivered")
	}
}

func TestMailWorker_DeliversJobs(t *testing.T) {
	mr, client := setup(t)
	rec := &recordingMailer{}
	w := NewMailWorker(client, rec, logger.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool {
		return mr.PubSubNumSub(MailChannel)[MailChannel] == 1
	}, time.Second, 10*time.Millisecond)

	p := NewPublisher(client, logger.Discard())
	require.NoError(t, p.PublishVerificationMail(context.Background(), models.VerificationMail{Email: "ada@example.com", Link: "x"}))
	mr.Publish(MailChannel, "not json")

	assert.Eventually(t, func() bool { return rec.count() == 1 }, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop on cancel")
	}
	assert.Equal(t, "ada@example.com", rec.sent[0].Email)
}
