// Package rdx owns the Redis connection and the small key-value records the
// app keeps there.
package rdx

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"fitshare/config"
)

const revokedPrefix = "auth:revoked:"

// Connect opens a client from cfg and pings it.
func Connect(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	conn := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := conn.Ping(ctx).Err(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return conn, nil
}

// Revocations is the token denylist. A revoked token id stays listed until
// the token would have expired anyway.
type Revocations struct {
	Conn redis.UniversalClient
}

func NewRevocations(conn redis.UniversalClient) *Revocations {
	return &Revocations{Conn: conn}
}

// Revoke lists jti for ttl. Non-positive ttls are ignored since the token is
// already expired.
func (r *Revocations) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if jti == "" || ttl <= 0 {
		return nil
	}
	return r.Conn.Set(ctx, revokedPrefix+jti, 1, ttl).Err()
}

// IsRevoked reports whether jti was revoked.
func (r *Revocations) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	err := r.Conn.Get(ctx, revokedPrefix+jti).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
