package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const denyListKeyPrefix = "auth:denylist:"

// DenyList records revoked token ids until the tokens would have expired anyway.
type DenyList interface {
	// Revoke marks tokenID revoked until expiresAt. It reports false when the id was
	// already revoked, so exactly one of several concurrent callers sees true.
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) (bool, error)
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// RedisDenyList stores revoked token ids as expiring Redis keys.
type RedisDenyList struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedisDenyList wraps a go-redis client.
func NewRedisDenyList(client *redis.Client) *RedisDenyList {
	return &RedisDenyList{client: client, now: time.Now}
}

// Revoke claims tokenID with SETNX so concurrent revocations of one id have a single winner.
// Already-expired tokens are not stored and report true.
func (d *RedisDenyList) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) (bool, error) {
	ttl := expiresAt.Sub(d.now())
	if ttl <= 0 {
		return true, nil
	}
	return d.client.SetNX(ctx, denyListKeyPrefix+tokenID, 1, ttl).Result()
}

// IsRevoked reports whether tokenID has been revoked.
func (d *RedisDenyList) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := d.client.Exists(ctx, denyListKeyPrefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
