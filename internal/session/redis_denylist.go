package session

import (
	"context"
	"math"
	"time"

	"github.com/redis/rueidis"
)

type RedisDenylist struct {
	client rueidis.Client
	prefix string
}

func NewRedisDenylist(client rueidis.Client, keyPrefix string) *RedisDenylist {
	return &RedisDenylist{
		client: client,
		prefix: keyPrefix,
	}
}

func (r *RedisDenylist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	seconds := int64(math.Ceil(ttl.Seconds()))
	cmd := r.client.B().Set().Key(r.key(tokenID)).Value("1").ExSeconds(seconds).Build()
	return r.client.Do(ctx, cmd).Error()
}

func (r *RedisDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	cmd := r.client.B().Exists().Key(r.key(tokenID)).Build()
	n, err := r.client.Do(ctx, cmd).AsInt64()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *RedisDenylist) key(tokenID string) string {
	return r.prefix + tokenID
}
