package push

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Device tokens expire unless the app re-registers them; stale tokens
// from uninstalled apps age out on their own.
const tokenTTL = 60 * 24 * time.Hour

// TokenStore keeps registered device tokens per user in Redis.
type TokenStore struct {
	rdb *redis.Client
}

func NewTokenStore(rdb *redis.Client) *TokenStore {
	return &TokenStore{rdb: rdb}
}

func key(userID uuid.UUID) string {
	return fmt.Sprintf("push:tokens:%s", userID)
}

// Register adds a device token for the user and refreshes the TTL.
func (s *TokenStore) Register(ctx context.Context, userID uuid.UUID, token string) error {
	pipe := s.rdb.TxPipeline()
	pipe.SAdd(ctx, key(userID), token)
	pipe.Expire(ctx, key(userID), tokenTTL)
	_, err := pipe.Exec(ctx)
	return err
}

// Unregister removes a device token for the user.
func (s *TokenStore) Unregister(ctx context.Context, userID uuid.UUID, token string) error {
	return s.rdb.SRem(ctx, key(userID), token).Err()
}

// Tokens returns the user's registered device tokens.
func (s *TokenStore) Tokens(ctx context.Context, userID uuid.UUID) ([]string, error) {
	return s.rdb.SMembers(ctx, key(userID)).Result()
}
