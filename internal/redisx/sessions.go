package redisx

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Sessions keeps the active token per user so tokens die on logout, not
// just on expiry.
type Sessions struct{ RDB *redis.Client }

func (s *Sessions) SaveSession(ctx context.Context, userID, token string) error {
	return s.RDB.Set(ctx, fmt.Sprintf(KeySession, userID), token, TTLSession).Err()
}

func (s *Sessions) ActiveSession(ctx context.Context, userID string) (string, error) {
	token, err := s.RDB.Get(ctx, fmt.Sprintf(KeySession, userID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	return token, err
}

func (s *Sessions) ClearSession(ctx context.Context, userID string) error {
	return s.RDB.Del(ctx, fmt.Sprintf(KeySession, userID)).Err()
}
