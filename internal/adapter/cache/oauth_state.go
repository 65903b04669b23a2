package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// OAuthState identifies who started an OAuth flow and for which
// platform. The state token in the provider redirect maps back to it.
type OAuthState struct {
	UserID   int64  `json:"user_id"`
	Platform string `json:"platform"`
}

// OAuthStateStore stores pending OAuth flow state. Consuming a state
// removes it, so every state token is single use.
type OAuthStateStore interface {
	Put(ctx context.Context, token string, state OAuthState) error

	// Consume retrieves and deletes a pending state.
	// Returns nil if the token is unknown or expired.
	Consume(ctx context.Context, token string) (*OAuthState, error)
}

// RedisOAuthStateStore implements OAuthStateStore on Redis.
type RedisOAuthStateStore struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedisOAuthStateStore creates a Redis-backed OAuth state store.
func NewRedisOAuthStateStore(client *redis.Client, ttl time.Duration, log *zap.Logger) OAuthStateStore {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisOAuthStateStore{client: client, ttl: ttl, log: log}
}

func (s *RedisOAuthStateStore) stateKey(token string) string {
	return "oauth:state:" + token
}

// Put stores a pending state under its token.
func (s *RedisOAuthStateStore) Put(ctx context.Context, token string, state OAuthState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}

	if err := s.client.Set(ctx, s.stateKey(token), data, s.ttl).Err(); err != nil {
		s.log.Error("failed to store oauth state", zap.String("platform", state.Platform), zap.Error(err))
		return err
	}
	return nil
}

// Consume retrieves and deletes a pending state.
func (s *RedisOAuthStateStore) Consume(ctx context.Context, token string) (*OAuthState, error) {
	key := s.stateKey(token)

	data, err := s.client.GetDel(ctx, key).Bytes()
	if err == redis.Nil {
		s.log.Debug("unknown oauth state token")
		return nil, nil
	}
	if err != nil {
		s.log.Error("failed to consume oauth state", zap.Error(err))
		return nil, err
	}

	var state OAuthState
	if err := json.Unmarshal(data, &state); err != nil {
		s.log.Error("failed to unmarshal oauth state", zap.Error(err))
		return nil, err
	}
	return &state, nil
}
