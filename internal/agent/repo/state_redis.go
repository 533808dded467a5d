package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	errx "github.com/everglow-poc-v1/server/internal/core/error"
	logx "github.com/everglow-poc-v1/server/pkg/logger"
)

// RedisStateRepository persists the serialized conversation state between
// turns for transports that cannot carry it themselves (the voice socket).
type RedisStateRepository struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisStateRepository(rdb redis.Cmdable, ttl time.Duration) *RedisStateRepository {
	return &RedisStateRepository{rdb: rdb, ttl: ttl}
}

func (r *RedisStateRepository) stateKey(conversationID string) string {
	return fmt.Sprintf("conversation:%s:state", conversationID)
}

// Save stores the state blob and refreshes the TTL.
func (r *RedisStateRepository) Save(ctx context.Context, conversationID string, state json.RawMessage) error {
	key := r.stateKey(conversationID)
	if err := r.rdb.Set(ctx, key, []byte(state), r.ttl).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to save conversation state to redis")
		return errx.WrapRedis(err)
	}
	return nil
}

// Load returns the stored state, or nil when the conversation is new or
// expired.
func (r *RedisStateRepository) Load(ctx context.Context, conversationID string) (json.RawMessage, error) {
	key := r.stateKey(conversationID)
	raw, err := r.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to load conversation state from redis")
		return nil, errx.WrapRedis(err)
	}
	return json.RawMessage(raw), nil
}

// Clear removes the stored state.
func (r *RedisStateRepository) Clear(ctx context.Context, conversationID string) error {
	key := r.stateKey(conversationID)
	if err := r.rdb.Del(ctx, key).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to delete conversation state from redis")
		return errx.WrapRedis(err)
	}
	return nil
}
