package data

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "chat:topic:"

// putIfFresher writes the payload unless the stored record's seq is already
// at or past the incoming one. Runs server-side so the check and the write
// cannot interleave with another writer.
var putIfFresher = redis.NewScript(`
local cur = redis.call('GET', KEYS[1])
if cur then
  local rec = cjson.decode(cur)
  if (rec['seq'] or 0) >= tonumber(ARGV[2]) then
    return 0
  end
end
redis.call('SET', KEYS[1], ARGV[1])
return 1
`)

// RedisStore persists topic records as JSON values in Redis
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed DurableStore
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Put implements DurableStore
func (s *RedisStore) Put(ctx context.Context, rec *TopicRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode topic record: %w", err)
	}

	keys := []string{redisKeyPrefix + rec.ID}
	if err := putIfFresher.Run(ctx, s.client, keys, payload, rec.Seq).Err(); err != nil {
		return fmt.Errorf("failed to store topic record: %w", err)
	}
	return nil
}

// Get implements DurableStore
func (s *RedisStore) Get(ctx context.Context, id string) (*TopicRecord, error) {
	raw, err := s.client.Get(ctx, redisKeyPrefix+id).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to load topic record: %w", err)
	}

	var rec TopicRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, fmt.Errorf("failed to decode topic record: %w", err)
	}
	return &rec, nil
}

// Delete implements DurableStore
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("failed to delete topic record: %w", err)
	}
	return nil
}
