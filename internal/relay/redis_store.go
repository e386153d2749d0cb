// In file: internal/relay/redis_store.go
package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/devops-ai/agent-gateway/internal/llm"
	"github.com/devops-ai/agent-gateway/internal/version"

	"github.com/redis/go-redis/v9"
)

// RedisSessionStore keeps conversation histories in Redis as JSON blobs
// under schema-versioned keys, with a sliding TTL so abandoned conversations
// clean themselves up.
type RedisSessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

var _ SessionStore = (*RedisSessionStore)(nil)

func NewRedisSessionStore(rdb *redis.Client, ttl time.Duration) *RedisSessionStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RedisSessionStore{rdb: rdb, ttl: ttl}
}

func (s *RedisSessionStore) Load(ctx context.Context, conversationID string) ([]llm.Message, error) {
	raw, err := s.rdb.Get(ctx, version.SessionKey(conversationID)).Result()
	if err == redis.Nil {
		return []llm.Message{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", conversationID, err)
	}

	var messages []llm.Message
	if err := json.Unmarshal([]byte(raw), &messages); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", conversationID, err)
	}
	return messages, nil
}

func (s *RedisSessionStore) Save(ctx context.Context, conversationID string, messages []llm.Message) error {
	encoded, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("failed to encode session %s: %w", conversationID, err)
	}
	if err := s.rdb.Set(ctx, version.SessionKey(conversationID), encoded, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session %s: %w", conversationID, err)
	}
	return nil
}
