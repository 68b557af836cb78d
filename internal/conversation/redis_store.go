package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const historyTTL = 24 * time.Hour

// RedisStore persists conversation history as a JSON blob per
// conversation with a rolling TTL. Append is read-modify-write; the
// service serializes handling per conversation, so concurrent appends
// to the same key do not occur in practice.
type RedisStore struct {
	redis  *redis.Client
	tracer trace.Tracer
}

// NewRedisStore wires a store over an existing client.
func NewRedisStore(client *redis.Client) *RedisStore {
	if client == nil {
		panic("conversation: redis client cannot be nil")
	}
	return &RedisStore{
		redis:  client,
		tracer: otel.Tracer("concierge.internal.conversation.store"),
	}
}

func (s *RedisStore) Append(ctx context.Context, conversationID string, msg StoredMessage) error {
	ctx, span := s.tracer.Start(ctx, "conversation.append")
	defer span.End()

	msgs, err := s.load(ctx, conversationID)
	if err != nil {
		span.RecordError(err)
		return err
	}
	msgs = append(msgs, msg)
	if len(msgs) > MaxHistory {
		msgs = msgs[len(msgs)-MaxHistory:]
	}

	data, err := json.Marshal(msgs)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: failed to marshal history: %w", err)
	}
	if err := s.redis.Set(ctx, historyKey(conversationID), data, historyTTL).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: failed to persist history: %w", err)
	}
	return nil
}

func (s *RedisStore) History(ctx context.Context, conversationID string) ([]StoredMessage, error) {
	ctx, span := s.tracer.Start(ctx, "conversation.history")
	defer span.End()

	msgs, err := s.load(ctx, conversationID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return msgs, nil
}

func (s *RedisStore) load(ctx context.Context, conversationID string) ([]StoredMessage, error) {
	data, err := s.redis.Get(ctx, historyKey(conversationID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("conversation: failed to load history: %w", err)
	}
	var msgs []StoredMessage
	if err := json.Unmarshal(data, &msgs); err != nil {
		return nil, fmt.Errorf("conversation: failed to decode history: %w", err)
	}
	return msgs, nil
}

func historyKey(conversationID string) string {
	return fmt.Sprintf("concierge:conversation:%s", conversationID)
}
