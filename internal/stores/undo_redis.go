package stores

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisUndoStore keeps undo entries in Redis under a TTL. Consumption uses
// GETDEL, so two racing undo attempts on the same token resolve to exactly
// one winner without any client-side locking.
type RedisUndoStore struct {
	redis  *redis.Client
	prefix string
}

// NewRedisUndoStore builds an undo cache over an existing Redis client.
func NewRedisUndoStore(client *redis.Client, prefix string) *RedisUndoStore {
	return &RedisUndoStore{
		redis:  client,
		prefix: prefix,
	}
}

func (s *RedisUndoStore) key(id string) string {
	return s.prefix + ":" + id
}

// Save stores the record under id for ttl. The server TTL is authoritative
// for eviction; ExpiresAt in the record double-checks on the consume path.
func (s *RedisUndoStore) Save(ctx context.Context, id string, rec *UndoRecord, ttl time.Duration) error {
	now := time.Now()
	rec.CreatedAt = now.Unix()
	rec.ExpiresAt = now.Add(ttl).Unix()

	encoded, err := encodeUndoRecord(rec)
	if err != nil {
		return err
	}
	if err := s.redis.Set(ctx, s.key(id), encoded, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUndoUnavailable, err)
	}
	return nil
}

// Consume atomically removes and returns the record. A missing, expired, or
// already-consumed id yields ErrUndoNotFound.
func (s *RedisUndoStore) Consume(ctx context.Context, id string) (*UndoRecord, error) {
	data, err := s.redis.GetDel(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrUndoNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrUndoUnavailable, err)
	}

	rec, err := decodeUndoRecord(data)
	if err != nil {
		return nil, err
	}
	if time.Now().Unix() > rec.ExpiresAt {
		return nil, ErrUndoNotFound
	}
	return rec, nil
}

// Close is a no-op; the Redis client is owned by the caller.
func (s *RedisUndoStore) Close() error { return nil }
