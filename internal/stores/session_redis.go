package stores

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisSessionStore persists edit sessions in Redis, one record per session
// id, expired by the server's key TTL plus an explicit ExpiresAt in the
// record. Page mutations use WATCH transactions so two racing selection
// events on the same session never lose a page.
type RedisSessionStore struct {
	redis   *redis.Client
	prefix  string
	idleTTL time.Duration
}

// NewRedisSessionStore builds a session store over an existing Redis
// client. idleTTL is the sliding lifetime of an untouched session.
func NewRedisSessionStore(client *redis.Client, prefix string, idleTTL time.Duration) *RedisSessionStore {
	return &RedisSessionStore{
		redis:   client,
		prefix:  prefix,
		idleTTL: idleTTL,
	}
}

func (s *RedisSessionStore) key(id string) string {
	return s.prefix + ":" + id
}

// Create stores a fresh session. The caller assigns the id.
func (s *RedisSessionStore) Create(ctx context.Context, sess *EditSession) error {
	now := time.Now()
	sess.CreatedAt = now.Unix()
	sess.ExpiresAt = now.Add(s.idleTTL).Unix()

	encoded, err := encodeEditSession(sess)
	if err != nil {
		return err
	}
	if err := s.redis.Set(ctx, s.key(sess.ID), encoded, s.idleTTL).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrSessionUnavailable, err)
	}
	return nil
}

// Get returns the session, or ErrSessionNotFound when missing or past its
// recorded expiry.
func (s *RedisSessionStore) Get(ctx context.Context, id string) (*EditSession, error) {
	data, err := s.redis.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrSessionUnavailable, err)
	}

	sess, err := decodeEditSession(data)
	if err != nil {
		return nil, err
	}
	if time.Now().Unix() > sess.ExpiresAt {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// SetPage replaces one page's selection and refreshes the idle TTL.
func (s *RedisSessionStore) SetPage(ctx context.Context, id string, page int, sel PageSelection) error {
	return s.mutate(ctx, id, func(sess *EditSession) {
		if sel.empty() {
			delete(sess.Pages, page)
			return
		}
		sess.Pages[page] = sel
	})
}

// MarkAll sets or clears the all-selected sentinel and refreshes the idle
// TTL. Page selections are kept; the sentinel merely overrides them.
func (s *RedisSessionStore) MarkAll(ctx context.Context, id string, all bool) error {
	return s.mutate(ctx, id, func(sess *EditSession) {
		sess.AllSelected = all
	})
}

// Delete removes the session. Deleting an absent session is not an error.
func (s *RedisSessionStore) Delete(ctx context.Context, id string) error {
	if err := s.redis.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrSessionUnavailable, err)
	}
	return nil
}

// Close is a no-op; the Redis client is owned by the caller.
func (s *RedisSessionStore) Close() error { return nil }

func (s *RedisSessionStore) mutate(ctx context.Context, id string, apply func(*EditSession)) error {
	const maxRetries = 4
	key := s.key(id)

	for i := 0; i < maxRetries; i++ {
		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if err != nil {
				return err
			}

			sess, err := decodeEditSession(data)
			if err != nil {
				return err
			}
			if time.Now().Unix() > sess.ExpiresAt {
				return ErrSessionNotFound
			}

			apply(sess)
			sess.ExpiresAt = time.Now().Add(s.idleTTL).Unix()

			encoded, err := encodeEditSession(sess)
			if err != nil {
				return err
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, encoded, s.idleTTL)
				return nil
			})
			return err
		}, key)

		if err == redis.TxFailedErr {
			continue
		}
		if err != nil {
			switch {
			case errors.Is(err, redis.Nil), errors.Is(err, ErrSessionNotFound):
				return ErrSessionNotFound
			case errors.Is(err, errSessionRecordCorrupt):
				return err
			default:
				return fmt.Errorf("%w: %v", ErrSessionUnavailable, err)
			}
		}
		return nil
	}

	return fmt.Errorf("%w: too many transaction conflicts", ErrSessionUnavailable)
}
