package callcontext

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/hirevox/hirevox/internal/models"
	"github.com/redis/go-redis/v9"
)

// maxUpdateRetries bounds the optimistic-lock retry loop. Contention on one
// interview key is at most a handful of provider retries, so single digits
// is plenty.
const maxUpdateRetries = 8

// RedisStore keeps call contexts as JSON values with a TTL. Update uses
// WATCH so the read-modify-write is atomic per interview key.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func key(interviewID string) string { return "callctx:" + interviewID }

func (s *RedisStore) Put(ctx context.Context, interviewID string, cc *models.CallContext) error {
	cc.UpdatedAt = time.Now().UTC()
	b, err := json.Marshal(cc)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key(interviewID), b, s.ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, interviewID string) (*models.CallContext, error) {
	raw, err := s.rdb.Get(ctx, key(interviewID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var cc models.CallContext
	if err := json.Unmarshal([]byte(raw), &cc); err != nil {
		// corrupt value: drop it so the next step fails cleanly with NotFound
		_ = s.rdb.Del(ctx, key(interviewID)).Err()
		return nil, ErrNotFound
	}
	return &cc, nil
}

func (s *RedisStore) Update(ctx context.Context, interviewID string, fn func(cc *models.CallContext) error) (*models.CallContext, error) {
	k := key(interviewID)

	var out *models.CallContext
	for i := 0; i < maxUpdateRetries; i++ {
		err := s.rdb.Watch(ctx, func(tx *redis.Tx) error {
			raw, err := tx.Get(ctx, k).Result()
			if errors.Is(err, redis.Nil) {
				return ErrNotFound
			}
			if err != nil {
				return err
			}

			var cc models.CallContext
			if err := json.Unmarshal([]byte(raw), &cc); err != nil {
				return ErrNotFound
			}

			if err := fn(&cc); err != nil {
				return err
			}
			cc.UpdatedAt = time.Now().UTC()

			b, err := json.Marshal(&cc)
			if err != nil {
				return err
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, k, b, s.ttl)
				return nil
			})
			if err != nil {
				return err
			}
			out = &cc
			return nil
		}, k)

		if errors.Is(err, redis.TxFailedErr) {
			continue // key changed under us, retry
		}
		if err != nil {
			return nil, err
		}
		return out, nil
	}
	return nil, ErrConflict
}

func (s *RedisStore) Expire(ctx context.Context, interviewID string, ttl time.Duration) error {
	return s.rdb.Expire(ctx, key(interviewID), ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, interviewID string) error {
	return s.rdb.Del(ctx, key(interviewID)).Err()
}
