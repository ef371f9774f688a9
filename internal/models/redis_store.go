package models

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	pageKeyPrefix     = "page:"
	maxUpdateAttempts = 10
)

// RedisStore keeps page states as JSON values with an idle TTL. Updates use
// WATCH/MULTI so concurrent writers of one session retry instead of
// overwriting each other.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultStateTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Load(ctx context.Context, key string) (*PageState, error) {
	raw, err := s.client.Get(ctx, pageKeyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return NewPageState(), nil
		}
		return nil, fmt.Errorf("failed to load page state: %w", err)
	}
	return decodePageState(raw)
}

func (s *RedisStore) Update(ctx context.Context, key string, fn func(*PageState) error) (*PageState, error) {
	redisKey := pageKeyPrefix + key

	var state *PageState
	var fnErr error

	txf := func(tx *redis.Tx) error {
		state = NewPageState()
		raw, err := tx.Get(ctx, redisKey).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return err
		default:
			if state, err = decodePageState(raw); err != nil {
				return err
			}
		}

		fnErr = fn(state)
		if err := state.Validate(); err != nil {
			return err
		}
		state.UpdatedAt = time.Now()

		encoded, err := json.Marshal(state)
		if err != nil {
			return fmt.Errorf("failed to marshal page state: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, redisKey, encoded, s.ttl)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		err := s.client.Watch(ctx, txf, redisKey)
		if err == nil {
			return state, fnErr
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		var stateErr StateError
		if errors.As(err, &stateErr) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update page state: %w", err)
	}

	return nil, ErrStoreConflict
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, pageKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to delete page state: %w", err)
	}
	return nil
}

func (s *RedisStore) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return s.client.Ping(ctx).Err()
}
