package models

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "spk:onboarding:"

type RedisRepo struct {
	rdb *redis.Client
}

func RedisNewRepo(rdb *redis.Client) *RedisRepo {
	return &RedisRepo{rdb: rdb}
}

func sessionKey(code string) string {
	return sessionKeyPrefix + code
}

func (r *RedisRepo) Create(ctx context.Context, state *SessionState, ttl time.Duration) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	ok, err := r.rdb.SetNX(ctx, sessionKey(state.Code), payload, ttl).Result()
	if err != nil {
		return fmt.Errorf("redis setnx: %w", err)
	}
	if !ok {
		return ErrCodeTaken
	}
	return nil
}

func (r *RedisRepo) Put(ctx context.Context, state *SessionState, ttl time.Duration) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := r.rdb.Set(ctx, sessionKey(state.Code), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (r *RedisRepo) Get(ctx context.Context, code string) (*SessionState, error) {
	raw, err := r.rdb.Get(ctx, sessionKey(code)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	var state SessionState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", code, err)
	}
	return &state, nil
}

func (r *RedisRepo) Delete(ctx context.Context, code string) error {
	n, err := r.rdb.Del(ctx, sessionKey(code)).Result()
	if err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}
