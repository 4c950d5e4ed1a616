package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lucaferri/campusgate/internal/auth"
)

// RedisStore backs session state with Redis. TTLs are enforced by Redis
// itself, so entries vanish without any sweeping on our side.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis and verifies the connection before
// returning.
func NewRedisStore(ctx context.Context, addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", addr, err)
	}
	return &RedisStore{client: client}, nil
}

func (s *RedisStore) SetTokenID(ctx context.Context, userID string, kind auth.TokenKind, tokenID string, ttl time.Duration) error {
	if err := s.client.Set(ctx, tokenKey(userID, kind), tokenID, ttl).Err(); err != nil {
		return fmt.Errorf("set token id: %w", err)
	}
	return nil
}

func (s *RedisStore) GetTokenID(ctx context.Context, userID string, kind auth.TokenKind) (string, error) {
	val, err := s.client.Get(ctx, tokenKey(userID, kind)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get token id: %w", err)
	}
	return val, nil
}

func (s *RedisStore) DeleteTokenID(ctx context.Context, userID string, kind auth.TokenKind) error {
	if err := s.client.Del(ctx, tokenKey(userID, kind)).Err(); err != nil {
		return fmt.Errorf("delete token id: %w", err)
	}
	return nil
}

func (s *RedisStore) SetRoles(ctx context.Context, userID string, roles auth.RoleSet, ttl time.Duration) error {
	payload, err := json.Marshal(roles.Names())
	if err != nil {
		return fmt.Errorf("encode roles: %w", err)
	}
	if err := s.client.Set(ctx, rolesKey(userID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("set roles: %w", err)
	}
	return nil
}

func (s *RedisStore) GetRoles(ctx context.Context, userID string) (auth.RoleSet, bool, error) {
	payload, err := s.client.Get(ctx, rolesKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get roles: %w", err)
	}

	var names []string
	if err := json.Unmarshal(payload, &names); err != nil {
		return nil, false, fmt.Errorf("decode roles: %w", err)
	}
	return auth.NewRoleSet(names...), true, nil
}

func (s *RedisStore) DeleteRoles(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, rolesKey(userID)).Err(); err != nil {
		return fmt.Errorf("delete roles: %w", err)
	}
	return nil
}

func (s *RedisStore) HealthCheck(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
