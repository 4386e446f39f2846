// Package redisstore provides a Redis implementation of policy.Store. The
// policy is a small JSON document under a single key, which makes Redis a
// natural backend for deployments that already run one.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/linnemanlabs/warden/internal/policy"
)

const policyKey = "warden:policy:triage"

// Store persists the triage policy in Redis.
type Store struct {
	client *redis.Client
}

// New pings the Redis instance at addr and returns a ready Store.
func New(ctx context.Context, addr string) (*Store, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Store{client: client}, nil
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

// Load retrieves the saved policy. ok=false means the key does not exist.
func (s *Store) Load(ctx context.Context) (policy.Policy, bool, error) {
	raw, err := s.client.Get(ctx, policyKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return policy.Policy{}, false, nil
		}
		return policy.Policy{}, false, fmt.Errorf("redis get: %w", err)
	}

	var p policy.Policy
	if err := json.Unmarshal(raw, &p); err != nil {
		return policy.Policy{}, false, fmt.Errorf("unmarshal policy: %w", err)
	}
	return p, true, nil
}

// Save overwrites the policy key. No TTL: the policy is durable until the
// next change.
func (s *Store) Save(ctx context.Context, p policy.Policy) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal policy: %w", err)
	}
	if err := s.client.Set(ctx, policyKey, raw, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
