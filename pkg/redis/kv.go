package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// KV is a prefixed string key-value store without expiry
type KV struct {
	client *Client
	prefix string
}

// NewKV creates a key-value helper scoped by prefix
func NewKV(client *Client, prefix string) *KV {
	return &KV{client: client, prefix: prefix}
}

func (k *KV) key(name string) string {
	return fmt.Sprintf("%s:kv:%s", k.prefix, name)
}

// Get returns the stored value and whether it exists.
// A disabled client behaves like an empty store.
func (k *KV) Get(ctx context.Context, name string) (string, bool, error) {
	if !k.client.Enabled() {
		return "", false, nil
	}

	value, err := k.client.Redis().Get(ctx, k.key(name)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("kv get %s: %w", name, err)
	}

	return value, true, nil
}

// Set stores value under name
func (k *KV) Set(ctx context.Context, name, value string) error {
	if !k.client.Enabled() {
		return nil
	}

	if err := k.client.Redis().Set(ctx, k.key(name), value, 0).Err(); err != nil {
		return fmt.Errorf("kv set %s: %w", name, err)
	}
	return nil
}

// Delete removes name
func (k *KV) Delete(ctx context.Context, name string) error {
	if !k.client.Enabled() {
		return nil
	}

	if err := k.client.Redis().Del(ctx, k.key(name)).Err(); err != nil {
		return fmt.Errorf("kv delete %s: %w", name, err)
	}
	return nil
}
