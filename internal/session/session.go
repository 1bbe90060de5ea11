// Package session remembers the last CPF used on this machine.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bestchoice-b3/b3-daily/pkg/config"
	"github.com/bestchoice-b3/b3-daily/pkg/redis"
)

// Key is the fixed key holding the last used CPF
const Key = "dailyb3-cpf"

// Store persists the last used CPF
type Store interface {
	// Get returns the stored CPF; ok is false when none is stored
	Get(ctx context.Context) (cpf string, ok bool, err error)
	Set(ctx context.Context, cpf string) error
	Clear(ctx context.Context) error
}

// New returns the store selected by SESSION_BACKEND
func New(cfg *config.Config, rdb *redis.Client) (Store, error) {
	switch cfg.Session.Backend {
	case "file", "":
		return NewFileStore(cfg.Session.Path), nil
	case "redis":
		if rdb == nil || !rdb.Enabled() {
			return nil, fmt.Errorf("redis session store requires an enabled redis client")
		}
		return NewRedisStore(rdb), nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Session.Backend)
	}
}

// FileStore keeps the session in a small JSON object file
type FileStore struct {
	path string
}

// NewFileStore creates a store writing to path
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) read() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}

	values := map[string]string{}
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("decode session file: %w", err)
	}
	return values, nil
}

func (f *FileStore) write(values map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session file: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}

// Get implements Store
func (f *FileStore) Get(ctx context.Context) (string, bool, error) {
	values, err := f.read()
	if err != nil {
		return "", false, err
	}
	cpf, ok := values[Key]
	if !ok || cpf == "" {
		return "", false, nil
	}
	return cpf, true, nil
}

// Set implements Store. An empty CPF is not stored.
func (f *FileStore) Set(ctx context.Context, cpf string) error {
	if cpf == "" {
		return nil
	}

	values, err := f.read()
	if err != nil {
		return err
	}
	values[Key] = cpf
	return f.write(values)
}

// Clear implements Store
func (f *FileStore) Clear(ctx context.Context) error {
	values, err := f.read()
	if err != nil {
		return err
	}
	if _, ok := values[Key]; !ok {
		return nil
	}
	delete(values, Key)
	return f.write(values)
}

// RedisStore keeps the session in Redis
type RedisStore struct {
	kv *redis.KV
}

// NewRedisStore creates a Redis-backed store
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{kv: redis.NewKV(rdb, "dailyb3")}
}

// Get implements Store
func (r *RedisStore) Get(ctx context.Context) (string, bool, error) {
	cpf, ok, err := r.kv.Get(ctx, Key)
	if err != nil {
		return "", false, fmt.Errorf("load session: %w", err)
	}
	if !ok || cpf == "" {
		return "", false, nil
	}
	return cpf, true, nil
}

// Set implements Store. An empty CPF is not stored.
func (r *RedisStore) Set(ctx context.Context, cpf string) error {
	if cpf == "" {
		return nil
	}
	if err := r.kv.Set(ctx, Key, cpf); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Clear implements Store
func (r *RedisStore) Clear(ctx context.Context) error {
	if err := r.kv.Delete(ctx, Key); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
