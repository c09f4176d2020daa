package draft

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	// defaultOperationTimeout is the timeout for individual Redis operations
	defaultOperationTimeout = 5 * time.Second
)

// KV is the storage port behind the draft store. Implementations only need
// plain get/set/remove semantics; the store owns serialization.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

type RedisKV struct {
	client *redis.Client
}

func NewRedisKV(addr string) (*RedisKV, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     "",
		DB:           0,
		PoolSize:     10,
		MinIdleConns: 5,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisKV{client: client}, nil
}

func (r *RedisKV) operationContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, defaultOperationTimeout)
}

func (r *RedisKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	opCtx, cancel := r.operationContext(ctx)
	defer cancel()

	val, err := r.client.Get(opCtx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	} else if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (r *RedisKV) Set(ctx context.Context, key string, value []byte) error {
	opCtx, cancel := r.operationContext(ctx)
	defer cancel()

	return r.client.Set(opCtx, key, value, 0).Err()
}

func (r *RedisKV) Remove(ctx context.Context, key string) error {
	opCtx, cancel := r.operationContext(ctx)
	defer cancel()

	return r.client.Del(opCtx, key).Err()
}

func (r *RedisKV) Close() error {
	return r.client.Close()
}

// MemoryKV backs the draft store when Redis is disabled, and test doubles.
type MemoryKV struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{entries: make(map[string][]byte)}
}

func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	dup := append([]byte{}, value...)
	return dup, true, nil
}

func (m *MemoryKV) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = append([]byte{}, value...)
	return nil
}

func (m *MemoryKV) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)
	return nil
}
