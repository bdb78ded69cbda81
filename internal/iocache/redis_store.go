package iocache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/huangsam/donorlens/internal/contract"
	"github.com/huangsam/donorlens/schema"
	"github.com/redis/go-redis/v9"
)

// redisTimeout bounds each cache round trip.
const redisTimeout = 5 * time.Second

// RedisCacheStore keeps ingest results as Redis hashes. A sorted set indexed by
// timestamp tracks every key for status and clearing.
type RedisCacheStore struct {
	client *redis.Client
	prefix string
}

var _ contract.CacheStore = &RedisCacheStore{} // Compile-time check

// NewRedisCacheStore connects to the redis:// URL in connStr.
func NewRedisCacheStore(prefix, connStr string) (*RedisCacheStore, error) {
	opts, err := redis.ParseURL(connStr)
	if err != nil {
		return nil, fmt.Errorf("invalid redis connection string: %w", err)
	}
	store := newRedisCacheStoreWithClient(redis.NewClient(opts), prefix)

	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	if err := store.client.Ping(ctx).Err(); err != nil {
		_ = store.client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return store, nil
}

func newRedisCacheStoreWithClient(client *redis.Client, prefix string) *RedisCacheStore {
	return &RedisCacheStore{client: client, prefix: prefix}
}

func (rs *RedisCacheStore) entryKey(key string) string { return rs.prefix + ":" + key }
func (rs *RedisCacheStore) indexKey() string { return rs.prefix + ":index" }

// Get retrieves a value by key. A missing key returns redis.Nil.
func (rs *RedisCacheStore) Get(key string) ([]byte, int, int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	fields, err := rs.client.HGetAll(ctx, rs.entryKey(key)).Result()
	if err != nil {
		return nil, 0, 0, err
	}
	if len(fields) == 0 {
		return nil, 0, 0, redis.Nil
	}
	version, err := strconv.Atoi(fields["version"])
	if err != nil {
		return nil, 0, 0, fmt.Errorf("corrupt cache version for %s: %w", key, err)
	}
	ts, err := strconv.ParseInt(fields["timestamp"], 10, 64)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("corrupt cache timestamp for %s: %w", key, err)
	}
	return []byte(fields["value"]), version, ts, nil
}

// Set stores a key/value pair and indexes it by timestamp.
func (rs *RedisCacheStore) Set(key string, value []byte, version int, timestamp int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	_, err := rs.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, rs.entryKey(key), "value", value, "version", version, "timestamp", timestamp)
		pipe.ZAdd(ctx, rs.indexKey(), redis.Z{Score: float64(timestamp), Member: key})
		return nil
	})
	return err
}

// Clear removes every entry written under this prefix.
func (rs *RedisCacheStore) Clear() error {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	keys, err := rs.client.ZRange(ctx, rs.indexKey(), 0, -1).Result()
	if err != nil {
		return err
	}
	toDelete := make([]string, 0, len(keys)+1)
	for _, k := range keys {
		toDelete = append(toDelete, rs.entryKey(k))
	}
	toDelete = append(toDelete, rs.indexKey())
	return rs.client.Del(ctx, toDelete...).Err()
}

// GetStatus returns status information about the cache store.
func (rs *RedisCacheStore) GetStatus() (schema.CacheStatus, error) {
	status := schema.CacheStatus{Backend: string(schema.RedisBackend), Connected: true}

	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	count, err := rs.client.ZCard(ctx, rs.indexKey()).Result()
	if err != nil {
		return status, fmt.Errorf("failed to get total entries: %w", err)
	}
	status.TotalEntries = int(count)
	if count == 0 {
		return status, nil
	}

	oldest, err := rs.client.ZRangeWithScores(ctx, rs.indexKey(), 0, 0).Result()
	if err != nil {
		return status, fmt.Errorf("failed to get oldest entry: %w", err)
	}
	newest, err := rs.client.ZRevRangeWithScores(ctx, rs.indexKey(), 0, 0).Result()
	if err != nil {
		return status, fmt.Errorf("failed to get last entry: %w", err)
	}
	if len(oldest) > 0 && len(newest) > 0 {
		status.OldestEntryTime = time.Unix(int64(oldest[0].Score), 0)
		status.LastEntryTime = time.Unix(int64(newest[0].Score), 0)
	}
	return status, nil
}

// Close closes the client connection pool.
func (rs *RedisCacheStore) Close() error {
	return rs.client.Close()
}
