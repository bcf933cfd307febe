// Package redisstore keeps session records and the activity log in Redis.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rpggio/guidequeue/internal/domain/activity"
	"github.com/rpggio/guidequeue/internal/repository"
)

// MaxActivityEntries bounds the activity list.
const MaxActivityEntries = 5000

// Options describes a Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
}

// Connect opens a client and pings the server.
func Connect(ctx context.Context, opts Options) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: redis ping %s: %v", repository.ErrUnavailable, opts.Addr, err)
	}
	return client, nil
}

// KVRepository implements repository.KVRepository with plain string keys.
type KVRepository struct {
	client redis.UniversalClient
}

// NewKVRepository creates a KVRepository.
func NewKVRepository(client redis.UniversalClient) *KVRepository {
	return &KVRepository{client: client}
}

func (r *KVRepository) Get(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", repository.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get %s: %w", key, err)
	}
	return value, nil
}

func (r *KVRepository) Put(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// PutMany writes all values in one MULTI/EXEC.
func (r *KVRepository) PutMany(ctx context.Context, values map[string]string) error {
	pipe := r.client.TxPipeline()
	for key, value := range values {
		pipe.Set(ctx, key, value, 0)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis multi set: %w", err)
	}
	return nil
}

func (r *KVRepository) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// ActivityRepository stores entries as JSON in a list, newest at the head.
type ActivityRepository struct {
	client redis.UniversalClient
	key    string
}

// NewActivityRepository creates an ActivityRepository on the list at key.
func NewActivityRepository(client redis.UniversalClient, key string) *ActivityRepository {
	return &ActivityRepository{client: client, key: key}
}

func (r *ActivityRepository) Log(ctx context.Context, entry *activity.ActivityEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding activity: %w", err)
	}
	pipe := r.client.TxPipeline()
	pipe.LPush(ctx, r.key, data)
	pipe.LTrim(ctx, r.key, 0, MaxActivityEntries-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis lpush %s: %w", r.key, err)
	}
	return nil
}

func (r *ActivityRepository) List(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	stop := int64(-1)
	if opts.Session == "" && opts.Limit > 0 {
		stop = int64(opts.Limit) - 1
	}
	raw, err := r.client.LRange(ctx, r.key, 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("redis lrange %s: %w", r.key, err)
	}

	entries := []activity.ActivityEntry{}
	for _, item := range raw {
		var entry activity.ActivityEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			continue
		}
		if opts.Session != "" && entry.Session != opts.Session {
			continue
		}
		entries = append(entries, entry)
		if opts.Limit > 0 && len(entries) == opts.Limit {
			break
		}
	}
	return entries, nil
}

func (r *ActivityRepository) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", r.key, err)
	}
	return nil
}
