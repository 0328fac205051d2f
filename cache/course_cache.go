package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/princinho/coursemarket/config"
	"github.com/princinho/coursemarket/models"
	"github.com/redis/go-redis/v9"
)

const versionKey = "courses:version"

// CourseCache stores catalog reads in redis. Every key embeds a generation number, so
// Invalidate only has to bump the generation; stale entries expire on their own.
type CourseCache struct {
	client *redis.Client
	ttl    time.Duration
}

func Connect(ctx context.Context, cfg config.RedisConfig) (*CourseCache, error) {
	const op = "cache.Connect"
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return New(client, cfg.CacheTTL), nil
}

func New(client *redis.Client, ttl time.Duration) *CourseCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CourseCache{client: client, ttl: ttl}
}

func (c *CourseCache) GetList(ctx context.Context, key string, dst any) (bool, error) {
	k, err := c.key(ctx, "list:"+key)
	if err != nil {
		return false, err
	}
	return c.get(ctx, k, dst)
}

func (c *CourseCache) SetList(ctx context.Context, key string, value any) error {
	k, err := c.key(ctx, "list:"+key)
	if err != nil {
		return err
	}
	return c.set(ctx, k, value)
}

func (c *CourseCache) GetCourse(ctx context.Context, id string, dst *models.Course) (bool, error) {
	k, err := c.key(ctx, "course:"+id)
	if err != nil {
		return false, err
	}
	return c.get(ctx, k, dst)
}

func (c *CourseCache) SetCourse(ctx context.Context, course *models.Course) error {
	k, err := c.key(ctx, "course:"+course.ID.Hex())
	if err != nil {
		return err
	}
	return c.set(ctx, k, course)
}

func (c *CourseCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, versionKey).Err(); err != nil {
		return fmt.Errorf("cache.Invalidate: %w", err)
	}
	return nil
}

func (c *CourseCache) Close() error {
	return c.client.Close()
}

func (c *CourseCache) key(ctx context.Context, suffix string) (string, error) {
	version, err := c.client.Get(ctx, versionKey).Result()
	if errors.Is(err, redis.Nil) {
		version = "0"
	} else if err != nil {
		return "", fmt.Errorf("cache.version: %w", err)
	}
	return "courses:v" + version + ":" + suffix, nil
}

func (c *CourseCache) get(ctx context.Context, key string, dst any) (bool, error) {
	const op = "cache.Get"
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if err := json.Unmarshal(val, dst); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return true, nil
}

func (c *CourseCache) set(ctx context.Context, key string, value any) error {
	const op = "cache.Set"
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
