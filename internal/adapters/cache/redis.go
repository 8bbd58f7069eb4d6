package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"confcentral/internal/domain"
)

// featuredSpeakerSlot is the single well-known key for the announcement.
const featuredSpeakerSlot = "featured_speaker"

type redisCache struct {
	rdb *goredis.Client
}

// NewRedisAnnouncementCache connects to redis and returns an
// AnnouncementCache backed by the featured-speaker slot.
func NewRedisAnnouncementCache(addr string) (domain.AnnouncementCache, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &redisCache{rdb: rdb}, nil
}

func (c *redisCache) Set(ctx context.Context, message string) error {
	// No expiry: the slot holds the value until the next writer overwrites it.
	if err := c.rdb.Set(ctx, featuredSpeakerSlot, message, 0).Err(); err != nil {
		return fmt.Errorf("set announcement: %w", err)
	}
	return nil
}

func (c *redisCache) Get(ctx context.Context) (string, bool, error) {
	message, err := c.rdb.Get(ctx, featuredSpeakerSlot).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get announcement: %w", err)
	}
	return message, true, nil
}
