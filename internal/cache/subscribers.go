// Package cache keeps a read-through Redis index of each publisher's active
// subscribers so fan-out does not hammer the primary store for hot publishers.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SubscriberEntry is the minimal slice of a subscription fan-out needs.
type SubscriberEntry struct {
	SubscriberID string  `json:"subscriber_id"`
	Weight       float64 `json:"weight"`
}

// SubscriberCache stores one Redis list per publisher, rebuilt on miss and
// dropped on any subscription change.
type SubscriberCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSubscriberCache(rdb *redis.Client, ttl time.Duration) *SubscriberCache {
	return &SubscriberCache{rdb: rdb, ttl: ttl}
}

func key(publisherID string) string {
	return fmt.Sprintf("subscribers:index:%s", publisherID)
}

// Page returns entries [offset, offset+limit) for the publisher. On cache miss
// the full list is loaded via load and cached as a Redis list, so subsequent
// pages are served with LRANGE only.
func (c *SubscriberCache) Page(ctx context.Context, publisherID string, offset, limit int, load func(ctx context.Context) ([]SubscriberEntry, error)) ([]SubscriberEntry, error) {
	k := key(publisherID)

	exists, _ := c.rdb.Exists(ctx, k).Result()
	if exists > 0 {
		raws, err := c.rdb.LRange(ctx, k, int64(offset), int64(offset+limit-1)).Result()
		if err == nil {
			entries := make([]SubscriberEntry, 0, len(raws))
			for _, raw := range raws {
				var e SubscriberEntry
				if uErr := json.Unmarshal([]byte(raw), &e); uErr == nil {
					entries = append(entries, e)
				}
			}
			return entries, nil
		}
	}

	all, err := load(ctx)
	if err != nil {
		return nil, err
	}
	if len(all) > 0 {
		payloads := make([]interface{}, len(all))
		for i, e := range all {
			raw, mErr := json.Marshal(e)
			if mErr != nil {
				return nil, mErr
			}
			payloads[i] = raw
		}
		pipe := c.rdb.Pipeline()
		pipe.Del(ctx, k)
		pipe.RPush(ctx, k, payloads...)
		pipe.Expire(ctx, k, c.ttl)
		_, _ = pipe.Exec(ctx)
	}

	if offset >= len(all) {
		return []SubscriberEntry{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

// Invalidate drops the cached list; called on subscribe/unsubscribe.
func (c *SubscriberCache) Invalidate(ctx context.Context, publisherID string) error {
	return c.rdb.Del(ctx, key(publisherID)).Err()
}
