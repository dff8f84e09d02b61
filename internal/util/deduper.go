package util

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Deduper struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewDeduper(rdb *redis.Client, ttl time.Duration) *Deduper {
	return &Deduper{rdb: rdb, ttl: ttl}
}

// AcquireOnce tries to acquire a dedup lock for a handler + event key.
// Returns true if this is the FIRST time processing, false on a duplicate.
func (d *Deduper) AcquireOnce(ctx context.Context, handler, eventKey string) bool {
	key := fmt.Sprintf("dedup:%s:%s", handler, eventKey)

	ok, err := d.rdb.SetNX(ctx, key, 1, d.ttl).Result()
	if err != nil {
		// Redis 不可用时不阻塞处理，宁可重复也不丢事件
		return true
	}
	return ok
}
