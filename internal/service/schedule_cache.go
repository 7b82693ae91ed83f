package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/vaccine-scheduler/internal/domain"
	"github.com/spec-kit/vaccine-scheduler/internal/persistence"
)

// ScheduleCache caches caregiver schedule lookups per date. Entries are
// invalidated whenever a slot is published or consumed; a miss always
// falls through to the ledger.
type ScheduleCache interface {
	Get(ctx context.Context, date domain.Date) ([]string, bool)
	Set(ctx context.Context, date domain.Date, caregivers []string)
	Invalidate(ctx context.Context, date domain.Date)
}

type redisScheduleCache struct {
	redis  *persistence.Redis
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisScheduleCache builds a Redis-backed schedule cache. Cache
// failures are logged and treated as misses, never surfaced to callers.
func NewRedisScheduleCache(redis *persistence.Redis, ttl time.Duration, logger *zap.Logger) ScheduleCache {
	return &redisScheduleCache{redis: redis, ttl: ttl, logger: logger}
}

func scheduleKey(date domain.Date) string {
	return "schedule:" + date.String()
}

func (c *redisScheduleCache) Get(ctx context.Context, date domain.Date) ([]string, bool) {
	if c.redis == nil || c.redis.Client == nil || c.ttl <= 0 {
		return nil, false
	}
	raw, err := c.redis.Client.Get(ctx, scheduleKey(date)).Bytes()
	if err != nil {
		return nil, false
	}
	var caregivers []string
	if err := json.Unmarshal(raw, &caregivers); err != nil {
		c.logger.Warn("corrupt schedule cache entry", zap.String("date", date.String()), zap.Error(err))
		return nil, false
	}
	return caregivers, true
}

func (c *redisScheduleCache) Set(ctx context.Context, date domain.Date, caregivers []string) {
	if c.redis == nil || c.redis.Client == nil || c.ttl <= 0 {
		return
	}
	raw, err := json.Marshal(caregivers)
	if err != nil {
		return
	}
	if err := c.redis.Client.Set(ctx, scheduleKey(date), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("schedule cache set failed", zap.String("date", date.String()), zap.Error(err))
	}
}

func (c *redisScheduleCache) Invalidate(ctx context.Context, date domain.Date) {
	if c.redis == nil || c.redis.Client == nil {
		return
	}
	if err := c.redis.Client.Del(ctx, scheduleKey(date)).Err(); err != nil {
		c.logger.Warn("schedule cache invalidate failed", zap.String("date", date.String()), zap.Error(err))
	}
}

// noopScheduleCache disables caching, used by the console binary.
type noopScheduleCache struct{}

// NewNoopScheduleCache returns a cache that never hits.
func NewNoopScheduleCache() ScheduleCache { return noopScheduleCache{} }

func (noopScheduleCache) Get(context.Context, domain.Date) ([]string, bool) { return nil, false }
func (noopScheduleCache) Set(context.Context, domain.Date, []string)        {}
func (noopScheduleCache) Invalidate(context.Context, domain.Date)           {}
