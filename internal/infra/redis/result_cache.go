package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"paper-assistant/internal/domain/model"
	"paper-assistant/internal/infra/metrics"
)

// ResultCache keeps completed typo check results keyed by
// (user, text hash) so resubmitting identical text returns the stored
// result without queueing a new job.
type ResultCache struct {
	client RedisClient
	ttl    time.Duration
}

func NewResultCache(client RedisClient, ttl time.Duration) *ResultCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &ResultCache{client: client, ttl: ttl}
}

func resultKey(userID, textHash string) string {
	return fmt.Sprintf("typo_result:%s:%s", userID, textHash)
}

// Get returns nil on a miss; redis errors degrade to a miss so the
// cache never blocks the submit path.
func (c *ResultCache) Get(ctx context.Context, userID, textHash string) *model.TypoCheckResult {
	val, err := c.client.Get(ctx, resultKey(userID, textHash))
	if err != nil {
		metrics.IncCacheRequest("typo_result", "miss")
		return nil
	}
	var res model.TypoCheckResult
	if json.Unmarshal([]byte(val), &res) != nil {
		metrics.IncCacheRequest("typo_result", "miss")
		return nil
	}
	metrics.IncCacheRequest("typo_result", "hit")
	return &res
}

// Put stores a completed result; failures are dropped silently.
func (c *ResultCache) Put(ctx context.Context, res *model.TypoCheckResult) {
	b, err := json.Marshal(res)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, resultKey(res.UserID, res.TextHash), b, c.ttl)
}
