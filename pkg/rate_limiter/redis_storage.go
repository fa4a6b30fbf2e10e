package rate_limiter

import (
	"context"
	_ "embed"
	"fmt"
	"github.com/redis/go-redis/v9"
	"github.com/techsaints/landing/pkg/env"
	"log/slog"
	"time"
)

//go:embed scripts/redis_lua/fixed_window.lua
var fixedWindowLuaScriptSource string

var fixedWindowScript = redis.NewScript(fixedWindowLuaScriptSource)

type RedisStorage struct {
	dB  redis.Scripter
	now func() time.Time
}

// NewRedisClient builds the redis client from the process environment.
func NewRedisClient() *redis.Client {
	envObj := env.GetEnv()
	return redis.NewClient(&redis.Options{
		Addr:     envObj.RedisAddr,
		Password: envObj.RedisPassword,
		DB:       envObj.RedisDb,
		PoolSize: envObj.RedisPoolSize,
	})
}

func NewRedisStorage(db redis.Scripter) *RedisStorage {
	return &RedisStorage{
		dB:  db,
		now: time.Now,
	}
}

func (r *RedisStorage) CheckAndUpdateFixedWindow(ctx context.Context, key string, maxRequests int, window time.Duration) (Decision, error) {
	result, err := fixedWindowScript.Run(
		ctx,
		r.dB,
		[]string{key},
		maxRequests,
		window.Milliseconds(),
		r.now().UnixMilli(),
	).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("run fixed window script: %w", err)
	}

	if len(result) != 3 {
		return Decision{}, fmt.Errorf("unexpected fixed window script result %v", result)
	}

	decision := Decision{
		Blocked: result[0] > 0,
		Count:   int(result[1]),
		Limit:   maxRequests,
		ResetAt: time.UnixMilli(result[2]),
	}

	slog.Debug("[FixedWindow] redis check", "key", key, "blocked", decision.Blocked, "count", decision.Count)
	return decision, nil
}
