package api

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisCommander 抽象提交守卫用到的 Redis 操作，便于测试替换。
type redisCommander interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// inflightTTL 兜底保护：即使进程崩溃未释放锁，锁也会自动过期。
const inflightTTL = 2 * time.Minute

func inflightKey(clientID string) string {
	return "jobfit:inflight:" + clientID
}

func dailyCountKey(clientID string) string {
	return "jobfit:checks:" + clientID + ":" + time.Now().UTC().Format("2006-01-02")
}

// acquireInflightLock 获取客户端的提交锁。返回 false 表示已有提交在处理中。
func acquireInflightLock(ctx context.Context, client redisCommander, clientID string) (bool, error) {
	return client.SetNX(ctx, inflightKey(clientID), 1, inflightTTL).Result()
}

// releaseInflightLock 释放提交锁。调用方通过 defer 保证所有退出路径都会执行。
func releaseInflightLock(ctx context.Context, client redisCommander, clientID string) {
	_ = client.Del(ctx, inflightKey(clientID)).Err()
}

// incrWithTTL 自增计数器，并在首次创建时设置过期时间。
func incrWithTTL(ctx context.Context, client redisCommander, key string, ttl time.Duration) (int64, error) {
	count, err := client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		_ = client.Expire(ctx, key, ttl).Err()
	}
	return count, nil
}
