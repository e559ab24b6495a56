package sequence

import (
	"context"
	"errors"
	"time"

	"bizmap/internal/logger"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "bizmap:gen:"

// Redis：多副本共享的发号器，基于 INCR
// 背景：会话粘滞失效时，另一副本发出的代号同样参与比较
// 约束：每次 Next 刷新 TTL；键过期后代号从 1 重新开始，调用方需同时丢弃会话状态
type Redis struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedis(rdb *redis.Client, ttl time.Duration) *Redis {
	return &Redis{rdb: rdb, ttl: ttl}
}

func (r *Redis) Next(ctx context.Context, session string) (uint64, error) {
	k := keyPrefix + session
	pipe := r.rdb.TxPipeline()
	incr := pipe.Incr(ctx, k)
	if r.ttl > 0 {
		pipe.Expire(ctx, k, r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		logger.L().Error("sequence_next_error", "session", session, "err", err)
		return 0, err
	}
	return uint64(incr.Val()), nil
}

func (r *Redis) Latest(ctx context.Context, session string) (uint64, error) {
	n, err := r.rdb.Get(ctx, keyPrefix+session).Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		logger.L().Error("sequence_latest_error", "session", session, "err", err)
		return 0, err
	}
	return n, nil
}

func (r *Redis) Forget(ctx context.Context, session string) error {
	return r.rdb.Del(ctx, keyPrefix+session).Err()
}
