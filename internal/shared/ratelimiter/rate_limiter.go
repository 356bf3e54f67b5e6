// Package ratelimiter はAPIエンドポイントへのリクエスト頻度を制限します。
package ratelimiter

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Limiter は固定ウィンドウでのリクエスト許可判定を抽象化します。
type Limiter interface {
	// Allow はkey（クライアント識別子）からのリクエストを許可するかを返します。
	Allow(ctx context.Context, key string) (bool, error)
}

// RedisLimiter はRedisのINCR/EXPIREによる固定ウィンドウリミッターです。
// 複数プロセスでウィンドウ状態を共有できます。
type RedisLimiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
}

var _ Limiter = (*RedisLimiter)(nil)

// NewRedisLimiter は新しいRedisLimiterのインスタンスを生成します。
func NewRedisLimiter(rdb *redis.Client, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{rdb: rdb, limit: limit, window: window}
}

// Allow はウィンドウ内のカウントをインクリメントし、上限以内かを返します。
// キーが新規作成されたときだけ有効期限を設定します。
func (rl *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	n, err := rl.rdb.Incr(ctx, "ratelimit:"+key).Result()
	if err != nil {
		return false, err
	}
	if n == 1 {
		if err := rl.rdb.Expire(ctx, "ratelimit:"+key, rl.window).Err(); err != nil {
			return false, err
		}
	}
	return n <= int64(rl.limit), nil
}

// LocalLimiter はプロセス内メモリによる固定ウィンドウリミッターです。
// Redisが利用できない構成でのフォールバックとして使われます。
type LocalLimiter struct {
	limit  int
	window time.Duration

	mu        sync.Mutex
	counts    map[string]int
	lastReset time.Time
}

var _ Limiter = (*LocalLimiter)(nil)

// NewLocalLimiter は新しいLocalLimiterのインスタンスを生成します。
func NewLocalLimiter(limit int, window time.Duration) *LocalLimiter {
	return &LocalLimiter{
		limit:     limit,
		window:    window,
		counts:    make(map[string]int),
		lastReset: time.Now(),
	}
}

// Allow はウィンドウ経過時にカウントをリセットし、上限以内かを返します。
func (ll *LocalLimiter) Allow(_ context.Context, key string) (bool, error) {
	ll.mu.Lock()
	defer ll.mu.Unlock()

	now := time.Now()
	// ウィンドウを過ぎたらカウントリセット
	if now.Sub(ll.lastReset) >= ll.window {
		ll.counts = make(map[string]int)
		ll.lastReset = now
	}

	ll.counts[key]++
	return ll.counts[key] <= ll.limit, nil
}

// Middleware はクライアントIP単位でリクエストを制限するginミドルウェアを返します。
// 上限を超えたリクエストには429を返します。リミッター自体の障害では
// リクエストを落とさず通します（fail-open）。
func Middleware(l Limiter, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := l.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			log.Warn("rate limiter unavailable, allowing request", "error", err)
			c.Next()
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
