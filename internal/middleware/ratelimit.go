package middleware

import (
	"net/http"
	"sync"
	"time"

	"bizmap/internal/logger"

	"golang.org/x/time/rate"
)

// 文档注释：令牌桶限流中间件（每秒）
// 背景：每次搜索会向后端发出一到两个查询；在流量峰值时对入口限速，避免压垮查询后端。
// 约束：不排队，超限直接返回 429；全局桶之外每个访问者 IP 另有一个桶，容量为全局的四分之一（至少 1）。
type Limiter struct {
	global *rate.Limiter
	perIP  rate.Limit
	burst  int

	mu      sync.Mutex
	clients map[string]*client
	now     func() time.Time
}

type client struct {
	lim  *rate.Limiter
	seen time.Time
}

const idleClient = 10 * time.Minute

func NewLimiter(qps int) *Limiter {
	if qps <= 0 {
		qps = 200
	}
	per := qps / 4
	if per < 1 {
		per = 1
	}
	return &Limiter{
		global:  rate.NewLimiter(rate.Limit(qps), qps),
		perIP:   rate.Limit(per),
		burst:   per,
		clients: make(map[string]*client),
		now:     time.Now,
	}
}

func (l *Limiter) allow(ip string) bool {
	l.mu.Lock()
	now := l.now()
	c, ok := l.clients[ip]
	if !ok {
		c = &client{lim: rate.NewLimiter(l.perIP, l.burst)}
		l.clients[ip] = c
	}
	c.seen = now
	if len(l.clients) > 1024 {
		for k, v := range l.clients {
			if now.Sub(v.seen) > idleClient {
				delete(l.clients, k)
			}
		}
	}
	l.mu.Unlock()
	return c.lim.AllowN(now, 1) && l.global.AllowN(now, 1)
}

// Wrap：enabled 为 false 时原样返回 next
func Wrap(next http.Handler, enabled bool, qps int) http.Handler {
	if !enabled {
		return next
	}
	l := NewLimiter(qps)
	logger.L().Info("ratelimit_enabled", "qps", qps)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := ClientIP(r)
		if !l.allow(ip) {
			logger.L().Debug("ratelimit_reject", "ip", ip, "path", r.URL.Path)
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
