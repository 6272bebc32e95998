package middleware

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"taskboard/internal/adapter/http/helper"
	"taskboard/internal/core/telemetry"
	"taskboard/pkg/config"
)

const defaultRoute = "default"

type RouteLimit struct {
	Requests int
	Window   time.Duration
}

type rateLimitEntry struct {
	Count     int
	ResetTime time.Time
}

// RateLimiter applies fixed-window limits per client IP and route template.
type RateLimiter struct {
	cache   *cache.Cache
	limits  map[string]RouteLimit
	logger  *zap.Logger
	metrics *telemetry.AppMetrics
	mutex   sync.Mutex
}

// NewRateLimiter uses cfg as the default limit. Bulk and storage routes get a
// tenth of it.
func NewRateLimiter(logger *zap.Logger, metrics *telemetry.AppMetrics, cfg config.RateLimitConfig) *RateLimiter {
	strict := RouteLimit{Requests: max(cfg.Requests/10, 1), Window: cfg.Window}

	return &RateLimiter{
		cache: cache.New(cfg.Window, 2*cfg.Window),
		limits: map[string]RouteLimit{
			defaultRoute:                 {Requests: cfg.Requests, Window: cfg.Window},
			"DELETE /projects":           strict,
			"DELETE /projects/:id/todos": strict,
			"POST /state/save":           strict,
			"POST /state/load":           strict,
		},
		logger:  logger,
		metrics: metrics,
	}
}

func (rl *RateLimiter) SetLimit(route string, limit RouteLimit) {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()
	rl.limits[route] = limit
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		route := c.Request.Method + " " + path

		key := fmt.Sprintf("rate_limit:%s:%s", route, c.ClientIP())
		allowed, limit, remaining, resetTime := rl.check(key, route)

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit.Requests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

		if !allowed {
			if rl.metrics != nil {
				rl.metrics.RecordRateLimitHit(c.Request.Context(), path)
			}

			rl.logger.Warn("Rate limit exceeded",
				zap.String("key", key),
				zap.Int("limit", limit.Requests),
				zap.Duration("window", limit.Window))

			helper.SendTooManyRequests(c,
				fmt.Sprintf("Too many requests. Limit: %d per %v", limit.Requests, limit.Window),
				int(time.Until(resetTime).Seconds()))
			return
		}

		if rl.metrics != nil {
			rl.metrics.RecordRateLimitAllowed(c.Request.Context(), path)
		}

		c.Next()
	}
}

func (rl *RateLimiter) check(key, route string) (bool, RouteLimit, int, time.Time) {
	now := time.Now()

	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	limit, ok := rl.limits[route]
	if !ok {
		limit = rl.limits[defaultRoute]
	}

	if v, found := rl.cache.Get(key); found {
		entry := v.(rateLimitEntry)

		if now.Before(entry.ResetTime) {
			if entry.Count >= limit.Requests {
				return false, limit, 0, entry.ResetTime
			}

			entry.Count++
			rl.cache.Set(key, entry, time.Until(entry.ResetTime))

			return true, limit, limit.Requests - entry.Count, entry.ResetTime
		}
	}

	entry := rateLimitEntry{Count: 1, ResetTime: now.Add(limit.Window)}
	rl.cache.Set(key, entry, limit.Window)

	return true, limit, limit.Requests - 1, entry.ResetTime
}

func (rl *RateLimiter) ActiveEntries() int {
	return rl.cache.ItemCount()
}
