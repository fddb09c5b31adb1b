package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type clientLimiter struct {
	limiter  *rate.Limiter
	mu       sync.Mutex
	lastSeen time.Time
}

const (
	limiterSweepInterval = 5 * time.Minute
	limiterMaxIdle       = 10 * time.Minute
)

// RateLimit applies a token bucket per authenticated user, falling back to
// the client IP for anonymous requests. r is requests per second, b the burst.
// Idle buckets are swept until ctx is done.
func RateLimit(ctx context.Context, r rate.Limit, b int) gin.HandlerFunc {
	limiters := &sync.Map{}
	go sweepLimiters(ctx, limiters, limiterSweepInterval, limiterMaxIdle)

	getLimiter := func(key string) *rate.Limiter {
		v, _ := limiters.LoadOrStore(key, &clientLimiter{limiter: rate.NewLimiter(r, b)})
		cl := v.(*clientLimiter)
		cl.mu.Lock()
		cl.lastSeen = time.Now()
		cl.mu.Unlock()
		return cl.limiter
	}

	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if userID, ok := UserID(c); ok {
			key = "user:" + strconv.FormatInt(userID, 10)
		}
		if !getLimiter(key).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

func sweepLimiters(ctx context.Context, limiters *sync.Map, every, maxIdle time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			evictIdle(limiters, now.Add(-maxIdle))
		}
	}
}

func evictIdle(limiters *sync.Map, cutoff time.Time) {
	limiters.Range(func(k, v any) bool {
		cl := v.(*clientLimiter)
		cl.mu.Lock()
		stale := cl.lastSeen.Before(cutoff)
		cl.mu.Unlock()
		if stale {
			limiters.Delete(k)
		}
		return true
	})
}
