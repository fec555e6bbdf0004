package handler

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	// maxLimiters bounds the pool; user ids are caller supplied.
	maxLimiters = 10_000
	// limiterIdle is how long an unused bucket is kept. A bucket idle this
	// long has refilled completely, so dropping it loses nothing.
	limiterIdle = 10 * time.Minute
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterPool holds one token bucket per user id. When the pool is full, idle
// buckets are swept and, failing that, the least recently used one goes.
type limiterPool struct {
	mu    sync.Mutex
	m     map[string]*limiterEntry
	rps   float64
	burst int
	max   int
	now   func() time.Time
}

func newLimiterPool(rps float64, burst int) *limiterPool {
	if rps <= 0 {
		rps = 5
	}
	if burst <= 0 {
		burst = 10
	}
	return &limiterPool{
		m:     make(map[string]*limiterEntry),
		rps:   rps,
		burst: burst,
		max:   maxLimiters,
		now:   time.Now,
	}
}

func (p *limiterPool) get(key string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := p.now()
	if e, ok := p.m[key]; ok {
		e.lastSeen = now
		return e.limiter
	}
	if len(p.m) >= p.max {
		p.evict(now)
	}
	e := &limiterEntry{limiter: rate.NewLimiter(rate.Limit(p.rps), p.burst), lastSeen: now}
	p.m[key] = e
	return e.limiter
}

// evict drops idle buckets, or the least recently used one if none is idle.
func (p *limiterPool) evict(now time.Time) {
	var oldestKey string
	var oldest time.Time
	for k, e := range p.m {
		if now.Sub(e.lastSeen) >= limiterIdle {
			delete(p.m, k)
			continue
		}
		if oldestKey == "" || e.lastSeen.Before(oldest) {
			oldestKey, oldest = k, e.lastSeen
		}
	}
	if len(p.m) >= p.max && oldestKey != "" {
		delete(p.m, oldestKey)
	}
}

func (p *limiterPool) Allow(key string) bool {
	return p.get(key).Allow()
}

func (p *limiterPool) size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.m)
}

// allow reports whether userID may write now, answering 429 otherwise.
func (h *Handler) allow(c *gin.Context, userID string) bool {
	if h.limiter.Allow(userID) {
		return true
	}
	h.Metrics.RateLimited()
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
		"error": h.localize(c, codeRateLimited),
		"code":  codeRateLimited,
	})
	return false
}
