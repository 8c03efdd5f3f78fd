package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimiterConfig holds configuration for rate limiting
type RateLimiterConfig struct {
	RequestsPerMinute int           // Sustained requests per client per minute
	BurstSize         int           // Allow burst of N requests
	CleanupInterval   time.Duration // How often to drop idle clients
	IdleTimeout       time.Duration // Clients unseen this long are forgotten
}

// TokenBucket implements a token bucket rate limiter
type TokenBucket struct {
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per second
	lastRefill time.Time
	mu         sync.Mutex
	now        func() time.Time
}

// NewTokenBucket creates a new token bucket
func NewTokenBucket(maxTokens float64, refillRate float64) *TokenBucket {
	return newTokenBucket(maxTokens, refillRate, time.Now)
}

func newTokenBucket(maxTokens, refillRate float64, now func() time.Time) *TokenBucket {
	return &TokenBucket{
		tokens:     maxTokens,
		maxTokens:  maxTokens,
		refillRate: refillRate,
		lastRefill: now(),
		now:        now,
	}
}

func (tb *TokenBucket) refill() {
	now := tb.now()
	elapsed := now.Sub(tb.lastRefill).Seconds()
	tb.tokens = min(tb.maxTokens, tb.tokens+(elapsed*tb.refillRate))
	tb.lastRefill = now
}

// Allow checks if a request can proceed and consumes a token if so
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()
	if tb.tokens >= 1.0 {
		tb.tokens -= 1.0
		return true
	}
	return false
}

// Remaining returns the number of tokens remaining
func (tb *TokenBucket) Remaining() int {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()
	return int(tb.tokens)
}

// RetryAfter returns how long until the next token is available.
func (tb *TokenBucket) RetryAfter() time.Duration {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()
	if tb.tokens >= 1.0 || tb.refillRate <= 0 {
		return 0
	}
	return time.Duration((1.0 - tb.tokens) / tb.refillRate * float64(time.Second))
}

type clientEntry struct {
	bucket   *TokenBucket
	lastSeen time.Time
}

// ClientRateLimiter manages one bucket per client key (usually the IP).
type ClientRateLimiter struct {
	config      RateLimiterConfig
	clients     map[string]*clientEntry
	mu          sync.Mutex
	logger      *zap.Logger
	onReject    func()
	stopCleanup chan struct{}
	stopOnce    sync.Once
	now         func() time.Time
}

// NewClientRateLimiter creates a limiter and starts its cleanup routine.
// onReject, when set, is called for every rejected request.
func NewClientRateLimiter(config RateLimiterConfig, logger *zap.Logger, onReject func()) *ClientRateLimiter {
	if config.RequestsPerMinute <= 0 {
		config.RequestsPerMinute = 30
	}
	if config.BurstSize <= 0 {
		config.BurstSize = config.RequestsPerMinute
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = 5 * time.Minute
	}
	if config.IdleTimeout <= 0 {
		config.IdleTimeout = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	limiter := &ClientRateLimiter{
		config:      config,
		clients:     make(map[string]*clientEntry),
		logger:      logger,
		onReject:    onReject,
		stopCleanup: make(chan struct{}),
		now:         time.Now,
	}

	go limiter.cleanupRoutine()

	return limiter
}

// cleanupRoutine periodically removes idle clients
func (l *ClientRateLimiter) cleanupRoutine() {
	ticker := time.NewTicker(l.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.cleanup()
		case <-l.stopCleanup:
			return
		}
	}
}

func (l *ClientRateLimiter) cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.config.IdleTimeout)
	removed := 0
	for key, entry := range l.clients {
		if entry.lastSeen.Before(cutoff) {
			delete(l.clients, key)
			removed++
		}
	}
	if removed > 0 {
		l.logger.Debug("Dropped idle rate limit buckets",
			zap.Int("removed", removed),
			zap.Int("remaining", len(l.clients)))
	}
}

// Stop stops the cleanup routine
func (l *ClientRateLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stopCleanup) })
}

func (l *ClientRateLimiter) bucket(key string) *TokenBucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, exists := l.clients[key]
	if !exists {
		refillRate := float64(l.config.RequestsPerMinute) / 60.0
		entry = &clientEntry{bucket: newTokenBucket(float64(l.config.BurstSize), refillRate, l.now)}
		l.clients[key] = entry
	}
	entry.lastSeen = l.now()
	return entry.bucket
}

// Allow checks if a request from key can proceed
func (l *ClientRateLimiter) Allow(key string) bool {
	return l.bucket(key).Allow()
}

// Limit returns the burst size advertised in headers.
func (l *ClientRateLimiter) Limit() int {
	return l.config.BurstSize
}

// RateLimitMiddleware creates a Gin middleware that limits requests per client IP
func RateLimitMiddleware(limiter *ClientRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		bucket := limiter.bucket(key)
		allowed := bucket.Allow()
		limit := limiter.Limit()

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(bucket.Remaining()))

		if !allowed {
			retryAfter := max(1, int(bucket.RetryAfter().Round(time.Second)/time.Second))
			limiter.logger.Warn("Rate limit exceeded",
				zap.String("client", key),
				zap.String("path", c.FullPath()),
				zap.Int("limit", limit))
			if limiter.onReject != nil {
				limiter.onReject()
			}

			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"limit":       limit,
				"remaining":   0,
				"retry_after": retryAfter,
			})
			return
		}

		c.Next()
	}
}
