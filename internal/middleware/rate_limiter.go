package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"stockwise/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// rateEntry tracks request counts per IP within one window.
type rateEntry struct {
	count     int
	windowEnd time.Time
	mu        sync.Mutex
}

// rateLimiter is a fixed-window counter per client IP.
type rateLimiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	entries map[string]*rateEntry
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	return &rateLimiter{limit: limit, window: window, now: time.Now, entries: make(map[string]*rateEntry)}
}

// allow counts one request for ip and reports whether it is within the
// limit, plus the end of the current window.
func (l *rateLimiter) allow(ip string) (bool, time.Time) {
	l.mu.Lock()
	entry, ok := l.entries[ip]
	if !ok {
		entry = &rateEntry{}
		l.entries[ip] = entry
	}
	l.mu.Unlock()

	entry.mu.Lock()
	defer entry.mu.Unlock()

	now := l.now()
	if now.After(entry.windowEnd) {
		entry.count = 0
		entry.windowEnd = now.Add(l.window)
	}
	entry.count++
	return entry.count <= l.limit, entry.windowEnd
}

// purge drops entries whose window has ended and returns how many went.
func (l *rateLimiter) purge() int {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	purged := 0
	for ip, entry := range l.entries {
		entry.mu.Lock()
		if now.After(entry.windowEnd) {
			delete(l.entries, ip)
			purged++
		}
		entry.mu.Unlock()
	}
	return purged
}

const purgeInterval = 5 * time.Minute

func (l *rateLimiter) purgeLoop() {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()
	for range ticker.C {
		if n := l.purge(); n > 0 {
			log.Debug().Int("entries_purged", n).Msg("rate limiter map purged")
		}
	}
}

// RateLimiter allows limit requests per window per client IP. A limit of
// zero or less disables it.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	if limit <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	l := newRateLimiter(limit, window)
	var once sync.Once
	return func(c *gin.Context) {
		once.Do(func() { go l.purgeLoop() })

		ok, windowEnd := l.allow(c.ClientIP())
		if !ok {
			retry := int(time.Until(windowEnd).Seconds()) + 1
			c.Header("Retry-After", strconv.Itoa(retry))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("Too many requests. Try again shortly."))
			return
		}
		c.Next()
	}
}
