package cache

import (
	"errors"
	"sync"
	"time"
)

// Breaker is a small circuit breaker (closed → open → half-open) around
// cache calls. While open, lookups go straight to the database instead of
// waiting on a dead Redis.
type Breaker struct {
	mu               sync.Mutex
	state            BreakerState
	failures         int
	successes        int
	openedAt         time.Time
	failureThreshold int
	successThreshold int
	openTimeout      time.Duration
	now              func() time.Time
}

type BreakerState int

const (
	BreakerClosed BreakerState = iota
	BreakerOpen
	BreakerHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrBreakerOpen is returned by Do while the breaker is open.
var ErrBreakerOpen = errors.New("cache: circuit breaker is open")

// BreakerConfig holds the breaker thresholds; zero values take defaults.
type BreakerConfig struct {
	FailureThreshold int           // consecutive failures that open it (default 5)
	SuccessThreshold int           // half-open successes that close it (default 2)
	OpenTimeout      time.Duration // time open before probing (default 30s)
}

func NewBreaker(cfg BreakerConfig) *Breaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = 2
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	return &Breaker{
		failureThreshold: cfg.FailureThreshold,
		successThreshold: cfg.SuccessThreshold,
		openTimeout:      cfg.OpenTimeout,
		now:              time.Now,
	}
}

// State returns the current state, moving open to half-open once the
// timeout has passed.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stateLocked()
}

func (b *Breaker) stateLocked() BreakerState {
	if b.state == BreakerOpen && b.now().Sub(b.openedAt) >= b.openTimeout {
		b.state = BreakerHalfOpen
		b.successes = 0
	}
	return b.state
}

// Do runs fn unless the breaker is open, and records the outcome.
func (b *Breaker) Do(fn func() error) error {
	if b.State() == BreakerOpen {
		return ErrBreakerOpen
	}
	err := fn()
	b.Record(err)
	return err
}

// Record feeds an outcome of a call made outside Do into the breaker.
func (b *Breaker) Record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err != nil {
		b.failures++
		switch b.stateLocked() {
		case BreakerClosed:
			if b.failures >= b.failureThreshold {
				b.trip()
			}
		case BreakerHalfOpen:
			b.trip()
		}
		return
	}

	switch b.stateLocked() {
	case BreakerClosed:
		b.failures = 0
	case BreakerHalfOpen:
		b.successes++
		if b.successes >= b.successThreshold {
			b.state = BreakerClosed
			b.failures = 0
			b.successes = 0
		}
	}
}

func (b *Breaker) trip() {
	b.state = BreakerOpen
	b.openedAt = b.now()
	b.failures = 0
	b.successes = 0
}
