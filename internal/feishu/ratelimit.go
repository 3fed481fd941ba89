package feishu

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
)

// RateLimitConfig configures a RateLimiter.
type RateLimitConfig struct {
	Limit        int           // operations started per Window
	Window       time.Duration // defaults to one second
	MaxRetries   int           // retries after a RateLimitError
	InitialDelay time.Duration
	MaxDelay     time.Duration
	MaxJitter    time.Duration
}

// DefaultRateLimitConfig returns limits matching the docx API quota.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Limit:        5,
		Window:       time.Second,
		MaxRetries:   5,
		InitialDelay: time.Second,
		MaxDelay:     30 * time.Second,
		MaxJitter:    500 * time.Millisecond,
	}
}

// RateLimiter allows at most Limit operations to start within any trailing
// Window and retries operations the server rejected with a RateLimitError.
type RateLimiter struct {
	cfg    RateLimitConfig
	clock  clock.Clock
	logger *zap.Logger
	jitter func(time.Duration) time.Duration

	mu     sync.Mutex
	stamps []time.Time // start times inside the window, oldest first
}

// RateLimiterOption configures a RateLimiter.
type RateLimiterOption func(*RateLimiter)

// WithClock replaces the wall clock.
func WithClock(c clock.Clock) RateLimiterOption {
	return func(r *RateLimiter) {
		r.clock = c
	}
}

// WithLimiterLogger sets the logger used for retry messages.
func WithLimiterLogger(l *zap.Logger) RateLimiterOption {
	return func(r *RateLimiter) {
		r.logger = l
	}
}

// NewRateLimiter creates a limiter. Zero fields of cfg take defaults.
func NewRateLimiter(cfg RateLimitConfig, opts ...RateLimiterOption) *RateLimiter {
	def := DefaultRateLimitConfig()
	if cfg.Limit <= 0 {
		cfg.Limit = def.Limit
	}
	if cfg.Window <= 0 {
		cfg.Window = def.Window
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = def.InitialDelay
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = def.MaxDelay
	}

	r := &RateLimiter{
		cfg:    cfg,
		clock:  clock.New(),
		logger: zap.NewNop(),
		jitter: randomJitter,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func randomJitter(ceiling time.Duration) time.Duration {
	if ceiling <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(ceiling) + 1))
}

// Execute runs op once a slot in the window is free. A RateLimitError from op
// is retried up to MaxRetries times with exponential backoff; any other error
// is returned immediately.
func (r *RateLimiter) Execute(ctx context.Context, op func(context.Context) error) error {
	for attempt := 0; ; attempt++ {
		if err := r.wait(ctx); err != nil {
			return err
		}

		err := op(ctx)
		var rl *RateLimitError
		if err == nil || !errors.As(err, &rl) {
			return err
		}
		if attempt >= r.cfg.MaxRetries {
			r.logger.Warn("rate limit retries exhausted", zap.Int("retries", attempt), zap.Error(err))
			return err
		}

		delay := backoff(r.cfg.InitialDelay, r.cfg.MaxDelay, attempt) + r.jitter(r.cfg.MaxJitter)
		if rl.RetryAfter > delay {
			delay = rl.RetryAfter
		}
		r.logger.Warn("rate limited, backing off",
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay))
		if err := sleep(ctx, r.clock, delay); err != nil {
			return err
		}
		r.prune(r.clock.Now())
	}
}

// Limit runs op through r and returns its value.
func Limit[T any](ctx context.Context, r *RateLimiter, op func(context.Context) (T, error)) (T, error) {
	var result T
	err := r.Execute(ctx, func(ctx context.Context) error {
		var err error
		result, err = op(ctx)
		return err
	})
	return result, err
}

// wait blocks until a slot is free and records the start time.
func (r *RateLimiter) wait(ctx context.Context) error {
	for {
		r.mu.Lock()
		now := r.clock.Now()
		r.pruneLocked(now)
		if len(r.stamps) < r.cfg.Limit {
			r.stamps = append(r.stamps, now)
			r.mu.Unlock()
			return nil
		}
		d := r.stamps[0].Add(r.cfg.Window).Sub(now)
		r.mu.Unlock()

		r.logger.Debug("rate limit window full", zap.Duration("wait", d))
		if err := sleep(ctx, r.clock, d); err != nil {
			return err
		}
	}
}

func (r *RateLimiter) prune(now time.Time) {
	r.mu.Lock()
	r.pruneLocked(now)
	r.mu.Unlock()
}

func (r *RateLimiter) pruneLocked(now time.Time) {
	cutoff := now.Add(-r.cfg.Window)
	i := 0
	for i < len(r.stamps) && !r.stamps[i].After(cutoff) {
		i++
	}
	if i > 0 {
		r.stamps = append(r.stamps[:0], r.stamps[i:]...)
	}
}

// InFlight returns the number of starts recorded in the current window.
func (r *RateLimiter) InFlight() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pruneLocked(r.clock.Now())
	return len(r.stamps)
}
