package feishu

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
)

// Policy configures Retry.
type Policy struct {
	MaxAttempts  int // total attempts; values below 1 mean 1
	InitialDelay time.Duration
	MaxDelay     time.Duration

	Clock  clock.Clock
	Logger *zap.Logger
}

// DefaultPolicy returns the retry policy used by Client.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:  3,
		InitialDelay: time.Second,
		MaxDelay:     10 * time.Second,
	}
}

// delay returns the wait before retry number attempt (0-based).
func (p Policy) delay(attempt int) time.Duration {
	return backoff(p.InitialDelay, p.MaxDelay, attempt)
}

func backoff(initial, ceiling time.Duration, attempt int) time.Duration {
	d := initial
	for i := 0; i < attempt; i++ {
		d *= 2
		if ceiling > 0 && d >= ceiling {
			return ceiling
		}
	}
	if ceiling > 0 && d > ceiling {
		return ceiling
	}
	return d
}

// Retry runs op until it succeeds, returns an error retryable rejects, or the
// attempts are exhausted. The last error is returned.
func Retry(ctx context.Context, p Policy, retryable func(error) bool, op func(context.Context) error) error {
	clk := p.Clock
	if clk == nil {
		clk = clock.New()
	}
	lg := p.Logger
	if lg == nil {
		lg = zap.NewNop()
	}
	attempts := max(p.MaxAttempts, 1)

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		err = op(ctx)
		if err == nil || !retryable(err) {
			return err
		}
		if attempt == attempts-1 {
			break
		}
		d := p.delay(attempt)
		lg.Warn("retry request",
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", d),
			zap.String("reason", err.Error()))
		if serr := sleep(ctx, clk, d); serr != nil {
			return serr
		}
	}
	lg.Warn("max attempts exceeded", zap.Int("attempts", attempts), zap.Error(err))
	return err
}

// Do is Retry for operations that produce a value.
func Do[T any](ctx context.Context, p Policy, retryable func(error) bool, op func(context.Context) (T, error)) (T, error) {
	var result T
	err := Retry(ctx, p, retryable, func(ctx context.Context) error {
		var err error
		result, err = op(ctx)
		return err
	})
	return result, err
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, clk clock.Clock, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := clk.Timer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
