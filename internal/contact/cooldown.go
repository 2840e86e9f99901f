package contact

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sunrisestay/internal/logger"
	"sunrisestay/internal/metrics"
)

var ErrCooldownActive = errors.New("contact cooldown active")

const (
	DefaultWindow = 20 * time.Minute
	tickInterval  = time.Second
)

// Cooldown throttles contact form submissions to one per window per visitor.
// It is a courtesy limit, not a security control.
type Cooldown struct {
	store  Storage
	window time.Duration
	tick   time.Duration
	now    func() time.Time
}

func NewCooldown(store Storage, window time.Duration) *Cooldown {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Cooldown{
		store:  store,
		window: window,
		tick:   tickInterval,
		now:    time.Now,
	}
}

// Remaining is how long the visitor must still wait. An expired cooldown is
// removed from storage.
func (c *Cooldown) Remaining(ctx context.Context, visitor string) (time.Duration, error) {
	end, ok, err := c.store.Load(ctx, visitor)
	if err != nil {
		return 0, fmt.Errorf("load cooldown: %w", err)
	}
	if !ok {
		return 0, nil
	}
	if left := end.Sub(c.now()); left > 0 {
		return left, nil
	}
	if err := c.store.Clear(ctx, visitor); err != nil {
		logger.Warn("failed to clear expired cooldown", "visitor", visitor, "error", err)
	}
	return 0, nil
}

// Submit calls send unless a cooldown is active, then returns the end of the
// cooldown it started. The slot is reserved before sending so concurrent
// submissions from one visitor deliver at most one message. A failed send
// releases the slot.
func (c *Cooldown) Submit(ctx context.Context, visitor string, send func(context.Context) error) (time.Time, error) {
	left, err := c.Remaining(ctx, visitor)
	if err != nil {
		logger.Warn("cooldown unavailable, accepting submission", "visitor", visitor, "error", err)
	}
	if left > 0 {
		metrics.RecordContactSubmission("rejected")
		return time.Time{}, ErrCooldownActive
	}

	end := c.now().Add(c.window)
	reserved, err := c.store.Reserve(ctx, visitor, end, c.window)
	if err != nil {
		logger.Warn("cooldown unavailable, accepting submission", "visitor", visitor, "error", err)
	} else if !reserved {
		metrics.RecordContactSubmission("rejected")
		return time.Time{}, ErrCooldownActive
	}

	if err := send(ctx); err != nil {
		if reserved {
			if clearErr := c.store.Clear(context.WithoutCancel(ctx), visitor); clearErr != nil {
				logger.Error("failed to release cooldown", "visitor", visitor, "error", clearErr)
			}
		}
		metrics.RecordContactSubmission("failed")
		return time.Time{}, fmt.Errorf("send contact message: %w", err)
	}

	if !reserved {
		if err := c.store.Save(ctx, visitor, end, c.window); err != nil {
			logger.Error("failed to persist cooldown", "visitor", visitor, "error", err)
		}
	}
	metrics.RecordContactSubmission("sent")
	return end, nil
}

// Watch reports the remaining cooldown now and then once per tick until it
// reaches zero, when the stored value is cleared and Watch returns. It
// returns early with the context's error when ctx is done.
func (c *Cooldown) Watch(ctx context.Context, visitor string, report func(time.Duration)) error {
	end, ok, err := c.store.Load(ctx, visitor)
	if err != nil {
		return fmt.Errorf("load cooldown: %w", err)
	}
	if !ok {
		report(0)
		return nil
	}

	ticker := time.NewTicker(c.tick)
	defer ticker.Stop()

	for {
		left := end.Sub(c.now())
		if left <= 0 {
			if err := c.store.Clear(ctx, visitor); err != nil {
				logger.Warn("failed to clear expired cooldown", "visitor", visitor, "error", err)
			}
			report(0)
			return nil
		}
		report(left)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// FormatRemaining renders d as m:ss.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
