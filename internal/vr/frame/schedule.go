package frame

import (
	"context"
	"time"
)

// TickerScheduler paces ticks at a fixed interval.
type TickerScheduler struct {
	ticker *time.Ticker
}

// NewTickerScheduler creates a scheduler firing every interval.
func NewTickerScheduler(interval time.Duration) *TickerScheduler {
	return &TickerScheduler{ticker: time.NewTicker(interval)}
}

// Next waits for the next tick.
func (s *TickerScheduler) Next(ctx context.Context) error {
	select {
	case <-s.ticker.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop releases the ticker.
func (s *TickerScheduler) Stop() {
	s.ticker.Stop()
}

// SchedulerFunc adapts a function to the Scheduler interface.
type SchedulerFunc func(ctx context.Context) error

// Next calls f.
func (f SchedulerFunc) Next(ctx context.Context) error {
	return f(ctx)
}

// Limit wraps s so that Run stops after n ticks. Run ticks once before it first
// consults the scheduler, so any n below one also yields a single tick.
func Limit(s Scheduler, n int) Scheduler {
	remaining := n
	return SchedulerFunc(func(ctx context.Context) error {
		remaining--
		if remaining <= 0 {
			return ErrStop
		}
		return s.Next(ctx)
	})
}
