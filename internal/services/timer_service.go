package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// TimerService drives the countdown of every live attempt from a cron job.
type TimerService struct {
	attempts AttemptService
	interval time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	entryID cron.EntryID
	cancel  context.CancelFunc
}

// NewTimerService rejects intervals that are not whole seconds: each tick
// takes exactly interval off every clock.
func NewTimerService(attempts AttemptService, interval time.Duration, logger *slog.Logger) (*TimerService, error) {
	if interval < time.Second || interval%time.Second != 0 {
		return nil, fmt.Errorf("%w: got %s", ErrInvalidTickInterval, interval)
	}
	return &TimerService{
		attempts: attempts,
		interval: interval,
		logger:   logger.With("component", "timer"),
	}, nil
}

// Start schedules the tick job. Calling Start twice is a no-op.
func (t *TimerService) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cron != nil {
		return nil
	}

	cronLogger := cron.PrintfLogger(slog.NewLogLogger(t.logger.Handler(), slog.LevelWarn))
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cronLogger)))

	jobCtx, cancel := context.WithCancel(ctx)
	id, err := c.AddFunc(fmt.Sprintf("@every %s", t.interval), func() { t.Tick(jobCtx) })
	if err != nil {
		cancel()
		return fmt.Errorf("failed to schedule attempt timer: %w", err)
	}

	c.Start()
	t.cron, t.entryID, t.cancel = c, id, cancel

	t.logger.Info("Attempt timer started", "interval", t.interval.String())
	return nil
}

// Tick advances every live attempt by one interval.
func (t *TimerService) Tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	t.attempts.TickAll(ctx, int(t.interval/time.Second))
}

// Stop halts the job and waits for a running tick to finish.
func (t *TimerService) Stop() {
	t.mu.Lock()
	c, cancel := t.cron, t.cancel
	t.cron, t.cancel = nil, nil
	t.mu.Unlock()

	if c == nil {
		return
	}
	<-c.Stop().Done()
	cancel()
	t.logger.Info("Attempt timer stopped")
}

// NextRun reports when the tick job fires next, zero if the timer is stopped.
func (t *TimerService) NextRun() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cron == nil {
		return time.Time{}
	}
	return t.cron.Entry(t.entryID).Next
}
