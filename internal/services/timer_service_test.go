package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/study-service/internal/models"
	"github.com/SAP-F-2025/study-service/internal/repositories/memory"
)

type tickRecorder struct {
	AttemptService
	mu    sync.Mutex
	ticks []int
}

func (r *tickRecorder) TickAll(ctx context.Context, elapsed int) {
	r.mu.Lock()
	r.ticks = append(r.ticks, elapsed)
	r.mu.Unlock()
}

func (r *tickRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ticks)
}

func newTimer(t *testing.T, attempts AttemptService, interval time.Duration) *TimerService {
	t.Helper()
	timer, err := NewTimerService(attempts, interval, testLogger())
	require.NoError(t, err)
	return timer
}

func TestTimerService_TickUsesIntervalSeconds(t *testing.T) {
	recorder := &tickRecorder{}
	timer := newTimer(t, recorder, 2*time.Second)

	timer.Tick(context.Background())
	assert.Equal(t, []int{2}, recorder.ticks)
}

func TestTimerService_RejectsFractionalInterval(t *testing.T) {
	for _, interval := range []time.Duration{0, 10 * time.Millisecond, 1500 * time.Millisecond} {
		t.Run(interval.String(), func(t *testing.T) {
			timer, err := NewTimerService(&tickRecorder{}, interval, testLogger())
			assert.ErrorIs(t, err, ErrInvalidTickInterval)
			assert.Nil(t, timer)
		})
	}
}

func TestTimerService_SkipsTickAfterCancel(t *testing.T) {
	recorder := &tickRecorder{}
	timer := newTimer(t, recorder, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	timer.Tick(ctx)
	assert.Empty(t, recorder.ticks)
}

func TestTimerService_StartStop(t *testing.T) {
	recorder := &tickRecorder{}
	timer := newTimer(t, recorder, time.Second)

	assert.True(t, timer.NextRun().IsZero())

	require.NoError(t, timer.Start(context.Background()))
	require.NoError(t, timer.Start(context.Background()))
	assert.False(t, timer.NextRun().IsZero())

	assert.Eventually(t, func() bool { return recorder.count() > 0 }, 3*time.Second, 50*time.Millisecond)

	timer.Stop()
	timer.Stop()
	assert.True(t, timer.NextRun().IsZero())

	after := recorder.count()
	time.Sleep(1200 * time.Millisecond)
	assert.Equal(t, after, recorder.count())
}

func TestTimerService_ExpiresAttempts(t *testing.T) {
	f := newAttemptFixture(t, defaultAttemptConfig())
	ctx := context.Background()

	view, err := f.service.Start(ctx, &StartAttemptRequest{BankID: memory.DefaultBankID, DurationSeconds: intPtr(3)})
	require.NoError(t, err)

	timer := newTimer(t, f.service, time.Second)
	for i := 0; i < 3; i++ {
		timer.Tick(ctx)
	}

	results, err := f.service.GetResults(ctx, view.AttemptID)
	require.NoError(t, err)
	assert.Equal(t, models.AttemptEndReasonTimeExpired, results.EndReason)
}
