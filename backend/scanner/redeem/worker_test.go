package redeemscan

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/klppl/digg-invite-brutforce/backend/logger"
	"github.com/klppl/digg-invite-brutforce/backend/progress"
	"github.com/klppl/digg-invite-brutforce/backend/state"
	"github.com/klppl/digg-invite-brutforce/backend/verdict"
)

func newTestWorker(f *stubFetcher, tokens []string, delay time.Duration) *worker {
	entry := logger.Discard().WithField("component", "test")
	params := testParams(1, len(tokens))
	params.Delay = delay
	return &worker{
		id:         1,
		tokens:     tokens,
		params:     params.WithDefaults(),
		fetcher:    f,
		classifier: verdict.NewClassifier(nil),
		state:      state.New(len(tokens), nil),
		reporter:   progress.NewReporter(progress.DefaultEvery, time.Now(), entry),
		logger:     entry,
		now:        time.Now,
	}
}

func TestWorkerStatesDuringRun(t *testing.T) {
	var w *worker
	var seen []WorkerState
	f := &stubFetcher{
		respond: rejectAllBut("", ""),
		onFetch: func(int32) { seen = append(seen, w.State()) },
	}
	w = newTestWorker(f, []string{"aaaaaa", "bbbbbb", "cccccc"}, time.Millisecond)
	require.Equal(t, StateStarting, w.State())

	report := w.run(context.Background())

	require.Equal(t, []WorkerState{StateRunning, StateRunning, StateRunning}, seen)
	require.Equal(t, StateStopped, w.State())
	require.Equal(t, StateStopped, report.State)
	require.Equal(t, 3, report.Tested)
	require.Zero(t, report.Orphaned)
	require.NoError(t, report.Err)

	opened, closed := f.sessions()
	require.Equal(t, 1, opened)
	require.Equal(t, 1, closed)
}

func TestWorkerCancelledBeforeStart(t *testing.T) {
	f := &stubFetcher{respond: rejectAllBut("", "")}
	w := newTestWorker(f, []string{"aaaaaa", "bbbbbb"}, time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report := w.run(ctx)

	require.NoError(t, report.Err)
	require.Zero(t, report.Tested)
	require.Equal(t, 2, report.Orphaned)
	require.Equal(t, StateStopped, report.State)
	require.Zero(t, f.fetches.Load())
	opened, closed := f.sessions()
	require.Equal(t, opened, closed)
}

func TestWorkerSkipsClaimedTokens(t *testing.T) {
	f := &stubFetcher{respond: rejectAllBut("", "")}
	w := newTestWorker(f, []string{"aaaaaa", "bbbbbb", "cccccc"}, time.Millisecond)
	require.True(t, w.state.ClaimIfUnseen("bbbbbb"))

	report := w.run(context.Background())

	require.Equal(t, 2, report.Tested)
	require.EqualValues(t, 2, f.fetches.Load())
	require.Equal(t, 2, w.state.Counters().Completed)
}

func TestWorkerPauseEndsOnCancel(t *testing.T) {
	w := newTestWorker(&stubFetcher{}, nil, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(10*time.Millisecond, cancel)

	start := time.Now()
	require.False(t, w.pause(ctx))
	require.Less(t, time.Since(start), time.Minute)
}

func TestWorkerPauseWaitsForDelay(t *testing.T) {
	w := newTestWorker(&stubFetcher{}, nil, 20*time.Millisecond)

	start := time.Now()
	require.True(t, w.pause(context.Background()))
	require.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}
