package pipeline_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/johnjung/speculative-weather-report/internal/forecast"
	"github.com/johnjung/speculative-weather-report/internal/observability"
	"github.com/johnjung/speculative-weather-report/internal/pipeline"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockAssembler struct {
	mu    sync.Mutex
	times []time.Time
}

func (m *mockAssembler) Assemble(t time.Time) forecast.Forecast {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.times = append(m.times, t)
	return forecast.Forecast{}
}

type mockBuilder struct {
	clock clockwork.Clock
	err   error
}

func (m *mockBuilder) Build(_ context.Context) (forecast.Snapshot, error) {
	if m.err != nil {
		return forecast.Snapshot{}, m.err
	}
	now := m.clock.Now()
	return forecast.Snapshot{At: now, GeneratedAt: now}, nil
}

type mockWriter struct {
	mu        sync.Mutex
	failFirst int
	calls     int
	written   chan forecast.Snapshot
}

func newMockWriter(failFirst int) *mockWriter {
	return &mockWriter{failFirst: failFirst, written: make(chan forecast.Snapshot, 16)}
}

func (m *mockWriter) WriteSnapshot(_ context.Context, s forecast.Snapshot) error {
	m.mu.Lock()
	m.calls++
	fail := m.failFirst < 0 || m.calls <= m.failFirst
	m.mu.Unlock()

	if fail {
		return errors.New("broker unavailable")
	}
	m.written <- s
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var t0 = time.Date(2019, time.May, 1, 15, 0, 0, 0, time.UTC)

func receive(t *testing.T, ch <-chan forecast.Snapshot) forecast.Snapshot {
	t.Helper()
	select {
	case s := <-ch:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return forecast.Snapshot{}
	}
}

func startPublisher(t *testing.T, p *pipeline.Publisher) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()
	t.Cleanup(cancel)
	return cancel, done
}

// --- tests ---

func TestPublisher_Run_PublishesImmediatelyAndEveryInterval(t *testing.T) {
	clock := clockwork.NewFakeClockAt(t0)
	writer := newMockWriter(0)
	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(&mockBuilder{clock: clock}, writer, clock, time.Hour, discardLogger(), metrics)

	require.Error(t, p.CheckReadiness(context.Background()))

	cancel, done := startPublisher(t, p)

	first := receive(t, writer.written)
	assert.Equal(t, t0, first.At)
	require.NoError(t, p.CheckReadiness(context.Background()))

	require.NoError(t, clock.BlockUntilContext(context.Background(), 1))
	clock.Advance(time.Hour)
	second := receive(t, writer.written)
	assert.Equal(t, t0.Add(time.Hour), second.At)

	cancel()
	require.NoError(t, <-done)

	assert.InDelta(t, 2, testutil.ToFloat64(metrics.SnapshotsPublished), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(metrics.PublisherRunning), 0)
}

func TestPublisher_Run_RetriesWithBackoff(t *testing.T) {
	clock := clockwork.NewFakeClockAt(t0)
	writer := newMockWriter(2)
	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(&mockBuilder{clock: clock}, writer, clock, time.Hour, discardLogger(), metrics)

	_, _ = startPublisher(t, p)
	ctx := context.Background()

	// ticker + backoff timer
	require.NoError(t, clock.BlockUntilContext(ctx, 2))
	clock.Advance(200 * time.Millisecond)
	require.NoError(t, clock.BlockUntilContext(ctx, 2))
	clock.Advance(400 * time.Millisecond)

	s := receive(t, writer.written)
	assert.Equal(t, t0.Add(600*time.Millisecond), s.At)
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.PublishErrors), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.SnapshotsPublished), 0)
}

func TestPublisher_Run_GivesUpUntilNextTick(t *testing.T) {
	clock := clockwork.NewFakeClockAt(t0)
	writer := newMockWriter(-1)
	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(&mockBuilder{clock: clock}, writer, clock, time.Hour, discardLogger(), metrics)

	cancel, done := startPublisher(t, p)
	ctx := context.Background()

	for _, d := range []time.Duration{200, 400, 800, 1600} {
		require.NoError(t, clock.BlockUntilContext(ctx, 2))
		clock.Advance(d * time.Millisecond)
	}

	require.Eventually(t, func() bool {
		return testutil.ToFloat64(metrics.PublishErrors) == 5
	}, 2*time.Second, 10*time.Millisecond)
	require.Error(t, p.CheckReadiness(ctx))

	cancel()
	require.NoError(t, <-done)
}

func TestPublisher_Run_StopsDuringBackoff(t *testing.T) {
	clock := clockwork.NewFakeClockAt(t0)
	writer := newMockWriter(-1)
	p := pipeline.New(&mockBuilder{clock: clock}, writer, clock, time.Hour, discardLogger(), observability.NewMetricsForTesting())

	cancel, done := startPublisher(t, p)
	require.NoError(t, clock.BlockUntilContext(context.Background(), 2))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("publisher did not stop")
	}
}

func TestPublisher_PublishOnce_BuildError(t *testing.T) {
	clock := clockwork.NewFakeClockAt(t0)
	writer := newMockWriter(0)
	p := pipeline.New(&mockBuilder{err: errors.New("no dataset")}, writer, clock, time.Hour, discardLogger(), observability.NewMetricsForTesting())

	err := p.PublishOnce(context.Background())
	require.EqualError(t, err, "no dataset")
	assert.Empty(t, writer.written)
}

func TestSnapshotter_Build(t *testing.T) {
	now := time.Date(2019, time.May, 1, 15, 30, 45, 500_000_000, time.UTC)
	clock := clockwork.NewFakeClockAt(now)
	asm := &mockAssembler{}
	s := pipeline.NewSnapshotter(asm, clock, discardLogger())

	snap, err := s.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, now.Truncate(time.Second), snap.At)
	assert.Equal(t, now, snap.GeneratedAt)
	assert.Equal(t, []time.Time{now.Truncate(time.Second)}, asm.times)

	_, ok := snap.SimulationYear()
	assert.False(t, ok)
}

func TestSnapshotter_Build_Cancelled(t *testing.T) {
	s := pipeline.NewSnapshotter(&mockAssembler{}, clockwork.NewFakeClock(), discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Build(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
