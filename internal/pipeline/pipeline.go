// Package pipeline periodically assembles forecast snapshots and hands them
// to a writer.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"
	"github.com/johnjung/speculative-weather-report/internal/forecast"
	"github.com/johnjung/speculative-weather-report/internal/observability"
	"github.com/jonboulle/clockwork"
)

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
	maxAttempts    = 5
)

// SnapshotBuilder builds the snapshot for one tick.
type SnapshotBuilder interface {
	Build(ctx context.Context) (forecast.Snapshot, error)
}

// SnapshotWriter writes a snapshot to the destination.
type SnapshotWriter interface {
	WriteSnapshot(ctx context.Context, s forecast.Snapshot) error
}

// Publisher builds and writes a snapshot immediately and then once per
// interval.
type Publisher struct {
	builder  SnapshotBuilder
	writer   SnapshotWriter
	clock    clockwork.Clock
	interval time.Duration
	logger   *slog.Logger
	metrics  *observability.Metrics
	ready    atomic.Bool
}

// New creates a Publisher.
func New(b SnapshotBuilder, w SnapshotWriter, clock clockwork.Clock, interval time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Publisher {
	return &Publisher{
		builder:  b,
		writer:   w,
		clock:    clock,
		interval: interval,
		logger:   logger,
		metrics:  metrics,
	}
}

// CheckReadiness returns nil once a snapshot has been written.
func (p *Publisher) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("publisher has not written any snapshots yet")
	}
	return nil
}

// Run publishes until the context is cancelled.
func (p *Publisher) Run(ctx context.Context) error {
	p.logger.Info("publisher started", "interval", p.interval)
	p.metrics.PublisherRunning.Set(1)
	defer p.metrics.PublisherRunning.Set(0)

	ticker := p.clock.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if !p.publishWithRetry(ctx) {
			p.logger.Info("publisher stopping", "reason", ctx.Err())
			return nil
		}

		select {
		case <-ctx.Done():
			p.logger.Info("publisher stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
		}
	}
}

// PublishOnce builds and writes a single snapshot.
func (p *Publisher) PublishOnce(ctx context.Context) error {
	start := p.clock.Now()

	snap, err := p.builder.Build(ctx)
	if err != nil {
		return err
	}
	if err := p.writer.WriteSnapshot(ctx, snap); err != nil {
		return err
	}

	p.metrics.SnapshotsPublished.Inc()
	p.ready.Store(true)
	p.logger.Debug("snapshot published",
		"at", snap.At,
		"duration", p.clock.Since(start),
	)
	return nil
}

// publishWithRetry retries a failed publish with exponential backoff, giving
// up on this tick after maxAttempts. Returns false if the publisher should stop.
func (p *Publisher) publishWithRetry(ctx context.Context) bool {
	backoff := initialBackoff
	for attempt := 1; ; attempt++ {
		err := p.PublishOnce(ctx)
		if err == nil {
			return true
		}
		if ctx.Err() != nil {
			return false
		}

		p.metrics.PublishErrors.Inc()
		p.logger.Error("publish snapshot failed", "error", err, "attempt", attempt)
		if attempt == maxAttempts {
			p.logger.Warn("skipping snapshot until next tick", "attempts", attempt)
			return true
		}

		if !p.sleepWithContext(ctx, backoff) {
			return false
		}
		backoff = retry.NextBackoff(backoff, maxBackoff)
	}
}

// sleepWithContext waits on the publisher's clock so tests can drive backoff.
func (p *Publisher) sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := p.clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}
