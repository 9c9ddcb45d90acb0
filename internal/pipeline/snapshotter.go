package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/johnjung/speculative-weather-report/internal/forecast"
	"github.com/jonboulle/clockwork"
)

// Assembler builds a forecast for a moment.
type Assembler interface {
	Assemble(t time.Time) forecast.Forecast
}

// Snapshotter implements SnapshotBuilder by assembling the forecast for the
// clock's current second.
type Snapshotter struct {
	assembler Assembler
	clock     clockwork.Clock
	logger    *slog.Logger
}

// NewSnapshotter creates a Snapshotter.
func NewSnapshotter(a Assembler, clock clockwork.Clock, logger *slog.Logger) *Snapshotter {
	return &Snapshotter{assembler: a, clock: clock, logger: logger}
}

func (s *Snapshotter) Build(ctx context.Context) (forecast.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return forecast.Snapshot{}, err
	}

	now := s.clock.Now()
	at := now.Truncate(time.Second)
	f := s.assembler.Assemble(at)

	if failed := f.Current.Errors(); len(failed) > 0 {
		s.logger.Warn("snapshot has unavailable fields", "at", at, "count", len(failed))
	}
	return forecast.Snapshot{At: at, GeneratedAt: now, Forecast: f}, nil
}
