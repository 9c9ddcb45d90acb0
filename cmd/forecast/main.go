// Command forecast prints, serves and publishes speculative weather forecasts
// built from a historical LCD observations file.
//
// Usage:
//
//	forecast weather [-at 2019-05-01T15:00:00]
//	forecast json [-at 2019-05-01T15:00:00]
//	forecast headers
//	forecast get-field [-at 2019-05-01T15:00:00] <field>
//	forecast serve
//	forecast publish
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	httpadapter "github.com/johnjung/speculative-weather-report/internal/adapter/http"
	kafkaadapter "github.com/johnjung/speculative-weather-report/internal/adapter/kafka"
	"github.com/johnjung/speculative-weather-report/internal/config"
	"github.com/johnjung/speculative-weather-report/internal/dataset"
	"github.com/johnjung/speculative-weather-report/internal/domain"
	"github.com/johnjung/speculative-weather-report/internal/forecast"
	"github.com/johnjung/speculative-weather-report/internal/news"
	"github.com/johnjung/speculative-weather-report/internal/observability"
	"github.com/johnjung/speculative-weather-report/internal/pipeline"
	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"
)

var errUsage = errors.New("usage: forecast <weather|json|headers|get-field|serve|publish> [flags]")

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	a, err := newApp(cfg, logger, metrics, clockwork.NewRealClock(), os.Stdout)
	if err != nil {
		logger.Error("failed to load historical data", "path", cfg.DataPath, "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = a.run(ctx, os.Args[1:])
	stop()
	if err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// app holds the loaded dataset and the collaborators every command shares.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	metrics   *observability.Metrics
	clock     clockwork.Clock
	out       io.Writer
	ds        *dataset.Dataset
	assembler *forecast.Assembler
}

func newApp(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics, clock clockwork.Clock, out io.Writer) (*app, error) {
	ds, err := dataset.Load(cfg.DataPath, dataset.WithReferenceYear(cfg.ReferenceYear))
	if err != nil {
		return nil, err
	}
	logger.Info("historical data loaded",
		"path", cfg.DataPath,
		"records", ds.Len(),
		"reference_year", ds.ReferenceYear(),
	)

	opts := forecast.Options{
		SimulationMinYear: cfg.SimulationMinYear,
		HourlyCount:       cfg.HourlyCount,
		DailyCount:        cfg.DailyCount,
		CarbonIndex:       cfg.CarbonIndex,
		SummaryCacheSize:  cfg.SummaryCacheSize,
	}
	src := news.NewStatic(news.StoryCount, nil)

	return &app{
		cfg:       cfg,
		logger:    logger,
		metrics:   metrics,
		clock:     clock,
		out:       out,
		ds:        ds,
		assembler: forecast.NewAssembler(ds, opts, src, logger, metrics),
	}, nil
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "weather":
		return a.weather(rest)
	case "json":
		return a.printJSON(rest)
	case "headers":
		return a.headers()
	case "get-field":
		return a.getField(rest)
	case "serve":
		return a.serve(ctx)
	case "publish":
		return a.publish(ctx)
	default:
		return fmt.Errorf("unknown command %q: %w", cmd, errUsage)
	}
}

// parseAt parses the -at flag shared by the one-shot commands.
func (a *app) parseAt(name string, args []string) (time.Time, []string, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	at := fs.String("at", "", "moment to forecast, "+domain.DateLayout+" (default now)")
	if err := fs.Parse(args); err != nil {
		return time.Time{}, nil, fmt.Errorf("%s: %w", name, err)
	}
	if *at == "" {
		return a.clock.Now().Truncate(time.Second), fs.Args(), nil
	}
	t, err := time.Parse(domain.DateLayout, *at)
	if err != nil {
		return time.Time{}, nil, fmt.Errorf("%s: invalid -at: %w", name, err)
	}
	return t, fs.Args(), nil
}

func (a *app) weather(args []string) error {
	t, _, err := a.parseAt("weather", args)
	if err != nil {
		return err
	}
	return renderReport(a.out, a.assembler.Assemble(t))
}

func (a *app) printJSON(args []string) error {
	t, _, err := a.parseAt("json", args)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(a.assembler.Assemble(t))
}

func (a *app) headers() error {
	for _, h := range a.ds.Headers() {
		if _, err := fmt.Fprintln(a.out, h); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) getField(args []string) error {
	t, rest, err := a.parseAt("get-field", args)
	if err != nil {
		return err
	}
	if len(rest) != 1 {
		return errors.New("usage: forecast get-field [-at " + domain.DateLayout + "] <field>")
	}
	v, err := a.ds.GetAt(rest[0], t)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.out, v)
	return err
}

func (a *app) newServer(ready sharedobs.ReadinessChecker) *httpadapter.Server {
	return httpadapter.NewServer(a.cfg.HTTPAddr, httpadapter.Deps{
		Ready:        ready,
		Forecaster:   a.assembler,
		Observations: a.ds,
		Clock:        a.clock,
		Limiter:      rate.NewLimiter(rate.Limit(a.cfg.RateLimitRPS), a.cfg.RateLimitBurst),
		Metrics:      a.metrics,
	}, a.logger)
}

func (a *app) serve(ctx context.Context) error {
	srv := a.newServer(a.assembler)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}
	a.logger.Info("shutting down")
	return a.shutdown(srv)
}

func (a *app) publish(ctx context.Context) error {
	writer := kafkaadapter.NewWriter(a.cfg, a.logger)
	snapshotter := pipeline.NewSnapshotter(a.assembler, a.clock, a.logger)
	p := pipeline.New(snapshotter, writer, a.clock, a.cfg.PublishInterval, a.logger, a.metrics)

	srv := a.newServer(p)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("http server error", "error", err)
		}
	}()

	if err := p.Run(ctx); err != nil {
		a.logger.Error("publisher error", "error", err)
	}
	a.logger.Info("shutting down")

	err := a.shutdown(srv)
	if cerr := writer.Close(); cerr != nil {
		a.logger.Error("kafka writer close error", "error", cerr)
	}
	return err
}

func (a *app) shutdown(srv *httpadapter.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	a.logger.Info("shutdown complete")
	return nil
}
