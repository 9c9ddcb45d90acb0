package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-playground/validator/v10"
	"github.com/johnjung/speculative-weather-report/internal/domain"
	"github.com/johnjung/speculative-weather-report/internal/forecast"
	"github.com/johnjung/speculative-weather-report/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

var validate = validator.New()

// Forecaster assembles forecasts on demand.
type Forecaster interface {
	AssembleSeries(t time.Time, hours, days int) forecast.Forecast
	Options() forecast.Options
}

// Observations resolves raw readings from the historical dataset.
type Observations interface {
	ClosestPastIndex(t time.Time) (int, error)
	Get(field string, index int) (string, error)
	Date(index int) (string, error)
}

// Deps are the collaborators behind the HTTP routes. A nil Limiter disables
// rate limiting.
type Deps struct {
	Ready        sharedobs.ReadinessChecker
	Forecaster   Forecaster
	Observations Observations
	Clock        clockwork.Clock
	Limiter      *rate.Limiter
	Metrics      *observability.Metrics
}

// Server exposes the forecast API alongside health, readiness, and metrics
// endpoints.
type Server struct {
	httpServer *http.Server
	deps       Deps
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics,
// /forecast, and /observations/{field} routes.
func NewServer(addr string, deps Deps, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		deps:   deps,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(deps.Ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.Handle("GET /forecast", s.limit(http.HandlerFunc(s.handleForecast)))
	mux.Handle("GET /observations/{field}", s.limit(http.HandlerFunc(s.handleObservation)))

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) limit(next http.Handler) http.Handler {
	if s.deps.Limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.deps.Limiter.Allow() {
			s.deps.Metrics.RateLimited.Inc()
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// forecastQuery holds the /forecast query parameters.
type forecastQuery struct {
	At    string `validate:"omitempty,datetime=2006-01-02T15:04:05"`
	Hours int    `validate:"omitempty,min=1,max=24"`
	Days  int    `validate:"omitempty,min=1,max=7"`
}

func (q *forecastQuery) bind(r *http.Request) error {
	v := r.URL.Query()
	q.At = v.Get("at")

	var err error
	if q.Hours, err = queryInt(v.Get("hours")); err != nil {
		return errors.New("hours must be an integer")
	}
	if q.Days, err = queryInt(v.Get("days")); err != nil {
		return errors.New("days must be an integer")
	}
	return validate.Struct(q)
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	var q forecastQuery
	if err := q.bind(r); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	at, err := s.resolveTime(q.At)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	opts := s.deps.Forecaster.Options()
	hours, days := q.Hours, q.Days
	if hours == 0 {
		hours = opts.HourlyCount
	}
	if days == 0 {
		days = opts.DailyCount
	}

	sharedobs.WriteJSON(w, http.StatusOK, s.deps.Forecaster.AssembleSeries(at, hours, days))
}

type observationResponse struct {
	Field string `json:"field"`
	Value string `json:"value"`
	Index int    `json:"index"`
	Date  string `json:"date"`
}

func (s *Server) handleObservation(w http.ResponseWriter, r *http.Request) {
	field := r.PathValue("field")
	at, err := s.resolveTime(r.URL.Query().Get("at"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	idx, err := s.deps.Observations.ClosestPastIndex(at)
	if err != nil {
		s.writeLookupError(w, err)
		return
	}
	value, err := s.deps.Observations.Get(field, idx)
	if err != nil {
		s.writeLookupError(w, err)
		return
	}
	date, err := s.deps.Observations.Date(idx)
	if err != nil {
		s.writeLookupError(w, err)
		return
	}

	sharedobs.WriteJSON(w, http.StatusOK, observationResponse{Field: field, Value: value, Index: idx, Date: date})
}

func (s *Server) writeLookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrUnknownField) || errors.Is(err, domain.ErrLookupNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	s.logger.Error("observation lookup failed", "error", err)
	writeError(w, http.StatusInternalServerError, "observation lookup failed")
}

// resolveTime parses an at parameter, defaulting to the clock's current
// second.
func (s *Server) resolveTime(raw string) (time.Time, error) {
	if raw == "" {
		return s.deps.Clock.Now().Truncate(time.Second), nil
	}
	t, err := time.Parse(domain.DateLayout, raw)
	if err != nil {
		return time.Time{}, errors.New("at must use layout " + domain.DateLayout)
	}
	return t, nil
}

func queryInt(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	sharedobs.WriteJSON(w, status, map[string]string{"error": msg})
}
