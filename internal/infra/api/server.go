package api

import (
	"encoding/json"
	"net/http"
	"time"

	"demo-service/internal/domain/model"
	"demo-service/internal/infra/logging"
	"demo-service/internal/infra/metrics"
	"demo-service/internal/usecase"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const (
	// Greeting is the plain-text body served on GET /.
	Greeting = "Hello from the Docker demo service!"

	contentTypeJSON = "application/json; charset=utf-8"
)

// HandlerFunc is a route handler that reports unexpected faults as an error.
// It must not write to w before returning a non-nil error.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

type errorBody struct {
	Error string `json:"error"`
}

// Server binds the HTTP routes to the probes and the metrics registry.
type Server struct {
	dbProbe    usecase.ProbeUseCase
	cacheProbe usecase.ProbeUseCase
	registry   *metrics.Registry
	httpM      *metrics.HTTPMetrics
	deps       *metrics.DependencyMetrics
	log        *zerolog.Logger
	now        func() time.Time
}

func NewServer(
	dbProbe usecase.ProbeUseCase,
	cacheProbe usecase.ProbeUseCase,
	registry *metrics.Registry,
	httpM *metrics.HTTPMetrics,
	deps *metrics.DependencyMetrics,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		dbProbe:    dbProbe,
		cacheProbe: cacheProbe,
		registry:   registry,
		httpM:      httpM,
		deps:       deps,
		log:        logger,
		now:        time.Now,
	}
}

// Routes builds the router. Additional routes may be mounted on the returned mux.
func (s *Server) Routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(
		TraceID(s.log),
		RequestLog(s.log),
		Instrument(s.httpM),
		CountRequests(s.httpM),
		Recover(s.log),
		Detach(),
	)

	r.Get("/", s.Handle(s.handleRoot))
	r.Get("/health", s.Handle(s.handleHealth))
	r.Get("/ready", s.Handle(s.handleReady))
	r.Get("/db-test", s.Handle(s.handleDBTest))
	r.Get("/metrics", s.Handle(s.handleMetrics))
	// Every route is GET only; any other method on a known path is unmatched too.
	r.NotFound(notFound)
	r.MethodNotAllowed(notFound)
	return r
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	_ = writeJSON(w, http.StatusNotFound, errorBody{Error: "Not Found"})
}

// Handle adapts fn to net/http and is the error boundary: a returned error is
// logged with full detail and the client receives the generic 500 body.
func (s *Server) Handle(fn HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			logging.With(r.Context(), s.log).Error().Err(err).
				Str("method", r.Method).Str("path", r.URL.Path).Msg("handler fault")
			writeInternalError(w)
		}
	}
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) error {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(Greeting))
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	report := model.HealthReport{
		Status:    model.StatusHealthy,
		Timestamp: model.FormatTime(s.now()),
		Database:  s.dbProbe.Check(ctx),
	}
	s.deps.SetDBConnected(report.Database.Connected)
	if s.cacheProbe.Configured() {
		report.Cache = s.cacheProbe.Check(ctx)
		s.deps.SetCacheConnected(report.Cache.Connected)
	}
	return writeJSON(w, http.StatusOK, report)
}

// handleReady reports 503 when a configured dependency is unreachable.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	report := model.ReadinessReport{
		Ready:     true,
		Timestamp: model.FormatTime(s.now()),
		Database:  s.dbProbe.Check(ctx),
	}
	s.deps.SetDBConnected(report.Database.Connected)
	if s.dbProbe.Configured() && !report.Database.Connected {
		report.Ready = false
	}
	if s.cacheProbe.Configured() {
		report.Cache = s.cacheProbe.Check(ctx)
		s.deps.SetCacheConnected(report.Cache.Connected)
		if !report.Cache.Connected {
			report.Ready = false
		}
	}
	status := http.StatusOK
	if !report.Ready {
		status = http.StatusServiceUnavailable
	}
	return writeJSON(w, status, report)
}

func (s *Server) handleDBTest(w http.ResponseWriter, r *http.Request) error {
	return writeJSON(w, http.StatusOK, s.dbProbe.Check(r.Context()))
}

func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) error {
	text, err := s.registry.ExportText()
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", s.registry.ContentType())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(text))
	return nil
}

// writeJSON encodes v before touching w, so an encoding failure can still be
// reported through the error boundary.
func writeJSON(w http.ResponseWriter, status int, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_, _ = w.Write(b)
	return nil
}

func writeInternalError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = w.Write([]byte(`{"error":"Internal Server Error"}`))
}
