package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"demo-service/internal/infra/logging"
	"demo-service/internal/infra/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

type Middleware func(http.Handler) http.Handler

const HeaderRequestID = "X-Request-ID"

// RouteUnmatched labels requests that did not match any registered route.
const RouteUnmatched = "unmatched"

func TraceID(logger *zerolog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tid := uuid.NewString()
			w.Header().Set(HeaderRequestID, tid)
			ctx := logging.WithTraceID(r.Context(), tid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func RequestLog(logger *zerolog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			l := logging.With(r.Context(), logger)
			start := time.Now()
			ww := newRespWriter(w)
			next.ServeHTTP(ww, r)
			l.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.status).
				Dur("duration", time.Since(start)).
				Msg("http_request")
		})
	}
}

// Instrument records request latency into http_request_duration_seconds.
func Instrument(m *metrics.HTTPMetrics) Middleware {
	return func(next http.Handler) http.Handler {
		return promhttp.InstrumentHandlerDuration(m.Duration(), next)
	}
}

// CountRequests increments http_requests_total with the route pattern and the
// status that was actually written to the client.
func CountRequests(m *metrics.HTTPMetrics) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := newRespWriter(w)
			next.ServeHTTP(ww, r)

			route := RouteUnmatched
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if p := rctx.RoutePattern(); p != "" {
					route = p
				}
			}
			m.IncRequest(r.Method, route, ww.status)
		})
	}
}

// Recover turns a panic into the generic 500 response. The panic value is logged, never returned.
func Recover(logger *zerolog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := newRespWriter(w)
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					l := logging.With(r.Context(), logger)
					l.Error().Str("panic", fmt.Sprint(rec)).Str("path", r.URL.Path).Msg("panic recovered")
					if !ww.wroteHeader {
						writeInternalError(ww)
					}
				}
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

// Detach lets handlers run to completion when the client goes away, so that
// counters and gauges reflect the work that was done.
func Detach() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(context.WithoutCancel(r.Context())))
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func newRespWriter(w http.ResponseWriter) *respWriter {
	return &respWriter{ResponseWriter: w, status: http.StatusOK}
}

func (w *respWriter) WriteHeader(status int) {
	if !w.wroteHeader {
		w.status = status
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *respWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

func (w *respWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }
