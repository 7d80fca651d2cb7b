package metrics

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"demo-service/internal/infra/scheduler"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/common/expfmt"
	"github.com/rs/zerolog"
)

// DefaultInterval is the refresh interval of sampled default metrics.
const DefaultInterval = 5 * time.Second

// Registry is the process-wide metrics registry. It is constructed once at
// startup and passed to the components that record or expose metrics.
type Registry struct {
	reg *prometheus.Registry
	log *zerolog.Logger

	mu       sync.Mutex
	names    map[string]struct{}
	defaults bool
	sampler  *scheduler.Scheduler
}

func NewRegistry(logger *zerolog.Logger) *Registry {
	return &Registry{
		reg:   prometheus.NewRegistry(),
		log:   logger,
		names: make(map[string]struct{}),
	}
}

// mustRegister registers c under name. Registering the same name twice is a
// programming error and panics.
func (r *Registry) mustRegister(name string, c prometheus.Collector) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.names[name]; exists {
		panic(fmt.Sprintf("metrics: %q registered twice", name))
	}
	r.reg.MustRegister(c)
	r.names[name] = struct{}{}
}

func (r *Registry) RegisterCounter(name, help string, labelNames ...string) *prometheus.CounterVec {
	c := prometheus.NewCounterVec(prometheus.CounterOpts{Name: name, Help: help}, labelNames)
	r.mustRegister(name, c)
	return c
}

func (r *Registry) RegisterGauge(name, help string) prometheus.Gauge {
	g := prometheus.NewGauge(prometheus.GaugeOpts{Name: name, Help: help})
	r.mustRegister(name, g)
	return g
}

func (r *Registry) RegisterGaugeVec(name, help string, labelNames ...string) *prometheus.GaugeVec {
	g := prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: name, Help: help}, labelNames)
	r.mustRegister(name, g)
	return g
}

func (r *Registry) RegisterHistogram(name, help string, buckets []float64, labelNames ...string) *prometheus.HistogramVec {
	h := prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: name, Help: help, Buckets: buckets}, labelNames)
	r.mustRegister(name, h)
	return h
}

// CollectDefaults installs the Go runtime and process collectors (CPU, memory,
// heap, goroutines, file descriptors), which are computed on every scrape, and
// starts a sampler that invokes refresh every interval for values that have to be
// polled. Calling it more than once panics.
func (r *Registry) CollectDefaults(ctx context.Context, interval time.Duration, refresh ...func(ctx context.Context) error) {
	r.mu.Lock()
	if r.defaults {
		r.mu.Unlock()
		panic("metrics: default collectors installed twice")
	}
	r.defaults = true
	r.mu.Unlock()

	r.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	if len(refresh) == 0 {
		return
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	job := func(ctx context.Context) error {
		for _, fn := range refresh {
			if err := fn(ctx); err != nil {
				return err
			}
		}
		return nil
	}
	s := scheduler.NewScheduler("metrics-defaults", interval, job, r.log)
	r.mu.Lock()
	r.sampler = s
	r.mu.Unlock()
	s.Start(ctx)
}

// ContentType is the media type of ExportText output.
func (r *Registry) ContentType() string {
	return string(expfmt.NewFormat(expfmt.TypeTextPlain))
}

// ExportText gathers every registered collector and serializes the result in the
// text exposition format. It does not change registry state.
func (r *Registry) ExportText() (string, error) {
	mfs, err := r.Gatherer().Gather()
	if err != nil {
		return "", fmt.Errorf("gather metrics: %w", err)
	}
	var buf bytes.Buffer
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(&buf, mf); err != nil {
			return "", fmt.Errorf("encode %s: %w", mf.GetName(), err)
		}
	}
	return buf.String(), nil
}

// Gatherer exposes the underlying registry for exporters and test helpers.
func (r *Registry) Gatherer() prometheus.Gatherer { return r.reg }

// Close stops the default-sample refresher.
func (r *Registry) Close() {
	r.mu.Lock()
	s := r.sampler
	r.sampler = nil
	r.mu.Unlock()
	if s != nil {
		s.Stop()
	}
}
