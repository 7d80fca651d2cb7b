//go:build !integration

package metrics

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"demo-service/internal/domain/ports/repository"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	l := zerolog.Nop()
	r := NewRegistry(&l)
	t.Cleanup(r.Close)
	return r
}

func mustPanic(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	fn()
}

func TestRegisterTwicePanics(t *testing.T) {
	r := newTestRegistry(t)
	r.RegisterCounter("jobs_total", "Jobs.", "kind")
	mustPanic(t, func() { r.RegisterCounter("jobs_total", "Jobs again.", "kind") })
	mustPanic(t, func() { r.RegisterGauge("jobs_total", "Same name, other kind.") })
}

func TestServiceMetricsRegisterOncePerRegistry(t *testing.T) {
	r := newTestRegistry(t)
	NewHTTPMetrics(r)
	mustPanic(t, func() { NewHTTPMetrics(r) })

	// a fresh registry is independent
	NewHTTPMetrics(newTestRegistry(t))
}

func TestExportTextCounterAndGauge(t *testing.T) {
	r := newTestRegistry(t)
	hm := NewHTTPMetrics(r)
	dm := NewDependencyMetrics(r)

	for i := 0; i < 3; i++ {
		hm.IncRequest("GET", "/", 200)
	}
	dm.SetDBConnected(true)

	out, err := r.ExportText()
	if err != nil {
		t.Fatalf("ExportText: %v", err)
	}
	for _, want := range []string{
		"# HELP http_requests_total Total number of HTTP requests",
		"# TYPE http_requests_total counter",
		`http_requests_total{method="GET",route="/",status="200"} 3`,
		"# TYPE db_connection_status gauge",
		"db_connection_status 1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("export missing %q\n%s", want, out)
		}
	}

	dm.SetDBConnected(false)
	out, _ = r.ExportText()
	if !strings.Contains(out, "db_connection_status 0") {
		t.Errorf("gauge not reset to 0:\n%s", out)
	}
}

func TestExportTextIsPureRead(t *testing.T) {
	r := newTestRegistry(t)
	hm := NewHTTPMetrics(r)
	hm.IncRequest("GET", "/health", 200)

	for i := 0; i < 3; i++ {
		if _, err := r.ExportText(); err != nil {
			t.Fatalf("ExportText: %v", err)
		}
	}
	got := testutil.ToFloat64(hm.requests.WithLabelValues("GET", "/health", "200"))
	if got != 1 {
		t.Fatalf("counter = %v after repeated exports, want 1", got)
	}
}

func TestContentType(t *testing.T) {
	r := newTestRegistry(t)
	if ct := r.ContentType(); !strings.HasPrefix(ct, "text/plain") || !strings.Contains(ct, "version=0.0.4") {
		t.Fatalf("unexpected content type %q", ct)
	}
}

type fixedStatDB struct {
	repository.Database
	st repository.PoolStat
}

func (f fixedStatDB) Stat() repository.PoolStat { return f.st }

func TestCollectDefaults(t *testing.T) {
	r := newTestRegistry(t)
	dm := NewDependencyMetrics(r)

	var runs atomic.Int32
	counting := func(context.Context) error { runs.Add(1); return nil }
	db := fixedStatDB{st: repository.PoolStat{Total: 3, Idle: 1, InUse: 2, Max: 10}}

	r.CollectDefaults(context.Background(), 10*time.Millisecond, dm.PoolStatsRefresher(db), counting)
	mustPanic(t, func() { r.CollectDefaults(context.Background(), time.Second) })

	deadline := time.Now().Add(2 * time.Second)
	for runs.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if runs.Load() < 2 {
		t.Fatal("refresh hooks did not run periodically")
	}

	out, err := r.ExportText()
	if err != nil {
		t.Fatalf("ExportText: %v", err)
	}
	for _, want := range []string{
		"# TYPE go_goroutines gauge",
		"go_memstats_heap_alloc_bytes",
		`db_pool_stats{state="in_use"} 2`,
		`db_pool_stats{state="max"} 10`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("export missing %q", want)
		}
	}

	r.Close()
	after := runs.Load()
	time.Sleep(40 * time.Millisecond)
	if runs.Load() != after {
		t.Fatal("sampler still running after Close")
	}
}

func TestBuildInfo(t *testing.T) {
	r := newTestRegistry(t)
	RegisterBuildInfo(r, "1.2.3", "abc123")
	out, _ := r.ExportText()
	if !strings.Contains(out, `build_info{commit="abc123",version="1.2.3"} 1`) {
		t.Fatalf("build_info missing:\n%s", out)
	}
}

func TestGathererSeriesCount(t *testing.T) {
	r := newTestRegistry(t)
	hm := NewHTTPMetrics(r)
	RegisterBuildInfo(r, "1.2.3", "abc123")

	hm.IncRequest("GET", "/", 200)
	hm.IncRequest("GET", "/", 200)
	hm.IncRequest("GET", "unmatched", 404)

	n, err := testutil.GatherAndCount(r.Gatherer(), "http_requests_total", "build_info")
	if err != nil {
		t.Fatalf("GatherAndCount: %v", err)
	}
	if n != 3 {
		t.Fatalf("series = %d, want 3", n)
	}
}
