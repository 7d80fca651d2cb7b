//go:build !integration

package http

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"demo-service/internal/domain"

	"github.com/rs/zerolog"
)

func newTestLogger() *zerolog.Logger { l := zerolog.Nop(); return &l }

// blockingHandler signals started and then waits for release before answering.
func blockingHandler(started chan<- struct{}, release <-chan struct{}) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started <- struct{}{}
		<-release
		_, _ = w.Write([]byte("done"))
	})
}

func waitState(t *testing.T, s *Server, want State) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for s.State() != want {
		if time.Now().After(deadline) {
			t.Fatalf("state = %s, want %s", s.State(), want)
		}
		time.Sleep(time.Millisecond)
	}
}

type result struct {
	body string
	code int
	err  error
}

func fetch(url string) <-chan result {
	ch := make(chan result, 1)
	go func() {
		resp, err := http.Get(url)
		if err != nil {
			ch <- result{err: err}
			return
		}
		defer resp.Body.Close()
		b, err := io.ReadAll(resp.Body)
		ch <- result{body: string(b), code: resp.StatusCode, err: err}
	}()
	return ch
}

func TestServerDrainsInFlightRequest(t *testing.T) {
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	s := NewServer("127.0.0.1:0", blockingHandler(started, release), 0, time.Second, newTestLogger())
	if s.State() != StateStarting {
		t.Fatalf("initial state = %s", s.State())
	}
	if err := s.Listen(); err != nil {
		t.Fatalf("Listen: %v", err)
	}
	if s.State() != StateListening {
		t.Fatalf("state after Listen = %s", s.State())
	}

	ctx, cancel := context.WithCancel(context.Background())
	runErr := make(chan error, 1)
	go func() { runErr <- s.Run(ctx) }()

	inflight := fetch("http://" + s.Addr() + "/")
	<-started

	cancel()
	waitState(t, s, StateDraining)

	select {
	case err := <-runErr:
		t.Fatalf("Run returned before the in-flight request finished: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	res := <-inflight
	if res.err != nil {
		t.Fatalf("in-flight request failed: %v", res.err)
	}
	if res.code != http.StatusOK || res.body != "done" {
		t.Fatalf("in-flight response = %d %q", res.code, res.body)
	}
	if err := <-runErr; err != nil {
		t.Fatalf("Run: %v", err)
	}
	if s.State() != StateStopped {
		t.Fatalf("final state = %s", s.State())
	}
}

func TestServerDrainTimeout(t *testing.T) {
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	defer close(release)
	s := NewServer("127.0.0.1:0", blockingHandler(started, release), 50*time.Millisecond, time.Second, newTestLogger())

	ctx, cancel := context.WithCancel(context.Background())
	runErr := make(chan error, 1)
	go func() { runErr <- s.Run(ctx) }()
	waitState(t, s, StateListening)

	inflight := fetch("http://" + s.Addr() + "/")
	<-started
	cancel()

	select {
	case err := <-runErr:
		if !errors.Is(err, domain.ErrDrainTimeout) {
			t.Fatalf("Run err = %v, want ErrDrainTimeout", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("drain bound not enforced")
	}
	if res := <-inflight; res.err == nil {
		t.Fatal("expected force-closed request to fail")
	}
	if s.State() != StateStopped {
		t.Fatalf("final state = %s", s.State())
	}
}

func TestServerBindFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	s := NewServer(ln.Addr().String(), http.NotFoundHandler(), 0, time.Second, newTestLogger())
	if err := s.Run(context.Background()); err == nil {
		t.Fatal("expected bind failure")
	}
	if s.State() != StateStarting {
		t.Fatalf("state after bind failure = %s, want starting", s.State())
	}
}

func TestStateString(t *testing.T) {
	for st, want := range map[State]string{
		StateStarting:  "starting",
		StateListening: "listening",
		StateDraining:  "draining",
		StateStopped:   "stopped",
		State(9):       "state(9)",
	} {
		if st.String() != want {
			t.Errorf("%d.String() = %q, want %q", int32(st), st.String(), want)
		}
	}
}
