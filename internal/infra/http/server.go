package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"demo-service/internal/domain"

	"github.com/rs/zerolog"
)

type State int32

const (
	StateStarting State = iota
	StateListening
	StateDraining
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateListening:
		return "listening"
	case StateDraining:
		return "draining"
	case StateStopped:
		return "stopped"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

// Server owns the listener and drives Starting → Listening → Draining → Stopped.
type Server struct {
	server       *http.Server
	drainTimeout time.Duration
	log          *zerolog.Logger

	state    atomic.Int32
	mu       sync.Mutex
	ln       net.Listener
	serveErr chan error
}

// NewServer constructs a server for addr. drainTimeout bounds how long Shutdown
// waits for in-flight requests; zero waits indefinitely.
func NewServer(addr string, handler http.Handler, drainTimeout, readHeaderTimeout time.Duration, logger *zerolog.Logger) *Server {
	s := &Server{
		server: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: readHeaderTimeout,
		},
		drainTimeout: drainTimeout,
		log:          logger,
		serveErr:     make(chan error, 1),
	}
	s.state.Store(int32(StateStarting))
	return s
}

func (s *Server) State() State { return State(s.state.Load()) }

// Addr returns the bound address once listening, otherwise the configured one.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return s.server.Addr
}

// Listen binds the socket and starts serving in the background. A bind failure
// is returned as is and leaves the server in StateStarting.
func (s *Server) Listen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln != nil {
		return errors.New("http server already listening")
	}
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("bind %s: %w", s.server.Addr, err)
	}
	s.ln = ln
	s.state.Store(int32(StateListening))
	s.log.Info().Str("addr", ln.Addr().String()).Msg("http server listening")

	go func() {
		err := s.server.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		s.serveErr <- err
	}()
	return nil
}

// Run listens (if not already), blocks until ctx is cancelled or serving fails,
// then drains. It returns nil after a clean drain.
func (s *Server) Run(ctx context.Context) error {
	if s.State() == StateStarting {
		if err := s.Listen(); err != nil {
			return err
		}
	}
	select {
	case <-ctx.Done():
		s.log.Info().Msg("shutdown requested")
		return s.Shutdown()
	case err := <-s.serveErr:
		s.state.Store(int32(StateStopped))
		if err != nil {
			return fmt.Errorf("http serve: %w", err)
		}
		return nil
	}
}

// Shutdown stops accepting connections and waits for in-flight requests.
// When the drain bound elapses the remaining connections are closed and
// domain.ErrDrainTimeout is returned.
func (s *Server) Shutdown() error {
	s.state.Store(int32(StateDraining))
	s.log.Info().Dur("timeout", s.drainTimeout).Msg("draining in-flight requests")

	ctx := context.Background()
	if s.drainTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.drainTimeout)
		defer cancel()
	}

	err := s.server.Shutdown(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		_ = s.server.Close()
		err = domain.ErrDrainTimeout
	}
	s.state.Store(int32(StateStopped))
	if err != nil {
		s.log.Warn().Err(err).Msg("http server stopped with error")
		return err
	}
	s.log.Info().Msg("http server stopped")
	return nil
}
