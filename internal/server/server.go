// Package server sends one file to every client that connects, using the
// zero-copy send path in internal/engine.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/bamsammich/zerocopy/internal/engine"
	"github.com/bamsammich/zerocopy/internal/event"
	"github.com/bamsammich/zerocopy/internal/stats"
)

const defaultShutdownGrace = 30 * time.Second

// Config configures a file server.
type Config struct {
	Stats   stats.Writer
	Events  chan<- event.Event
	Limiter *rate.Limiter
	// ListenAddr is a TCP address; ":0" picks a free port.
	ListenAddr string
	Path       string
	Header     []byte
	Trailer    []byte
	Chunk      int64
	// ShutdownGrace is how long active transfers may run after ctx is
	// cancelled before their connections are closed. Zero means 30s.
	ShutdownGrace time.Duration
}

// Server accepts TCP connections and sends Config.Path to each one.
type Server struct {
	listener net.Listener
	conns    map[net.Conn]struct{}
	cfg      Config
	mu       sync.Mutex
}

// New validates the served file and starts listening. Call Serve to accept
// connections.
func New(cfg Config) (*Server, error) {
	info, err := os.Stat(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("serve file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("serve file %s: not a regular file", cfg.Path)
	}
	if cfg.ShutdownGrace <= 0 {
		cfg.ShutdownGrace = defaultShutdownGrace
	}
	if cfg.Stats == nil {
		cfg.Stats = stats.Discard
	}

	listener, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", cfg.ListenAddr, err)
	}

	return &Server{
		cfg:      cfg,
		listener: listener,
		conns:    make(map[net.Conn]struct{}),
	}, nil
}

// Addr returns the listener's address (useful when listening on :0).
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Serve accepts connections until ctx is cancelled. Blocks until shutdown completes.
func (s *Server) Serve(ctx context.Context) error {
	slog.Info("zerocopy server listening", "addr", s.listener.Addr(), "path", s.cfg.Path)

	var wg sync.WaitGroup

	// Shutdown goroutine: when ctx is cancelled, stop the listener and drain connections.
	stop := context.AfterFunc(ctx, func() {
		s.listener.Close()

		time.AfterFunc(s.cfg.ShutdownGrace, func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for conn := range s.conns {
				conn.Close()
			}
		})
	})
	defer stop()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				break // graceful shutdown
			}
			slog.Error("accept error", "error", err)
			continue
		}

		s.mu.Lock()
		s.conns[conn] = struct{}{}
		s.mu.Unlock()

		wg.Go(func() {
			defer func() {
				s.mu.Lock()
				delete(s.conns, conn)
				s.mu.Unlock()
			}()
			s.handleConn(ctx, conn)
		})
	}

	wg.Wait()
	return nil
}

// Close stops the listener. Active transfers keep running until Serve's
// context is cancelled.
func (s *Server) Close() error {
	return s.listener.Close()
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	id := uuid.NewString()
	remote := conn.RemoteAddr().String()
	s.cfg.Stats.AddConnsAccepted(1)
	emit(s.cfg.Events, event.Event{Type: event.ConnAccepted, Peer: remote, Path: s.cfg.Path})
	slog.Info("new connection", "id", id, "remote", remote)

	sendConn, ok := conn.(engine.Conn)
	if !ok {
		slog.Error("connection has no descriptor", "id", id, "remote", remote)
		return
	}

	// Each connection reads through its own descriptor so offsets never race.
	f, err := os.Open(s.cfg.Path)
	if err != nil {
		slog.Error("open served file", "id", id, "path", s.cfg.Path, "error", err)
		return
	}
	defer f.Close()

	// Cancellation only stops accepting; the grace timer in Serve ends
	// transfers that outlive it by closing their connections.
	result, err := engine.Send(context.WithoutCancel(ctx), sendConn, f, engine.SendOptions{
		Header:  s.cfg.Header,
		Trailer: s.cfg.Trailer,
		Limiter: s.cfg.Limiter,
		Events:  s.cfg.Events,
		Stats:   s.cfg.Stats,
		Chunk:   s.cfg.Chunk,
		Name:    s.cfg.Path,
	})
	if err != nil {
		slog.Warn("transfer failed", "id", id, "remote", remote, "bytes", result.BytesSent, "error", err)
	} else {
		slog.Info("transfer complete", "id", id, "remote", remote,
			"bytes", result.BytesSent, "calls", result.Calls, "retries", result.Retries, "method", result.Method)
	}

	emit(s.cfg.Events, event.Event{Type: event.ConnClosed, Peer: remote, Path: s.cfg.Path, Size: result.BytesSent})
	slog.Info("connection closed", "id", id, "remote", remote)
}

func emit(ch chan<- event.Event, e event.Event) {
	if ch == nil {
		return
	}
	e.Timestamp = time.Now()
	select {
	case ch <- e:
	default:
	}
}
