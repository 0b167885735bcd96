package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"
)

const shutdownTimeout = 30 * time.Second

// writeTimeout leaves room for final synthesis, which writes several
// memory notes before answering.
const writeTimeout = 30 * time.Second

// Server runs one of the HTTP binaries and drains it on cancellation.
type Server struct {
	name string
	http *http.Server
}

// New prepares handler on host:port. name tags the server's log lines.
func New(name, host string, port int, handler http.Handler) *Server {
	return &Server{
		name: name,
		http: &http.Server{
			Addr:              net.JoinHostPort(host, strconv.Itoa(port)),
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      writeTimeout,
			IdleTimeout:       60 * time.Second,
		},
	}
}

// Start binds the address, serves until ctx is done, then shuts down.
// A bind failure is returned immediately.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("%s: listening on %s: %w", s.name, s.http.Addr, err)
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "server", s.name, "addr", ln.Addr().String())
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("%s: serving: %w", s.name, err)
	case <-ctx.Done():
	}

	slog.Info("server shutting down", "server", s.name)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("%s: shutdown: %w", s.name, err)
	}
	<-errCh

	slog.Info("server stopped", "server", s.name)
	return nil
}
