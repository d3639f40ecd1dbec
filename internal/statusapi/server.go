package statusapi

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"
)

const shutdownTimeout = 5 * time.Second

// Server serves the status endpoints of one synchronizer.
type Server struct {
	server *http.Server
}

func New(addr string, provider StatusProvider) *Server {
	return &Server{
		server: &http.Server{
			Addr:              addr,
			Handler:           SetupRoutes(provider),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Start listens on the configured address and serves until ctx is cancelled.
// A listen failure is returned immediately.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	slog.Info("status api start", "addr", ln.Addr().String())
	defer slog.Info("status api stop")

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	return s.Stop(context.WithoutCancel(ctx))
}

func (s *Server) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}
