package daemon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net"
	"os"
	"os/signal"

	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/sys/unix"

	"github.com/bnema/bws-ssh-agent/internal/application"
)

const socketFileMode = 0o600

// Server is the foreground half of the daemon: it owns the unix socket
// and hands every accepted connection its own agent session over the
// shared keyring.
type Server struct {
	paths   Paths
	keyring *application.Keyring
	logger  *slog.Logger
}

func NewServer(paths Paths, keyring *application.Keyring, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{paths: paths, keyring: keyring, logger: logger}
}

// Run binds the socket and serves until the context ends or a
// termination signal arrives, then removes the socket and PID file. The
// socket goes owner-only between bind and the first accept so no other
// local user ever gets a connect window.
func (s *Server) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, unix.SIGINT, unix.SIGTERM)
	defer stop()

	if err := os.Remove(s.paths.Socket); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove stale socket %s: %w", s.paths.Socket, err)
	}

	listener, err := net.Listen("unix", s.paths.Socket)
	if err != nil {
		return fmt.Errorf("bind agent socket %s: %w", s.paths.Socket, err)
	}

	if err := os.Chmod(s.paths.Socket, socketFileMode); err != nil {
		_ = listener.Close()
		s.cleanup()
		return fmt.Errorf("restrict socket permissions: %w", err)
	}

	s.logger.Info("agent listening", "socket", s.paths.Socket)

	acceptErr := make(chan error, 1)
	go func() { acceptErr <- s.acceptLoop(ctx, listener) }()

	// First to finish wins: a termination signal cancels the accept
	// loop, an accept failure shuts the daemon down.
	var runErr error
	select {
	case <-ctx.Done():
		s.logger.Info("termination signal received, shutting down")
		_ = listener.Close()
		<-acceptErr
	case err := <-acceptErr:
		runErr = err
	}

	s.cleanup()
	return runErr
}

func (s *Server) acceptLoop(ctx context.Context, listener net.Listener) error {
	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("accept connection: %w", err)
		}
		go s.serveConn(ctx, conn)
	}
}

func (s *Server) serveConn(ctx context.Context, conn net.Conn) {
	defer func() { _ = conn.Close() }()

	session := application.NewSession(ctx, s.keyring, s.logger)
	if err := agent.ServeAgent(session, conn); err != nil && !errors.Is(err, io.EOF) {
		s.logger.Debug("agent connection ended", "error", err)
	}
}

// cleanup removes the socket and PID file so a signal-terminated
// daemon leaves no orphaned filesystem state behind.
func (s *Server) cleanup() {
	for _, path := range []string{s.paths.Socket, s.paths.PIDFile} {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("cleanup failed", "path", path, "error", err)
		}
	}
}
