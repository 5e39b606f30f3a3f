package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/logging"
	"github.com/tomz197/whackamole/internal/audio"
	"github.com/tomz197/whackamole/internal/config"
	"github.com/tomz197/whackamole/internal/draw"
	"github.com/tomz197/whackamole/internal/game"
	"github.com/tomz197/whackamole/internal/loop"
	loopconfig "github.com/tomz197/whackamole/internal/loop/config"
	"github.com/tomz197/whackamole/internal/loop/server"
	"github.com/tomz197/whackamole/internal/store"
)

const (
	defaultHost        = "::"
	defaultPort        = "2222"
	defaultHostKeyPath = "/app/keys/host_key"
	defaultDBPath      = "/app/data/whack.db"
)

// Shared by all SSH sessions.
var (
	hub       *server.Hub
	bestStore store.KV
	logger    = log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true, Prefix: "whack-ssh"})
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		logger.Warn("failed to load .env", "err", err)
	}
	if lvl, err := log.ParseLevel(config.GetEnv("LOG_LEVEL", "info")); err == nil {
		logger.SetLevel(lvl)
	}

	host := config.GetEnv("SSH_HOST", defaultHost)
	port := config.GetEnv("SSH_PORT", defaultPort)
	hostKeyPath := config.GetEnv("SSH_HOST_KEY", defaultHostKeyPath)
	dbPath := config.GetEnv("WHACK_DB", defaultDBPath)
	logger.Info("SSH config", "host", host, "port", port, "hostKeyPath", hostKeyPath, "db", dbPath)

	var err error
	bestStore, err = store.Open(dbPath)
	if err != nil {
		logger.Warn("best score will not persist", "err", err)
	}
	defer bestStore.Close()

	hub = server.NewHub(logger)

	opts := []ssh.Option{
		wish.WithAddress(net.JoinHostPort(host, port)),
		wish.WithMiddleware(
			gameMiddleware,
			activeterm.Middleware(),
			logging.StructuredMiddlewareWithLogger(logger, log.DebugLevel),
		),
		// Set TCP_NODELAY to reduce latency for game input
		ssh.WrapConn(func(ctx ssh.Context, conn net.Conn) net.Conn {
			if tcpConn, ok := conn.(*net.TCPConn); ok {
				_ = tcpConn.SetNoDelay(true)
			}
			return conn
		}),
	}

	if hostKeyPath != "" {
		opts = append(opts, wish.WithHostKeyPath(hostKeyPath))
	}

	s, err := wish.NewServer(opts...)
	if err != nil {
		logger.Fatal("failed to create server", "err", err)
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Starting SSH server", "addr", net.JoinHostPort(host, port))
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			logger.Fatal("server error", "err", err)
		}
	}()

	<-done
	logger.Info("Shutting down server...")

	// Notify players and wait for them to disconnect
	logger.Info("Notifying connected players about shutdown...", "players", hub.Players())
	hub.Shutdown(loopconfig.ShutdownWait)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "err", err)
	}
}

// gameMiddleware handles SSH sessions and runs a game session.
func gameMiddleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		pty, winCh, ok := sess.Pty()
		if !ok {
			fmt.Fprintln(sess, "Error: PTY required. Please connect with: ssh -t user@host")
			return
		}

		// Create a terminal size tracker that updates on window changes
		sizeTracker := newSizeTracker(pty.Window.Width, pty.Window.Height)

		// Listen for window size changes in a goroutine
		go func() {
			for win := range winCh {
				sizeTracker.update(win.Width, win.Height)
			}
		}()

		settings := game.DefaultSettings()
		// Remote players hear the bell but cannot feel a shake.
		settings.Vibrate = false

		gs, err := loop.NewSession(sess, sess, loop.Options{
			Username:     sess.User(),
			Settings:     settings,
			Store:        bestStore,
			Audio:        audio.NewBell(sess),
			Hub:          hub,
			Logger:       logger,
			TermSizeFunc: sizeTracker.getSize,
			Inactivity:   true,
		})
		if err != nil {
			logger.Error("failed to create session", "user", sess.User(), "err", err)
			return
		}

		logger.Info("New game session", "user", sess.User(), "session", gs.ID(),
			"terminal", pty.Term, "width", pty.Window.Width, "height", pty.Window.Height)

		if err := gs.Run(sess.Context()); err != nil {
			logger.Error("game error", "user", sess.User(), "err", err)
		}

		next(sess)
	}
}

// sizeTracker tracks terminal size from SSH window change events.
type sizeTracker struct {
	mu     sync.RWMutex
	width  int
	height int
}

func newSizeTracker(width, height int) *sizeTracker {
	return &sizeTracker{width: width, height: height}
}

func (s *sizeTracker) update(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = width
	s.height = height
}

func (s *sizeTracker) getSize() (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height, nil
}

// Ensure sizeTracker.getSize satisfies draw.TermSizeFunc
var _ draw.TermSizeFunc = (*sizeTracker)(nil).getSize
