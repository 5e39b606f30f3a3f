package main

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tomz197/whackamole/internal/config"
	"github.com/tomz197/whackamole/internal/web"
)

const (
	defaultHost = "0.0.0.0"
	defaultPort = "3000"
)

//go:embed static
var embedded embed.FS

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true, Prefix: "whack-web"})
	if err := config.LoadDotEnv(); err != nil {
		logger.Warn("failed to load .env", "err", err)
	}
	if lvl, err := log.ParseLevel(config.GetEnv("LOG_LEVEL", "info")); err == nil {
		logger.SetLevel(lvl)
	}

	host := config.GetEnv("WEB_HOST", defaultHost)
	port := config.GetEnv("PORT", defaultPort)

	files, source := staticFiles()
	srv := &http.Server{
		Addr:              net.JoinHostPort(host, port),
		Handler:           web.NewServer(files, logger).Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Starting web server", "addr", "http://"+srv.Addr, "files", source)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", "err", err)
		}
	}()

	<-done
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "err", err)
	}
}

// staticFiles serves STATIC_DIR when set, otherwise the embedded landing page.
func staticFiles() (fs.FS, string) {
	if dir := config.GetEnv("STATIC_DIR", ""); dir != "" {
		return os.DirFS(dir), dir
	}
	sub, err := fs.Sub(embedded, "static")
	if err != nil {
		// The embed directive guarantees the directory exists.
		panic(err)
	}
	return sub, "embedded"
}
