package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/tomz197/whackamole/internal/audio/speaker"
	"github.com/tomz197/whackamole/internal/config"
	"github.com/tomz197/whackamole/internal/game"
	"github.com/tomz197/whackamole/internal/loop"
	"github.com/tomz197/whackamole/internal/store"
	"golang.org/x/term"
)

const defaultDBPath = "whack.db"

func main() {
	// Logs go to stderr so they do not tear the board; redirect with 2>file.
	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "whack"})
	if err := config.LoadDotEnv(); err != nil {
		logger.Warn("failed to load .env", "err", err)
	}
	if lvl, err := log.ParseLevel(config.GetEnv("LOG_LEVEL", "warn")); err == nil {
		logger.SetLevel(lvl)
	}

	kv, err := store.Open(config.GetEnv("WHACK_DB", defaultDBPath))
	if err != nil {
		logger.Warn("best score will not persist", "err", err)
	}
	defer kv.Close()

	settings := game.DefaultSettings()
	settings.Speed = config.GetEnvInt("WHACK_SPEED", settings.Speed)
	if mode, err := game.ParseMode(config.GetEnv("WHACK_MODE", "")); err == nil {
		settings.Mode = mode
	} else {
		logger.Warn("ignoring WHACK_MODE", "err", err)
	}
	settings.Sound = config.GetEnvBool("WHACK_SOUND", settings.Sound)
	settings.Vibrate = config.GetEnvBool("WHACK_VIBRATE", settings.Vibrate)

	player, closeAudio := speaker.OpenLocal(logger)
	defer closeAudio()

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		logger.Fatal("failed to enable raw mode", "err", err)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
	}()

	sess, err := loop.NewSession(os.Stdin, os.Stdout, loop.Options{
		Username: os.Getenv("USER"),
		Settings: settings,
		Store:    kv,
		Audio:    player,
		Logger:   logger,
	})
	if err != nil {
		_ = term.Restore(fd, oldState)
		logger.Fatal("failed to start game", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := sess.Run(ctx); err != nil {
		_ = term.Restore(fd, oldState)
		logger.Error("game error", "err", err)
		os.Exit(1)
	}
}
