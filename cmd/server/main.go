package main

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/parley-chat/parley/internal/server"
)

func main() {
	log := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(log)

	// A missing .env file is fine; the environment wins either way.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn("could not load .env file", "error", err)
	}

	cfg, err := server.NewConfigFromEnv()
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	colors := server.NewIdentityColorAssigner(cfg.MinColorBrightness)
	registry := server.NewConnectionRegistry(colors)
	rooms := server.NewRoomDirectory(log)
	router := server.NewEventRouter(registry, rooms, log)
	hub := server.NewHub(router, *cfg, log)

	go hub.Run()
	log.Info("hub started and ready to manage connections")

	handlers := server.NewHandlers(hub, *cfg, log)
	httpServer := server.CreateServer(cfg.Port, server.SetupRoutes(handlers))

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.StartServer(httpServer, log)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		log.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
		}
	}

	if err := server.ShutdownServer(httpServer, cfg.ShutdownTimeout, log); err != nil {
		log.Error("HTTP shutdown failed", "error", err)
	}
	if err := hub.Shutdown(cfg.ShutdownTimeout); err != nil {
		log.Error("hub shutdown incomplete", "error", err)
	}
}
