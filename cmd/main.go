package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Narvasiddhartha/AnonChat/config"
	"github.com/Narvasiddhartha/AnonChat/internal/engine"
	"github.com/Narvasiddhartha/AnonChat/internal/routers"
	"github.com/Narvasiddhartha/AnonChat/internal/websocket"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if err := config.LoadConfig(); err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	eng := engine.NewEngine()
	log.Info().Msg("Room engine initialized")

	wsHandler := websocket.NewHandler(eng)
	wsHandler.MaxConnections = config.Conf.Websocket.MaxConnections
	wsHandler.ConnectionsPerIP = config.Conf.Websocket.ConnectionsPerIP
	log.Info().Msg("Websocket handler initialized")

	r := routers.NewRouter(eng, wsHandler, config.Conf.Cors.AllowedOrigins)

	server := &http.Server{
		Addr:    config.Conf.App.Port,
		Handler: r,
		// No WriteTimeout: it would cut long-lived websocket sessions.
		ReadHeaderTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Msgf("Starting server on http://localhost%s", config.Conf.App.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			panic(fmt.Sprintf("ListenAndServe failed: %v", err))
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutdown initiated...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	// Rooms are in-memory only, nothing to flush; dropping the process
	// drops every room by design.
	if err := server.Shutdown(shutdownCtx); err != nil {
		fmt.Printf("Graceful shutdown failed: %v\n", err)
	} else {
		fmt.Println("Server exited gracefully.")
	}
}
