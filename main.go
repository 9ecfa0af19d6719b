package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"snake-landing/auth"
	"snake-landing/config"
	"snake-landing/game"
	"snake-landing/handlers"
	"snake-landing/web"
	"snake-landing/webrtc"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	zerolog.SetGlobalLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
	if cfg.GeneratedSecret {
		log.Warn().Msg("SNAKE_JWT_SECRET not set, session tokens will not survive a restart")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gameManager := game.NewManager(ctx, cfg)
	webrtcManager := webrtc.NewManager(cfg.ICEServers)
	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handlers.NewRouter(gameManager, webrtcManager, issuer, web.Static()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().
			Str("port", cfg.Port).
			Int("grid_size", cfg.GridSize).
			Dur("tick_rate", cfg.TickRate).
			Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP shutdown")
	}
	// Hijacked websocket connections are not closed by Shutdown.
	gameManager.Shutdown()
	webrtcManager.Close()
}
