package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dulzuras/storefront/internal/auth"
	"github.com/dulzuras/storefront/internal/cart"
	"github.com/dulzuras/storefront/internal/config"
	"github.com/dulzuras/storefront/internal/db"
	"github.com/dulzuras/storefront/internal/notify"
	"github.com/dulzuras/storefront/internal/transport"
)

func main() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	log.Logger = log.With().Str("service", "storefront").Logger()

	log.Info().Msg("Storefront starting...")

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	dbConn, err := db.New(cfg.Postgres)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbConn.Close()

	if err := dbConn.ApplyMigrations(cfg.Postgres, "migrations"); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply migrations")
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()

	var sender notify.Sender = notify.NopSender{}
	if cfg.Email.ServiceID != "" && cfg.Email.PublicKey != "" {
		sender = notify.NewEmailJSSender(cfg.Email.ServiceID, cfg.Email.PublicKey)
	} else {
		log.Warn().Msg("EmailJS credentials missing, notifications disabled")
	}

	router := transport.NewRouter(transport.Deps{
		DB:          dbConn.Pool,
		CartStorage: cart.NewRedisStorage(redisClient, cfg.App.CartKeyPrefix),
		Sender:      sender,
		TemplateID:  cfg.Email.TemplateID,
		Admins:      auth.NewAllowlist(cfg.AdminEmails),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 0, // el stream SSE de pedidos es de larga vida
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.App.Port).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info().Msg("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
	log.Info().Msg("Server stopped")
}
