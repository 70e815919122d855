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
	"github.com/vasiliy-maslov/storefront/internal/cart"
	"github.com/vasiliy-maslov/storefront/internal/client"
	"github.com/vasiliy-maslov/storefront/internal/config"
	storefrontHttp "github.com/vasiliy-maslov/storefront/internal/handler/http"
	"github.com/vasiliy-maslov/storefront/internal/order"
	"github.com/vasiliy-maslov/storefront/internal/session"
	"github.com/vasiliy-maslov/storefront/internal/storage"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"), ".env")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	setupLogger(cfg.Log, cfg.App.Name)

	log.Info().Msg("Storefront starting...")
	log.Debug().Interface("config_loaded", cfg).Msg("Configuration loaded")

	var st storage.Storage
	if cfg.Storage.Path != "" {
		boltStore, err := storage.OpenBolt(cfg.Storage.Path)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.Storage.Path).Msg("Failed to open session storage")
		}
		defer func() {
			if err := boltStore.Close(); err != nil {
				log.Error().Err(err).Msg("Failed to close session storage")
			}
		}()
		st = boltStore
	} else {
		log.Warn().Msg("SESSION_DB_PATH is empty, session will not survive a restart")
		st = storage.NewMemory()
	}

	apiClient := client.New(cfg.API)
	sessions := session.NewStore(st, apiClient)
	apiClient.UseSession(sessions)

	carts := cart.NewStore()
	orderSvc := order.NewService(apiClient, carts, sessions)
	handler := storefrontHttp.NewStorefrontHandler(sessions, apiClient, apiClient, carts, orderSvc)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      storefrontHttp.NewRouter(handler),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.API.Timeout + 5*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// сессию восстанавливаем в фоне, пока она грузится гард отвечает 503
	go sessions.Restore()

	go func() {
		log.Info().Str("addr", srv.Addr).Str("api", cfg.API.BaseURL).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	log.Info().Msg("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Shutdown failed")
		return
	}
	log.Info().Msg("Storefront stopped gracefully")
}

func setupLogger(cfg config.Log, name string) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	log.Logger = log.With().Str("service", name).Logger()
}
