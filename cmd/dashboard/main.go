package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mlaborde/suivi/internal/config"
	"github.com/mlaborde/suivi/internal/dashboard"
	"github.com/mlaborde/suivi/internal/ingest"
	"github.com/mlaborde/suivi/internal/ledger"
	"github.com/mlaborde/suivi/internal/logger"
	"github.com/mlaborde/suivi/internal/snapshot"
)

func main() {
	log := logger.New()

	port := flag.String("port", "", "HTTP server port (overrides PORT env)")
	flag.Parse()

	cfg := config.Load()
	if err := cfg.ValidateDashboard(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	if *port != "" {
		cfg.Port = *port
	}

	ledgerClient := ledger.New(ledger.NewNotionClient(cfg.NotionToken), cfg.NotionDatabaseID)
	store := snapshot.NewGCSStore(cfg.GCSBucket, cfg.GCSFolder, []byte(cfg.GCSCredentialsJSON))
	loader := ingest.NewService(ledgerClient, store, cfg.CacheTTL)

	sessions := dashboard.NewSessionStore()
	handler := dashboard.NewHandler(loader, cfg.AppPassword, sessions, log)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      dashboard.Router(handler, sessions, log),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute, // forced reloads page through the whole ledger
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Dashboard API listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info().Msg("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Shutdown failed")
	}
}
