package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/mlaborde/suivi/internal/config"
	"github.com/mlaborde/suivi/internal/ingest"
	"github.com/mlaborde/suivi/internal/ledger"
	"github.com/mlaborde/suivi/internal/logger"
	"github.com/mlaborde/suivi/internal/snapshot"
)

// reload pulls the whole ledger and rewrites the remote snapshot, the same
// operation the dashboard's reload button triggers. Meant for cron.
func main() {
	log := logger.New()

	timeout := flag.Duration("timeout", 10*time.Minute, "Overall operation timeout")
	flag.Parse()

	cfg := config.Load()
	if err := cfg.ValidateReload(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	ledgerClient := ledger.New(ledger.NewNotionClient(cfg.NotionToken), cfg.NotionDatabaseID)
	store := snapshot.NewGCSStore(cfg.GCSBucket, cfg.GCSFolder, []byte(cfg.GCSCredentialsJSON))
	svc := ingest.NewService(ledgerClient, store, cfg.CacheTTL)

	table, err := svc.Load(ctx, ingest.ForceReload)
	if err != nil {
		log.Fatal().Err(err).Msg("Reload failed")
	}

	fmt.Printf("Snapshot récrit: %d transactions\n", len(table))
}
