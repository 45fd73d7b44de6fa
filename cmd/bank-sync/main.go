package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/mlaborde/suivi/internal/bank"
	"github.com/mlaborde/suivi/internal/config"
	"github.com/mlaborde/suivi/internal/ledger"
	"github.com/mlaborde/suivi/internal/logger"
)

func main() {
	// Initialize structured logger
	log := logger.New()

	// Parse CLI flags
	count := flag.Int("count", 0, "Recent transactions to fetch per account (overrides BANK_FETCH_COUNT)")
	flag.Parse()

	cfg := config.Load()
	if err := cfg.ValidateBankSync(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	if *count > 0 {
		cfg.BankFetchCount = *count
	}

	// Create context with timeout so the CLI doesn't hang
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	// Add logger to context
	ctx = logger.WithContext(ctx, log)

	log.Info().
		Int("accounts", len(cfg.BankAccounts)).
		Int("fetch_count", cfg.BankFetchCount).
		Msg("Starting bank sync")

	plaidClient, err := bank.NewPlaidClient(cfg.PlaidClientID, cfg.PlaidSecret, cfg.PlaidEnv)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Plaid client")
	}

	fetcher := bank.NewPlaidFetcher(plaidClient)
	ledgerClient := ledger.New(ledger.NewNotionClient(cfg.NotionToken), cfg.NotionDatabaseID)

	result, err := bank.Sync(ctx, fetcher, ledgerClient, cfg.BankAccounts, cfg.BankFetchCount)
	if err != nil {
		log.Fatal().Err(err).Msg("Bank sync failed")
	}

	fmt.Printf("%d/%d transactions ajoutées\n", result.Created, result.New)
}
