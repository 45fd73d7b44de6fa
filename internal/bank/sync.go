// Package bank implements the non-interactive ingestion path: pull recent
// transactions from the banking aggregator for each configured account and
// append the ones the ledger has not seen yet. The remote snapshot is not
// touched here; a later forced reload picks the new records up.
package bank

import (
	"context"
	"fmt"

	"github.com/mlaborde/suivi/internal/domain"
	"github.com/mlaborde/suivi/internal/logger"
)

// DefaultFetchCount is how many recent transactions each account pull asks for.
const DefaultFetchCount = 15

// Ledger is the slice of the ledger the sync path needs.
type Ledger interface {
	ExistingIDs(ctx context.Context) (map[string]struct{}, error)
	Add(ctx context.Context, tx domain.Transaction) error
}

// Result reports what one sync run did.
type Result struct {
	Fetched int // records pulled from the aggregator
	New     int // records not already in the ledger
	Created int // records actually written
}

// Sync pulls recent transactions for every account, filters out those whose
// external identifier is already recorded, and appends the remainder one
// record at a time. Individual write failures are logged and skipped; the
// aggregate count is reported either way. A fetch failure for one account
// aborts the run before anything is written.
func Sync(ctx context.Context, fetcher Fetcher, ledger Ledger, accounts []Account, count int) (Result, error) {
	log := logger.FromContext(ctx)
	if count <= 0 {
		count = DefaultFetchCount
	}

	var fetched []domain.Transaction
	for _, account := range accounts {
		txs, err := fetcher.RecentTransactions(ctx, account, count)
		if err != nil {
			return Result{}, fmt.Errorf("Sync: %w", err)
		}
		log.Info().
			Str("account", account.Name).
			Int("count", len(txs)).
			Msg("Fetched recent transactions")
		fetched = append(fetched, txs...)
	}

	existing, err := ledger.ExistingIDs(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("Sync: %w", err)
	}
	log.Info().Int("existing", len(existing)).Msg("Loaded existing transaction ids")

	newTxs := Dedup(fetched, existing)
	log.Info().Int("new", len(newTxs)).Msg("New transactions to append")

	result := Result{Fetched: len(fetched), New: len(newTxs)}
	for _, tx := range newTxs {
		if err := ledger.Add(ctx, tx); err != nil {
			log.Warn().
				Err(err).
				Str("external_id", tx.ExternalID).
				Str("account", tx.Account).
				Msg("Failed to append transaction")
			// Continue processing other transactions
			continue
		}
		result.Created++
	}

	log.Info().
		Int("fetched", result.Fetched).
		Int("new", result.New).
		Int("created", result.Created).
		Msg("Bank sync completed")

	return result, nil
}

// Dedup returns the records whose external identifier is not in existing,
// preserving input order.
func Dedup(txs []domain.Transaction, existing map[string]struct{}) []domain.Transaction {
	var fresh []domain.Transaction
	for _, tx := range txs {
		if _, ok := existing[tx.ExternalID]; ok {
			continue
		}
		fresh = append(fresh, tx)
	}
	return fresh
}
