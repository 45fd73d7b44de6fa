// Package ledger talks to the authoritative transactions database hosted in
// Notion: paginated reads for the dashboard reload path and single-record
// writes for the banking ingestion path.
package ledger

import (
	"context"
	"fmt"

	"github.com/jomei/notionapi"

	"github.com/mlaborde/suivi/internal/domain"
	"github.com/mlaborde/suivi/internal/logger"
)

const pageSize = 100

// Ledger reads and writes transaction records in one Notion database.
type Ledger struct {
	svc        NotionService
	databaseID string
}

// New creates a Ledger over the given Notion service and database.
func New(svc NotionService, databaseID string) *Ledger {
	return &Ledger{svc: svc, databaseID: databaseID}
}

// FetchAll pages through the whole database and returns every transaction,
// unnormalized. Pages that fail to map (missing date or amount) abort the
// fetch; there is no partial result.
func (l *Ledger) FetchAll(ctx context.Context) ([]domain.Transaction, error) {
	log := logger.FromContext(ctx)

	var txs []domain.Transaction
	pages, err := l.queryAllPages(ctx)
	if err != nil {
		return nil, fmt.Errorf("FetchAll: %w", err)
	}

	for _, page := range pages {
		tx, err := pageToTransaction(page)
		if err != nil {
			return nil, fmt.Errorf("FetchAll: %w", err)
		}
		txs = append(txs, tx)
	}

	log.Info().Int("transaction_count", len(txs)).Msg("Fetched transactions from Notion")
	return txs, nil
}

// ExistingIDs returns the set of external transaction identifiers already
// recorded in the database. Pages without an identifier are skipped.
func (l *Ledger) ExistingIDs(ctx context.Context) (map[string]struct{}, error) {
	pages, err := l.queryAllPages(ctx)
	if err != nil {
		return nil, fmt.Errorf("ExistingIDs: %w", err)
	}

	ids := make(map[string]struct{})
	for _, page := range pages {
		if id := extractExternalID(page); id != "" {
			ids[id] = struct{}{}
		}
	}

	return ids, nil
}

// Add creates one transaction record in the database.
func (l *Ledger) Add(ctx context.Context, tx domain.Transaction) error {
	if _, err := l.svc.CreatePage(ctx, l.databaseID, transactionToProperties(tx)); err != nil {
		return fmt.Errorf("Add: %w", err)
	}
	return nil
}

// queryAllPages queries all pages from the database, handling pagination.
func (l *Ledger) queryAllPages(ctx context.Context) ([]notionapi.Page, error) {
	var allPages []notionapi.Page
	var cursor notionapi.Cursor

	for {
		req := &notionapi.DatabaseQueryRequest{
			PageSize: pageSize,
		}

		// Only set StartCursor if we have a cursor value
		if cursor != "" {
			req.StartCursor = cursor
		}

		resp, err := l.svc.QueryDatabase(ctx, l.databaseID, req)
		if err != nil {
			return nil, fmt.Errorf("queryAllPages: %w", err)
		}

		allPages = append(allPages, resp.Results...)

		if !resp.HasMore {
			break
		}
		cursor = resp.NextCursor
	}

	return allPages, nil
}
