// Package ingest builds the normalized transaction table the dashboard works
// from, cache-first with an explicit force-reload mode.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mlaborde/suivi/internal/domain"
	"github.com/mlaborde/suivi/internal/logger"
	"github.com/mlaborde/suivi/internal/snapshot"
)

// Mode selects where the table comes from.
type Mode int

const (
	// UseCache serves the remote snapshot (or a fresh in-process memo of it).
	UseCache Mode = iota
	// ForceReload pulls the whole ledger, rewrites the snapshot and
	// invalidates the memo.
	ForceReload
)

// ErrNoSnapshot is returned in UseCache mode when no snapshot exists yet.
// There is no automatic fallback to the ledger in the interactive path; the
// caller surfaces the condition and lets the user trigger a reload.
var ErrNoSnapshot = errors.New("ingest: no snapshot available, reload required")

// DefaultTTL bounds how long a memoized table is served without re-reading
// the remote snapshot.
const DefaultTTL = time.Hour

// LedgerReader is the slice of the ledger the reload path needs.
type LedgerReader interface {
	FetchAll(ctx context.Context) ([]domain.Transaction, error)
}

// Service loads the normalized table, memoizing reads for a bounded window.
type Service struct {
	ledger LedgerReader
	store  snapshot.Store
	ttl    time.Duration

	mu        sync.Mutex
	memo      []domain.Transaction
	fetchedAt time.Time
	now       func() time.Time
}

// NewService creates an ingestion service. A non-positive ttl falls back to
// DefaultTTL.
func NewService(ledger LedgerReader, store snapshot.Store, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{
		ledger: ledger,
		store:  store,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Load returns the normalized transaction table per the requested mode.
func (s *Service) Load(ctx context.Context, mode Mode) ([]domain.Transaction, error) {
	if mode == ForceReload {
		return s.reload(ctx)
	}
	return s.cached(ctx)
}

func (s *Service) cached(ctx context.Context) ([]domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.memo != nil && s.now().Sub(s.fetchedAt) < s.ttl {
		return s.memo, nil
	}

	table, err := s.store.Read(ctx)
	if errors.Is(err, snapshot.ErrNotFound) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("Load: read snapshot: %w", err)
	}

	s.memo = table
	s.fetchedAt = s.now()
	return table, nil
}

func (s *Service) reload(ctx context.Context) ([]domain.Transaction, error) {
	log := logger.FromContext(ctx)
	log.Info().Msg("Forced reload: pulling full ledger")

	raw, err := s.ledger.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("Load: fetch ledger: %w", err)
	}

	table := domain.Normalize(raw)

	if err := s.store.Write(ctx, table); err != nil {
		return nil, fmt.Errorf("Load: write snapshot: %w", err)
	}

	log.Info().Int("transaction_count", len(table)).Msg("Snapshot rewritten")

	s.mu.Lock()
	s.memo = table
	s.fetchedAt = s.now()
	s.mu.Unlock()

	return table, nil
}
