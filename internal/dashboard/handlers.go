// Package dashboard is the presentation boundary: a password-gated JSON API
// serving the derived tables the charts and the transaction grid render.
package dashboard

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mlaborde/suivi/internal/domain"
	"github.com/mlaborde/suivi/internal/ingest"
	"github.com/mlaborde/suivi/internal/stats"
)

// Loader is the slice of the ingestion service the handlers need.
type Loader interface {
	Load(ctx context.Context, mode ingest.Mode) ([]domain.Transaction, error)
}

// Handler serves the dashboard API.
type Handler struct {
	loader   Loader
	password string
	sessions *SessionStore
	log      zerolog.Logger
}

// NewHandler creates the dashboard handler set.
func NewHandler(loader Loader, password string, sessions *SessionStore, log zerolog.Logger) *Handler {
	return &Handler{
		loader:   loader,
		password: password,
		sessions: sessions,
		log:      log,
	}
}

// Login handles POST /api/login: plain string comparison against the shared
// password, one token per successful attempt.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.password)) != 1 {
		h.log.Warn().Str("remote_addr", r.RemoteAddr).Msg("Rejected login attempt")
		WriteError(w, http.StatusUnauthorized, "Mot de passe incorrect")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"token": h.sessions.Issue()})
}

// Reload handles POST /api/reload: forced pull from the ledger, snapshot
// rewrite, fresh table back to the client.
func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	table, err := h.loader.Load(r.Context(), ingest.ForceReload)
	if err != nil {
		h.log.Error().Err(err).Msg("Forced reload failed")
		WriteError(w, http.StatusBadGateway, "Rechargement impossible: "+err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transaction_count": len(table),
	})
}

// Totals handles GET /api/totals.
func (h *Handler) Totals(w http.ResponseWriter, r *http.Request) {
	table, ok := h.loadTable(w, r)
	if !ok {
		return
	}
	filter, err := h.parseFilter(r, table, false)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"totals": stats.PeriodTotals(table, filter),
	})
}

// Breakdown handles GET /api/breakdown.
func (h *Handler) Breakdown(w http.ResponseWriter, r *http.Request) {
	table, ok := h.loadTable(w, r)
	if !ok {
		return
	}
	filter, err := h.parseFilter(r, table, true)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"period":    filter.Period,
		"breakdown": stats.CategoryBreakdown(table, filter),
	})
}

// Transactions handles GET /api/transactions: the rows of the selected
// period, category-filtered, for the data grid.
func (h *Handler) Transactions(w http.ResponseWriter, r *http.Request) {
	table, ok := h.loadTable(w, r)
	if !ok {
		return
	}
	filter, err := h.parseFilter(r, table, true)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	rows := make([]domain.Transaction, 0)
	for _, tx := range table {
		if tx.CategoryParent != "" && !filter.Categories[tx.CategoryParent] {
			continue
		}
		if filter.Granularity.Bucket(tx) != filter.Period {
			continue
		}
		rows = append(rows, tx)
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": rows,
		"count":        len(rows),
	})
}

// Filters handles GET /api/filters: everything the sidebar needs to build
// its controls.
func (h *Handler) Filters(w http.ResponseWriter, r *http.Request) {
	table, ok := h.loadTable(w, r)
	if !ok {
		return
	}

	type categoryInfo struct {
		Name            string `json:"name"`
		Color           string `json:"color,omitempty"`
		DefaultSelected bool   `json:"default_selected"`
	}

	excluded := make(map[string]bool, len(DefaultExcluded))
	for _, name := range DefaultExcluded {
		excluded[name] = true
	}

	categories := make([]categoryInfo, 0, len(CategoryColors))
	for _, name := range stats.Parents(table) {
		categories = append(categories, categoryInfo{
			Name:            name,
			Color:           CategoryColors[name],
			DefaultSelected: !excluded[name],
		})
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"periods": map[string][]string{
			string(stats.Monthly):   stats.Periods(table, stats.Monthly),
			string(stats.Quarterly): stats.Periods(table, stats.Quarterly),
			string(stats.Yearly):    stats.Periods(table, stats.Yearly),
		},
		"categories": categories,
	})
}

// loadTable reads the cached table and maps ingestion failures to API errors.
func (h *Handler) loadTable(w http.ResponseWriter, r *http.Request) ([]domain.Transaction, bool) {
	table, err := h.loader.Load(r.Context(), ingest.UseCache)
	if errors.Is(err, ingest.ErrNoSnapshot) {
		WriteError(w, http.StatusNotFound, "Aucune donnée en cache, rechargement requis")
		return nil, false
	}
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load transaction table")
		WriteError(w, http.StatusBadGateway, "Chargement des transactions impossible")
		return nil, false
	}
	return table, true
}

// parseFilter builds the aggregation filter from query parameters.
// needPeriod is set for endpoints scoped to one specific period.
func (h *Handler) parseFilter(r *http.Request, table []domain.Transaction, needPeriod bool) (stats.Filter, error) {
	q := r.URL.Query()
	filter := stats.Filter{
		Granularity: stats.Monthly,
		Group:       stats.ByParent,
		Smooth:      q.Get("smooth") == "true",
	}

	var err error
	if g := q.Get("granularity"); g != "" {
		if filter.Granularity, err = stats.ParseGranularity(g); err != nil {
			return stats.Filter{}, err
		}
	}
	if l := q.Get("group"); l != "" {
		if filter.Group, err = stats.ParseGroupLevel(l); err != nil {
			return stats.Filter{}, err
		}
	}

	filter.Period = q.Get("period")
	if needPeriod && filter.Period == "" {
		// Default to the most recent period present
		periods := stats.Periods(table, filter.Granularity)
		if len(periods) > 0 {
			filter.Period = periods[0]
		}
	}

	filter.Categories = h.selectedCategories(q.Get("categories"), table)
	return filter, nil
}

// selectedCategories parses the comma-separated category list; when absent,
// every parent present in the table is selected except the default-excluded
// ones.
func (h *Handler) selectedCategories(param string, table []domain.Transaction) map[string]bool {
	selected := make(map[string]bool)

	if param != "" {
		for _, name := range strings.Split(param, ",") {
			if name = strings.TrimSpace(name); name != "" {
				selected[name] = true
			}
		}
		return selected
	}

	for _, name := range stats.Parents(table) {
		selected[name] = true
	}
	for _, name := range DefaultExcluded {
		delete(selected, name)
	}
	return selected
}
