package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mlaborde/suivi/internal/domain"
	"github.com/mlaborde/suivi/internal/ingest"
	"github.com/mlaborde/suivi/internal/logger"
)

type mockLoader struct {
	table   []domain.Transaction
	err     error
	reloads int
}

func (m *mockLoader) Load(ctx context.Context, mode ingest.Mode) ([]domain.Transaction, error) {
	if mode == ingest.ForceReload {
		m.reloads++
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.table, nil
}

func fixtureTable(t *testing.T) []domain.Transaction {
	t.Helper()
	mk := func(date, name, category string, amount int64) domain.Transaction {
		d, err := time.Parse("2006-01-02", date)
		if err != nil {
			t.Fatal(err)
		}
		return domain.Transaction{Date: d, Name: name, Category: category, Amount: decimal.NewFromInt(amount)}
	}
	return domain.Normalize([]domain.Transaction{
		mk("2024-01-05", "Courses", "Quotidien", -20),
		mk("2024-01-20", "Courses", "Quotidien", -10),
		mk("2024-01-10", "Salaire", "Revenus", 1000),
		mk("2024-01-15", "Impôts", "Taxes", -500),
	})
}

func testServer(t *testing.T, loader Loader) (http.Handler, *SessionStore) {
	t.Helper()
	log := logger.NewWithWriter(&strings.Builder{})
	sessions := NewSessionStore()
	h := NewHandler(loader, "sesame", sessions, log)
	return Router(h, sessions, log), sessions
}

func authedGet(t *testing.T, srv http.Handler, sessions *SessionStore, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", "Bearer "+sessions.Issue())
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func TestLoginIssuesToken(t *testing.T) {
	srv, _ := testServer(t, &mockLoader{})

	body := strings.NewReader(`{"password":"sesame"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/login", body)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["token"] == "" {
		t.Error("expected a session token")
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	srv, _ := testServer(t, &mockLoader{})

	body := strings.NewReader(`{"password":"wrong"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/login", body)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestDataRoutesRequireSession(t *testing.T) {
	srv, _ := testServer(t, &mockLoader{table: fixtureTable(t)})

	for _, path := range []string{"/api/totals", "/api/breakdown", "/api/transactions", "/api/filters"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		srv.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s without token: status = %d, want 401", path, w.Code)
		}
	}
}

func TestPreflightAnsweredBeforeSessionGate(t *testing.T) {
	srv, _ := testServer(t, &mockLoader{table: fixtureTable(t)})

	req := httptest.NewRequest(http.MethodOptions, "/api/totals", nil)
	req.Header.Set("Origin", "https://dashboard.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	// A preflight carries no token; it must not reach the session gate
	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d, want 204", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
	if allowed := w.Header().Get("Access-Control-Allow-Headers"); !strings.Contains(allowed, "Authorization") {
		t.Errorf("Authorization missing from allowed headers: %q", allowed)
	}
}

func TestCORSHeadersOnDataResponses(t *testing.T) {
	srv, sessions := testServer(t, &mockLoader{table: fixtureTable(t)})

	w := authedGet(t, srv, sessions, "/api/totals")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}

func TestTotalsEndpoint(t *testing.T) {
	srv, sessions := testServer(t, &mockLoader{table: fixtureTable(t)})

	w := authedGet(t, srv, sessions, "/api/totals?granularity=month")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body)
	}

	var resp struct {
		Totals []struct {
			Period   string          `json:"period"`
			Expenses decimal.Decimal `json:"expenses"`
			Income   decimal.Decimal `json:"income"`
			Savings  decimal.Decimal `json:"savings"`
		} `json:"totals"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if len(resp.Totals) != 1 {
		t.Fatalf("expected 1 period, got %d", len(resp.Totals))
	}
	got := resp.Totals[0]
	// Taxes is excluded by default, so expenses are -30, not -530
	if got.Period != "2024-01" || got.Expenses.String() != "-30" || got.Income.String() != "1000" || got.Savings.String() != "970" {
		t.Errorf("unexpected totals row: %+v", got)
	}
}

func TestTotalsExplicitCategorySelection(t *testing.T) {
	srv, sessions := testServer(t, &mockLoader{table: fixtureTable(t)})

	w := authedGet(t, srv, sessions, "/api/totals?categories=Taxes")
	var resp struct {
		Totals []struct {
			Expenses decimal.Decimal `json:"expenses"`
		} `json:"totals"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Totals) != 1 || resp.Totals[0].Expenses.String() != "-500" {
		t.Errorf("unexpected totals: %+v", resp.Totals)
	}
}

func TestBreakdownDefaultsToMostRecentPeriod(t *testing.T) {
	srv, sessions := testServer(t, &mockLoader{table: fixtureTable(t)})

	w := authedGet(t, srv, sessions, "/api/breakdown")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body)
	}

	var resp struct {
		Period    string `json:"period"`
		Breakdown []struct {
			Category string          `json:"category"`
			Amount   decimal.Decimal `json:"amount"`
		} `json:"breakdown"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Period != "2024-01" {
		t.Errorf("Period = %q, want 2024-01", resp.Period)
	}
	if len(resp.Breakdown) != 1 || resp.Breakdown[0].Category != "Quotidien" || resp.Breakdown[0].Amount.String() != "30" {
		t.Errorf("unexpected breakdown: %+v", resp.Breakdown)
	}
}

func TestNoSnapshotMapsTo404(t *testing.T) {
	srv, sessions := testServer(t, &mockLoader{err: ingest.ErrNoSnapshot})

	w := authedGet(t, srv, sessions, "/api/totals")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestReloadEndpoint(t *testing.T) {
	loader := &mockLoader{table: fixtureTable(t)}
	srv, sessions := testServer(t, loader)

	req := httptest.NewRequest(http.MethodPost, "/api/reload", nil)
	req.Header.Set("Authorization", "Bearer "+sessions.Issue())
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body)
	}
	if loader.reloads != 1 {
		t.Errorf("expected 1 forced reload, got %d", loader.reloads)
	}
}

func TestFiltersEndpoint(t *testing.T) {
	srv, sessions := testServer(t, &mockLoader{table: fixtureTable(t)})

	w := authedGet(t, srv, sessions, "/api/filters")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body)
	}

	var resp struct {
		Periods    map[string][]string `json:"periods"`
		Categories []struct {
			Name            string `json:"name"`
			DefaultSelected bool   `json:"default_selected"`
		} `json:"categories"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if months := resp.Periods["month"]; len(months) != 1 || months[0] != "2024-01" {
		t.Errorf("months = %v, want [2024-01]", months)
	}
	byName := make(map[string]bool)
	for _, c := range resp.Categories {
		byName[c.Name] = c.DefaultSelected
	}
	if selected, ok := byName["Taxes"]; !ok || selected {
		t.Errorf("Taxes should be present and excluded by default, got %v", byName)
	}
	if selected, ok := byName["Quotidien"]; !ok || !selected {
		t.Errorf("Quotidien should be selected by default, got %v", byName)
	}
}

func TestSessionExpiry(t *testing.T) {
	sessions := NewSessionStore()
	clock := time.Now()
	sessions.now = func() time.Time { return clock }

	token := sessions.Issue()
	if !sessions.Valid(token) {
		t.Fatal("fresh token should be valid")
	}

	clock = clock.Add(SessionTTL + time.Minute)
	if sessions.Valid(token) {
		t.Error("expired token should be rejected")
	}
}
