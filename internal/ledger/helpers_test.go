package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mlaborde/suivi/internal/domain"
)

func mustTime(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func normalizedFixture(t *testing.T) domain.Transaction {
	t.Helper()
	return domain.Transaction{
		Date:        mustTime("2024-03-15"),
		Name:        "Carte 12/03 Supermarché",
		Category:    "Quotidien > Courses",
		Amount:      decimal.NewFromFloat(-42.5),
		Description: "CB  SUPERMARCHE",
		ExternalID:  "tx-123",
		Account:     "PERSO",
	}
}
