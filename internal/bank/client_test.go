package bank

import (
	"testing"

	"github.com/plaid/plaid-go/v41/plaid"
)

func plaidTx(id, name, date string, amount float64) plaid.Transaction {
	return plaid.Transaction{
		TransactionId: id,
		Name:          name,
		Date:          date,
		Amount:        amount,
	}
}

func TestMapPlaidTransactionFlipsSign(t *testing.T) {
	// Plaid convention: positive = money leaving the account
	raw := plaidTx("tx-1", "SUPERMARCHE", "2024-03-15", 42.5)

	tx, err := mapPlaidTransaction(raw, "PERSO")
	if err != nil {
		t.Fatalf("mapPlaidTransaction: %v", err)
	}

	if tx.Amount.String() != "-42.5" {
		t.Errorf("Amount = %s, want -42.5", tx.Amount)
	}
	if tx.ExternalID != "tx-1" || tx.Account != "PERSO" {
		t.Errorf("identity fields not mapped: %+v", tx)
	}
	if tx.Date.Format("2006-01-02") != "2024-03-15" {
		t.Errorf("Date = %v, want 2024-03-15", tx.Date)
	}
}

func TestMapPlaidTransactionRejectsBadDate(t *testing.T) {
	raw := plaidTx("tx-1", "x", "15/03/2024", 1)
	if _, err := mapPlaidTransaction(raw, "PERSO"); err == nil {
		t.Fatal("expected error for unparseable date")
	}
}

func TestCategoryLabel(t *testing.T) {
	tests := []struct {
		name     string
		primary  string
		detailed string
		want     string
	}{
		{"primary and detailed", "FOOD_AND_DRINK", "FOOD_AND_DRINK_COFFEE", "FOOD_AND_DRINK > FOOD_AND_DRINK_COFFEE"},
		{"primary only", "TRANSPORTATION", "", "TRANSPORTATION"},
		{"detailed repeats primary", "INCOME", "INCOME", "INCOME"},
		{"uncategorized", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := plaidTx("tx-1", "x", "2024-03-15", 1)
			if tt.primary != "" {
				raw.SetPersonalFinanceCategory(plaid.PersonalFinanceCategory{
					Primary:  tt.primary,
					Detailed: tt.detailed,
				})
			}
			if got := categoryLabel(raw); got != tt.want {
				t.Errorf("categoryLabel = %q, want %q", got, tt.want)
			}
		})
	}
}
