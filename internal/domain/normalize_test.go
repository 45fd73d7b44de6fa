package domain

import (
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("bad test date %q: %v", s, err)
	}
	return d
}

func TestNormalizeTimeBuckets(t *testing.T) {
	tests := []struct {
		date    string
		month   string
		quarter string
		year    string
	}{
		{"2024-03-15", "2024-03", "2024-T1", "2024"},
		{"2024-04-01", "2024-04", "2024-T2", "2024"},
		{"2024-09-30", "2024-09", "2024-T3", "2024"},
		{"2023-12-31", "2023-12", "2023-T4", "2023"},
		{"2024-01-01", "2024-01", "2024-T1", "2024"},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			out := Normalize([]Transaction{{Date: mustDate(t, tt.date)}})
			got := out[0]
			if got.Month != tt.month {
				t.Errorf("Month = %q, want %q", got.Month, tt.month)
			}
			if got.Quarter != tt.quarter {
				t.Errorf("Quarter = %q, want %q", got.Quarter, tt.quarter)
			}
			if got.Year != tt.year {
				t.Errorf("Year = %q, want %q", got.Year, tt.year)
			}
		})
	}
}

func TestSplitCategory(t *testing.T) {
	tests := []struct {
		name     string
		category string
		parent   string
		child    string
	}{
		{"parent and child", "Loisirs > Cinéma", "Loisirs", "Cinéma"},
		{"no separator", "Loisirs", "Loisirs", "Loisirs"},
		{"empty", "", "", ""},
		{"deep nesting keeps last child", "A > B > C", "A", "C"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parent, child := SplitCategory(tt.category)
			if parent != tt.parent || child != tt.child {
				t.Errorf("SplitCategory(%q) = (%q, %q), want (%q, %q)",
					tt.category, parent, child, tt.parent, tt.child)
			}
		})
	}
}

func TestNormalizeSortsDateDescending(t *testing.T) {
	txs := []Transaction{
		{Date: mustDate(t, "2024-01-05"), Name: "old"},
		{Date: mustDate(t, "2024-03-15"), Name: "new"},
		{Date: mustDate(t, "2024-02-10"), Name: "mid"},
	}

	out := Normalize(txs)

	wantOrder := []string{"new", "mid", "old"}
	for i, want := range wantOrder {
		if out[i].Name != want {
			t.Errorf("position %d: got %q, want %q", i, out[i].Name, want)
		}
	}

	// Input must not be reordered
	if txs[0].Name != "old" {
		t.Error("Normalize mutated its input slice")
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	txs := []Transaction{
		{Date: mustDate(t, "2024-03-15"), Category: "Loisirs > Cinéma", Amount: decimal.NewFromInt(-12)},
		{Date: mustDate(t, "2024-01-10"), Category: "Revenus", Amount: decimal.NewFromInt(1000)},
		{Date: mustDate(t, "2024-06-02"), Amount: decimal.NewFromInt(-5)},
	}

	once := Normalize(txs)
	twice := Normalize(once)

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("Normalize not idempotent:\nonce:  %+v\ntwice: %+v", once, twice)
	}
}
