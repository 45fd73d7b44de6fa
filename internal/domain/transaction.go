package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CategorySeparator splits a category label into its parent and child parts,
// e.g. "Loisirs > Cinéma".
const CategorySeparator = " > "

// Transaction is one financial movement as recorded in the ledger.
// Amount is signed: negative for expenses, positive for income.
// ExternalID and Account are only set on the banking ingestion path.
type Transaction struct {
	Date        time.Time       `json:"date"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	ExternalID  string          `json:"external_id,omitempty"`
	Account     string          `json:"account,omitempty"`

	// Derived columns, computed once at normalization time.
	Month          string `json:"month"`
	Quarter        string `json:"quarter"`
	Year           string `json:"year"`
	CategoryParent string `json:"category_parent"`
	CategoryChild  string `json:"category_child"`
}

// SplitCategory returns the parent and child parts of a category label.
// A label without a separator yields the whole label for both parts; an
// empty label yields empty parts (uncategorized).
func SplitCategory(category string) (parent, child string) {
	if category == "" {
		return "", ""
	}
	idx := strings.Index(category, CategorySeparator)
	if idx < 0 {
		return category, category
	}
	parent = category[:idx]
	last := strings.LastIndex(category, CategorySeparator)
	child = category[last+len(CategorySeparator):]
	return parent, child
}
