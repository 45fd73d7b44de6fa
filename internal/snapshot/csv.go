package snapshot

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mlaborde/suivi/internal/domain"
)

const dateLayout = "2006-01-02"

// csvHeader lists the snapshot columns: raw transaction columns first, then
// the derived ones. Derived columns are stored so a cached read returns the
// table exactly as normalization produced it.
var csvHeader = []string{
	"date", "name", "category", "amount", "description", "external_id", "account",
	"month", "quarter", "year", "category_parent", "category_child",
}

// EncodeCSV serializes a normalized transaction table.
func EncodeCSV(txs []domain.Transaction) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("EncodeCSV: write header: %w", err)
	}

	for i, tx := range txs {
		record := []string{
			tx.Date.Format(dateLayout),
			tx.Name,
			tx.Category,
			tx.Amount.String(),
			tx.Description,
			tx.ExternalID,
			tx.Account,
			tx.Month,
			tx.Quarter,
			tx.Year,
			tx.CategoryParent,
			tx.CategoryChild,
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("EncodeCSV: write row %d: %w", i, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("EncodeCSV: %w", err)
	}

	return buf.Bytes(), nil
}

// DecodeCSV parses a snapshot back into a transaction table. Derived columns
// are read verbatim, not recomputed.
func DecodeCSV(data []byte) ([]domain.Transaction, error) {
	r := csv.NewReader(bytes.NewReader(data))

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("DecodeCSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("DecodeCSV: empty file")
	}
	if len(records[0]) != len(csvHeader) {
		return nil, fmt.Errorf("DecodeCSV: expected %d columns, got %d", len(csvHeader), len(records[0]))
	}

	txs := make([]domain.Transaction, 0, len(records)-1)
	for i, rec := range records[1:] {
		date, err := time.Parse(dateLayout, rec[0])
		if err != nil {
			return nil, fmt.Errorf("DecodeCSV: row %d: invalid date %q: %w", i+1, rec[0], err)
		}
		amount, err := decimal.NewFromString(rec[3])
		if err != nil {
			return nil, fmt.Errorf("DecodeCSV: row %d: invalid amount %q: %w", i+1, rec[3], err)
		}

		txs = append(txs, domain.Transaction{
			Date:           date,
			Name:           rec[1],
			Category:       rec[2],
			Amount:         amount,
			Description:    rec[4],
			ExternalID:     rec[5],
			Account:        rec[6],
			Month:          rec[7],
			Quarter:        rec[8],
			Year:           rec[9],
			CategoryParent: rec[10],
			CategoryChild:  rec[11],
		})
	}

	return txs, nil
}
