package domain

import (
	"fmt"
	"sort"
)

// Normalize computes the derived time-bucket and category columns for every
// transaction and sorts the table by date descending. The derivation only
// depends on the raw columns, so running it again on an already-normalized
// table yields the same result.
func Normalize(txs []Transaction) []Transaction {
	out := make([]Transaction, len(txs))
	copy(out, txs)

	for i := range out {
		d := out[i].Date
		out[i].Month = d.Format("2006-01")
		out[i].Quarter = fmt.Sprintf("%d-T%d", d.Year(), (int(d.Month())-1)/3+1)
		out[i].Year = d.Format("2006")
		out[i].CategoryParent, out[i].CategoryChild = SplitCategory(out[i].Category)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})

	return out
}
