// Package stats reshapes the flat transaction table into the two derived
// tables the dashboard charts: per-period income/expense/savings totals and
// per-category spending breakdowns, with optional monthly smoothing.
package stats

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mlaborde/suivi/internal/domain"
)

// IncomeCategory is the parent category holding income rows. Everything else
// counts as spending.
const IncomeCategory = "Revenus"

// Granularity is the time bucket totals are grouped by.
type Granularity string

const (
	Monthly   Granularity = "month"
	Quarterly Granularity = "quarter"
	Yearly    Granularity = "year"
)

// ParseGranularity validates a user-supplied granularity value.
func ParseGranularity(s string) (Granularity, error) {
	switch Granularity(s) {
	case Monthly, Quarterly, Yearly:
		return Granularity(s), nil
	}
	return "", fmt.Errorf("invalid granularity %q", s)
}

// Divisor is the number of months in one period, used for smoothing.
func (g Granularity) Divisor() int64 {
	switch g {
	case Quarterly:
		return 3
	case Yearly:
		return 12
	default:
		return 1
	}
}

// Bucket returns the transaction's period key for this granularity.
func (g Granularity) Bucket(tx domain.Transaction) string {
	switch g {
	case Quarterly:
		return tx.Quarter
	case Yearly:
		return tx.Year
	default:
		return tx.Month
	}
}

// GroupLevel selects which category column a breakdown groups by.
type GroupLevel string

const (
	ByParent GroupLevel = "parent"
	ByChild  GroupLevel = "child"
)

// ParseGroupLevel validates a user-supplied group level value.
func ParseGroupLevel(s string) (GroupLevel, error) {
	switch GroupLevel(s) {
	case ByParent, ByChild:
		return GroupLevel(s), nil
	}
	return "", fmt.Errorf("invalid group level %q", s)
}

// Key returns the transaction's category label at this level.
func (l GroupLevel) Key(tx domain.Transaction) string {
	if l == ByChild {
		return tx.CategoryChild
	}
	return tx.CategoryParent
}

// Filter is the set of user-chosen knobs an aggregation runs under.
type Filter struct {
	// Categories holds the selected top-level categories. Uncategorized
	// rows always pass the filter.
	Categories  map[string]bool
	Granularity Granularity
	// Period is the one specific period value the breakdown is scoped to,
	// e.g. "2024-03", "2024-T1" or "2024".
	Period string
	Group  GroupLevel
	// Smooth divides period aggregates by the months-per-period divisor.
	Smooth bool
}

func (f Filter) divisor() decimal.Decimal {
	if f.Smooth {
		return decimal.NewFromInt(f.Granularity.Divisor())
	}
	return decimal.NewFromInt(1)
}

// keep reports whether a row passes the category row filter.
func (f Filter) keep(tx domain.Transaction) bool {
	return tx.CategoryParent == "" || f.Categories[tx.CategoryParent]
}

// PeriodTotal is one row of the totals table.
type PeriodTotal struct {
	Period   string          `json:"period"`
	Expenses decimal.Decimal `json:"expenses"`
	Income   decimal.Decimal `json:"income"`
	Savings  decimal.Decimal `json:"savings"`
}

// PeriodTotals computes per-period totals over the filtered table. Expenses
// stay a raw signed sum (the bar chart shows net flow); income is the Revenus
// sum; savings is the sum of everything. Periods with no matching rows are
// simply absent. Rows come back ordered by period key ascending.
func PeriodTotals(txs []domain.Transaction, f Filter) []PeriodTotal {
	div := f.divisor()
	byPeriod := make(map[string]*PeriodTotal)

	for _, tx := range txs {
		if !f.keep(tx) {
			continue
		}
		period := f.Granularity.Bucket(tx)
		row, ok := byPeriod[period]
		if !ok {
			row = &PeriodTotal{Period: period}
			byPeriod[period] = row
		}
		if tx.CategoryParent == IncomeCategory {
			row.Income = row.Income.Add(tx.Amount)
		} else {
			row.Expenses = row.Expenses.Add(tx.Amount)
		}
		row.Savings = row.Savings.Add(tx.Amount)
	}

	totals := make([]PeriodTotal, 0, len(byPeriod))
	for _, row := range byPeriod {
		row.Expenses = row.Expenses.Div(div)
		row.Income = row.Income.Div(div)
		row.Savings = row.Savings.Div(div)
		totals = append(totals, *row)
	}

	sort.Slice(totals, func(i, j int) bool { return totals[i].Period < totals[j].Period })
	return totals
}

// CategoryAmount is one slice of the breakdown chart. Amount is the absolute
// smoothed spend of the group; Detail is a per-child listing only populated
// when grouping by parent, for hover display.
type CategoryAmount struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Detail   string          `json:"detail,omitempty"`
}

// CategoryBreakdown computes the spending-only breakdown for the one selected
// period. Income rows are excluded up front; groups whose signed sum is
// non-negative are dropped rather than reported as zero — the chart shows
// where money left, not where it did not. Results are ordered by amount
// descending for stable chart slices.
func CategoryBreakdown(txs []domain.Transaction, f Filter) []CategoryAmount {
	div := f.divisor()

	sums := make(map[string]decimal.Decimal)
	childSums := make(map[string]map[string]decimal.Decimal)

	for _, tx := range txs {
		if !f.keep(tx) {
			continue
		}
		if tx.CategoryParent == IncomeCategory {
			continue
		}
		if f.Granularity.Bucket(tx) != f.Period {
			continue
		}

		key := f.Group.Key(tx)
		sums[key] = sums[key].Add(tx.Amount)

		if f.Group == ByParent {
			children := childSums[key]
			if children == nil {
				children = make(map[string]decimal.Decimal)
				childSums[key] = children
			}
			children[tx.CategoryChild] = children[tx.CategoryChild].Add(tx.Amount)
		}
	}

	breakdown := make([]CategoryAmount, 0, len(sums))
	for key, sum := range sums {
		if sum.Sign() >= 0 {
			continue
		}
		row := CategoryAmount{
			Category: key,
			Amount:   sum.Abs().Div(div),
		}
		if f.Group == ByParent {
			row.Detail = formatChildDetail(childSums[key], div)
		}
		breakdown = append(breakdown, row)
	}

	sort.Slice(breakdown, func(i, j int) bool {
		if breakdown[i].Amount.Equal(breakdown[j].Amount) {
			return breakdown[i].Category < breakdown[j].Category
		}
		return breakdown[i].Amount.GreaterThan(breakdown[j].Amount)
	})
	return breakdown
}

// formatChildDetail renders one "child: amount" line per spending child,
// largest first. Children whose sum is non-negative are omitted, matching the
// group-level sign filter.
func formatChildDetail(children map[string]decimal.Decimal, div decimal.Decimal) string {
	type line struct {
		name   string
		amount decimal.Decimal
	}

	lines := make([]line, 0, len(children))
	for name, sum := range children {
		if sum.Sign() >= 0 {
			continue
		}
		lines = append(lines, line{name: name, amount: sum.Abs().Div(div)})
	}

	sort.Slice(lines, func(i, j int) bool {
		if lines[i].amount.Equal(lines[j].amount) {
			return lines[i].name < lines[j].name
		}
		return lines[i].amount.GreaterThan(lines[j].amount)
	})

	parts := make([]string, len(lines))
	for i, l := range lines {
		parts[i] = fmt.Sprintf("%s: %s", l.name, l.amount.StringFixed(2))
	}
	return strings.Join(parts, "\n")
}

// Parents lists the distinct top-level categories present in the table,
// sorted, omitting the uncategorized marker.
func Parents(txs []domain.Transaction) []string {
	seen := make(map[string]bool)
	var parents []string
	for _, tx := range txs {
		if tx.CategoryParent == "" || seen[tx.CategoryParent] {
			continue
		}
		seen[tx.CategoryParent] = true
		parents = append(parents, tx.CategoryParent)
	}
	sort.Strings(parents)
	return parents
}

// Periods lists the distinct period values present in the table for a
// granularity, most recent first, for the period selector.
func Periods(txs []domain.Transaction, g Granularity) []string {
	seen := make(map[string]bool)
	var periods []string
	for _, tx := range txs {
		p := g.Bucket(tx)
		if !seen[p] {
			seen[p] = true
			periods = append(periods, p)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(periods)))
	return periods
}
