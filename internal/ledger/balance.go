// Package ledger computes monetary aggregates over a transaction snapshot.
//
// All functions are pure: they take in-memory slices produced by a provider
// and never call one. Empty or filtered-to-nothing input yields zero totals
// and empty collections rather than errors. Results are order-independent
// plain sums, except where a documented stable sort applies.
package ledger

import (
	"sort"
	"time"

	"kopilka/internal/core"
)

// AccountBalance returns the signed balance of one account over the supplied
// transactions. Callers may pass a pre-filtered set; the function never
// fetches the full ledger itself.
//
// The account's currency partitions the sum: transactions in any other
// currency are excluded entirely, no conversion is performed. When the
// account id is unknown the filter falls back to defaultCurrency; the
// aggregator stays error-free by construction, so an unknown id produces a
// balance over default-currency transactions rather than an error.
//
// Transfers contribute -amount on the outgoing leg and +amount on the
// incoming leg. Income adds, expense subtracts.
func AccountBalance(accountID string, txs []core.Transaction, accounts []core.Account, defaultCurrency string) core.Money {
	currency := defaultCurrency
	if acc := core.FindAccount(accounts, accountID); acc != nil && acc.Currency != "" {
		currency = acc.Currency
	}

	var sum core.Money
	for _, tx := range txs {
		if tx.Currency != currency {
			continue
		}
		switch tx.Type {
		case core.Transfer:
			if tx.AccountID == accountID {
				sum -= tx.Amount
			} else if tx.ToID == accountID {
				sum += tx.Amount
			}
		case core.Income:
			if tx.AccountID == accountID {
				sum += tx.Amount
			}
		case core.Expense:
			if tx.AccountID == accountID {
				sum -= tx.Amount
			}
		}
	}
	return sum
}

// TotalBalance returns net worth in the target currency: income minus
// expense over same-currency transactions. Transfers are excluded entirely;
// both legs stay inside the owner's books, so the net effect is zero.
func TotalBalance(txs []core.Transaction, targetCurrency string) core.Money {
	var sum core.Money
	for _, tx := range txs {
		if tx.Currency != targetCurrency || tx.Type == core.Transfer {
			continue
		}
		if tx.Type == core.Income {
			sum += tx.Amount
		} else {
			sum -= tx.Amount
		}
	}
	return sum
}

// CategorySpend pairs a category with its expense total for a period.
type CategorySpend struct {
	Category core.Category `json:"category"`
	Total    core.Money    `json:"total"`
}

// TopCategoriesBySpend ranks expense categories by total spend within
// [periodStart, periodEnd). Categories with no spend are dropped. The sort
// is descending by total and stable: ties keep the order categories were
// supplied in. A limit <= 0 means no truncation.
func TopCategoriesBySpend(txs []core.Transaction, categories []core.Category, periodStart, periodEnd time.Time, limit int) []CategorySpend {
	totals := make(map[string]core.Money)
	for _, tx := range txs {
		if tx.Type != core.Expense {
			continue
		}
		ts, err := time.Parse(time.RFC3339, tx.Date)
		if err != nil {
			continue
		}
		if ts.Before(periodStart) || !ts.Before(periodEnd) {
			continue
		}
		totals[tx.CategoryID] += tx.Amount
	}

	ranked := make([]CategorySpend, 0, len(totals))
	for _, cat := range categories {
		if total := totals[cat.ID]; total > 0 {
			ranked = append(ranked, CategorySpend{Category: cat, Total: total})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Total > ranked[j].Total
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// TypeSumOnDay sums amounts of one transaction type on a single calendar
// day. The day argument is a YYYY-MM-DD key under the UTC truncation policy
// of DayKey.
func TypeSumOnDay(txs []core.Transaction, typ core.TransactionType, day string) core.Money {
	var sum core.Money
	for _, tx := range txs {
		if tx.Type == typ && DayKey(tx.Date) == day {
			sum += tx.Amount
		}
	}
	return sum
}
