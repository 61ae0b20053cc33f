package ledger

import (
	"sort"
	"time"

	"kopilka/internal/core"
)

const (
	PeriodAll    Period = "all"
	PeriodDay    Period = "day"
	PeriodWeek   Period = "week"
	PeriodMonth  Period = "month"
	PeriodCustom Period = "custom"
)

type (
	// Period is a named date window for slicing transactions.
	Period string

	// DateRange bounds a custom period. Both ends are inclusive.
	DateRange struct {
		Start time.Time
		End   time.Time
	}

	// Filter selects transactions for list display. All set fields must
	// match (conjunctive); zero values pass everything through.
	Filter struct {
		Type      string // "" or "all" matches every type
		AccountID string // transfers match on either leg
		Currency  string
		Period    Period
		Custom    DateRange // consulted only when Period is PeriodCustom
	}
)

// rolling window for PeriodWeek, not calendar-aligned
const week = 7 * 24 * time.Hour

// MatchesPeriod reports whether the transaction's date falls inside the
// period relative to now.
//
// Day and month compare UTC calendar buckets, the same truncation policy
// DayKey uses, so a list filtered "за день" agrees with its day grouping.
// Week is a rolling now-minus-7×24h window. Custom requires both bounds:
// a half-set range matches nothing. Unrecognized periods pass everything,
// matching the permissive default of the filter UI this feeds.
func MatchesPeriod(tx core.Transaction, period Period, custom DateRange, now time.Time) bool {
	switch period {
	case PeriodDay, PeriodWeek, PeriodMonth, PeriodCustom:
	default:
		return true
	}

	ts, err := time.Parse(time.RFC3339, tx.Date)
	if err != nil {
		return false
	}

	switch period {
	case PeriodCustom:
		if custom.Start.IsZero() || custom.End.IsZero() {
			return false
		}
		return !ts.Before(custom.Start) && !ts.After(custom.End)
	case PeriodDay:
		return DayKey(tx.Date) == now.UTC().Format("2006-01-02")
	case PeriodWeek:
		return now.Sub(ts) <= week
	default: // PeriodMonth
		u, n := ts.UTC(), now.UTC()
		return u.Month() == n.Month() && u.Year() == n.Year()
	}
}

// Match reports whether the transaction passes every set filter field.
func (f Filter) Match(tx core.Transaction, now time.Time) bool {
	if f.Type != "" && f.Type != "all" && string(tx.Type) != f.Type {
		return false
	}
	if f.AccountID != "" && tx.AccountID != f.AccountID && tx.ToID != f.AccountID {
		return false
	}
	if f.Currency != "" && tx.Currency != f.Currency {
		return false
	}
	return MatchesPeriod(tx, f.Period, f.Custom, now)
}

// FilterTransactions returns the transactions passing the filter, in input
// order. The zero Filter is the identity: it returns every transaction.
func FilterTransactions(txs []core.Transaction, f Filter, now time.Time) []core.Transaction {
	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if f.Match(tx, now) {
			out = append(out, tx)
		}
	}
	return out
}

// DayKey truncates an RFC 3339 timestamp to its date portion (YYYY-MM-DD).
//
// Truncation is on the string, i.e. the timestamp's own (typically UTC)
// calendar date, never a localized day boundary. The two disagree near
// midnight in non-UTC zones; this package picks string truncation everywhere
// so grouping and day sums always agree with each other.
func DayKey(date string) string {
	if len(date) < 10 {
		return date
	}
	return date[:10]
}

// GroupByDay buckets transactions by DayKey, preserving input order inside
// each bucket. Ordering of the keys is the caller's concern; see
// SortedDayKeys for the usual history view.
func GroupByDay(txs []core.Transaction) map[string][]core.Transaction {
	groups := make(map[string][]core.Transaction)
	for _, tx := range txs {
		key := DayKey(tx.Date)
		groups[key] = append(groups[key], tx)
	}
	return groups
}

// SortedDayKeys returns the group keys newest first.
func SortedDayKeys(groups map[string][]core.Transaction) []string {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	return keys
}

// DayTotal is the net of the displayed transactions in one day bucket.
// Income adds and expense subtracts. Transfers contribute zero: a transfer
// either nets out inside the bucket or carries no perspective to sign it.
func DayTotal(txs []core.Transaction) core.Money {
	var sum core.Money
	for _, tx := range txs {
		switch tx.Type {
		case core.Income:
			sum += tx.Amount
		case core.Expense:
			sum -= tx.Amount
		}
	}
	return sum
}
