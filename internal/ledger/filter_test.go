package ledger

import (
	"testing"
	"time"

	"kopilka/internal/core"
)

func TestMatchesPeriod(t *testing.T) {
	now := time.Date(2026, 8, 28, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		date   string
		period Period
		custom DateRange
		want   bool
	}{
		{name: "all passes everything", date: "1999-01-01T00:00:00Z", period: PeriodAll, want: true},
		{name: "unknown period passes", date: "1999-01-01T00:00:00Z", period: "quarter", want: true},
		{name: "day matches same UTC date", date: "2026-08-28T01:00:00Z", period: PeriodDay, want: true},
		{name: "day rejects yesterday", date: "2026-08-27T23:59:59Z", period: PeriodDay, want: false},
		{name: "week includes 7 days back", date: "2026-08-21T15:00:00Z", period: PeriodWeek, want: true},
		{name: "week rejects 7.5 days back", date: "2026-08-21T03:00:00Z", period: PeriodWeek, want: false},
		{name: "month matches same month", date: "2026-08-01T00:00:00Z", period: PeriodMonth, want: true},
		{name: "month rejects July", date: "2026-07-31T23:59:59Z", period: PeriodMonth, want: false},
		{name: "month rejects same month last year", date: "2025-08-15T00:00:00Z", period: PeriodMonth, want: false},
		{
			name:   "custom inclusive bounds",
			date:   "2026-08-10T00:00:00Z",
			period: PeriodCustom,
			custom: DateRange{
				Start: time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC),
				End:   time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC),
			},
			want: true,
		},
		{
			name:   "custom rejects outside",
			date:   "2026-08-21T00:00:00Z",
			period: PeriodCustom,
			custom: DateRange{
				Start: time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC),
				End:   time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC),
			},
			want: false,
		},
		{
			name:   "custom with half-set range matches nothing",
			date:   "2026-08-15T00:00:00Z",
			period: PeriodCustom,
			custom: DateRange{Start: time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)},
			want:   false,
		},
		{name: "unparseable date fails closed", date: "not-a-date", period: PeriodDay, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transaction := core.Transaction{Date: tt.date}
			if got := MatchesPeriod(transaction, tt.period, tt.custom, now); got != tt.want {
				t.Errorf("MatchesPeriod(%q, %s) = %v, want %v", tt.date, tt.period, got, tt.want)
			}
		})
	}
}

func TestFilterTransactions(t *testing.T) {
	now := time.Date(2026, 8, 28, 15, 0, 0, 0, time.UTC)
	txs := []core.Transaction{
		tx(core.Income, 1000, "RUB", "wallet", "", "", "2026-08-28T10:00:00Z"),
		tx(core.Expense, 2000, "RUB", "wallet", "", "", "2026-08-27T10:00:00Z"),
		tx(core.Expense, 3000, "USD", "usd", "", "", "2026-08-28T10:00:00Z"),
		tx(core.Transfer, 4000, "RUB", "wallet", "card", "", "2026-08-28T11:00:00Z"),
	}

	t.Run("zero filter is identity", func(t *testing.T) {
		got := FilterTransactions(txs, Filter{}, now)
		if len(got) != len(txs) {
			t.Errorf("got %d transactions, want %d", len(got), len(txs))
		}
	})

	t.Run("type all is identity", func(t *testing.T) {
		got := FilterTransactions(txs, Filter{Type: "all"}, now)
		if len(got) != len(txs) {
			t.Errorf("got %d transactions, want %d", len(got), len(txs))
		}
	})

	t.Run("by type", func(t *testing.T) {
		got := FilterTransactions(txs, Filter{Type: "expense"}, now)
		if len(got) != 2 {
			t.Errorf("got %d expenses, want 2", len(got))
		}
	})

	t.Run("account matches either transfer leg", func(t *testing.T) {
		got := FilterTransactions(txs, Filter{AccountID: "card"}, now)
		if len(got) != 1 || got[0].Type != core.Transfer {
			t.Errorf("got %v, want just the transfer into card", got)
		}
	})

	t.Run("by currency", func(t *testing.T) {
		got := FilterTransactions(txs, Filter{Currency: "USD"}, now)
		if len(got) != 1 || got[0].Currency != "USD" {
			t.Errorf("got %v, want the single USD transaction", got)
		}
	})

	t.Run("conjunction of fields", func(t *testing.T) {
		got := FilterTransactions(txs, Filter{Type: "expense", Currency: "RUB", Period: PeriodWeek}, now)
		if len(got) != 1 || got[0].Amount != 2000 {
			t.Errorf("got %v, want the RUB expense from yesterday", got)
		}
	})

	t.Run("filtering is idempotent", func(t *testing.T) {
		f := Filter{Type: "expense", Period: PeriodMonth}
		once := FilterTransactions(txs, f, now)
		twice := FilterTransactions(once, f, now)
		if len(once) != len(twice) {
			t.Errorf("second pass changed result: %d -> %d", len(once), len(twice))
		}
	})
}

func TestGroupByDay(t *testing.T) {
	txs := []core.Transaction{
		tx(core.Income, 1000, "RUB", "wallet", "", "", "2026-08-28T23:30:00Z"),
		tx(core.Expense, 400, "RUB", "wallet", "", "", "2026-08-28T01:00:00Z"),
		tx(core.Expense, 700, "RUB", "wallet", "", "", "2026-08-27T12:00:00Z"),
	}

	groups := GroupByDay(txs)
	if len(groups) != 2 {
		t.Fatalf("got %d day buckets, want 2", len(groups))
	}
	if len(groups["2026-08-28"]) != 2 {
		t.Errorf("2026-08-28 has %d transactions, want 2", len(groups["2026-08-28"]))
	}

	keys := SortedDayKeys(groups)
	if keys[0] != "2026-08-28" || keys[1] != "2026-08-27" {
		t.Errorf("keys = %v, want newest first", keys)
	}

	// Re-grouping the union of buckets reproduces the same buckets.
	var flat []core.Transaction
	for _, bucket := range groups {
		flat = append(flat, bucket...)
	}
	again := GroupByDay(flat)
	if len(again) != len(groups) {
		t.Errorf("re-grouping changed bucket count: %d -> %d", len(groups), len(again))
	}

	if got := DayTotal(groups["2026-08-28"]); got != 600 {
		t.Errorf("DayTotal = %d, want 600", got)
	}
}

func TestDayKeyTruncatesOnUTCDate(t *testing.T) {
	// 23:30Z and 00:30Z land in different buckets even though they are an
	// hour apart.
	if DayKey("2026-08-28T23:30:00Z") != "2026-08-28" {
		t.Error("late evening kept its own UTC date")
	}
	if DayKey("2026-08-29T00:30:00Z") != "2026-08-29" {
		t.Error("early morning kept its own UTC date")
	}
	if DayKey("short") != "short" {
		t.Error("short input passes through")
	}
}

func TestDayTotalTransfersContributeZero(t *testing.T) {
	txs := []core.Transaction{
		tx(core.Income, 1000, "RUB", "wallet", "", "", "2026-08-28T10:00:00Z"),
		tx(core.Transfer, 99999, "RUB", "wallet", "card", "", "2026-08-28T11:00:00Z"),
		tx(core.Expense, 300, "RUB", "wallet", "", "", "2026-08-28T12:00:00Z"),
	}
	if got := DayTotal(txs); got != 700 {
		t.Errorf("DayTotal = %d, want 700", got)
	}
}
