package ledger

import (
	"sort"
	"time"

	"kopilka/internal/core"
)

const (
	IntervalDay   Interval = "day"
	IntervalWeek  Interval = "week"
	IntervalMonth Interval = "month"
)

type (
	// Interval selects the bucket width of a chart series.
	Interval string

	// BucketTotal carries the income and expense sums of one time bucket.
	BucketTotal struct {
		Bucket  string     `json:"bucket"`
		Income  core.Money `json:"income"`
		Expense core.Money `json:"expense"`
	}
)

func (i Interval) Valid() bool {
	switch i {
	case IntervalDay, IntervalWeek, IntervalMonth:
		return true
	default:
		return false
	}
}

// SeriesByBucket groups income and expense totals into day, week or month
// buckets for charting. Week buckets start on Monday and are keyed by that
// Monday's date; month buckets are keyed YYYY-MM. Transfers carry no income
// or expense and are skipped. Buckets come back sorted ascending, ready to
// plot left to right.
func SeriesByBucket(txs []core.Transaction, interval Interval) []BucketTotal {
	totals := make(map[string]*BucketTotal)
	for _, tx := range txs {
		if tx.Type != core.Income && tx.Type != core.Expense {
			continue
		}
		ts, err := time.Parse(time.RFC3339, tx.Date)
		if err != nil {
			continue
		}
		key := bucketKey(ts.UTC(), interval)
		b, ok := totals[key]
		if !ok {
			b = &BucketTotal{Bucket: key}
			totals[key] = b
		}
		if tx.Type == core.Income {
			b.Income += tx.Amount
		} else {
			b.Expense += tx.Amount
		}
	}

	out := make([]BucketTotal, 0, len(totals))
	for _, b := range totals {
		out = append(out, *b)
	}
	// Keys are zero-padded, so lexicographic order is chronological.
	sort.Slice(out, func(i, j int) bool { return out[i].Bucket < out[j].Bucket })
	return out
}

func bucketKey(ts time.Time, interval Interval) string {
	switch interval {
	case IntervalWeek:
		return startOfWeek(ts).Format("2006-01-02")
	case IntervalMonth:
		return ts.Format("2006-01")
	default:
		return ts.Format("2006-01-02")
	}
}

// startOfWeek truncates to the preceding (or same) Monday.
func startOfWeek(ts time.Time) time.Time {
	delta := (int(ts.Weekday()) + 6) % 7
	day := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -delta)
}
