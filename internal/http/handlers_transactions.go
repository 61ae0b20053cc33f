package http

import (
	"net/http"
	"time"

	"kopilka/internal/core"
	"kopilka/internal/ledger"
	"kopilka/internal/provider"
)

// filterFromQuery builds the list filter from query parameters. from/to
// accept RFC 3339 timestamps or plain dates; a plain "to" date is widened to
// the end of that day so the inclusive range covers it whole.
func filterFromQuery(r *http.Request) ledger.Filter {
	q := r.URL.Query()
	f := ledger.Filter{
		Type:      q.Get("type"),
		AccountID: q.Get("accountId"),
		Currency:  q.Get("currency"),
		Period:    ledger.Period(q.Get("period")),
	}
	if f.Period == ledger.PeriodCustom {
		f.Custom.Start, _ = parseDateParam(q.Get("from"), false)
		f.Custom.End, _ = parseDateParam(q.Get("to"), true)
	}
	return f
}

func parseDateParam(v string, endOfDay bool) (time.Time, bool) {
	if v == "" {
		return time.Time{}, false
	}
	if ts, err := time.Parse(time.RFC3339, v); err == nil {
		return ts, true
	}
	ts, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, false
	}
	if endOfDay {
		ts = ts.Add(24*time.Hour - time.Second)
	}
	return ts, true
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.provider.Transactions(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ledger.FilterTransactions(txs, filterFromQuery(r), s.now()))
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var tx core.Transaction
	if !decodeJSON(w, r, &tx) {
		return
	}
	created, err := s.provider.AddTransaction(r.Context(), tx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.flushAnalytics()
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var tx core.Transaction
	if !decodeJSON(w, r, &tx) {
		return
	}
	tx.ID = r.PathValue("id")
	if err := s.provider.UpdateTransaction(r.Context(), tx); err != nil {
		writeError(w, r, err)
		return
	}
	s.flushAnalytics()
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.provider.DeleteTransaction(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	s.flushAnalytics()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateTransfer(w http.ResponseWriter, r *http.Request) {
	var req provider.TransferRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	created, err := s.provider.AddTransfer(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.flushAnalytics()
	writeJSON(w, http.StatusCreated, created)
}

type dayGroup struct {
	Date         string             `json:"date"`
	Total        core.Money         `json:"total"`
	Transactions []core.Transaction `json:"transactions"`
}

// handleTransactionDays returns the filtered history grouped into calendar
// days, newest day first, each with its net total.
func (s *Server) handleTransactionDays(w http.ResponseWriter, r *http.Request) {
	txs, err := s.provider.Transactions(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	filtered := ledger.FilterTransactions(txs, filterFromQuery(r), s.now())

	groups := ledger.GroupByDay(filtered)
	days := make([]dayGroup, 0, len(groups))
	for _, key := range ledger.SortedDayKeys(groups) {
		bucket := groups[key]
		days = append(days, dayGroup{
			Date:         key,
			Total:        ledger.DayTotal(bucket),
			Transactions: bucket,
		})
	}
	writeJSON(w, http.StatusOK, days)
}
