package http

import (
	"net/http"
	"strconv"
	"strings"

	"kopilka/internal/core"
	"kopilka/internal/ledger"
)

func (s *Server) handleTotalBalance(w http.ResponseWriter, r *http.Request) {
	currency := r.URL.Query().Get("currency")
	if currency == "" {
		def, err := s.provider.DefaultCurrency(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		currency = def
	}
	txs, err := s.provider.Transactions(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{
		Balance:  ledger.TotalBalance(txs, currency),
		Currency: currency,
	})
}

type defaultCurrencyPayload struct {
	DefaultCurrency string `json:"defaultCurrency"`
}

func (s *Server) handleGetDefaultCurrency(w http.ResponseWriter, r *http.Request) {
	def, err := s.provider.DefaultCurrency(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, defaultCurrencyPayload{DefaultCurrency: def})
}

func (s *Server) handleSetDefaultCurrency(w http.ResponseWriter, r *http.Request) {
	var payload defaultCurrencyPayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	currency := strings.TrimSpace(payload.DefaultCurrency)
	if currency == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "defaultCurrency is required"})
		return
	}
	if err := s.provider.SetDefaultCurrency(r.Context(), currency); err != nil {
		writeError(w, r, err)
		return
	}
	s.flushAnalytics()
	writeJSON(w, http.StatusOK, defaultCurrencyPayload{DefaultCurrency: currency})
}

// handleTopCategories ranks expense categories by spend inside [from, to).
func (s *Server) handleTopCategories(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, okFrom := parseDateParam(q.Get("from"), false)
	to, okTo := parseDateParam(q.Get("to"), false)
	if !okFrom || !okTo {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "from and to are required dates"})
		return
	}
	limit := 0
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be a non-negative number"})
			return
		}
		limit = n
	}

	key := q.Get("from") + "|" + q.Get("to") + "|" + strconv.Itoa(limit)
	if cached, ok := s.topCache.Get(key); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	txs, err := s.provider.Transactions(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	categories, err := s.provider.Categories(r.Context(), "")
	if err != nil {
		writeError(w, r, err)
		return
	}

	top := ledger.TopCategoriesBySpend(txs, categories, from, to, limit)
	s.topCache.Set(key, top)
	writeJSON(w, http.StatusOK, top)
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	interval := ledger.Interval(r.URL.Query().Get("interval"))
	if interval == "" {
		interval = ledger.IntervalDay
	}
	if !interval.Valid() {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "interval must be day, week or month"})
		return
	}

	key := string(interval)
	if cached, ok := s.seriesCache.Get(key); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	txs, err := s.provider.Transactions(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	series := ledger.SeriesByBucket(txs, interval)
	s.seriesCache.Set(key, series)
	writeJSON(w, http.StatusOK, series)
}

type todayResponse struct {
	Date    string     `json:"date"`
	Income  core.Money `json:"income"`
	Expense core.Money `json:"expense"`
}

// handleToday sums today's income and expense, on the same UTC day key the
// grouping uses.
func (s *Server) handleToday(w http.ResponseWriter, r *http.Request) {
	txs, err := s.provider.Transactions(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	day := s.now().UTC().Format("2006-01-02")
	writeJSON(w, http.StatusOK, todayResponse{
		Date:    day,
		Income:  ledger.TypeSumOnDay(txs, core.Income, day),
		Expense: ledger.TypeSumOnDay(txs, core.Expense, day),
	})
}
