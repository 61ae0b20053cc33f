package http

import (
	"net/http"

	"kopilka/internal/core"
	"kopilka/internal/ledger"
)

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.provider.Accounts(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, accounts)
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var account core.Account
	if !decodeJSON(w, r, &account) {
		return
	}
	created, err := s.provider.AddAccount(r.Context(), account)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.flushAnalytics()
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.provider.Accounts(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	account := core.FindAccount(accounts, r.PathValue("id"))
	if account == nil {
		writeError(w, r, core.ErrAccountNotFound)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	var account core.Account
	if !decodeJSON(w, r, &account) {
		return
	}
	account.ID = r.PathValue("id")
	if err := s.provider.UpdateAccount(r.Context(), account); err != nil {
		writeError(w, r, err)
		return
	}
	s.flushAnalytics()
	writeJSON(w, http.StatusOK, account)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := s.provider.DeleteAccount(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	s.flushAnalytics()
	w.WriteHeader(http.StatusNoContent)
}

type balanceResponse struct {
	Balance  core.Money `json:"balance"`
	Currency string     `json:"currency"`
}

// handleAccountBalance computes the account's balance in its own currency.
func (s *Server) handleAccountBalance(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	accounts, err := s.provider.Accounts(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	account := core.FindAccount(accounts, id)
	if account == nil {
		writeError(w, r, core.ErrAccountNotFound)
		return
	}
	txs, err := s.provider.Transactions(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	def, err := s.provider.DefaultCurrency(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, balanceResponse{
		Balance:  ledger.AccountBalance(id, txs, accounts, def),
		Currency: account.Currency,
	})
}
