package http

import (
	"net/http"

	"kopilka/internal/core"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	typ := core.TransactionType(r.URL.Query().Get("type"))
	if typ != "" && typ != core.Income && typ != core.Expense {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "type must be income or expense"})
		return
	}
	categories, err := s.provider.Categories(r.Context(), typ)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var category core.Category
	if !decodeJSON(w, r, &category) {
		return
	}
	created, err := s.provider.AddCategory(r.Context(), category)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.flushAnalytics()
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var category core.Category
	if !decodeJSON(w, r, &category) {
		return
	}
	category.ID = r.PathValue("id")
	if err := s.provider.UpdateCategory(r.Context(), category); err != nil {
		writeError(w, r, err)
		return
	}
	s.flushAnalytics()
	writeJSON(w, http.StatusOK, category)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.provider.DeleteCategory(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	s.flushAnalytics()
	w.WriteHeader(http.StatusNoContent)
}
