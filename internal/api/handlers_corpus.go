package api

import (
	"errors"
	"net/http"

	"github.com/dgallion1/papersum/internal/corpus"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleListPapers(w http.ResponseWriter, r *http.Request) {
	papers, err := s.store.ListPapers()
	if err != nil {
		s.log.Error("list papers failed", "error", err)
		jsonError(w, "failed to list papers", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"papers": papers,
		"count":  len(papers),
	})
}

func (s *Server) handleGetPaper(w http.ResponseWriter, r *http.Request) {
	paper, err := s.store.GetPaper(chi.URLParam(r, "paperID"))
	if errors.Is(err, corpus.ErrNotFound) {
		jsonError(w, "paper not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.log.Error("get paper failed", "error", err)
		jsonError(w, "failed to read paper", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, paper)
}

func (s *Server) handleGetSummaries(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "paperID")
	if _, err := s.store.GetPaper(id); errors.Is(err, corpus.ErrNotFound) {
		jsonError(w, "paper not found", http.StatusNotFound)
		return
	}
	recs, err := s.store.Summaries(id)
	if err != nil {
		s.log.Error("list summaries failed", "paper_id", id, "error", err)
		jsonError(w, "failed to read summaries", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"paper_id":  id,
		"summaries": recs,
	})
}
