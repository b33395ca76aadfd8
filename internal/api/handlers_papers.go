package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dgallion1/papersum/internal/generate"
	"github.com/dgallion1/papersum/internal/parser"
	"github.com/dgallion1/papersum/internal/pipeline"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// handleExtract parses a page posted as the raw request body and returns the
// paper synchronously. The page's source URL comes from the url query.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	page, ok := s.readPage(w, r)
	if !ok {
		return
	}
	paper, err := parser.ParseHTML(bytes.NewReader(page), r.URL.Query().Get("url"))
	if err != nil {
		jsonError(w, err.Error(), parseErrorStatus(err))
		return
	}
	s.log.Info("extracted paper", "paper_id", paper.ID, "blocks", len(paper.Document))
	writeJSON(w, http.StatusOK, paper)
}

type submitRequest struct {
	URL       string                    `json:"url"`
	Summaries []pipeline.SummaryRequest `json:"summaries"`
}

// handleSubmitPaper queues a scrape job. A JSON body names the URL to fetch;
// an HTML body supplies the page itself with its URL in the url query.
func (s *Server) handleSubmitPaper(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	var page []byte

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "text/html" {
		var ok bool
		if page, ok = s.readPage(w, r); !ok {
			return
		}
		req.URL = r.URL.Query().Get("url")
		for _, v := range r.URL.Query()["summary"] {
			method, kind, _ := strings.Cut(v, ":")
			req.Summaries = append(req.Summaries, pipeline.SummaryRequest{Method: generate.Method(method), Kind: generate.Kind(kind)})
		}
	} else {
		r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
			return
		}
		if req.URL == "" {
			jsonError(w, "url is required", http.StatusBadRequest)
			return
		}
	}
	if req.URL != "" {
		if u, err := url.Parse(req.URL); err != nil || (page == nil && u.Host == "") {
			jsonError(w, "invalid url: "+req.URL, http.StatusBadRequest)
			return
		}
	}

	summaries, err := normalizeSummaries(req.Summaries)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	now := time.Now()
	job := &pipeline.Job{
		ID:        uuid.NewString(),
		URL:       req.URL,
		Status:    pipeline.StatusQueued,
		Phase:     "queued",
		Summaries: summaries,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if page != nil {
		job.SetPage(page)
	}

	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":   job.ID,
		"status":   pipeline.StatusQueued,
		"poll_url": fmt.Sprintf("/api/jobs/%s", job.ID),
	})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

// readPage reads an HTML request body within the upload limit.
func (s *Server) readPage(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	data, err := io.ReadAll(io.LimitReader(r.Body, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read body", http.StatusBadRequest)
		return nil, false
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("page exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return nil, false
	}
	if len(data) == 0 {
		jsonError(w, "empty body", http.StatusBadRequest)
		return nil, false
	}
	return data, true
}

// normalizeSummaries checks requested method/kind pairs. Chain of thought
// takes no kind.
func normalizeSummaries(in []pipeline.SummaryRequest) ([]pipeline.SummaryRequest, error) {
	out := make([]pipeline.SummaryRequest, 0, len(in))
	for _, req := range in {
		if req.Method == generate.ChainOfThought {
			if req.Kind != "" && req.Kind != generate.KindNone {
				return nil, fmt.Errorf("chain_of_thought takes no kind, got %q", req.Kind)
			}
			req.Kind = generate.KindNone
		} else if _, err := generate.SummaryPrompt(req.Method, req.Kind, ""); err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, nil
}

func parseErrorStatus(err error) int {
	if errors.Is(err, parser.ErrNoDocument) || errors.Is(err, parser.ErrNoAbstract) || errors.Is(err, parser.ErrMissingHeading) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadRequest
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
