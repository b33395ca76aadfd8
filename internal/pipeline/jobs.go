package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/dgallion1/papersum/internal/generate"
)

// JobStatus represents the state of a paper job.
type JobStatus string

const (
	StatusQueued      JobStatus = "queued"
	StatusFetching    JobStatus = "fetching"
	StatusParsing     JobStatus = "parsing"
	StatusSummarizing JobStatus = "summarizing"
	StatusStoring     JobStatus = "storing"
	StatusCompleted   JobStatus = "completed"
	StatusFailed      JobStatus = "failed"
	StatusPartial     JobStatus = "partial"
)

// SummaryRequest names one summary to produce after extraction.
type SummaryRequest struct {
	Method generate.Method `json:"method"`
	Kind   generate.Kind   `json:"kind"`
}

// Job tracks one paper through fetch, extraction and optional summaries.
type Job struct {
	mu sync.Mutex

	ID      string `json:"job_id"`
	PaperID string `json:"paper_id"`
	URL     string `json:"url"`

	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`
	Title  string    `json:"title"`

	Summaries []SummaryRequest `json:"summaries"`
	Progress  Progress         `json:"progress"`

	ContentHash string    `json:"content_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Internal: not serialized.
	page   []byte
	errors []string
}

// Progress tracks processing progress.
type Progress struct {
	Blocks          int      `json:"blocks"`
	TotalSummaries  int      `json:"total_summaries"`
	SummariesStored int      `json:"summaries_stored"`
	Errors          []string `json:"errors"`
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		updated := job.UpdatedAt
		job.mu.Unlock()
		if now.Sub(updated) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetPaper records the extracted paper's identity.
func (j *Job) SetPaper(id, title string, blocks int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.PaperID = id
	j.Title = title
	j.Progress.Blocks = blocks
	j.Progress.TotalSummaries = len(j.Summaries)
	j.UpdatedAt = time.Now()
}

// IncrSummariesStored atomically increments stored summaries.
func (j *Job) IncrSummariesStored() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.SummariesStored++
	j.UpdatedAt = time.Now()
}

// SetPage supplies the page markup so the job skips fetching.
func (j *Job) SetPage(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.page = data
	j.ContentHash = ContentHashHex(data)
}

// Page returns the page markup, nil until fetched or supplied.
func (j *Job) Page() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.page
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID          string           `json:"job_id"`
	PaperID     string           `json:"paper_id"`
	URL         string           `json:"url"`
	Status      JobStatus        `json:"status"`
	Phase       string           `json:"phase"`
	Title       string           `json:"title"`
	Summaries   []SummaryRequest `json:"summaries"`
	Progress    Progress         `json:"progress"`
	ContentHash string           `json:"content_hash,omitempty"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := append([]string{}, j.Progress.Errors...)
	summaries := append([]SummaryRequest{}, j.Summaries...)
	return JobSnapshot{
		ID:        j.ID,
		PaperID:   j.PaperID,
		URL:       j.URL,
		Status:    j.Status,
		Phase:     j.Phase,
		Title:     j.Title,
		Summaries: summaries,
		Progress: Progress{
			Blocks:          j.Progress.Blocks,
			TotalSummaries:  j.Progress.TotalSummaries,
			SummariesStored: j.Progress.SummariesStored,
			Errors:          errs,
		},
		ContentHash: j.ContentHash,
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
