package corpus

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/dgallion1/papersum/internal/doctree"
	"github.com/google/uuid"
)

var ErrNotFound = errors.New("not found")

// Store keeps parsed papers and summary records as one JSON file each:
//
//	papers/{id}.json
//	summaries/{id}.{method}.{extraction_type}.json
type Store struct {
	mu  sync.RWMutex
	dir string
	enc Encoding
}

// PaperInfo is the listing view of a stored paper.
type PaperInfo struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	URL    string `json:"url"`
	Blocks int    `json:"blocks"`
}

func NewStore(dir string, enc Encoding) (*Store, error) {
	for _, sub := range []string{"papers", "summaries"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("create corpus directory: %w", err)
		}
	}
	return &Store{dir: dir, enc: enc}, nil
}

func (s *Store) PutPaper(p *doctree.Paper) error {
	if err := uuid.Validate(p.ID); err != nil {
		return fmt.Errorf("paper id %q: %w", p.ID, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return WriteJSON(s.paperPath(p.ID), p, s.enc)
}

func (s *Store) GetPaper(id string) (*doctree.Paper, error) {
	if uuid.Validate(id) != nil {
		return nil, ErrNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var p doctree.Paper
	if err := ReadJSON(s.paperPath(id), &p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ListPapers returns stored papers sorted by title.
func (s *Store) ListPapers() ([]PaperInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries, err := os.ReadDir(filepath.Join(s.dir, "papers"))
	if err != nil {
		return nil, fmt.Errorf("list papers: %w", err)
	}
	infos := []PaperInfo{}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		var p doctree.Paper
		if err := ReadJSON(filepath.Join(s.dir, "papers", e.Name()), &p); err != nil {
			return nil, err
		}
		infos = append(infos, PaperInfo{ID: p.ID, Title: p.Title, URL: p.URL, Blocks: len(p.Document)})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Title < infos[j].Title })
	return infos, nil
}

func (s *Store) PutSummary(rec doctree.SummaryRecord) error {
	if err := uuid.Validate(rec.ID); err != nil {
		return fmt.Errorf("summary id %q: %w", rec.ID, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return WriteJSON(s.summaryPath(rec), rec, s.enc)
}

// Summaries returns every stored summary record for a paper.
func (s *Store) Summaries(id string) ([]doctree.SummaryRecord, error) {
	if uuid.Validate(id) != nil {
		return nil, ErrNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	matches, err := filepath.Glob(filepath.Join(s.dir, "summaries", id+".*.json"))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	recs := []doctree.SummaryRecord{}
	for _, m := range matches {
		var rec doctree.SummaryRecord
		if err := ReadJSON(m, &rec); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func (s *Store) paperPath(id string) string {
	return filepath.Join(s.dir, "papers", id+".json")
}

func (s *Store) summaryPath(rec doctree.SummaryRecord) string {
	name := strings.Join([]string{rec.ID, safeName(rec.Method), safeName(rec.ExtractionType), "json"}, ".")
	return filepath.Join(s.dir, "summaries", name)
}

func safeName(s string) string {
	if s == "" {
		return "none"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		}
		return '_'
	}, s)
}
