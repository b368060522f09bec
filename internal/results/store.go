// Package results holds the ranked candidates of a browsing session and the
// selection cursor over them.
package results

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/spigell/resume-ranker/internal/ranker"
)

// NoSelection is the selected index of an empty result set.
const NoSelection = -1

// Store owns the candidate list and the selected index. Both are always
// updated under the same lock so readers never see a list with an index
// that has not been clamped into it.
type Store struct {
	mu         sync.RWMutex
	candidates []*ranker.Candidate
	selected   int
}

func NewStore() *Store {
	return &Store{selected: NoSelection}
}

// Replace swaps the whole list and resets the selection to the first
// candidate, or to NoSelection when the list is empty.
func (s *Store) Replace(candidates []*ranker.Candidate) {
	items := make([]*ranker.Candidate, len(candidates))
	copy(items, candidates)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.candidates = items
	s.selected = NoSelection
	if len(items) > 0 {
		s.selected = 0
	}
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.candidates)
}

func (s *Store) IsEmpty() bool {
	return s.Len() == 0
}

func (s *Store) SelectedIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

// Current returns the selected candidate and its index. ok is false when the
// store is empty.
func (s *Store) Current() (candidate *ranker.Candidate, index int, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.candidates) == 0 {
		return nil, NoSelection, false
	}
	return s.candidates[s.selected], s.selected, true
}

// Snapshot returns a copy of the candidate list.
func (s *Store) Snapshot() []*ranker.Candidate {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]*ranker.Candidate, len(s.candidates))
	copy(items, s.candidates)
	return items
}

// move applies fn to the selected index under the write lock. fn receives the
// current index and the list length and returns the new index.
func (s *Store) move(fn func(current, n int) (int, error)) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.candidates)
	if n == 0 {
		return NoSelection, nil
	}

	next, err := fn(s.selected, n)
	if err != nil {
		return s.selected, err
	}

	s.selected = next
	return s.selected, nil
}

// Report returns the filename to score percentage summary in ranked order.
func (s *Store) Report() []string {
	items := s.Snapshot()
	report := make([]string, 0, len(items))
	for i, c := range items {
		report = append(report, fmt.Sprintf("%d. %s (%d%%)", i+1, c.Filename, c.ScorePercent()))
	}
	return report
}

// DumpToTmpFile writes the current candidates as JSON into a new temporary
// file inside dir (the system temp dir when empty) and returns its name.
func (s *Store) DumpToTmpFile(dir string) (string, error) {
	file, err := os.CreateTemp(dir, "candidates_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(struct {
		Resumes []*ranker.Candidate `json:"resumes"`
	}{Resumes: s.Snapshot()}); err != nil {
		os.Remove(file.Name())
		return "", err
	}
	return file.Name(), nil
}
