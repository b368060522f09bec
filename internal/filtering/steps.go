package filtering

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spigell/resume-ranker/internal/ranker"
)

type minimumScoreFilter struct {
	disabled bool
	reason   string
	minimum  float64
}

// NewMinimumScore creates a filter that drops candidates scored below the configured minimum.
func NewMinimumScore() Filter {
	return &minimumScoreFilter{}
}

func (f *minimumScoreFilter) Name() string { return "minimum_score" }

func (f *minimumScoreFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *minimumScoreFilter) IsEnabled() bool { return !f.disabled }

func (f *minimumScoreFilter) Validate(cfg *Config) error {
	if cfg == nil || cfg.MinimumScore == 0 {
		f.Disable("minimum score is not set")
		return nil
	}
	if cfg.MinimumScore < 0 || cfg.MinimumScore > 1 {
		return fmt.Errorf("minimum score must be within [0, 1], got %v", cfg.MinimumScore)
	}
	f.minimum = cfg.MinimumScore
	return nil
}

func (f *minimumScoreFilter) Apply(_ context.Context, candidates []*ranker.Candidate) ([]*ranker.Candidate, Step, error) {
	initial := len(candidates)

	kept, dropped := keep(candidates, func(c *ranker.Candidate) bool {
		return c.Score >= f.minimum
	})

	return kept, Step{Initial: initial, Dropped: len(dropped), Left: len(kept)}, nil
}

func (f *minimumScoreFilter) Status() Status {
	details := map[string]string{}
	if f.minimum > 0 {
		details["minimum_score"] = fmt.Sprintf("%.2f", f.minimum)
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}

type excludedFilenamesFilter struct {
	disabled  bool
	reason    string
	filenames map[string]struct{}
}

// NewExcludedFilenames creates a filter that drops candidates by filename.
func NewExcludedFilenames() Filter {
	return &excludedFilenamesFilter{}
}

func (f *excludedFilenamesFilter) Name() string { return "excluded_filenames" }

func (f *excludedFilenamesFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *excludedFilenamesFilter) IsEnabled() bool { return !f.disabled }

func (f *excludedFilenamesFilter) Validate(cfg *Config) error {
	f.filenames = make(map[string]struct{})
	if cfg != nil {
		for _, name := range cfg.ExcludeFilenames {
			if name = strings.TrimSpace(name); name != "" {
				f.filenames[name] = struct{}{}
			}
		}
	}
	if len(f.filenames) == 0 {
		f.Disable("no filenames to exclude")
	}
	return nil
}

func (f *excludedFilenamesFilter) Apply(_ context.Context, candidates []*ranker.Candidate) ([]*ranker.Candidate, Step, error) {
	initial := len(candidates)

	kept, dropped := keep(candidates, func(c *ranker.Candidate) bool {
		_, excluded := f.filenames[c.Filename]
		return !excluded
	})

	return kept, Step{Initial: initial, Dropped: len(dropped), Left: len(kept)}, nil
}

func (f *excludedFilenamesFilter) Status() Status {
	details := map[string]string{}
	if len(f.filenames) > 0 {
		names := make([]string, 0, len(f.filenames))
		for name := range f.filenames {
			names = append(names, name)
		}
		sort.Strings(names)
		details["filenames"] = strings.Join(names, ",")
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
