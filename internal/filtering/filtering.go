package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/resume-ranker/internal/ranker"
)

// Filter represents a single filtering step applied to ranked candidates.
// Filters only drop candidates; they never reorder them.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Validate(cfg *Config) error
	Apply(ctx context.Context, candidates []*ranker.Candidate) ([]*ranker.Candidate, Step, error)
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Config contains configuration settings consumed by the filters.
type Config struct {
	MinimumScore     float64
	ExcludeFilenames []string
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

// statusProvider is implemented by filters that can supply detailed status information.
type statusProvider interface {
	Status() Status
}

// Filtering is an ordered set of steps resolved once from a Config. Run only
// reads the resolved steps, so one Filtering may be shared between goroutines.
type Filtering struct {
	steps  []Filter
	logger *zap.Logger
}

// New validates every enabled step against cfg. Steps with nothing to do
// disable themselves and record the reason.
func New(cfg *Config, steps []Filter, logger *zap.Logger) (*Filtering, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	for _, step := range steps {
		if !step.IsEnabled() {
			continue
		}
		if err := step.Validate(cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}
	}

	return &Filtering{steps: steps, logger: logger}, nil
}

// Default returns the standard steps configured from cfg.
func Default(cfg *Config, logger *zap.Logger) (*Filtering, error) {
	return New(cfg, []Filter{
		NewMinimumScore(),
		NewExcludedFilenames(),
	}, logger)
}

// Run applies the enabled steps in order. A nil Filtering passes the
// candidates through unchanged.
func (f *Filtering) Run(ctx context.Context, candidates []*ranker.Candidate) ([]*ranker.Candidate, error) {
	if f == nil {
		return candidates, nil
	}

	for _, step := range f.steps {
		if !step.IsEnabled() {
			f.logger.Debug("filter disabled", zap.String("name", step.Name()))
			continue
		}

		next, info, err := step.Apply(ctx, candidates)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		f.logger.Debug("filter step",
			zap.String("name", step.Name()),
			zap.Int("initial", info.Initial),
			zap.Int("dropped", info.Dropped),
			zap.Int("left", info.Left),
		)

		candidates = next
	}

	return candidates, nil
}

// Describe returns status entries for the configured filters.
func (f *Filtering) Describe() []Status {
	if f == nil {
		return nil
	}

	statuses := make([]Status, 0, len(f.steps))
	for _, step := range f.steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}

// keep returns a new slice with the candidates for which fn is true.
func keep(candidates []*ranker.Candidate, fn func(*ranker.Candidate) bool) ([]*ranker.Candidate, []string) {
	kept := make([]*ranker.Candidate, 0, len(candidates))
	var dropped []string
	for _, c := range candidates {
		if fn(c) {
			kept = append(kept, c)
			continue
		}
		dropped = append(dropped, c.Filename)
	}
	return kept, dropped
}
