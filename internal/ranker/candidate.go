package ranker

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
)

const (
	noEvaluation      = "No evaluation available."
	noOriginalResume  = "No original resume available."
	noOptimizedResume = "No optimized resume available."
)

var requiredFields = []string{"filename", "score"}

// Candidate is one evaluated resume.
type Candidate struct {
	Filename        string  `json:"filename" validate:"required"`
	Score           float64 `json:"score" validate:"gte=0,lte=1"`
	OriginalResume  string  `json:"original_resume,omitempty"`
	OptimizedResume string  `json:"optimized_resume,omitempty"`
	Evaluation      string  `json:"evaluation,omitempty"`
}

type Item map[string]interface{}

type RankedResponse struct {
	Resumes *[]Item `json:"resumes"`
}

// ScorePercent returns the score as a rounded percentage.
func (c *Candidate) ScorePercent() int {
	return int(math.Round(c.Score * 100))
}

func (c *Candidate) HasOptimized() bool {
	return c.OptimizedResume != ""
}

func (c *Candidate) EvaluationText() string {
	return orDefault(c.Evaluation, noEvaluation)
}

func (c *Candidate) OriginalText() string {
	return orDefault(c.OriginalResume, noOriginalResume)
}

func (c *Candidate) OptimizedText() string {
	return orDefault(c.OptimizedResume, noOptimizedResume)
}

// GetRankedResumes returns candidates in the order the service sent them.
func (c *Client) GetRankedResumes(ctx context.Context) ([]*Candidate, error) {
	var response RankedResponse
	if err := c.getJSON(ctx, RankedPath, &response); err != nil {
		return nil, err
	}

	if response.Resumes == nil {
		return nil, remoteErr(RankedPath, 0, errors.New("response has no resumes field"))
	}

	candidates, err := decodeCandidates(*response.Resumes)
	if err != nil {
		return nil, remoteErr(RankedPath, 0, err)
	}

	return candidates, nil
}

func decodeCandidates(items []Item) ([]*Candidate, error) {
	validate := validator.New()
	candidates := make([]*Candidate, 0, len(items))
	seen := make(map[string]struct{}, len(items))

	for idx, item := range items {
		for _, field := range requiredFields {
			if v, ok := item[field]; !ok || v == nil {
				return nil, fmt.Errorf("resume #%d: missing required field %q", idx, field)
			}
		}

		var candidate Candidate
		cfg := &mapstructure.DecoderConfig{
			Result:  &candidate,
			TagName: "json",
		}
		decoder, err := mapstructure.NewDecoder(cfg)
		if err != nil {
			return nil, err
		}

		if err := decoder.Decode(map[string]interface{}(item)); err != nil {
			return nil, fmt.Errorf("resume #%d: %w", idx, err)
		}

		if err := validate.Struct(&candidate); err != nil {
			return nil, fmt.Errorf("resume #%d: %w", idx, err)
		}

		if _, ok := seen[candidate.Filename]; ok {
			return nil, fmt.Errorf("resume #%d: duplicate filename %q", idx, candidate.Filename)
		}
		seen[candidate.Filename] = struct{}{}

		candidates = append(candidates, &candidate)
	}

	return candidates, nil
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
