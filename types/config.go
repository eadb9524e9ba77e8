package types

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// SimilarityWeights weights the five similarity components in the overall
// score. They are not required to sum to 1, but the defaults do.
type SimilarityWeights struct {
	Semantic    float64 `json:"semantic" yaml:"semantic"`
	Geographic  float64 `json:"geographic" yaml:"geographic"`
	Temporal    float64 `json:"temporal" yaml:"temporal"`
	Categorical float64 `json:"categorical" yaml:"categorical"`
	Severity    float64 `json:"severity" yaml:"severity"`
}

func (w SimilarityWeights) Sum() float64 {
	return w.Semantic + w.Geographic + w.Temporal + w.Categorical + w.Severity
}

type ClusteringConfig struct {
	MaxDistanceKm               float64 `json:"maxDistanceKm" yaml:"max_distance_km"`
	MinSubmissions              int     `json:"minSubmissions" yaml:"min_submissions"`
	SemanticSimilarityThreshold float64 `json:"semanticSimilarityThreshold" yaml:"semantic_similarity_threshold"`
	TemporalWindowHours         float64 `json:"temporalWindowHours" yaml:"temporal_window_hours"`

	ContentWeight  float64 `json:"contentWeight" yaml:"content_weight"`
	LocationWeight float64 `json:"locationWeight" yaml:"location_weight"`
	TimeWeight     float64 `json:"timeWeight" yaml:"time_weight"`
	CategoryWeight float64 `json:"categoryWeight" yaml:"category_weight"`
	SeverityWeight float64 `json:"severityWeight" yaml:"severity_weight"`

	// AsOf is the instant recency is measured from. Zero means wall clock.
	AsOf time.Time `json:"asOf,omitempty" yaml:"-"`
}

// DefaultClusteringConfig returns a fresh copy of the default settings.
func DefaultClusteringConfig() ClusteringConfig {
	return ClusteringConfig{
		MaxDistanceKm:               5,
		MinSubmissions:              2,
		SemanticSimilarityThreshold: 0.6,
		TemporalWindowHours:         72,
		ContentWeight:               0.35,
		LocationWeight:              0.25,
		TimeWeight:                  0.15,
		CategoryWeight:              0.15,
		SeverityWeight:              0.10,
	}
}

// Weights maps the config weights onto the scorer's component weights.
func (c ClusteringConfig) Weights() SimilarityWeights {
	return SimilarityWeights{
		Semantic:    c.ContentWeight,
		Geographic:  c.LocationWeight,
		Temporal:    c.TimeWeight,
		Categorical: c.CategoryWeight,
		Severity:    c.SeverityWeight,
	}
}

// Validate collects every violated constraint into a single error.
func (c ClusteringConfig) Validate() error {
	var issues []string
	if !(c.MaxDistanceKm > 0) || math.IsInf(c.MaxDistanceKm, 0) {
		issues = append(issues, fmt.Sprintf("maxDistanceKm must be positive, got %v", c.MaxDistanceKm))
	}
	if c.MinSubmissions < 1 {
		issues = append(issues, fmt.Sprintf("minSubmissions must be at least 1, got %d", c.MinSubmissions))
	}
	if c.SemanticSimilarityThreshold < 0 || c.SemanticSimilarityThreshold > 1 || math.IsNaN(c.SemanticSimilarityThreshold) {
		issues = append(issues, fmt.Sprintf("semanticSimilarityThreshold must be in [0,1], got %v", c.SemanticSimilarityThreshold))
	}
	if !(c.TemporalWindowHours > 0) {
		issues = append(issues, fmt.Sprintf("temporalWindowHours must be positive, got %v", c.TemporalWindowHours))
	}
	issues = append(issues, c.Weights().issues()...)
	if len(issues) == 0 {
		return nil
	}
	return &ComputationError{
		Op:      "validate config",
		Message: strings.Join(issues, "; "),
		Issues:  issues,
		Cause:   ErrInvalidConfig,
	}
}

func (w SimilarityWeights) issues() []string {
	var issues []string
	named := []struct {
		name  string
		value float64
	}{
		{"semantic", w.Semantic},
		{"geographic", w.Geographic},
		{"temporal", w.Temporal},
		{"categorical", w.Categorical},
		{"severity", w.Severity},
	}
	for _, n := range named {
		if n.value < 0 || math.IsNaN(n.value) {
			issues = append(issues, fmt.Sprintf("%s weight must be non-negative, got %v", n.name, n.value))
		}
	}
	if w.Sum() == 0 {
		issues = append(issues, "at least one similarity weight must be positive")
	}
	return issues
}
