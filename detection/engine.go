// Package detection groups citizen reports into clusters and keeps those
// clusters up to date as new reports arrive.
package detection

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"go-aduan/aggregate"
	"go-aduan/metrics"
	"go-aduan/ranking"
	"go-aduan/similarity"
	"go-aduan/types"
)

// Engine runs the clustering operations with one fixed configuration. It holds
// no mutable state, so one Engine may serve concurrent callers.
type Engine struct {
	cfg   types.ClusteringConfig
	newID func() string
	now   func() time.Time
}

type Option func(*Engine)

// WithIDGenerator sets how ids of new clusters are chosen.
func WithIDGenerator(fn func() string) Option {
	return func(e *Engine) { e.newID = fn }
}

// WithClock sets the instant used for timestamps and recency.
func WithClock(fn func() time.Time) Option {
	return func(e *Engine) { e.now = fn }
}

func New(cfg types.ClusteringConfig, opts ...Option) *Engine {
	e := &Engine{
		cfg:   cfg,
		newID: uuid.NewString,
		now:   time.Now,
	}
	if !cfg.AsOf.IsZero() {
		asOf := cfg.AsOf
		e.now = func() time.Time { return asOf }
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Config() types.ClusteringConfig {
	return e.cfg
}

// Now is the engine's evaluation instant.
func (e *Engine) Now() time.Time {
	return e.now()
}

// WithConfig returns an engine running cfg that keeps e's id generator and
// clock. A non-zero cfg.AsOf fixes the clock instead.
func (e *Engine) WithConfig(cfg types.ClusteringConfig) *Engine {
	out := &Engine{cfg: cfg, newID: e.newID, now: e.now}
	if !cfg.AsOf.IsZero() {
		asOf := cfg.AsOf
		out.now = func() time.Time { return asOf }
	}
	return out
}

// Similarity scores a against b. A nil weights uses the configured weights.
// Both reports need an id, since equal ids mark a report compared with itself.
func (e *Engine) Similarity(a, b types.Report, weights *types.SimilarityWeights) (score types.SimilarityScore, err error) {
	const op = "similarity"
	defer recoverInto(op, &score, &err)

	var issues []string
	if a.ID == "" {
		issues = append(issues, "report a has no id")
	}
	if b.ID == "" {
		issues = append(issues, "report b has no id")
	}
	if len(issues) > 0 {
		return types.SimilarityScore{}, &types.ComputationError{
			Op:      op,
			Message: strings.Join(issues, "; "),
			Issues:  issues,
			Cause:   types.ErrInvalidReports,
		}
	}

	w := e.cfg.Weights()
	if weights != nil {
		w = *weights
	}
	return similarity.Score(a, b, e.cfg, w), nil
}

func (e *Engine) SimilarityMatrix(ctx context.Context, reports []types.Report) (matrix [][]float64, err error) {
	const op = "similarity matrix"
	defer recoverInto(op, &matrix, &err)

	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}
	matrix, err = similarity.Matrix(ctx, reports, e.cfg)
	if err != nil {
		return nil, computationError(op, err)
	}
	return matrix, nil
}

// ClusterReports groups a batch of reports from scratch. Batches smaller than
// MinSubmissions succeed with every report orphaned.
func (e *Engine) ClusterReports(ctx context.Context, reports []types.Report) (result *types.ClusteringResult, err error) {
	const op = "cluster reports"
	start := time.Now()
	defer func() {
		metrics.RecordRun("cluster", err, len(reports), time.Since(start).Seconds())
	}()
	defer recoverInto(op, &result, &err)

	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}
	if err := validateBatch(op, reports); err != nil {
		return nil, err
	}

	result = &types.ClusteringResult{
		Clusters: []types.Cluster{},
		Orphaned: []types.Report{},
	}
	if len(reports) < e.cfg.MinSubmissions {
		result.Orphaned = append(result.Orphaned, reports...)
		result.Metrics.ProcessingTimeMs = time.Since(start).Milliseconds()
		log.Printf("Engine: %d reports is below the minimum of %d, all orphaned", len(reports), e.cfg.MinSubmissions)
		return result, nil
	}

	matrix, err := similarity.Matrix(ctx, reports, e.cfg)
	if err != nil {
		return nil, computationError(op, err)
	}
	labels, err := Density(ctx, matrix, e.cfg.SemanticSimilarityThreshold, e.cfg.MinSubmissions)
	if err != nil {
		return nil, computationError(op, err)
	}

	groups := make(map[int][]types.Report)
	clusterCount := 0
	for i, label := range labels {
		if label == Noise {
			result.Orphaned = append(result.Orphaned, reports[i])
			continue
		}
		groups[label] = append(groups[label], reports[i])
		if label+1 > clusterCount {
			clusterCount = label + 1
		}
	}

	now := e.now()
	clustered := 0
	for label := 0; label < clusterCount; label++ {
		members := groups[label]
		clustered += len(members)
		result.Clusters = append(result.Clusters, aggregate.Build(e.newID(), members, now))
	}

	result.Metrics = types.RunMetrics{
		TotalClusters:      len(result.Clusters),
		ClusteringAccuracy: float64(clustered) / float64(len(reports)),
		ProcessingTimeMs:   time.Since(start).Milliseconds(),
	}
	if len(result.Clusters) > 0 {
		result.Metrics.AvgClusterSize = float64(clustered) / float64(len(result.Clusters))
	}
	metrics.RecordOutcome(clustered, len(result.Orphaned))

	log.Printf("Engine: clustered %d reports into %d clusters, %d orphaned (%dms)",
		len(reports), len(result.Clusters), len(result.Orphaned), result.Metrics.ProcessingTimeMs)
	return result, nil
}

// RankClusters orders clusters into recommendations at the engine's clock.
func (e *Engine) RankClusters(clusters []types.Cluster) (recs []types.Recommendation, err error) {
	defer recoverInto("rank clusters", &recs, &err)
	return ranking.Rank(clusters, e.now()), nil
}

// validateBatch requires every report to carry a unique, non-empty id.
func validateBatch(op string, reports []types.Report) error {
	var issues []string
	seen := make(map[string]int, len(reports))
	for i, r := range reports {
		if r.ID == "" {
			issues = append(issues, fmt.Sprintf("report %d has no id", i))
			continue
		}
		if first, dup := seen[r.ID]; dup {
			issues = append(issues, fmt.Sprintf("report %d repeats id %q of report %d", i, r.ID, first))
			continue
		}
		seen[r.ID] = i
	}
	if len(issues) == 0 {
		return nil
	}
	return &types.ComputationError{
		Op:      op,
		Message: fmt.Sprintf("%d invalid reports", len(issues)),
		Issues:  issues,
		Cause:   types.ErrInvalidReports,
	}
}

// computationError wraps err as a ComputationError unless it already is one.
func computationError(op string, err error) error {
	var ce *types.ComputationError
	if errors.As(err, &ce) {
		return err
	}
	return &types.ComputationError{
		Op:      op,
		Message: err.Error(),
		Issues:  []string{err.Error()},
		Cause:   err,
	}
}

// recoverInto turns a panic in the calling operation into a failed result.
func recoverInto[T any](op string, result *T, err *error) {
	if r := recover(); r != nil {
		var zero T
		*result = zero
		*err = types.Recovered(op, r)
		log.Printf("Engine: recovered panic in %s: %v", op, r)
	}
}
