package detection

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go-aduan/similarity"
	"go-aduan/types"
)

func clusteredIDs(res *types.ClusteringResult) [][]string {
	out := make([][]string, len(res.Clusters))
	for i, c := range res.Clusters {
		out[i] = c.ReportIDs
	}
	return out
}

func orphanIDs(reports []types.Report) []string {
	out := make([]string, len(reports))
	for i, r := range reports {
		out[i] = r.ID
	}
	return out
}

func TestClusterReports_PairAndUnrelatedOrphan(t *testing.T) {
	e := newEngine()
	res, err := e.ClusterReports(context.Background(), []types.Report{reportA(), reportC(), reportB()})
	require.NoError(t, err)

	require.Len(t, res.Clusters, 1)
	c := res.Clusters[0]
	assert.Equal(t, "cluster-1", c.ID)
	assert.Equal(t, []string{"a", "b"}, c.ReportIDs)
	assert.Equal(t, types.Infrastructure, c.Category)
	assert.Equal(t, types.Active, c.Status)
	assert.Equal(t, t0.Add(24*time.Hour), c.CreatedAt)
	assert.Equal(t, []string{"c"}, orphanIDs(res.Orphaned))

	assert.Equal(t, 1, res.Metrics.TotalClusters)
	assert.Equal(t, 2.0, res.Metrics.AvgClusterSize)
	assert.InDelta(t, 2.0/3.0, res.Metrics.ClusteringAccuracy, 1e-12)
}

func TestClusterReports_HighThresholdOrphansEverything(t *testing.T) {
	e := newEngine(func(c *types.ClusteringConfig) { c.SemanticSimilarityThreshold = 0.95 })
	res, err := e.ClusterReports(context.Background(), []types.Report{reportA(), reportB(), reportC()})
	require.NoError(t, err)
	assert.Empty(t, res.Clusters)
	assert.Len(t, res.Orphaned, 3)
	assert.Equal(t, 0.0, res.Metrics.ClusteringAccuracy)
}

func TestClusterReports_UnrelatedReportNeverJoins(t *testing.T) {
	for _, threshold := range []float64{0.5, 0.6, 0.7, 0.8, 0.9} {
		e := newEngine(func(c *types.ClusteringConfig) { c.SemanticSimilarityThreshold = threshold })
		res, err := e.ClusterReports(context.Background(), []types.Report{reportA(), reportB(), reportC()})
		require.NoError(t, err)
		for _, c := range res.Clusters {
			assert.NotContains(t, c.ReportIDs, "c", "threshold %v", threshold)
		}
	}
}

func TestClusterReports_InsufficientData(t *testing.T) {
	e := newEngine(func(c *types.ClusteringConfig) { c.MinSubmissions = 5 })
	res, err := e.ClusterReports(context.Background(), []types.Report{reportA(), reportB(), reportC()})
	require.NoError(t, err)
	assert.Empty(t, res.Clusters)
	assert.Equal(t, []string{"a", "b", "c"}, orphanIDs(res.Orphaned))
	assert.Equal(t, 0, res.Metrics.TotalClusters)
}

func TestClusterReports_EmptyBatch(t *testing.T) {
	res, err := newEngine().ClusterReports(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, res.Clusters)
	assert.Empty(t, res.Orphaned)
}

func TestClusterReports_ConservationAndMinimumSize(t *testing.T) {
	batch := []types.Report{reportA(), reportB(), reportC(), reportD(), reportC2(),
		{ID: "x", Description: "lampu jalan padam"}, {ID: "y"}}

	for _, minSub := range []int{1, 2, 3, 4} {
		for _, threshold := range []float64{0.3, 0.6, 0.9} {
			e := newEngine(func(c *types.ClusteringConfig) {
				c.MinSubmissions = minSub
				c.SemanticSimilarityThreshold = threshold
			})
			res, err := e.ClusterReports(context.Background(), batch)
			require.NoError(t, err)

			total := len(res.Orphaned)
			for _, c := range res.Clusters {
				assert.GreaterOrEqual(t, c.Size(), minSub)
				total += c.Size()
			}
			assert.Equal(t, len(batch), total, "minSubmissions %d threshold %v", minSub, threshold)
		}
	}
}

func TestClusterReports_Deterministic(t *testing.T) {
	batch := []types.Report{reportC2(), reportA(), reportC(), reportB(), reportD()}
	first, err := newEngine().ClusterReports(context.Background(), batch)
	require.NoError(t, err)
	second, err := newEngine().ClusterReports(context.Background(), batch)
	require.NoError(t, err)

	assert.Equal(t, clusteredIDs(first), clusteredIDs(second))
	assert.Equal(t, [][]string{{"c2", "c"}, {"a", "b", "d"}}, clusteredIDs(first))
}

func TestClusterReports_InvalidConfig(t *testing.T) {
	e := newEngine(func(c *types.ClusteringConfig) {
		c.MaxDistanceKm = 0
		c.MinSubmissions = 0
	})
	res, err := e.ClusterReports(context.Background(), []types.Report{reportA()})
	assert.Nil(t, res)
	require.ErrorIs(t, err, types.ErrInvalidConfig)

	var ce *types.ComputationError
	require.True(t, errors.As(err, &ce))
	assert.Len(t, ce.Issues, 2)
}

func TestClusterReports_InvalidBatch(t *testing.T) {
	a := reportA()
	res, err := newEngine().ClusterReports(context.Background(), []types.Report{a, a, {Description: "tanpa id"}})
	assert.Nil(t, res)
	require.ErrorIs(t, err, types.ErrInvalidReports)

	var ce *types.ComputationError
	require.True(t, errors.As(err, &ce))
	assert.Len(t, ce.Issues, 2)
}

func TestClusterReports_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := newEngine().ClusterReports(ctx, []types.Report{reportA(), reportB(), reportC()})
	assert.Nil(t, res)
	assert.ErrorIs(t, err, context.Canceled)

	var ce *types.ComputationError
	assert.True(t, errors.As(err, &ce))
}

func TestClusterReports_PanicBecomesComputationError(t *testing.T) {
	e := New(types.DefaultClusteringConfig(), WithIDGenerator(func() string { panic("id source exhausted") }))
	res, err := e.ClusterReports(context.Background(), []types.Report{reportA(), reportB()})
	assert.Nil(t, res)
	require.ErrorIs(t, err, types.ErrComputation)
	assert.Contains(t, err.Error(), "id source exhausted")
}

func TestSimilarity_DefaultAndCustomWeights(t *testing.T) {
	e := newEngine()
	got, err := e.Similarity(reportA(), reportB(), nil)
	require.NoError(t, err)
	assert.Equal(t, similarity.ScoreWithConfig(reportA(), reportB(), e.Config()), got)

	onlyTime := &types.SimilarityWeights{Temporal: 1}
	got, err = e.Similarity(reportA(), reportB(), onlyTime)
	require.NoError(t, err)
	assert.Equal(t, got.Temporal, got.Overall)
}

func TestSimilarity_RequiresIDs(t *testing.T) {
	e := newEngine()
	a := reportA()
	a.ID = ""

	_, err := e.Similarity(a, a, nil)
	require.ErrorIs(t, err, types.ErrInvalidReports)
	var ce *types.ComputationError
	require.ErrorAs(t, err, &ce)
	assert.Len(t, ce.Issues, 2)

	a.ID = "x"
	got, err := e.Similarity(a, a, nil)
	require.NoError(t, err)
	assert.Equal(t, 1.0, got.Overall)
}

func TestWithConfig_KeepsClockAndIDs(t *testing.T) {
	base := newEngine()
	e := base.WithConfig(func() types.ClusteringConfig {
		cfg := base.Config()
		cfg.SemanticSimilarityThreshold = 0.5
		return cfg
	}())

	assert.Equal(t, 0.5, e.Config().SemanticSimilarityThreshold)
	assert.Equal(t, 0.6, base.Config().SemanticSimilarityThreshold)
	assert.Equal(t, t0.Add(24*time.Hour), e.Now())

	res, err := e.ClusterReports(context.Background(), []types.Report{reportA(), reportB()})
	require.NoError(t, err)
	require.Len(t, res.Clusters, 1)
	assert.Equal(t, "cluster-1", res.Clusters[0].ID)

	cfg := base.Config()
	cfg.AsOf = t0.Add(48 * time.Hour)
	assert.Equal(t, t0.Add(48*time.Hour), base.WithConfig(cfg).Now())
}

func TestSimilarityMatrix(t *testing.T) {
	e := newEngine()
	m, err := e.SimilarityMatrix(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, m)

	m, err = e.SimilarityMatrix(context.Background(), []types.Report{reportA(), reportB()})
	require.NoError(t, err)
	assert.Equal(t, 1.0, m[0][0])
	assert.Equal(t, m[0][1], m[1][0])
}

func TestNew_AsOfFixesClock(t *testing.T) {
	cfg := types.DefaultClusteringConfig()
	cfg.AsOf = t0.Add(90 * 24 * time.Hour)
	e := New(cfg, sequentialIDs())

	res, err := e.ClusterReports(context.Background(), []types.Report{reportA(), reportB()})
	require.NoError(t, err)
	require.Len(t, res.Clusters, 1)
	assert.Equal(t, cfg.AsOf, res.Clusters[0].CreatedAt)
}

func TestRankClusters(t *testing.T) {
	e := newEngine()
	res, err := e.ClusterReports(context.Background(), []types.Report{reportA(), reportB(), reportD(), reportC(), reportC2()})
	require.NoError(t, err)
	require.Len(t, res.Clusters, 2)

	recs, err := e.RankClusters(res.Clusters)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.GreaterOrEqual(t, recs[0].Priority, recs[1].Priority)
	assert.Equal(t, "cluster-1", recs[0].Cluster.ID)
	assert.NotEmpty(t, recs[0].RecommendedActions)
}
