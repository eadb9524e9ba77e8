package detection

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go-aduan/aggregate"
	"go-aduan/types"
)

func existingPotholes() ([]types.Cluster, *ReportStore) {
	members := []types.Report{reportA(), reportB()}
	c := aggregate.Build("existing-1", members, t0.Add(2*time.Hour))
	return []types.Cluster{c}, NewReportStore(members...)
}

func TestUpdateClusters_NoNewReportsLeavesClustersUnchanged(t *testing.T) {
	existing, store := existingPotholes()
	res, err := newEngine().UpdateClusters(context.Background(), existing, store, nil)
	require.NoError(t, err)

	assert.Equal(t, existing, res.UpdatedClusters)
	assert.Empty(t, res.NewClusters)
	assert.Empty(t, res.Orphaned)
	assert.Empty(t, res.ChangedClusterIDs)
}

func TestUpdateClusters_NoNewReportsNeedsNoStore(t *testing.T) {
	existing, _ := existingPotholes()
	res, err := newEngine().UpdateClusters(context.Background(), existing, nil, []types.Report{})
	require.NoError(t, err)
	assert.Equal(t, existing, res.UpdatedClusters)
}

func TestUpdateClusters_MatchingReportJoinsAndClusterIsRebuilt(t *testing.T) {
	existing, store := existingPotholes()
	d := reportD()
	d.Severity = types.Critical

	res, err := newEngine().UpdateClusters(context.Background(), existing, store, []types.Report{d})
	require.NoError(t, err)

	require.Len(t, res.UpdatedClusters, 1)
	c := res.UpdatedClusters[0]
	assert.Equal(t, "existing-1", c.ID)
	assert.Equal(t, []string{"a", "b", "d"}, c.ReportIDs)
	assert.Equal(t, types.Critical, c.Severity)
	assert.Equal(t, 3, c.Metrics.ReportCount)
	assert.Equal(t, existing[0].CreatedAt, c.CreatedAt)
	assert.Equal(t, t0.Add(24*time.Hour), c.UpdatedAt)
	assert.Equal(t, []string{"existing-1"}, res.ChangedClusterIDs)
	assert.Empty(t, res.NewClusters)
	assert.Empty(t, res.Orphaned)

	// inputs are untouched
	assert.Equal(t, []string{"a", "b"}, existing[0].ReportIDs)
	assert.Equal(t, 2, store.Len())
}

func TestUpdateClusters_UnrelatedReportIsOrphaned(t *testing.T) {
	existing, store := existingPotholes()
	res, err := newEngine().UpdateClusters(context.Background(), existing, store, []types.Report{reportC()})
	require.NoError(t, err)

	assert.Equal(t, existing, res.UpdatedClusters)
	assert.Equal(t, []string{"c"}, orphanIDs(res.Orphaned))
	assert.Empty(t, res.NewClusters)
}

func TestUpdateClusters_SimilarOrphansFormNewCluster(t *testing.T) {
	existing, store := existingPotholes()
	res, err := newEngine().UpdateClusters(context.Background(), existing, store,
		[]types.Report{reportC(), reportC2()})
	require.NoError(t, err)

	require.Len(t, res.NewClusters, 1)
	nc := res.NewClusters[0]
	assert.Equal(t, "cluster-1", nc.ID)
	assert.Equal(t, []string{"c", "c2"}, nc.ReportIDs)
	assert.Equal(t, types.Environment, nc.Category)
	assert.Equal(t, []string{"cluster-1"}, res.ChangedClusterIDs)
	assert.Empty(t, res.Orphaned)
}

func TestUpdateClusters_LaterReportJoinsClusterCreatedInSamePass(t *testing.T) {
	c3 := garbage("c3", -6.13662, 2*time.Hour, "Sampah dibuang ke sungai, bau busuk")
	res, err := newEngine().UpdateClusters(context.Background(), nil, nil,
		[]types.Report{reportC(), reportC2(), c3})
	require.NoError(t, err)

	require.Len(t, res.NewClusters, 1)
	assert.Equal(t, []string{"c", "c2", "c3"}, res.NewClusters[0].ReportIDs)
	assert.Empty(t, res.UpdatedClusters)
}

func TestUpdateClusters_MinSubmissionsKeepsPairInPool(t *testing.T) {
	e := newEngine(func(c *types.ClusteringConfig) { c.MinSubmissions = 3 })
	res, err := e.UpdateClusters(context.Background(), nil, nil, []types.Report{reportC(), reportC2()})
	require.NoError(t, err)

	assert.Empty(t, res.NewClusters)
	assert.Equal(t, []string{"c", "c2"}, orphanIDs(res.Orphaned))
}

func TestUpdateClusters_FirstMatchWins(t *testing.T) {
	first := aggregate.Build("first", []types.Report{reportA()}, t0)
	second := aggregate.Build("second", []types.Report{reportB()}, t0)
	store := NewReportStore(reportA(), reportB())

	res, err := newEngine().UpdateClusters(context.Background(), []types.Cluster{first, second}, store,
		[]types.Report{reportD()})
	require.NoError(t, err)

	require.Len(t, res.UpdatedClusters, 2)
	assert.Equal(t, []string{"a", "d"}, res.UpdatedClusters[0].ReportIDs)
	assert.Equal(t, []string{"b"}, res.UpdatedClusters[1].ReportIDs)
	assert.Equal(t, []string{"first"}, res.ChangedClusterIDs)
}

func TestUpdateClusters_ExistingMemberIsSkipped(t *testing.T) {
	existing, store := existingPotholes()
	res, err := newEngine().UpdateClusters(context.Background(), existing, store, []types.Report{reportB()})
	require.NoError(t, err)

	assert.Equal(t, existing, res.UpdatedClusters)
	assert.Empty(t, res.Orphaned)
	assert.Empty(t, res.ChangedClusterIDs)
}

func TestUpdateClusters_MissingRepresentative(t *testing.T) {
	existing, _ := existingPotholes()
	res, err := newEngine().UpdateClusters(context.Background(), existing, NewReportStore(), []types.Report{reportD()})
	assert.Nil(t, res)
	assert.ErrorIs(t, err, types.ErrMissingMember)
}

func TestUpdateClusters_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	existing, store := existingPotholes()
	res, err := newEngine().UpdateClusters(ctx, existing, store, []types.Report{reportD()})
	assert.Nil(t, res)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestUpdateClusters_InvalidConfig(t *testing.T) {
	e := newEngine(func(c *types.ClusteringConfig) { c.TemporalWindowHours = -1 })
	_, err := e.UpdateClusters(context.Background(), nil, nil, nil)
	assert.ErrorIs(t, err, types.ErrInvalidConfig)
}
