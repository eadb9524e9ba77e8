package detection

import (
	"context"
	"fmt"
	"log"
	"time"

	"go-aduan/aggregate"
	"go-aduan/metrics"
	"go-aduan/similarity"
	"go-aduan/types"
)

// slot tracks one cluster while a maintenance pass adds members to it.
type slot struct {
	cluster   types.Cluster
	memberIDs []string
	created   bool
	touched   bool
}

// UpdateClusters assigns new reports to existing clusters. Each report joins
// the first cluster, existing ones before those created in this pass, whose
// first member it matches at or above the similarity threshold. Unmatched
// reports are grouped with similar orphans into a new cluster once there are
// MinSubmissions of them, and are orphaned otherwise.
//
// store resolves the members of existing clusters. It is copied, never
// modified. Reports that are already cluster members are skipped.
func (e *Engine) UpdateClusters(ctx context.Context, existing []types.Cluster, store *ReportStore, newReports []types.Report) (result *types.UpdateResult, err error) {
	const op = "update clusters"
	start := time.Now()
	defer func() {
		metrics.RecordRun("update", err, len(newReports), time.Since(start).Seconds())
	}()
	defer recoverInto(op, &result, &err)

	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}
	if err := validateBatch(op, newReports); err != nil {
		return nil, err
	}

	reports := store.Clone()
	clustered := make(map[string]bool)
	slots := make([]*slot, 0, len(existing))
	for _, c := range existing {
		slots = append(slots, &slot{cluster: c, memberIDs: append([]string(nil), c.ReportIDs...)})
		for _, id := range c.ReportIDs {
			clustered[id] = true
		}
	}

	threshold := e.cfg.SemanticSimilarityThreshold
	matches := func(a, b types.Report) bool {
		return similarity.ScoreWithConfig(a, b, e.cfg).Overall >= threshold
	}

	var pool []types.Report
	considered := 0
	for _, r := range newReports {
		if err := ctx.Err(); err != nil {
			return nil, computationError(op, err)
		}
		if clustered[r.ID] {
			continue
		}
		considered++
		reports.Add(r)

		matched, err := firstMatch(slots, reports, r, matches)
		if err != nil {
			return nil, computationError(op, err)
		}
		if matched != nil {
			matched.memberIDs = append(matched.memberIDs, r.ID)
			matched.touched = true
			clustered[r.ID] = true
			continue
		}

		var similar []int
		for i, o := range pool {
			if matches(o, r) {
				similar = append(similar, i)
			}
		}
		if len(similar)+1 < e.cfg.MinSubmissions {
			pool = append(pool, r)
			continue
		}

		s := &slot{created: true, touched: true}
		for _, i := range similar {
			s.memberIDs = append(s.memberIDs, pool[i].ID)
		}
		s.memberIDs = append(s.memberIDs, r.ID)
		for _, id := range s.memberIDs {
			clustered[id] = true
		}
		slots = append(slots, s)
		pool = removeIndexes(pool, similar)
	}

	now := e.now()
	result = &types.UpdateResult{
		UpdatedClusters:   make([]types.Cluster, 0, len(existing)),
		NewClusters:       []types.Cluster{},
		Orphaned:          append([]types.Report{}, pool...),
		ChangedClusterIDs: []string{},
	}
	for _, s := range slots {
		if !s.touched {
			result.UpdatedClusters = append(result.UpdatedClusters, s.cluster.Clone())
			continue
		}
		members, err := reports.Resolve(s.memberIDs)
		if err != nil {
			return nil, computationError(op, fmt.Errorf("cluster %q: %w", s.cluster.ID, err))
		}
		if s.created {
			c := aggregate.Build(e.newID(), members, now)
			result.NewClusters = append(result.NewClusters, c)
			result.ChangedClusterIDs = append(result.ChangedClusterIDs, c.ID)
			continue
		}
		c := aggregate.Rebuild(s.cluster, members, now)
		result.UpdatedClusters = append(result.UpdatedClusters, c)
		result.ChangedClusterIDs = append(result.ChangedClusterIDs, c.ID)
	}

	placed := considered - len(pool)
	metrics.RecordOutcome(placed, len(pool))
	log.Printf("Engine: maintenance placed %d of %d new reports, %d clusters changed, %d new, %d orphaned",
		placed, len(newReports), len(result.ChangedClusterIDs), len(result.NewClusters), len(result.Orphaned))
	return result, nil
}

// firstMatch returns the first slot whose representative matches r.
func firstMatch(slots []*slot, reports *ReportStore, r types.Report, matches func(a, b types.Report) bool) (*slot, error) {
	for _, s := range slots {
		if len(s.memberIDs) == 0 {
			continue
		}
		rep, ok := reports.Get(s.memberIDs[0])
		if !ok {
			return nil, fmt.Errorf("representative of cluster %q: report %q: %w", s.cluster.ID, s.memberIDs[0], types.ErrMissingMember)
		}
		if matches(rep, r) {
			return s, nil
		}
	}
	return nil, nil
}

// removeIndexes drops the elements at the ascending indexes idx.
func removeIndexes(pool []types.Report, idx []int) []types.Report {
	out := pool[:0:0]
	next := 0
	for i, r := range pool {
		if next < len(idx) && idx[next] == i {
			next++
			continue
		}
		out = append(out, r)
	}
	return out
}
