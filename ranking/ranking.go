// Package ranking orders clusters into prioritized recommendations.
package ranking

import (
	"sort"
	"time"

	"go-aduan/aggregate"
	"go-aduan/types"
)

// Rank recomputes each cluster's priority at now and returns recommendations
// sorted by priority, then urgency, then size, then id.
func Rank(clusters []types.Cluster, now time.Time) []types.Recommendation {
	recs := make([]types.Recommendation, 0, len(clusters))
	for _, c := range clusters {
		m := c.Metrics
		count := m.ReportCount
		if count == 0 {
			count = c.Size()
		}
		recs = append(recs, types.Recommendation{
			Cluster:            c.Clone(),
			Priority:           aggregate.Priority(m.UrgencyScore, m.ImpactScore, count, c.LastReportedAt, now),
			UrgencyLevel:       UrgencyLevel(m.UrgencyScore),
			ImpactLabel:        ImpactLabel(m.ImpactScore),
			RecommendedActions: append([]string(nil), c.SuggestedActions...),
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		if a.Cluster.Metrics.UrgencyScore != b.Cluster.Metrics.UrgencyScore {
			return a.Cluster.Metrics.UrgencyScore > b.Cluster.Metrics.UrgencyScore
		}
		if a.Cluster.Size() != b.Cluster.Size() {
			return a.Cluster.Size() > b.Cluster.Size()
		}
		return a.Cluster.ID < b.Cluster.ID
	})
	return recs
}

func UrgencyLevel(urgency float64) types.UrgencyLevel {
	switch {
	case urgency >= 0.8:
		return types.UrgencyCritical
	case urgency >= 0.6:
		return types.UrgencyHigh
	case urgency >= 0.4:
		return types.UrgencyMedium
	default:
		return types.UrgencyLow
	}
}

func ImpactLabel(impact float64) string {
	switch {
	case impact >= 0.75:
		return "widespread"
	case impact >= 0.5:
		return "significant"
	case impact >= 0.25:
		return "moderate"
	default:
		return "limited"
	}
}
