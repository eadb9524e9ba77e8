package types

import "time"

type Status string

const (
	Active   Status = "active"
	Resolved Status = "resolved"
	Archived Status = "archived"
)

type ClusterMetrics struct {
	ReportCount    int     `firestore:"reportCount" json:"reportCount"`
	AverageQuality float64 `firestore:"averageQuality" json:"averageQuality"`
	UrgencyScore   float64 `firestore:"urgencyScore" json:"urgencyScore"`
	ImpactScore    float64 `firestore:"impactScore" json:"impactScore"`
	Priority       int     `firestore:"priority" json:"priority"` // 0-10, computed at creation/rebuild time
}

// Cluster groups reports describing the same real-world problem. Members are
// referenced by report ID only; resolve them through a report store.
type Cluster struct {
	ID          string `firestore:"-" json:"id"`
	Name        string `firestore:"name" json:"name"`
	Description string `firestore:"description" json:"description"`
	Area        string `firestore:"area,omitempty" json:"area,omitempty"`

	Category Category `firestore:"category" json:"category"` // mode over members
	Severity Severity `firestore:"severity" json:"severity"` // max over members

	ReportIDs []string     `firestore:"reportIds" json:"reportIds"`
	Centroid  *Coordinates `firestore:"centroid,omitempty" json:"centroid,omitempty"`
	RadiusKm  float64      `firestore:"radiusKm" json:"radiusKm"`

	Metrics         ClusterMetrics `firestore:"metrics" json:"metrics"`
	FirstReportedAt time.Time      `firestore:"firstReportedAt" json:"firstReportedAt"`
	LastReportedAt  time.Time      `firestore:"lastReportedAt" json:"lastReportedAt"`

	Status           Status    `firestore:"status" json:"status"`
	SuggestedActions []string  `firestore:"suggestedActions" json:"suggestedActions"`
	CreatedAt        time.Time `firestore:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time `firestore:"updatedAt" json:"updatedAt"`
}

func (c Cluster) Size() int {
	return len(c.ReportIDs)
}

// Clone returns a copy that shares no slices with c.
func (c Cluster) Clone() Cluster {
	out := c
	out.ReportIDs = append([]string(nil), c.ReportIDs...)
	out.SuggestedActions = append([]string(nil), c.SuggestedActions...)
	if c.Centroid != nil {
		centroid := *c.Centroid
		out.Centroid = &centroid
	}
	return out
}

type SimilarityScore struct {
	Semantic    float64 `json:"semantic"`
	Geographic  float64 `json:"geographic"`
	Temporal    float64 `json:"temporal"`
	Categorical float64 `json:"categorical"`
	Severity    float64 `json:"severity"`
	Overall     float64 `json:"overall"`
}

type RunMetrics struct {
	TotalClusters      int     `json:"totalClusters"`
	AvgClusterSize     float64 `json:"avgClusterSize"`
	ClusteringAccuracy float64 `json:"clusteringAccuracy"` // fraction of inputs clustered
	ProcessingTimeMs   int64   `json:"processingTimeMs"`
}

type ClusteringResult struct {
	Clusters []Cluster  `json:"clusters"`
	Orphaned []Report   `json:"orphaned"`
	Metrics  RunMetrics `json:"metrics"`
}

type UpdateResult struct {
	UpdatedClusters   []Cluster `json:"updatedClusters"`
	NewClusters       []Cluster `json:"newClusters"`
	Orphaned          []Report  `json:"orphaned"`
	ChangedClusterIDs []string  `json:"changedClusterIds"`
}

type UrgencyLevel string

const (
	UrgencyCritical UrgencyLevel = "critical"
	UrgencyHigh     UrgencyLevel = "high"
	UrgencyMedium   UrgencyLevel = "medium"
	UrgencyLow      UrgencyLevel = "low"
)

type Recommendation struct {
	Cluster            Cluster      `json:"cluster"`
	Priority           int          `json:"priority"`
	UrgencyLevel       UrgencyLevel `json:"urgencyLevel"`
	ImpactLabel        string       `json:"impactLabel"`
	RecommendedActions []string     `json:"recommendedActions"`
}
