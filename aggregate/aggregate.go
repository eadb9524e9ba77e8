// Package aggregate derives a cluster's location, classification and metrics
// from its member reports.
package aggregate

import (
	"fmt"
	"math"
	"strings"
	"time"

	"go-aduan/geocode"
	"go-aduan/nlp"
	"go-aduan/types"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	maxCountBonus    = 0.3
	recencyWindowDay = 30.0
	descriptionTerms = 5
)

var severityUrgency = map[types.Severity]float64{
	types.Low:      0.25,
	types.Medium:   0.5,
	types.High:     0.75,
	types.Critical: 1.0,
}

// Build aggregates members into a new active cluster. The id is chosen by the
// caller.
func Build(id string, members []types.Report, now time.Time) types.Cluster {
	c := types.Cluster{
		ID:        id,
		Status:    types.Active,
		CreatedAt: now,
	}
	fill(&c, members, now)
	return c
}

// Rebuild recomputes every derived field of c from members, keeping its
// identity, status and creation time.
func Rebuild(c types.Cluster, members []types.Report, now time.Time) types.Cluster {
	out := types.Cluster{
		ID:        c.ID,
		Status:    c.Status,
		CreatedAt: c.CreatedAt,
	}
	if out.Status == "" {
		out.Status = types.Active
	}
	if out.CreatedAt.IsZero() {
		out.CreatedAt = now
	}
	fill(&out, members, now)
	return out
}

func fill(c *types.Cluster, members []types.Report, now time.Time) {
	c.ReportIDs = make([]string, 0, len(members))
	for _, m := range members {
		c.ReportIDs = append(c.ReportIDs, m.ID)
	}
	c.UpdatedAt = now
	c.Centroid, c.RadiusKm = Centroid(members)
	c.Category = ModeCategory(members)
	c.Severity = MaxSeverity(members)
	c.Area = modeArea(members)
	c.FirstReportedAt, c.LastReportedAt = reportedSpan(members)

	count := len(members)
	avgQuality := AverageQuality(members)
	urgency := Urgency(members)
	impact := Impact(count, avgQuality)
	c.Metrics = types.ClusterMetrics{
		ReportCount:    count,
		AverageQuality: avgQuality,
		UrgencyScore:   urgency,
		ImpactScore:    impact,
		Priority:       Priority(urgency, impact, count, c.LastReportedAt, now),
	}

	c.Name = Name(c.Category, c.Area)
	c.Description = describe(members, c.FirstReportedAt, c.LastReportedAt)
	c.SuggestedActions = SuggestedActions(c.Category)
}

// Centroid returns the mean position of the members that have coordinates and
// the largest distance from it to any of them. It returns nil, 0 when no member
// is located.
func Centroid(members []types.Report) (*types.Coordinates, float64) {
	var lats, lngs []float64
	for _, m := range members {
		if !m.Location.HasCoordinates() {
			continue
		}
		lats = append(lats, m.Location.Coordinates.Lat)
		lngs = append(lngs, m.Location.Coordinates.Lng)
	}
	if len(lats) == 0 {
		return nil, 0
	}

	centroid := types.Coordinates{Lat: stat.Mean(lats, nil), Lng: stat.Mean(lngs, nil)}
	distances := make([]float64, len(lats))
	for i := range lats {
		distances[i] = geocode.DistanceKm(centroid.Lat, centroid.Lng, lats[i], lngs[i])
	}
	return &centroid, floats.Max(distances)
}

// ModeCategory returns the most common member category. Ties go to the
// category listed first in types.Categories; no category at all yields OTHER.
func ModeCategory(members []types.Report) types.Category {
	counts := make(map[types.Category]int)
	for _, m := range members {
		if m.Category.Valid() {
			counts[m.Category]++
		}
	}
	best, bestCount := types.Other, 0
	for _, cat := range types.Categories {
		if counts[cat] > bestCount {
			best, bestCount = cat, counts[cat]
		}
	}
	return best
}

// MaxSeverity returns the highest member severity, LOW when none is set.
func MaxSeverity(members []types.Report) types.Severity {
	best := types.Low
	for _, m := range members {
		if m.Severity.Rank() > best.Rank() {
			best = m.Severity
		}
	}
	return best
}

// AverageQuality is the mean of the quality scores that are present, 0 when
// none are.
func AverageQuality(members []types.Report) float64 {
	var scores []float64
	for _, m := range members {
		if m.QualityScore != nil {
			scores = append(scores, *m.QualityScore)
		}
	}
	if len(scores) == 0 {
		return 0
	}
	return stat.Mean(scores, nil)
}

// MemberUrgency is the report's own urgency signal, or one derived from its
// severity.
func MemberUrgency(r types.Report) float64 {
	if r.Urgency != nil {
		return clamp01(*r.Urgency)
	}
	if u, ok := severityUrgency[r.Severity]; ok {
		return u
	}
	return 0.5
}

// Urgency is the mean member urgency plus a bonus of count/10, capped at 0.3.
func Urgency(members []types.Report) float64 {
	if len(members) == 0 {
		return 0
	}
	urgencies := make([]float64, len(members))
	for i, m := range members {
		urgencies[i] = MemberUrgency(m)
	}
	bonus := math.Min(maxCountBonus, float64(len(members))/10)
	return clamp01(stat.Mean(urgencies, nil) + bonus)
}

// Impact grows with the number of reports (saturating at 20) and their
// average quality.
func Impact(count int, avgQuality float64) float64 {
	return clamp01(0.6*math.Min(1, float64(count)/20) + 0.4*avgQuality/100)
}

// Priority is the 0-10 priority of a cluster. Recency decays linearly to 0
// over 30 days since the last report, measured at now.
func Priority(urgency, impact float64, count int, lastReported, now time.Time) int {
	countScore := math.Min(1, float64(count)/10)
	raw := 0.4*urgency + 0.3*impact + 0.2*countScore + 0.1*Recency(lastReported, now)
	return int(math.Round(10 * clamp01(raw)))
}

func Recency(lastReported, now time.Time) float64 {
	if lastReported.IsZero() {
		return 0
	}
	days := now.Sub(lastReported).Hours() / 24
	if days < 0 {
		days = 0
	}
	return math.Max(0, 1-days/recencyWindowDay)
}

// Name titles a cluster after its category and, when known, its area.
func Name(cat types.Category, area string) string {
	label := categoryLabel(cat)
	if area == "" {
		return label + " issue"
	}
	return fmt.Sprintf("%s issue in %s", label, area)
}

func categoryLabel(cat types.Category) string {
	s := strings.ToLower(string(cat))
	if s == "" {
		return "Other"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// modeArea picks the most common administrative name, earliest on ties.
func modeArea(members []types.Report) string {
	counts := make(map[string]int)
	var order []string
	for _, m := range members {
		name := m.Location.AreaName()
		if name == "" {
			continue
		}
		if counts[name] == 0 {
			order = append(order, name)
		}
		counts[name]++
	}
	best, bestCount := "", 0
	for _, name := range order {
		if counts[name] > bestCount {
			best, bestCount = name, counts[name]
		}
	}
	return best
}

func reportedSpan(members []types.Report) (first, last time.Time) {
	for _, m := range members {
		if m.CreatedAt.IsZero() {
			continue
		}
		if first.IsZero() || m.CreatedAt.Before(first) {
			first = m.CreatedAt
		}
		if m.CreatedAt.After(last) {
			last = m.CreatedAt
		}
	}
	return first, last
}

func describe(members []types.Report, first, last time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d reports", len(members))
	if !first.IsZero() {
		fmt.Fprintf(&b, " between %s and %s", first.UTC().Format(time.DateOnly), last.UTC().Format(time.DateOnly))
	}
	texts := make([]string, len(members))
	for i, m := range members {
		texts[i] = m.Description
	}
	if terms := nlp.TopKeywords(texts, descriptionTerms); len(terms) > 0 {
		fmt.Fprintf(&b, ". Common terms: %s", strings.Join(terms, ", "))
	}
	b.WriteString(".")
	return b.String()
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
