// Package similarity scores how likely two reports describe the same problem.
package similarity

import (
	"math"
	"sort"

	"go-aduan/geocode"
	"go-aduan/nlp"
	"go-aduan/types"
	"gonum.org/v1/gonum/floats"
)

const (
	keywordWeight = 0.3
	cosineWeight  = 0.4
	lengthWeight  = 0.1
	entityWeight  = 0.2

	relatedCategoryScore = 0.3
	neutralScore         = 0.5
)

// RelatedCategories lists, per category, the categories considered related.
// The table is one-directional; Categorical looks it up in both directions.
var RelatedCategories = map[types.Category][]types.Category{
	types.Infrastructure: {types.Safety, types.Environment},
	types.Environment:    {types.Health, types.Infrastructure},
	types.Safety:         {types.Infrastructure, types.Social},
	types.Health:         {types.Environment},
	types.Education:      {types.Social},
	types.Governance:     {types.Social, types.Education},
	types.Social:         {types.Health, types.Safety},
}

// ScoreWithConfig scores a against b with the weights carried by cfg.
func ScoreWithConfig(a, b types.Report, cfg types.ClusteringConfig) types.SimilarityScore {
	return Score(a, b, cfg, cfg.Weights())
}

// Score computes the five similarity components and their weighted overall
// value. A report compared with itself scores 1 everywhere.
func Score(a, b types.Report, cfg types.ClusteringConfig, w types.SimilarityWeights) types.SimilarityScore {
	return score(prepare(a), prepare(b), cfg, w)
}

// prepared pairs a report with its lexical analysis so a batch analyzes each
// description once.
type prepared struct {
	report types.Report
	doc    nlp.Document
}

func prepare(r types.Report) prepared {
	return prepared{report: r, doc: nlp.Analyze(r.Description)}
}

func score(pa, pb prepared, cfg types.ClusteringConfig, w types.SimilarityWeights) types.SimilarityScore {
	a, b := pa.report, pb.report
	if a.ID != "" && a.ID == b.ID {
		return types.SimilarityScore{
			Semantic: 1, Geographic: 1, Temporal: 1, Categorical: 1, Severity: 1, Overall: 1,
		}
	}

	s := types.SimilarityScore{
		Semantic:    semanticDocs(pa.doc, pb.doc),
		Geographic:  Geographic(a.Location, b.Location, cfg.MaxDistanceKm),
		Temporal:    Temporal(a, b, cfg.TemporalWindowHours),
		Categorical: Categorical(a.Category, b.Category),
		Severity:    Severity(a.Severity, b.Severity),
	}
	s.Overall = clamp01(w.Semantic*s.Semantic +
		w.Geographic*s.Geographic +
		w.Temporal*s.Temporal +
		w.Categorical*s.Categorical +
		w.Severity*s.Severity)
	return s
}

// Semantic is a lexical heuristic over keywords, term frequencies, length and
// shared entities. Two empty texts score 0.
func Semantic(textA, textB string) float64 {
	return semanticDocs(nlp.Analyze(textA), nlp.Analyze(textB))
}

func semanticDocs(a, b nlp.Document) float64 {
	if a.Empty() && b.Empty() {
		return 0
	}
	score := keywordWeight*Jaccard(a.Keywords, b.Keywords) +
		cosineWeight*Cosine(a.TermFreq, b.TermFreq) +
		lengthWeight*lengthRatio(a.Length, b.Length) +
		entityWeight*Jaccard(a.Entities, b.Entities)
	return clamp01(score)
}

// Jaccard returns |a∩b| / |a∪b|, or 0 when both sets are empty.
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	intersection := 0
	for k := range a {
		if _, ok := b[k]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}

// Cosine computes cosine similarity of two sparse term-frequency vectors. The
// vectors are laid out over the sorted union vocabulary so the result does not
// depend on argument order.
func Cosine(a, b map[string]float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	vocab := make([]string, 0, len(a)+len(b))
	for term := range a {
		vocab = append(vocab, term)
	}
	for term := range b {
		if _, ok := a[term]; !ok {
			vocab = append(vocab, term)
		}
	}
	sort.Strings(vocab)

	va := make([]float64, len(vocab))
	vb := make([]float64, len(vocab))
	for i, term := range vocab {
		va[i] = a[term]
		vb[i] = b[term]
	}

	normA := floats.Norm(va, 2)
	normB := floats.Norm(vb, 2)
	if normA == 0 || normB == 0 {
		return 0
	}
	return clamp01(floats.Dot(va, vb) / (normA * normB))
}

func lengthRatio(a, b int) float64 {
	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	if hi == 0 {
		return 0
	}
	return float64(lo) / float64(hi)
}

// Geographic decays exponentially with distance and is cut off at
// maxDistanceKm. Missing or malformed coordinates score 0.
func Geographic(a, b types.Location, maxDistanceKm float64) float64 {
	if !a.HasCoordinates() || !b.HasCoordinates() || maxDistanceKm <= 0 {
		return 0
	}
	d := geocode.Between(*a.Coordinates, *b.Coordinates)
	if d >= maxDistanceKm {
		return 0
	}
	return math.Exp(-d / (maxDistanceKm / 3))
}

// Temporal decays linearly to 0 at windowHours.
func Temporal(a, b types.Report, windowHours float64) float64 {
	if a.CreatedAt.IsZero() || b.CreatedAt.IsZero() || windowHours <= 0 {
		return 0
	}
	elapsed := math.Abs(a.CreatedAt.Sub(b.CreatedAt).Hours())
	if elapsed >= windowHours {
		return 0
	}
	return 1 - elapsed/windowHours
}

// DirectionalCategorical is the raw one-way lookup: b counts as related only
// when it is listed under a.
func DirectionalCategorical(a, b types.Category) float64 {
	if a == "" || b == "" {
		return neutralScore
	}
	if a == b {
		return 1
	}
	for _, rel := range RelatedCategories[a] {
		if rel == b {
			return relatedCategoryScore
		}
	}
	return 0
}

// Categorical is the symmetrized category similarity.
func Categorical(a, b types.Category) float64 {
	return math.Max(DirectionalCategorical(a, b), DirectionalCategorical(b, a))
}

// Severity compares two severities by their distance on the ordinal scale.
// Missing values are neutral.
func Severity(a, b types.Severity) float64 {
	i, j := a.Rank(), b.Rank()
	if i < 0 || j < 0 {
		return neutralScore
	}
	if i == j {
		return 1
	}
	return math.Max(0, 1-math.Abs(float64(i-j))/3)
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
