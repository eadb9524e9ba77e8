package similarity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go-aduan/types"
)

func TestScore_NearbyDuplicate(t *testing.T) {
	cfg := types.DefaultClusteringConfig()
	s := ScoreWithConfig(reportA(), reportB(), cfg)

	assert.Greater(t, s.Overall, 0.65)
	assert.Greater(t, s.Geographic, 0.8)
	assert.Greater(t, s.Temporal, 0.8)
	assert.Equal(t, 1.0, s.Categorical)
	assert.Equal(t, 1.0, s.Severity)
}

func TestScore_UnrelatedReport(t *testing.T) {
	cfg := types.DefaultClusteringConfig()
	s := ScoreWithConfig(reportA(), reportC(), cfg)

	assert.Less(t, s.Overall, 0.5)
	assert.Equal(t, 0.0, s.Geographic)
	assert.Equal(t, 0.3, s.Categorical)
}

func TestScore_Symmetric(t *testing.T) {
	cfg := types.DefaultClusteringConfig()
	health := types.Report{ID: "h", Description: "Banyak warga demam berdarah, nyamuk di selokan", Category: types.Health, CreatedAt: t0}
	social := types.Report{ID: "s", Description: "Lansia terlantar butuh bantuan", Category: types.Social, Severity: types.Low, CreatedAt: t0.Add(5 * time.Hour)}
	reports := []types.Report{reportA(), reportB(), reportC(), health, social}

	for _, a := range reports {
		for _, b := range reports {
			ab := ScoreWithConfig(a, b, cfg)
			ba := ScoreWithConfig(b, a, cfg)
			assert.Equal(t, ab.Overall, ba.Overall, "%s vs %s", a.ID, b.ID)
			assert.Equal(t, ab, ba, "%s vs %s", a.ID, b.ID)
		}
	}
}

func TestScore_SelfIsOne(t *testing.T) {
	cfg := types.DefaultClusteringConfig()
	for _, r := range []types.Report{reportA(), reportC(), {ID: "empty"}} {
		s := ScoreWithConfig(r, r, cfg)
		assert.Equal(t, 1.0, s.Overall, r.ID)
	}
}

func TestScore_CustomWeights(t *testing.T) {
	cfg := types.DefaultClusteringConfig()
	onlyGeo := types.SimilarityWeights{Geographic: 1}
	s := Score(reportA(), reportC(), cfg, onlyGeo)
	assert.Equal(t, 0.0, s.Overall)

	onlyCategory := types.SimilarityWeights{Categorical: 1}
	s = Score(reportA(), reportB(), cfg, onlyCategory)
	assert.Equal(t, 1.0, s.Overall)
}

func TestSemantic_EmptyTextsScoreZero(t *testing.T) {
	assert.Equal(t, 0.0, Semantic("", ""))
	assert.Equal(t, 0.0, Semantic("yang dan", "!!!"))
	assert.Equal(t, 0.0, Semantic("", "banjir"))
}

func TestSemantic_IdenticalTextWithEntities(t *testing.T) {
	text := "Banjir setinggi 50 cm di Jl. Kemang RT 02/RW 04"
	assert.InDelta(t, 1.0, Semantic(text, text), 1e-9)
}

func TestSemantic_SimilarBeatsUnrelated(t *testing.T) {
	similar := Semantic(reportA().Description, reportB().Description)
	unrelated := Semantic(reportA().Description, reportC().Description)
	assert.Greater(t, similar, unrelated)
}

func TestJaccard(t *testing.T) {
	set := func(xs ...string) map[string]struct{} {
		m := map[string]struct{}{}
		for _, x := range xs {
			m[x] = struct{}{}
		}
		return m
	}
	assert.Equal(t, 0.0, Jaccard(set(), set()))
	assert.Equal(t, 1.0, Jaccard(set("a", "b"), set("b", "a")))
	assert.InDelta(t, 1.0/3.0, Jaccard(set("a", "b"), set("b", "c")), 1e-12)
}

func TestCosine(t *testing.T) {
	a := map[string]float64{"banjir": 2, "jalan": 1}
	b := map[string]float64{"banjir": 2, "jalan": 1}
	assert.InDelta(t, 1.0, Cosine(a, b), 1e-12)
	assert.Equal(t, 0.0, Cosine(a, map[string]float64{"sampah": 1}))
	assert.Equal(t, 0.0, Cosine(a, nil))
}

func TestGeographic_MissingOrMalformedCoordinates(t *testing.T) {
	ok := at(-6.2, 106.8)
	assert.Equal(t, 0.0, Geographic(types.Location{}, ok, 5))
	assert.Equal(t, 0.0, Geographic(ok, at(123, 106.8), 5))
}

func TestGeographic_DecayAndCutoff(t *testing.T) {
	origin := at(0, 0)
	assert.Equal(t, 1.0, Geographic(origin, origin, 5))
	// 0.045 degrees of latitude is about 5 km, beyond the cutoff of 4 km
	assert.Equal(t, 0.0, Geographic(origin, at(0.045, 0), 4))
}

func TestGeographic_MonotonicInDistance(t *testing.T) {
	origin := at(0, 0)
	prev := -1.0
	for _, lat := range []float64{0.04, 0.03, 0.02, 0.01, 0.005, 0.001, 0} {
		g := Geographic(origin, at(lat, 0), 5)
		assert.GreaterOrEqual(t, g, prev)
		if prev > 0 {
			assert.Greater(t, g, prev)
		}
		prev = g
	}
}

func TestTemporal(t *testing.T) {
	a := types.Report{CreatedAt: t0}
	assert.Equal(t, 1.0, Temporal(a, types.Report{CreatedAt: t0}, 72))
	assert.InDelta(t, 0.5, Temporal(a, types.Report{CreatedAt: t0.Add(36 * time.Hour)}, 72), 1e-12)
	assert.Equal(t, 0.0, Temporal(a, types.Report{CreatedAt: t0.Add(72 * time.Hour)}, 72))
	assert.Equal(t, 0.0, Temporal(a, types.Report{}, 72))
}

func TestTemporal_MonotonicWithinWindow(t *testing.T) {
	a := types.Report{CreatedAt: t0}
	prev := -1.0
	for _, h := range []int{70, 48, 24, 12, 1, 0} {
		v := Temporal(a, types.Report{CreatedAt: t0.Add(time.Duration(h) * time.Hour)}, 72)
		assert.Greater(t, v, prev)
		prev = v
	}
}

func TestCategorical(t *testing.T) {
	assert.Equal(t, 0.5, Categorical("", types.Safety))
	assert.Equal(t, 1.0, Categorical(types.Safety, types.Safety))
	assert.Equal(t, 0.3, Categorical(types.Infrastructure, types.Safety))
	assert.Equal(t, 0.0, Categorical(types.Education, types.Infrastructure))
}

func TestCategorical_DirectionalTableIsSymmetrized(t *testing.T) {
	// Social lists Health as related, Health does not list Social.
	assert.Equal(t, 0.3, DirectionalCategorical(types.Social, types.Health))
	assert.Equal(t, 0.0, DirectionalCategorical(types.Health, types.Social))
	assert.Equal(t, 0.3, Categorical(types.Health, types.Social))
	assert.Equal(t, 0.3, Categorical(types.Social, types.Health))
}

func TestSeverity(t *testing.T) {
	assert.Equal(t, 0.5, Severity("", types.High))
	assert.Equal(t, 1.0, Severity(types.Low, types.Low))
	assert.InDelta(t, 2.0/3.0, Severity(types.Low, types.Medium), 1e-12)
	assert.InDelta(t, 0.0, Severity(types.Low, types.Critical), 1e-12)
}
