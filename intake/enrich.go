// Package intake turns external posts into reports and fills in what the
// clustering engine needs: coordinates, category, urgency and quality.
package intake

import (
	"context"
	"log"
	"math"
	"runtime"
	"strings"

	"go-aduan/nlp"
	"go-aduan/types"
	"golang.org/x/sync/errgroup"
)

// TextAnalyzer is implemented by nlp.CloudAnalyzer.
type TextAnalyzer interface {
	AnalyzeEntities(ctx context.Context, text string) ([]types.Entity, error)
	AnalyzeSentiment(ctx context.Context, text string) (types.Sentiment, error)
}

// Geocoder is implemented by geocode.MapsGeocoder.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*types.Coordinates, string, error)
}

// Classifier is implemented by mlmodel.Client.
type Classifier interface {
	Classify(ctx context.Context, text string) (types.Category, float64, error)
}

const minClassifierConfidence = 0.5

// Enricher fills in missing report fields. Each collaborator is optional and
// its failures are logged, never fatal.
type Enricher struct {
	Analyzer    TextAnalyzer
	Geocoder    Geocoder
	Classifier  Classifier
	Concurrency int
}

// Enrich returns enriched copies of reports in the same order. Only context
// cancellation fails the call.
func (e *Enricher) Enrich(ctx context.Context, reports []types.Report) ([]types.Report, error) {
	out := make([]types.Report, len(reports))
	copy(out, reports)

	limit := e.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i := range out {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			e.enrichOne(gctx, &out[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (e *Enricher) enrichOne(ctx context.Context, r *types.Report) {
	if e.Analyzer != nil {
		if r.Urgency == nil {
			sentiment, err := e.Analyzer.AnalyzeSentiment(ctx, r.Description)
			if err != nil {
				log.Printf("Intake: sentiment failed for report %s: %v", r.ID, err)
			} else {
				u := nlp.UrgencyFromSentiment(sentiment)
				r.Urgency = &u
			}
		}
		if !r.Location.HasCoordinates() {
			e.locate(ctx, r)
		}
	}

	if e.Classifier != nil && !r.Category.Valid() {
		cat, p, err := e.Classifier.Classify(ctx, r.Description)
		switch {
		case err != nil:
			log.Printf("Intake: classification failed for report %s: %v", r.ID, err)
		case p >= minClassifierConfidence:
			r.Category = cat
		}
	}

	if r.QualityScore == nil {
		q := Quality(*r)
		r.QualityScore = &q
	}
}

// locate geocodes the first place entity mentioned in the description.
func (e *Enricher) locate(ctx context.Context, r *types.Report) {
	entities, err := e.Analyzer.AnalyzeEntities(ctx, r.Description)
	if err != nil {
		log.Printf("Intake: entity analysis failed for report %s: %v", r.ID, err)
		return
	}

	for _, place := range Places(entities) {
		if r.Location.AreaName() == "" {
			r.Location.Village = place
		}
		if e.Geocoder == nil {
			return
		}
		coords, formatted, err := e.Geocoder.Geocode(ctx, place)
		if err != nil {
			log.Printf("Intake: failed to geocode %s: %v", place, err)
			continue
		}
		if coords == nil || !coords.Valid() {
			log.Printf("Intake: no geocode results for %s", place)
			continue
		}
		r.Location.Coordinates = coords
		log.Printf("Intake: report %s located at %s", r.ID, formatted)
		return
	}
}

// Places returns address entities first, then location entities, without
// duplicates.
func Places(entities []types.Entity) []string {
	var addresses, locations []string
	seen := make(map[string]bool)
	for _, ent := range entities {
		name := strings.TrimSpace(ent.Name)
		if name == "" || seen[name] {
			continue
		}
		switch ent.Type {
		case "ADDRESS":
			addresses = append(addresses, name)
		case "LOCATION":
			locations = append(locations, name)
		default:
			continue
		}
		seen[name] = true
	}
	return append(addresses, locations...)
}

// Quality scores how actionable a report is on a 0-100 scale: up to 40 for
// descriptive text, 30 for coordinates, 15 for a named area and 15 for a
// category.
func Quality(r types.Report) float64 {
	words := len(nlp.Tokens(r.Description))
	score := 40 * math.Min(1, float64(words)/15)
	if r.Location.HasCoordinates() {
		score += 30
	}
	if r.Location.AreaName() != "" {
		score += 15
	}
	if r.Category.Valid() {
		score += 15
	}
	return math.Round(score*10) / 10
}
