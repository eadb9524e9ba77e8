package nlp

import (
	"context"
	"encoding/base64"
	"fmt"

	language "cloud.google.com/go/language/apiv2"
	"cloud.google.com/go/language/apiv2/languagepb"
	"go-aduan/types"
	"google.golang.org/api/option"
)

// CloudAnalyzer wraps the Cloud Natural Language API. It is used at intake
// time only; the clustering engine never calls it.
type CloudAnalyzer struct {
	client *language.Client
}

// NewCloudAnalyzer creates a language client from base64 encoded service
// account credentials.
func NewCloudAnalyzer(ctx context.Context, encodedCreds string) (*CloudAnalyzer, error) {
	creds, err := base64.StdEncoding.DecodeString(encodedCreds)
	if err != nil {
		return nil, fmt.Errorf("failed to decode natural language credentials: %w", err)
	}

	client, err := language.NewClient(ctx, option.WithCredentialsJSON(creds))
	if err != nil {
		return nil, fmt.Errorf("failed to create natural language client: %w", err)
	}
	return &CloudAnalyzer{client: client}, nil
}

func (a *CloudAnalyzer) Close() error {
	return a.client.Close()
}

func document(text string) *languagepb.Document {
	return &languagepb.Document{
		Source: &languagepb.Document_Content{
			Content: text,
		},
		Type: languagepb.Document_PLAIN_TEXT,
	}
}

func (a *CloudAnalyzer) AnalyzeSentiment(ctx context.Context, text string) (types.Sentiment, error) {
	var sentiment types.Sentiment
	req := &languagepb.AnalyzeSentimentRequest{
		Document:     document(text),
		EncodingType: languagepb.EncodingType_UTF8,
	}

	resp, err := a.client.AnalyzeSentiment(ctx, req)
	if err != nil {
		return sentiment, fmt.Errorf("AnalyzeSentiment error: %w", err)
	}

	sentiment.Score = float64(resp.DocumentSentiment.Score)
	sentiment.Magnitude = float64(resp.DocumentSentiment.Magnitude)
	return sentiment, nil
}

// AnalyzeEntities extracts named entities from text.
func (a *CloudAnalyzer) AnalyzeEntities(ctx context.Context, text string) ([]types.Entity, error) {
	req := &languagepb.AnalyzeEntitiesRequest{
		Document:     document(text),
		EncodingType: languagepb.EncodingType_UTF8,
	}

	resp, err := a.client.AnalyzeEntities(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("AnalyzeEntities error: %w", err)
	}

	entities := make([]types.Entity, 0, len(resp.Entities))
	for _, e := range resp.Entities {
		entities = append(entities, types.Entity{
			Name: e.Name,
			Type: e.Type.String(),
		})
	}
	return entities, nil
}

// UrgencyFromSentiment maps a document sentiment onto a 0-1 urgency signal:
// strongly negative, emphatic text is treated as more urgent.
func UrgencyFromSentiment(s types.Sentiment) float64 {
	negativity := -s.Score // -1..1, positive when the text is negative
	if negativity < 0 {
		negativity = 0
	}
	emphasis := s.Magnitude / 4
	if emphasis > 1 {
		emphasis = 1
	}
	u := 0.3 + 0.5*negativity + 0.2*emphasis
	if u > 1 {
		return 1
	}
	return u
}
