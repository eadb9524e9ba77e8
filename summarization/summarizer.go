// Package summarization asks OpenAI to describe clusters from their member
// reports.
package summarization

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/sashabaranov/go-openai"
	"go-aduan/types"
)

const maxReportsForSummary = 50
const maxPromptLength = 15000 // Rough character limit for prompt

// ReportLookup resolves cluster members. detection.ReportStore implements it.
type ReportLookup interface {
	Get(id string) (types.Report, bool)
}

type Summarizer struct {
	client *openai.Client
	Model  string
}

func NewSummarizer(apiKey string) *Summarizer {
	return NewSummarizerWithConfig(openai.DefaultConfig(apiKey))
}

func NewSummarizerWithConfig(cfg openai.ClientConfig) *Summarizer {
	return &Summarizer{client: openai.NewClientWithConfig(cfg), Model: openai.GPT4oMini}
}

// GenerateSummaries replaces the description of each cluster with an OpenAI
// summary of its reports. It modifies the input slice directly; clusters whose
// summary fails keep their existing description.
func (s *Summarizer) GenerateSummaries(ctx context.Context, clusters []types.Cluster, reports ReportLookup) {
	log.Printf("Starting summary generation for %d clusters...", len(clusters))

	var wg sync.WaitGroup
	for i := range clusters {
		wg.Add(1)
		go func(clusterIndex int) {
			defer wg.Done()
			cluster := &clusters[clusterIndex]

			text := combinedReportText(cluster, reports)
			if text == "" {
				log.Printf("No report text found for cluster %s. Skipping summary.", cluster.ID)
				return
			}

			summary, err := s.Summarize(ctx, text, cluster.Category, cluster.Area)
			if err != nil {
				log.Printf("Error getting summary from OpenAI for cluster %s: %v. Skipping summary.", cluster.ID, err)
				return
			}
			log.Printf("Received summary for cluster %s.", cluster.ID)
			cluster.Description = summary
		}(i)
	}
	wg.Wait()

	log.Println("Summary generation finished.")
}

func combinedReportText(cluster *types.Cluster, reports ReportLookup) string {
	var texts []string
	for _, id := range cluster.ReportIDs {
		if len(texts) >= maxReportsForSummary {
			log.Printf("Reached max report limit (%d) for cluster %s summary.", maxReportsForSummary, cluster.ID)
			break
		}
		r, ok := reports.Get(id)
		if !ok || strings.TrimSpace(r.Description) == "" {
			continue
		}
		texts = append(texts, r.Description)
	}

	combined := strings.Join(texts, "\n---\n")
	if len(combined) > maxPromptLength {
		log.Printf("Warning: Combined report text for cluster %s exceeds max length (%d), truncating.", cluster.ID, maxPromptLength)
		combined = strings.ToValidUTF8(combined[:maxPromptLength], "")
	}
	return combined
}

// Summarize sends report text to OpenAI and requests a short summary.
func (s *Summarizer) Summarize(ctx context.Context, reportText string, category types.Category, area string) (string, error) {
	where := ""
	if area != "" {
		where = " in " + area
	}
	prompt := fmt.Sprintf("Summarize the following citizen reports about a %s problem%s. Focus on what is wrong, where exactly, and how residents are affected. Ignore reports that do not fit the rest. Answer in the language of the reports, 2-3 sentences maximum:\n\n---\n%s\n---\n\nSummary:", strings.ToLower(string(category)), where, reportText)

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: s.Model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: "You are an assistant that summarizes citizen complaints for local government staff concisely.",
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			MaxTokens:   150,
			N:           1,
			Temperature: 0.3,
		},
	)
	if err != nil {
		return "", fmt.Errorf("openai chat completion error: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("openai returned empty response or choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
