// Package mlmodel calls the hosted report classification model.
package mlmodel

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go-aduan/types"
)

// MLRequest maps an input key to the text to classify.
type MLRequest map[string]string

// MLResponse maps each input key to one probability per category, in the
// order of types.Categories.
type MLResponse map[string][]float64

type Client struct {
	URL  string
	HTTP *http.Client
}

func NewClient(url string) *Client {
	return &Client{
		URL:  url,
		HTTP: &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) CallModel(ctx context.Context, inputs MLRequest) (MLResponse, error) {
	payloadBytes, err := json.Marshal(inputs)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New("ML model returned status: " + resp.Status)
	}

	var mlResp MLResponse
	if err := json.NewDecoder(resp.Body).Decode(&mlResp); err != nil {
		return nil, err
	}

	return mlResp, nil
}

// Classify returns the most probable category for text and its probability.
func (c *Client) Classify(ctx context.Context, text string) (types.Category, float64, error) {
	const key = "report"
	resp, err := c.CallModel(ctx, MLRequest{key: text})
	if err != nil {
		return "", 0, fmt.Errorf("classify: %w", err)
	}
	probs, ok := resp[key]
	if !ok || len(probs) == 0 {
		return "", 0, errors.New("classify: model returned no probabilities")
	}
	if len(probs) > len(types.Categories) {
		return "", 0, fmt.Errorf("classify: model returned %d probabilities for %d categories", len(probs), len(types.Categories))
	}

	best := 0
	for i, p := range probs {
		if p > probs[best] {
			best = i
		}
	}
	return types.Categories[best], probs[best], nil
}
