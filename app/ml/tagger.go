package ml

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const scoreLabelsPromptTemplate = `Score how well each candidate label describes the ` +
	`following content. This is zero-shot classification: consider every label ` +
	`independently and assign each a confidence between 0.0 and 1.0. Use only labels ` +
	`from the candidate list, spelled exactly as given.

Candidate labels: %s

Content:
%s`

// LabelScore is one candidate label with its classification confidence.
type LabelScore struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

type labelResponse struct {
	Labels []LabelScore `json:"labels"`
}

func scoreLabelsSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"labels": {
				Type:        genai.TypeArray,
				Description: "Every candidate label with its confidence score",
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"label": {
							Type:        genai.TypeString,
							Description: "Exact label from the candidate list",
						},
						"confidence": {
							Type:        genai.TypeNumber,
							Description: "Classification confidence from 0.0 to 1.0",
						},
					},
					Required: []string{"label", "confidence"},
				},
			},
		},
		Required: []string{"labels"},
	}
}

// ScoreLabels scores the given text against every candidate label.
func (c *Client) ScoreLabels(ctx context.Context, text string, labels []string) ([]LabelScore, error) {
	if len(labels) == 0 {
		return nil, nil
	}

	prompt := fmt.Sprintf(scoreLabelsPromptTemplate, strings.Join(labels, ", "), text)

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   scoreLabelsSchema(),
	}

	raw, err := c.generate(ctx, []*genai.Part{{Text: prompt}}, config)
	if err != nil {
		return nil, err
	}

	var resp labelResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, fmt.Errorf("failed to parse label response: %w", err)
	}

	return resp.Labels, nil
}

// FilterScores keeps labels scoring above the threshold and known to the
// candidate list, guarding against the model inventing labels.
func FilterScores(scores []LabelScore, candidates []string, threshold float64) []LabelScore {
	known := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		known[strings.ToLower(c)] = true
	}

	var kept []LabelScore
	for _, s := range scores {
		if s.Confidence > threshold && known[strings.ToLower(s.Label)] {
			kept = append(kept, s)
		}
	}
	return kept
}
