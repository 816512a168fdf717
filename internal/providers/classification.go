package providers

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strings"
	"time"
)

const defaultConfidenceThreshold = 0.5

// Classifier classifies images through the ML sidecar.
type Classifier struct {
	url    string
	client *http.Client
}

// NewClassifier creates a Classifier talking to the sidecar at url.
func NewClassifier(url string) *Classifier {
	return &Classifier{
		url:    strings.TrimRight(url, "/"),
		client: &http.Client{Timeout: 120 * time.Second},
	}
}

// Prediction is one classification result above the confidence threshold.
type Prediction struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

type classifyRequest struct {
	ImageURL string `json:"image_url"`
}

type classifyResponse []struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Invoke classifies config["image_url"] and returns the predictions
// with score >= confidence_threshold (default 0.5), confidence rounded
// to 3 decimal places, in the order the model ranked them.
func (c *Classifier) Invoke(ctx context.Context, config map[string]any) (any, error) {
	imageURL, _ := config["image_url"].(string)
	if strings.TrimSpace(imageURL) == "" {
		return nil, errors.New("classification requires a non-empty image_url")
	}
	threshold := floatValue(config, "confidence_threshold", defaultConfidenceThreshold)

	var resp classifyResponse
	if err := postJSON(ctx, c.client, c.url+"/classify", classifyRequest{ImageURL: imageURL}, &resp); err != nil {
		return nil, err
	}

	predictions := make([]Prediction, 0, len(resp))
	for _, p := range resp {
		if p.Score < threshold {
			continue
		}
		predictions = append(predictions, Prediction{
			Label:      p.Label,
			Confidence: math.Round(p.Score*1000) / 1000,
		})
	}
	return predictions, nil
}
