package providers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"
)

const (
	defaultMaxLength = 130
	defaultMinLength = 30
)

// Summarizer summarizes text through the ML sidecar.
type Summarizer struct {
	url    string
	client *http.Client
}

// NewSummarizer creates a Summarizer talking to the sidecar at url.
func NewSummarizer(url string) *Summarizer {
	return &Summarizer{
		url:    strings.TrimRight(url, "/"),
		client: &http.Client{Timeout: 120 * time.Second},
	}
}

type summarizeRequest struct {
	Text      string `json:"text"`
	MaxLength int    `json:"max_length"`
	MinLength int    `json:"min_length"`
}

type summarizeResponse struct {
	Summary string `json:"summary"`
}

// Invoke summarizes config["input_text"] honoring max_length/min_length
// (defaults 130/30) and returns the summary as plain text. Structured
// upstream outputs are serialized to JSON before summarization.
func (s *Summarizer) Invoke(ctx context.Context, config map[string]any) (any, error) {
	text := stringify(config["input_text"])
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("summarization requires a non-empty input_text")
	}

	req := summarizeRequest{
		Text:      text,
		MaxLength: intValue(config, "max_length", defaultMaxLength),
		MinLength: intValue(config, "min_length", defaultMinLength),
	}

	var resp summarizeResponse
	if err := postJSON(ctx, s.client, s.url+"/summarize", req, &resp); err != nil {
		return nil, err
	}
	return resp.Summary, nil
}
