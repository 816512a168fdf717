// Package providers contains the capability implementations behind each
// task type: web scraping, text summarization, image classification,
// and email delivery. Each provider satisfies engine.Provider.
package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// postJSON sends a JSON request to the ML sidecar and decodes the JSON
// response into out. Non-200 responses are errors.
func postJSON(ctx context.Context, client *http.Client, url string, in, out any) error {
	requestBody, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(requestBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sidecar returned status code %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response body: %w", err)
	}
	return nil
}

// stringify renders a config value as a string. Upstream outputs may be
// structured (e.g. scraping results); those are passed through as JSON.
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	}
}

// intValue reads an integer config value, tolerating the float64 that
// JSON decoding produces. Missing or unusable values yield the default.
func intValue(config map[string]any, key string, def int) int {
	switch t := config[key].(type) {
	case int:
		return t
	case int64:
		return int(t)
	case float64:
		return int(t)
	default:
		return def
	}
}

// floatValue reads a float config value with a default.
func floatValue(config map[string]any, key string, def float64) float64 {
	switch t := config[key].(type) {
	case float64:
		return t
	case int:
		return float64(t)
	default:
		return def
	}
}

// stringSlice coerces a config value into a list of non-empty strings.
func stringSlice(v any) []string {
	var out []string
	switch t := v.(type) {
	case []string:
		for _, s := range t {
			if strings.TrimSpace(s) != "" {
				out = append(out, s)
			}
		}
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
