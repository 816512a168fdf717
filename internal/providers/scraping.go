package providers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

// Scraper fetches a web page and extracts text by CSS selector.
type Scraper struct {
	client *resty.Client
}

// NewScraper creates a Scraper with a bounded request timeout.
func NewScraper() *Scraper {
	return &Scraper{
		client: resty.New().
			SetTimeout(30 * time.Second).
			SetHeader("User-Agent", "workflow-automation/1.0"),
	}
}

// Invoke fetches config["url"] and returns, per selector in
// config["selectors"], the trimmed text content of every matched
// element. A non-2xx response is a failure, not an empty result.
func (s *Scraper) Invoke(ctx context.Context, config map[string]any) (any, error) {
	url, _ := config["url"].(string)
	if strings.TrimSpace(url) == "" {
		return nil, errors.New("scraping requires a non-empty url")
	}
	selectors := stringSlice(config["selectors"])
	if len(selectors) == 0 {
		return nil, errors.New("scraping requires at least one selector")
	}

	resp, err := s.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("fetching %s returned status %d", url, resp.StatusCode())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", url, err)
	}

	result := make(map[string][]string, len(selectors))
	for _, selector := range selectors {
		matches := []string{}
		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			matches = append(matches, strings.TrimSpace(sel.Text()))
		})
		result[selector] = matches
	}
	return result, nil
}
