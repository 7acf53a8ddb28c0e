// Package gnews implements the external news source client against the
// GNews top-headlines API.
package gnews

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/newschakra/newsdesk/internal/config"
	"github.com/newschakra/newsdesk/internal/news"
)

// validTopics is the topic vocabulary the API accepts.
var validTopics = map[string]struct{}{
	"world":         {},
	"nation":        {},
	"business":      {},
	"technology":    {},
	"entertainment": {},
	"sports":        {},
	"science":       {},
	"health":        {},
}

// TopicFor maps a canonical category key onto the API's topic vocabulary.
// National and political coverage both live under the API's "nation" topic.
// Categories with no counterpart (religion, opinion, ...) return ok=false
// and are skipped by the pipeline, not treated as errors.
func TopicFor(key string) (string, bool) {
	if key == "national" || key == "politics" {
		return "nation", true
	}
	if _, ok := validTopics[key]; ok {
		return key, true
	}
	return "", false
}

// Client calls the GNews HTTP API. The embedded http.Client carries the
// configured request timeout so a hung call cannot stall the sweep.
type Client struct {
	baseURL string
	apiKey  string
	lang    string
	country string
	http    *http.Client
}

// New constructs a Client from configuration.
func New(cfg config.GNewsConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		lang:    cfg.Lang,
		country: cfg.Country,
		http:    &http.Client{Timeout: cfg.Timeout()},
	}
}

// Enabled reports whether an API credential is configured. Without one the
// browse-triggered ingestion path stays off; the scheduled sweep may still
// call and fail gracefully.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

type apiResponse struct {
	TotalArticles int          `json:"totalArticles"`
	Articles      []apiArticle `json:"articles"`
}

type apiArticle struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	Image       string    `json:"image"`
	PublishedAt time.Time `json:"publishedAt"`
	Source      struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	} `json:"source"`
}

// TopHeadlines fetches the current headline candidates for one topic in the
// site's locale.
func (c *Client) TopHeadlines(ctx context.Context, topic string) ([]news.Candidate, error) {
	endpoint, err := url.Parse(c.baseURL + "/top-headlines")
	if err != nil {
		return nil, fmt.Errorf("parse gnews url: %w", err)
	}
	q := endpoint.Query()
	q.Set("lang", c.lang)
	q.Set("country", c.country)
	q.Set("topic", topic)
	q.Set("token", c.apiKey)
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build gnews request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch gnews top-headlines: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gnews returned status %d for topic %q", resp.StatusCode, topic)
	}

	var payload apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode gnews response: %w", err)
	}

	candidates := make([]news.Candidate, 0, len(payload.Articles))
	for _, a := range payload.Articles {
		candidates = append(candidates, news.Candidate{
			Title:       a.Title,
			Description: a.Description,
			Image:       a.Image,
			SourceName:  a.Source.Name,
			SourceURL:   a.URL,
			PublishedAt: a.PublishedAt,
		})
	}
	return candidates, nil
}
