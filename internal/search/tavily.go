package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/marketbrief/marketbrief/internal/fault"
	"github.com/marketbrief/marketbrief/internal/models"
)

// TavilyClient queries the Tavily search API.
type TavilyClient struct {
	client *resty.Client
	apiKey string
}

func NewTavilyClient(apiKey string, timeout time.Duration) *TavilyClient {
	client := resty.New()
	client.SetBaseURL("https://api.tavily.com")
	client.SetTimeout(timeout)

	return &TavilyClient{client: client, apiKey: apiKey}
}

type tavilyResult struct {
	Title         string `json:"title"`
	URL           string `json:"url"`
	Content       string `json:"content"`
	PublishedDate string `json:"published_date"`
}

type tavilyResponse struct {
	Results []tavilyResult `json:"results"`
}

func (c *TavilyClient) Name() string { return "tavily" }

func (c *TavilyClient) Search(ctx context.Context, query string) ([]models.NewsDocument, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"api_key":      c.apiKey,
			"query":        query,
			"max_results":  5,
			"search_depth": "advanced",
		}).
		Post("/search")
	if err != nil {
		return nil, &fault.TransportError{Op: "tavily search", Err: err}
	}

	if cErr := fault.FromStatus("tavily search", resp.StatusCode(), resp.String(), retryAfter(resp)); cErr != nil {
		return nil, cErr
	}

	var body tavilyResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, fmt.Errorf("parse tavily response: %w", err)
	}

	docs := make([]models.NewsDocument, 0, len(body.Results))
	for _, r := range body.Results {
		doc := models.NewsDocument{
			Title:   r.Title,
			URL:     r.URL,
			Source:  hostOf(r.URL),
			Snippet: r.Content,
		}
		if r.PublishedDate != "" {
			if ts, pErr := time.Parse(time.RFC3339, r.PublishedDate); pErr == nil {
				doc.PublishedAt = ts
			}
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Host
}

func retryAfter(resp *resty.Response) time.Duration {
	if v := resp.Header().Get("Retry-After"); v != "" {
		if d, err := time.ParseDuration(v + "s"); err == nil {
			return d
		}
	}
	return 0
}
