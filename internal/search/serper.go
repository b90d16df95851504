package search

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/marketbrief/marketbrief/internal/fault"
	"github.com/marketbrief/marketbrief/internal/models"
)

// SerperClient queries the Serper Google-search API. It also serves image
// lookups for the formatting stage's contextual charts.
type SerperClient struct {
	client *resty.Client
	apiKey string
}

func NewSerperClient(apiKey string, timeout time.Duration) *SerperClient {
	client := resty.New()
	client.SetBaseURL("https://google.serper.dev")
	client.SetTimeout(timeout)
	client.SetHeader("Content-Type", "application/json")

	return &SerperClient{client: client, apiKey: apiKey}
}

type serperOrganic struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
	Date    string `json:"date"`
}

type serperSearchResponse struct {
	Organic []serperOrganic `json:"organic"`
}

type serperImage struct {
	Title    string `json:"title"`
	ImageURL string `json:"imageUrl"`
}

type serperImagesResponse struct {
	Images []serperImage `json:"images"`
}

func (c *SerperClient) Name() string { return "serper" }

func (c *SerperClient) Search(ctx context.Context, query string) ([]models.NewsDocument, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("X-API-KEY", c.apiKey).
		SetBody(map[string]any{"q": query, "num": 5}).
		Post("/search")
	if err != nil {
		return nil, &fault.TransportError{Op: "serper search", Err: err}
	}

	if cErr := fault.FromStatus("serper search", resp.StatusCode(), resp.String(), retryAfter(resp)); cErr != nil {
		return nil, cErr
	}

	var body serperSearchResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, fmt.Errorf("parse serper response: %w", err)
	}

	docs := make([]models.NewsDocument, 0, len(body.Organic))
	for _, r := range body.Organic {
		docs = append(docs, models.NewsDocument{
			Title:   r.Title,
			URL:     r.Link,
			Source:  hostOf(r.Link),
			Snippet: r.Snippet,
		})
	}
	return docs, nil
}

// SearchImages returns the top image hit for a query, for chart references.
func (c *SerperClient) SearchImages(ctx context.Context, query string) ([]models.ChartRef, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("X-API-KEY", c.apiKey).
		SetBody(map[string]any{"q": query, "num": 1}).
		Post("/images")
	if err != nil {
		return nil, &fault.TransportError{Op: "serper images", Err: err}
	}

	if cErr := fault.FromStatus("serper images", resp.StatusCode(), resp.String(), retryAfter(resp)); cErr != nil {
		return nil, cErr
	}

	var body serperImagesResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, fmt.Errorf("parse serper images response: %w", err)
	}

	charts := make([]models.ChartRef, 0, len(body.Images))
	for _, img := range body.Images {
		if img.ImageURL == "" {
			continue
		}
		title := img.Title
		if title == "" {
			title = query
		}
		charts = append(charts, models.ChartRef{Title: title, URL: img.ImageURL})
	}
	return charts, nil
}
