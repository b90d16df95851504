package search

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"github.com/marketbrief/marketbrief/internal/fault"
	"github.com/marketbrief/marketbrief/internal/models"
)

// Provider is one external search backend.
type Provider interface {
	Search(ctx context.Context, query string) ([]models.NewsDocument, error)
	Name() string
}

// DefaultQueries is the fixed query set for a daily US-market run.
var DefaultQueries = []string{
	"US stock market news today latest",
	"NASDAQ today news",
	"Dow Jones updates",
	"S&P 500 market news",
}

const maxDocuments = 20

// Service merges results from independent providers into one deduplicated
// candidate set. Provider order decides the first-seen tie-break.
type Service struct {
	providers []Provider
	queries   []string
	log       *logrus.Entry
}

func NewService(log *logrus.Entry, providers ...Provider) *Service {
	return &Service{
		providers: providers,
		queries:   DefaultQueries,
		log:       log,
	}
}

// Run queries every provider. One provider failing is tolerated; all of them
// failing is a transport failure for the whole stage.
func (s *Service) Run(ctx context.Context) ([]models.NewsDocument, error) {
	var merged []models.NewsDocument
	var failures []error

	for _, p := range s.providers {
		docs, err := s.fetchAll(ctx, p)
		if err != nil {
			s.log.WithField("provider", p.Name()).Warnf("provider failed: %v", err)
			failures = append(failures, err)
			continue
		}
		s.log.WithField("provider", p.Name()).Infof("fetched %d documents", len(docs))
		merged = append(merged, docs...)
	}

	if len(failures) == len(s.providers) {
		return nil, &fault.TransportError{
			Op:  "search",
			Err: fmt.Errorf("all %d providers failed: %v", len(s.providers), failures),
		}
	}

	deduped := Dedup(merged)
	if len(deduped) > maxDocuments {
		deduped = deduped[:maxDocuments]
	}
	return deduped, nil
}

func (s *Service) fetchAll(ctx context.Context, p Provider) ([]models.NewsDocument, error) {
	var docs []models.NewsDocument
	var lastErr error

	for _, q := range s.queries {
		res, err := p.Search(ctx, q)
		if err != nil {
			lastErr = err
			continue
		}
		docs = append(docs, res...)
	}

	// A provider counts as failed only when every query errored.
	if len(docs) == 0 && lastErr != nil {
		return nil, lastErr
	}

	for i := range docs {
		docs[i].Snippet = stripHTML(docs[i].Snippet)
	}
	return docs, nil
}

// Dedup removes documents whose normalized title or URL was already seen,
// keeping first-seen order. Applying it twice yields the same set.
func Dedup(docs []models.NewsDocument) []models.NewsDocument {
	seenTitle := make(map[string]bool, len(docs))
	seenURL := make(map[string]bool, len(docs))

	out := make([]models.NewsDocument, 0, len(docs))
	for _, d := range docs {
		title := normalizeTitle(d.Title)
		link := normalizeURL(d.URL)

		if title == "" && link == "" {
			continue
		}
		if (title != "" && seenTitle[title]) || (link != "" && seenURL[link]) {
			continue
		}
		if title != "" {
			seenTitle[title] = true
		}
		if link != "" {
			seenURL[link] = true
		}
		out = append(out, d)
	}
	return out
}

func normalizeTitle(title string) string {
	return strings.Join(strings.Fields(strings.ToLower(title)), " ")
}

func normalizeURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return strings.ToLower(strings.TrimRight(raw, "/"))
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	path := strings.TrimRight(u.Path, "/")
	return host + path
}

// stripHTML reduces provider snippets to plain text before they reach the
// prompt context.
func stripHTML(snippet string) string {
	if !strings.ContainsAny(snippet, "<>") {
		return snippet
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(snippet))
	if err != nil {
		return snippet
	}
	return strings.TrimSpace(doc.Text())
}
