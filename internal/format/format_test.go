package format

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/marketbrief/marketbrief/internal/models"
)

type fakeImages struct {
	queries []string
	refs    []models.ChartRef
	err     error
}

func (f *fakeImages) SearchImages(ctx context.Context, query string) ([]models.ChartRef, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	return f.refs, nil
}

func testEntry() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger.WithField("component", "test")
}

func summaryFixture() models.MarketSummary {
	return models.MarketSummary{
		Indices: []models.IndexQuote{
			{Name: "S&P 500", Value: decimal.RequireFromString("6460.26"), ChangePct: decimal.RequireFromString("0.64")},
		},
		Headlines: []string{"Fed holds rates steady", "NVIDIA extends rally"},
		Movers: models.Movers{
			Gainers: []string{"NVDA +3.2% on datacenter demand"},
			Losers:  []string{"XOM -1.1% on crude slide"},
		},
		Outlook: []string{"CPI release at 8:30 ET"},
	}
}

func TestRenderBuildsHTMLWithExactNumerals(t *testing.T) {
	f := NewFormatter(nil, testEntry())

	content := f.Render(context.Background(), summaryFixture())
	body := content.HTMLBody

	for _, want := range []string{
		"<b>Daily US Financial Summary</b>",
		"S&P 500: 6460.26 (+0.64%)",
		"<b>Key Headlines</b>",
		"▲ NVDA +3.2% on datacenter demand",
		"▼ XOM -1.1% on crude slide",
		"<b>Tomorrow's Watch</b>",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("rendered body missing %q:\n%s", want, body)
		}
	}
}

func TestRenderPicksChartsFromSummaryMentions(t *testing.T) {
	images := &fakeImages{refs: []models.ChartRef{{Title: "chart", URL: "https://img.example.com/c.png"}}}
	f := NewFormatter(images, testEntry())

	content := f.Render(context.Background(), summaryFixture())

	if len(images.queries) != 2 {
		t.Fatalf("expected 2 chart queries, got %v", images.queries)
	}
	if images.queries[0] != "S&P 500 chart today" {
		t.Fatalf("expected S&P query first, got %q", images.queries[0])
	}
	if images.queries[1] != "NVIDIA stock chart" {
		t.Fatalf("expected NVIDIA query, got %q", images.queries[1])
	}
	if len(content.Charts) != 2 {
		t.Fatalf("expected 2 charts, got %d", len(content.Charts))
	}
	if !strings.Contains(content.HTMLBody, `<a href="https://img.example.com/c.png">`) {
		t.Fatalf("chart link missing from body")
	}
}

func TestRenderFallsBackToDefaultChartQuery(t *testing.T) {
	images := &fakeImages{refs: []models.ChartRef{{Title: "chart", URL: "https://img.example.com/c.png"}}}
	f := NewFormatter(images, testEntry())

	summary := models.MarketSummary{Headlines: []string{"Quiet session"}}
	f.Render(context.Background(), summary)

	if len(images.queries) != 1 || images.queries[0] != defaultChartQuery {
		t.Fatalf("expected default chart query, got %v", images.queries)
	}
}

func TestRenderSurvivesChartLookupFailure(t *testing.T) {
	images := &fakeImages{err: errors.New("quota exceeded")}
	f := NewFormatter(images, testEntry())

	content := f.Render(context.Background(), summaryFixture())
	if len(content.Charts) != 0 {
		t.Fatalf("expected no charts on lookup failure")
	}
	if !strings.Contains(content.HTMLBody, "Daily US Financial Summary") {
		t.Fatalf("body must still render without charts")
	}
}
