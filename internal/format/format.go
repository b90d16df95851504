package format

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/marketbrief/marketbrief/internal/models"
)

// ImageSearcher finds chart images for a query. Served by the Serper client.
type ImageSearcher interface {
	SearchImages(ctx context.Context, query string) ([]models.ChartRef, error)
}

const maxCharts = 2

// chartTriggers maps summary mentions to targeted chart queries.
var chartTriggers = []struct {
	mention string
	query   string
}{
	{"S&P", "S&P 500 chart today"},
	{"NASDAQ", "NASDAQ chart today"},
	{"Nasdaq", "NASDAQ chart today"},
	{"Dow", "Dow Jones chart today"},
	{"Tesla", "Tesla stock chart"},
	{"Apple", "Apple stock chart"},
	{"NVIDIA", "NVIDIA stock chart"},
}

const defaultChartQuery = "US stock market chart today"

// Formatter renders a MarketSummary into Telegram-flavored HTML with
// contextually chosen chart links.
type Formatter struct {
	images ImageSearcher
	now    func() time.Time
	log    *logrus.Entry
}

func NewFormatter(images ImageSearcher, log *logrus.Entry) *Formatter {
	return &Formatter{images: images, now: time.Now, log: log}
}

// Render builds the presentation markup. Chart lookup failures are soft: the
// summary ships without charts.
func (f *Formatter) Render(ctx context.Context, s models.MarketSummary) models.FormattedContent {
	var sb strings.Builder

	fmt.Fprintf(&sb, "<b>Daily US Financial Summary</b>\n<i>%s</i>\n\n", f.now().Format("2006-01-02 15:04 MST"))

	if len(s.Indices) > 0 {
		sb.WriteString("<b>Market Overview</b>\n")
		for _, q := range s.Indices {
			change := q.ChangePct.String()
			if !strings.HasPrefix(change, "-") {
				change = "+" + change
			}
			fmt.Fprintf(&sb, "• %s: %s (%s%%)\n", q.Name, q.Value.String(), change)
		}
		sb.WriteString("\n")
	}

	if len(s.Headlines) > 0 {
		sb.WriteString("<b>Key Headlines</b>\n")
		for _, h := range s.Headlines {
			fmt.Fprintf(&sb, "• %s\n", h)
		}
		sb.WriteString("\n")
	}

	if len(s.Movers.Gainers) > 0 || len(s.Movers.Losers) > 0 {
		sb.WriteString("<b>Notable Movers</b>\n")
		for _, g := range s.Movers.Gainers {
			fmt.Fprintf(&sb, "▲ %s\n", g)
		}
		for _, l := range s.Movers.Losers {
			fmt.Fprintf(&sb, "▼ %s\n", l)
		}
		sb.WriteString("\n")
	}

	if len(s.Outlook) > 0 {
		sb.WriteString("<b>Tomorrow's Watch</b>\n")
		for _, o := range s.Outlook {
			fmt.Fprintf(&sb, "• %s\n", o)
		}
	}

	content := models.FormattedContent{Charts: f.findCharts(ctx, s)}

	if len(content.Charts) > 0 {
		sb.WriteString("\n<b>Related Charts:</b>\n")
		for i, c := range content.Charts {
			fmt.Fprintf(&sb, `%d. <a href="%s">%s</a>`+"\n", i+1, c.URL, c.Title)
		}
	}

	content.HTMLBody = strings.TrimRight(sb.String(), "\n")
	return content
}

// findCharts picks chart queries from what the summary actually mentions.
func (f *Formatter) findCharts(ctx context.Context, s models.MarketSummary) []models.ChartRef {
	if f.images == nil {
		return nil
	}

	text := summaryText(s)

	var queries []string
	seen := make(map[string]bool)
	for _, t := range chartTriggers {
		if strings.Contains(text, t.mention) && !seen[t.query] {
			seen[t.query] = true
			queries = append(queries, t.query)
		}
	}
	if len(queries) == 0 {
		queries = []string{defaultChartQuery}
	}
	if len(queries) > maxCharts {
		queries = queries[:maxCharts]
	}

	var charts []models.ChartRef
	for _, q := range queries {
		refs, err := f.images.SearchImages(ctx, q)
		if err != nil {
			f.log.Warnf("chart search failed for %q: %v", q, err)
			continue
		}
		if len(refs) > 0 {
			charts = append(charts, refs[0])
		}
		if len(charts) == maxCharts {
			break
		}
	}
	return charts
}

func summaryText(s models.MarketSummary) string {
	var parts []string
	for _, q := range s.Indices {
		parts = append(parts, q.Name)
	}
	parts = append(parts, s.Headlines...)
	parts = append(parts, s.Movers.Gainers...)
	parts = append(parts, s.Movers.Losers...)
	parts = append(parts, s.Outlook...)
	return strings.Join(parts, " ")
}
