package markets

import (
	"errors"
	"fmt"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/quote"
	"github.com/shopspring/decimal"

	"github.com/marketbrief/marketbrief/internal/fault"
	"github.com/marketbrief/marketbrief/internal/models"
)

var indexSymbols = []struct {
	symbol string
	name   string
}{
	{"^GSPC", "S&P 500"},
	{"^DJI", "Dow Jones"},
	{"^IXIC", "Nasdaq"},
}

var fetchQuote = func(symbol string) (*finance.Quote, error) {
	return quote.Get(symbol)
}

// FetchIndexQuotes pulls the current levels of the major US indices. The
// values ground the analysis prompt so index numbers come from market data
// rather than from whatever the news snippets happen to mention.
// One flaky symbol does not discard the others; the fetch only fails when
// every symbol errors.
func FetchIndexQuotes() ([]models.IndexQuote, error) {
	quotes := make([]models.IndexQuote, 0, len(indexSymbols))
	var failures []error

	for _, idx := range indexSymbols {
		q, err := fetchQuote(idx.symbol)
		if err != nil {
			failures = append(failures, fmt.Errorf("fetch %s: %w", idx.symbol, err))
			continue
		}
		if q == nil {
			continue
		}
		quotes = append(quotes, models.IndexQuote{
			Name:      idx.name,
			Value:     decimal.NewFromFloat(q.RegularMarketPrice).Round(2),
			ChangePct: decimal.NewFromFloat(q.RegularMarketChangePercent).Round(2),
		})
	}

	if len(quotes) == 0 && len(failures) > 0 {
		return nil, &fault.TransportError{Op: "index quotes", Err: errors.Join(failures...)}
	}
	return quotes, nil
}
